package heapdb

// Delete drains its child and removes each tuple (identified by its
// RecordID) from the buffer pool, producing a single one-column
// ("count") result tuple, symmetric with Insert (spec.md §4.6).
type Delete struct {
	bp    *BufferPool
	child Operator
	tid   TransactionID
	done  bool
}

// NewDelete constructs a delete of child's tuples.
func NewDelete(bp *BufferPool, child Operator) *Delete {
	return &Delete{bp: bp, child: child}
}

func (d *Delete) Descriptor() *TupleDesc {
	return countDesc
}

func (d *Delete) Open(tid TransactionID) error {
	d.tid = tid
	d.done = false
	return d.child.Open(tid)
}

func (d *Delete) Rewind() error {
	d.done = false
	return d.child.Rewind()
}

func (d *Delete) Close() error {
	return d.child.Close()
}

// Next deletes every child tuple on the first call, then returns the
// count tuple; every subsequent call returns ErrNoMoreTuples.
func (d *Delete) Next() (*Tuple, error) {
	if d.done {
		return nil, ErrNoMoreTuples
	}
	d.done = true

	count := 0
	for {
		t, err := d.child.Next()
		if err != nil {
			if isNoMoreTuples(err) {
				break
			}
			return nil, err
		}
		if err := d.bp.DeleteTuple(d.tid, t); err != nil {
			return nil, err
		}
		count++
	}

	return &Tuple{Desc: *countDesc, Fields: []DBValue{IntField{Value: int32(count)}}}, nil
}
