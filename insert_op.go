package heapdb

// Insert drains its child and inserts each tuple into a destination heap
// file, producing a single one-column ("count") result tuple (spec.md
// §4.6). Validates the child's schema against the destination table's
// schema at construction, rather than per-tuple, since both sides are
// fixed once built.
type Insert struct {
	bp    *BufferPool
	file  *HeapFile
	child Operator
	tid   TransactionID
	done  bool
}

var countDesc = &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}}

// NewInsert constructs an insert of child's tuples into file. Fails with
// SchemaMismatch if child's schema doesn't match file's.
func NewInsert(bp *BufferPool, file *HeapFile, child Operator) (*Insert, error) {
	if !child.Descriptor().Equals(file.Descriptor()) {
		return nil, newErr(SchemaMismatch, "insert source schema does not match table schema")
	}
	return &Insert{bp: bp, file: file, child: child}, nil
}

func (i *Insert) Descriptor() *TupleDesc {
	return countDesc
}

func (i *Insert) Open(tid TransactionID) error {
	i.tid = tid
	i.done = false
	return i.child.Open(tid)
}

func (i *Insert) Rewind() error {
	i.done = false
	return i.child.Rewind()
}

func (i *Insert) Close() error {
	return i.child.Close()
}

// Next inserts every child tuple on the first call, then returns the count
// tuple; every subsequent call returns ErrNoMoreTuples.
func (i *Insert) Next() (*Tuple, error) {
	if i.done {
		return nil, ErrNoMoreTuples
	}
	i.done = true

	count := 0
	for {
		t, err := i.child.Next()
		if err != nil {
			if isNoMoreTuples(err) {
				break
			}
			return nil, err
		}
		if err := i.bp.insertIntoFile(i.tid, i.file, t); err != nil {
			return nil, err
		}
		count++
	}

	return &Tuple{Desc: *countDesc, Fields: []DBValue{IntField{Value: int32(count)}}}, nil
}
