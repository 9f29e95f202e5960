package heapdb

// Operator is the pull-based iterator interface every query stage
// implements: Open before the first Next, Next until ErrNoMoreTuples,
// Rewind to restart, Close to release resources (spec.md §4.6). This
// replaces the teacher's Iterator(tid) (func() (*Tuple, error), error)
// closure convention with explicit lifecycle methods, so that "fails
// with NoMoreTuples" (spec wording) is a literal sentinel error rather
// than a (nil, nil) return.
type Operator interface {
	Open(tid TransactionID) error
	Next() (*Tuple, error)
	Rewind() error
	Close() error
	Descriptor() *TupleDesc
}

// SeqScan reads every tuple of one heap file in page/slot order, renaming
// each field to "alias.fieldName" in its output schema (spec.md §4.6),
// generalized from the teacher's HeapFile.Iterator plus lab1_query's bare
// table scans.
type SeqScan struct {
	bp    *BufferPool
	file  *HeapFile
	alias string
	desc  *TupleDesc
	tid   TransactionID
	it    *heapFileIterator
}

// NewSeqScan constructs a scan of file, aliasing its fields under alias.
func NewSeqScan(bp *BufferPool, file *HeapFile, alias string) *SeqScan {
	src := file.Descriptor()
	fields := make([]FieldType, len(src.Fields))
	for i, f := range src.Fields {
		fields[i] = FieldType{Fname: alias + "." + f.Fname, Ftype: f.Ftype}
	}
	return &SeqScan{
		bp:    bp,
		file:  file,
		alias: alias,
		desc:  &TupleDesc{Fields: fields},
	}
}

func (s *SeqScan) Descriptor() *TupleDesc {
	return s.desc
}

func (s *SeqScan) Open(tid TransactionID) error {
	s.tid = tid
	it, err := s.file.Iterator(s.bp, tid)
	if err != nil {
		return err
	}
	s.it = it
	return nil
}

func (s *SeqScan) Next() (*Tuple, error) {
	t, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	out := *t
	out.Desc = *s.desc
	return &out, nil
}

func (s *SeqScan) Rewind() error {
	return s.it.Rewind()
}

func (s *SeqScan) Close() error {
	s.it = nil
	return nil
}

// drainAll pulls every remaining tuple from op, used by operators that are
// blocking (Aggregate, OrderBy): they must exhaust their child before
// producing their first output.
func drainAll(op Operator) ([]*Tuple, error) {
	var out []*Tuple
	for {
		t, err := op.Next()
		if err != nil {
			if isNoMoreTuples(err) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, t)
	}
}
