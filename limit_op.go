package heapdb

// Limit passes through at most the first n tuples of its child, then
// returns ErrNoMoreTuples regardless of how much the child has left
// (spec.md §4, a supplemented operator present in every variant of the
// teacher's lab set).
type Limit struct {
	child Operator
	n     int
	seen  int
}

// NewLimit constructs a limit of child's output to at most n tuples.
func NewLimit(n int, child Operator) *Limit {
	return &Limit{child: child, n: n}
}

func (l *Limit) Descriptor() *TupleDesc {
	return l.child.Descriptor()
}

func (l *Limit) Open(tid TransactionID) error {
	l.seen = 0
	return l.child.Open(tid)
}

func (l *Limit) Next() (*Tuple, error) {
	if l.seen >= l.n {
		return nil, ErrNoMoreTuples
	}
	t, err := l.child.Next()
	if err != nil {
		return nil, err
	}
	l.seen++
	return t, nil
}

func (l *Limit) Rewind() error {
	l.seen = 0
	return l.child.Rewind()
}

func (l *Limit) Close() error {
	return l.child.Close()
}
