package heapdb

// Filter passes through only the child tuples satisfying a single
// predicate: left op right, where one side is typically a field
// reference and the other a constant (spec.md §4.6).
type Filter struct {
	op    BoolOp
	left  Expr
	right Expr
	child Operator
}

// NewFilter constructs a filter evaluating left op right against every
// tuple from child.
func NewFilter(left Expr, op BoolOp, right Expr, child Operator) *Filter {
	return &Filter{op: op, left: left, right: right, child: child}
}

func (f *Filter) Descriptor() *TupleDesc {
	return f.child.Descriptor()
}

func (f *Filter) Open(tid TransactionID) error {
	return f.child.Open(tid)
}

func (f *Filter) Rewind() error {
	return f.child.Rewind()
}

func (f *Filter) Close() error {
	return f.child.Close()
}

// Next pulls from the child until a tuple satisfies the predicate, or the
// child is exhausted.
func (f *Filter) Next() (*Tuple, error) {
	for {
		t, err := f.child.Next()
		if err != nil {
			return nil, err
		}
		leftVal, err := f.left.EvalExpr(t)
		if err != nil {
			return nil, err
		}
		rightVal, err := f.right.EvalExpr(t)
		if err != nil {
			return nil, err
		}
		if EvalPred(leftVal, rightVal, f.op) {
			return t, nil
		}
	}
}
