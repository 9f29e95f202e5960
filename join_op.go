package heapdb

// Join implements an equality join between a left and right operator: for
// every left tuple, the right child is rewound and scanned, emitting
// joinTuples(left, right) for every right tuple whose rightField equals
// the left tuple's leftField (spec.md §4.6). This is a deliberate
// nested-loop-with-rewind replacement of the teacher's sort-merge join
// (join_op.go originally sorted both sides and merged); the spec calls
// for the left operator to drive the outer loop and the right operator to
// be rewound per outer tuple, which a sort-merge algorithm does not do.
type Join struct {
	leftField, rightField Expr
	left, right           Operator
	desc                  *TupleDesc
	curLeft               *Tuple
}

// NewJoin constructs a nested-loop equality join of left.leftField against
// right.rightField.
func NewJoin(left Operator, leftField Expr, right Operator, rightField Expr) (*Join, error) {
	if leftField.Type() != rightField.Type() {
		return nil, newErr(SchemaMismatch, "join fields have different types")
	}
	return &Join{
		leftField:  leftField,
		rightField: rightField,
		left:       left,
		right:      right,
		desc:       Combine(left.Descriptor(), right.Descriptor()),
	}, nil
}

func (j *Join) Descriptor() *TupleDesc {
	return j.desc
}

func (j *Join) Open(tid TransactionID) error {
	if err := j.left.Open(tid); err != nil {
		return err
	}
	if err := j.right.Open(tid); err != nil {
		return err
	}
	return j.advanceLeft()
}

func (j *Join) advanceLeft() error {
	t, err := j.left.Next()
	if err != nil {
		if isNoMoreTuples(err) {
			j.curLeft = nil
			return nil
		}
		return err
	}
	j.curLeft = t
	return j.right.Rewind()
}

func (j *Join) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	return j.advanceLeft()
}

func (j *Join) Close() error {
	if err := j.left.Close(); err != nil {
		return err
	}
	return j.right.Close()
}

// Next scans the right child for every outer (left) tuple, rewinding it
// each time the outer loop advances.
func (j *Join) Next() (*Tuple, error) {
	for j.curLeft != nil {
		rt, err := j.right.Next()
		if err != nil {
			if !isNoMoreTuples(err) {
				return nil, err
			}
			if err := j.advanceLeft(); err != nil {
				return nil, err
			}
			continue
		}

		lv, err := j.leftField.EvalExpr(j.curLeft)
		if err != nil {
			return nil, err
		}
		rv, err := j.rightField.EvalExpr(rt)
		if err != nil {
			return nil, err
		}
		if EvalPred(lv, rv, OpEq) {
			return joinTuples(j.curLeft, rt), nil
		}
	}
	return nil, ErrNoMoreTuples
}
