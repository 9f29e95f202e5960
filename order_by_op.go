package heapdb

import "sort"

// OrderBy sorts its child's output by a sequence of fields, each
// ascending or descending, before yielding any tuple (spec.md §4, a
// supplemented operator present in every variant of the teacher's lab
// set). Like Aggregate, it is blocking: the full child result is read and
// sorted in Open.
type OrderBy struct {
	child      Operator
	fields     []Expr
	ascending  []bool
	sorted     []*Tuple
	pos        int
}

// NewOrderBy constructs a sort of child's output by fields, with
// ascending[i] controlling the sort direction of fields[i].
func NewOrderBy(fields []Expr, child Operator, ascending []bool) *OrderBy {
	return &OrderBy{child: child, fields: fields, ascending: ascending}
}

func (o *OrderBy) Descriptor() *TupleDesc {
	return o.child.Descriptor()
}

func (o *OrderBy) Open(tid TransactionID) error {
	if err := o.child.Open(tid); err != nil {
		return err
	}
	return o.sortChild()
}

func (o *OrderBy) sortChild() error {
	if err := o.child.Rewind(); err != nil {
		return err
	}
	tuples, err := drainAll(o.child)
	if err != nil {
		return err
	}
	var sortErr error
	sort.SliceStable(tuples, func(i, j int) bool {
		less, err := o.less(tuples[i], tuples[j])
		if err != nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return sortErr
	}
	o.sorted = tuples
	o.pos = 0
	return nil
}

func (o *OrderBy) less(a, b *Tuple) (bool, error) {
	for i, expr := range o.fields {
		order, err := a.compareField(b, expr)
		if err != nil {
			return false, err
		}
		if order == OrderedEqual {
			continue
		}
		if o.ascending[i] {
			return order == OrderedLessThan, nil
		}
		return order == OrderedGreaterThan, nil
	}
	return false, nil
}

func (o *OrderBy) Next() (*Tuple, error) {
	if o.pos >= len(o.sorted) {
		return nil, ErrNoMoreTuples
	}
	t := o.sorted[o.pos]
	o.pos++
	return t, nil
}

func (o *OrderBy) Rewind() error {
	o.pos = 0
	return nil
}

func (o *OrderBy) Close() error {
	return o.child.Close()
}
