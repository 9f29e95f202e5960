package heapdb

import "fmt"

// Aggregate computes one aggregate function over its child's tuples,
// optionally grouped by a single field. Its output schema is [INT] with
// no grouping, or [groupFieldType, INT] with grouping (spec.md §4.6).
// Because grouping requires seeing every tuple before any group's result
// can be finalized, Aggregate is blocking: it drains its child entirely
// on Open, in the shape of the teacher's OrderBy "blocking sort" note.
type Aggregate struct {
	child     Operator
	aggExpr   Expr
	aggOp     AggOp
	groupExpr Expr // nil if no grouping
	desc      *TupleDesc

	results []*Tuple
	pos     int
}

// NewAggregate constructs an aggregate of aggOp over aggExpr, grouped by
// groupExpr (nil for no grouping).
func NewAggregate(child Operator, aggExpr Expr, aggOp AggOp, groupExpr Expr) *Aggregate {
	var fields []FieldType
	if groupExpr != nil {
		fields = []FieldType{
			{Fname: "groupVal", Ftype: groupExpr.Type()},
			{Fname: "aggVal", Ftype: IntType},
		}
	} else {
		fields = []FieldType{{Fname: "aggVal", Ftype: IntType}}
	}
	return &Aggregate{
		child:     child,
		aggExpr:   aggExpr,
		aggOp:     aggOp,
		groupExpr: groupExpr,
		desc:      &TupleDesc{Fields: fields},
	}
}

func (a *Aggregate) Descriptor() *TupleDesc {
	return a.desc
}

func (a *Aggregate) Open(tid TransactionID) error {
	if err := a.child.Open(tid); err != nil {
		return err
	}
	return a.compute()
}

func (a *Aggregate) compute() error {
	if err := a.child.Rewind(); err != nil {
		return err
	}
	tuples, err := drainAll(a.child)
	if err != nil {
		return err
	}

	if a.groupExpr == nil {
		state, err := newAggState(a.aggOp, a.aggExpr)
		if err != nil {
			return err
		}
		for _, t := range tuples {
			if err := state.addTuple(t); err != nil {
				return err
			}
		}
		a.results = []*Tuple{{
			Desc:   *a.desc,
			Fields: []DBValue{state.finalize()},
		}}
		a.pos = 0
		return nil
	}

	order := make([]DBValue, 0)
	states := make(map[string]aggState)
	keyOf := make(map[string]DBValue)
	for _, t := range tuples {
		gv, err := a.groupExpr.EvalExpr(t)
		if err != nil {
			return err
		}
		key, err := groupKey(gv)
		if err != nil {
			return err
		}
		state, ok := states[key]
		if !ok {
			state, err = newAggState(a.aggOp, a.aggExpr)
			if err != nil {
				return err
			}
			states[key] = state
			keyOf[key] = gv
			order = append(order, gv)
		}
		if err := state.addTuple(t); err != nil {
			return err
		}
	}

	a.results = make([]*Tuple, 0, len(order))
	for _, gv := range order {
		key, _ := groupKey(gv)
		state := states[key]
		a.results = append(a.results, &Tuple{
			Desc:   *a.desc,
			Fields: []DBValue{gv, state.finalize()},
		})
	}
	a.pos = 0
	return nil
}

func groupKey(v DBValue) (string, error) {
	switch tv := v.(type) {
	case IntField:
		return fmt.Sprintf("i:%d", tv.Value), nil
	case StringField:
		return "s:" + tv.Value, nil
	}
	return "", newErr(SchemaMismatch, "unsupported group key type %T", v)
}

func (a *Aggregate) Next() (*Tuple, error) {
	if a.pos >= len(a.results) {
		return nil, ErrNoMoreTuples
	}
	t := a.results[a.pos]
	a.pos++
	return t, nil
}

func (a *Aggregate) Rewind() error {
	a.pos = 0
	return nil
}

func (a *Aggregate) Close() error {
	return a.child.Close()
}
