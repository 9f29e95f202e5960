package heapdb

// Project narrows and renames its child's fields to a chosen list of
// expressions, optionally deduplicating the result (spec.md §4, a
// supplemented operator: the pipeline's component list names Scan,
// Filter, Join, Aggregate, Insert, Delete, but a projection stage is the
// natural complement SeqScan's "alias.field" naming is meant to feed).
type Project struct {
	selectFields []Expr
	outputNames  []string
	child        Operator
	distinct     bool
	desc         *TupleDesc
	seen         map[string]struct{}
}

// NewProject constructs a projection of child onto selectFields, renamed
// to outputNames (must be the same length).
func NewProject(selectFields []Expr, outputNames []string, distinct bool, child Operator) (*Project, error) {
	if len(selectFields) != len(outputNames) {
		return nil, newErr(SchemaMismatch, "selectFields and outputNames must be the same length")
	}
	fields := make([]FieldType, len(selectFields))
	for i, e := range selectFields {
		fields[i] = FieldType{Fname: outputNames[i], Ftype: e.Type()}
	}
	return &Project{
		selectFields: selectFields,
		outputNames:  outputNames,
		distinct:     distinct,
		child:        child,
		desc:         &TupleDesc{Fields: fields},
	}, nil
}

func (p *Project) Descriptor() *TupleDesc {
	return p.desc
}

func (p *Project) Open(tid TransactionID) error {
	if p.distinct {
		p.seen = make(map[string]struct{})
	}
	return p.child.Open(tid)
}

func (p *Project) Rewind() error {
	if p.distinct {
		p.seen = make(map[string]struct{})
	}
	return p.child.Rewind()
}

func (p *Project) Close() error {
	return p.child.Close()
}

func (p *Project) Next() (*Tuple, error) {
	for {
		t, err := p.child.Next()
		if err != nil {
			return nil, err
		}

		out := &Tuple{Desc: *p.desc, Fields: make([]DBValue, len(p.selectFields))}
		for i, e := range p.selectFields {
			v, err := e.EvalExpr(t)
			if err != nil {
				return nil, err
			}
			out.Fields[i] = v
		}

		if p.distinct {
			key, err := out.tupleKey()
			if err != nil {
				return nil, err
			}
			if _, dup := p.seen[key]; dup {
				continue
			}
			p.seen[key] = struct{}{}
		}

		return out, nil
	}
}
