package heapdb

import "strings"

// Expr evaluates to a DBValue given an input tuple. Predicate constants and
// field references are both expressed this way, in the teacher's style
// (tuple.go's compareField/EvalExpr convention), generalized into its own
// file since the teacher never shipped the expr.go that defined it.
type Expr interface {
	EvalExpr(t *Tuple) (DBValue, error)
	Type() DBType
}

// FieldExpr extracts the value of one field from a tuple by index.
type FieldExpr struct {
	FieldIndex int
	Ftype      DBType
}

func (e FieldExpr) EvalExpr(t *Tuple) (DBValue, error) {
	if e.FieldIndex < 0 || e.FieldIndex >= len(t.Fields) {
		return nil, newErr(NoSuchField, "field index %d out of range", e.FieldIndex)
	}
	return t.Fields[e.FieldIndex], nil
}

func (e FieldExpr) Type() DBType {
	return e.Ftype
}

// ConstExpr evaluates to the same value regardless of the input tuple.
type ConstExpr struct {
	Value DBValue
	Ftype DBType
}

func (e ConstExpr) EvalExpr(t *Tuple) (DBValue, error) {
	return e.Value, nil
}

func (e ConstExpr) Type() DBType {
	return e.Ftype
}

// stringLike implements the LIKE predicate with a single '%' wildcard
// convention, matching the rest of the pack's trivial LIKE handling: '%'
// anywhere in pattern matches any substring at that position.
func stringLike(value, pattern string) bool {
	if !strings.Contains(pattern, "%") {
		return value == pattern
	}
	parts := strings.Split(pattern, "%")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(value[pos:], part)
		if idx == -1 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(part)
	}
	if len(parts) > 0 && parts[len(parts)-1] != "" && !strings.HasSuffix(pattern, "%") {
		return strings.HasSuffix(value, parts[len(parts)-1])
	}
	return true
}
