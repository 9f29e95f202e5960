package heapdb

import "fmt"

// DBType is the type tag of a tuple field.
type DBType int

const (
	IntType DBType = iota
	StringType
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// Fixed on-disk widths, per spec.md §3/§6. A string field is a 4-byte
// length prefix followed by exactly StringLength bytes of payload.
const (
	IntWidth    = 4
	StringLength = 128
	StringWidth = 4 + StringLength
)

func (t DBType) width() int {
	switch t {
	case IntType:
		return IntWidth
	case StringType:
		return StringWidth
	}
	return 0
}

// FieldType names one column of a schema: its type, and an optional name.
type FieldType struct {
	Fname string
	Ftype DBType
}

// TupleDesc is a table's (or an operator's output) schema: an ordered,
// non-empty sequence of (type, optional name) pairs.
type TupleDesc struct {
	Fields []FieldType
}

// NewTupleDesc builds a TupleDesc, pairing types with names positionally.
// len(names) may be less than len(types); missing names are left empty.
func NewTupleDesc(types []DBType, names []string) *TupleDesc {
	fields := make([]FieldType, len(types))
	for i, ty := range types {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields[i] = FieldType{Fname: name, Ftype: ty}
	}
	return &TupleDesc{Fields: fields}
}

// NumFields returns the number of columns in the schema.
func (td *TupleDesc) NumFields() int {
	return len(td.Fields)
}

// Size is the fixed on-disk byte width of a tuple with this schema.
func (td *TupleDesc) Size() int {
	size := 0
	for _, f := range td.Fields {
		size += f.Ftype.width()
	}
	return size
}

// Equals compares two TupleDescs by type sequence only; field names are
// ignored, per spec.md §3.
func (td *TupleDesc) Equals(other *TupleDesc) bool {
	if td == nil || other == nil {
		return td == other
	}
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i := range td.Fields {
		if td.Fields[i].Ftype != other.Fields[i].Ftype {
			return false
		}
	}
	return true
}

// FieldIndex returns the index of the first field named name, or
// NoSuchField if none matches.
func (td *TupleDesc) FieldIndex(name string) (int, error) {
	for i, f := range td.Fields {
		if f.Fname == name {
			return i, nil
		}
	}
	return -1, newErr(NoSuchField, "no field named %q", name)
}

// Combine concatenates td1's fields followed by td2's fields into a new
// TupleDesc, per spec.md §3.
func Combine(td1, td2 *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td1.Fields)+len(td2.Fields))
	fields = append(fields, td1.Fields...)
	fields = append(fields, td2.Fields...)
	return &TupleDesc{Fields: fields}
}

func (td *TupleDesc) copy() *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	return &TupleDesc{Fields: fields}
}

func (td *TupleDesc) String() string {
	s := ""
	for i, f := range td.Fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%s", f.Fname, f.Ftype)
	}
	return s
}

// DBValue is a field value: either an IntField or a StringField.
type DBValue interface {
	evalPred(v DBValue, op BoolOp) bool
}

// IntField is a 32-bit signed integer field value.
type IntField struct {
	Value int32
}

// StringField is a field value of at most StringLength bytes.
type StringField struct {
	Value string
}

func (f IntField) evalPred(v DBValue, op BoolOp) bool {
	other, ok := v.(IntField)
	if !ok {
		return false
	}
	return evalIntPred(f.Value, other.Value, op)
}

func (f StringField) evalPred(v DBValue, op BoolOp) bool {
	other, ok := v.(StringField)
	if !ok {
		return false
	}
	return evalStringPred(f.Value, other.Value, op)
}

// EvalPred applies op comparing f against v, e.g. EvalPred(f, v, OpLt)
// reports whether f < v.
func EvalPred(f DBValue, v DBValue, op BoolOp) bool {
	return f.evalPred(v, op)
}

func evalIntPred(a, b int32, op BoolOp) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLike:
		return a == b
	}
	return false
}

func evalStringPred(a, b string, op BoolOp) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLike:
		return stringLike(a, b)
	}
	return false
}

// BoolOp is a comparison operator used by Filter, Join, and aggregate
// selectivity estimation (spec.md §4.6).
type BoolOp int

const (
	OpEq BoolOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLike
)

func (op BoolOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLike:
		return "LIKE"
	}
	return "?"
}
