package heapdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Tuple is a row: a TupleDesc-shaped, mutable ordered vector of field
// values, plus an optional RecordID once materialized from a page
// (spec.md §3).
type Tuple struct {
	Desc   TupleDesc
	Fields []DBValue
	Rid    *RecordID
}

// NewTuple constructs a Tuple with no RecordID (not yet on a page).
func NewTuple(desc TupleDesc, fields []DBValue) *Tuple {
	return &Tuple{Desc: desc, Fields: fields}
}

// writeTo serializes the tuple's fields, in schema order, little-endian,
// into buf. Strings are written as a 4-byte length prefix followed by
// exactly StringLength bytes of payload (bytes beyond the length are
// unspecified, per spec.md §6).
func (t *Tuple) writeTo(buf *bytes.Buffer) error {
	for i, fv := range t.Fields {
		switch t.Desc.Fields[i].Ftype {
		case IntType:
			v, ok := fv.(IntField)
			if !ok {
				return newErr(SchemaMismatch, "field %d: expected int, got %T", i, fv)
			}
			if err := binary.Write(buf, binary.LittleEndian, v.Value); err != nil {
				return err
			}
		case StringType:
			v, ok := fv.(StringField)
			if !ok {
				return newErr(SchemaMismatch, "field %d: expected string, got %T", i, fv)
			}
			if len(v.Value) > StringLength {
				return newErr(SchemaMismatch, "string field %d exceeds %d bytes", i, StringLength)
			}
			if err := binary.Write(buf, binary.LittleEndian, int32(len(v.Value))); err != nil {
				return err
			}
			payload := make([]byte, StringLength)
			copy(payload, v.Value)
			if _, err := buf.Write(payload); err != nil {
				return err
			}
		}
	}
	return nil
}

// readTupleFrom deserializes one tuple of the given schema from buf.
func readTupleFrom(buf *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	fields := make([]DBValue, len(desc.Fields))
	for i, ft := range desc.Fields {
		switch ft.Ftype {
		case IntType:
			var v int32
			if err := binary.Read(buf, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			fields[i] = IntField{Value: v}
		case StringType:
			var length int32
			if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
				return nil, err
			}
			if length < 0 || int(length) > StringLength {
				return nil, newErr(IoError, "corrupt string length %d", length)
			}
			payload := make([]byte, StringLength)
			if err := binary.Read(buf, binary.LittleEndian, payload); err != nil {
				return nil, err
			}
			fields[i] = StringField{Value: string(payload[:length])}
		}
	}
	return &Tuple{Desc: *desc, Fields: fields}, nil
}

// Equals compares two tuples for equality: equal schemas (type sequence)
// and equal fields in order.
func (t *Tuple) Equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.Equals(&other.Desc) {
		return false
	}
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// joinTuples concatenates t1's fields followed by t2's, producing a new
// tuple whose schema is Combine(t1.Desc, t2.Desc).
func joinTuples(t1, t2 *Tuple) *Tuple {
	desc := Combine(&t1.Desc, &t2.Desc)
	fields := make([]DBValue, 0, len(t1.Fields)+len(t2.Fields))
	fields = append(fields, t1.Fields...)
	fields = append(fields, t2.Fields...)
	return &Tuple{Desc: *desc, Fields: fields}
}

// project returns a new tuple containing only the fields at the given
// indices, in that order.
func (t *Tuple) project(indices []int) (*Tuple, error) {
	fields := make([]DBValue, len(indices))
	descFields := make([]FieldType, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(t.Fields) {
			return nil, newErr(NoSuchField, "projection index %d out of range", idx)
		}
		fields[i] = t.Fields[idx]
		descFields[i] = t.Desc.Fields[idx]
	}
	return &Tuple{Desc: TupleDesc{Fields: descFields}, Fields: fields}, nil
}

type orderByState int

const (
	OrderedLessThan orderByState = iota
	OrderedEqual
	OrderedGreaterThan
)

// compareField evaluates expr against both tuples and orders the results.
func (t *Tuple) compareField(t2 *Tuple, expr Expr) (orderByState, error) {
	v1, err := expr.EvalExpr(t)
	if err != nil {
		return OrderedEqual, err
	}
	v2, err := expr.EvalExpr(t2)
	if err != nil {
		return OrderedEqual, err
	}
	return compareValues(v1, v2)
}

func compareValues(v1, v2 DBValue) (orderByState, error) {
	switch a := v1.(type) {
	case IntField:
		b, ok := v2.(IntField)
		if !ok {
			return OrderedEqual, newErr(SchemaMismatch, "cannot compare int to %T", v2)
		}
		switch {
		case a.Value < b.Value:
			return OrderedLessThan, nil
		case a.Value > b.Value:
			return OrderedGreaterThan, nil
		default:
			return OrderedEqual, nil
		}
	case StringField:
		b, ok := v2.(StringField)
		if !ok {
			return OrderedEqual, newErr(SchemaMismatch, "cannot compare string to %T", v2)
		}
		switch {
		case a.Value < b.Value:
			return OrderedLessThan, nil
		case a.Value > b.Value:
			return OrderedGreaterThan, nil
		default:
			return OrderedEqual, nil
		}
	}
	return OrderedEqual, newErr(SchemaMismatch, "unsupported comparison type %T", v1)
}

// tupleKey computes a hashable, comparable key for a tuple's contents,
// used for DISTINCT-style deduplication.
func (t *Tuple) tupleKey() (string, error) {
	var buf bytes.Buffer
	if err := t.writeTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		switch v := f.(type) {
		case IntField:
			parts[i] = strconv.FormatInt(int64(v.Value), 10)
		case StringField:
			parts[i] = v.Value
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
