package heapdb

import (
	"bytes"
	"testing"

	"github.com/d4l3k/messagediff"
)

func intStringDesc() *TupleDesc {
	return NewTupleDesc([]DBType{IntType, StringType}, []string{"id", "name"})
}

func TestTupleWriteReadRoundTrip(t *testing.T) {
	desc := intStringDesc()
	orig := &Tuple{
		Desc:   *desc,
		Fields: []DBValue{IntField{Value: 42}, StringField{Value: "josie"}},
	}

	var buf bytes.Buffer
	if err := orig.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}

	got, err := readTupleFrom(&buf, desc)
	if err != nil {
		t.Fatalf("readTupleFrom() error = %v", err)
	}

	if !orig.Equals(got) {
		diff, equal := messagediff.PrettyDiff(orig.Fields, got.Fields)
		if !equal {
			t.Errorf("round trip mismatch:\n%s", diff)
		}
	}
}

func TestTupleWriteRejectsOversizeString(t *testing.T) {
	desc := NewTupleDesc([]DBType{StringType}, []string{"s"})
	huge := make([]byte, StringLength+1)
	for i := range huge {
		huge[i] = 'x'
	}
	tup := &Tuple{Desc: *desc, Fields: []DBValue{StringField{Value: string(huge)}}}

	var buf bytes.Buffer
	if err := tup.writeTo(&buf); err == nil {
		t.Fatal("writeTo() error = nil, want SchemaMismatch")
	}
}

func TestJoinTuples(t *testing.T) {
	left := &Tuple{
		Desc:   *NewTupleDesc([]DBType{IntType}, []string{"a"}),
		Fields: []DBValue{IntField{Value: 1}},
	}
	right := &Tuple{
		Desc:   *NewTupleDesc([]DBType{StringType}, []string{"b"}),
		Fields: []DBValue{StringField{Value: "x"}},
	}
	joined := joinTuples(left, right)
	if joined.Desc.NumFields() != 2 {
		t.Fatalf("joined field count = %d, want 2", joined.Desc.NumFields())
	}
	if joined.Fields[0] != (IntField{Value: 1}) || joined.Fields[1] != (StringField{Value: "x"}) {
		t.Errorf("joinTuples() = %v, want concatenated fields", joined)
	}
}

func TestTupleProject(t *testing.T) {
	desc := intStringDesc()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 7}, StringField{Value: "y"}}}
	proj, err := tup.project([]int{1})
	if err != nil {
		t.Fatalf("project() error = %v", err)
	}
	if len(proj.Fields) != 1 || proj.Fields[0] != (StringField{Value: "y"}) {
		t.Errorf("project() = %v, want [y]", proj.Fields)
	}
	if _, err := tup.project([]int{5}); err == nil {
		t.Fatal("project() with out-of-range index: error = nil, want error")
	}
}
