package heapdb

import "testing"

func TestTupleDescEquals(t *testing.T) {
	a := NewTupleDesc([]DBType{IntType, StringType}, []string{"x", "y"})
	b := NewTupleDesc([]DBType{IntType, StringType}, []string{"other", "names"})
	c := NewTupleDesc([]DBType{StringType, IntType}, []string{"x", "y"})

	if !a.Equals(b) {
		t.Errorf("Equals() = false, want true (names should not matter)")
	}
	if a.Equals(c) {
		t.Errorf("Equals() = true, want false (types differ)")
	}
}

func TestTupleDescSize(t *testing.T) {
	td := NewTupleDesc([]DBType{IntType, StringType, IntType}, nil)
	want := IntWidth + StringWidth + IntWidth
	if got := td.Size(); got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
}

func TestCombine(t *testing.T) {
	left := NewTupleDesc([]DBType{IntType}, []string{"a"})
	right := NewTupleDesc([]DBType{StringType}, []string{"b"})
	combined := Combine(left, right)
	if combined.NumFields() != 2 {
		t.Fatalf("NumFields() = %d, want 2", combined.NumFields())
	}
	if combined.Fields[0].Fname != "a" || combined.Fields[1].Fname != "b" {
		t.Errorf("Combine() did not preserve field order/names: %v", combined)
	}
}

func TestFieldIndexNoSuchField(t *testing.T) {
	td := NewTupleDesc([]DBType{IntType}, []string{"a"})
	if _, err := td.FieldIndex("missing"); err == nil {
		t.Fatal("FieldIndex() error = nil, want NoSuchField")
	} else if de, ok := err.(DBError); !ok || de.Kind != NoSuchField {
		t.Errorf("FieldIndex() error = %v, want NoSuchField", err)
	}
}

func TestEvalPredInt(t *testing.T) {
	cases := []struct {
		a, b int32
		op   BoolOp
		want bool
	}{
		{1, 2, OpLt, true},
		{2, 1, OpLt, false},
		{5, 5, OpEq, true},
		{5, 6, OpNe, true},
		{5, 5, OpGe, true},
	}
	for _, c := range cases {
		got := EvalPred(IntField{Value: c.a}, IntField{Value: c.b}, c.op)
		if got != c.want {
			t.Errorf("EvalPred(%d, %d, %v) = %v, want %v", c.a, c.b, c.op, got, c.want)
		}
	}
}

func TestStringLike(t *testing.T) {
	cases := []struct {
		value, pattern string
		want           bool
	}{
		{"hello", "hello", true},
		{"hello", "world", false},
		{"hello world", "hello%", true},
		{"hello world", "%world", true},
		{"hello world", "%lo wo%", true},
		{"hello world", "%xyz%", false},
	}
	for _, c := range cases {
		if got := stringLike(c.value, c.pattern); got != c.want {
			t.Errorf("stringLike(%q, %q) = %v, want %v", c.value, c.pattern, got, c.want)
		}
	}
}
