package stats

import (
	"testing"

	heapdb "github.com/cs4320/heapdb"
)

func TestIntHistogramEqSelectivityInOpenUnitInterval(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for i := int32(1); i <= 100; i++ {
		h.AddValue(i)
	}
	sel := h.EstimateSelectivity(heapdb.OpEq, 50)
	if sel <= 0 || sel >= 1 {
		t.Errorf("EstimateSelectivity(Eq, 50) = %v, want a value in (0, 1)", sel)
	}
}

func TestIntHistogramLtBoundaries(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for i := int32(1); i <= 100; i++ {
		h.AddValue(i)
	}
	if sel := h.EstimateSelectivity(heapdb.OpLt, 1); sel != 0 {
		t.Errorf("EstimateSelectivity(Lt, min) = %v, want 0", sel)
	}
	if sel := h.EstimateSelectivity(heapdb.OpLt, 101); sel != 1 {
		t.Errorf("EstimateSelectivity(Lt, max+1) = %v, want 1", sel)
	}
	mid := h.EstimateSelectivity(heapdb.OpLt, 50)
	if mid < 0.3 || mid > 0.7 {
		t.Errorf("EstimateSelectivity(Lt, 50) = %v, want roughly 0.5", mid)
	}
}

func TestIntHistogramGtComplementsLe(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for i := int32(1); i <= 100; i++ {
		h.AddValue(i)
	}
	le := h.EstimateSelectivity(heapdb.OpLe, 50)
	gt := h.EstimateSelectivity(heapdb.OpGt, 50)
	if got, want := le+gt, 1.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Le(50) + Gt(50) = %v, want 1", got)
	}
}

func TestIntHistogramEmpty(t *testing.T) {
	h := NewIntHistogram(10, 0, 10)
	if sel := h.EstimateSelectivity(heapdb.OpEq, 5); sel != 0 {
		t.Errorf("EstimateSelectivity() on empty histogram = %v, want 0", sel)
	}
}
