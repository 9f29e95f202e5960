package stats

import (
	boom "github.com/tylertreat/BoomFilters"

	heapdb "github.com/cs4320/heapdb"
)

// StringHistogram estimates per-value frequency for a string column using
// a count-min sketch rather than exact buckets, since string domains
// aren't naturally equi-width. Grounded directly on
// tikkisean-csc560-lab2/godb/string_histogram.go, which backs the same
// EstimateSelectivity contract with a boom.CountMinSketch.
type StringHistogram struct {
	cms   *boom.CountMinSketch
	total uint64
}

// NewStringHistogram constructs a count-min sketch with epsilon 0.001 and
// delta 0.999, matching the teacher's epsilon/delta choice.
func NewStringHistogram() *StringHistogram {
	return &StringHistogram{cms: boom.NewCountMinSketch(0.001, 0.999)}
}

// AddValue records s in the sketch.
func (h *StringHistogram) AddValue(s string) {
	h.cms.Add([]byte(s))
	h.total++
}

// EstimateSelectivity returns the fraction of recorded values satisfying
// "field op s". Only OpEq and OpNe are estimated from the sketch's
// approximate counts; ordering predicates (Lt/Gt/...) have no meaningful
// count-min-sketch estimate and fall back to a neutral 0.5, matching the
// teacher's own EstimateSelectivity which ignored op entirely.
func (h *StringHistogram) EstimateSelectivity(op heapdb.BoolOp, s string) float64 {
	if h.total == 0 {
		return 0
	}
	freq := float64(h.cms.Count([]byte(s))) / float64(h.total)
	switch op {
	case heapdb.OpEq:
		return freq
	case heapdb.OpNe:
		return 1 - freq
	}
	return 0.5
}
