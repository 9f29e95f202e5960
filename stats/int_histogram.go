// Package stats implements the selectivity-estimator contract consumed by
// an (out-of-scope) query planner: per-column histograms and per-table
// cost/cardinality estimates (spec.md §6). Grounded on
// tikkisean-csc560-lab2/lab1_solution/godb/{int_histogram.go,table_stats.go},
// which define the same NumHistBins/CostPerPage/EstimateSelectivity
// contract as an unimplemented stub; this package supplies a working
// equi-width implementation of it.
package stats

import heapdb "github.com/cs4320/heapdb"

// IntHistogram is an equi-width histogram over a single int32 column,
// built with a double pass: one pass to find min/max, a second to
// populate bucket counts (spec.md §6).
type IntHistogram struct {
	buckets []int
	min     int32
	max     int32
	width   float64
	total   int
}

// NewIntHistogram constructs an empty histogram with nBuckets equal-width
// buckets covering [vMin, vMax] inclusive.
func NewIntHistogram(nBuckets int, vMin, vMax int32) *IntHistogram {
	if nBuckets < 1 {
		nBuckets = 1
	}
	span := float64(vMax) - float64(vMin) + 1
	width := span / float64(nBuckets)
	if width <= 0 {
		width = 1
	}
	return &IntHistogram{
		buckets: make([]int, nBuckets),
		min:     vMin,
		max:     vMax,
		width:   width,
	}
}

func (h *IntHistogram) bucketOf(v int32) int {
	if v <= h.min {
		return 0
	}
	if v >= h.max {
		return len(h.buckets) - 1
	}
	idx := int(float64(v-h.min) / h.width)
	if idx >= len(h.buckets) {
		idx = len(h.buckets) - 1
	}
	return idx
}

// AddValue records v in the histogram.
func (h *IntHistogram) AddValue(v int32) {
	h.buckets[h.bucketOf(v)]++
	h.total++
}

// EstimateSelectivity returns the fraction of recorded values satisfying
// "field op v", e.g. for op=OpLt, v=10 the fraction of values less than
// 10 (spec.md §6).
func (h *IntHistogram) EstimateSelectivity(op heapdb.BoolOp, v int32) float64 {
	if h.total == 0 {
		return 0
	}
	switch op {
	case heapdb.OpEq:
		return h.bucketFraction(v) / h.width
	case heapdb.OpNe:
		return 1 - h.bucketFraction(v)/h.width
	case heapdb.OpLt:
		return h.cumulativeBelow(v)
	case heapdb.OpLe:
		return h.cumulativeBelow(v + 1)
	case heapdb.OpGt:
		return 1 - h.cumulativeBelow(v+1)
	case heapdb.OpGe:
		return 1 - h.cumulativeBelow(v)
	}
	return 1
}

func (h *IntHistogram) bucketFraction(v int32) float64 {
	if v < h.min || v > h.max {
		return 0
	}
	return float64(h.buckets[h.bucketOf(v)]) / float64(h.total)
}

// cumulativeBelow estimates the fraction of values strictly less than v,
// summing whole buckets entirely below v and interpolating the bucket v
// falls within.
func (h *IntHistogram) cumulativeBelow(v int32) float64 {
	if v <= h.min {
		return 0
	}
	if v > h.max {
		return 1
	}
	count := 0.0
	for i, n := range h.buckets {
		bucketStart := h.min + int32(float64(i)*h.width)
		bucketEnd := h.min + int32(float64(i+1)*h.width)
		switch {
		case int32(bucketEnd) <= v:
			count += float64(n)
		case int32(bucketStart) < v:
			span := float64(bucketEnd) - float64(bucketStart)
			if span <= 0 {
				span = 1
			}
			frac := (float64(v) - float64(bucketStart)) / span
			count += float64(n) * frac
		}
	}
	return count / float64(h.total)
}
