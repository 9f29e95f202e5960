package stats

import (
	"errors"
	"fmt"

	heapdb "github.com/cs4320/heapdb"
)

// NumHistBins is the number of equi-width buckets each IntHistogram uses,
// matching the teacher's stub constant and its "at least 100" comment.
const NumHistBins = 100

// CostPerPage is the assumed cost, in arbitrary units, to read one page
// from disk, matching the teacher's stub constant.
const CostPerPage = 1000

// TableStats holds per-column histograms for one table, used to estimate
// scan cost, result cardinality, and predicate selectivity for an
// (out-of-scope) query planner (spec.md §6).
type TableStats struct {
	numPages  int
	numTuples int
	ints      map[string]*IntHistogram
	strings   map[string]*StringHistogram
}

func isEOF(err error) bool {
	return errors.Is(err, heapdb.ErrNoMoreTuples)
}

// ComputeTableStats builds a TableStats for file by scanning it twice
// under a dedicated transaction: once to find each int column's min/max,
// once to populate histogram buckets, matching the teacher's
// ComputeTableStats(bp, dbFile) signature.
func ComputeTableStats(bp *heapdb.BufferPool, file *heapdb.HeapFile) (*TableStats, error) {
	desc := file.Descriptor()

	txn := heapdb.NewTransaction(bp)
	if err := txn.Begin(); err != nil {
		return nil, err
	}

	mins := make(map[string]int32)
	maxs := make(map[string]int32)
	first := make(map[string]bool)
	numTuples := 0

	it, err := file.Iterator(bp, txn.ID)
	if err != nil {
		txn.Abort()
		return nil, err
	}
	for {
		t, err := it.Next()
		if err != nil {
			if isEOF(err) {
				break
			}
			txn.Abort()
			return nil, err
		}
		numTuples++
		for i, f := range desc.Fields {
			if f.Ftype != heapdb.IntType {
				continue
			}
			iv, ok := t.Fields[i].(heapdb.IntField)
			if !ok {
				continue
			}
			if !first[f.Fname] {
				mins[f.Fname] = iv.Value
				maxs[f.Fname] = iv.Value
				first[f.Fname] = true
				continue
			}
			if iv.Value < mins[f.Fname] {
				mins[f.Fname] = iv.Value
			}
			if iv.Value > maxs[f.Fname] {
				maxs[f.Fname] = iv.Value
			}
		}
	}

	ts := &TableStats{
		numPages:  file.NumPages(),
		numTuples: numTuples,
		ints:      make(map[string]*IntHistogram),
		strings:   make(map[string]*StringHistogram),
	}
	for _, f := range desc.Fields {
		switch f.Ftype {
		case heapdb.IntType:
			if first[f.Fname] {
				ts.ints[f.Fname] = NewIntHistogram(NumHistBins, mins[f.Fname], maxs[f.Fname])
			}
		case heapdb.StringType:
			ts.strings[f.Fname] = NewStringHistogram()
		}
	}

	if err := it.Rewind(); err != nil {
		txn.Abort()
		return nil, err
	}
	for {
		t, err := it.Next()
		if err != nil {
			if isEOF(err) {
				break
			}
			txn.Abort()
			return nil, err
		}
		for i, f := range desc.Fields {
			switch v := t.Fields[i].(type) {
			case heapdb.IntField:
				if h, ok := ts.ints[f.Fname]; ok {
					h.AddValue(v.Value)
				}
			case heapdb.StringField:
				if h, ok := ts.strings[f.Fname]; ok {
					h.AddValue(v.Value)
				}
			}
		}
	}

	if err := txn.Commit(); err != nil {
		return nil, err
	}
	return ts, nil
}

// EstimateScanCost estimates the cost of sequentially scanning the table,
// assuming each page costs CostPerPage and the buffer pool is cold
// (spec.md §6).
func (t *TableStats) EstimateScanCost() float64 {
	return float64(t.numPages) * CostPerPage
}

// EstimateCardinality estimates the number of tuples a predicate with the
// given selectivity will return.
func (t *TableStats) EstimateCardinality(selectivity float64) int {
	return int(selectivity * float64(t.numTuples))
}

// EstimateSelectivity looks up field's histogram and estimates the
// selectivity of "field op value" (spec.md §6).
func (t *TableStats) EstimateSelectivity(field string, op heapdb.BoolOp, value heapdb.DBValue) (float64, error) {
	switch v := value.(type) {
	case heapdb.IntField:
		h, ok := t.ints[field]
		if !ok {
			return 0, fmt.Errorf("no histogram for field %q", field)
		}
		return h.EstimateSelectivity(op, v.Value), nil
	case heapdb.StringField:
		h, ok := t.strings[field]
		if !ok {
			return 0, fmt.Errorf("no histogram for field %q", field)
		}
		return h.EstimateSelectivity(op, v.Value), nil
	}
	return 0, fmt.Errorf("no histogram for field %q", field)
}
