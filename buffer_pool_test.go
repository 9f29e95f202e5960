package heapdb

import (
	"path/filepath"
	"testing"
)

func smallBufferPool(t *testing.T, numPages int) (*HeapFile, *BufferPool) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bp.dat")
	desc := NewTupleDesc([]DBType{IntType, StringType}, []string{"id", "name"})
	file, err := NewHeapFile(path, desc)
	if err != nil {
		t.Fatal(err)
	}
	cat := NewCatalog()
	cat.AddTable(file, "t", "")
	return file, NewBufferPool(cat, numPages)
}

// fillPages inserts n pages' worth of tuples into file; when the existing
// pages are already full, this appends and fills n new pages.
func fillPages(t *testing.T, bp *BufferPool, file *HeapFile, tid TransactionID, n int) {
	t.Helper()
	desc := file.Descriptor()
	perPage := slotsForWidth(desc.Size())
	for i := 0; i < perPage*n; i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}, StringField{Value: "x"}}}
		if _, err := file.addTuple(bp, tid, tup); err != nil {
			t.Fatalf("addTuple(%d) error = %v", i, err)
		}
	}
}

func TestBufferPoolEvictsCleanPage(t *testing.T) {
	file, bp := smallBufferPool(t, 2)
	// A 2-page pool cannot hold 3 dirty pages at once (NO-STEAL), so each
	// page is filled and committed in its own transaction.
	for i := 0; i < 3; i++ {
		txn := NewTransaction(bp)
		txn.Begin()
		fillPages(t, bp, file, txn.ID, 1)
		txn.Commit() // flush the new page, clearing its dirty flag
	}

	// Re-read the three pages under a fresh transaction: the pool only
	// holds 2, so reading a third must evict one of the first two.
	txn2 := NewTransaction(bp)
	txn2.Begin()
	for i := 0; i < 3; i++ {
		pid := PageID{TableID: file.TableID(), PageNo: i}
		if _, err := bp.GetPage(txn2.ID, pid, ReadPerm); err != nil {
			t.Fatalf("GetPage(%d) error = %v", i, err)
		}
	}
	if got := bp.NumCachedPages(); got > 2 {
		t.Errorf("NumCachedPages() = %d, want <= 2", got)
	}
	txn2.Commit()
}

func TestBufferPoolNoStealRefusesAllDirty(t *testing.T) {
	file, bp := smallBufferPool(t, 2)
	txn := NewTransaction(bp)
	txn.Begin()
	fillPages(t, bp, file, txn.ID, 2) // 2 dirty pages, pool capacity 2

	pid2 := PageID{TableID: file.TableID(), PageNo: 2}
	_, err := bp.GetPage(txn.ID, pid2, WritePerm)
	if err == nil {
		t.Fatal("GetPage() on a full, all-dirty pool: error = nil, want NoEvictionCandidate")
	}
	if de, ok := err.(DBError); !ok || de.Kind != NoEvictionCandidate {
		t.Errorf("GetPage() error = %v, want NoEvictionCandidate", err)
	}
	txn.Abort()
}

func TestBufferPoolAbortDiscardsDirtyPages(t *testing.T) {
	file, bp := smallBufferPool(t, 10)
	desc := file.Descriptor()

	txn := NewTransaction(bp)
	txn.Begin()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, StringField{Value: "a"}}}
	if _, err := file.addTuple(bp, txn.ID, tup); err != nil {
		t.Fatal(err)
	}
	txn.Abort()

	// The insert was never flushed to disk, so the file should be empty
	// (or, if a page was allocated, contain no tuples) after the abort.
	txn2 := NewTransaction(bp)
	txn2.Begin()
	it, err := file.Iterator(bp, txn2.ID)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for {
		_, err := it.Next()
		if err != nil {
			if isNoMoreTuples(err) {
				break
			}
			t.Fatal(err)
		}
		count++
	}
	txn2.Commit()
	if count != 0 {
		t.Errorf("found %d tuples after abort, want 0", count)
	}
}

func TestBufferPoolCommitFlushesDirtyPages(t *testing.T) {
	file, bp := smallBufferPool(t, 10)
	desc := file.Descriptor()

	txn := NewTransaction(bp)
	txn.Begin()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, StringField{Value: "a"}}}
	if _, err := file.addTuple(bp, txn.ID, tup); err != nil {
		t.Fatal(err)
	}
	txn.Commit()

	pid := PageID{TableID: file.TableID(), PageNo: 0}
	bp.DiscardPage(pid) // force a re-read from disk
	raw, err := file.readPage(pid)
	if err != nil {
		t.Fatal(err)
	}
	if raw.numEmptySlots() != raw.slotsPerPage-1 {
		t.Errorf("on-disk page has %d empty slots, want %d (commit should have flushed the insert)",
			raw.numEmptySlots(), raw.slotsPerPage-1)
	}
}
