package heapdb

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestHeapFile(t *testing.T, name string) (*HeapFile, *Catalog, *BufferPool) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	desc := NewTupleDesc([]DBType{IntType, StringType}, []string{"id", "name"})
	file, err := NewHeapFile(path, desc)
	if err != nil {
		t.Fatalf("NewHeapFile() error = %v", err)
	}
	cat := NewCatalog()
	cat.AddTable(file, "t", "")
	bp := NewBufferPool(cat, DefaultNumPages)
	return file, cat, bp
}

func TestHeapFileTableIDStableAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "same.dat")
	desc := NewTupleDesc([]DBType{IntType}, []string{"id"})
	f1, _ := NewHeapFile(path, desc)
	f2, _ := NewHeapFile(path, desc)
	if f1.TableID() != f2.TableID() {
		t.Errorf("tableID differs across opens of the same path: %d vs %d", f1.TableID(), f2.TableID())
	}
}

func TestHeapFileInsertAndIterate(t *testing.T) {
	file, _, bp := newTestHeapFile(t, "insert.dat")
	txn := NewTransaction(bp)
	if err := txn.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	desc := file.Descriptor()
	for i := 0; i < 10; i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}, StringField{Value: "row"}}}
		if _, err := file.addTuple(bp, txn.ID, tup); err != nil {
			t.Fatalf("addTuple(%d) error = %v", i, err)
		}
	}
	txn.Commit()

	txn2 := NewTransaction(bp)
	if err := txn2.Begin(); err != nil {
		t.Fatal(err)
	}
	it, err := file.Iterator(bp, txn2.ID)
	if err != nil {
		t.Fatalf("Iterator() error = %v", err)
	}
	count := 0
	for {
		_, err := it.Next()
		if err != nil {
			if isNoMoreTuples(err) {
				break
			}
			t.Fatalf("Next() error = %v", err)
		}
		count++
	}
	txn2.Commit()
	if count != 10 {
		t.Errorf("iterated %d tuples, want 10", count)
	}
}

func TestHeapFileDeleteTuple(t *testing.T) {
	file, _, bp := newTestHeapFile(t, "delete.dat")
	txn := NewTransaction(bp)
	txn.Begin()

	desc := file.Descriptor()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, StringField{Value: "a"}}}
	if _, err := file.addTuple(bp, txn.ID, tup); err != nil {
		t.Fatal(err)
	}
	if _, err := file.deleteTuple(bp, txn.ID, tup); err != nil {
		t.Fatalf("deleteTuple() error = %v", err)
	}
	txn.Commit()

	if got := file.NumPages(); got != 1 {
		t.Errorf("NumPages() after delete = %d, want 1 (page isn't removed, just emptied)", got)
	}
}

func TestHeapFileGrowsOnlyWhenFull(t *testing.T) {
	file, _, bp := newTestHeapFile(t, "grow.dat")
	txn := NewTransaction(bp)
	txn.Begin()
	desc := file.Descriptor()

	slots := slotsForWidth(desc.Size())

	for i := 0; i < slots; i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}, StringField{Value: "x"}}}
		if _, err := file.addTuple(bp, txn.ID, tup); err != nil {
			t.Fatalf("addTuple(%d) error = %v", i, err)
		}
	}
	if got := file.NumPages(); got != 1 {
		t.Fatalf("NumPages() before overflow = %d, want 1", got)
	}

	overflow := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 999}, StringField{Value: "y"}}}
	if _, err := file.addTuple(bp, txn.ID, overflow); err != nil {
		t.Fatalf("addTuple() overflow error = %v", err)
	}
	if got := file.NumPages(); got != 2 {
		t.Errorf("NumPages() after overflow = %d, want 2", got)
	}
	txn.Commit()
}

func TestLoadFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	content := "id,name\n1,josie\n2,annie\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	file, _, bp := newTestHeapFile(t, "csv.dat")
	src, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if err := file.LoadFromCSV(bp, src, true, ",", false); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	txn := NewTransaction(bp)
	txn.Begin()
	it, err := file.Iterator(bp, txn.ID)
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
	txn.Commit()
	if count != 2 {
		t.Errorf("loaded %d rows, want 2", count)
	}
}
