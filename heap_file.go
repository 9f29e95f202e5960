package heapdb

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// HeapFile is an immutable (path, schema) pair backing one table: an
// unordered, paged collection of tuples (spec.md §3/§4.2). Its tableID is
// derived deterministically from the backing file's absolute path.
type HeapFile struct {
	backingFile string
	desc        *TupleDesc
	tableID     int
	growMu      sync.Mutex
}

// NewHeapFile opens (or prepares to create) a heap file backed by path,
// with the given schema. The file need not yet exist.
func NewHeapFile(path string, desc *TupleDesc) (*HeapFile, error) {
	if desc.NumFields() < 1 {
		return nil, newErr(SchemaMismatch, "schema must have at least one field")
	}
	return &HeapFile{
		backingFile: path,
		desc:        desc,
		tableID:     tableIDFromPath(path),
	}, nil
}

// BackingFile returns the path of the file backing this table.
func (f *HeapFile) BackingFile() string {
	return f.backingFile
}

// TableID returns this file's stable, path-derived table identifier.
func (f *HeapFile) TableID() int {
	return f.tableID
}

// Descriptor returns the table's schema.
func (f *HeapFile) Descriptor() *TupleDesc {
	return f.desc
}

// NumPages reports the number of pages currently in the file: fileLength /
// PageSize (spec.md §3). A nonexistent file has zero pages.
func (f *HeapFile) NumPages() int {
	info, err := os.Stat(f.backingFile)
	if err != nil {
		return 0
	}
	return int(info.Size() / PageSize)
}

// readPage reads page pid.PageNo from disk and deserializes it. Called by
// BufferPool.GetPage on a cache miss (spec.md §4.2). Reading past EOF is
// an error.
func (f *HeapFile) readPage(pid PageID) (*heapPage, error) {
	if pid.TableID != f.tableID {
		return nil, newErr(BadTable, "page %v does not belong to table %d", pid, f.tableID)
	}
	file, err := os.Open(f.backingFile)
	if err != nil {
		return nil, newErr(IoError, "open %s: %v", f.backingFile, err)
	}
	defer file.Close()

	offset := int64(pid.PageNo) * PageSize
	data := make([]byte, PageSize)
	n, err := file.ReadAt(data, offset)
	if n != PageSize {
		if err == nil {
			err = fmt.Errorf("short read")
		}
		return nil, newErr(IoError, "read page %v: %v", pid, err)
	}
	return newHeapPageFromBytes(pid, f.desc, data, f)
}

// writePage writes page p to its offset in the backing file, creating the
// file if necessary.
func (f *HeapFile) writePage(p *heapPage) error {
	file, err := os.OpenFile(f.backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return newErr(IoError, "open %s: %v", f.backingFile, err)
	}
	defer file.Close()

	offset := int64(p.pid.PageNo) * PageSize
	if _, err := file.WriteAt(p.getPageData(), offset); err != nil {
		return newErr(IoError, "write page %v: %v", p.pid, err)
	}
	return nil
}

// flushPage writes p to disk and clears its dirty flag, per spec.md §4.5.
func (f *HeapFile) flushPage(p *heapPage) error {
	if err := f.writePage(p); err != nil {
		return err
	}
	p.markDirty(false, 0)
	return nil
}

// addTuple inserts t into the first page with a free slot, scanning page 0
// upward; appends a new page only if none has room (spec.md §3/§4.2). All
// page access goes through bp, which supplies locking and caching.
func (f *HeapFile) addTuple(bp *BufferPool, tid TransactionID, t *Tuple) (*heapPage, error) {
	if !t.Desc.Equals(f.desc) {
		return nil, newErr(SchemaMismatch, "tuple schema does not match table schema")
	}
	numPages := f.NumPages()
	for pageNo := 0; pageNo < numPages; pageNo++ {
		pid := PageID{TableID: f.tableID, PageNo: pageNo}
		page, err := bp.GetPage(tid, pid, WritePerm)
		if err != nil {
			return nil, err
		}
		if page.numEmptySlots() > 0 {
			if _, err := page.addTuple(t); err != nil {
				return nil, err
			}
			return page, nil
		}
	}

	f.growMu.Lock()
	newPageNo := f.NumPages()
	blank := newHeapPage(PageID{TableID: f.tableID, PageNo: newPageNo}, f.desc, f)
	err := f.writePage(blank)
	f.growMu.Unlock()
	if err != nil {
		return nil, err
	}

	pid := PageID{TableID: f.tableID, PageNo: newPageNo}
	page, err := bp.GetPage(tid, pid, WritePerm)
	if err != nil {
		return nil, err
	}
	if _, err := page.addTuple(t); err != nil {
		return nil, err
	}
	return page, nil
}

// deleteTuple removes t (identified by t.Rid) from its page, fetched
// through bp in write mode (spec.md §4.2).
func (f *HeapFile) deleteTuple(bp *BufferPool, tid TransactionID, t *Tuple) (*heapPage, error) {
	if t.Rid == nil {
		return nil, newErr(NotOnPage, "tuple has no RecordID")
	}
	page, err := bp.GetPage(tid, t.Rid.PID, WritePerm)
	if err != nil {
		return nil, err
	}
	if err := page.deleteTuple(t); err != nil {
		return nil, err
	}
	return page, nil
}

// heapFileIterator is a lazy, restartable sequence over every used tuple
// in a heap file, concatenating each page's iterator in page order
// (spec.md §4.2). The page count is snapshotted at open/rewind time.
type heapFileIterator struct {
	bp        *BufferPool
	tid       TransactionID
	file      *HeapFile
	numPages  int
	pageNo    int
	pageIter  func() (*Tuple, error)
}

// Iterator opens a restartable iterator over f's tuples on behalf of tid.
func (f *HeapFile) Iterator(bp *BufferPool, tid TransactionID) (*heapFileIterator, error) {
	it := &heapFileIterator{bp: bp, tid: tid, file: f}
	it.Rewind()
	return it, nil
}

// Rewind resets the iterator to the start of the file, re-snapshotting the
// page count.
func (it *heapFileIterator) Rewind() error {
	it.numPages = it.file.NumPages()
	it.pageNo = 0
	it.pageIter = nil
	return nil
}

// Next returns the next tuple in page/slot order, or ErrNoMoreTuples.
func (it *heapFileIterator) Next() (*Tuple, error) {
	for {
		if it.pageIter == nil {
			if it.pageNo >= it.numPages {
				return nil, ErrNoMoreTuples
			}
			pid := PageID{TableID: it.file.tableID, PageNo: it.pageNo}
			page, err := it.bp.GetPage(it.tid, pid, ReadPerm)
			if err != nil {
				return nil, err
			}
			it.pageIter = page.iterator()
		}
		t, err := it.pageIter()
		if err == nil {
			out := *t
			out.Desc = *it.file.desc
			return &out, nil
		}
		if !isNoMoreTuples(err) {
			return nil, err
		}
		it.pageIter = nil
		it.pageNo++
	}
}

func isNoMoreTuples(err error) bool {
	de, ok := err.(DBError)
	return ok && de.Kind == NoMoreTuples
}

// LoadFromCSV loads src's rows into f, one row per tuple, under a
// dedicated transaction that's committed on success. sep delimits fields;
// skipLastField drops a trailing empty field from datasets with a
// trailing separator on each line.
func (f *HeapFile) LoadFromCSV(bp *BufferPool, src *os.File, hasHeader bool, sep string, skipLastField bool) error {
	scanner := bufio.NewScanner(src)
	lineNo := 0
	tid := NewTID()
	if err := bp.BeginTransaction(tid); err != nil {
		return err
	}
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		fields := strings.Split(line, sep)
		if skipLastField && len(fields) > 0 {
			fields = fields[:len(fields)-1]
		}
		if lineNo == 1 && hasHeader {
			continue
		}
		if len(fields) != len(f.desc.Fields) {
			bp.TransactionComplete(tid, false)
			return newErr(MalformedCatalog, "line %d: expected %d fields, got %d", lineNo, len(f.desc.Fields), len(fields))
		}
		values := make([]DBValue, len(fields))
		for i, raw := range fields {
			switch f.desc.Fields[i].Ftype {
			case IntType:
				v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
				if err != nil {
					bp.TransactionComplete(tid, false)
					return newErr(MalformedCatalog, "line %d: %q is not an int: %v", lineNo, raw, err)
				}
				values[i] = IntField{Value: int32(v)}
			case StringType:
				s := raw
				if len(s) > StringLength {
					s = s[:StringLength]
				}
				values[i] = StringField{Value: s}
			}
		}
		t := &Tuple{Desc: *f.desc, Fields: values}
		if err := bp.insertIntoFile(tid, f, t); err != nil {
			bp.TransactionComplete(tid, false)
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		bp.TransactionComplete(tid, false)
		return newErr(IoError, "reading csv: %v", err)
	}
	return bp.TransactionComplete(tid, true)
}
