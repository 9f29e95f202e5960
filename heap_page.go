package heapdb

import (
	"bytes"
)

// PageSize is the fixed size, in bytes, of every page (spec.md §3).
const PageSize = 4096

// heapPage is one page of a HeapFile: a header bitmap (one bit per
// slot, 1 = used) followed by slotsPerPage fixed-size slots, followed by
// zero padding to PageSize (spec.md §4.1/§6).
type heapPage struct {
	pid          PageID
	desc         *TupleDesc
	file         *HeapFile
	slotsPerPage int
	headerBytes  int
	tuples       []*Tuple // nil == empty slot
	dirty        bool
	dirtyTid     TransactionID
}

// slotsForWidth computes floor(PageSize*8 / (W*8+1)) for a row width W,
// per spec.md §3/§6.
func slotsForWidth(rowWidth int) int {
	return (PageSize * 8) / (rowWidth*8 + 1)
}

func headerBytesForSlots(slots int) int {
	return (slots + 7) / 8
}

// newHeapPage constructs an empty heap page for the given schema.
func newHeapPage(pid PageID, desc *TupleDesc, file *HeapFile) *heapPage {
	slots := slotsForWidth(desc.Size())
	return &heapPage{
		pid:          pid,
		desc:         desc,
		file:         file,
		slotsPerPage: slots,
		headerBytes:  headerBytesForSlots(slots),
		tuples:       make([]*Tuple, slots),
	}
}

// newHeapPageFromBytes deserializes a page from exactly PageSize bytes,
// per spec.md §4.1's HeapPage(pid, bytes) constructor.
func newHeapPageFromBytes(pid PageID, desc *TupleDesc, data []byte, file *HeapFile) (*heapPage, error) {
	if len(data) != PageSize {
		return nil, newErr(IoError, "page data is %d bytes, want %d", len(data), PageSize)
	}
	p := newHeapPage(pid, desc, file)
	body := data[p.headerBytes:]
	rowWidth := desc.Size()
	for slot := 0; slot < p.slotsPerPage; slot++ {
		if !p.headerBitSet(data, slot) {
			continue
		}
		buf := bytes.NewBuffer(body[slot*rowWidth : (slot+1)*rowWidth])
		t, err := readTupleFrom(buf, desc)
		if err != nil {
			return nil, err
		}
		rid := RecordID{PID: pid, SlotNo: slot}
		t.Rid = &rid
		p.tuples[slot] = t
	}
	return p, nil
}

func (p *heapPage) headerBitSet(header []byte, slot int) bool {
	b := header[slot/8]
	return b&(1<<uint(slot%8)) != 0
}

func (p *heapPage) setHeaderBit(header []byte, slot int, v bool) {
	byteIdx, bitIdx := slot/8, uint(slot%8)
	if v {
		header[byteIdx] |= 1 << bitIdx
	} else {
		header[byteIdx] &^= 1 << bitIdx
	}
}

// numEmptySlots returns the count of unused slots (spec.md §4.1).
func (p *heapPage) numEmptySlots() int {
	count := 0
	for _, t := range p.tuples {
		if t == nil {
			count++
		}
	}
	return count
}

// addTuple inserts t into the lowest-numbered free slot, assigns its
// RecordID, and marks the page dirty. Fails with NoSpace or
// SchemaMismatch (spec.md §4.1).
func (p *heapPage) addTuple(t *Tuple) (RecordID, error) {
	if !t.Desc.Equals(p.desc) {
		return RecordID{}, newErr(SchemaMismatch, "tuple schema does not match page schema")
	}
	for slot, existing := range p.tuples {
		if existing != nil {
			continue
		}
		rid := RecordID{PID: p.pid, SlotNo: slot}
		stored := &Tuple{Desc: *p.desc, Fields: t.Fields, Rid: &rid}
		p.tuples[slot] = stored
		t.Rid = &rid
		p.dirty = true
		return rid, nil
	}
	return RecordID{}, newErr(NoSpace, "page %v has no free slot", p.pid)
}

// deleteTuple clears the slot named by t.Rid. Fails with NotOnPage if the
// record isn't on this page or the slot is already empty (spec.md §4.1).
func (p *heapPage) deleteTuple(t *Tuple) error {
	if t.Rid == nil || t.Rid.PID != p.pid {
		return newErr(NotOnPage, "tuple is not on page %v", p.pid)
	}
	slot := t.Rid.SlotNo
	if slot < 0 || slot >= len(p.tuples) || p.tuples[slot] == nil {
		return newErr(NotOnPage, "slot %d is not occupied on page %v", slot, p.pid)
	}
	p.tuples[slot] = nil
	p.dirty = true
	return nil
}

// isDirty reports whether the page has been mutated since read/flush, and
// which transaction last mutated it.
func (p *heapPage) isDirty() (bool, TransactionID) {
	return p.dirty, p.dirtyTid
}

// markDirty records the dirty flag and last-mutating transaction
// (spec.md §4.1).
func (p *heapPage) markDirty(dirty bool, tid TransactionID) {
	p.dirty = dirty
	if dirty {
		p.dirtyTid = tid
	}
}

func (p *heapPage) getFile() *HeapFile {
	return p.file
}

// getPageData re-serializes the page deterministically: header bitmap,
// then slots in order (empty slots as zero bytes), then zero padding to
// PageSize. Round-trips byte-for-byte for an unchanged page (spec.md §8
// property 2).
func (p *heapPage) getPageData() []byte {
	out := make([]byte, PageSize)
	header := out[:p.headerBytes]
	body := out[p.headerBytes:]
	rowWidth := p.desc.Size()
	for slot, t := range p.tuples {
		if t == nil {
			continue
		}
		p.setHeaderBit(header, slot, true)
		var buf bytes.Buffer
		_ = t.writeTo(&buf)
		copy(body[slot*rowWidth:(slot+1)*rowWidth], buf.Bytes())
	}
	return out
}

// iterator returns a closure yielding the page's used tuples in ascending
// slot order, each tagged with its RecordID (spec.md §4.1 invariant 1).
func (p *heapPage) iterator() func() (*Tuple, error) {
	slot := 0
	return func() (*Tuple, error) {
		for slot < len(p.tuples) {
			t := p.tuples[slot]
			slot++
			if t != nil {
				return t, nil
			}
		}
		return nil, ErrNoMoreTuples
	}
}
