package heap

import (
	"bytes"
	"math"
	"sync"

	"github.com/pkg/errors"

	"tinybase/pkg/concurrency/transaction"
	dberror "tinybase/pkg/error"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// HeapPage is a slotted heap page: the first ceil(slots/8) bytes are a bitmap
// of occupied slots, followed by `slots` fixed-width tuple records. Slot i
// is occupied iff bit i of the header is set iff tuples[i] holds a valid
// tuple of the page's schema.
//
//	numSlots = floor((PAGE_SIZE*8) / (recordBitSize + 1))
//
// where recordBitSize is the tuple's fixed byte size in bits; the "+1"
// accounts for that slot's own occupancy bit.
type HeapPage struct {
	mu sync.RWMutex

	id        PageID
	tupleDesc *tuple.TupleDescription
	numSlots  int
	headerLen int

	tuples []*tuple.Tuple

	dirtyBy     *transaction.ID
	beforeImage []byte
}

// NewEmptyPage allocates a zero-filled page (every slot unoccupied).
func NewEmptyPage(id PageID, td *tuple.TupleDescription) *HeapPage {
	numSlots, headerLen := computeLayout(td)
	p := &HeapPage{
		id:        id,
		tupleDesc: td,
		numSlots:  numSlots,
		headerLen: headerLen,
		tuples:    make([]*tuple.Tuple, numSlots),
	}
	p.beforeImage = p.serialize()
	return p
}

// NewPageFromBytes deserializes a page previously written by serialize.
func NewPageFromBytes(id PageID, td *tuple.TupleDescription, data []byte) (*HeapPage, error) {
	if len(data) != page.Size {
		return nil, dberror.New(dberror.DbError, "HeapPage", "NewPageFromBytes", "page data has wrong length")
	}
	numSlots, headerLen := computeLayout(td)
	p := &HeapPage{
		id:        id,
		tupleDesc: td,
		numSlots:  numSlots,
		headerLen: headerLen,
		tuples:    make([]*tuple.Tuple, numSlots),
	}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	p.beforeImage = make([]byte, len(data))
	copy(p.beforeImage, data)
	return p, nil
}

func computeLayout(td *tuple.TupleDescription) (numSlots, headerLen int) {
	recordBits := int(td.RecordByteSize()) * 8
	numSlots = (page.Size * 8) / (recordBits + 1)
	if numSlots < 0 {
		numSlots = 0
	}
	headerLen = int(math.Ceil(float64(numSlots) / 8))
	return
}

func (p *HeapPage) recordByteSize() int {
	return int(p.tupleDesc.RecordByteSize())
}

func (p *HeapPage) bitSet(header []byte, slot int) bool {
	return header[slot/8]&(1<<uint(slot%8)) != 0
}

func (p *HeapPage) setBit(header []byte, slot int, occupied bool) {
	mask := byte(1 << uint(slot%8))
	if occupied {
		header[slot/8] |= mask
	} else {
		header[slot/8] &^= mask
	}
}

func (p *HeapPage) parse(data []byte) error {
	header := data[:p.headerLen]
	body := data[p.headerLen:]
	recordSize := p.recordByteSize()

	for slot := 0; slot < p.numSlots; slot++ {
		if !p.bitSet(header, slot) {
			continue
		}
		start := slot * recordSize
		record := body[start : start+recordSize]
		t, err := deserializeRecord(p.tupleDesc, record)
		if err != nil {
			return errors.Wrapf(err, "deserialize slot %d of %s", slot, p.id)
		}
		t.RecordID = tuple.NewRecordID(p.id, slot)
		p.tuples[slot] = t
	}
	return nil
}

func deserializeRecord(td *tuple.TupleDescription, record []byte) (*tuple.Tuple, error) {
	t := tuple.NewTuple(td)
	r := bytes.NewReader(record)
	for i := 0; i < td.NumFields(); i++ {
		ft, err := td.TypeAtIndex(i)
		if err != nil {
			return nil, err
		}
		var f types.Field
		switch ft {
		case types.IntType:
			f, err = types.DeserializeIntField(r)
		case types.StringType:
			f, err = types.DeserializeStringField(r, types.StringMaxLength)
		default:
			return nil, dberror.New(dberror.DbError, "HeapPage", "deserializeRecord", "unknown field type")
		}
		if err != nil {
			return nil, err
		}
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *HeapPage) serialize() []byte {
	buf := make([]byte, page.Size)
	header := buf[:p.headerLen]
	body := buf[p.headerLen:]
	recordSize := p.recordByteSize()

	for slot, t := range p.tuples {
		if t == nil {
			continue
		}
		p.setBit(header, slot, true)
		record := body[slot*recordSize : slot*recordSize+recordSize]
		var full bytes.Buffer
		for i := 0; i < t.TupleDesc.NumFields(); i++ {
			f, _ := t.GetField(i)
			_ = f.Serialize(&full)
		}
		copy(record, full.Bytes())
	}
	return buf
}

// ID, Data, IsDirty, MarkDirty, BeforeImage, SetBeforeImage implement
// page.Page.

func (p *HeapPage) ID() tuple.PageID {
	return p.id
}

func (p *HeapPage) Data() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.serialize()
}

func (p *HeapPage) IsDirty() *transaction.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirtyBy
}

func (p *HeapPage) MarkDirty(dirty bool, by *transaction.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dirty {
		p.dirtyBy = by
	} else {
		p.dirtyBy = nil
	}
}

func (p *HeapPage) BeforeImage() page.Page {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, err := NewPageFromBytes(p.id, p.tupleDesc, p.beforeImage)
	if err != nil {
		// The before-image was captured from a page this same type produced;
		// a parse failure here means memory corruption, not a user error.
		panic(errors.Wrap(err, "corrupt before-image"))
	}
	return snap
}

func (p *HeapPage) SetBeforeImage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.beforeImage = p.serialize()
}

// GetTuples returns every occupied tuple on this page, in slot order.
func (p *HeapPage) GetTuples() []*tuple.Tuple {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*tuple.Tuple, 0, p.numSlots)
	for _, t := range p.tuples {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// EmptySlots reports how many unoccupied slots remain.
func (p *HeapPage) EmptySlots() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, t := range p.tuples {
		if t == nil {
			n++
		}
	}
	return n
}

// InsertTuple places t into the first empty slot and stamps its RecordID.
func (p *HeapPage) InsertTuple(t *tuple.Tuple) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !t.TupleDesc.Equals(p.tupleDesc) {
		return dberror.New(dberror.DbError, "HeapPage", "InsertTuple", "tuple schema does not match page schema")
	}
	for slot := 0; slot < p.numSlots; slot++ {
		if p.tuples[slot] == nil {
			t.RecordID = tuple.NewRecordID(p.id, slot)
			p.tuples[slot] = t
			return nil
		}
	}
	return dberror.New(dberror.DbError, "HeapPage", "InsertTuple", "page has no empty slots")
}

// DeleteTuple removes the tuple named by its RecordID from this page.
func (p *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.RecordID == nil || !t.RecordID.PageID.Equals(p.id) {
		return dberror.New(dberror.NotFound, "HeapPage", "DeleteTuple", "tuple not on this page")
	}
	slot := t.RecordID.Slot
	if slot < 0 || slot >= p.numSlots || p.tuples[slot] == nil {
		return dberror.New(dberror.NotFound, "HeapPage", "DeleteTuple", "slot is not occupied")
	}
	p.tuples[slot] = nil
	return nil
}

func (p *HeapPage) NumSlots() int {
	return p.numSlots
}
