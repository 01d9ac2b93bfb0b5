package hashindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"minidb/common"
	"minidb/disk/pages"
	"minidb/disk/structures"
)

// KeySize is the fixed width of a hash index key: the bytes the catalog's
// buildIndexKey produces (the indexed values, plus the rid for a non-unique
// index), zero-padded to this many bytes; longer keys are rejected
// (mirrors bustub's GenericKey<N>).
const KeySize = 24

// BucketArraySize is the number of (key, value) slots one bucket page
// holds, sized so a bucket page plus its two bitmaps fits in one page.
const BucketArraySize = 96

const bitmapBytes = (BucketArraySize + 7) / 8

// Key is a fixed-width index key.
type Key [KeySize]byte

// NewKey copies b into a fixed-width Key, zero-padding or returning
// ErrKeyTooLong if it does not fit.
func NewKey(b []byte) (Key, error) {
	var k Key
	if len(b) > KeySize {
		return k, ErrKeyTooLong
	}
	copy(k[:], b)
	return k, nil
}

type mapping struct {
	Key     Key
	PageID  int64
	SlotIdx int16
}

func (m mapping) toRid() structures.Rid {
	return structures.Rid{PageId: m.PageID, SlotIdx: m.SlotIdx}
}

func fromRid(k Key, rid structures.Rid) mapping {
	return mapping{Key: k, PageID: rid.PageId, SlotIdx: rid.SlotIdx}
}

type bucketLayout struct {
	Mappings [BucketArraySize]mapping
	Occupied [bitmapBytes]byte
	Readable [bitmapBytes]byte
}

// BucketPage holds up to BucketArraySize (key, value) pairs plus the
// occupied/readable bitmaps spec.md's data model names. readable[i] implies
// occupied[i]; RemoveAt only clears readable, leaving occupied set as a
// tombstone so a later probe still walks past it correctly.
type BucketPage struct {
	*pages.RawPage
}

// InitBucketPage formats a freshly allocated page as an empty bucket.
func InitBucketPage(p *pages.RawPage) *BucketPage {
	b := &BucketPage{RawPage: p}
	b.setLayout(bucketLayout{})
	return b
}

// CastBucketPage reinterprets an already-initialized page.
func CastBucketPage(p *pages.RawPage) *BucketPage {
	return &BucketPage{RawPage: p}
}

func (b *BucketPage) layout() bucketLayout {
	var l bucketLayout
	common.PanicIfErr(binary.Read(bytes.NewReader(b.GetData()), binary.BigEndian, &l))
	return l
}

func (b *BucketPage) setLayout(l bucketLayout) {
	buf := bytes.Buffer{}
	common.PanicIfErr(binary.Write(&buf, binary.BigEndian, &l))
	copy(b.GetData(), buf.Bytes())
}

func bitGet(bitmap []byte, idx uint32) bool {
	return bitmap[idx/8]&(1<<(idx%8)) != 0
}

func bitSet(bitmap []byte, idx uint32) {
	bitmap[idx/8] |= 1 << (idx % 8)
}

func bitClear(bitmap []byte, idx uint32) {
	bitmap[idx/8] &^= 1 << (idx % 8)
}

func (b *BucketPage) IsOccupied(idx uint32) bool {
	l := b.layout()
	return bitGet(l.Occupied[:], idx)
}

func (b *BucketPage) IsReadable(idx uint32) bool {
	l := b.layout()
	return bitGet(l.Readable[:], idx)
}

func (b *BucketPage) KeyAt(idx uint32) Key { return b.layout().Mappings[idx].Key }

func (b *BucketPage) ValueAt(idx uint32) structures.Rid { return b.layout().Mappings[idx].toRid() }

// GetValue appends the value of every readable slot whose key equals key.
func (b *BucketPage) GetValue(key Key) []structures.Rid {
	l := b.layout()
	var out []structures.Rid
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) && l.Mappings[i].Key == key {
			out = append(out, l.Mappings[i].toRid())
		}
	}
	return out
}

// Insert adds (key, value) to the first free slot, rejecting an exact
// duplicate pair and failing with ErrBucketFull if there is no room.
func (b *BucketPage) Insert(key Key, value structures.Rid) error {
	l := b.layout()
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) && l.Mappings[i].Key == key && l.Mappings[i].toRid() == value {
			return ErrDuplicateEntry
		}
	}
	for i := uint32(0); i < BucketArraySize; i++ {
		if !bitGet(l.Readable[:], i) {
			l.Mappings[i] = fromRid(key, value)
			bitSet(l.Occupied[:], i)
			bitSet(l.Readable[:], i)
			b.setLayout(l)
			return nil
		}
	}
	return ErrBucketFull
}

// Remove clears the readable bit of the first slot matching (key, value).
// It reports whether a match was found.
func (b *BucketPage) Remove(key Key, value structures.Rid) bool {
	l := b.layout()
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) && l.Mappings[i].Key == key && l.Mappings[i].toRid() == value {
			bitClear(l.Readable[:], i)
			b.setLayout(l)
			return true
		}
	}
	return false
}

// RemoveAt clears slot idx's readable bit, leaving occupied set.
func (b *BucketPage) RemoveAt(idx uint32) {
	l := b.layout()
	bitClear(l.Readable[:], idx)
	b.setLayout(l)
}

func (b *BucketPage) IsFull() bool {
	l := b.layout()
	for i := uint32(0); i < BucketArraySize; i++ {
		if !bitGet(l.Readable[:], i) {
			return false
		}
	}
	return true
}

func (b *BucketPage) IsEmpty() bool {
	l := b.layout()
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) {
			return false
		}
	}
	return true
}

func (b *BucketPage) NumReadable() uint32 {
	l := b.layout()
	var n uint32
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) {
			n++
		}
	}
	return n
}

// entry is one readable (key, value) pair, used to drain a bucket during a
// split.
type entry struct {
	key Key
	rid structures.Rid
}

// readableEntries returns every readable (key, value) pair in the bucket.
func (b *BucketPage) readableEntries() []entry {
	l := b.layout()
	out := make([]entry, 0, BucketArraySize)
	for i := uint32(0); i < BucketArraySize; i++ {
		if bitGet(l.Readable[:], i) {
			out = append(out, entry{key: l.Mappings[i].Key, rid: l.Mappings[i].toRid()})
		}
	}
	return out
}

// Reset clears every slot and both bitmaps, used when a bucket is split.
func (b *BucketPage) Reset() {
	b.setLayout(bucketLayout{})
}

// DebugString renders the bucket's readable entries, one per line.
func (b *BucketPage) DebugString() string {
	var sb strings.Builder
	for _, e := range b.readableEntries() {
		fmt.Fprintf(&sb, "%x -> page=%d slot=%d\n", e.key, e.rid.PageId, e.rid.SlotIdx)
	}
	return sb.String()
}
