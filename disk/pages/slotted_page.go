package pages

import (
	"bytes"
	"encoding/binary"
	"errors"

	"minidb/common"
	"minidb/disk"
)

/*
 * SlottedPage is the on-page layout the table heap (disk/structures) uses
 * to store variable-length tuples. It is the external, out-of-scope-per-
 * spec.md collaborator "table heap" is built on top of; the hash index
 * (hashindex) does not use this layout at all — it has its own
 * bit-packed directory/bucket pages, see hashindex.
 *
 *  Header format (size in bytes):
 *  --------------------------------------------------------
 *  | NextPageId (8) | FreeSpacePointer (4) | SlotArrLen (4) |
 *  --------------------------------------------------------
 *  ----------------------------------------------------------------
 *  | Slot_1 offset (4) | Slot_1 size (4) | Slot_2 offset (4) | ... |
 *  ----------------------------------------------------------------
 *  ... free space ...
 *  ... tuple bytes, appended growing from the end of the page backward ...
 *
 * A slot with size 0 is a tombstone: DeleteTuple never shifts other slots,
 * it only clears the tombstoned slot's size so indexes pointing at it by
 * slot number stay valid for other live rows.
 */

var ErrNoSpace = errors.New("pages: not enough free space in slotted page")
var ErrSlotNotFound = errors.New("pages: slot does not exist or is tombstoned")

type SlottedPageHeader struct {
	NextPageId       int64
	FreeSpacePointer uint32
	SlotArrLen       uint32
}

type SlotArrEntry struct {
	Offset uint32
	Size   uint32
}

const SlotArrayEntrySize = 8

var HeaderSize = binary.Size(SlottedPageHeader{})

// SlottedPage is a RawPage interpreted through the layout above. It embeds
// the page by pointer so WLatch/RLatch lock the frame's own latch, not a
// copy of it.
type SlottedPage struct {
	*RawPage
}

// InitSlottedPage formats a freshly allocated raw page as an empty slotted
// page and returns the typed wrapper.
func InitSlottedPage(p *RawPage) *SlottedPage {
	sp := &SlottedPage{RawPage: p}
	sp.SetHeader(SlottedPageHeader{
		NextPageId:       int64(InvalidPageID),
		FreeSpacePointer: uint32(disk.PageSize),
		SlotArrLen:       0,
	})
	return sp
}

// CastSlottedPage reinterprets an already-initialized raw page as a slotted
// page without touching its bytes.
func CastSlottedPage(p *RawPage) *SlottedPage {
	return &SlottedPage{RawPage: p}
}

func (sp *SlottedPage) GetTuple(idxAtSlot int) []byte {
	if idxAtSlot < 0 || idxAtSlot >= int(sp.getHeader().SlotArrLen) {
		return nil
	}
	entry := sp.getFromSlotArr(idxAtSlot)
	if entry.Size == 0 {
		return nil
	}
	return sp.GetData()[entry.Offset : entry.Offset+entry.Size]
}

func (sp *SlottedPage) GetFreeSpace() int {
	h := sp.getHeader()
	startingOffset := HeaderSize + int(h.SlotArrLen)*SlotArrayEntrySize
	return int(h.FreeSpacePointer) - startingOffset
}

func (sp *SlottedPage) getSlotArr() []SlotArrEntry {
	header := sp.getHeader()
	return readSlotArrEntrySliceFromBytes(int(header.SlotArrLen), sp.GetData()[HeaderSize:])
}

func (sp *SlottedPage) getFromSlotArr(idx int) SlotArrEntry {
	off := HeaderSize + SlotArrayEntrySize*idx
	var e SlotArrEntry
	r := bytes.NewReader(sp.GetData()[off:])
	_ = binary.Read(r, binary.BigEndian, &e)
	return e
}

func (sp *SlottedPage) setInSlotArr(idx int, val SlotArrEntry) {
	offset := HeaderSize + SlotArrayEntrySize*idx
	buf := bytes.Buffer{}
	common.PanicIfErr(binary.Write(&buf, binary.BigEndian, &val))

	if offset >= disk.PageSize {
		panic("pages: slot array write overflows the page")
	}
	copy(sp.GetData()[offset:], buf.Bytes())
}

func (sp *SlottedPage) getHeader() SlottedPageHeader {
	reader := bytes.NewReader(sp.GetData())
	dest := SlottedPageHeader{}
	_ = binary.Read(reader, binary.BigEndian, &dest)
	return dest
}

func (sp *SlottedPage) SetHeader(h SlottedPageHeader) {
	buf := bytes.Buffer{}
	common.PanicIfErr(binary.Write(&buf, binary.BigEndian, &h))
	copy(sp.GetData(), buf.Bytes())
}

// NextPageID returns the next page in this heap's singly-linked chain, or
// InvalidPageID if this is the last page.
func (sp *SlottedPage) NextPageID() int {
	return int(sp.getHeader().NextPageId)
}

// SetNextPageID links this page to the next page in the heap's chain.
func (sp *SlottedPage) SetNextPageID(id int) {
	h := sp.getHeader()
	h.NextPageId = int64(id)
	sp.SetHeader(h)
}

// InsertTuple appends data to the page, reusing the first tombstoned slot
// if one exists, and returns the slot index assigned.
func (sp *SlottedPage) InsertTuple(data []byte) (int, error) {
	if sp.GetFreeSpace() < len(data)+SlotArrayEntrySize {
		return 0, ErrNoSpace
	}

	arr := sp.getSlotArr()
	i := 0
	for ; i < len(arr); i++ {
		if arr[i].Size == 0 {
			break
		}
	}

	h := sp.getHeader()
	h.FreeSpacePointer -= uint32(len(data))
	if i == len(arr) {
		h.SlotArrLen++
	}
	copy(sp.GetData()[h.FreeSpacePointer:], data)
	sp.SetHeader(h)
	sp.setInSlotArr(i, SlotArrEntry{Offset: h.FreeSpacePointer, Size: uint32(len(data))})
	return i, nil
}

// UpdateTuple overwrites idx's bytes in place if the new payload fits in
// the slot's current footprint, else returns ErrNoSpace so the caller can
// fall back to delete-then-insert.
func (sp *SlottedPage) UpdateTuple(idxAtSlot int, data []byte) error {
	if idxAtSlot < 0 || idxAtSlot >= int(sp.getHeader().SlotArrLen) {
		return ErrSlotNotFound
	}
	e := sp.getFromSlotArr(idxAtSlot)
	if e.Size == 0 {
		return ErrSlotNotFound
	}
	if uint32(len(data)) > e.Size {
		return ErrNoSpace
	}
	copy(sp.GetData()[e.Offset:e.Offset+uint32(len(data))], data)
	sp.setInSlotArr(idxAtSlot, SlotArrEntry{Offset: e.Offset, Size: uint32(len(data))})
	return nil
}

// DeleteTuple tombstones the slot, preserving its slot number so any RID
// pointing at it becomes a lookup miss rather than aliasing another tuple.
func (sp *SlottedPage) DeleteTuple(idxAtSlot int) error {
	if idxAtSlot < 0 || idxAtSlot >= int(sp.getHeader().SlotArrLen) {
		return ErrSlotNotFound
	}
	if sp.getFromSlotArr(idxAtSlot).Size == 0 {
		return ErrSlotNotFound
	}
	sp.setInSlotArr(idxAtSlot, SlotArrEntry{Offset: 0, Size: 0})
	return nil
}

// NextOccupiedSlot scans forward from idxAtSlot+1 (use -1 to start from the
// first slot) for the next non-tombstoned slot.
func (sp *SlottedPage) NextOccupiedSlot(idxAtSlot int) (int, error) {
	h := sp.getHeader()
	for i := idxAtSlot + 1; i < int(h.SlotArrLen); i++ {
		if sp.getFromSlotArr(i).Size != 0 {
			return i, nil
		}
	}
	return 0, ErrSlotNotFound
}

func readSlotArrEntrySliceFromBytes(count int, data []byte) []SlotArrEntry {
	reader := bytes.NewReader(data)
	res := make([]SlotArrEntry, 0, count)
	for i := 0; i < count; i++ {
		x := SlotArrEntry{}
		common.PanicIfErr(binary.Read(reader, binary.BigEndian, &x))
		res = append(res, x)
	}
	return res
}
