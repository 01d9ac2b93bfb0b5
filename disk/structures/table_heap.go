package structures

import (
	"minidb/buffer"
	"minidb/disk/pages"
)

// ITableHeap is the append-oriented record store query executors read and
// mutate through. Locking is the caller's responsibility: executors take
// RID locks through the lock manager before calling into the heap (see
// execution/executors), so the heap itself only serializes on the page
// content latch each SlottedPage already carries.
type ITableHeap interface {
	InsertRow(row Row) (Rid, error)
	UpdateRow(row Row, rid Rid) error
	ReadRow(rid Rid, dest *Row) error
	DeleteRow(rid Rid) error
}

var _ ITableHeap = (*TableHeap)(nil)

// TableHeap is a singly-linked chain of slotted pages. New pages are
// appended to the tail only when the current last page has no more room.
type TableHeap struct {
	pool        *buffer.Manager
	firstPageID int
	lastPageID  int
}

// NewTableHeap allocates the heap's first page and returns the heap.
func NewTableHeap(pool *buffer.Manager) (*TableHeap, error) {
	p, err := pool.NewPage()
	if err != nil {
		return nil, err
	}
	pages.InitSlottedPage(p)
	pageID := p.GetPageId()
	if err := pool.UnpinPage(pageID, true); err != nil {
		return nil, err
	}
	return &TableHeap{pool: pool, firstPageID: pageID, lastPageID: pageID}, nil
}

// OpenTableHeap wraps an already-existing heap whose first page is
// firstPageID, used when the catalog reopens a table.
func OpenTableHeap(pool *buffer.Manager, firstPageID, lastPageID int) *TableHeap {
	return &TableHeap{pool: pool, firstPageID: firstPageID, lastPageID: lastPageID}
}

func (t *TableHeap) FirstPageID() int { return t.firstPageID }

func (t *TableHeap) LastPageID() int { return t.lastPageID }

// InsertRow appends row to the last page with free space, allocating a new
// page and extending the chain if none has room.
func (t *TableHeap) InsertRow(row Row) (Rid, error) {
	raw, err := t.pool.FetchPage(t.lastPageID)
	if err != nil {
		return Rid{}, err
	}
	currPage := pages.CastSlottedPage(raw)

	for {
		currPage.WLatch()
		idx, err := currPage.InsertTuple(row.GetData())
		currPage.WUnlatch()
		if err == nil {
			pageID := currPage.GetPageId()
			if unpinErr := t.pool.UnpinPage(pageID, true); unpinErr != nil {
				return Rid{}, unpinErr
			}
			return NewRid(pageID, idx), nil
		}
		if err != pages.ErrNoSpace {
			_ = t.pool.UnpinPage(currPage.GetPageId(), false)
			return Rid{}, err
		}

		// Another inserter may already have linked a successor; follow it
		// rather than allocating a second page and orphaning one of them.
		currPage.WLatch()
		var next *pages.RawPage
		var nerr error
		if nextID := currPage.NextPageID(); nextID != pages.InvalidPageID {
			next, nerr = t.pool.FetchPage(nextID)
		} else if next, nerr = t.pool.NewPage(); nerr == nil {
			pages.InitSlottedPage(next)
			currPage.SetNextPageID(next.GetPageId())
		}
		currPage.WUnlatch()
		if nerr != nil {
			_ = t.pool.UnpinPage(currPage.GetPageId(), false)
			return Rid{}, nerr
		}

		oldPageID := currPage.GetPageId()
		if unpinErr := t.pool.UnpinPage(oldPageID, true); unpinErr != nil {
			return Rid{}, unpinErr
		}

		t.lastPageID = next.GetPageId()
		currPage = pages.CastSlottedPage(next)
	}
}

// UpdateRow overwrites row's bytes in place. Callers should fall back to
// DeleteRow+InsertRow when the error is pages.ErrNoSpace.
func (t *TableHeap) UpdateRow(row Row, rid Rid) error {
	raw, err := t.pool.FetchPage(int(rid.PageId))
	if err != nil {
		return err
	}
	sp := pages.CastSlottedPage(raw)

	sp.WLatch()
	err = sp.UpdateTuple(int(rid.SlotIdx), row.GetData())
	sp.WUnlatch()

	if unpinErr := t.pool.UnpinPage(sp.GetPageId(), err == nil); unpinErr != nil {
		return unpinErr
	}
	return err
}

// ReadRow copies the row at rid into dest. dest.Data aliases the buffer
// pool's frame until the next page eviction; callers that retain it across
// calls must copy it out.
func (t *TableHeap) ReadRow(rid Rid, dest *Row) error {
	raw, err := t.pool.FetchPage(int(rid.PageId))
	if err != nil {
		return err
	}
	sp := pages.CastSlottedPage(raw)

	sp.RLatch()
	data := sp.GetTuple(int(rid.SlotIdx))
	sp.RUnLatch()

	if data == nil {
		_ = t.pool.UnpinPage(sp.GetPageId(), false)
		return pages.ErrSlotNotFound
	}

	dest.Data = append(dest.Data[:0], data...)
	dest.Rid = rid
	return t.pool.UnpinPage(sp.GetPageId(), false)
}

// DeleteRow tombstones the row at rid; the slot number stays reserved.
func (t *TableHeap) DeleteRow(rid Rid) error {
	raw, err := t.pool.FetchPage(int(rid.PageId))
	if err != nil {
		return err
	}
	sp := pages.CastSlottedPage(raw)

	sp.WLatch()
	err = sp.DeleteTuple(int(rid.SlotIdx))
	sp.WUnlatch()

	if unpinErr := t.pool.UnpinPage(sp.GetPageId(), err == nil); unpinErr != nil {
		return unpinErr
	}
	return err
}
