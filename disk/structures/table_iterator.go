package structures

import (
	"minidb/disk/pages"
)

// TableIterator walks a TableHeap's chain of pages in slot order, skipping
// tombstoned slots. It is the physical row source SeqScan pulls from; it
// does not take any RID locks itself (see execution/executors.SeqScan).
type TableIterator struct {
	rid  Rid
	done bool
	heap *TableHeap
}

// NewTableIterator positions the iterator before the heap's first row.
func NewTableIterator(heap *TableHeap) *TableIterator {
	return &TableIterator{
		rid:  Rid{PageId: int64(heap.FirstPageID()), SlotIdx: -1},
		heap: heap,
	}
}

// Next returns the next live row, or nil once the heap is exhausted.
func (it *TableIterator) Next() (*Row, error) {
	if it.done {
		return nil, nil
	}

	raw, err := it.heap.pool.FetchPage(int(it.rid.PageId))
	if err != nil {
		return nil, err
	}
	sp := pages.CastSlottedPage(raw)

	sp.RLatch()
	nextIdx, nerr := sp.NextOccupiedSlot(int(it.rid.SlotIdx))
	sp.RUnLatch()

	for nerr != nil {
		nextPageID := sp.NextPageID()
		if unpinErr := it.heap.pool.UnpinPage(sp.GetPageId(), false); unpinErr != nil {
			return nil, unpinErr
		}
		if nextPageID == pages.InvalidPageID {
			it.done = true
			return nil, nil
		}

		raw, err = it.heap.pool.FetchPage(nextPageID)
		if err != nil {
			return nil, err
		}
		sp = pages.CastSlottedPage(raw)

		sp.RLatch()
		nextIdx, nerr = sp.NextOccupiedSlot(-1)
		sp.RUnLatch()
	}

	if unpinErr := it.heap.pool.UnpinPage(sp.GetPageId(), false); unpinErr != nil {
		return nil, unpinErr
	}

	nextRid := NewRid(sp.GetPageId(), nextIdx)
	dest := &Row{}
	if err := it.heap.ReadRow(nextRid, dest); err != nil {
		return nil, err
	}

	it.rid = nextRid
	return dest, nil
}
