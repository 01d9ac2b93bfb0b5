package hashindex

import (
	"sync"

	"github.com/OneOfOne/xxhash"

	"minidb/buffer"
	"minidb/common"
	"minidb/disk/pages"
	"minidb/disk/structures"
)

// Table is a persistent (key -> value) index with duplicate-value
// tolerance per key: a single directory page, created lazily on first use,
// addresses bucket pages by directory_index = hash(key) & globalDepthMask.
// Grounded on bustub's ExtendibleHashTable, translated onto this module's
// buffer.Manager instead of bustub's BufferPoolManager.
type Table struct {
	pool *buffer.Manager

	mu sync.Mutex // guards directoryPageID's lazy creation only
	tableLatch sync.RWMutex

	directoryPageID int
}

// NewTable returns an index with no directory page yet; one is created by
// the first operation that needs it.
func NewTable(pool *buffer.Manager) *Table {
	return &Table{pool: pool, directoryPageID: pages.InvalidPageID}
}

// hash downcasts xxhash's 64-bit digest to 32 bits, the same tradeoff
// bustub documents for its MurmurHash-based Hash helper.
func hash(key Key) uint32 {
	return uint32(xxhash.Checksum64(key[:]))
}

func keyToDirectoryIndex(key Key, dir *DirectoryPage) uint32 {
	return hash(key) & dir.GlobalDepthMask()
}

// fetchDirectoryPage returns the directory page, creating it (and its
// first bucket) on first use.
func (t *Table) fetchDirectoryPage() (*DirectoryPage, error) {
	t.mu.Lock()
	if t.directoryPageID == pages.InvalidPageID {
		dirRaw, err := t.pool.NewPage()
		if err != nil {
			t.mu.Unlock()
			return nil, err
		}
		bucketRaw, err := t.pool.NewPage()
		if err != nil {
			t.mu.Unlock()
			return nil, err
		}
		dir := InitDirectoryPage(dirRaw)
		InitBucketPage(bucketRaw)
		dir.SetBucketPageID(0, bucketRaw.GetPageId())

		t.directoryPageID = dirRaw.GetPageId()
		if err := t.pool.UnpinPage(bucketRaw.GetPageId(), true); err != nil {
			t.mu.Unlock()
			return nil, err
		}
		if err := t.pool.UnpinPage(dirRaw.GetPageId(), true); err != nil {
			t.mu.Unlock()
			return nil, err
		}
	}
	id := t.directoryPageID
	t.mu.Unlock()

	raw, err := t.pool.FetchPage(id)
	if err != nil {
		return nil, err
	}
	return CastDirectoryPage(raw), nil
}

func (t *Table) unpinDirectory(dir *DirectoryPage, dirty bool) error {
	return t.pool.UnpinPage(dir.GetPageId(), dirty)
}

func (t *Table) fetchBucket(pageID int) (*BucketPage, error) {
	raw, err := t.pool.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return CastBucketPage(raw), nil
}

func (t *Table) unpinBucket(b *BucketPage, dirty bool) error {
	return t.pool.UnpinPage(b.GetPageId(), dirty)
}

// GetValue returns every value stored under key.
func (t *Table) GetValue(key Key) ([]structures.Rid, error) {
	t.tableLatch.RLock()
	defer t.tableLatch.RUnlock()

	dir, err := t.fetchDirectoryPage()
	if err != nil {
		return nil, err
	}
	bucketPageID := dir.BucketPageID(keyToDirectoryIndex(key, dir))
	bucket, err := t.fetchBucket(bucketPageID)
	if err != nil {
		_ = t.unpinDirectory(dir, false)
		return nil, err
	}

	bucket.RLatch()
	values := bucket.GetValue(key)
	bucket.RUnLatch()

	if err := t.unpinBucket(bucket, false); err != nil {
		return nil, err
	}
	if err := t.unpinDirectory(dir, false); err != nil {
		return nil, err
	}
	return values, nil
}

// Insert adds (key, value) to the index, splitting a bucket as many times
// as needed to make room.
func (t *Table) Insert(key Key, value structures.Rid) error {
	t.tableLatch.Lock()
	dir, err := t.fetchDirectoryPage()
	if err != nil {
		t.tableLatch.Unlock()
		return err
	}
	idx := keyToDirectoryIndex(key, dir)
	bucketPageID := dir.BucketPageID(idx)
	bucket, err := t.fetchBucket(bucketPageID)
	if err != nil {
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return err
	}

	bucket.WLatch()
	if !bucket.IsFull() {
		err := bucket.Insert(key, value)
		bucket.WUnlatch()
		_ = t.unpinBucket(bucket, err == nil)
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return err
	}
	bucket.WUnlatch()
	_ = t.unpinBucket(bucket, false)
	_ = t.unpinDirectory(dir, false)
	t.tableLatch.Unlock()

	return t.splitInsert(key, value)
}

// splitInsert grows the bucket idx maps to (and, if its local depth is
// already at the global depth, the directory itself) and retries the
// insert. See spec.md 4.3 SplitInsert for the exact bookkeeping sequence.
func (t *Table) splitInsert(key Key, value structures.Rid) error {
	t.tableLatch.Lock()
	dir, err := t.fetchDirectoryPage()
	if err != nil {
		t.tableLatch.Unlock()
		return err
	}

	idx := keyToDirectoryIndex(key, dir)
	localDepth := dir.LocalDepth(idx)
	splitPageID := dir.BucketPageID(idx)

	if localDepth >= common.MaxDirectoryDepth {
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return ErrMaxDepthReached
	}

	didDouble := false
	if localDepth == uint8(dir.GlobalDepth()) {
		dir.IncrGlobalDepth()
		didDouble = true
	}
	dir.IncrLocalDepth(idx)

	splitBucketRaw, err := t.pool.FetchPage(splitPageID)
	if err != nil {
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return err
	}
	splitBucket := CastBucketPage(splitBucketRaw)
	splitBucket.WLatch()
	drained := splitBucket.readableEntries()
	splitBucket.Reset()

	imageRaw, err := t.pool.NewPage()
	if err != nil {
		splitBucket.WUnlatch()
		_ = t.unpinBucket(splitBucket, false)
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return err
	}
	imageBucket := InitBucketPage(imageRaw)
	imageBucket.WLatch()

	newLocalDepth := dir.LocalDepth(idx)
	imageIdx := dir.SplitImageIndex(idx)
	dir.SetLocalDepth(imageIdx, newLocalDepth)
	dir.SetBucketPageID(imageIdx, imageBucket.GetPageId())

	diff := uint32(1) << newLocalDepth
	if didDouble {
		half := dir.Size() / 2
		for i := half; i < dir.Size(); i++ {
			dir.SetBucketPageID(i, pages.InvalidPageID)
		}
	}
	for i := int64(idx); i >= 0; i -= int64(diff) {
		dir.SetBucketPageID(uint32(i), splitPageID)
		dir.SetLocalDepth(uint32(i), newLocalDepth)
	}
	for i := idx; i < dir.Size(); i += diff {
		dir.SetBucketPageID(i, splitPageID)
		dir.SetLocalDepth(i, newLocalDepth)
	}
	for i := int64(imageIdx); i >= 0; i -= int64(diff) {
		dir.SetBucketPageID(uint32(i), imageBucket.GetPageId())
		dir.SetLocalDepth(uint32(i), newLocalDepth)
	}
	for i := imageIdx; i < dir.Size(); i += diff {
		dir.SetBucketPageID(i, imageBucket.GetPageId())
		dir.SetLocalDepth(i, newLocalDepth)
	}
	if didDouble {
		half := dir.Size() / 2
		for i := half; i < dir.Size(); i++ {
			if dir.BucketPageID(i) == pages.InvalidPageID {
				dir.SetBucketPageID(i, dir.BucketPageID(i-half))
				dir.SetLocalDepth(i, dir.LocalDepth(i-half))
			}
		}
	}

	for _, e := range drained {
		target := hash(e.key) & dir.LocalDepthMask(idx)
		targetPageID := dir.BucketPageID(target)
		if targetPageID == splitPageID {
			common.PanicIfErr(splitBucket.Insert(e.key, e.rid))
		} else {
			common.PanicIfErr(imageBucket.Insert(e.key, e.rid))
		}
	}

	splitBucket.WUnlatch()
	imageBucket.WUnlatch()
	_ = t.unpinBucket(splitBucket, true)
	_ = t.unpinBucket(imageBucket, true)
	_ = t.unpinDirectory(dir, true)
	t.tableLatch.Unlock()

	return t.Insert(key, value)
}

// Remove clears (key, value)'s readable bit and merges the bucket if it
// becomes empty.
func (t *Table) Remove(key Key, value structures.Rid) (bool, error) {
	t.tableLatch.Lock()
	dir, err := t.fetchDirectoryPage()
	if err != nil {
		t.tableLatch.Unlock()
		return false, err
	}
	idx := keyToDirectoryIndex(key, dir)
	bucket, err := t.fetchBucket(dir.BucketPageID(idx))
	if err != nil {
		_ = t.unpinDirectory(dir, false)
		t.tableLatch.Unlock()
		return false, err
	}

	bucket.WLatch()
	removed := bucket.Remove(key, value)
	empty := bucket.IsEmpty()
	bucket.WUnlatch()

	_ = t.unpinBucket(bucket, removed)
	_ = t.unpinDirectory(dir, false)
	t.tableLatch.Unlock()

	if removed && empty {
		if err := t.merge(idx); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// merge decrements a bucket's local depth by one, redirecting its directory entries
// to its sibling, and halves the directory itself if every active local
// depth now allows it. Per spec.md's open behavior note, the emptied
// bucket page itself is not freed back to the buffer pool.
func (t *Table) merge(idx uint32) error {
	t.tableLatch.Lock()
	defer t.tableLatch.Unlock()

	dir, err := t.fetchDirectoryPage()
	if err != nil {
		return err
	}
	defer t.unpinDirectory(dir, true)

	if dir.LocalDepth(idx) == 0 {
		return nil
	}

	imageIdx := dir.SplitImageIndex(idx)
	imagePageID := dir.BucketPageID(imageIdx)

	dir.DecrLocalDepth(idx)
	newDepth := dir.LocalDepth(idx)
	diff := uint32(1) << newDepth

	for i := int64(idx); i >= 0; i -= int64(diff) {
		dir.SetBucketPageID(uint32(i), imagePageID)
		dir.SetLocalDepth(uint32(i), newDepth)
	}
	for i := idx; i < dir.Size(); i += diff {
		dir.SetBucketPageID(i, imagePageID)
		dir.SetLocalDepth(i, newDepth)
	}

	if dir.CanShrink() {
		dir.DecrGlobalDepth()
	}
	return nil
}
