// Package buffer owns the fixed-size frame array every page-structured
// component (hash index, table heap) reads and writes pages through. It is
// the only thing that ever talks to the disk manager directly.
package buffer

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"minidb/disk"
	"minidb/disk/pages"
)

var ErrNoFreeFrame = errors.New("buffer: no free frame and nothing evictable")
var ErrPageNotMapped = errors.New("buffer: page is not mapped into any frame")
var ErrPagePinned = errors.New("buffer: page still has outstanding pins")

// Manager is the fixed-size page cache spec.md's buffer pool manager names.
// Every exported method is serialized by a single mutex, same as the
// teacher's BufferPool.lock — this core never attempts finer-grained
// buffer-pool-table locking, only per-page content latches live on the
// page itself (disk/pages.RawPage.WLatch/RLatch).
type Manager struct {
	mu sync.Mutex

	poolSize int
	frames   []*pages.RawPage
	pageMap  map[int]FrameID // page_id -> frame_id, mirrors the domain of resident pages
	freeList []FrameID

	replacer *LRUKReplacer
	disk     disk.Manager
	log      *logRecorder

	nextPageID int
}

// NewManager builds a buffer pool of poolSize frames over disk manager dm,
// using an LRU-K replacer with history depth k.
func NewManager(poolSize int, k int, dm disk.Manager) *Manager {
	free := make([]FrameID, poolSize)
	for i := range free {
		free[i] = FrameID(i)
	}
	return &Manager{
		poolSize: poolSize,
		frames:   make([]*pages.RawPage, poolSize),
		pageMap:  make(map[int]FrameID, poolSize),
		freeList: free,
		replacer: NewLRUKReplacer(poolSize, k),
		disk:     dm,
		log:      newLogRecorder(),
	}
}

// NewPage allocates a fresh page_id, installs it in a frame, and returns the
// pinned page. It fails only if no frame can be freed.
func (m *Manager) NewPage() (*pages.RawPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, p, err := m.acquireFrame()
	if err != nil {
		return nil, err
	}

	pageID := m.nextPageID
	m.nextPageID++

	p.SetPageId(pageID)
	p.IncrPinCount()
	m.pageMap[pageID] = frameID
	m.replacer.RecordAccess(frameID)
	m.replacer.SetEvictable(frameID, false)
	return p, nil
}

// FetchPage returns the page for pageID, reading it from disk on a cache
// miss. The returned page is pinned; callers must UnpinPage it.
func (m *Manager) FetchPage(pageID int) (*pages.RawPage, error) {
	m.mu.Lock()

	if frameID, ok := m.pageMap[pageID]; ok {
		p := m.frames[frameID]
		p.IncrPinCount()
		m.replacer.RecordAccess(frameID)
		m.replacer.SetEvictable(frameID, false)
		m.mu.Unlock()
		return p, nil
	}

	frameID, p, err := m.acquireFrame()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	data, err := m.disk.ReadPage(uint64(pageID))
	if err != nil {
		m.freeList = append(m.freeList, frameID)
		m.mu.Unlock()
		return nil, errors.Wrapf(err, "fetch page %d", pageID)
	}
	copy(p.GetData(), data)

	p.SetPageId(pageID)
	p.IncrPinCount()
	m.pageMap[pageID] = frameID
	m.replacer.RecordAccess(frameID)
	m.replacer.SetEvictable(frameID, false)
	m.mu.Unlock()
	return p, nil
}

// UnpinPage decrements pageID's pin count, marking its frame evictable once
// the count reaches zero. The dirty flag is OR-accumulated: once set, it
// stays set until the page is flushed.
func (m *Manager) UnpinPage(pageID int, isDirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageMap[pageID]
	if !ok {
		return ErrPageNotMapped
	}
	p := m.frames[frameID]
	if p.GetPinCount() == 0 {
		return errors.Errorf("buffer: unpin called on page %d with zero pin count", pageID)
	}
	if isDirty {
		p.SetDirty()
	}
	p.DecrPinCount()
	if p.GetPinCount() == 0 {
		m.replacer.SetEvictable(frameID, true)
	}
	return nil
}

// FlushPage writes pageID to disk unconditionally and clears its dirty bit.
// It never changes pin state.
func (m *Manager) FlushPage(pageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked(pageID)
}

func (m *Manager) flushLocked(pageID int) error {
	frameID, ok := m.pageMap[pageID]
	if !ok {
		return ErrPageNotMapped
	}
	p := m.frames[frameID]
	m.log.record(p.GetData())
	if err := m.disk.WritePage(p.GetData(), uint64(pageID)); err != nil {
		return errors.Wrapf(err, "flush page %d", pageID)
	}
	p.SetClean()
	return nil
}

// EmptyFrameSize returns the number of frames holding no page, the
// cheapest signal of remaining buffer pool headroom.
func (m *Manager) EmptyFrameSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.freeList)
}

// FlushAllPages flushes every currently resident page.
func (m *Manager) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for pageID := range m.pageMap {
		if err := m.flushLocked(pageID); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes pageID from the pool, returning its frame to the free
// list. A page that is not mapped is a trivial success; a pinned page
// cannot be deleted.
func (m *Manager) DeletePage(pageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageMap[pageID]
	if !ok {
		return nil
	}
	p := m.frames[frameID]
	if p.GetPinCount() > 0 {
		return ErrPagePinned
	}

	m.replacer.Remove(frameID)
	delete(m.pageMap, pageID)
	p.Reset()
	p.SetPageId(pages.InvalidPageID)
	m.freeList = append(m.freeList, frameID)
	return nil
}

// acquireFrame returns a frame from the free list, or evicts one via the
// replacer, flushing it first if dirty. Caller holds m.mu.
func (m *Manager) acquireFrame() (FrameID, *pages.RawPage, error) {
	if len(m.freeList) > 0 {
		frameID := m.freeList[len(m.freeList)-1]
		m.freeList = m.freeList[:len(m.freeList)-1]
		if m.frames[frameID] == nil {
			m.frames[frameID] = pages.NewRawPage(pages.InvalidPageID)
		}
		return frameID, m.frames[frameID], nil
	}

	frameID, ok := m.replacer.Evict()
	if !ok {
		return 0, nil, ErrNoFreeFrame
	}

	victim := m.frames[frameID]
	if victim.GetPinCount() != 0 {
		panic(fmt.Sprintf("buffer: evicted frame %d has non-zero pin count", frameID))
	}
	if victim.IsDirty() {
		if err := m.flushLocked(victim.GetPageId()); err != nil {
			return 0, nil, err
		}
	}
	delete(m.pageMap, victim.GetPageId())
	victim.Reset()
	victim.SetPageId(pages.InvalidPageID)
	return frameID, victim, nil
}
