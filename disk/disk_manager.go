// Package disk is the byte-addressed random-access page device the buffer
// pool reads and writes through. Page identifiers are dense and assigned by
// the buffer pool's own allocator (buffer.Manager.NewPage); this package
// only persists whatever page_id it is handed — it never allocates one.
package disk

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// PageSize is the fixed size, in bytes, of every page this manager moves.
const PageSize int = 4096

// FlushInstantly controls whether WritePage calls fsync after every write.
// Kept false by default, the same tradeoff the teacher documents: faster
// under the OS's own write-back scheduling, at the cost of durability
// across a power loss — acceptable here since crash recovery is out of
// scope for this core.
var FlushInstantly = false

// Manager is the interface the buffer pool depends on.
type Manager interface {
	WritePage(data []byte, pageID uint64) error
	ReadPage(pageID uint64) ([]byte, error)
	Close() error
}

// FileManager is a Manager backed by a single flat file, one PageSize slot
// per page_id.
type FileManager struct {
	file *os.File
	mu   sync.Mutex
}

var _ Manager = (*FileManager)(nil)

// NewFileManager opens (creating if necessary) the database file at path.
func NewFileManager(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return nil, errors.Wrapf(err, "open db file %q", path)
	}
	return &FileManager{file: f}, nil
}

func (d *FileManager) WritePage(data []byte, pageID uint64) error {
	if len(data) != PageSize {
		return errors.Errorf("disk: payload is %d bytes, want %d", len(data), PageSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.file.Seek(int64(PageSize)*int64(pageID), io.SeekStart); err != nil {
		return errors.Wrap(err, "seek")
	}

	n, err := d.file.Write(data)
	if err != nil {
		return errors.Wrap(err, "write")
	}
	if n != PageSize {
		panic("disk: written bytes are not equal to page size")
	}

	if FlushInstantly {
		if err := d.file.Sync(); err != nil {
			return errors.Wrap(err, "sync")
		}
	}
	return nil
}

func (d *FileManager) ReadPage(pageID uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := make([]byte, PageSize)
	n, err := d.file.ReadAt(data, int64(PageSize)*int64(pageID))
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read")
	}
	// a page that was allocated but never flushed reads back as zeros,
	// matching FetchPage's expectation for a brand new page.
	for i := n; i < PageSize; i++ {
		data[i] = 0
	}
	return data, nil
}

func (d *FileManager) Close() error {
	return d.file.Close()
}

// MemManager is an in-memory Manager, used by tests that do not need a real
// file, grounded on the teacher's mem-pager test doubles.
type MemManager struct {
	mu    sync.Mutex
	pages map[uint64][]byte
}

var _ Manager = (*MemManager)(nil)

// NewMemManager returns a Manager whose pages live only in memory.
func NewMemManager() *MemManager {
	return &MemManager{pages: map[uint64][]byte{}}
}

func (d *MemManager) WritePage(data []byte, pageID uint64) error {
	if len(data) != PageSize {
		return errors.Errorf("disk: payload is %d bytes, want %d", len(data), PageSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := make([]byte, PageSize)
	copy(buf, data)
	d.pages[pageID] = buf
	return nil
}

func (d *MemManager) ReadPage(pageID uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if buf, ok := d.pages[pageID]; ok {
		out := make([]byte, PageSize)
		copy(out, buf)
		return out, nil
	}
	return make([]byte, PageSize), nil
}

func (d *MemManager) Close() error { return nil }
