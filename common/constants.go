package common

const (
	// DefaultPoolSize is the number of frames a BufferPoolManager owns when
	// no explicit size is configured.
	DefaultPoolSize = 64

	// DefaultReplacerK is the LRU-K history depth used when no explicit
	// value is configured.
	DefaultReplacerK = 2

	// MaxDirectoryDepth bounds the extendible hash table's global and
	// local depths, sized so the directory page's arrays fit one page.
	MaxDirectoryDepth = 9
)
