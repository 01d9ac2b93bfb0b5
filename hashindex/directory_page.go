// Package hashindex is the persistent extendible hash index: a directory
// page addressing bucket pages, both living as ordinary pages inside the
// buffer pool. There is no teacher equivalent (helindb indexes with a
// B+ tree, see the now-adapted-away btree/ package) so this layout is
// grounded directly on bustub's hash_table_directory_page.cpp /
// hash_table_bucket_page.cpp, translated into the struct + encoding/binary
// style disk/pages.SlottedPage already established for this module.
package hashindex

import (
	"bytes"
	"encoding/binary"

	"minidb/common"
	"minidb/disk/pages"
)

// dirSlotCount is 1<<MaxDirectoryDepth, the fixed size of the directory's
// bucket_page_id and local_depth arrays.
const dirSlotCount = 1 << common.MaxDirectoryDepth

// directoryLayout is the on-page byte layout of a directory page, read and
// written whole with encoding/binary, the same approach
// disk/pages.SlottedPage uses for its header.
type directoryLayout struct {
	GlobalDepth   uint32
	BucketPageIDs [dirSlotCount]int32
	LocalDepths   [dirSlotCount]uint8
}

// DirectoryPage is a RawPage interpreted as a directoryLayout. It embeds the
// page by pointer so WLatch/RLatch lock the frame's own latch, not a copy.
type DirectoryPage struct {
	*pages.RawPage
}

// InitDirectoryPage formats a freshly allocated page as an empty directory
// with global depth 0 and every slot pointing at InvalidPageID.
func InitDirectoryPage(p *pages.RawPage) *DirectoryPage {
	d := &DirectoryPage{RawPage: p}
	layout := directoryLayout{}
	for i := range layout.BucketPageIDs {
		layout.BucketPageIDs[i] = int32(pages.InvalidPageID)
	}
	d.setLayout(layout)
	return d
}

// CastDirectoryPage reinterprets an already-initialized page.
func CastDirectoryPage(p *pages.RawPage) *DirectoryPage {
	return &DirectoryPage{RawPage: p}
}

func (d *DirectoryPage) layout() directoryLayout {
	var l directoryLayout
	common.PanicIfErr(binary.Read(bytes.NewReader(d.GetData()), binary.BigEndian, &l))
	return l
}

func (d *DirectoryPage) setLayout(l directoryLayout) {
	buf := bytes.Buffer{}
	common.PanicIfErr(binary.Write(&buf, binary.BigEndian, &l))
	copy(d.GetData(), buf.Bytes())
}

func (d *DirectoryPage) GlobalDepth() uint32 { return d.layout().GlobalDepth }

func (d *DirectoryPage) SetGlobalDepth(depth uint32) {
	l := d.layout()
	l.GlobalDepth = depth
	d.setLayout(l)
}

func (d *DirectoryPage) IncrGlobalDepth() { d.SetGlobalDepth(d.GlobalDepth() + 1) }

func (d *DirectoryPage) DecrGlobalDepth() { d.SetGlobalDepth(d.GlobalDepth() - 1) }

// GlobalDepthMask is a mask with exactly GlobalDepth 1's from the LSB up.
func (d *DirectoryPage) GlobalDepthMask() uint32 {
	return uint32(1<<d.GlobalDepth()) - 1
}

// LocalDepthMask is a mask with exactly LocalDepth(idx) 1's from the LSB up.
func (d *DirectoryPage) LocalDepthMask(idx uint32) uint32 {
	return uint32(1<<d.LocalDepth(idx)) - 1
}

// Size is the number of active directory entries, 1<<GlobalDepth.
func (d *DirectoryPage) Size() uint32 { return 1 << d.GlobalDepth() }

func (d *DirectoryPage) BucketPageID(idx uint32) int {
	return int(d.layout().BucketPageIDs[idx])
}

func (d *DirectoryPage) SetBucketPageID(idx uint32, pageID int) {
	l := d.layout()
	l.BucketPageIDs[idx] = int32(pageID)
	d.setLayout(l)
}

func (d *DirectoryPage) LocalDepth(idx uint32) uint8 {
	return d.layout().LocalDepths[idx]
}

func (d *DirectoryPage) SetLocalDepth(idx uint32, depth uint8) {
	l := d.layout()
	l.LocalDepths[idx] = depth
	d.setLayout(l)
}

func (d *DirectoryPage) IncrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.LocalDepth(idx)+1)
}

func (d *DirectoryPage) DecrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.LocalDepth(idx)-1)
}

// SplitImageIndex returns the directory index that, at idx's local depth,
// addresses the bucket idx will split into or merge back with.
func (d *DirectoryPage) SplitImageIndex(idx uint32) uint32 {
	return idx ^ (1 << (d.LocalDepth(idx) - 1))
}

// CanShrink reports whether every active local depth is strictly less than
// the global depth, i.e. the directory can safely halve.
func (d *DirectoryPage) CanShrink() bool {
	l := d.layout()
	gd := l.GlobalDepth
	for i := uint32(0); i < d.Size(); i++ {
		if uint32(l.LocalDepths[i]) >= gd {
			return false
		}
	}
	return true
}

// VerifyIntegrity checks the three invariants spec.md names for a directory
// page: every local depth is at most the global depth, every bucket_page_id
// appears exactly 2^(global_depth-local_depth) times, and every directory
// entry sharing a bucket_page_id carries the same local depth. It returns
// the first violation found, or nil.
func (d *DirectoryPage) VerifyIntegrity() error {
	l := d.layout()
	counts := map[int32]uint32{}
	depths := map[int32]uint8{}

	for i := uint32(0); i < d.Size(); i++ {
		pid := l.BucketPageIDs[i]
		ld := l.LocalDepths[i]
		if uint32(ld) > l.GlobalDepth {
			return errLocalDepthExceedsGlobal
		}
		counts[pid]++
		if seen, ok := depths[pid]; ok && seen != ld {
			return errInconsistentLocalDepth
		}
		depths[pid] = ld
	}

	for pid, count := range counts {
		want := uint32(1) << (l.GlobalDepth - uint32(depths[pid]))
		if count != want {
			return errBucketPointerCountMismatch
		}
		_ = pid
	}
	return nil
}
