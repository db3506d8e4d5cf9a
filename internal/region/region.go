// Package region implements the region-growing bump allocator: a list of
// contiguous memory regions with per-region bump pointers and geometric
// growth. It never frees an individual region and never coalesces free
// space — compaction, not a free list, handles fragmentation.
package region

import (
	"unsafe"

	"github.com/orizon-lang/heapcore/internal/herrors"
)

const (
	// InitialSize is the size of the first region a Heap ever creates.
	InitialSize uintptr = 2048
	// ExpandFactor is the geometric growth factor applied to the combined
	// size of all existing regions when a new one is appended.
	ExpandFactor = 2
)

// Region is a contiguous byte range [Start, Start+Size) with a bump
// cursor UnallocatedStart in [Start, Start+Size]. Regions never move and
// are never individually freed.
type Region struct {
	Start            uintptr
	Size             uintptr
	UnallocatedStart uintptr

	// backing keeps the region's memory alive and gives us a real address
	// space to hand out pointers into; Start is the address of backing[0].
	backing []byte
}

// Contains reports whether addr falls within this region's byte range.
func (r *Region) Contains(addr uintptr) bool {
	return addr >= r.Start && addr < r.Start+r.Size
}

// bytesAt returns a slice view of n bytes starting at addr, which must lie
// within this region.
func (r *Region) bytesAt(addr uintptr, n uintptr) []byte {
	off := addr - r.Start
	return r.backing[off : off+n]
}

// ExpandFunc is invoked synchronously, once, every time a new region is
// appended — before Alloc returns the memory it carved out of it. This is
// how the collector keeps its per-region bitmap in lock-step with region
// creation (spec.md §9's back-reference design note): Heap holds a single
// callback slot, installed once at construction, with no ownership cycle
// back to the collector.
type ExpandFunc func(index int, r *Region)

// Heap is the ordered sequence of regions a Heap manages. The sequence's
// insertion order is the *logical* order the collector uses for tracing
// and relocation; it can differ from physical address order once a later
// region happens to land at a lower address.
type Heap struct {
	regions    []*Region
	onExpand   ExpandFunc
	available  bool
	totalBytes uintptr
}

// New creates an empty Heap. No region exists until the first Alloc call.
func New() *Heap {
	return &Heap{available: true}
}

// OnExpand installs the region-expansion callback. Only one callback slot
// exists; installing a new one replaces the previous.
func (h *Heap) OnExpand(cb ExpandFunc) {
	h.onExpand = cb
}

// Regions returns the live region list in logical (insertion) order. The
// caller must not mutate the returned slice.
func (h *Heap) Regions() []*Region {
	return h.regions
}

// RegionOf returns the region containing addr, scanning in logical order.
func (h *Heap) RegionOf(addr uintptr) (*Region, bool) {
	for _, r := range h.regions {
		if r.Contains(addr) {
			return r, true
		}
	}
	return nil, false
}

// RegionIndex returns r's position in logical (insertion) order, or -1 if
// r does not belong to this heap.
func (h *Heap) RegionIndex(r *Region) int {
	for i, candidate := range h.regions {
		if candidate == r {
			return i
		}
	}
	return -1
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// Alloc locates the first region (in insertion order) with enough
// remaining capacity for size bytes at the requested alignment, rounds the
// bump cursor up to that alignment, and advances it by size. If no region
// fits, it expands once and retries.
func (h *Heap) Alloc(size, align uintptr) (uintptr, error) {
	if !h.available {
		return 0, herrors.AllocatorClosed()
	}

	for _, r := range h.regions {
		padded := alignUp(r.UnallocatedStart, align) - r.Start
		if padded+size <= r.Size {
			addr := r.Start + padded
			r.UnallocatedStart = addr + size
			return addr, nil
		}
	}

	if err := h.expand(size, align); err != nil {
		return 0, err
	}
	return h.allocRetry(size, align)
}

// allocRetry re-attempts the bump allocation exactly once after expand,
// against the region expand just appended; by construction it always
// fits, since expand sizes the new region to hold size at align.
func (h *Heap) allocRetry(size, align uintptr) (uintptr, error) {
	r := h.regions[len(h.regions)-1]
	padded := alignUp(r.UnallocatedStart, align) - r.Start
	if padded+size > r.Size {
		return 0, herrors.LayoutInvalid("region.Alloc retry", size)
	}
	addr := r.Start + padded
	r.UnallocatedStart = addr + size
	return addr, nil
}

// expand computes the next region's size — InitialSize for the very first
// region, otherwise double the combined size of every existing region —
// and grows further if that still would not fit minSize at align. The new
// region is zero-initialized, appended, and the expansion callback is
// invoked synchronously before returning.
func (h *Heap) expand(minSize, align uintptr) error {
	if !h.available {
		return herrors.AllocatorClosed()
	}

	var newSize uintptr
	if len(h.regions) == 0 {
		newSize = InitialSize
	} else {
		newSize = h.totalBytes * ExpandFactor
	}
	if newSize < minSize {
		newSize = alignUp(minSize, align) * ExpandFactor
	}

	backing := make([]byte, newSize)
	start := uintptr(unsafe.Pointer(unsafe.SliceData(backing)))
	r := &Region{
		Start:            start,
		Size:             newSize,
		UnallocatedStart: start,
		backing:          backing,
	}

	h.regions = append(h.regions, r)
	h.totalBytes += newSize

	if h.onExpand != nil {
		h.onExpand(len(h.regions)-1, r)
	}
	return nil
}

// Teardown releases every region's backing memory. Subsequent operations
// fail with AllocatorClosed.
func (h *Heap) Teardown() {
	h.regions = nil
	h.totalBytes = 0
	h.available = false
}

// Available reports whether the heap still accepts operations.
func (h *Heap) Available() bool {
	return h.available
}

// ReadBytes returns a slice view of n bytes at addr. addr must lie within
// a live region of this heap.
func (h *Heap) ReadBytes(addr uintptr, n uintptr) ([]byte, error) {
	r, ok := h.RegionOf(addr)
	if !ok {
		return nil, herrors.InvalidRoots(addr)
	}
	return r.bytesAt(addr, n), nil
}

// WriteBytes copies src into the region at addr. addr must lie within a
// live region of this heap and addr+len(src) must not exceed it.
func (h *Heap) WriteBytes(addr uintptr, src []byte) error {
	r, ok := h.RegionOf(addr)
	if !ok {
		return herrors.InvalidRoots(addr)
	}
	dst := r.bytesAt(addr, uintptr(len(src)))
	copy(dst, src)
	return nil
}
