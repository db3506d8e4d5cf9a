// Package gc implements the tracing, mark-compact collector: a worklist
// mark phase over the object graph reachable from a set of roots, followed
// by block-based compaction that slides every region's live objects down
// to reclaim the space garbage left behind.
package gc

import (
	"github.com/orizon-lang/heapcore/internal/bitmap"
	"github.com/orizon-lang/heapcore/internal/herrors"
	"github.com/orizon-lang/heapcore/internal/objects"
	"github.com/orizon-lang/heapcore/internal/region"
	"github.com/orizon-lang/heapcore/internal/schema"
	"github.com/orizon-lang/heapcore/internal/trace"
)

// Collector owns the live bitmap and wires itself into its heap's region
// expansion so a bitmap region always exists before any object lands in
// the region it covers.
type Collector struct {
	Heap   *region.Heap
	Codec  *objects.Codec
	Walker *trace.Walker
	Bitmap *bitmap.Bitmap
}

// New builds a Collector over an existing heap and codec, installing the
// bitmap's region-growth hook.
func New(h *region.Heap, c *objects.Codec) *Collector {
	bm := bitmap.New()
	col := &Collector{
		Heap:   h,
		Codec:  c,
		Walker: trace.New(c),
		Bitmap: bm,
	}
	h.OnExpand(func(_ int, r *region.Region) {
		bm.AddRegion(r.Start, r.Size)
	})
	return col
}

// Mark traces every object reachable from roots and sets its bit in the
// live bitmap, first clearing whatever the previous collection left
// behind. Reachability follows reference slots wherever they point,
// whether that is a logically-earlier object (a back-edge the forward
// sweep already passed) or a logically-later one — both are handled by
// the same worklist, so no special-casing is needed for either direction.
func (c *Collector) Mark(roots []uintptr) error {
	c.Bitmap.Reset()

	worklist := make([]uintptr, 0, len(roots))
	worklist = append(worklist, roots...)

	for len(worklist) > 0 {
		addr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if addr == 0 {
			continue
		}

		r, ok := c.Heap.RegionOf(addr)
		if !ok {
			return herrors.InvalidRoots(addr)
		}
		idx := c.Heap.RegionIndex(r)

		if c.Bitmap.IsMarked(idx, addr) {
			continue
		}

		h, err := c.Codec.ReadHeader(addr)
		if err != nil {
			return err
		}
		// The live size includes trailing padding up to the next word, so
		// compaction, which packs objects by live size, keeps every
		// header word-aligned even when a compact payload is not.
		totalSize := (objects.HeaderSize + h.Size + schema.WordSize - 1) &^ (schema.WordSize - 1)
		c.Bitmap.Mark(idx, addr, totalSize)

		targets, err := c.Walker.Pointers(addr)
		if err != nil {
			return err
		}
		worklist = append(worklist, targets...)
	}

	return nil
}

// LiveObjects visits every marked object across every region in logical
// (region insertion) order, then ascending address within each region.
func (c *Collector) LiveObjects() []uintptr {
	var live []uintptr
	for idx := range c.Heap.Regions() {
		addr, ok := c.Bitmap.FirstSetIn(idx)
		for ok {
			live = append(live, addr)
			addr, ok = c.Bitmap.NextSetAfter(idx, addr)
		}
	}
	return live
}
