package gc

import (
	"encoding/binary"

	"github.com/orizon-lang/heapcore/internal/objects"
)

// planLocations runs ComputeLocations over every region in logical order
// and returns each region's plan alongside a single heap-wide
// old-address-to-new-address relocation map. Building the map for every
// region before touching any bytes is what makes cross-region references
// safe to rewrite: an object in region 0 may hold a Reference into region
// 1, and that target's new address has to be known regardless of which
// region gets relocated first.
func (c *Collector) planLocations() ([]*locationPlan, map[uintptr]uintptr) {
	regions := c.Heap.Regions()
	plans := make([]*locationPlan, len(regions))
	relocation := make(map[uintptr]uintptr)

	for idx := range regions {
		plan := c.ComputeLocations(idx)
		plans[idx] = plan

		addr, ok := c.Bitmap.FirstSetIn(idx)
		for ok {
			relocation[addr] = c.NewAddress(idx, plan, addr)
			addr, ok = c.Bitmap.NextSetAfter(idx, addr)
		}
	}

	return plans, relocation
}

// rewritePointers redirects every surviving reference slot, across every
// region, that targets a relocating object — before any object's bytes
// move. It reads each slot's current target at the object's old address
// and looks it up in the relocation map, so it must run before copying:
// the rewritten slots then travel with their objects when they move.
func (c *Collector) rewritePointers(relocation map[uintptr]uintptr) error {
	for idx := range c.Heap.Regions() {
		addr, ok := c.Bitmap.FirstSetIn(idx)
		for ok {
			slots, err := c.Walker.Slots(addr)
			if err != nil {
				return err
			}
			for _, slot := range slots {
				raw, err := c.Heap.ReadBytes(slot, 8)
				if err != nil {
					return err
				}
				target := uintptr(binary.LittleEndian.Uint64(raw))
				if target == 0 {
					continue
				}
				if newTarget, moving := relocation[target]; moving {
					if err := c.Walker.RewriteSlot(slot, newTarget); err != nil {
						return err
					}
				}
			}
			addr, ok = c.Bitmap.NextSetAfter(idx, addr)
		}
	}
	return nil
}

// relocateRegion slides every live object in regionIndex down to its
// planned new address. The loop visits each marked bit once, so each live
// object is copied once; movedPairs records every object handled (Collect
// reports its length as the live object count) and skips any address
// already recorded.
func (c *Collector) relocateRegion(regionIndex int, plan *locationPlan, relocation map[uintptr]uintptr, movedPairs map[uintptr]bool) error {
	addr, ok := c.Bitmap.FirstSetIn(regionIndex)
	for ok {
		newAddr := relocation[addr]
		if !movedPairs[addr] {
			if err := c.copyObject(addr, newAddr); err != nil {
				return err
			}
			movedPairs[addr] = true
		}
		addr, ok = c.Bitmap.NextSetAfter(regionIndex, addr)
	}

	regions := c.Heap.Regions()
	regions[regionIndex].UnallocatedStart = plan.regionStart + plan.liveTotal
	return nil
}

// copyObject moves an object's full header-plus-payload byte range from
// oldAddr to newAddr. newAddr is always <= oldAddr within the same region
// for a sliding compaction, so a plain forward copy (Go's copy, which is
// overlap-correct like memmove) is safe.
func (c *Collector) copyObject(oldAddr, newAddr uintptr) error {
	if oldAddr == newAddr {
		return nil
	}
	h, err := c.Codec.ReadHeader(oldAddr)
	if err != nil {
		return err
	}
	totalSize := objects.HeaderSize + h.Size
	raw, err := c.Heap.ReadBytes(oldAddr, totalSize)
	if err != nil {
		return err
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return c.Heap.WriteBytes(newAddr, buf)
}
