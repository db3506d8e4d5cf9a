package gc

// BlockSize is the granularity of the compaction offset table: each
// region is divided into fixed 256-byte blocks, and the table records how
// many live bytes precede each block's start. This keeps relocation
// address lookups close to O(1) instead of rescanning the whole region
// for every object, following the block-based variant of the Compressor
// algorithm (Jones & Lins §3.4).
const BlockSize uintptr = 256

// locationPlan is one region's compaction offset table: OffsetTable[b] is
// the number of live bytes that precede block b's start once compaction
// finishes.
type locationPlan struct {
	regionStart uintptr
	offsetTable []uintptr
	liveTotal   uintptr
}

func (c *Collector) blockIndex(regionStart, addr uintptr) int {
	return int((addr - regionStart) / BlockSize)
}

// ComputeLocations builds regionIndex's offset table from the live bitmap
// left behind by Mark. It must be called after Mark and before any object
// is moved (planLocations calls it before rewritePointers and
// relocateRegion run).
func (c *Collector) ComputeLocations(regionIndex int) *locationPlan {
	regions := c.Heap.Regions()
	r := regions[regionIndex]
	numBlocks := int((r.Size + BlockSize - 1) / BlockSize)

	plan := &locationPlan{
		regionStart: r.Start,
		offsetTable: make([]uintptr, numBlocks),
	}

	var cumulative uintptr
	block := 0

	addr, ok := c.Bitmap.FirstSetIn(regionIndex)
	for ok {
		addrBlock := c.blockIndex(r.Start, addr)
		for block <= addrBlock {
			plan.offsetTable[block] = cumulative
			block++
		}
		size, _ := c.Bitmap.LiveSize(regionIndex, addr)
		cumulative += size
		addr, ok = c.Bitmap.NextSetAfter(regionIndex, addr)
	}
	for block < numBlocks {
		plan.offsetTable[block] = cumulative
		block++
	}
	plan.liveTotal = cumulative

	return plan
}

// NewAddress computes addr's post-compaction address: the number of live
// bytes that precede addr's block (from the offset table), plus the live
// bytes of objects earlier in the same block (found by walking the
// bitmap from the block's first set bit up to, but not including, addr).
// Splitting the count this way — preceding blocks, same-block
// predecessors, and the object itself — is what lets a lookup avoid
// rescanning the whole region for every single object.
func (c *Collector) NewAddress(regionIndex int, plan *locationPlan, addr uintptr) uintptr {
	block := c.blockIndex(plan.regionStart, addr)
	blockStart := plan.regionStart + uintptr(block)*BlockSize

	var within uintptr
	cur, ok := blockStart, c.Bitmap.IsMarked(regionIndex, blockStart)
	if !ok {
		cur, ok = c.Bitmap.NextSetAfter(regionIndex, blockStart)
	}
	for ok && cur < addr {
		size, _ := c.Bitmap.LiveSize(regionIndex, cur)
		within += size
		cur, ok = c.Bitmap.NextSetAfter(regionIndex, cur)
	}

	return plan.regionStart + plan.offsetTable[block] + within
}
