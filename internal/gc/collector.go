package gc

// Report summarizes one Collect call: how many objects survived, how many
// bytes were reclaimed across every region, and how many regions were
// actually compacted (a region with nothing to reclaim is not counted).
type Report struct {
	ObjectsLive      int
	BytesReclaimed   uintptr
	RegionsCompacted int
}

// Collect runs a full mark-compact cycle: trace reachability from roots,
// compute every region's post-compaction layout, rewrite every surviving
// reference (including the caller's roots), then slide live objects down
// to reclaim garbage. It returns the roots remapped to their new
// addresses — the caller must use these, not the addresses passed in, for
// every subsequent heap access.
func (c *Collector) Collect(roots []uintptr) ([]uintptr, Report, error) {
	if err := c.Mark(roots); err != nil {
		return nil, Report{}, err
	}

	plans, relocation := c.planLocations()

	if err := c.rewritePointers(relocation); err != nil {
		return nil, Report{}, err
	}

	var report Report
	movedPairs := make(map[uintptr]bool)
	for idx, plan := range plans {
		before := c.Heap.Regions()[idx].UnallocatedStart - c.Heap.Regions()[idx].Start
		if err := c.relocateRegion(idx, plan, relocation, movedPairs); err != nil {
			return nil, Report{}, err
		}
		after := plan.liveTotal
		if after < before {
			report.RegionsCompacted++
			report.BytesReclaimed += before - after
		}
	}
	report.ObjectsLive = len(movedPairs)

	newRoots := make([]uintptr, len(roots))
	for i, root := range roots {
		if root == 0 {
			continue
		}
		if newAddr, ok := relocation[root]; ok {
			newRoots[i] = newAddr
		} else {
			newRoots[i] = root
		}
	}

	return newRoots, report, nil
}
