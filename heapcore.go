// Package heapcore is the public façade over the region allocator, object
// codec, tracer, and mark-compact collector: a small, dynamically-typed
// managed heap a VM can allocate into, trace, and compact.
package heapcore

import (
	"github.com/orizon-lang/heapcore/internal/gc"
	"github.com/orizon-lang/heapcore/internal/objects"
	"github.com/orizon-lang/heapcore/internal/region"
	"github.com/orizon-lang/heapcore/internal/schema"
)

// Config selects the heap's layout variant. The zero value selects the
// Standard (word-aligned) layout.
type Config struct {
	Layout schema.Layout
}

// Heap is a single managed heap: a growable sequence of regions, a schema
// registry, and a collector. It is not safe for concurrent use — every
// operation is expected to run on the single thread driving the VM, per
// the single-threaded, cooperative design this package implements.
type Heap struct {
	cfg       Config
	regions   *region.Heap
	codec     *objects.Codec
	collector *gc.Collector
}

// New creates an empty Heap. No region is allocated until the first
// write.
func New(cfg Config) *Heap {
	r := region.New()
	c := objects.NewCodec(r)
	col := gc.New(r, c)
	return &Heap{cfg: cfg, regions: r, codec: c, collector: col}
}

// Layout returns the layout variant this heap was configured with.
func (h *Heap) Layout() schema.Layout {
	return h.cfg.Layout
}

// WriteNat allocates a Nat object and returns its address.
func (h *Heap) WriteNat(v uint64) (uintptr, error) {
	return h.codec.Write(schema.Nat(), objects.NatValue(v))
}

// WriteInt allocates an Int object and returns its address.
func (h *Heap) WriteInt(v int64) (uintptr, error) {
	return h.codec.Write(schema.Int(), objects.IntValue(v))
}

// WriteDouble allocates a Double object and returns its address.
func (h *Heap) WriteDouble(v float64) (uintptr, error) {
	return h.codec.Write(schema.Double(), objects.DoubleValue(v))
}

// WriteChar allocates a Char object, under this heap's configured layout,
// and returns its address.
func (h *Heap) WriteChar(v rune) (uintptr, error) {
	return h.codec.Write(schema.Char(h.cfg.Layout), objects.CharValue(v))
}

// WriteBool allocates a Bool object, under this heap's configured layout,
// and returns its address.
func (h *Heap) WriteBool(v bool) (uintptr, error) {
	return h.codec.Write(schema.Bool(h.cfg.Layout), objects.BoolValue(v))
}

// WriteReference allocates a Reference object pointing at target (which
// may be 0 / null) and returns its address.
func (h *Heap) WriteReference(target uintptr) (uintptr, error) {
	return h.codec.Write(schema.Reference{}, objects.RefValue(target))
}

// WriteComposite allocates a Product, Record, or Sum object under s and
// returns its address. v's Kind must match s.Kind(), and v's field count
// and kinds must match s's field layout.
func (h *Heap) WriteComposite(s schema.Schema, v objects.Value) (uintptr, error) {
	return h.codec.Write(s, v)
}

// Read decodes the object at addr, returning its value and the schema it
// was written under.
func (h *Heap) Read(addr uintptr) (objects.Value, schema.Schema, error) {
	return h.codec.Read(addr)
}

// Collect runs a full mark-compact cycle using roots as the set of
// externally-held object addresses (typically VM stack slots and
// globals). It returns roots remapped to their post-compaction
// addresses, which the caller must use in place of the addresses passed
// in, plus a report summarizing what the cycle reclaimed.
func (h *Heap) Collect(roots []uintptr) ([]uintptr, gc.Report, error) {
	return h.collector.Collect(roots)
}

// Teardown releases every region this heap owns. The Heap must not be
// used afterward.
func (h *Heap) Teardown() {
	h.regions.Teardown()
}

// RegionCount reports how many regions this heap currently holds, mostly
// useful for tests asserting on growth behavior.
func (h *Heap) RegionCount() int {
	return len(h.regions.Regions())
}
