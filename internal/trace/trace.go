// Package trace implements reachability: finding the Reference slots
// inside an object, and the addresses those slots currently point to.
package trace

import (
	"encoding/binary"

	"github.com/orizon-lang/heapcore/internal/objects"
	"github.com/orizon-lang/heapcore/internal/schema"
)

// Walker computes the outgoing edges of heap objects for the collector's
// mark phase and the compactor's relocation phase. Slots and Pointers only
// read headers, schemas, and reference words; RewriteSlot is the one
// method that writes, overwriting a single reference word.
type Walker struct {
	Codec *objects.Codec
}

// New builds a Walker over the given codec's heap and schema registry.
func New(c *objects.Codec) *Walker {
	return &Walker{Codec: c}
}

// Slots returns the absolute address of every Reference-kind word inside
// the object at addr: one slot if the object itself is a bare Reference,
// or one slot per Reference field if it is a Product, Record, or the
// active variant of a Sum. Every other kind has no outgoing edges.
func (w *Walker) Slots(addr uintptr) ([]uintptr, error) {
	h, err := w.Codec.ReadHeader(addr)
	if err != nil {
		return nil, err
	}
	s, ok := w.Codec.Registry.Lookup(h.TypeInfo)
	if !ok {
		return nil, nil
	}

	payload := addr + objects.HeaderSize

	switch s.Kind() {
	case schema.KindReference:
		return []uintptr{payload}, nil

	case schema.KindProduct, schema.KindRecord, schema.KindSum:
		composite, ok := s.(schema.Composite)
		if !ok {
			return nil, nil
		}
		var slots []uintptr
		for _, f := range composite.Fields() {
			if f.Kind == schema.KindReference {
				slots = append(slots, payload+f.Offset)
			}
		}
		return slots, nil

	default:
		return nil, nil
	}
}

// Pointers resolves addr's slots to the addresses they currently hold,
// skipping null (zero) references.
func (w *Walker) Pointers(addr uintptr) ([]uintptr, error) {
	slots, err := w.Slots(addr)
	if err != nil {
		return nil, err
	}
	var targets []uintptr
	for _, slot := range slots {
		raw, err := w.Codec.Heap.ReadBytes(slot, schema.WordSize)
		if err != nil {
			return nil, err
		}
		target := uintptr(binary.LittleEndian.Uint64(raw))
		if target != 0 {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

// RewriteSlot overwrites the word at slot with a new reference value,
// used by the compactor to redirect pointers to relocated objects.
func (w *Walker) RewriteSlot(slot uintptr, newTarget uintptr) error {
	buf := make([]byte, schema.WordSize)
	binary.LittleEndian.PutUint64(buf, uint64(newTarget))
	return w.Codec.Heap.WriteBytes(slot, buf)
}
