package trace

import (
	"testing"

	"github.com/orizon-lang/heapcore/internal/objects"
	"github.com/orizon-lang/heapcore/internal/region"
	"github.com/orizon-lang/heapcore/internal/schema"
)

func TestSlotsOfBareReference(t *testing.T) {
	c := objects.NewCodec(region.New())
	target, err := c.Write(schema.Nat(), objects.NatValue(1))
	if err != nil {
		t.Fatalf("Write target: %v", err)
	}
	refAddr, err := c.Write(schema.Reference{}, objects.RefValue(target))
	if err != nil {
		t.Fatalf("Write ref: %v", err)
	}

	w := New(c)
	slots, err := w.Slots(refAddr)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot for a bare reference, got %d", len(slots))
	}

	pointers, err := w.Pointers(refAddr)
	if err != nil {
		t.Fatalf("Pointers: %v", err)
	}
	if len(pointers) != 1 || pointers[0] != target {
		t.Fatalf("expected Pointers to resolve to target %#x, got %v", target, pointers)
	}
}

func TestSlotsOfProductOnlyCoversReferenceFields(t *testing.T) {
	c := objects.NewCodec(region.New())
	target, err := c.Write(schema.Nat(), objects.NatValue(1))
	if err != nil {
		t.Fatalf("Write target: %v", err)
	}

	s := schema.NewProduct(schema.Standard, schema.Nat(), schema.Reference{}, schema.Bool(schema.Standard))
	v := objects.ProductValue(objects.NatValue(5), objects.RefValue(target), objects.BoolValue(false))
	addr, err := c.Write(s, v)
	if err != nil {
		t.Fatalf("Write product: %v", err)
	}

	w := New(c)
	slots, err := w.Slots(addr)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected exactly 1 reference slot, got %d", len(slots))
	}

	pointers, err := w.Pointers(addr)
	if err != nil {
		t.Fatalf("Pointers: %v", err)
	}
	if len(pointers) != 1 || pointers[0] != target {
		t.Fatalf("expected Pointers to resolve to target %#x, got %v", target, pointers)
	}
}

func TestPointersSkipsNullReferences(t *testing.T) {
	c := objects.NewCodec(region.New())
	addr, err := c.Write(schema.Reference{}, objects.RefValue(0))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	w := New(c)
	pointers, err := w.Pointers(addr)
	if err != nil {
		t.Fatalf("Pointers: %v", err)
	}
	if len(pointers) != 0 {
		t.Fatalf("expected no pointers for a null reference, got %v", pointers)
	}
}

func TestRewriteSlotChangesStoredAddress(t *testing.T) {
	c := objects.NewCodec(region.New())
	target, err := c.Write(schema.Nat(), objects.NatValue(1))
	if err != nil {
		t.Fatalf("Write target: %v", err)
	}
	refAddr, err := c.Write(schema.Reference{}, objects.RefValue(target))
	if err != nil {
		t.Fatalf("Write ref: %v", err)
	}

	w := New(c)
	slots, _ := w.Slots(refAddr)
	if err := w.RewriteSlot(slots[0], 0xdead); err != nil {
		t.Fatalf("RewriteSlot: %v", err)
	}

	pointers, err := w.Pointers(refAddr)
	if err != nil {
		t.Fatalf("Pointers: %v", err)
	}
	if len(pointers) != 1 || pointers[0] != 0xdead {
		t.Fatalf("expected rewritten pointer 0xdead, got %v", pointers)
	}
}
