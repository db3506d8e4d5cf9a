package bitmap

import "testing"

func TestMarkAndIsMarkedRoundTrip(t *testing.T) {
	b := New()
	b.AddRegion(0x1000, 4096)

	b.Mark(0, 0x1000, 24)
	if !b.IsMarked(0, 0x1000) {
		t.Fatalf("expected address to be marked")
	}
	if b.IsMarked(0, 0x1018) {
		t.Fatalf("did not expect an unmarked address to report marked")
	}

	size, ok := b.LiveSize(0, 0x1000)
	if !ok || size != 24 {
		t.Fatalf("expected live size 24, got %d (ok=%v)", size, ok)
	}
}

func TestUnmarkClearsBitAndSize(t *testing.T) {
	b := New()
	b.AddRegion(0x1000, 4096)
	b.Mark(0, 0x1000, 24)
	b.Unmark(0, 0x1000)

	if b.IsMarked(0, 0x1000) {
		t.Fatalf("expected address to be unmarked after Unmark")
	}
	if _, ok := b.LiveSize(0, 0x1000); ok {
		t.Fatalf("expected no live size after Unmark")
	}
}

func TestFirstSetAndNextSetWalkAscending(t *testing.T) {
	b := New()
	b.AddRegion(0x1000, 4096)
	b.Mark(0, 0x1000, 16)
	b.Mark(0, 0x1020, 16)
	b.Mark(0, 0x1040, 16)

	addr, ok := b.FirstSetIn(0)
	if !ok || addr != 0x1000 {
		t.Fatalf("expected first set bit at 0x1000, got %#x (ok=%v)", addr, ok)
	}

	addr, ok = b.NextSetAfter(0, addr)
	if !ok || addr != 0x1020 {
		t.Fatalf("expected next set bit at 0x1020, got %#x (ok=%v)", addr, ok)
	}

	addr, ok = b.NextSetAfter(0, addr)
	if !ok || addr != 0x1040 {
		t.Fatalf("expected next set bit at 0x1040, got %#x (ok=%v)", addr, ok)
	}

	if _, ok = b.NextSetAfter(0, addr); ok {
		t.Fatalf("expected no further set bits")
	}
}

func TestResetClearsEveryRegion(t *testing.T) {
	b := New()
	b.AddRegion(0x1000, 4096)
	b.AddRegion(0x3000, 4096)
	b.Mark(0, 0x1000, 8)
	b.Mark(1, 0x3000, 8)

	b.Reset()

	if _, ok := b.FirstSetIn(0); ok {
		t.Fatalf("expected region 0 to be clear after Reset")
	}
	if _, ok := b.FirstSetIn(1); ok {
		t.Fatalf("expected region 1 to be clear after Reset")
	}
}

func TestBitIndexAddressOfRoundTrip(t *testing.T) {
	b := New()
	b.AddRegion(0x2000, 4096)

	addr := uintptr(0x2000 + 40)
	bit := b.BitIndex(0, addr)
	if b.AddressOf(0, bit) != addr {
		t.Fatalf("expected BitIndex/AddressOf to round trip for %#x", addr)
	}
}
