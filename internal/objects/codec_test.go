package objects

import (
	"testing"

	"github.com/orizon-lang/heapcore/internal/region"
	"github.com/orizon-lang/heapcore/internal/schema"
)

func newCodec() *Codec {
	return NewCodec(region.New())
}

// samePrimitive compares the scalar fields of two primitive Values; it
// deliberately ignores Fields since Value is not comparable with == once
// a slice is involved.
func samePrimitive(a, b Value) bool {
	return a.Kind == b.Kind && a.Nat == b.Nat && a.Int == b.Int &&
		a.Double == b.Double && a.Char == b.Char && a.Bool == b.Bool && a.Ref == b.Ref
}

func TestWriteReadPrimitivesRoundTrip(t *testing.T) {
	c := newCodec()

	cases := []struct {
		name   string
		schema schema.Schema
		value  Value
	}{
		{"Nat", schema.Nat(), NatValue(42)},
		{"Int", schema.Int(), IntValue(-7)},
		{"Double", schema.Double(), DoubleValue(3.25)},
		{"Char", schema.Char(schema.Standard), CharValue('z')},
		{"Bool", schema.Bool(schema.Standard), BoolValue(true)},
		{"Reference", schema.Reference{}, RefValue(0x1000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := c.Write(tc.schema, tc.value)
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, _, err := c.Read(addr)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !samePrimitive(got, tc.value) {
				t.Fatalf("round trip mismatch: want %+v, got %+v", tc.value, got)
			}
		})
	}
}

func TestWriteReadProduct(t *testing.T) {
	c := newCodec()
	s := schema.NewProduct(schema.Standard, schema.Nat(), schema.Bool(schema.Standard))
	v := ProductValue(NatValue(9), BoolValue(true))

	addr, err := c.Write(s, v)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, gotSchema, err := c.Read(addr)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotSchema.Kind() != schema.KindProduct {
		t.Fatalf("expected product schema back")
	}
	if len(got.Fields) != 2 || got.Fields[0].Nat != 9 || got.Fields[1].Bool != true {
		t.Fatalf("unexpected product field values: %+v", got.Fields)
	}
}

func TestWriteReadRecord(t *testing.T) {
	c := newCodec()
	s := schema.NewRecord(schema.Standard, []string{"a", "b"}, []schema.Schema{schema.Int(), schema.Double()})
	v := RecordValue(IntValue(-3), DoubleValue(1.5))

	addr, err := c.Write(s, v)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _, err := c.Read(addr)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Fields[0].Int != -3 || got.Fields[1].Double != 1.5 {
		t.Fatalf("unexpected record field values: %+v", got.Fields)
	}
}

func TestWriteReadSum(t *testing.T) {
	c := newCodec()
	a := schema.NewProduct(schema.Standard, schema.Nat())
	b := schema.NewProduct(schema.Standard, schema.Double(), schema.Double())
	s := schema.NewSum(map[string]*schema.Product{"a": a, "b": b}, []string{"a", "b"}, "b")

	v := SumValue("b", DoubleValue(1), DoubleValue(2))
	addr, err := c.Write(s, v)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _, err := c.Read(addr)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Variant != "b" || len(got.Fields) != 2 {
		t.Fatalf("unexpected sum round trip: %+v", got)
	}
}

func TestWriteRejectsWrongVariant(t *testing.T) {
	c := newCodec()
	a := schema.NewProduct(schema.Standard, schema.Nat())
	b := schema.NewProduct(schema.Standard, schema.Nat())
	s := schema.NewSum(map[string]*schema.Product{"a": a, "b": b}, []string{"a", "b"}, "a")

	if _, err := c.Write(s, SumValue("b", NatValue(1))); err == nil {
		t.Fatalf("expected an error writing a value for the non-selected variant")
	}
}

func TestWriteRejectsFieldCountMismatch(t *testing.T) {
	c := newCodec()
	s := schema.NewProduct(schema.Standard, schema.Nat(), schema.Int())

	if _, err := c.Write(s, ProductValue(NatValue(1))); err == nil {
		t.Fatalf("expected SizeMismatch for missing field")
	}
}

func TestReadRejectsCorruptTypeSig(t *testing.T) {
	c := newCodec()
	addr, err := c.Heap.Alloc(HeaderSize, schema.WordSize)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	garbage := make([]byte, HeaderSize)
	garbage[0] = 0xFF
	if err := c.Heap.WriteBytes(addr, garbage); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	if _, _, err := c.Read(addr); err == nil {
		t.Fatalf("expected InvalidObject for a bogus type_sig")
	}
}
