package schema

import "strings"

// WordSize is the natural machine word; headers and reference slots are
// word-aligned.
const WordSize = 8

// Layout selects between the two primitive-packing variants spec.md §4.2
// calls out: the default word-aligned layout the collector relies on to
// interpret every primitive slot as reference-sized, and a compact layout
// that shrinks Char to 4 bytes (4-byte aligned) and Bool to 1 byte. It is a
// read-only configuration knob fixed for the lifetime of a Heap, never
// flipped mid-run — ports the "compact-layout flag" design note in spec.md
// §9 as an explicit value instead of a process-wide mutable global, which
// makes both variants simultaneously testable.
type Layout struct {
	Compact bool
}

// Standard is the default, non-compact layout: every primitive slot is
// word-sized and word-aligned.
var Standard = Layout{Compact: false}

// Compact shrinks every Char schema built under it to 4 bytes (4-byte
// aligned) and every Bool schema to 1 byte, whether the schema is written
// as a top-level object or used as a Product or Record field.
var Compact = Layout{Compact: true}

// Schema describes the in-heap representation of a value. Implementations
// are immutable once constructed and safe to share across every object
// written with them.
type Schema interface {
	Size() uintptr
	Alignment() uintptr
	Kind() Kind
	Name() string
}

// FieldSlot describes one field of a composite schema: its name (empty for
// Product fields), kind, schema, byte offset within the payload, alignment
// and size. The walker only needs kind and offset to find a slot.
type FieldSlot struct {
	Name      string
	Kind      Kind
	Schema    Schema
	Offset    uintptr
	Alignment uintptr
	Size      uintptr
}

// Composite is implemented by schema nodes the tracer and codec can iterate
// field-by-field: Product, Record, and the live variant of a Sum.
type Composite interface {
	Schema
	Fields() []FieldSlot
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// primitive is the shared implementation backing the six scalar kinds.
type primitive struct {
	kind      Kind
	name      string
	size      uintptr
	alignment uintptr
}

func (p primitive) Size() uintptr      { return p.size }
func (p primitive) Alignment() uintptr { return p.alignment }
func (p primitive) Kind() Kind         { return p.kind }
func (p primitive) Name() string       { return p.name }

// field width/alignment under the two layout variants. Under Standard every
// primitive is word-sized; under Compact, Char and Bool shrink to their
// natural size.
func fieldSize(k Kind, l Layout) (size, alignment uintptr) {
	switch k {
	case KindChar:
		if l.Compact {
			return 4, 4
		}
		return WordSize, WordSize
	case KindBool:
		if l.Compact {
			return 1, 1
		}
		return WordSize, WordSize
	default:
		return WordSize, WordSize
	}
}

// Nat, Int, Double, Char and Bool return the schema node for each scalar
// kind; Char and Bool take the layout, while Nat, Int and Double are
// word-sized under both layouts. Each call returns a fresh value;
// callers that write many objects of the same primitive type typically keep
// one shared instance, mirroring the singleton type_tokens of the original
// implementation.
func Nat() Schema    { return primitive{KindNat, "Nat", WordSize, WordSize} }
func Int() Schema    { return primitive{KindInt, "Int", WordSize, WordSize} }
func Double() Schema { return primitive{KindDouble, "Double", WordSize, WordSize} }

func Char(l Layout) Schema {
	size, align := fieldSize(KindChar, l)
	return primitive{KindChar, "Char", size, align}
}

func Bool(l Layout) Schema {
	size, align := fieldSize(KindBool, l)
	return primitive{KindBool, "Bool", size, align}
}

// Reference describes a pointer-sized slot holding the address of another
// object header, or null. pointee names the referent type for diagnostics
// only; the collector never inspects it.
type Reference struct {
	Pointee Schema
}

func (r Reference) Size() uintptr      { return WordSize }
func (r Reference) Alignment() uintptr { return WordSize }
func (r Reference) Kind() Kind         { return KindReference }
func (r Reference) Name() string {
	if r.Pointee == nil {
		return "&?"
	}
	return "&" + r.Pointee.Name()
}

// Product is a tuple: fields laid out sequentially in declaration order,
// each at align_up(prev_end, field.alignment).
type Product struct {
	fields []FieldSlot
}

// NewProduct computes a Product's field offsets from an ordered list of
// element schemas, under the given layout.
func NewProduct(l Layout, elements ...Schema) *Product {
	fields := make([]FieldSlot, len(elements))
	var offset uintptr
	for i, s := range elements {
		align := s.Alignment()
		off := alignUp(offset, align)
		fields[i] = FieldSlot{
			Name:      "",
			Kind:      s.Kind(),
			Schema:    s,
			Offset:    off,
			Alignment: align,
			Size:      s.Size(),
		}
		offset = off + s.Size()
	}
	return &Product{fields: fields}
}

func (p *Product) Fields() []FieldSlot { return p.fields }

func (p *Product) Size() uintptr {
	if len(p.fields) == 0 {
		return 0
	}
	last := p.fields[len(p.fields)-1]
	return last.Offset + last.Size
}

func (p *Product) Alignment() uintptr {
	var max uintptr = 1
	for _, f := range p.fields {
		if f.Alignment > max {
			max = f.Alignment
		}
	}
	return max
}

func (p *Product) Kind() Kind { return KindProduct }

func (p *Product) Name() string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.Schema.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// Record is a named-field composite. Fields are grouped by descending
// alignment so larger fields precede smaller ones, reducing padding;
// within a group, declaration order is preserved.
type Record struct {
	fields []FieldSlot
}

// NewRecord computes a Record's field offsets from name/schema pairs in
// declaration order, under the given layout.
func NewRecord(l Layout, names []string, elements []Schema) *Record {
	type indexed struct {
		idx    int
		name   string
		schema Schema
	}
	items := make([]indexed, len(elements))
	for i := range elements {
		items[i] = indexed{idx: i, name: names[i], schema: elements[i]}
	}
	// Stable sort by descending alignment; equal-alignment fields keep
	// their declaration order (Go's sort.SliceStable would also work, but
	// a manual grouping pass mirrors the original's group_by_sorted more
	// directly and avoids importing sort for a handful of buckets).
	byAlign := map[uintptr][]indexed{}
	var aligns []uintptr
	for _, it := range items {
		a := it.schema.Alignment()
		if _, ok := byAlign[a]; !ok {
			aligns = append(aligns, a)
		}
		byAlign[a] = append(byAlign[a], it)
	}
	for i := 0; i < len(aligns); i++ {
		for j := i + 1; j < len(aligns); j++ {
			if aligns[j] > aligns[i] {
				aligns[i], aligns[j] = aligns[j], aligns[i]
			}
		}
	}

	fields := make([]FieldSlot, len(elements))
	var offset uintptr
	pos := 0
	for _, a := range aligns {
		for _, it := range byAlign[a] {
			fields[pos] = FieldSlot{
				Name:      it.name,
				Kind:      it.schema.Kind(),
				Schema:    it.schema,
				Offset:    offset,
				Alignment: a,
				Size:      it.schema.Size(),
			}
			offset += it.schema.Size()
			pos++
		}
	}
	// fields is currently ordered by alignment group, not declaration
	// order; reorder it back to declaration order for the caller while
	// preserving the computed offsets, keyed by original index.
	byName := make(map[string]FieldSlot, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	ordered := make([]FieldSlot, len(names))
	for i, n := range names {
		ordered[i] = byName[n]
	}
	return &Record{fields: ordered}
}

func (r *Record) Fields() []FieldSlot { return r.fields }

func (r *Record) Size() uintptr {
	if len(r.fields) == 0 {
		return 0
	}
	var maxEnd uintptr
	for _, f := range r.fields {
		if end := f.Offset + f.Size; end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd
}

func (r *Record) Alignment() uintptr {
	var max uintptr = 1
	for _, f := range r.fields {
		if f.Alignment > max {
			max = f.Alignment
		}
	}
	return max
}

func (r *Record) Kind() Kind { return KindRecord }

func (r *Record) Name() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.Name + ": " + f.Schema.Name()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FieldByName returns the slot (kind, offset, size) of a named field and
// whether it exists, mirroring the original
// implementation's alignment_table lookup.
func (r *Record) FieldByName(name string) (FieldSlot, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSlot{}, false
}

// Sum is a tagged union: the payload of the currently selected variant's
// Product, laid out as a Product. The schema records which variant is
// live; the collector treats the active variant as a Product.
type Sum struct {
	variants map[string]*Product
	order    []string
	selected string
}

// NewSum builds a tagged union from named variant products and the name of
// the initially-selected variant.
func NewSum(variants map[string]*Product, order []string, selected string) *Sum {
	return &Sum{variants: variants, order: order, selected: selected}
}

// Selected returns the name of the live variant.
func (s *Sum) Selected() string { return s.selected }

// Variant returns the Product schema of a named variant.
func (s *Sum) Variant(name string) (*Product, bool) {
	p, ok := s.variants[name]
	return p, ok
}

// ActiveVariant returns the Product schema of the currently-selected
// variant — the layout the collector and codec actually use.
func (s *Sum) ActiveVariant() *Product {
	return s.variants[s.selected]
}

func (s *Sum) Fields() []FieldSlot { return s.ActiveVariant().Fields() }
func (s *Sum) Size() uintptr       { return s.ActiveVariant().Size() }
func (s *Sum) Alignment() uintptr  { return s.ActiveVariant().Alignment() }
func (s *Sum) Kind() Kind          { return KindSum }

func (s *Sum) Name() string {
	parts := make([]string, 0, len(s.order))
	for _, name := range s.order {
		parts = append(parts, name+": "+s.variants[name].Name())
	}
	return "<" + strings.Join(parts, " | ") + ">"
}
