package objects

import (
	"encoding/binary"
	"math"

	"github.com/orizon-lang/heapcore/internal/herrors"
	"github.com/orizon-lang/heapcore/internal/region"
	"github.com/orizon-lang/heapcore/internal/schema"
)

// HeaderWords is the fixed width, in machine words, of every object
// header: type_sig, size, and a handle into the codec's schema registry
// standing in for the original's type_info pointer.
const HeaderWords = 3

// HeaderSize is HeaderWords in bytes.
const HeaderSize = HeaderWords * schema.WordSize

// Header is the decoded form of an object's fixed-width preamble.
type Header struct {
	TypeSig  schema.Kind
	Size     uintptr
	TypeInfo uintptr
}

// Codec writes and reads typed values against a region.Heap, resolving
// each object's type_info handle through a shared Registry.
type Codec struct {
	Heap     *region.Heap
	Registry *Registry
}

// NewCodec pairs a heap with a fresh schema registry.
func NewCodec(h *region.Heap) *Codec {
	return &Codec{Heap: h, Registry: NewRegistry()}
}

func putWord(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

func getWord(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

func (c *Codec) writeHeader(addr uintptr, h Header) error {
	buf := make([]byte, HeaderSize)
	putWord(buf[0:8], uint64(h.TypeSig))
	putWord(buf[8:16], uint64(h.Size))
	putWord(buf[16:24], uint64(h.TypeInfo))
	return c.Heap.WriteBytes(addr, buf)
}

// ReadHeader decodes the three-word preamble at addr.
func (c *Codec) ReadHeader(addr uintptr) (Header, error) {
	raw, err := c.Heap.ReadBytes(addr, HeaderSize)
	if err != nil {
		return Header{}, err
	}
	sig := schema.Kind(getWord(raw[0:8]))
	if !schema.ValidTypeSig(uint8(sig)) {
		return Header{}, herrors.InvalidObject(addr)
	}
	return Header{
		TypeSig:  sig,
		Size:     uintptr(getWord(raw[8:16])),
		TypeInfo: uintptr(getWord(raw[16:24])),
	}, nil
}

// Write allocates space for s's payload behind a header, registers s under
// a type_info handle, and writes v into the payload. It returns the
// address of the object header — the handle every root and Reference slot
// points to.
func (c *Codec) Write(s schema.Schema, v Value) (uintptr, error) {
	if v.Kind != s.Kind() {
		return 0, herrors.UnsupportedFieldKind(v.Kind)
	}

	total := HeaderSize + s.Size()
	addr, err := c.Heap.Alloc(total, schema.WordSize)
	if err != nil {
		return 0, err
	}

	handle := c.Registry.Register(s)
	if err := c.writeHeader(addr, Header{TypeSig: s.Kind(), Size: s.Size(), TypeInfo: handle}); err != nil {
		return 0, err
	}

	payload := addr + HeaderSize
	if err := c.writePayload(payload, s, v); err != nil {
		return 0, err
	}
	return addr, nil
}

func (c *Codec) writePayload(payload uintptr, s schema.Schema, v Value) error {
	switch s.Kind() {
	case schema.KindNat, schema.KindInt, schema.KindDouble, schema.KindChar, schema.KindBool, schema.KindReference:
		buf := make([]byte, s.Size())
		if err := encodePrimitive(buf, s.Kind(), v); err != nil {
			return err
		}
		return c.Heap.WriteBytes(payload, buf)

	case schema.KindProduct, schema.KindRecord:
		composite := s.(schema.Composite)
		return c.writeFields(payload, composite.Fields(), v.Fields)

	case schema.KindSum:
		sum := s.(*schema.Sum)
		if v.Variant != sum.Selected() {
			return herrors.DataReadFailed("sum value variant does not match schema's selected variant")
		}
		return c.writeFields(payload, sum.Fields(), v.Fields)

	default:
		return herrors.UnsupportedFieldKind(s.Kind())
	}
}

func (c *Codec) writeFields(payload uintptr, fields []schema.FieldSlot, values []Value) error {
	if len(values) != len(fields) {
		return herrors.SizeMismatch(len(fields), len(values))
	}
	for i, f := range fields {
		if !f.Kind.IsPrimitive() {
			return herrors.UnsupportedFieldKind(f.Kind)
		}
		if values[i].Kind != f.Kind {
			return herrors.UnsupportedFieldKind(values[i].Kind)
		}
		buf := make([]byte, f.Size)
		if err := encodePrimitive(buf, f.Kind, values[i]); err != nil {
			return err
		}
		if err := c.Heap.WriteBytes(payload+f.Offset, buf); err != nil {
			return err
		}
	}
	return nil
}

func encodePrimitive(dst []byte, kind schema.Kind, v Value) error {
	switch kind {
	case schema.KindNat:
		putWord(dst, v.Nat)
	case schema.KindInt:
		putWord(dst, uint64(v.Int))
	case schema.KindDouble:
		putWord(dst, math.Float64bits(v.Double))
	case schema.KindReference:
		putWord(dst, uint64(v.Ref))
	case schema.KindChar:
		if len(dst) == 4 {
			binary.LittleEndian.PutUint32(dst, uint32(v.Char))
		} else {
			putWord(dst, uint64(v.Char))
		}
	case schema.KindBool:
		var b byte
		if v.Bool {
			b = 1
		}
		dst[0] = b
	default:
		return herrors.UnsupportedFieldKind(kind)
	}
	return nil
}

func decodePrimitive(src []byte, kind schema.Kind) (Value, error) {
	switch kind {
	case schema.KindNat:
		return NatValue(getWord(src)), nil
	case schema.KindInt:
		return IntValue(int64(getWord(src))), nil
	case schema.KindDouble:
		return DoubleValue(math.Float64frombits(getWord(src))), nil
	case schema.KindReference:
		return RefValue(uintptr(getWord(src))), nil
	case schema.KindChar:
		if len(src) == 4 {
			return CharValue(rune(binary.LittleEndian.Uint32(src))), nil
		}
		return CharValue(rune(getWord(src))), nil
	case schema.KindBool:
		return BoolValue(src[0] != 0), nil
	default:
		return Value{}, herrors.UnsupportedFieldKind(kind)
	}
}

// Read decodes the header at addr, resolves its schema through the
// registry, and decodes the payload into a Value. It returns the schema
// alongside the value since callers — especially the tracer — usually
// need both.
func (c *Codec) Read(addr uintptr) (Value, schema.Schema, error) {
	h, err := c.ReadHeader(addr)
	if err != nil {
		return Value{}, nil, err
	}
	s, ok := c.Registry.Lookup(h.TypeInfo)
	if !ok {
		return Value{}, nil, herrors.InvalidObject(addr)
	}

	payload := addr + HeaderSize
	v, err := c.readPayload(payload, s)
	if err != nil {
		return Value{}, nil, err
	}
	return v, s, nil
}

func (c *Codec) readPayload(payload uintptr, s schema.Schema) (Value, error) {
	switch s.Kind() {
	case schema.KindNat, schema.KindInt, schema.KindDouble, schema.KindChar, schema.KindBool, schema.KindReference:
		raw, err := c.Heap.ReadBytes(payload, s.Size())
		if err != nil {
			return Value{}, err
		}
		return decodePrimitive(raw, s.Kind())

	case schema.KindProduct, schema.KindRecord:
		composite := s.(schema.Composite)
		fields, err := c.readFields(payload, composite.Fields())
		if err != nil {
			return Value{}, err
		}
		if s.Kind() == schema.KindProduct {
			return ProductValue(fields...), nil
		}
		return RecordValue(fields...), nil

	case schema.KindSum:
		sum := s.(*schema.Sum)
		fields, err := c.readFields(payload, sum.Fields())
		if err != nil {
			return Value{}, err
		}
		return SumValue(sum.Selected(), fields...), nil

	default:
		return Value{}, herrors.UnsupportedFieldKind(s.Kind())
	}
}

func (c *Codec) readFields(payload uintptr, fields []schema.FieldSlot) ([]Value, error) {
	values := make([]Value, len(fields))
	for i, f := range fields {
		raw, err := c.Heap.ReadBytes(payload+f.Offset, f.Size)
		if err != nil {
			return nil, err
		}
		v, err := decodePrimitive(raw, f.Kind)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
