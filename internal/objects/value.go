// Package objects implements the object codec: writing typed values into
// heap-managed memory behind a three-word header, and reading them back.
package objects

import "github.com/orizon-lang/heapcore/internal/schema"

// Handle identifies an object by the address of its header — the same
// uintptr a root or a Reference slot holds. It is a plain alias rather
// than a distinct type so every existing uintptr-typed address (region
// offsets, Codec.Write's return, a Reference's Ref field) is already a
// valid Handle with no conversion required.
type Handle = uintptr

// Value is a tagged union carrying exactly one concrete reading of a
// schema: one of the six primitive kinds, or a composite's ordered field
// values. Unlike the type_info carried by a schema, a Value is a plain
// data holder with no behavior — it never needs runtime reflection
// because Kind says which field is meaningful.
type Value struct {
	Kind schema.Kind

	Nat    uint64
	Int    int64
	Double float64
	Char   rune
	Bool   bool
	Ref    uintptr

	// Fields holds the ordered field values of a Product or Record, or the
	// active variant's field values of a Sum.
	Fields []Value

	// Variant names the selected Sum variant. Empty for every other kind.
	Variant string
}

func NatValue(v uint64) Value     { return Value{Kind: schema.KindNat, Nat: v} }
func IntValue(v int64) Value      { return Value{Kind: schema.KindInt, Int: v} }
func DoubleValue(v float64) Value { return Value{Kind: schema.KindDouble, Double: v} }
func CharValue(v rune) Value      { return Value{Kind: schema.KindChar, Char: v} }
func BoolValue(v bool) Value      { return Value{Kind: schema.KindBool, Bool: v} }
func RefValue(addr uintptr) Value { return Value{Kind: schema.KindReference, Ref: addr} }

// ProductValue builds a Value for a Product schema from its ordered field
// values.
func ProductValue(fields ...Value) Value {
	return Value{Kind: schema.KindProduct, Fields: fields}
}

// RecordValue builds a Value for a Record schema from its field values in
// the record's declaration order.
func RecordValue(fields ...Value) Value {
	return Value{Kind: schema.KindRecord, Fields: fields}
}

// SumValue builds a Value for a Sum schema: the name of the selected
// variant and that variant's ordered field values.
func SumValue(variant string, fields ...Value) Value {
	return Value{Kind: schema.KindSum, Variant: variant, Fields: fields}
}
