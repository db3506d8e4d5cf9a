// Package mock generates randomized value graphs for exercising the heap
// codec, tracer, and collector against shapes no hand-written test would
// think to try.
package mock

import (
	"math/rand"

	"github.com/orizon-lang/heapcore/internal/objects"
	"github.com/orizon-lang/heapcore/internal/schema"
)

// Generator produces random schemas and values from a seeded source, so a
// failing run is reproducible by re-seeding with the same value. It
// remembers every handle it has written so far — without that pool it
// could never produce the Reference-bearing graphs the collector's
// reachability and compaction property tests depend on.
type Generator struct {
	rng     *rand.Rand
	layout  schema.Layout
	handles []objects.Handle
}

// New returns a Generator seeded deterministically; the caller controls
// reproducibility by choosing seed.
func New(seed int64, layout schema.Layout) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), layout: layout}
}

const maxFields = 4

// primitiveKinds are the five non-reference scalar kinds RandomPrimitive
// can choose among.
var primitiveKinds = []schema.Kind{
	schema.KindNat, schema.KindInt, schema.KindDouble,
	schema.KindChar, schema.KindBool,
}

// RandomPrimitive returns a schema and value for one of the five
// non-reference scalar kinds.
func (g *Generator) RandomPrimitive() (schema.Schema, objects.Value) {
	switch primitiveKinds[g.rng.Intn(len(primitiveKinds))] {
	case schema.KindNat:
		return schema.Nat(), objects.NatValue(g.rng.Uint64())
	case schema.KindInt:
		return schema.Int(), objects.IntValue(g.rng.Int63() - g.rng.Int63())
	case schema.KindDouble:
		return schema.Double(), objects.DoubleValue(g.rng.Float64())
	case schema.KindChar:
		return schema.Char(g.layout), objects.CharValue(rune(32 + g.rng.Intn(95)))
	default:
		return schema.Bool(g.layout), objects.BoolValue(g.rng.Intn(2) == 0)
	}
}

// randomLeaf returns a schema/value pair fit to sit directly in a payload
// slot: one of the five scalars, or — once at least one object has
// already been allocated — a Reference naming a handle drawn from the
// pool. Every composite's fields are built exclusively out of randomLeaf
// results, so a generated Product, Record, or Sum can never nest another
// composite by value; spec.md §4.2 requires nesting to go through
// References instead, and the codec's writeFields rejects a non-primitive
// field kind outright.
func (g *Generator) randomLeaf() (schema.Schema, objects.Value) {
	if len(g.handles) > 0 && g.rng.Intn(2) == 0 {
		target := g.handles[g.rng.Intn(len(g.handles))]
		return schema.Reference{}, objects.RefValue(target)
	}
	return g.RandomPrimitive()
}

// RandomValue builds a schema/value pair for one top-level object: either
// a bare leaf, or a Product, Record, or Sum whose fields are all leaves —
// scalars and References to previously-built handles, mixed freely.
func (g *Generator) RandomValue() (schema.Schema, objects.Value) {
	if g.rng.Intn(3) == 0 {
		return g.randomLeaf()
	}

	n := 1 + g.rng.Intn(maxFields)
	elements := make([]schema.Schema, n)
	values := make([]objects.Value, n)
	for i := 0; i < n; i++ {
		elements[i], values[i] = g.randomLeaf()
	}

	switch g.rng.Intn(3) {
	case 0:
		return schema.NewProduct(g.layout, elements...), objects.ProductValue(values...)
	case 1:
		names := make([]string, n)
		for i := range names {
			names[i] = fieldName(i)
		}
		return schema.NewRecord(g.layout, names, elements), objects.RecordValue(values...)
	default:
		return g.randomSum(elements, values)
	}
}

// randomSum wraps one generated set of leaf fields as the selected variant
// of a two-variant Sum, with the other variant a single-field placeholder
// that is never written or read: the codec writes and reads back only the
// variant Selected() names.
func (g *Generator) randomSum(elements []schema.Schema, values []objects.Value) (schema.Schema, objects.Value) {
	selected := schema.NewProduct(g.layout, elements...)
	other := schema.NewProduct(g.layout, schema.Nat())

	variants := map[string]*schema.Product{
		"selected": selected,
		"other":    other,
	}
	sum := schema.NewSum(variants, []string{"selected", "other"}, "selected")
	return sum, objects.SumValue("selected", values...)
}

func fieldName(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%len(letters)])
}

// BuildGraph writes n random top-level objects through c, in allocation
// order. Each object's fields are drawn from randomLeaf, so once the pool
// is non-empty, some of the n objects reference handles built earlier in
// this same call — or by an earlier BuildGraph/BuildReferenceChain call on
// this Generator. It returns every handle written, in allocation order,
// which is what lets a caller pick an arbitrary subset as GC roots and
// still reach the rest of the graph purely through References.
func (g *Generator) BuildGraph(c *objects.Codec, n int) ([]objects.Handle, error) {
	handles := make([]objects.Handle, 0, n)
	for i := 0; i < n; i++ {
		s, v := g.RandomValue()
		addr, err := c.Write(s, v)
		if err != nil {
			return nil, err
		}
		g.handles = append(g.handles, addr)
		handles = append(handles, addr)
	}
	return handles, nil
}

// BuildReferenceChain writes n linked objects where each holds a
// Reference to the next, and returns the address of the head. The last
// object's reference slot is null. This exercises the tracer's
// back-edge/forward-edge handling independent of composite layout. Every
// link it writes also joins the Generator's handle pool, so a later
// BuildGraph call can pick chain links as Reference targets too.
func (g *Generator) BuildReferenceChain(c *objects.Codec, n int) (objects.Handle, error) {
	refSchema := schema.Reference{}
	var next objects.Handle
	for i := 0; i < n; i++ {
		addr, err := c.Write(refSchema, objects.RefValue(next))
		if err != nil {
			return 0, err
		}
		g.handles = append(g.handles, addr)
		next = addr
	}
	return next, nil
}
