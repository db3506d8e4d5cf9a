// Package herrors provides standardized error messaging for the heap core.
package herrors

import (
	"fmt"
	"runtime"
)

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryAllocator Category = "ALLOCATOR"
	CategoryLayout    Category = "LAYOUT"
	CategoryCodec     Category = "CODEC"
	CategoryCollector Category = "COLLECTOR"
)

// HeapError is a consistently formatted error carrying a category, a stable
// code, a human message and optional structured context.
type HeapError struct {
	Category Category
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

func (e *HeapError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

func newError(category Category, code, message string, context map[string]interface{}) *HeapError {
	pc, _, _, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &HeapError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// AllocatorClosed reports an operation attempted after Teardown.
func AllocatorClosed() *HeapError {
	return newError(CategoryAllocator, "ALLOCATOR_CLOSED",
		"operation attempted after teardown", nil)
}

// LayoutInvalid reports a region or object size the allocator cannot realize.
func LayoutInvalid(context string, size uintptr) *HeapError {
	return newError(CategoryLayout, "LAYOUT_INVALID",
		fmt.Sprintf("invalid layout in %s: size=%d", context, size),
		map[string]interface{}{"context": context, "size": size})
}

// SizeMismatch reports a payload cardinality that disagrees with its schema.
func SizeMismatch(expected, got int) *HeapError {
	return newError(CategoryCodec, "SIZE_MISMATCH",
		fmt.Sprintf("expected %d fields, got %d", expected, got),
		map[string]interface{}{"expected": expected, "got": got})
}

// UnsupportedFieldKind reports a composite field whose kind cannot be written
// into a payload slot.
func UnsupportedFieldKind(kind fmt.Stringer) *HeapError {
	return newError(CategoryCodec, "UNSUPPORTED_FIELD_KIND",
		fmt.Sprintf("field kind %s cannot be written as a payload slot", kind),
		map[string]interface{}{"kind": kind.String()})
}

// DataReadFailed reports a payload field that does not decode as the kind
// its schema claims.
func DataReadFailed(context string) *HeapError {
	return newError(CategoryCodec, "DATA_READ_FAILED",
		fmt.Sprintf("failed to decode payload: %s", context),
		map[string]interface{}{"context": context})
}

// InvalidObject reports an unrecognized type_sig discovered while tracing.
func InvalidObject(address uintptr) *HeapError {
	return newError(CategoryCollector, "INVALID_OBJECT",
		fmt.Sprintf("object at address %#x has an unrecognized type signature", address),
		map[string]interface{}{"address": address})
}

// InvalidRoots reports a root handle that does not lie in any region.
func InvalidRoots(address uintptr) *HeapError {
	return newError(CategoryCollector, "INVALID_ROOTS",
		fmt.Sprintf("root at address %#x does not lie in any region", address),
		map[string]interface{}{"address": address})
}

// AllocationFailed wraps an underlying allocation failure propagated from
// the region allocator.
func AllocationFailed(reason string) *HeapError {
	return newError(CategoryAllocator, "ALLOCATION_FAILED", reason, nil)
}
