package ecs

import (
	"reflect"
	"unsafe"

	"github.com/plus3/archon/internal/assert"
)

// column is the type-erased interface every per-key storage buffer implements. A
// column is always kept dense: its length equals the owning archetype's entity
// count, and removal is always a swap-with-last so the column never develops holes.
type column interface {
	len() int
	grow()                     // append one zero-valued row
	swapRemove(row int)        // remove row, swapping the last row into its place
	get(row int) any           // boxed read, used by copyRow when moving a row between archetypes
	set(row int, value any)    // boxed write
	ptr(row int) ptrHandle     // unsafe pointer to the row, for the hot iteration path
	raw() any                  // contiguous buffer view, for the Raw runner
	elemType() reflect.Type
}

// ptrHandle is an unsafe pointer to a single row's storage, typed by the caller's
// knowledge of the column's element type. Stream runners reinterpret it; nothing
// outside this package should ever see one.
type ptrHandle = unsafe.Pointer

// columnFactory constructs an empty column for one component type.
type columnFactory func() column

var columnFactories = map[reflect.Type]columnFactory{}

// registerColumnFactory installs a typedColumn factory for type T. The Key
// constructors do not call it, and nothing else in this package does either, so
// columns come from columnFactoryFor's reflectColumn fallback unless a factory
// has been registered here first.
func registerColumnFactory[T any]() columnFactory {
	t := reflect.TypeFor[T]()
	if f, ok := columnFactories[t]; ok {
		return f
	}
	f := func() column {
		return &typedColumn[T]{items: make([]T, 0, columnInitialCapacity)}
	}
	columnFactories[t] = f
	return f
}

const columnInitialCapacity = 8

func columnFactoryFor(t reflect.Type) columnFactory {
	if f, ok := columnFactories[t]; ok {
		return f
	}
	// No typed factory is registered for t (the Key constructors never register
	// one), so build one generically off the reflect.Type using reflect.MakeSlice.
	f := func() column {
		return &reflectColumn{elem: t, slice: reflect.MakeSlice(reflect.SliceOf(t), 0, columnInitialCapacity)}
	}
	columnFactories[t] = f
	return f
}

// typedColumn is the fast path: a plain Go slice of T, manipulated without
// reflection wherever the caller already knows T.
type typedColumn[T any] struct {
	items []T
}

func (c *typedColumn[T]) len() int { return len(c.items) }

func (c *typedColumn[T]) grow() {
	var zero T
	c.items = append(c.items, zero)
}

func (c *typedColumn[T]) swapRemove(row int) {
	last := len(c.items) - 1
	assert.That(row <= last, "column swapRemove: row out of range")
	c.items[row] = c.items[last]
	var zero T
	c.items[last] = zero
	c.items = c.items[:last]
}

func (c *typedColumn[T]) get(row int) any {
	return c.items[row]
}

func (c *typedColumn[T]) set(row int, value any) {
	c.items[row] = value.(T)
}

func (c *typedColumn[T]) ptr(row int) ptrHandle {
	return unsafe.Pointer(&c.items[row])
}

func (c *typedColumn[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *typedColumn[T]) raw() any {
	return c.items
}

// setTyped is a non-boxing write for a caller that already holds a concrete T,
// avoiding the interface allocation set() would otherwise incur. World's spawn
// and move paths write through set() and do not call it.
func (c *typedColumn[T]) setTyped(row int, value T) {
	c.items[row] = value
}

// reflectColumn is the fallback columnFactoryFor builds for any component type
// without a registered typed factory, which includes every type keyed through
// PlainKey[T] et al.
type reflectColumn struct {
	elem  reflect.Type
	slice reflect.Value
}

func (c *reflectColumn) len() int { return c.slice.Len() }

func (c *reflectColumn) grow() {
	c.slice = reflect.Append(c.slice, reflect.Zero(c.elem))
}

func (c *reflectColumn) swapRemove(row int) {
	last := c.slice.Len() - 1
	c.slice.Index(row).Set(c.slice.Index(last))
	c.slice.Index(last).Set(reflect.Zero(c.elem))
	c.slice = c.slice.Slice(0, last)
}

func (c *reflectColumn) get(row int) any {
	return c.slice.Index(row).Interface()
}

func (c *reflectColumn) set(row int, value any) {
	c.slice.Index(row).Set(reflect.ValueOf(value))
}

func (c *reflectColumn) ptr(row int) ptrHandle {
	return c.slice.Index(row).Addr().UnsafePointer()
}

func (c *reflectColumn) elemType() reflect.Type { return c.elem }

func (c *reflectColumn) raw() any { return c.slice.Interface() }

// objectLinkColumn backs role-ObjectLink keys: the value is a single reference
// shared by every row in the archetype, stored once rather than once per row.
// len()/grow()/swapRemove() still track the archetype's row count so every column
// in an archetype agrees on length, but they never touch the underlying object.
type objectLinkColumn struct {
	rows  int
	value any
}

func (c *objectLinkColumn) len() int { return c.rows }
func (c *objectLinkColumn) grow()    { c.rows++ }
func (c *objectLinkColumn) swapRemove(int) {
	assert.That(c.rows > 0, "objectLinkColumn swapRemove: empty column")
	c.rows--
}
func (c *objectLinkColumn) get(int) any      { return c.value }
func (c *objectLinkColumn) set(_ int, v any) { c.value = v }
func (c *objectLinkColumn) ptr(int) ptrHandle {
	return ptrOf(c.value)
}
func (c *objectLinkColumn) elemType() reflect.Type {
	if c.value == nil {
		return nil
	}
	return reflect.TypeOf(c.value)
}

// raw returns the single shared value, not a slice: every row in the archetype
// aliases the same ObjectLink target, so there is nothing to make contiguous.
func (c *objectLinkColumn) raw() any { return c.value }
