package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/archon/ecs"
)

type wPosition struct{ X, Y float64 }
type wVelocity struct{ DX, DY float64 }
type wTag struct{ N int }

func TestAddRemoveRoundTripReturnsToOriginalArchetype(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, wPosition{X: 1, Y: 2}))

	arch, _, err := w.Locate(e.Id())
	assert.NoError(t, err)
	original := arch.Id()

	assert.NoError(t, ecs.Add(e, wTag{N: 1}))
	assert.NoError(t, ecs.Remove[wTag](e))

	arch, _, err = w.Locate(e.Id())
	assert.NoError(t, err)
	assert.Equal(t, original, arch.Id())

	// Position must have survived the round trip unchanged.
	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[wPosition]()).Compile()
	assert.NoError(t, err)
	err = ecs.For(stream, struct{}{}, func(_ ecs.Entity, cols []ecs.ColumnView, _ struct{}) {
		pos := ecs.At[wPosition](cols[0])
		assert.Equal(t, 1.0, pos.X)
		assert.Equal(t, 2.0, pos.Y)
	})
	assert.NoError(t, err)
}

func TestEdgeCacheReachesSameArchetypeOnRepeatedTransition(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e1 := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e1, wPosition{}))
	assert.NoError(t, ecs.Add(e1, wVelocity{}))
	arch1, _, err := w.Locate(e1.Id())
	assert.NoError(t, err)

	e2 := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e2, wPosition{}))
	assert.NoError(t, ecs.Add(e2, wVelocity{}))
	arch2, _, err := w.Locate(e2.Id())
	assert.NoError(t, err)

	assert.Equal(t, arch1.Id(), arch2.Id())
}

func TestRemovingAbsentComponentIsANoOp(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, wPosition{}))
	assert.NoError(t, ecs.Remove[wVelocity](e)) // never added; must not error
}

func TestOverwritingAnExistingPlainComponentDoesNotMove(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, wPosition{X: 1}))
	arch, _, err := w.Locate(e.Id())
	assert.NoError(t, err)
	before := arch.Id()

	assert.NoError(t, ecs.Add(e, wPosition{X: 2}))
	arch, _, err = w.Locate(e.Id())
	assert.NoError(t, err)
	assert.Equal(t, before, arch.Id())

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[wPosition]()).Compile()
	assert.NoError(t, err)
	err = ecs.For(stream, struct{}{}, func(_ ecs.Entity, cols []ecs.ColumnView, _ struct{}) {
		assert.Equal(t, 2.0, ecs.At[wPosition](cols[0]).X)
	})
	assert.NoError(t, err)
}

func TestGetComponentReturnsSettablePointer(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, wPosition{X: 1, Y: 2}))

	comp := w.GetComponent(e.Id(), reflect.TypeOf(wPosition{}))
	assert.NotNil(t, comp)
	pos := comp.(*wPosition)
	assert.Equal(t, 1.0, pos.X)
}
