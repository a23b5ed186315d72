package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/archon/ecs"
)

type defMarker struct{ N int }
type defTag struct{}

func TestStructuralChangesDeferredWhileLocked(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)

	w.Lock()
	assert.NoError(t, ecs.Add(e, defMarker{N: 1}))

	// Still unplaced from the caller's point of view: the add hasn't drained yet.
	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[defMarker]()).Compile()
	assert.NoError(t, err)
	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	w.Unlock()

	count, err = stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSpawnWhileLockedProducesAUsableProvisionalId(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	w.Lock()
	e := ecs.Spawn(w)
	// A log entry referencing e, queued right after its provisional spawn,
	// must still resolve correctly once both entries drain in order.
	assert.NoError(t, ecs.Add(e, defMarker{N: 7}))
	w.Unlock()

	assert.True(t, e.Alive())
	comp := w.GetComponent(e.Id(), reflect.TypeOf(defMarker{}))
	assert.NotNil(t, comp)
	assert.Equal(t, 7, comp.(*defMarker).N)
}

func TestReentrantLockOnlyDrainsOnOutermostUnlock(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)

	w.Lock()
	w.Lock()
	assert.NoError(t, ecs.Add(e, defMarker{N: 1}))
	w.Unlock()

	// Still inside the outer lock: nothing should have drained yet.
	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[defMarker]()).Compile()
	assert.NoError(t, err)
	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	w.Unlock()

	count, err = stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDespawnCollapseDropsLaterOpsAgainstTheSameEntity(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, defMarker{N: 1}))

	w.Lock()
	assert.NoError(t, e.Despawn())
	// Queued after the despawn in the same drain: must be silently dropped,
	// not resurrect or error loudly.
	assert.NoError(t, ecs.Add(e, defTag{}))
	w.Unlock()

	assert.False(t, e.Alive())
}
