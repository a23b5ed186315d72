package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/archon/ecs"
)

type archPosition struct{ X, Y float64 }
type archVelocity struct{ DX, DY float64 }

func TestArchetypeColumnLengthStaysInSyncWithEntityCount(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	for i := 0; i < 50; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, archPosition{X: float64(i)}))
		assert.NoError(t, ecs.Add(e, archVelocity{DX: 1}))
	}

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[archPosition](), ecs.PlainPattern[archVelocity]()).Compile()
	assert.NoError(t, err)

	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestArchetypeSwapRemoveRelocatesIdentity(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	var entities []ecs.Entity
	for i := 0; i < 5; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, archPosition{X: float64(i)}))
		entities = append(entities, e)
	}

	// Despawn the middle entity; its archetype does a swap-remove internally,
	// and the identity registry must track wherever the swapped-in entity lands.
	assert.NoError(t, entities[2].Despawn())

	for i, e := range entities {
		if i == 2 {
			assert.False(t, e.Alive())
			continue
		}
		assert.True(t, e.Alive())
		_, _, err := w.Locate(e.Id())
		assert.NoError(t, err)
	}
}

func TestArchetypeIterYieldsEveryLiveEntity(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	spawned := make(map[ecs.EntityId]bool)
	for i := 0; i < 10; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, archPosition{}))
		spawned[e.Id()] = true
	}

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[archPosition]()).Compile()
	assert.NoError(t, err)
	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, len(spawned), count)

	seen := make(map[ecs.EntityId]bool)
	for _, a := range w.Archetypes() {
		for id := range a.Iter() {
			assert.False(t, seen[id], "entity %s enumerated twice", id)
			seen[id] = true
		}
	}
	for id := range spawned {
		assert.True(t, seen[id])
	}
}
