package main

import (
	"math/rand"

	"github.com/plus3/archon/ecs"
)

// movementSystem integrates Position by Velocity every tick, touching every
// archetype carrying both — the widest-reach system in the harness.
type movementSystem struct {
	stream *ecs.Stream
}

func newMovementSystem(world *ecs.World) (*movementSystem, error) {
	stream, err := ecs.NewQuery(world).
		Select(ecs.PlainPattern[Position](), ecs.PlainPattern[Velocity]()).
		Compile()
	if err != nil {
		return nil, err
	}
	return &movementSystem{stream: stream}, nil
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	_ = ecs.Job(s.stream, frame.DeltaTime, func(_ ecs.Entity, cols []ecs.ColumnView, dt float64) {
		pos := ecs.At[Position](cols[0])
		vel := ecs.At[Velocity](cols[1])
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
		pos.Z += vel.DZ * dt
	})
}

// healthRegenSystem slowly regenerates Health toward Max, exercising a
// second, narrower archetype set after movementSystem in each tick.
type healthRegenSystem struct {
	stream *ecs.Stream
	rate   float64
}

func newHealthRegenSystem(world *ecs.World, rate float64) (*healthRegenSystem, error) {
	stream, err := ecs.NewQuery(world).Select(ecs.PlainPattern[Health]()).Compile()
	if err != nil {
		return nil, err
	}
	return &healthRegenSystem{stream: stream, rate: rate}, nil
}

func (s *healthRegenSystem) Execute(frame *ecs.UpdateFrame) {
	_ = ecs.For(s.stream, frame.DeltaTime, func(_ ecs.Entity, cols []ecs.ColumnView, dt float64) {
		h := ecs.At[Health](cols[0])
		h.Current += s.rate * dt
		if h.Current > h.Max {
			h.Current = h.Max
		}
	})
}

// cullingSystem damages a small, random fraction of Health carriers and
// despawns every carrier whose Current has dropped to zero or below,
// exercising the structural-deferral path (despawns queued from inside a
// running Stream action) every tick.
type cullingSystem struct {
	stream      *ecs.Stream
	damageOdds  float64
	damageDelta float64
}

func newCullingSystem(world *ecs.World) (*cullingSystem, error) {
	stream, err := ecs.NewQuery(world).Select(ecs.PlainPattern[Health]()).Compile()
	if err != nil {
		return nil, err
	}
	return &cullingSystem{stream: stream, damageOdds: 0.002, damageDelta: 25}, nil
}

func (s *cullingSystem) Execute(frame *ecs.UpdateFrame) {
	_ = ecs.For(s.stream, frame.DeltaTime, func(e ecs.Entity, cols []ecs.ColumnView, _ float64) {
		h := ecs.At[Health](cols[0])
		if rand.Float64() < s.damageOdds {
			h.Current -= s.damageDelta
		}
		if h.Current <= 0 {
			_ = e.Despawn()
		}
	})
}

// spawnRandomEntity creates one entity with Position + Velocity always
// present, plus a random subset of the remaining component pool, to spread
// the population across a realistic number of distinct archetypes.
func spawnRandomEntity(world *ecs.World) {
	e := ecs.Spawn(world)
	_ = ecs.Add(e, randPosition())
	_ = ecs.Add(e, randVelocity())

	if rand.Intn(4) != 0 {
		_ = ecs.Add(e, randHealth())
	}
	if rand.Intn(3) == 0 {
		_ = ecs.Add(e, randTag())
	}
	if rand.Intn(2) == 0 {
		_ = ecs.Add(e, randFaction())
	}
}
