package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/archon/ecs"
)

type schedPosition struct{ X, Y float32 }
type schedVelocity struct{ DX, DY float32 }
type schedHealth struct{ Current, Max float64 }

type movementSystem struct {
	stream       *ecs.Stream
	ExecuteCount int
}

func newMovementSystem(w *ecs.World) *movementSystem {
	s, err := ecs.NewQuery(w).
		Select(ecs.PlainPattern[schedPosition](), ecs.PlainPattern[schedVelocity]()).
		Compile()
	if err != nil {
		panic(err)
	}
	return &movementSystem{stream: s}
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	_ = ecs.For(s.stream, frame.DeltaTime, func(_ ecs.Entity, cols []ecs.ColumnView, dt float64) {
		pos := ecs.At[schedPosition](cols[0])
		vel := ecs.At[schedVelocity](cols[1])
		pos.X += vel.DX * float32(dt)
		pos.Y += vel.DY * float32(dt)
	})
}

type healthSystem struct {
	stream       *ecs.Stream
	ExecuteCount int
	TotalHealth  float64
}

func newHealthSystem(w *ecs.World) *healthSystem {
	s, err := ecs.NewQuery(w).Select(ecs.PlainPattern[schedHealth]()).Compile()
	if err != nil {
		panic(err)
	}
	return &healthSystem{stream: s}
}

func (s *healthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	total := 0.0
	_ = ecs.For(s.stream, struct{}{}, func(_ ecs.Entity, cols []ecs.ColumnView, _ struct{}) {
		total += ecs.At[schedHealth](cols[0]).Current
	})
	s.TotalHealth = total
}

func TestSchedulerExecutesEverySystemOncePerTick(t *testing.T) {
	w := ecs.Open()
	defer w.Close()
	scheduler := ecs.NewScheduler(w)

	movement := newMovementSystem(w)
	health := newHealthSystem(w)
	scheduler.Register(movement)
	scheduler.Register(health)

	e := ecs.Spawn(w)
	_ = ecs.Add(e, schedPosition{})
	_ = ecs.Add(e, schedVelocity{DX: 1, DY: 2})
	_ = ecs.Add(ecs.Spawn(w), schedHealth{Current: 100, Max: 100})

	scheduler.Once(1.0)
	if movement.ExecuteCount != 1 || health.ExecuteCount != 1 {
		t.Fatalf("expected both systems to execute once, got movement=%d health=%d", movement.ExecuteCount, health.ExecuteCount)
	}

	scheduler.Once(1.0)
	if movement.ExecuteCount != 2 || health.ExecuteCount != 2 {
		t.Fatalf("expected both systems to execute twice, got movement=%d health=%d", movement.ExecuteCount, health.ExecuteCount)
	}
}

func TestSchedulerStatePersistsAcrossTicks(t *testing.T) {
	w := ecs.Open()
	defer w.Close()
	scheduler := ecs.NewScheduler(w)

	_ = ecs.Add(ecs.Spawn(w), schedHealth{Current: 50, Max: 100})
	_ = ecs.Add(ecs.Spawn(w), schedHealth{Current: 75, Max: 100})

	health := newHealthSystem(w)
	scheduler.Register(health)
	scheduler.Once(1.0)

	if health.TotalHealth != 125.0 {
		t.Fatalf("expected TotalHealth=125.0, got %f", health.TotalHealth)
	}

	_ = ecs.Add(ecs.Spawn(w), schedHealth{Current: 25, Max: 100})
	scheduler.Once(1.0)

	if health.TotalHealth != 150.0 {
		t.Fatalf("expected TotalHealth=150.0, got %f", health.TotalHealth)
	}
}

func TestSchedulerRunStopsOnCancellation(t *testing.T) {
	w := ecs.Open()
	defer w.Close()
	scheduler := ecs.NewScheduler(w)

	movement := newMovementSystem(w)
	scheduler.Register(movement)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		scheduler.Run(ctx, time.Millisecond)
		done <- true
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("scheduler did not stop after context cancellation")
	}

	if movement.ExecuteCount == 0 {
		t.Error("expected system to execute at least once before cancellation")
	}
}

func TestSchedulerDeltaTimeThreading(t *testing.T) {
	w := ecs.Open()
	defer w.Close()
	scheduler := ecs.NewScheduler(w)

	e := ecs.Spawn(w)
	_ = ecs.Add(e, schedPosition{X: 0, Y: 0})
	_ = ecs.Add(e, schedVelocity{DX: 10, DY: 20})

	movement := newMovementSystem(w)
	scheduler.Register(movement)
	scheduler.Once(0.5)

	found := false
	_ = ecs.For(movement.stream, 0.0, func(_ ecs.Entity, cols []ecs.ColumnView, _ float64) {
		pos := ecs.At[schedPosition](cols[0])
		if pos.X == 5.0 && pos.Y == 10.0 {
			found = true
		}
	})

	if !found {
		t.Error("expected position to be updated with delta time")
	}
}
