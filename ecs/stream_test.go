package ecs_test

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/archon/ecs"
)

// goroutineID extracts the calling goroutine's id from its own stack trace
// header ("goroutine 123 [running]:"), used only to tell which worker touched
// which row in TestJobPartitionsALargeArchetypeIntoDisjointRowRanges.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	buf = buf[:bytes.IndexByte(buf, ' ')]
	id, _ := strconv.ParseUint(string(buf), 10, 64)
	return id
}

type sPosition struct{ X, Y float64 }
type sVelocity struct{ DX, DY float64 }

func TestForAndJobProduceTheSameResultSet(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	for i := 0; i < 200; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, sPosition{X: float64(i)}))
		assert.NoError(t, ecs.Add(e, sVelocity{DX: 1}))
	}

	streamFor, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition](), ecs.PlainPattern[sVelocity]()).Compile()
	assert.NoError(t, err)
	streamJob, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition](), ecs.PlainPattern[sVelocity]()).Compile()
	assert.NoError(t, err)

	var forSum, jobSum float64
	var mu sync.Mutex

	err = ecs.For(streamFor, 1.0, func(_ ecs.Entity, cols []ecs.ColumnView, dt float64) {
		pos := ecs.At[sPosition](cols[0])
		vel := ecs.At[sVelocity](cols[1])
		forSum += pos.X + vel.DX*dt
	})
	assert.NoError(t, err)

	err = ecs.Job(streamJob, 1.0, func(_ ecs.Entity, cols []ecs.ColumnView, dt float64) {
		pos := ecs.At[sPosition](cols[0])
		vel := ecs.At[sVelocity](cols[1])
		mu.Lock()
		jobSum += pos.X + vel.DX*dt
		mu.Unlock()
	})
	assert.NoError(t, err)

	assert.Equal(t, forSum, jobSum)
}

// TestJobPartitionsALargeArchetypeIntoDisjointRowRanges guards against Job
// collapsing to one goroutine per archetype: a single archetype large enough
// to span several row-range chunks should be visited by more than one
// goroutine, each touching a disjoint slice of rows that together cover the
// whole archetype exactly once.
func TestJobPartitionsALargeArchetypeIntoDisjointRowRanges(t *testing.T) {
	prev := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(prev)

	w := ecs.Open()
	defer w.Close()

	const n = 4000
	for i := 0; i < n; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, sPosition{X: float64(i)}))
	}

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition]()).Compile()
	assert.NoError(t, err)

	var mu sync.Mutex
	rowsByWorker := make(map[uint64][]float64)

	err = ecs.Job(stream, struct{}{}, func(_ ecs.Entity, cols []ecs.ColumnView, _ struct{}) {
		x := ecs.At[sPosition](cols[0]).X
		gid := goroutineID()
		mu.Lock()
		rowsByWorker[gid] = append(rowsByWorker[gid], x)
		mu.Unlock()
	})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(rowsByWorker), 2, "a %d-row archetype should be split across more than one goroutine", n)

	seen := make(map[float64]bool)
	total := 0
	for _, xs := range rowsByWorker {
		total += len(xs)
		for _, x := range xs {
			assert.False(t, seen[x], "row visited twice: %v", x)
			seen[x] = true
		}
	}
	assert.Equal(t, n, total)
}

func TestRawDeliversContiguousBuffers(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	for i := 0; i < 10; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, sPosition{X: float64(i)}))
	}

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition]()).Compile()
	assert.NoError(t, err)

	total := 0
	err = ecs.Raw(stream, struct{}{}, func(rows int, buffers []any, _ struct{}) {
		positions := buffers[0].([]sPosition)
		assert.Len(t, positions, rows)
		total += rows
	})
	assert.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestStreamRefreshPicksUpArchetypesCreatedAfterCompile(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition]()).Compile()
	assert.NoError(t, err)

	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// This Add creates a brand-new archetype after the stream was compiled.
	e := ecs.Spawn(w)
	assert.NoError(t, ecs.Add(e, sPosition{}))

	count, err = stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDespawnRequestedInsideForIsDeferredUntilUnlock(t *testing.T) {
	w := ecs.Open()
	defer w.Close()

	var entities []ecs.Entity
	for i := 0; i < 5; i++ {
		e := ecs.Spawn(w)
		assert.NoError(t, ecs.Add(e, sPosition{X: float64(i)}))
		entities = append(entities, e)
	}

	stream, err := ecs.NewQuery(w).Select(ecs.PlainPattern[sPosition]()).Compile()
	assert.NoError(t, err)

	visitedDuringLoop := 0
	err = ecs.For(stream, struct{}{}, func(e ecs.Entity, cols []ecs.ColumnView, _ struct{}) {
		visitedDuringLoop++
		if ecs.At[sPosition](cols[0]).X == 2 {
			_ = e.Despawn() // must not disturb the in-flight iteration
		}
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, visitedDuringLoop)

	count, err := stream.Count()
	assert.NoError(t, err)
	assert.Equal(t, 4, count)
}
