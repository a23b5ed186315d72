package ecs

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stream binds a compiled Query to one of four dispatch runners. A Stream is
// cheap to hold onto across frames: refresh (called automatically by every
// runner) only scans archetypes created since the last call.
type Stream struct {
	query   *Query
	cursor  int
	matches []archetypeMatch
}

// refresh scans archetypes created since the last call and admits the ones
// that satisfy the query, appending to the cached matched set. Archetypes are
// never retired, so admitted archetypes never need to be dropped again.
func (s *Stream) refresh() error {
	snap := s.query.world.archetypeSnapshot()
	for ; s.cursor < len(snap); s.cursor++ {
		selectKeys, err := s.query.admits(snap[s.cursor])
		if err != nil {
			return err
		}
		if selectKeys != nil {
			s.matches = append(s.matches, archetypeMatch{archetype: snap[s.cursor], selectKeys: selectKeys})
		}
	}
	return nil
}

// Count returns the total number of entities across every matched archetype.
func (s *Stream) Count() (int, error) {
	if err := s.refresh(); err != nil {
		return 0, err
	}
	n := 0
	for _, m := range s.matches {
		n += m.archetype.Len()
	}
	return n, nil
}

// ColumnView is a handle to one selected component's storage at one row,
// delivered to a For or Job action. Use At to recover a typed pointer.
type ColumnView struct {
	col column
	row int
}

// At returns a typed pointer into the column at the row the view was bound to.
// The caller must supply the same T the column was created with; there is no
// runtime check on the hot path, matching the columns' own non-boxing access.
func At[T any](c ColumnView) *T {
	return (*T)(c.col.ptr(c.row))
}

// forEachCombo invokes fn once per cartesian-product combination across
// selectKeys, choosing exactly one KeyId per select pattern each time. A
// non-wildcard pattern contributes exactly one combination; a wildcard
// pattern matching N columns in a given archetype contributes N.
func forEachCombo(selectKeys [][]KeyId, fn func(combo []KeyId)) {
	n := len(selectKeys)
	combo := make([]KeyId, n)
	var rec func(i int)
	rec = func(i int) {
		if i == n {
			fn(combo)
			return
		}
		for _, id := range selectKeys[i] {
			combo[i] = id
			rec(i + 1)
		}
	}
	rec(0)
}

func columnViews(a *Archetype, combo []KeyId, row int) []ColumnView {
	cols := make([]ColumnView, len(combo))
	for i, id := range combo {
		col, _ := a.column(id)
		cols[i] = ColumnView{col: col, row: row}
	}
	return cols
}

// For visits every matched row, single-threaded and in archetype-then-row
// order, invoking action once per (row, wildcard-combination) per the
// compiled select list. uniform is passed unchanged to every invocation.
func For[U any](s *Stream, uniform U, action func(e Entity, cols []ColumnView, uniform U)) error {
	if err := s.refresh(); err != nil {
		return err
	}
	w := s.query.world
	w.Lock()
	defer w.Unlock()
	for _, m := range s.matches {
		for row := 0; row < m.archetype.Len(); row++ {
			entity := Entity{world: w, id: m.archetype.entities[row]}
			forEachCombo(m.selectKeys, func(combo []KeyId) {
				action(entity, columnViews(m.archetype, combo, row), uniform)
			})
		}
	}
	return nil
}

// rowRanges partitions [0, total) into up to n contiguous, roughly equal
// ranges, so a large archetype gets real parallelism rather than one goroutine
// per archetype regardless of its size. Ranges are omitted once total < n, so
// no goroutine is dispatched with nothing to do.
func rowRanges(total, n int) [][2]int {
	if total == 0 {
		return nil
	}
	if n > total {
		n = total
	}
	ranges := make([][2]int, 0, n)
	base, rem := total/n, total%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		end := start + size
		ranges = append(ranges, [2]int{start, end})
		start = end
	}
	return ranges
}

// Job visits every matched row exactly like For, but dispatches work to a
// bounded worker pool: each matched archetype is split into up to
// runtime.GOMAXPROCS contiguous row ranges, so a single large archetype still
// gets real parallelism instead of running on one goroutine. Actions must not
// read or mutate any row other than the one they were given, and must not
// perform structural changes except through the deferral log (which is
// guaranteed here, since the world lock is held for the whole dispatch).
func Job[U any](s *Stream, uniform U, action func(e Entity, cols []ColumnView, uniform U)) error {
	if err := s.refresh(); err != nil {
		return err
	}
	w := s.query.world
	w.Lock()
	defer w.Unlock()

	workers := max(1, runtime.GOMAXPROCS(0))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, m := range s.matches {
		m := m
		for _, r := range rowRanges(m.archetype.Len(), workers) {
			r := r
			g.Go(func() error {
				for row := r[0]; row < r[1]; row++ {
					entity := Entity{world: w, id: m.archetype.entities[row]}
					forEachCombo(m.selectKeys, func(combo []KeyId) {
						action(entity, columnViews(m.archetype, combo, row), uniform)
					})
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// Raw visits every matched archetype once per wildcard combination, handing
// the action a contiguous buffer per selected key (boxed as any; the action
// type-asserts to the concrete slice type it expects) instead of per-row refs.
func Raw[U any](s *Stream, uniform U, action func(rows int, buffers []any, uniform U)) error {
	if err := s.refresh(); err != nil {
		return err
	}
	w := s.query.world
	w.Lock()
	defer w.Unlock()
	for _, m := range s.matches {
		forEachCombo(m.selectKeys, func(combo []KeyId) {
			buffers := make([]any, len(combo))
			for i, id := range combo {
				col, _ := m.archetype.column(id)
				buffers[i] = col.raw()
			}
			action(m.archetype.Len(), buffers, uniform)
		})
	}
	return nil
}

// Blit overwrites every row of the column matching pattern, in every matched
// archetype, with value. It is the bulk-constant counterpart to For/Job and is
// typically used to clear an accumulator column before a reduction pass.
func (s *Stream) Blit(pattern Pattern, value any) error {
	if err := s.refresh(); err != nil {
		return err
	}
	w := s.query.world
	w.Lock()
	defer w.Unlock()
	for _, m := range s.matches {
		for _, id := range m.archetype.matchingKeys(w.catalog, pattern) {
			col, _ := m.archetype.column(id)
			n := col.len()
			for row := 0; row < n; row++ {
				col.set(row, value)
			}
		}
	}
	return nil
}
