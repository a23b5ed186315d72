package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"

	"github.com/plus3/archon/internal/assert"
)

// Archetype is a dense, structure-of-arrays store for every live entity sharing
// one exact Signature. Every column in an archetype has the same length as
// entities; removal is always swap-with-last so no column ever develops a hole.
type Archetype struct {
	id        uint32
	signature Signature
	keyIndex  map[KeyId]int // KeyId -> position in columns/signature
	columns   []column
	entities  []EntityId

	// addEdge/removeEdge memoize the neighbour archetype reached by adding or
	// removing a single key, so repeated structural changes (Add/Remove, Spawn
	// with a fixed component set) amortize to O(1) after the first transition.
	addEdge    *intmap.Map[KeyId, *Archetype]
	removeEdge *intmap.Map[KeyId, *Archetype]
}

// newArchetype builds an empty archetype for sig, allocating one column per key.
// id is a dense, creation-order index used only for debug/inspection display.
func newArchetype(catalog *KeyCatalog, sig Signature, id uint32) *Archetype {
	a := &Archetype{
		id:         id,
		signature:  sig,
		keyIndex:   make(map[KeyId]int, len(sig)),
		columns:    make([]column, len(sig)),
		addEdge:    intmap.New[KeyId, *Archetype](8),
		removeEdge: intmap.New[KeyId, *Archetype](8),
	}
	for i, id := range sig {
		key := catalog.Lookup(id)
		a.keyIndex[id] = i
		if key.role == ObjectLink {
			a.columns[i] = &objectLinkColumn{}
		} else {
			a.columns[i] = columnFactoryFor(key.typ)()
		}
	}
	return a
}

// Len returns the number of entities currently stored in this archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// Id returns the archetype's creation-order index, stable for its lifetime.
func (a *Archetype) Id() uint32 { return a.id }

// Signature returns the archetype's component signature.
func (a *Archetype) Signature() Signature { return a.signature }

// Iter yields every live entity in this archetype, in row order.
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, e := range a.entities {
			if !yield(e) {
				return
			}
		}
	}
}

// has reports whether the archetype carries the given key id.
func (a *Archetype) has(id KeyId) bool {
	_, ok := a.keyIndex[id]
	return ok
}

// column returns the column backing id, or (nil, false) if this archetype
// doesn't carry that key.
func (a *Archetype) column(id KeyId) (column, bool) {
	i, ok := a.keyIndex[id]
	if !ok {
		return nil, false
	}
	return a.columns[i], true
}

// appendEntity grows every column by one zero-valued row and appends id to the
// entities list, returning the new row index.
func (a *Archetype) appendEntity(id EntityId) int {
	for _, col := range a.columns {
		col.grow()
		assert.That(col.len() == len(a.entities)+1, "archetype: column length desynced from entity count on grow")
	}
	a.entities = append(a.entities, id)
	return len(a.entities) - 1
}

// swapRemove deletes the entity at row, swapping the last row into its place.
// It reports the entity that occupied the last row (and now occupies row), or
// ok=false if row was already the last row and nothing moved.
func (a *Archetype) swapRemove(row int) (moved EntityId, ok bool) {
	last := len(a.entities) - 1
	assert.That(row <= last && row >= 0, "archetype: swapRemove row out of range")

	for _, col := range a.columns {
		col.swapRemove(row)
		assert.That(col.len() == last, "archetype: column length desynced from entity count on swapRemove")
	}

	a.entities[row] = a.entities[last]
	a.entities = a.entities[:last]

	if row == last {
		return NilEntity, false
	}
	return a.entities[row], true
}

// copyRow copies every key shared between src and dst from src's row srcRow
// into dst's row dstRow. Keys present only in one side are left at their zero
// value in the destination; the caller (World.move) fills keys that only the
// destination carries.
func copyRow(src *Archetype, srcRow int, dst *Archetype, dstRow int) {
	for _, id := range src.signature {
		dstCol, ok := dst.column(id)
		if !ok {
			continue
		}
		srcCol, _ := src.column(id)
		dstCol.set(dstRow, srcCol.get(srcRow))
	}
}
