package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/archon/internal/assert"
)

// World owns every entity, component column, and archetype in one ECS instance.
// A World is not safe for concurrent use except through the Stream runners,
// which serialize structural changes behind the world lock.
type World struct {
	catalog  *KeyCatalog
	identity *identityRegistry

	empty     *Archetype
	buckets   *intmap.Map[uint64, []*Archetype]
	allArchs  []*Archetype // append-only, scanned incrementally by compiled queries

	lockDepth int
	log       deferralLog

	nextHandle uint64

	logger zerolog.Logger
}

// Open creates a new, empty World.
func Open() *World {
	w := &World{
		catalog:  newKeyCatalog(),
		identity: newIdentityRegistry(),
		buckets:  intmap.New[uint64, []*Archetype](64),
		logger:   zerolog.Nop(),
	}
	w.empty = w.getOrCreateArchetype(Signature{})
	return w
}

// Close releases the world's resources. After Close, the World must not be used.
func (w *World) Close() {
	*w = World{}
}

// SetLogger installs a structured logger used for debug-level diagnostics (missing
// component no-ops, deferred-operation collapses). The zero World logs nothing.
func (w *World) SetLogger(l zerolog.Logger) {
	w.logger = l
}

// Catalog exposes the world's key catalog, e.g. for debugui inspection.
func (w *World) Catalog() *KeyCatalog { return w.catalog }

// Link mints a fresh ObjectHandle. The caller attaches a shared value to it by
// adding an ObjectLinkKey[T](handle) component to one or more entities; mutation
// of that value across every row it's attached to is the caller's responsibility
// to synchronize (see Raw/Blit runners).
func (w *World) Link() ObjectHandle {
	w.nextHandle++
	return ObjectHandle(w.nextHandle)
}

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int { return w.identity.count() }

// Locate resolves a live EntityId to its archetype and row. It exists for
// inspection tooling (debugui); hot-path code should use a compiled Stream.
func (w *World) Locate(id EntityId) (*Archetype, int, error) {
	loc, err := w.identity.locate(id)
	if err != nil {
		return nil, 0, err
	}
	return loc.archetype, loc.row, nil
}

// GetComponent returns a settable pointer to entity id's Plain component of
// type t, or nil if the entity doesn't carry one. It exists for reflection-
// driven inspection tooling; hot-path code should use At[T] on a ColumnView
// from a compiled Stream instead.
func (w *World) GetComponent(id EntityId, t reflect.Type) any {
	loc, err := w.identity.locate(id)
	if err != nil {
		return nil
	}
	for _, keyId := range loc.archetype.signature {
		key := w.catalog.Lookup(keyId)
		if key.typ == t && key.role == Plain {
			col, _ := loc.archetype.column(keyId)
			return reflect.NewAt(t, col.ptr(loc.row)).Interface()
		}
	}
	return nil
}

// getOrCreateArchetype returns the archetype for sig (which must already be
// canonicalized), creating and registering it on first use.
func (w *World) getOrCreateArchetype(sig Signature) *Archetype {
	h := sig.Hash()
	if bucket, ok := w.buckets.Get(h); ok {
		for _, a := range bucket {
			if a.signature.Equal(sig) {
				return a
			}
		}
	}
	a := newArchetype(w.catalog, sig, uint32(len(w.allArchs)))
	bucket, _ := w.buckets.Get(h)
	w.buckets.Put(h, append(bucket, a))
	w.allArchs = append(w.allArchs, a)
	return a
}

// archetypeSnapshot returns the current append-only archetype list, for a query
// to scan the suffix it hasn't seen yet.
func (w *World) archetypeSnapshot() []*Archetype { return w.allArchs }

// Archetypes returns every archetype created so far, in creation order. It is
// intended for inspection tooling (debugui), not for hot-path iteration —
// use a compiled Query/Stream for that.
func (w *World) Archetypes() []*Archetype { return w.allArchs }

// --- structural operation dispatch: immediate if unlocked, deferred otherwise ---

func (w *World) spawn() EntityId {
	id := w.identity.spawn(location{})
	if w.lockDepth == 0 {
		w.materializeSpawn(id)
	} else {
		w.log.push(deferredOp{kind: opSpawn, entity: id})
	}
	return id
}

func (w *World) requestDespawn(id EntityId) error {
	if w.lockDepth == 0 {
		return w.applyDespawn(id)
	}
	if !w.identity.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "despawn %s", id)
	}
	w.log.push(deferredOp{kind: opDespawn, entity: id})
	return nil
}

func (w *World) requestAdd(id EntityId, key Key, value any) error {
	if w.lockDepth == 0 {
		return w.applyAdd(id, key, value)
	}
	if !w.identity.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "add %s", id)
	}
	w.log.push(deferredOp{kind: opAdd, entity: id, key: key, value: value})
	return nil
}

func (w *World) requestRemove(id EntityId, key Key) error {
	if w.lockDepth == 0 {
		return w.applyRemove(id, key)
	}
	if !w.identity.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "remove %s", id)
	}
	w.log.push(deferredOp{kind: opRemove, entity: id, key: key})
	return nil
}

// --- immediate implementations, shared between the unlocked path and drain ---

func (w *World) materializeSpawn(id EntityId) {
	row := w.empty.appendEntity(id)
	w.identity.relocate(id, location{archetype: w.empty, row: row})
}

func (w *World) applyDespawn(id EntityId) error {
	loc, err := w.identity.locate(id)
	if err != nil {
		return err
	}
	assert.That(loc.archetype != nil, "applyDespawn: entity has no archetype")
	if moved, ok := loc.archetype.swapRemove(loc.row); ok {
		w.identity.relocate(moved, loc)
	}
	return w.identity.despawn(id)
}

func (w *World) applyAdd(id EntityId, key Key, value any) error {
	loc, err := w.identity.locate(id)
	if err != nil {
		return err
	}
	assert.That(loc.archetype != nil, "applyAdd: entity has no archetype")

	keyId := w.catalog.Intern(key)
	from := loc.archetype

	if from.has(keyId) {
		col, _ := from.column(keyId)
		col.set(loc.row, value)
		return nil
	}

	to, ok := from.addEdge.Get(keyId)
	if !ok {
		newSig := w.catalog.Canonicalize(from.signature.with(keyId))
		to = w.getOrCreateArchetype(newSig)
		from.addEdge.Put(keyId, to)
		to.removeEdge.Put(keyId, from)
	}

	w.moveRow(id, loc, to, keyId, value)
	return nil
}

func (w *World) applyRemove(id EntityId, key Key) error {
	loc, err := w.identity.locate(id)
	if err != nil {
		return err
	}
	assert.That(loc.archetype != nil, "applyRemove: entity has no archetype")

	keyId := w.catalog.Intern(key)
	from := loc.archetype

	if !from.has(keyId) {
		w.logger.Debug().Stringer("entity", id).Str("key", key.typ.String()).Msg("remove: component not present, dropping")
		return nil
	}

	to, ok := from.removeEdge.Get(keyId)
	if !ok {
		newSig := from.signature.without(keyId)
		to = w.getOrCreateArchetype(newSig)
		from.removeEdge.Put(keyId, to)
		to.addEdge.Put(keyId, from)
	}

	w.moveRow(id, loc, to, 0, nil)
	return nil
}

// moveRow relocates id from its current archetype to dst, copying every shared
// column and, if addedKey is non-zero-valued (signaled by addedValue != nil),
// setting the newly added key's value in dst. It patches the identity registry
// for both id and whichever entity got swapped into id's old row.
func (w *World) moveRow(id EntityId, loc location, dst *Archetype, addedKey KeyId, addedValue any) {
	newRow := dst.appendEntity(id)
	copyRow(loc.archetype, loc.row, dst, newRow)
	if addedValue != nil {
		col, ok := dst.column(addedKey)
		assert.That(ok, "moveRow: destination archetype missing newly added key")
		col.set(newRow, addedValue)
	}

	if moved, ok := loc.archetype.swapRemove(loc.row); ok {
		w.identity.relocate(moved, loc)
	}
	w.identity.relocate(id, location{archetype: dst, row: newRow})
}

// aliasing / entity errors

// ErrAliasingConflict is returned when two select patterns of a query resolve
// to the same column, which would hand the action two mutable views of one
// value: by Compile for a literal duplicate, and by the first runner dispatch
// when the overlap only arises through wildcard expansion in an archetype.
var ErrAliasingConflict = eris.New("ecs: aliasing conflict between selected columns")
