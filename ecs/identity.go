package ecs

import "github.com/rotisserie/eris"

// ErrStaleEntity is returned whenever an operation targets an EntityId that has
// since been despawned (or recycled into a different generation), or whose index
// was never issued by this world. An EntityId minted by another world is not
// told apart from a local one: if its index and generation name a live slot
// here, it resolves to that local entity.
var ErrStaleEntity = eris.New("ecs: stale entity identifier")

// slot is one entry in the identity registry: the generation currently assigned to
// this index, whether it is alive, and (if alive) its archetype/row coordinates.
type slot struct {
	generation uint32
	alive      bool
	loc        location
}

// identityRegistry issues and recycles EntityIds, and resolves a live EntityId to
// its current (archetype, row). It holds no knowledge of components; it exists
// purely so that an EntityId remains valid across structural moves, which relocate
// rows but never change the identity registry's view of "where is this entity."
type identityRegistry struct {
	slots []slot
	free  []uint32 // FIFO of recyclable indices
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{}
}

// spawn allocates a fresh EntityId and records its initial location. It never
// fails under normal operation.
func (r *identityRegistry) spawn(loc location) EntityId {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[0]
		r.free = r.free[1:]
	} else {
		index = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	r.slots[index].generation++
	r.slots[index].alive = true
	r.slots[index].loc = loc
	return newEntityId(index, r.slots[index].generation)
}

// isAlive reports whether id currently refers to a live entity in this registry.
func (r *identityRegistry) isAlive(id EntityId) bool {
	idx := id.Index()
	if int(idx) >= len(r.slots) {
		return false
	}
	s := &r.slots[idx]
	return s.alive && s.generation == id.Generation()
}

// locate resolves a live EntityId to its (archetype, row). Returns an error
// wrapping ErrStaleEntity if id is not live.
func (r *identityRegistry) locate(id EntityId) (location, error) {
	if !r.isAlive(id) {
		return location{}, eris.Wrapf(ErrStaleEntity, "locate %s", id)
	}
	return r.slots[id.Index()].loc, nil
}

// relocate updates the recorded (archetype, row) for a live entity, e.g. after a
// structural move or a swap-remove in its former archetype.
func (r *identityRegistry) relocate(id EntityId, loc location) {
	r.slots[id.Index()].loc = loc
}

// despawn marks id's slot dead and queues its index for reuse, so that any
// outstanding copies of id are rejected by isAlive/locate from this point on.
// The slot's generation is bumped when spawn next reuses the index.
func (r *identityRegistry) despawn(id EntityId) error {
	if !r.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "despawn %s", id)
	}
	idx := id.Index()
	r.slots[idx].alive = false
	r.slots[idx].loc = location{}
	r.free = append(r.free, idx)
	return nil
}

// count returns the number of currently live entities.
func (r *identityRegistry) count() int {
	return len(r.slots) - len(r.free)
}
