package ecs

// EntityId is a stable entity identifier: a dense index (reused after despawn) and
// a generation (incremented on each reuse). It is packed into a single uint64 so it
// can be used directly as an intmap key and compared/hashed cheaply.
type EntityId uint64

// NilEntity is never returned by spawn and never resolves to a live entity.
const NilEntity EntityId = 0

// newEntityId packs an index and generation into an EntityId. generation is never
// zero for a spawned entity, so NilEntity (index 0, generation 0) is reserved.
func newEntityId(index, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index returns the dense slot index of the entity.
func (e EntityId) Index() uint32 { return uint32(e) }

// Generation returns the entity's generation counter.
func (e EntityId) Generation() uint32 { return uint32(e >> 32) }

func (e EntityId) String() string {
	if e == NilEntity {
		return "Entity(nil)"
	}
	return "Entity(" + uitoa(uint64(e.Index())) + "#" + uitoa(uint64(e.Generation())) + ")"
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// location is the identity registry's record of where a live entity's row lives.
type location struct {
	archetype *Archetype
	row       int
}

// EntityRef is a stable, weakly-held reference to an entity, surviving structural
// moves without needing to be updated by the caller: it resolves the entity's
// current archetype and row lazily, through the identity registry, on each use.
type EntityRef struct {
	world *World
	id    EntityId
}

// Id returns the referenced entity's identifier.
func (r EntityRef) Id() EntityId { return r.id }

// Alive reports whether the referenced entity is still live.
func (r EntityRef) Alive() bool {
	return r.world.identity.isAlive(r.id)
}
