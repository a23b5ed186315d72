package ecs

// Entity is a handle onto one entity within a World, exposing the structural
// operations a caller issues directly (as opposed to in bulk through a Stream
// action). Every method here goes through the world's lock-aware dispatch, so
// calling these from within a running Stream action defers the change exactly
// like a direct World call would.
type Entity struct {
	world *World
	id    EntityId
}

// Spawn creates a new entity in world and returns a handle to it. The entity
// starts with no components; attach some with Add/AddRelation.
func Spawn(world *World) Entity {
	return Entity{world: world, id: world.spawn()}
}

// Id returns the entity's stable identifier.
func (e Entity) Id() EntityId { return e.id }

// Ref returns a weakly-held EntityRef that survives structural moves.
func (e Entity) Ref() EntityRef { return EntityRef{world: e.world, id: e.id} }

// Alive reports whether the entity is still live in its world.
func (e Entity) Alive() bool { return e.world.identity.isAlive(e.id) }

// Add attaches a Plain component of type T, or overwrites it if already
// present. It returns ErrStaleEntity if the entity has been despawned.
func Add[T any](e Entity, value T) error {
	return e.world.requestAdd(e.id, PlainKey[T](), value)
}

// AddRelation attaches a Relation component of type T targeted at target, or
// overwrites it if this exact (type, target) pair is already present.
func AddRelation[T any](e Entity, target EntityId, value T) error {
	return e.world.requestAdd(e.id, RelationKey[T](target), value)
}

// AddObjectLink attaches an ObjectLink component of type T bound to handle.
func AddObjectLink[T any](e Entity, handle ObjectHandle, value T) error {
	return e.world.requestAdd(e.id, ObjectLinkKey[T](handle), value)
}

// Remove detaches the Plain component of type T. Removing a component the
// entity doesn't carry is a no-op, logged at debug level.
func Remove[T any](e Entity) error {
	return e.world.requestRemove(e.id, PlainKey[T]())
}

// RemoveRelation detaches the Relation component of type T targeted at target.
func RemoveRelation[T any](e Entity, target EntityId) error {
	return e.world.requestRemove(e.id, RelationKey[T](target))
}

// Despawn removes the entity entirely. Despawn is idempotent within the same
// deferral drain: a later operation against an already-despawned entity is
// silently dropped rather than erroring.
func (e Entity) Despawn() error {
	return e.world.requestDespawn(e.id)
}
