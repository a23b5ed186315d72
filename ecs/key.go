package ecs

import (
	"reflect"
	"sort"

	"github.com/kamstrup/intmap"
)

// Role disambiguates the semantics of a component key. A Plain key identifies an
// ordinary per-entity component. A Relation key is targeted at another entity. An
// ObjectLink key is targeted at a shared heap object, logically replicated across
// every row that bears it.
type Role uint8

const (
	Plain Role = iota
	Relation
	ObjectLink
)

func (r Role) String() string {
	switch r {
	case Plain:
		return "Plain"
	case Relation:
		return "Relation"
	case ObjectLink:
		return "ObjectLink"
	default:
		return "Role(?)"
	}
}

// ObjectHandle is an opaque identifier for a heap object shared across every entity
// whose component key targets it. Callers obtain one from (*World).Link.
type ObjectHandle uint64

// Key is the composite identity under which a component column is stored: a value
// type, a role, and (for Relation/ObjectLink) a target. Two Plain keys of the same
// type are identical; two Relation keys of the same type but different targets are
// distinct and occupy distinct columns.
type Key struct {
	typ    reflect.Type
	role   Role
	entity EntityId     // valid iff role == Relation
	object ObjectHandle // valid iff role == ObjectLink
}

// PlainKey returns the key for an ordinary, untargeted component of type T.
func PlainKey[T any]() Key {
	return Key{typ: reflect.TypeFor[T](), role: Plain}
}

// RelationKey returns the key for a component of type T targeted at entity target.
func RelationKey[T any](target EntityId) Key {
	return Key{typ: reflect.TypeFor[T](), role: Relation, entity: target}
}

// ObjectLinkKey returns the key for a component of type T targeted at the shared
// object handle.
func ObjectLinkKey[T any](handle ObjectHandle) Key {
	return Key{typ: reflect.TypeFor[T](), role: ObjectLink, object: handle}
}

// Type returns the component value type this key carries.
func (k Key) Type() reflect.Type { return k.typ }

// Kind returns the key's role.
func (k Key) Kind() Role { return k.role }

// Target returns the entity target and whether the key is a Relation.
func (k Key) Target() (EntityId, bool) {
	if k.role != Relation {
		return 0, false
	}
	return k.entity, true
}

// Object returns the object handle target and whether the key is an ObjectLink.
func (k Key) Object() (ObjectHandle, bool) {
	if k.role != ObjectLink {
		return 0, false
	}
	return k.object, true
}

func (k Key) less(o Key) bool {
	if k.typ != o.typ {
		return typeId(k.typ) < typeId(o.typ)
	}
	if k.role != o.role {
		return k.role < o.role
	}
	switch k.role {
	case Relation:
		return k.entity < o.entity
	case ObjectLink:
		return k.object < o.object
	default:
		return false
	}
}

func (k Key) equal(o Key) bool {
	return k.typ == o.typ && k.role == o.role && k.entity == o.entity && k.object == o.object
}

// KeyId is a small, dense integer handle for an interned Key, used throughout the
// archetype store and signatures for O(1) equality and hashing.
type KeyId uint32

// KeyCatalog interns (type, role, target) triples into KeyIds. Every World owns
// exactly one catalog; KeyIds are not portable across worlds.
type KeyCatalog struct {
	byId   []Key
	byHash *intmap.Map[uint64, KeyId]
}

func newKeyCatalog() *KeyCatalog {
	return &KeyCatalog{
		byHash: intmap.New[uint64, KeyId](256),
	}
}

// Intern returns the KeyId for key, allocating one if this is the first use of this
// exact (type, role, target) triple.
func (c *KeyCatalog) Intern(key Key) KeyId {
	h := hashKey(key)
	if id, ok := c.byHash.Get(h); ok {
		// hashKey can theoretically collide; re-check equality before trusting the
		// hash, and fall back to a linear scan of every interned key on a mismatch.
		if c.byId[id].equal(key) {
			return id
		}
		for i, k := range c.byId {
			if k.equal(key) {
				return KeyId(i)
			}
		}
	}
	id := KeyId(len(c.byId))
	c.byId = append(c.byId, key)
	c.byHash.Put(h, id)
	return id
}

// Lookup returns the full Key for a previously interned id.
func (c *KeyCatalog) Lookup(id KeyId) Key {
	return c.byId[id]
}

// Kind returns the role of the given key id.
func (c *KeyCatalog) Kind(id KeyId) Role {
	return c.byId[id].role
}

// Describe renders a human-readable label for an interned key id, e.g.
// "Position:Plain" or "Likes:Relation(Entity(3#1))", for inspector UIs.
func (c *KeyCatalog) Describe(id KeyId) string {
	k := c.byId[id]
	switch k.role {
	case Relation:
		return k.typ.String() + ":Relation(" + k.entity.String() + ")"
	case ObjectLink:
		return k.typ.String() + ":ObjectLink"
	default:
		return k.typ.String() + ":Plain"
	}
}

func hashKey(k Key) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	h ^= uint64(uintptr(typeId(k.typ)))
	h *= prime
	h ^= uint64(k.role)
	h *= prime
	h ^= uint64(k.entity)
	h *= prime
	h ^= uint64(k.object)
	h *= prime
	return h
}

// Pattern is a key-matching predicate used in query selections and filters. It may
// match one exact key, any target of a given type within a role, or every key of a
// given type across all roles (AnyPattern). Every constructor fixes the type.
type Pattern struct {
	typ      reflect.Type // nil => match any type
	role     Role
	anyRole  bool // matches Plain, Relation, and ObjectLink alike (used by Any)
	entity   EntityId
	object   ObjectHandle
	wildcard wildcardKind
}

type wildcardKind uint8

const (
	wildcardNone wildcardKind = iota
	wildcardAnyEntity
	wildcardAnyObject
	wildcardAny
)

// PlainPattern matches only the exact Plain key for type T.
func PlainPattern[T any]() Pattern {
	return Pattern{typ: reflect.TypeFor[T](), role: Plain}
}

// AnyPattern matches every key of type T regardless of role or target: Plain,
// every Relation target, and every ObjectLink target.
func AnyPattern[T any]() Pattern {
	return Pattern{typ: reflect.TypeFor[T](), anyRole: true, wildcard: wildcardAny}
}

// AnyEntityPattern matches every Relation key of type T, regardless of target.
func AnyEntityPattern[T any]() Pattern {
	return Pattern{typ: reflect.TypeFor[T](), role: Relation, wildcard: wildcardAnyEntity}
}

// AnyObjectPattern matches every ObjectLink key of type T, regardless of target.
func AnyObjectPattern[T any]() Pattern {
	return Pattern{typ: reflect.TypeFor[T](), role: ObjectLink, wildcard: wildcardAnyObject}
}

// TargetPattern matches the Relation key of type T targeted at exactly target.
func TargetPattern[T any](target EntityId) Pattern {
	return Pattern{typ: reflect.TypeFor[T](), role: Relation, entity: target}
}

// ObjectPattern matches the ObjectLink key of type T targeted at exactly handle.
func ObjectPattern[T any](handle ObjectHandle) Pattern {
	return Pattern{typ: reflect.TypeFor[T](), role: ObjectLink, object: handle}
}

// IsWildcard reports whether the pattern can match more than one concrete key.
func (p Pattern) IsWildcard() bool {
	return p.wildcard != wildcardNone
}

func (p Pattern) matches(catalog *KeyCatalog, id KeyId) bool {
	k := catalog.byId[id]
	if p.typ != nil && k.typ != p.typ {
		return false
	}
	if p.anyRole {
		return true
	}
	if k.role != p.role {
		return false
	}
	switch p.wildcard {
	case wildcardAnyEntity, wildcardAnyObject:
		return true
	default:
		switch p.role {
		case Relation:
			return k.entity == p.entity
		case ObjectLink:
			return k.object == p.object
		default:
			return true
		}
	}
}

// Signature is a canonically ordered set of component key ids. Two signatures with
// the same members in any order are equal after Canonicalize.
type Signature []KeyId

// Canonicalize sorts sig in place by (type_id, role, target) and returns it.
func (c *KeyCatalog) Canonicalize(sig Signature) Signature {
	sort.Slice(sig, func(i, j int) bool {
		return c.byId[sig[i]].less(c.byId[sig[j]])
	})
	return sig
}

// Hash returns a content hash for a canonically ordered signature, used as the
// archetype map key.
func (sig Signature) Hash() uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	for _, id := range sig {
		h ^= uint64(id)
		h *= prime
	}
	return h
}

// Equal reports whether two canonically ordered signatures contain the same keys.
func (sig Signature) Equal(other Signature) bool {
	if len(sig) != len(other) {
		return false
	}
	for i := range sig {
		if sig[i] != other[i] {
			return false
		}
	}
	return true
}

// contains reports whether sig contains id (sig need not be sorted).
func (sig Signature) contains(id KeyId) bool {
	for _, k := range sig {
		if k == id {
			return true
		}
	}
	return false
}

// without returns a copy of sig with id removed.
func (sig Signature) without(id KeyId) Signature {
	out := make(Signature, 0, len(sig))
	for _, k := range sig {
		if k != id {
			out = append(out, k)
		}
	}
	return out
}

// with returns a copy of sig with id appended (caller must canonicalize after).
func (sig Signature) with(id KeyId) Signature {
	out := make(Signature, len(sig), len(sig)+1)
	copy(out, sig)
	return append(out, id)
}
