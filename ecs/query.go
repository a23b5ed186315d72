package ecs

import "github.com/kamstrup/intmap"

// Query is a fluent descriptor of which archetypes a Stream should visit and
// which of their columns should be delivered to the action. Build one with
// NewQuery, narrow it with Select/Has/Not/Any/All, then Compile it into a
// Stream.
type Query struct {
	world   *World
	selects []Pattern
	has     []Pattern
	not     []Pattern
	any     [][]Pattern
}

// NewQuery starts a new query descriptor against world.
func NewQuery(world *World) *Query {
	return &Query{world: world}
}

// Select adds patterns whose matching columns are delivered to the action.
// A select pattern is implicitly also a has constraint: an archetype lacking
// any key matching it is excluded.
func (q *Query) Select(patterns ...Pattern) *Query {
	q.selects = append(q.selects, patterns...)
	return q
}

// Has requires the archetype to carry at least one key matching pattern,
// without delivering that key's column to the action.
func (q *Query) Has(pattern Pattern) *Query {
	q.has = append(q.has, pattern)
	return q
}

// Not excludes any archetype carrying a key matching pattern.
func (q *Query) Not(pattern Pattern) *Query {
	q.not = append(q.not, pattern)
	return q
}

// Any requires at least one of patterns to match the archetype (logical OR
// across the group; independent Any calls are ANDed together).
func (q *Query) Any(patterns ...Pattern) *Query {
	q.any = append(q.any, patterns)
	return q
}

// All is sugar for calling Has once per pattern (logical AND).
func (q *Query) All(patterns ...Pattern) *Query {
	for _, p := range patterns {
		q.has = append(q.has, p)
	}
	return q
}

// Compile resolves the descriptor into a Stream. It statically rejects the
// common aliasing conflict of the same exact (non-wildcard) key selected
// twice; conflicts that only arise through wildcard expansion against a
// specific archetype surface as an error from the first runner dispatch.
func (q *Query) Compile() (*Stream, error) {
	for i := range q.selects {
		for j := i + 1; j < len(q.selects); j++ {
			if !q.selects[i].IsWildcard() && !q.selects[j].IsWildcard() &&
				q.selects[i].typ == q.selects[j].typ &&
				q.selects[i].role == q.selects[j].role &&
				q.selects[i].entity == q.selects[j].entity &&
				q.selects[i].object == q.selects[j].object {
				return nil, ErrAliasingConflict
			}
		}
	}
	return &Stream{query: q}, nil
}

// archetypeMatch records, for one admitted archetype, the concrete KeyIds each
// select pattern resolved to (length 1 for a non-wildcard pattern, length N
// for a wildcard matching N columns in this particular archetype).
type archetypeMatch struct {
	archetype  *Archetype
	selectKeys [][]KeyId
}

// matchingKeys returns every KeyId in a's signature that pattern matches.
func (a *Archetype) matchingKeys(catalog *KeyCatalog, p Pattern) []KeyId {
	var out []KeyId
	for _, id := range a.signature {
		if p.matches(catalog, id) {
			out = append(out, id)
		}
	}
	return out
}

// admits tests whether archetype a satisfies every constraint in q, and if so
// returns the resolved select-key lists.
func (q *Query) admits(a *Archetype) ([][]KeyId, error) {
	selectKeys := make([][]KeyId, len(q.selects))
	seen := intmap.New[KeyId, bool](8)
	for i, p := range q.selects {
		ks := a.matchingKeys(q.world.catalog, p)
		if len(ks) == 0 {
			return nil, nil
		}
		for _, id := range ks {
			if _, ok := seen.Get(id); ok {
				return nil, ErrAliasingConflict
			}
			seen.Put(id, true)
		}
		selectKeys[i] = ks
	}
	for _, p := range q.has {
		if len(a.matchingKeys(q.world.catalog, p)) == 0 {
			return nil, nil
		}
	}
	for _, p := range q.not {
		if len(a.matchingKeys(q.world.catalog, p)) > 0 {
			return nil, nil
		}
	}
	for _, group := range q.any {
		ok := false
		for _, p := range group {
			if len(a.matchingKeys(q.world.catalog, p)) > 0 {
				ok = true
				break
			}
		}
		if !ok {
			return nil, nil
		}
	}
	return selectKeys, nil
}
