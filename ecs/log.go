package ecs

import "github.com/rs/zerolog"

// Logger wraps a zerolog.Logger with a few ECS-shaped summaries, in the style
// of a world-level diagnostic dump rather than a general-purpose logging API.
type Logger struct {
	*zerolog.Logger
}

// NewLogger wraps an existing zerolog.Logger for use with a World.
func NewLogger(l zerolog.Logger) Logger {
	return Logger{&l}
}

// LogWorld emits a summary event: live entity count and archetype count.
func (l Logger) LogWorld(w *World, level zerolog.Level) {
	l.WithLevel(level).
		Int("entities", w.EntityCount()).
		Int("archetypes", len(w.allArchs)).
		Msg("world summary")
}

// LogEntity emits the signature and row of a single entity, or an error event
// if the entity is stale.
func (l Logger) LogEntity(w *World, level zerolog.Level, id EntityId) {
	loc, err := w.identity.locate(id)
	if err != nil {
		l.Err(err).Stringer("entity", id).Msg("log entity: stale identifier")
		return
	}
	arr := zerolog.Arr()
	for _, keyId := range loc.archetype.signature {
		key := w.catalog.Lookup(keyId)
		arr = arr.Str(key.typ.String() + ":" + key.role.String())
	}
	l.WithLevel(level).
		Stringer("entity", id).
		Int("row", loc.row).
		Array("components", arr).
		Msg("entity snapshot")
}
