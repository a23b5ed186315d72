package ecs

// opKind identifies which structural operation a deferredOp represents.
type opKind uint8

const (
	opSpawn opKind = iota
	opDespawn
	opAdd
	opRemove
)

// deferredOp is one entry in the structural deferral log: a structural change
// that was requested while the world lock was held, recorded in call order.
type deferredOp struct {
	kind   opKind
	entity EntityId
	key    Key
	value  any
}

// deferralLog buffers structural operations issued while the world lock is
// held, replaying them in FIFO order on the outermost unlock.
type deferralLog struct {
	ops []deferredOp
}

func (l *deferralLog) push(op deferredOp) {
	l.ops = append(l.ops, op)
}

func (l *deferralLog) take() []deferredOp {
	ops := l.ops
	l.ops = nil
	return ops
}

// drain applies every queued operation in order, dropping any operation whose
// entity was despawned earlier in this same drain (despawn-collapse).
func (w *World) drain() {
	ops := w.log.take()
	if len(ops) == 0 {
		return
	}
	collapsed := make(map[EntityId]bool)
	for _, op := range ops {
		if collapsed[op.entity] {
			w.logger.Debug().
				Stringer("entity", op.entity).
				Msg("deferred op dropped: entity despawned earlier in this drain")
			continue
		}
		switch op.kind {
		case opSpawn:
			w.materializeSpawn(op.entity)
		case opDespawn:
			if err := w.applyDespawn(op.entity); err != nil {
				w.logger.Debug().Err(err).Stringer("entity", op.entity).Msg("deferred despawn failed")
			}
			collapsed[op.entity] = true
		case opAdd:
			if err := w.applyAdd(op.entity, op.key, op.value); err != nil {
				w.logger.Debug().Err(err).Stringer("entity", op.entity).Msg("deferred add failed")
			}
		case opRemove:
			if err := w.applyRemove(op.entity, op.key); err != nil {
				w.logger.Debug().Err(err).Stringer("entity", op.entity).Msg("deferred remove failed")
			}
		}
	}
	// Draining may itself have produced no further deferred ops, since every
	// apply* call above runs unconditionally (lockDepth is already back at 0);
	// nothing here can re-enter drain.
}
