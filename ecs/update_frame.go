package ecs

// UpdateFrame is the per-tick context handed to every registered System. It
// carries the frame's delta time and the World the system operates on; a
// system threads DeltaTime through its streams as the uniform parameter.
type UpdateFrame struct {
	DeltaTime float64
	World     *World
}

func newUpdateFrame(dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{DeltaTime: dt, World: world}
}
