// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/archon/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state for the current frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem invokes every ImguiItem's render function once per frame and
// refreshes the shared input-capture snapshot.
type ImguiSystem struct {
	items      *ecs.Stream
	InputState ImguiInputState
}

// NewImguiSystem compiles the ImguiItem stream against world.
func NewImguiSystem(world *ecs.World) (*ImguiSystem, error) {
	stream, err := ecs.NewQuery(world).Select(ecs.PlainPattern[ImguiItem]()).Compile()
	if err != nil {
		return nil, err
	}
	return &ImguiSystem{items: stream}, nil
}

// Execute updates input state and runs every registered ImGui render function.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	i.InputState.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	i.InputState.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	_ = ecs.For(i.items, frame, func(_ ecs.Entity, cols []ecs.ColumnView, _ *ecs.UpdateFrame) {
		item := ecs.At[ImguiItem](cols[0])
		item.Render()
	})
}
