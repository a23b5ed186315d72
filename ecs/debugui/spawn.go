package debugui

import "github.com/plus3/archon/ecs"

// SpawnDebugUI spawns a single entity carrying one ImguiItem component whose
// Render closure draws every built-in debug widget against world. A running
// ImguiSystem (see NewImguiSystem) invokes every ImguiItem once per frame, so
// the widgets stay live for as long as that entity does.
func SpawnDebugUI(world *ecs.World) {
	entityBrowser := NewEntityBrowserComponent(100)
	inspector := NewComponentInspectorComponent()
	archetypeViewer := NewArchetypeViewerComponent()
	perfStats := NewPerformanceStatsComponent(120)
	queryDebugger := NewQueryDebuggerComponent()
	timer := NewFrameTimer()

	e := ecs.Spawn(world)
	_ = ecs.Add(e, ImguiItem{Render: func() {
		entityBrowser.Render(world)

		if archId := archetypeViewer.Render(world); archId != nil {
			entityBrowser.filterArchetypeId = archId
		}

		inspector.Render(world, entityBrowser.GetSelectedEntity())
		queryDebugger.Render(world)
		perfStats.Render(world, timer.GetDeltaTime())
	}})
}
