package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/archon/ecs"
)

type QueryDebuggerCache struct {
	componentTypes     []string
	lastArchetypeCount int
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedComponentTypes: make(map[string]bool),
		cache: &QueryDebuggerCache{
			lastArchetypeCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(world)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, compType := range qd.cache.componentTypes {
		selected := qd.selectedComponentTypes[compType]
		if imgui.Checkbox(compType, &selected) {
			if selected {
				qd.selectedComponentTypes[compType] = true
			} else {
				delete(qd.selectedComponentTypes, compType)
			}
		}
	}

	imgui.Separator()

	if len(qd.selectedComponentTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matchingArchetypes := qd.findMatchingArchetypes(world)
	totalEntities := 0
	for _, arch := range matchingArchetypes {
		totalEntities += arch.Len()
	}

	imgui.Text(fmt.Sprintf("Matching Archetypes: %d", len(matchingArchetypes)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", totalEntities))

	if imgui.TreeNodeStr("Archetype Details") {
		catalog := world.Catalog()
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryArchTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype ID")
			imgui.TableSetupColumn("All Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range matchingArchetypes {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("0x%X", arch.Id()))

				imgui.TableSetColumnIndex(1)
				sig := arch.Signature()
				componentNames := make([]string, len(sig))
				for i, id := range sig {
					componentNames[i] = catalog.Describe(id)
				}
				imgui.Text(fmt.Sprintf("%v", componentNames))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", arch.Len()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(world *ecs.World) {
	currentArchetypeCount := len(world.Archetypes())
	if qd.cache.lastArchetypeCount != currentArchetypeCount {
		qd.cache.componentTypes = nil
		qd.cache.lastArchetypeCount = currentArchetypeCount
	}

	if qd.cache.componentTypes == nil {
		qd.rebuildCache(world)
	}
}

func (qd *QueryDebuggerComponent) rebuildCache(world *ecs.World) {
	catalog := world.Catalog()
	typeMap := make(map[string]bool)

	for _, archetype := range world.Archetypes() {
		for _, id := range archetype.Signature() {
			if catalog.Lookup(id).Kind() != ecs.Plain {
				continue
			}
			typeMap[catalog.Describe(id)] = true
		}
	}

	qd.cache.componentTypes = make([]string, 0, len(typeMap))
	for typeName := range typeMap {
		qd.cache.componentTypes = append(qd.cache.componentTypes, typeName)
	}

	sort.Strings(qd.cache.componentTypes)
}

// findMatchingArchetypes returns every archetype whose Plain components cover
// all of qd's selected component descriptions.
func (qd *QueryDebuggerComponent) findMatchingArchetypes(world *ecs.World) []*ecs.Archetype {
	catalog := world.Catalog()
	matching := make([]*ecs.Archetype, 0)

	for _, archetype := range world.Archetypes() {
		described := make(map[string]bool)
		for _, id := range archetype.Signature() {
			if catalog.Lookup(id).Kind() != ecs.Plain {
				continue
			}
			described[catalog.Describe(id)] = true
		}

		hasAll := true
		for required := range qd.selectedComponentTypes {
			if !described[required] {
				hasAll = false
				break
			}
		}
		if hasAll {
			matching = append(matching, archetype)
		}
	}

	return matching
}
