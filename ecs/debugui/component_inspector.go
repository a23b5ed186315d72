package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/archon/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

func (ci *ComponentInspectorComponent) Render(world *ecs.World, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == ecs.NilEntity {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	archetype, row, err := world.Locate(ci.selectedEntityId)
	if err != nil {
		imgui.Text(fmt.Sprintf("Entity %s not found (%v)", ci.selectedEntityId, err))
		imgui.End()
		return
	}

	catalog := world.Catalog()
	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntityId))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X  row %d", archetype.Id(), row))
	imgui.Separator()

	for _, keyId := range archetype.Signature() {
		key := catalog.Lookup(keyId)
		if key.Kind() != ecs.Plain {
			continue
		}
		compType := key.Type()
		component := world.GetComponent(ci.selectedEntityId, compType)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			ci.renderComponent(component, compType, world, ci.selectedEntityId)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(component any, compType reflect.Type, world *ecs.World, entityId ecs.EntityId) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	fields := globalReflectionCache.GetFields(compType)

	for _, field := range fields {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}

		ci.renderField(field.Name, fieldVal, field, world, entityId, compType)
	}
}

func (ci *ComponentInspectorComponent) renderField(name string, val reflect.Value, field FieldInfo, world *ecs.World, entityId ecs.EntityId, compType reflect.Type) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			ci.updateIntField(world, entityId, compType, field.Index, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			if v >= 0 {
				ci.updateUintField(world, entityId, compType, field.Index, uint64(v))
			}
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			ci.updateFloatField(world, entityId, compType, field.Index, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			ci.updateBoolField(world, entityId, compType, field.Index, v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) {
			ci.updateStringField(world, entityId, compType, field.Index, v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			nestedFields := globalReflectionCache.GetFields(val.Type())
			for _, nf := range nestedFields {
				nestedVal := val.Field(nf.Index)
				if nf.IsPointer && !nestedVal.IsNil() {
					nestedVal = nestedVal.Elem()
				}
				ci.renderField(nf.Name, nestedVal, nf, world, entityId, compType)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

func (ci *ComponentInspectorComponent) settableField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int) reflect.Value {
	component := world.GetComponent(entityId, compType)
	if component == nil {
		return reflect.Value{}
	}
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	return val.Field(fieldIdx)
}

func (ci *ComponentInspectorComponent) updateIntField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int, value int64) {
	if field := ci.settableField(world, entityId, compType, fieldIdx); field.CanSet() {
		field.SetInt(value)
	}
}

func (ci *ComponentInspectorComponent) updateUintField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int, value uint64) {
	if field := ci.settableField(world, entityId, compType, fieldIdx); field.CanSet() {
		field.SetUint(value)
	}
}

func (ci *ComponentInspectorComponent) updateFloatField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int, value float64) {
	if field := ci.settableField(world, entityId, compType, fieldIdx); field.CanSet() {
		field.SetFloat(value)
	}
}

func (ci *ComponentInspectorComponent) updateBoolField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int, value bool) {
	if field := ci.settableField(world, entityId, compType, fieldIdx); field.CanSet() {
		field.SetBool(value)
	}
}

func (ci *ComponentInspectorComponent) updateStringField(world *ecs.World, entityId ecs.EntityId, compType reflect.Type, fieldIdx int, value string) {
	if field := ci.settableField(world, entityId, compType, fieldIdx); field.CanSet() {
		field.SetString(value)
	}
}
