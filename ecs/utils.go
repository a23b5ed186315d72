package ecs

import (
	"reflect"
	"unsafe"
)

// iface mirrors the runtime's two-word interface{} layout, letting us recover the
// pointer held by an any without a type assertion on the hot path.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// typeId returns a stable, comparable identifier for a reflect.Type, using the
// type descriptor's own address. reflect.Type values for the same underlying type
// are always backed by the same *rtype, so this is safe to use as a map/hash key
// for the lifetime of the process.
func typeId(t reflect.Type) uintptr {
	return uintptr((*iface)(unsafe.Pointer(&t)).data)
}

func ptrOf(a any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&a)).data
}
