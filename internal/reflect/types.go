package reflect

import (
	"fmt"
	"reflect"
	"sync"
)

var typeKeyCache sync.Map

// TypeKey returns the binding key for T. Keys are stable strings derived
// from the fully qualified type name, so two graphs computing a key for
// the same type always agree.
func TypeKey[T any]() string {
	return typeKeyFromReflect(RawType[T]())
}

// RawType returns the reflect.Type for T, including interface types for
// which a zero value carries no type information.
func RawType[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return t
}

func typeKeyFromReflect(t reflect.Type) string {
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]", t.Len()) + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
}

// TypeKeyOf returns the binding key for a runtime value.
func TypeKeyOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeKeyFromReflect(reflect.TypeOf(v))
}

// TypeKeyFor returns the binding key for an already known reflect.Type.
func TypeKeyFor(t reflect.Type) string {
	return typeKeyFromReflect(t)
}

// TypeKeyNamed returns the qualified binding key for T under a name.
func TypeKeyNamed[T any](name string) string {
	return TypeKey[T]() + "#" + name
}

func TypeName[T any]() string {
	return RawType[T]().String()
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
