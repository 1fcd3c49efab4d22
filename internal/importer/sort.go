package importer

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// compareValues orders two field values of the same type. Numbers compare
// numerically, strings ordinally, false before true and times
// chronologically. Nil pointers sort first. Other kinds compare by their
// printed form.
func compareValues(a, b any) int {
	if t1, ok := a.(time.Time); ok {
		if t2, ok := b.(time.Time); ok {
			return t1.Compare(t2)
		}
	}

	va, vb := deref(reflect.ValueOf(a)), deref(reflect.ValueOf(b))

	switch {
	case !va.IsValid() && !vb.IsValid():
		return 0
	case !va.IsValid():
		return -1
	case !vb.IsValid():
		return 1
	case va.Kind() != vb.Kind():
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}

	switch va.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(va.Int(), vb.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(va.Uint(), vb.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(va.Float(), vb.Float())
	case reflect.String:
		return strings.Compare(va.String(), vb.String())
	case reflect.Bool:
		return cmp.Compare(boolRank(va.Bool()), boolRank(vb.Bool()))
	}

	if va.CanInterface() && vb.CanInterface() {
		if t1, ok := va.Interface().(time.Time); ok {
			if t2, ok := vb.Interface().(time.Time); ok {
				return t1.Compare(t2)
			}
		}
	}

	return strings.Compare(fmt.Sprint(va), fmt.Sprint(vb))
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func boolRank(b bool) int {
	if b {
		return 1
	}

	return 0
}
