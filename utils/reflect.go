package utils

import (
	"reflect"
)

// GetTypeName returns the type of v as printed by %T, "nil" for a nil interface
func GetTypeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
