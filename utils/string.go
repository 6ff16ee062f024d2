package utils

import (
	"strings"
	"unsafe"
)

// BytesToString converts byte slice to string without copy.
// Only use this function when you fully understand how it works.
func BytesToString(bs []byte) string {
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(bs), len(bs))
}

// StringToBytes converts string to byte slice without copy.
// Note the byte slice is read only and should not be modified after conversion.
// The lifecycle of returned bytes depends on input string.
// Only use this function when you fully understand how it works.
func StringToBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// IsBlank reports whether s is empty or contains only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
