package utils

import "unsafe"

func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// ShortID abbreviates a long identifier for display: first and last
// six characters joined by an ellipsis.
func ShortID(id string) string {
	if len(id) <= 15 {
		return id
	}
	return id[:6] + "..." + id[len(id)-6:]
}
