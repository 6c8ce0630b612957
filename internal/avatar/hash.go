package avatar

import "unicode/utf16"

// Hash folds s into a signed 32-bit value with the rolling
// hash = hash*31 + code recurrence. Codes are UTF-16 units so ids hash
// the same here as in browser clients.
func Hash(s string) int32 {
	var h int32
	for _, code := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(code)
	}
	return h
}

// Index maps s onto [0, size). size must be positive.
func Index(s string, size int) int {
	h := int64(Hash(s))
	if h < 0 {
		h = -h
	}
	return int(h % int64(size))
}
