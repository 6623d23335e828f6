package protocol

import (
	"unicode/utf16"
	"unicode/utf8"
)

// utf16Len reports the number of UTF-16 code units s would occupy, without
// allocating the transcoded []uint16 (runes outside the BMP count as two
// units, matching what the client actually measures against its string
// length limits).
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r1, _ := utf16.EncodeRune(r); r1 == utf8.RuneError {
			// r encodes as a single UTF-16 code unit.
			n++
		} else {
			// r requires a surrogate pair.
			n += 2
		}
	}
	return n
}
