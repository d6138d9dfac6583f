// Package byteutil holds the small byte-slice helpers shared by the
// header and document-extraction parsers: trimming, tag-end scanning,
// and lossless byte-to-string conversion.
package byteutil

import "unicode/utf8"

func isTrimByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// TrimLeft drops leading space, tab, newline, and carriage-return bytes.
func TrimLeft(data []byte) []byte {
	i := 0
	for i < len(data) && isTrimByte(data[i]) {
		i++
	}
	return data[i:]
}

// TrimRight drops trailing space, tab, newline, and carriage-return bytes.
func TrimRight(data []byte) []byte {
	i := len(data)
	for i > 0 && isTrimByte(data[i-1]) {
		i--
	}
	return data[:i]
}

// Trim drops leading and trailing space, tab, newline, and
// carriage-return bytes.
func Trim(data []byte) []byte {
	return TrimRight(TrimLeft(data))
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// FindTagEnd returns the index of the alphanumeric byte immediately
// preceding a '>' in line, or -1 if no such byte exists. Archive-dialect
// tags are of the form <KEY> or </KEY>, and this locates the boundary
// between KEY and the '>' that closes it.
func FindTagEnd(line []byte) int {
	for i, b := range line {
		if b == '>' && i > 0 && isAlnum(line[i-1]) {
			return i - 1
		}
	}
	return -1
}

// BytesToString converts raw bytes to a string, preferring UTF-8 and
// falling back to a byte-for-byte Latin-1 mapping so that no filing,
// however it was encoded, is ever rejected outright.
func BytesToString(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
