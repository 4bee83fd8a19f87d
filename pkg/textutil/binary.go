// Package textutil provides byte-level analysis for blob contents:
// binary detection, source-line counting, and bounded extraction.
// All functions are pure and total over their input; none of them
// retains or mutates the buffer it is given.
package textutil

// BinarySniffLength is the maximum number of bytes examined when
// classifying a buffer as binary. Matches the sniff window git uses.
const BinarySniffLength = 4000

// IsBinary reports whether data is most likely binary content.
//
// The heuristic is the one used by mainstream source-control tooling:
// scan at most the first BinarySniffLength bytes, classify as binary if
// a NUL byte is found or if the ratio of non-printable to printable
// bytes is unreasonable for text. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) > BinarySniffLength {
		data = data[:BinarySniffLength]
	}

	printable, nonprintable := 0, 0
	for _, c := range data {
		switch {
		case c == 0:
			return true
		case (c > 0x1F && c != 127) || c == '\b' || c == '\x1b' || c == '\f':
			// Printable characters are those above SPACE excluding DEL,
			// plus BS, ESC and FF.
			printable++
		case isSpace(c):
			// Whitespace counts toward neither side.
		default:
			nonprintable++
		}
	}

	return printable>>7 < nonprintable
}

// isSpace reports whether c is in the C isspace set.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
