package textutil

type limitMode int

const (
	limitNone limitMode = iota
	limitLines
	limitBytes
)

// Limit bounds an extraction: unlimited, at most n lines, or at most
// n bytes. The zero value is unlimited.
type Limit struct {
	mode limitMode
	n    int
}

// Unlimited returns a Limit that keeps the whole buffer.
func Unlimited() Limit {
	return Limit{}
}

// MaxLines returns a Limit that keeps the first n lines, including the
// newline that terminates the nth line. A negative n is unlimited.
func MaxLines(n int) Limit {
	return Limit{mode: limitLines, n: n}
}

// MaxBytes returns a Limit that keeps the first n bytes. A negative n
// is unlimited.
func MaxBytes(n int) Limit {
	return Limit{mode: limitBytes, n: n}
}

// Extract returns the prefix of data selected by limit. The result is
// a sub-slice of data, not a copy. Out-of-range bounds are clamped,
// never rejected.
func Extract(data []byte, limit Limit) []byte {
	if limit.n < 0 {
		return data
	}

	switch limit.mode {
	case limitLines:
		lines := 0
		i := 0
		for i < len(data) && lines < limit.n {
			if data[i] == '\n' {
				lines++
			}
			i++
		}
		return data[:i]
	case limitBytes:
		if limit.n < len(data) {
			return data[:limit.n]
		}
		return data
	default:
		return data
	}
}
