package textutil

// Sloc returns the number of non-empty source lines in data, assuming
// data is plaintext.
//
// The scan counts each '\n' after first skipping the run of whitespace
// bytes that directly follows it, so a run of blank lines collapses
// into the count of the line before it. A trailing line without a '\n'
// counts once. Empty data yields 0.
//
// Consumers depend on this exact byte scan; do not replace it with a
// semantic blank-line rule.
func Sloc(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	sloc := 0
	for i := 0; i < len(data); {
		c := data[i]
		i++
		if c != '\n' {
			continue
		}
		for i < len(data) && isSpace(data[i]) {
			i++
		}
		sloc++
	}

	// Last line without a trailing '\n'?
	if data[len(data)-1] != '\n' {
		sloc++
	}

	return sloc
}
