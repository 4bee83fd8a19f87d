package textutil

import (
	"fmt"

	"golang.org/x/text/encoding/ianaindex"
)

// DecodeText converts raw blob bytes into a UTF-8 string using the
// named IANA character encoding. An empty name returns the bytes
// unconverted, which is correct for content already in UTF-8 or when
// the caller wants the bytes as-is.
//
// Decoding is deliberately separate from Extract: extraction is a pure
// byte operation, and only text callers opt into an encoding.
func DecodeText(data []byte, encoding string) (string, error) {
	if encoding == "" {
		return string(data), nil
	}

	enc, err := ianaindex.IANA.Encoding(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	if enc == nil {
		// The index knows the name but has no decoder for it.
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text as %q: %w", encoding, err)
	}
	return string(decoded), nil
}
