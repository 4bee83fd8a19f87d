package textutil

import (
	"bytes"
	"testing"
)

func TestSloc(t *testing.T) {
	tests := []struct {
		name string
		Data string
		Want int
	}{
		{"empty", "", 0},
		{"terminated lines", "a\nb\nc\n", 3},
		{"unterminated tail", "a\nb\nc", 3},
		{"only newlines", "\n\n\n", 1},
		{"blank run collapses", "a\n\n\nb\n", 2},
		{"whitespace only", "   ", 1},
		{"whitespace then text", " \n x", 2},
		{"single line", "hello", 1},
		{"trailing blank lines", "a\n \n\t\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sloc([]byte(tt.Data)); got != tt.Want {
				t.Errorf("Sloc(%q) = %d, want %d", tt.Data, got, tt.Want)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary(nil) {
		t.Error("empty data should not be binary")
	}
	if IsBinary([]byte("hello world")) {
		t.Error("plain text should not be binary")
	}
	if !IsBinary([]byte("a\x00b")) {
		t.Error("data with a NUL byte should be binary")
	}

	// Mostly control characters, no NUL.
	junk := bytes.Repeat([]byte{0x01, 0x02}, 100)
	if !IsBinary(junk) {
		t.Error("control-character data should be binary")
	}

	// Only the first BinarySniffLength bytes are examined.
	late := append(bytes.Repeat([]byte("a"), BinarySniffLength), 0x00)
	if IsBinary(late) {
		t.Error("NUL past the sniff window should not mark data binary")
	}
}

func TestExtractLines(t *testing.T) {
	buf := []byte("x\ny\nz\n")

	if got := Extract(buf, MaxLines(2)); string(got) != "x\ny\n" {
		t.Errorf("MaxLines(2) = %q, want %q", got, "x\ny\n")
	}
	if got := Extract(buf, MaxLines(0)); len(got) != 0 {
		t.Errorf("MaxLines(0) = %q, want empty", got)
	}
	if got := Extract(buf, MaxLines(10)); !bytes.Equal(got, buf) {
		t.Errorf("MaxLines beyond content = %q, want full buffer", got)
	}
	if got := Extract(buf, MaxLines(-1)); !bytes.Equal(got, buf) {
		t.Errorf("negative MaxLines = %q, want full buffer", got)
	}

	// Unterminated final line is kept when the limit is not reached.
	partial := []byte("a\nb")
	if got := Extract(partial, MaxLines(5)); !bytes.Equal(got, partial) {
		t.Errorf("MaxLines on unterminated tail = %q, want %q", got, partial)
	}
}

func TestExtractBytes(t *testing.T) {
	buf := []byte("abcdef")

	if got := Extract(buf, MaxBytes(3)); string(got) != "abc" {
		t.Errorf("MaxBytes(3) = %q, want %q", got, "abc")
	}
	if got := Extract(buf, MaxBytes(0)); len(got) != 0 {
		t.Errorf("MaxBytes(0) = %q, want empty", got)
	}
	if got := Extract(buf, MaxBytes(100)); !bytes.Equal(got, buf) {
		t.Errorf("MaxBytes beyond length = %q, want full buffer", got)
	}
	if got := Extract(buf, MaxBytes(-1)); !bytes.Equal(got, buf) {
		t.Errorf("negative MaxBytes = %q, want full buffer", got)
	}
}

func TestExtractUnlimited(t *testing.T) {
	buf := []byte("line one\nline two")
	if got := Extract(buf, Unlimited()); !bytes.Equal(got, buf) {
		t.Errorf("Unlimited = %q, want the input unchanged", got)
	}

	// No hidden state: repeated calls agree.
	first := Extract(buf, MaxLines(1))
	second := Extract(buf, MaxLines(1))
	if !bytes.Equal(first, second) {
		t.Error("repeated extraction returned different results")
	}
}

func TestDecodeText(t *testing.T) {
	if got, err := DecodeText([]byte("plain"), ""); err != nil || got != "plain" {
		t.Errorf("empty encoding = %q, %v; want passthrough", got, err)
	}

	// 0xE9 is 'é' in Latin-1.
	got, err := DecodeText([]byte{0xE9}, "ISO-8859-1")
	if err != nil {
		t.Fatalf("failed to decode ISO-8859-1: %v", err)
	}
	if got != "é" {
		t.Errorf("ISO-8859-1 decode = %q, want %q", got, "é")
	}

	if _, err := DecodeText([]byte("x"), "no-such-encoding"); err == nil {
		t.Error("unknown encoding should fail")
	}
}
