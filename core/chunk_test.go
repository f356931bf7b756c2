package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitReply_Properties(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"a",
		"hello world",
		strings.Repeat("x", 1900),
		strings.Repeat("x", 1901),
		strings.Repeat("abc", 1000),
		strings.Repeat("héllo wörld 🤖 ", 300),
	}
	limits := []int{1, 2, 7, 100, 1900}

	for _, in := range inputs {
		for _, n := range limits {
			chunks := SplitReply(in, n)

			if got := strings.Join(chunks, ""); got != in {
				t.Fatalf("limit %d: concatenation does not reproduce input", n)
			}
			for i, c := range chunks {
				l := utf8.RuneCountInString(c)
				if l > n {
					t.Fatalf("limit %d: chunk %d has %d runes", n, i, l)
				}
				if i < len(chunks)-1 && l != n {
					t.Fatalf("limit %d: non-final chunk %d has %d runes, want %d", n, i, l, n)
				}
				if c == "" {
					t.Fatalf("limit %d: chunk %d is empty", n, i)
				}
				if !utf8.ValidString(c) {
					t.Fatalf("limit %d: chunk %d split a UTF-8 sequence", n, i)
				}
			}
		}
	}
}

func TestSplitReply_Count(t *testing.T) {
	t.Parallel()

	chunks := SplitReply(strings.Repeat("z", 5000), 1900)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[2]) != 1200 {
		t.Errorf("last chunk length = %d, want 1200", len(chunks[2]))
	}
}

func TestSplitReply_Empty(t *testing.T) {
	t.Parallel()

	chunks := SplitReply("", 1900)
	if len(chunks) != 1 || chunks[0] != "" {
		t.Fatalf("SplitReply(\"\") = %q, want [\"\"]", chunks)
	}
}

func TestSplitReply_NonPositiveLimit(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -5} {
		chunks := SplitReply("abcdef", n)
		if len(chunks) != 1 || chunks[0] != "abcdef" {
			t.Errorf("limit %d: got %q", n, chunks)
		}
	}
}

func TestSplitReply_ExactMultiple(t *testing.T) {
	t.Parallel()

	chunks := SplitReply("abcdef", 3)
	if len(chunks) != 2 || chunks[0] != "abc" || chunks[1] != "def" {
		t.Fatalf("got %q, want [abc def]", chunks)
	}
}
