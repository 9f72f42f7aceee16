package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShort(t *testing.T) {
	if got := SplitText("  short text ", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("unexpected chunks: %q", got)
	}
	if got := SplitText("   ", 100); len(got) != 0 {
		t.Errorf("expected no chunks for blank text, got %q", got)
	}
}

func TestSplitTextAtSentenceBoundary(t *testing.T) {
	sentence := strings.Repeat("a", 299) + "."
	text := strings.Repeat(sentence, 5) // 1500 runes

	chunks := SplitText(text, 1000)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("expected first chunk to end at a sentence, got ...%q", chunks[0][len(chunks[0])-5:])
	}
	if utf8.RuneCountInString(chunks[0]) != 900 {
		t.Errorf("expected first chunk of 900 runes, got %d", utf8.RuneCountInString(chunks[0]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not reassemble into the original text")
	}
}

func TestSplitTextHardCut(t *testing.T) {
	text := strings.Repeat("字", 2500)

	chunks := SplitText(text, 1000)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 1000 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}

func TestSplitTextPrefersIdeographicStop(t *testing.T) {
	// Both terminators fall in the window; the ideographic one is checked first.
	text := strings.Repeat("字", 850) + "。" + strings.Repeat("字", 100) + "." + strings.Repeat("字", 500)

	chunks := SplitText(text, 1000)
	if !strings.HasSuffix(chunks[0], "。") {
		t.Errorf("expected first chunk to end with 。")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  many   spaces\tand\nnewlines ", "many spaces and newlines"},
		{strings.Repeat("長", 150), strings.Repeat("長", 100)},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
