package tui

import (
	"strings"
	"testing"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "go dev", "s", "go devs"},
		{"space key", "remote", "space", "remote "},
		{"literal space", "remote", " ", "remote "},
		{"backspace", "hello", "backspace", "hell"},
		{"backspace on empty", "", "backspace", ""},
		{"backspace removes whole rune", "café", "backspace", "caf"},
		{"enter ignored", "hello", "enter", "hello"},
		{"esc ignored", "hello", "esc", "hello"},
		{"ctrl combo ignored", "hello", "ctrl+c", "hello"},
		{"arrow ignored", "hello", "left", "hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.start, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	if got := editRune(atLimit, "b"); got != atLimit {
		t.Errorf("editRune at limit grew to %d runes", len([]rune(got)))
	}
	if got := editRune(atLimit, "backspace"); len(got) != maxInputLen-1 {
		t.Errorf("backspace at limit = %d runes, want %d", len(got), maxInputLen-1)
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hell…"},
		{"empty string", "", 5, ""},
		{"zero width", "hello", 0, ""},
		{"single char over", "ab", 1, "…"},
		{"multi-byte at boundary", "cafés are nice", 5, "café…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncStr(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	result := truncateToHeight(input, 3)
	if strings.Count(result, "\n") > 3 {
		t.Errorf("truncateToHeight kept %d lines, want <= 3", strings.Count(result, "\n"))
	}
	if strings.Contains(result, "line4") {
		t.Errorf("truncateToHeight result should not contain line4: %q", result)
	}
	if got := truncateToHeight(input, 0); got != input {
		t.Errorf("truncateToHeight(s, 0) changed the input")
	}
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b", "c"}
	tests := []struct {
		cur, want string
	}{
		{"", "a"},
		{"a", "b"},
		{"c", ""},
		{"unknown", "a"},
	}
	for _, tt := range tests {
		if got := cycle(opts, tt.cur); got != tt.want {
			t.Errorf("cycle(%q) = %q, want %q", tt.cur, got, tt.want)
		}
	}
	if got := cycle(nil, "x"); got != "" {
		t.Errorf("cycle(nil) = %q, want empty", got)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, height int
		start, end        int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 5, 0, 5},
		{7, 20, 5, 3, 8},
		{19, 20, 5, 15, 20},
		{3, 20, 0, 0, 20},
	}
	for _, tt := range tests {
		s, e := window(tt.cursor, tt.n, tt.height)
		if s != tt.start || e != tt.end {
			t.Errorf("window(%d, %d, %d) = [%d, %d), want [%d, %d)", tt.cursor, tt.n, tt.height, s, e, tt.start, tt.end)
		}
	}
}
