package tui

import "unicode/utf8"

// maxInputLen is the maximum number of runes allowed in filter inputs.
const maxInputLen = 200

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// cycle returns the option after cur, wrapping to "" (no filter) at the end.
func cycle(options []string, cur string) string {
	for i, o := range options {
		if o == cur {
			if i+1 < len(options) {
				return options[i+1]
			}
			return ""
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

// renderInput renders a one-line text field with a block cursor when focused.
func renderInput(label, text, placeholder string, focused bool) string {
	prompt := inputPromptStyle.Render(label + " ")
	if !focused {
		if text == "" {
			return prompt + inputPlaceholderStyle.Render(placeholder)
		}
		return prompt + dimStyle.Render(text)
	}
	return prompt + searchStyle.Render(text) + accentStyle.Render("█")
}
