package utils

// Truncate shortens s to at most maxRunes runes, appending an ellipsis when
// anything was cut. Counting runes keeps multi-byte scripts intact.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
