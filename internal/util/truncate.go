package util

import "unicode/utf8"

// TruncationMarker is appended to text cut down by TruncateText.
const TruncationMarker = "...[truncated]"

// TruncateText keeps the first max characters (runes) of text and appends TruncationMarker.
// Text of at most max characters is returned unchanged.
func TruncateText(text string, max int) string {
	if max < 0 {
		max = 0
	}
	// Byte length bounds rune count from above.
	if len(text) <= max || utf8.RuneCountInString(text) <= max {
		return text
	}

	count := 0
	for i := range text {
		if count == max {
			return text[:i] + TruncationMarker
		}
		count++
	}
	return text
}
