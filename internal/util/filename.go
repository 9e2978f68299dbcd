package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// TitleFromFileName turns an upload name like "hand_hygiene-policy_v2.pdf" into
// "Hand Hygiene Policy V2". Returns "" when nothing usable is left.
func TitleFromFileName(fileName string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
