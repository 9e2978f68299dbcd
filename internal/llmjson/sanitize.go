// Package llmjson cleans raw model output down to the JSON the model was asked for.
package llmjson

import (
	"strings"

	"compliance-coursegen/internal/domain"
)

const fence = "```"

// Sanitize trims raw model text and strips a leading reasoning block and a surrounding
// markdown code fence. Clean minified JSON passes through unchanged.
func Sanitize(raw string) (string, error) {
	cleaned := stripFences(stripThink(strings.TrimSpace(raw)))
	if cleaned == "" {
		return "", domain.NewSanitizationError("empty response after sanitization")
	}
	return cleaned, nil
}

// SanitizeLoose does what Sanitize does and then slices from the first '{' to the last '}'.
func SanitizeLoose(raw string) (string, error) {
	cleaned := stripFences(stripThink(strings.TrimSpace(raw)))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", domain.NewSanitizationError("no JSON block found")
	}
	return cleaned[start : end+1], nil
}

// stripThink drops a <think> block only when it opens the response. Tags further in
// may belong to string values such as module HTML.
func stripThink(s string) string {
	if !strings.HasPrefix(s, "<think>") {
		return s
	}
	end := strings.Index(s, "</think>")
	if end == -1 {
		return s
	}
	return strings.TrimSpace(s[end+len("</think>"):])
}

// stripFences removes a leading ``` or ```json line and a trailing ```.
func stripFences(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	} else {
		// Single-line fenced output: ```json{...}```
		s = strings.TrimPrefix(s, fence)
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}
