package validation

import (
	"strings"

	"compliance-coursegen/internal/domain"
)

const minObjectives = 3

var metadataFields = map[string]check{
	"title":       nonEmptyString,
	"description": nonEmptyString,
	"objectives":  listOf(minObjectives, nonEmptyString),
	"duration":    numericString,
	"quizTitle":   nonEmptyString,
}

var courseMetadataSchema = object(
	required("title", metadataFields["title"]),
	required("description", metadataFields["description"]),
	required("objectives", metadataFields["objectives"]),
	required("duration", metadataFields["duration"]),
	required("quizTitle", metadataFields["quizTitle"]),
)

// ValidateCourseMetadata checks a decoded analysis response against the metadata contract.
func ValidateCourseMetadata(v any) (*domain.CourseMetadata, error) {
	if errs := courseMetadataSchema("", v); len(errs) > 0 {
		return nil, domain.NewSchemaError(errs)
	}
	obj := v.(map[string]any)
	return &domain.CourseMetadata{
		Title:       strings.TrimSpace(asString(obj["title"])),
		Description: strings.TrimSpace(asString(obj["description"])),
		Objectives:  trimmed(asStrings(obj["objectives"])),
		Duration:    strings.TrimSpace(asString(obj["duration"])),
		QuizTitle:   strings.TrimSpace(asString(obj["quizTitle"])),
	}, nil
}

// SalvageCourseMetadata keeps every field of v that is individually usable and takes
// the rest from defaults. v may be nil or any JSON shape.
func SalvageCourseMetadata(v any, defaults domain.CourseMetadata) domain.CourseMetadata {
	out := defaults
	obj, ok := v.(map[string]any)
	if !ok {
		return out
	}

	usable := func(key string) bool {
		value, present := obj[key]
		return present && value != nil && len(metadataFields[key](key, value)) == 0
	}

	if usable("title") {
		out.Title = strings.TrimSpace(asString(obj["title"]))
	}
	if usable("description") {
		out.Description = strings.TrimSpace(asString(obj["description"]))
	}
	// Fewer than the required objectives are still better than the generic default.
	if objectives := trimmed(asStrings(obj["objectives"])); len(objectives) > 0 {
		out.Objectives = objectives
	}
	if usable("duration") {
		out.Duration = strings.TrimSpace(asString(obj["duration"]))
	} else if len(stringOrNumber("duration", obj["duration"])) == 0 {
		if d := asString(obj["duration"]); len(numericString("duration", d)) == 0 {
			out.Duration = strings.TrimSpace(d)
		}
	}
	if usable("quizTitle") {
		out.QuizTitle = strings.TrimSpace(asString(obj["quizTitle"]))
	}
	return out
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
