package validation

import (
	"errors"
	"fmt"

	"compliance-coursegen/internal/domain"
)

var courseContentSchema = object(
	required("modules", listOf(1, object(
		required("title", nonEmptyString),
		required("content", nonEmptyString),
		required("duration", stringOrNumber),
	))),
	// answer is not range-checked against options; true_false option count is not pinned.
	required("quiz", listOf(1, object(
		required("question", nonEmptyString),
		optional("type", oneOf(string(domain.QuestionTypeMultipleChoice), string(domain.QuestionTypeTrueFalse))),
		required("options", listOf(2, stringValue)),
		required("answer", integerAtLeast(0)),
	))),
	optional("citations", listOf(0, object(
		required("id", integer),
		required("quote", stringValue),
		optional("comment", stringValue),
	))),
)

// ValidateCourseContent checks a decoded model response against the course content
// contract and promotes it to a typed CourseContent.
func ValidateCourseContent(v any) (*domain.CourseContent, error) {
	if errs := courseContentSchema("", v); len(errs) > 0 {
		return nil, domain.NewSchemaError(errs)
	}

	obj := v.(map[string]any)
	content := &domain.CourseContent{}
	for _, m := range asObjects(obj["modules"]) {
		content.Modules = append(content.Modules, domain.Module{
			Title:    asString(m["title"]),
			Content:  asString(m["content"]),
			Duration: asString(m["duration"]),
		})
	}
	for _, q := range asObjects(obj["quiz"]) {
		content.Quiz = append(content.Quiz, domain.QuizQuestion{
			Question: asString(q["question"]),
			Type:     domain.QuestionType(asString(q["type"])),
			Options:  asStrings(q["options"]),
			Answer:   asInt(q["answer"]),
		})
	}
	for _, c := range asObjects(obj["citations"]) {
		content.Citations = append(content.Citations, domain.Citation{
			ID:      asInt(c["id"]),
			Quote:   asString(c["quote"]),
			Comment: asString(c["comment"]),
		})
	}
	return content, nil
}

// CheckCardinality verifies that the model produced exactly the requested number of
// modules and quiz questions.
func CheckCardinality(content *domain.CourseContent, moduleCount, questionCount int) error {
	var errs domain.SchemaErrors
	if len(content.Modules) != moduleCount {
		errs = append(errs, domain.SchemaError{
			Path:     "modules",
			Expected: fmt.Sprintf("exactly %d item(s), got %d", moduleCount, len(content.Modules)),
		})
	}
	if len(content.Quiz) != questionCount {
		errs = append(errs, domain.SchemaError{
			Path:     "quiz",
			Expected: fmt.Sprintf("exactly %d item(s), got %d", questionCount, len(content.Quiz)),
		})
	}
	if len(errs) > 0 {
		return domain.NewSchemaError(errs)
	}
	return nil
}

// SchemaPaths lists the failing paths of a schema error, for logging.
func SchemaPaths(err error) []string {
	var errs domain.SchemaErrors
	if !errors.As(err, &errs) {
		return nil
	}
	paths := make([]string, 0, len(errs))
	for _, se := range errs {
		paths = append(paths, se.Path)
	}
	return paths
}
