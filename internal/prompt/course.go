// Package prompt builds the text sent to the generation service.
package prompt

import (
	"fmt"
	"strings"

	"compliance-coursegen/internal/domain"
)

// BuildCoursePrompt assembles the single course generation prompt. sourceText is the
// already truncated document text and may be empty for topic-only courses.
func BuildCoursePrompt(req *domain.GenerationRequest, sourceText string) string {
	var b strings.Builder

	b.WriteString("You are an expert instructional designer creating healthcare compliance training.\n")
	b.WriteString("Create a complete training course with lesson modules and a quiz from the details below.\n\n")

	b.WriteString("COURSE DETAILS:\n")
	fmt.Fprintf(&b, "- Category: %s\n", orNone(req.Category))
	fmt.Fprintf(&b, "- Title: %s\n", req.Title)
	fmt.Fprintf(&b, "- Description: %s\n", orNone(req.Description))
	fmt.Fprintf(&b, "- Total duration: %d minutes\n", req.Duration)
	fmt.Fprintf(&b, "- Number of modules: %d\n", req.ModuleCount)

	b.WriteString("\nLEARNING OBJECTIVES:\n")
	if len(req.Objectives) == 0 {
		b.WriteString("(none provided; derive suitable objectives from the title and description)\n")
	}
	for i, objective := range req.Objectives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, objective)
	}

	b.WriteString("\nQUIZ DETAILS:\n")
	fmt.Fprintf(&b, "- Quiz title: %s\n", orNone(req.QuizTitle))
	fmt.Fprintf(&b, "- Number of questions: %d\n", req.QuizQuestionCount)
	fmt.Fprintf(&b, "- Question type: %s\n", req.QuizQuestionType)
	fmt.Fprintf(&b, "- Time limit: %d minutes\n", req.QuizDuration)
	fmt.Fprintf(&b, "- Pass mark: %d%%\n", req.QuizPassMark)
	fmt.Fprintf(&b, "- Allowed attempts: %d\n", req.QuizAttempts)
	fmt.Fprintf(&b, "- Difficulty: %s\n", orNone(req.QuizDifficulty))

	if sourceText != "" {
		b.WriteString("\nSOURCE DOCUMENT:\n")
		b.WriteString("Base the course on the document below. Do not invent policy that is not in it.\n")
		b.WriteString("<<<DOCUMENT\n")
		b.WriteString(sourceText)
		b.WriteString("\nDOCUMENT>>>\n\n")
		b.WriteString("CITATIONS:\n")
		b.WriteString("- Every fact taken from the document must carry a numbered marker such as [1] in the module content.\n")
		b.WriteString("- For every marker add an entry to the \"citations\" array with the same \"id\" and a \"quote\" copied EXACTLY, character for character, from the document.\n")
		b.WriteString("- \"comment\" is optional and may explain how the quote supports the claim.\n")
	} else {
		b.WriteString("\nNo source document was provided. Base the course on the title, description and objectives, and return an empty \"citations\" array.\n")
	}

	b.WriteString("\nQUESTION RULES:\n")
	b.WriteString(questionRules(req.QuizQuestionType, req.QuizQuestionCount))

	b.WriteString("\nOUTPUT FORMAT (STRICT):\n")
	b.WriteString("- Respond with a single line of minified JSON and nothing else.\n")
	b.WriteString("- Do NOT wrap the JSON in markdown code fences.\n")
	b.WriteString("- Escape every newline inside string values as \\n; never emit raw control characters.\n")
	fmt.Fprintf(&b, "- \"modules\" must contain EXACTLY %d item(s).\n", req.ModuleCount)
	fmt.Fprintf(&b, "- \"quiz\" must contain EXACTLY %d item(s).\n", req.QuizQuestionCount)
	b.WriteString("- Module \"content\" is HTML (use <h2>, <p>, <ul>, <li>, <strong>); \"duration\" is minutes as a string.\n")
	b.WriteString("- \"answer\" is the zero-based index of the correct option.\n")
	b.WriteString("Schema:\n")
	b.WriteString(`{"modules":[{"title":"string","content":"<p>HTML</p>","duration":"10"}],"quiz":[{"question":"string","type":"multiple_choice","options":["A","B","C","D"],"answer":0}],"citations":[{"id":1,"quote":"exact text","comment":"optional"}]}`)
	b.WriteString("\n")

	return b.String()
}

func questionRules(t domain.QuestionType, count int) string {
	switch t {
	case domain.QuestionTypeTrueFalse:
		return "- Every question has \"type\":\"true_false\" and options EXACTLY [\"True\",\"False\"].\n"
	case domain.QuestionTypeMixed:
		tf := count / 2
		mc := count - tf
		return fmt.Sprintf("- Mix question types roughly evenly: about %d \"multiple_choice\" question(s) with EXACTLY 4 options and about %d \"true_false\" question(s) with options EXACTLY [\"True\",\"False\"].\n- Set \"type\" on every question.\n", mc, tf)
	default:
		return "- Every question has \"type\":\"multiple_choice\" and EXACTLY 4 options with one correct answer.\n"
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not specified)"
	}
	return s
}
