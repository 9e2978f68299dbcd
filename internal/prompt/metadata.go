package prompt

import (
	"fmt"
	"strings"
)

// BuildMetadataPrompt asks the model to propose course metadata for an uploaded document.
func BuildMetadataPrompt(fileName, sourceText string) string {
	var b strings.Builder

	b.WriteString("You are an expert in healthcare compliance training.\n")
	b.WriteString("Analyze the policy document below and propose metadata for a training course based on it.\n\n")
	fmt.Fprintf(&b, "FILE NAME: %s\n\n", fileName)
	b.WriteString("<<<DOCUMENT\n")
	b.WriteString(sourceText)
	b.WriteString("\nDOCUMENT>>>\n\n")

	b.WriteString("Respond with a JSON object only, with these fields:\n")
	b.WriteString("- \"title\": a concise course title\n")
	b.WriteString("- \"description\": two or three sentences describing the course\n")
	b.WriteString("- \"objectives\": an array of at least 3 learning objectives\n")
	b.WriteString("- \"duration\": the estimated course length in minutes, as a numeric string such as \"45\"\n")
	b.WriteString("- \"quizTitle\": a title for the course quiz\n")
	b.WriteString(`Example: {"title":"Hand Hygiene Essentials","description":"...","objectives":["...","...","..."],"duration":"30","quizTitle":"Hand Hygiene Quiz"}`)
	b.WriteString("\n")

	return b.String()
}
