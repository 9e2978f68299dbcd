package domain

// QuestionType selects which kind of quiz questions the model must produce.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeMixed          QuestionType = "mixed"
)

// IsValid reports whether t is one of the known question types.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeMixed:
		return true
	}
	return false
}

// SourceDocument is an uploaded policy or compliance document.
type SourceDocument struct {
	FileName string
	MimeType string
	Data     []byte
}

// GenerationRequest carries the course parameters chosen in the course wizard.
// It is built once per user action and consumed once by the pipeline.
type GenerationRequest struct {
	DraftID           string          `json:"draftId,omitempty"`
	Category          string          `json:"category"`
	Title             string          `json:"title" validate:"required"`
	Description       string          `json:"description"`
	Duration          int             `json:"duration" validate:"gte=0"`
	ModuleCount       int             `json:"moduleCount" validate:"min=1,max=20"`
	Objectives        []string        `json:"objectives" validate:"dive,required"`
	QuizTitle         string          `json:"quizTitle"`
	QuizQuestionCount int             `json:"quizQuestionCount" validate:"min=1,max=50"`
	QuizQuestionType  QuestionType    `json:"quizQuestionType" validate:"required,oneof=multiple_choice true_false mixed"`
	QuizDuration      int             `json:"quizDuration" validate:"gte=0"`
	QuizPassMark      int             `json:"quizPassMark" validate:"gte=0,lte=100"`
	QuizAttempts      int             `json:"quizAttempts" validate:"gte=0"`
	QuizDifficulty    string          `json:"quizDifficulty"`
	SourceDocument    *SourceDocument `json:"-"`
}

// Module is one lesson of a generated course. Content is HTML.
type Module struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
}

// QuizQuestion is one generated question. Answer is an index into Options.
type QuizQuestion struct {
	Question string       `json:"question"`
	Type     QuestionType `json:"type,omitempty"`
	Options  []string     `json:"options"`
	Answer   int          `json:"answer"`
}

// Citation ties a numbered marker in module content to a quote from the source text.
// The quote is requested verbatim from the model but never checked against the source.
type Citation struct {
	ID      int    `json:"id"`
	Quote   string `json:"quote"`
	Comment string `json:"comment,omitempty"`
}

// CourseContent is the validated output of the generation pipeline.
type CourseContent struct {
	Modules   []Module       `json:"modules"`
	Quiz      []QuizQuestion `json:"quiz"`
	Citations []Citation     `json:"citations,omitempty"`
}

// CourseMetadata is the output of document analysis, used to prefill the wizard.
type CourseMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
	Duration    string   `json:"duration"`
	QuizTitle   string   `json:"quizTitle"`
}

// GenerationResult is what the generation pipeline hands back to its caller.
// A non-empty Error is the only failure signal; Modules and Quiz are then empty.
type GenerationResult struct {
	CourseContent
	RequestID  string `json:"requestId"`
	SourceText string `json:"sourceText,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`

	// Err keeps the typed failure for callers that need to branch on it.
	Err error `json:"-"`
}

// MetadataResult is what document analysis hands back to its caller.
type MetadataResult struct {
	CourseMetadata
	RequestID string `json:"requestId"`
	Degraded  bool   `json:"degraded,omitempty"`
	Error     string `json:"error,omitempty"`

	Err error `json:"-"`
}
