package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"compliance-coursegen/internal/domain"
)

// FlexInt decodes a JSON number or a numeric string such as "3". Empty strings and
// null decode to zero. Form fields go through Fiber's int conversion.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*n = FlexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// GenerateCourseRequest is the body of POST /api/courses/generate. It is accepted as
// JSON or as multipart form fields next to an optional "document" file.
type GenerateCourseRequest struct {
	DraftID           string   `json:"draftId" form:"draftId"`
	Category          string   `json:"category" form:"category"`
	Title             string   `json:"title" form:"title"`
	Description       string   `json:"description" form:"description"`
	Duration          FlexInt  `json:"duration" form:"duration"`
	ModuleCount       FlexInt  `json:"moduleCount" form:"moduleCount"`
	Objectives        []string `json:"objectives" form:"objectives"`
	QuizTitle         string   `json:"quizTitle" form:"quizTitle"`
	QuizQuestionCount FlexInt  `json:"quizQuestionCount" form:"quizQuestionCount"`
	QuizQuestionType  string   `json:"quizQuestionType" form:"quizQuestionType"`
	QuizDuration      FlexInt  `json:"quizDuration" form:"quizDuration"`
	QuizPassMark      FlexInt  `json:"quizPassMark" form:"quizPassMark"`
	QuizAttempts      FlexInt  `json:"quizAttempts" form:"quizAttempts"`
	QuizDifficulty    string   `json:"quizDifficulty" form:"quizDifficulty"`
}

// ToDomain builds the pipeline request. Blank objectives are dropped.
func (r *GenerateCourseRequest) ToDomain(doc *domain.SourceDocument) *domain.GenerationRequest {
	objectives := make([]string, 0, len(r.Objectives))
	for _, o := range r.Objectives {
		if o = strings.TrimSpace(o); o != "" {
			objectives = append(objectives, o)
		}
	}
	return &domain.GenerationRequest{
		DraftID:           strings.TrimSpace(r.DraftID),
		Category:          strings.TrimSpace(r.Category),
		Title:             strings.TrimSpace(r.Title),
		Description:       strings.TrimSpace(r.Description),
		Duration:          int(r.Duration),
		ModuleCount:       int(r.ModuleCount),
		Objectives:        objectives,
		QuizTitle:         strings.TrimSpace(r.QuizTitle),
		QuizQuestionCount: int(r.QuizQuestionCount),
		QuizQuestionType:  domain.QuestionType(strings.TrimSpace(r.QuizQuestionType)),
		QuizDuration:      int(r.QuizDuration),
		QuizPassMark:      int(r.QuizPassMark),
		QuizAttempts:      int(r.QuizAttempts),
		QuizDifficulty:    strings.TrimSpace(r.QuizDifficulty),
		SourceDocument:    doc,
	}
}

// CourseGenerationResponse is returned with status 200 for every pipeline outcome.
// A non-empty Error is the failure signal.
type CourseGenerationResponse struct {
	RequestID  string                `json:"requestId"`
	Modules    []domain.Module       `json:"modules"`
	Quiz       []domain.QuizQuestion `json:"quiz"`
	Citations  []domain.Citation     `json:"citations,omitempty"`
	SourceText string                `json:"sourceText,omitempty"`
	Attempts   int                   `json:"attempts"`
	Error      string                `json:"error,omitempty"`
	ErrorCode  string                `json:"errorCode,omitempty"`
}

func NewCourseGenerationResponse(result *domain.GenerationResult) CourseGenerationResponse {
	resp := CourseGenerationResponse{
		RequestID:  result.RequestID,
		Modules:    result.Modules,
		Quiz:       result.Quiz,
		Citations:  result.Citations,
		SourceText: result.SourceText,
		Attempts:   result.Attempts,
		Error:      result.Error,
		ErrorCode:  string(domain.CodeOf(result.Err)),
	}
	if resp.Modules == nil {
		resp.Modules = []domain.Module{}
	}
	if resp.Quiz == nil {
		resp.Quiz = []domain.QuizQuestion{}
	}
	return resp
}

// DocumentAnalysisResponse prefills the course wizard from an uploaded document.
type DocumentAnalysisResponse struct {
	RequestID   string   `json:"requestId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
	Duration    string   `json:"duration"`
	QuizTitle   string   `json:"quizTitle"`
	Degraded    bool     `json:"degraded,omitempty"`
	Error       string   `json:"error,omitempty"`
	ErrorCode   string   `json:"errorCode,omitempty"`
}

func NewDocumentAnalysisResponse(result *domain.MetadataResult) DocumentAnalysisResponse {
	resp := DocumentAnalysisResponse{
		RequestID:   result.RequestID,
		Title:       result.Title,
		Description: result.Description,
		Objectives:  result.Objectives,
		Duration:    result.Duration,
		QuizTitle:   result.QuizTitle,
		Degraded:    result.Degraded,
		Error:       result.Error,
		ErrorCode:   string(domain.CodeOf(result.Err)),
	}
	if resp.Objectives == nil {
		resp.Objectives = []string{}
	}
	return resp
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}
