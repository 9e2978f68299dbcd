package domain

import (
	"context"
	"time"
)

// GenerationOptions are the per-call knobs passed to a TextGenerator.
type GenerationOptions struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// TextGenerator makes exactly one call to a remote text-generation service and returns
// the raw text of the first candidate. It never retries.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *SourceDocument) (string, error)
}

// DraftLock guards a course draft so that at most one generation runs for it at a time.
type DraftLock interface {
	// Acquire returns a release func, or a DRAFT_BUSY DomainError if the draft is held.
	Acquire(ctx context.Context, draftID string, ttl time.Duration) (release func(), err error)
}

// CourseGenerationService turns a GenerationRequest into course content.
// It never returns a Go error: failures are reported in GenerationResult.Error.
type CourseGenerationService interface {
	GenerateCourse(ctx context.Context, req *GenerationRequest) *GenerationResult
}

// MetadataAnalysisService extracts course metadata from an uploaded document.
type MetadataAnalysisService interface {
	AnalyzeDocument(ctx context.Context, doc *SourceDocument) *MetadataResult
}
