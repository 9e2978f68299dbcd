package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/llmjson"
	"compliance-coursegen/internal/prompt"
	"compliance-coursegen/internal/util"
	"compliance-coursegen/internal/validation"

	"go.uber.org/zap"
)

// Sleeper waits between attempts and returns early with ctx.Err() on cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// CourseGeneratorOption customizes a course generator.
type CourseGeneratorOption func(*courseGenerator)

// WithSleeper replaces the wait used between attempts.
func WithSleeper(sleep Sleeper) CourseGeneratorOption {
	return func(s *courseGenerator) { s.sleep = sleep }
}

type courseGenerator struct {
	generator domain.TextGenerator
	extractor domain.TextExtractor
	validator *validation.Validator
	llmCfg    config.LLMConfig
	genCfg    config.GenerationConfig
	sleep     Sleeper
	logger    *zap.Logger
}

// NewCourseGenerator wires the full generation pipeline. extractor may be nil when
// only topic-based generation is served.
func NewCourseGenerator(
	generator domain.TextGenerator,
	extractor domain.TextExtractor,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...CourseGeneratorOption,
) domain.CourseGenerationService {
	s := &courseGenerator{
		generator: generator,
		extractor: extractor,
		validator: validation.NewValidator(),
		llmCfg:    cfg.LLM,
		genCfg:    cfg.Generation,
		sleep:     sleepContext,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.genCfg.MaxAttempts < 1 {
		s.genCfg.MaxAttempts = 1
	}
	return s
}

// GenerateCourse never returns a Go error: failures are reported in result.Error.
func (s *courseGenerator) GenerateCourse(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
	result := &domain.GenerationResult{
		RequestID:     util.NewULID(),
		CourseContent: emptyContent(),
	}
	log := s.logger.With(zap.String("request_id", result.RequestID))

	if err := s.validator.ValidateRequest(req); err != nil {
		return s.fail(log, result, err)
	}
	log = log.With(zap.String("title", req.Title), zap.String("draft_id", req.DraftID))

	sourceText, err := s.sourceText(ctx, req.SourceDocument)
	if err != nil {
		return s.fail(log, result, err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.genCfg.MaxAttempts; attempt++ {
		result.Attempts = attempt

		content, err := s.attempt(ctx, req, sourceText)
		if err == nil {
			log.Info("Course generated",
				zap.Int("attempt", attempt),
				zap.Int("modules", len(content.Modules)),
				zap.Int("questions", len(content.Quiz)),
				zap.Int("citations", len(content.Citations)),
			)
			result.CourseContent = *content
			result.SourceText = sourceText
			return result
		}

		lastErr = err
		log.Warn("Course generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.genCfg.MaxAttempts),
			zap.String("code", string(domain.CodeOf(err))),
			zap.Strings("schema_paths", validation.SchemaPaths(err)),
			zap.Error(err),
		)

		if !retryable(err) {
			return s.fail(log, result, err)
		}
		if attempt < s.genCfg.MaxAttempts {
			if err := s.sleep(ctx, s.genCfg.RetryDelay); err != nil {
				return s.fail(log, result, err)
			}
		}
	}

	return s.fail(log, result, fmt.Errorf("course generation failed after %d attempts: %w", result.Attempts, lastErr))
}

func (s *courseGenerator) sourceText(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", nil
	}
	if s.extractor == nil {
		return "", domain.NewExtractionError("document extraction is not configured", nil)
	}
	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", err
	}
	return util.TruncateText(text, s.genCfg.MaxSourceChars), nil
}

// attempt runs one build, call, sanitize, parse and validate pass.
func (s *courseGenerator) attempt(ctx context.Context, req *domain.GenerationRequest, sourceText string) (*domain.CourseContent, error) {
	raw, err := s.generator.Generate(ctx, prompt.BuildCoursePrompt(req, sourceText), domain.GenerationOptions{
		Model:           s.llmCfg.Model,
		Temperature:     s.llmCfg.Temperature,
		MaxOutputTokens: s.llmCfg.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	cleaned, err := llmjson.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	value, err := llmjson.Decode(cleaned)
	if err != nil {
		return nil, err
	}
	content, err := validation.ValidateCourseContent(value)
	if err != nil {
		return nil, err
	}
	if s.genCfg.EnforceCardinality {
		if err := validation.CheckCardinality(content, req.ModuleCount, req.QuizQuestionCount); err != nil {
			return nil, err
		}
	}
	return content, nil
}

func (s *courseGenerator) fail(log *zap.Logger, result *domain.GenerationResult, err error) *domain.GenerationResult {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("course generation cancelled: %w", err)
	}
	log.Error("Course generation failed",
		zap.Int("attempts", result.Attempts),
		zap.String("code", string(domain.CodeOf(err))),
		zap.Error(err),
	)
	result.CourseContent = emptyContent()
	result.Err = err
	result.Error = err.Error()
	return result
}

// retryable reports whether another attempt could succeed. Configuration problems,
// extraction failures and cancellation are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch domain.CodeOf(err) {
	case domain.CodeService, domain.CodeSanitization, domain.CodeParse, domain.CodeSchema:
		return true
	}
	return false
}

func emptyContent() domain.CourseContent {
	return domain.CourseContent{Modules: []domain.Module{}, Quiz: []domain.QuizQuestion{}}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
