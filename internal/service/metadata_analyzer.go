package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/llmjson"
	"compliance-coursegen/internal/prompt"
	"compliance-coursegen/internal/util"
	"compliance-coursegen/internal/validation"

	"go.uber.org/zap"
)

const defaultMetadataDuration = "30"

type metadataAnalyzer struct {
	generator domain.TextGenerator
	extractor domain.TextExtractor
	llmCfg    config.LLMConfig
	genCfg    config.GenerationConfig
	logger    *zap.Logger
}

// NewMetadataAnalyzer wires the single-attempt document analysis pipeline.
func NewMetadataAnalyzer(
	generator domain.TextGenerator,
	extractor domain.TextExtractor,
	cfg *config.Config,
	logger *zap.Logger,
) domain.MetadataAnalysisService {
	return &metadataAnalyzer{
		generator: generator,
		extractor: extractor,
		llmCfg:    cfg.LLM,
		genCfg:    cfg.Generation,
		logger:    logger,
	}
}

// DefaultCourseMetadata is what analysis falls back to for fileName when the model
// response is unusable.
func DefaultCourseMetadata(fileName string) domain.CourseMetadata {
	title := util.TitleFromFileName(fileName)
	if title == "" {
		title = "Compliance Training"
	}
	source := strings.TrimSpace(fileName)
	if source == "" {
		source = "the uploaded document"
	}
	return domain.CourseMetadata{
		Title:       title,
		Description: "Training based on " + source,
		Objectives:  []string{"Understand the key policies and procedures described in " + source},
		Duration:    defaultMetadataDuration,
		QuizTitle:   title + " Quiz",
	}
}

// AnalyzeDocument makes exactly one model call. Unusable responses degrade to defaults;
// result.Error is set only when there is nothing to fall back on.
func (s *metadataAnalyzer) AnalyzeDocument(ctx context.Context, doc *domain.SourceDocument) *domain.MetadataResult {
	result := &domain.MetadataResult{RequestID: util.NewULID()}
	log := s.logger.With(zap.String("request_id", result.RequestID))

	if doc == nil || len(doc.Data) == 0 {
		return s.fail(log, result, domain.NewConfigError("no file uploaded"))
	}
	log = log.With(zap.String("file_name", doc.FileName))

	defaults := DefaultCourseMetadata(doc.FileName)
	result.CourseMetadata = defaults

	if s.extractor == nil {
		return s.fail(log, result, domain.NewExtractionError("document extraction is not configured", nil))
	}
	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return s.fail(log, result, err)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.genCfg.MinExtractedChars {
		return s.fail(log, result, domain.NewNoExtractableTextError(domain.NoExtractableTextMessage))
	}
	sourceText := util.TruncateText(text, s.genCfg.MetadataMaxSourceChars)

	raw, err := s.generator.Generate(ctx, prompt.BuildMetadataPrompt(doc.FileName, sourceText), domain.GenerationOptions{
		Model:           s.llmCfg.Model,
		Temperature:     s.llmCfg.MetadataTemperature,
		MaxOutputTokens: s.llmCfg.MetadataMaxOutputTokens,
	})
	if err != nil {
		return s.fail(log, result, err)
	}

	var value any
	cleaned, err := llmjson.SanitizeLoose(raw)
	if err == nil {
		value, err = llmjson.Decode(cleaned)
	}
	if err == nil {
		var metadata *domain.CourseMetadata
		if metadata, err = validation.ValidateCourseMetadata(value); err == nil {
			result.CourseMetadata = *metadata
			log.Info("Document analyzed", zap.String("title", metadata.Title))
			return result
		}
	}

	salvaged := validation.SalvageCourseMetadata(value, defaults)
	if salvaged.Title != defaults.Title && salvaged.QuizTitle == defaults.QuizTitle {
		salvaged.QuizTitle = salvaged.Title + " Quiz"
	}
	result.CourseMetadata = salvaged
	result.Degraded = true
	log.Warn("Metadata response unusable, falling back to defaults",
		zap.String("code", string(domain.CodeOf(err))),
		zap.Strings("schema_paths", validation.SchemaPaths(err)),
		zap.Error(err),
	)
	return result
}

func (s *metadataAnalyzer) fail(log *zap.Logger, result *domain.MetadataResult, err error) *domain.MetadataResult {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("document analysis cancelled: %w", err)
	}
	log.Error("Document analysis failed", zap.String("code", string(domain.CodeOf(err))), zap.Error(err))
	result.Err = err
	result.Error = err.Error()
	return result
}
