package handler

import (
	"errors"
	"io"
	"time"

	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/dto"
	"compliance-coursegen/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const documentField = "document"

// CourseHandler serves the course generation and document analysis endpoints.
type CourseHandler struct {
	generator domain.CourseGenerationService
	analyzer  domain.MetadataAnalysisService
	lock      domain.DraftLock
	lockTTL   time.Duration
}

// NewCourseHandler creates a new CourseHandler instance
func NewCourseHandler(
	generator domain.CourseGenerationService,
	analyzer domain.MetadataAnalysisService,
	lock domain.DraftLock,
	lockTTL time.Duration,
) *CourseHandler {
	return &CourseHandler{
		generator: generator,
		analyzer:  analyzer,
		lock:      lock,
		lockTTL:   lockTTL,
	}
}

// GenerateCourse handles POST /api/courses/generate.
// Every pipeline outcome is a 200; the error field carries failures.
func (h *CourseHandler) GenerateCourse(c *fiber.Ctx) error {
	var req dto.GenerateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body", err)
	}

	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	genReq := req.ToDomain(doc)

	if genReq.DraftID != "" && h.lock != nil {
		release, err := h.lock.Acquire(c.UserContext(), genReq.DraftID, h.lockTTL)
		if err != nil {
			return err
		}
		defer release()
	}

	result := h.generator.GenerateCourse(c.UserContext(), genReq)
	if result.Error != "" {
		logger.Get().Warn("Course generation returned an error",
			zap.String("request_id", result.RequestID),
			zap.String("draft_id", genReq.DraftID),
			zap.String("error", result.Error),
		)
	}
	return c.JSON(dto.NewCourseGenerationResponse(result))
}

// AnalyzeDocument handles POST /api/courses/analyze-document.
func (h *CourseHandler) AnalyzeDocument(c *fiber.Ctx) error {
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	result := h.analyzer.AnalyzeDocument(c.UserContext(), doc)
	return c.JSON(dto.NewDocumentAnalysisResponse(result))
}

// readDocument returns the optional uploaded file, or nil when the request has none.
func readDocument(c *fiber.Ctx) (*domain.SourceDocument, error) {
	fh, err := c.FormFile(documentField)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, domain.NewInvalidInputError("invalid multipart form", err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInvalidInputError("could not open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInvalidInputError("could not read uploaded file", err)
	}
	return &domain.SourceDocument{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
