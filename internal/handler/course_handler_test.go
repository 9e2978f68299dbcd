package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"compliance-coursegen/internal/adapter"
	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/dto"
	"compliance-coursegen/internal/handler"
	"compliance-coursegen/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockCourseGenerationService struct {
	GenerateCourseFunc func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult
}

func (m *MockCourseGenerationService) GenerateCourse(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
	if m.GenerateCourseFunc != nil {
		return m.GenerateCourseFunc(ctx, req)
	}
	panic("MockCourseGenerationService.GenerateCourseFunc not implemented")
}

type MockMetadataAnalysisService struct {
	AnalyzeDocumentFunc func(ctx context.Context, doc *domain.SourceDocument) *domain.MetadataResult
}

func (m *MockMetadataAnalysisService) AnalyzeDocument(ctx context.Context, doc *domain.SourceDocument) *domain.MetadataResult {
	if m.AnalyzeDocumentFunc != nil {
		return m.AnalyzeDocumentFunc(ctx, doc)
	}
	panic("MockMetadataAnalysisService.AnalyzeDocumentFunc not implemented")
}

func newTestApp(gen domain.CourseGenerationService, analyzer domain.MetadataAnalysisService, lock domain.DraftLock) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app,
		handler.NewCourseHandler(gen, analyzer, lock, time.Minute),
		handler.NewHealthHandler(config.LLMConfig{Provider: config.ProviderVertexREST, Model: "gemini-2.0-flash"}),
	)
	return app
}

func multipartBody(t *testing.T, fields map[string][]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("document", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCourseHandler_GenerateCourse_JSON(t *testing.T) {
	var got *domain.GenerationRequest
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			got = req
			return &domain.GenerationResult{
				RequestID: "req-1",
				Attempts:  1,
				CourseContent: domain.CourseContent{
					Modules: []domain.Module{{Title: "Intro", Content: "<p>Hi</p>", Duration: "10"}},
					Quiz:    []domain.QuizQuestion{{Question: "Q?", Options: []string{"True", "False"}, Answer: 0}},
				},
			}
		},
	}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, adapter.NewMemoryDraftLock())

	payload := `{"title":"Fire Safety","moduleCount":1,"quizQuestionCount":1,"quizQuestionType":"true_false","objectives":["Know exits"," "]}`
	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.CourseGenerationResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Len(t, body.Modules, 1)
	assert.Empty(t, body.Error)

	require.NotNil(t, got)
	assert.Equal(t, "Fire Safety", got.Title)
	assert.Equal(t, domain.QuestionTypeTrueFalse, got.QuizQuestionType)
	assert.Equal(t, []string{"Know exits"}, got.Objectives)
	assert.Nil(t, got.SourceDocument)
}

func TestCourseHandler_GenerateCourse_StringCounts(t *testing.T) {
	var got *domain.GenerationRequest
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			got = req
			return &domain.GenerationResult{RequestID: "req-s", Attempts: 1}
		},
	}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, adapter.NewMemoryDraftLock())

	payload := `{"title":"Fire Safety","moduleCount":"3","quizQuestionCount":"5","quizQuestionType":"mixed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, got)
	assert.Equal(t, 3, got.ModuleCount)
	assert.Equal(t, 5, got.QuizQuestionCount)
}

func TestCourseHandler_GenerateCourse_ServerContextReachesPipeline(t *testing.T) {
	serverCtx, shutdown := context.WithCancel(context.Background())
	shutdown()

	var pipelineErr error
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			pipelineErr = ctx.Err()
			return &domain.GenerationResult{RequestID: "req-c", Error: "course generation cancelled: " + ctx.Err().Error()}
		},
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestContext(serverCtx, time.Minute))
	handler.RegisterRoutes(app,
		handler.NewCourseHandler(gen, &MockMetadataAnalysisService{}, adapter.NewMemoryDraftLock(), time.Minute),
		handler.NewHealthHandler(config.LLMConfig{}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", bytes.NewBufferString(`{"title":"Fire Safety"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.ErrorIs(t, pipelineErr, context.Canceled)

	var body dto.CourseGenerationResponse
	decodeJSON(t, resp, &body)
	assert.Contains(t, body.Error, "cancelled")
}

func TestCourseHandler_GenerateCourse_MultipartWithDocument(t *testing.T) {
	var got *domain.GenerationRequest
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			got = req
			return &domain.GenerationResult{RequestID: "req-2", Attempts: 1}
		},
	}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, adapter.NewMemoryDraftLock())

	body, contentType := multipartBody(t, map[string][]string{
		"title":             {"Hand Hygiene"},
		"moduleCount":       {"2"},
		"quizQuestionCount": {"4"},
		"quizQuestionType":  {"mixed"},
		"objectives":        {"Wash hands", "Use gloves"},
	}, "policy.txt", []byte("Wash your hands before every patient contact."))
	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, got)
	assert.Equal(t, 2, got.ModuleCount)
	assert.Equal(t, []string{"Wash hands", "Use gloves"}, got.Objectives)
	require.NotNil(t, got.SourceDocument)
	assert.Equal(t, "policy.txt", got.SourceDocument.FileName)
	assert.Equal(t, "Wash your hands before every patient contact.", string(got.SourceDocument.Data))
}

func TestCourseHandler_GenerateCourse_PipelineErrorIs200(t *testing.T) {
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			err := domain.NewConfigError("generation API key is not configured")
			return &domain.GenerationResult{
				RequestID:     "req-3",
				CourseContent: domain.CourseContent{},
				Error:         err.Error(),
				Err:           err,
			}
		},
	}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", bytes.NewBufferString(`{"title":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.CourseGenerationResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "generation API key is not configured", body.Error)
	assert.Equal(t, "CONFIG_ERROR", body.ErrorCode)
	assert.NotNil(t, body.Modules)
	assert.NotNil(t, body.Quiz)
}

func TestCourseHandler_GenerateCourse_DraftBusy(t *testing.T) {
	lock := adapter.NewMemoryDraftLock()
	release, err := lock.Acquire(context.Background(), "draft-7", time.Minute)
	require.NoError(t, err)
	defer release()

	gen := &MockCourseGenerationService{}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, lock)

	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate",
		bytes.NewBufferString(`{"draftId":"draft-7","title":"Fire Safety"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body dto.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "DRAFT_BUSY", body.Code)
}

func TestCourseHandler_GenerateCourse_ReleasesLock(t *testing.T) {
	lock := adapter.NewMemoryDraftLock()
	gen := &MockCourseGenerationService{
		GenerateCourseFunc: func(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
			return &domain.GenerationResult{RequestID: "r"}
		},
	}
	app := newTestApp(gen, &MockMetadataAnalysisService{}, lock)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/courses/generate",
			bytes.NewBufferString(`{"draftId":"draft-8","title":"Fire Safety"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
		resp.Body.Close()
	}
}

func TestCourseHandler_GenerateCourse_BadBody(t *testing.T) {
	app := newTestApp(&MockCourseGenerationService{}, &MockMetadataAnalysisService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/courses/generate", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "INVALID_INPUT", body.Code)
}

func TestCourseHandler_AnalyzeDocument(t *testing.T) {
	var got *domain.SourceDocument
	analyzer := &MockMetadataAnalysisService{
		AnalyzeDocumentFunc: func(ctx context.Context, doc *domain.SourceDocument) *domain.MetadataResult {
			got = doc
			return &domain.MetadataResult{
				RequestID: "req-4",
				CourseMetadata: domain.CourseMetadata{
					Title:       "Infection Control",
					Description: "Training based on infection_control.txt",
					Objectives:  []string{"Understand isolation"},
					Duration:    "30",
					QuizTitle:   "Infection Control Quiz",
				},
				Degraded: true,
			}
		},
	}
	app := newTestApp(&MockCourseGenerationService{}, analyzer, nil)

	body, contentType := multipartBody(t, nil, "infection_control.txt", []byte("Isolation precautions apply to all suspected cases."))
	req := httptest.NewRequest(http.MethodPost, "/api/courses/analyze-document", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.DocumentAnalysisResponse
	decodeJSON(t, resp, &out)
	assert.Equal(t, "Infection Control", out.Title)
	assert.True(t, out.Degraded)
	assert.Empty(t, out.Error)
	require.NotNil(t, got)
	assert.Equal(t, "infection_control.txt", got.FileName)
}

func TestCourseHandler_AnalyzeDocument_NoFile(t *testing.T) {
	analyzer := &MockMetadataAnalysisService{
		AnalyzeDocumentFunc: func(ctx context.Context, doc *domain.SourceDocument) *domain.MetadataResult {
			assert.Nil(t, doc)
			err := domain.NewConfigError("no file uploaded")
			return &domain.MetadataResult{RequestID: "req-5", Error: err.Error(), Err: err}
		},
	}
	app := newTestApp(&MockCourseGenerationService{}, analyzer, nil)

	body, contentType := multipartBody(t, map[string][]string{"note": {"nothing attached"}}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/courses/analyze-document", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.DocumentAnalysisResponse
	decodeJSON(t, resp, &out)
	assert.Equal(t, "no file uploaded", out.Error)
	assert.Equal(t, []string{}, out.Objectives)
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(&MockCourseGenerationService{}, &MockMetadataAnalysisService{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.HealthResponse
	decodeJSON(t, resp, &out)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "vertex_rest", out.Provider)
}
