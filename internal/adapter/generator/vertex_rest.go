package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// VertexREST calls the Vertex AI generateContent REST endpoint with an API key.
type VertexREST struct {
	client    *resty.Client
	apiKey    string
	projectID string
	location  string
	endpoint  string
	logger    *zap.Logger
}

// NewVertexREST builds the REST client. An empty API key is accepted here and reported
// as a CONFIG_ERROR on every Generate call, so callers see the message verbatim.
func NewVertexREST(cfg config.LLMConfig, logger *zap.Logger) *VertexREST {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location)
	}

	return &VertexREST{
		client:    client,
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		location:  cfg.Location,
		endpoint:  endpoint,
		logger:    logger,
	}
}

func (g *VertexREST) modelURL(model string) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		g.endpoint, url.PathEscape(g.projectID), url.PathEscape(g.location), url.PathEscape(model))
}

// Generate performs exactly one generateContent call.
func (g *VertexREST) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if g.apiKey == "" {
		return "", domain.NewConfigError("generation API key is not configured")
	}
	if g.projectID == "" {
		return "", domain.NewConfigError("generation project ID is not configured")
	}

	body := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(body).
		Post(g.modelURL(opts.Model))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			g.logger.Error("Generation request timed out", zap.Error(err))
		}
		return "", &domain.ServiceError{Cause: err}
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		g.logger.Warn("Generation service returned an error status",
			zap.Int("status", status),
			zap.String("model", opts.Model),
		)
		return "", &domain.ServiceError{StatusCode: status, Body: resp.String()}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", &domain.ServiceError{StatusCode: status, Body: resp.String(), Cause: err}
	}
	if len(parsed.Candidates) == 0 ||
		len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == nil {
		return "", &domain.ServiceError{StatusCode: status, Body: resp.String()}
	}

	candidate := parsed.Candidates[0]
	if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
		g.logger.Warn("Generation finished early", zap.String("finish_reason", candidate.FinishReason))
	}
	return *candidate.Content.Parts[0].Text, nil
}

var _ domain.TextGenerator = (*VertexREST)(nil)
