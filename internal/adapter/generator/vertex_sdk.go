package generator

import (
	"context"
	"errors"
	"fmt"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
)

// VertexSDK calls Gemini on Vertex AI through the Go SDK, authenticating with
// application default credentials instead of an API key.
type VertexSDK struct {
	client *genai.Client
	logger *zap.Logger
}

func NewVertexSDK(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*VertexSDK, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("NewVertexSDK: project ID and location cannot be empty")
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	logger.Info("Initialized Vertex AI SDK generator",
		zap.String("project", cfg.ProjectID),
		zap.String("location", cfg.Location),
	)
	return &VertexSDK{client: client, logger: logger}, nil
}

// Generate performs exactly one GenerateContent call.
func (g *VertexSDK) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	model := g.client.GenerativeModel(opts.Model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxOutputTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		svcErr := &domain.ServiceError{Body: err.Error(), Cause: err}
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPCode() > 0 {
			svcErr.StatusCode = apiErr.HTTPCode()
		}
		return "", svcErr
	}

	text, ok := firstText(resp)
	if !ok {
		return "", &domain.ServiceError{StatusCode: 200, Body: describeEmpty(resp)}
	}
	return text, nil
}

func (g *VertexSDK) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	return string(txt), ok
}

func describeEmpty(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return "response has no candidates"
	}
	return fmt.Sprintf("first candidate has no text part (finish reason %s)", resp.Candidates[0].FinishReason)
}

var _ domain.TextGenerator = (*VertexSDK)(nil)
