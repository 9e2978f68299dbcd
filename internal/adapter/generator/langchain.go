package generator

import (
	"context"
	"fmt"
	"net/http"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// LangChain adapts any langchaingo model. It is used with a local Ollama server
// during development so the pipeline can run without cloud credentials.
type LangChain struct {
	llm    llms.Model
	logger *zap.Logger
}

func NewLangChain(llm llms.Model, logger *zap.Logger) *LangChain {
	return &LangChain{llm: llm, logger: logger}
}

// NewOllama builds a LangChain generator backed by an Ollama server.
func NewOllama(cfg config.LLMConfig, logger *zap.Logger) (*LangChain, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	logger.Info("Initialized Ollama generator",
		zap.String("server_url", cfg.OllamaServerURL),
		zap.String("model", cfg.Model),
	)
	return NewLangChain(llm, logger), nil
}

// Generate performs exactly one completion call.
func (g *LangChain) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxOutputTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxOutputTokens))
	}

	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, callOpts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.Error("Failed to get response from LLM", zap.Error(err))
		return "", &domain.ServiceError{Body: err.Error(), Cause: err}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", &domain.ServiceError{StatusCode: http.StatusOK, Body: "model returned no text"}
	}
	return resp.Choices[0].Content, nil
}

var _ domain.TextGenerator = (*LangChain)(nil)
