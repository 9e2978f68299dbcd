package generator

import (
	"context"
	"errors"
	"testing"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// MockModel is a mock type for the llms.Model interface
type MockModel struct {
	mock.Mock
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestLangChain_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m := new(MockModel)
		m.On("GenerateContent", ctx, mock.MatchedBy(func(msgs []llms.MessageContent) bool {
			if len(msgs) != 1 || len(msgs[0].Parts) != 1 {
				return false
			}
			txt, ok := msgs[0].Parts[0].(llms.TextContent)
			return ok && txt.Text == "the prompt"
		})).Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: `{"title":"x"}`}},
		}, nil).Once()

		g := NewLangChain(m, zap.NewNop())
		text, err := g.Generate(ctx, "the prompt", testOpts)

		require.NoError(t, err)
		assert.Equal(t, `{"title":"x"}`, text)
		m.AssertExpectations(t)
	})

	t.Run("model error becomes service error", func(t *testing.T) {
		m := new(MockModel)
		m.On("GenerateContent", ctx, mock.Anything).Return(nil, errors.New("connection refused")).Once()

		g := NewLangChain(m, zap.NewNop())
		_, err := g.Generate(ctx, "p", testOpts)

		var svcErr *domain.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Contains(t, svcErr.Body, "connection refused")
	})

	t.Run("empty choice", func(t *testing.T) {
		m := new(MockModel)
		m.On("GenerateContent", ctx, mock.Anything).Return(&llms.ContentResponse{}, nil).Once()

		g := NewLangChain(m, zap.NewNop())
		_, err := g.Generate(ctx, "p", testOpts)

		assert.Equal(t, domain.CodeService, domain.CodeOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		m := new(MockModel)
		m.On("GenerateContent", cctx, mock.Anything).Return(nil, errors.New("request aborted")).Once()

		g := NewLangChain(m, zap.NewNop())
		_, err := g.Generate(cctx, "p", testOpts)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("hello")}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
	text, ok := firstText(resp)
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	_, ok = firstText(&genai.GenerateContentResponse{})
	assert.False(t, ok)
	assert.Equal(t, "response has no candidates", describeEmpty(&genai.GenerateContentResponse{}))

	blocked := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}, FinishReason: genai.FinishReasonSafety}},
	}
	_, ok = firstText(blocked)
	assert.False(t, ok)
	assert.Contains(t, describeEmpty(blocked), "no text part")
}

func TestNew_SelectsProvider(t *testing.T) {
	g, closeFn, err := New(context.Background(), restConfig("http://localhost"), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &VertexREST{}, g)
	assert.NoError(t, closeFn())

	_, _, err = New(context.Background(), config.LLMConfig{Provider: "bogus"}, zap.NewNop())
	assert.Error(t, err)
}
