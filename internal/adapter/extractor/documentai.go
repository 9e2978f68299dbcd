package extractor

import (
	"context"
	"fmt"
	"strings"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// documentProcessor is the slice of the Document AI client this package calls.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

// DocumentAI extracts text from PDF and image uploads with a Document AI processor.
// DOCX needs a Layout Parser processor.
type DocumentAI struct {
	processor documentProcessor
	name      string
	closeFn   func() error
	logger    *zap.Logger
}

func NewDocumentAI(ctx context.Context, cfg config.ExtractionConfig, logger *zap.Logger) (*DocumentAI, error) {
	if cfg.DocumentAIProjectID == "" || cfg.DocumentAIProcessorID == "" {
		return nil, fmt.Errorf("NewDocumentAI: project ID and processor ID cannot be empty")
	}
	location := cfg.DocumentAILocation
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	logger.Info("Document AI initialized", zap.String("endpoint", endpoint))

	d := newDocumentAI(client, processorName(cfg.DocumentAIProjectID, location, cfg.DocumentAIProcessorID), logger)
	d.closeFn = client.Close
	return d, nil
}

func newDocumentAI(p documentProcessor, name string, logger *zap.Logger) *DocumentAI {
	return &DocumentAI{processor: p, name: name, closeFn: func() error { return nil }, logger: logger}
}

func processorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}

func (d *DocumentAI) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil || len(doc.Data) == 0 {
		return "", domain.NewExtractionError("document is empty", nil)
	}
	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	resp, err := d.processor.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  doc.Data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		d.logger.Error("Document AI ProcessDocument failed",
			zap.String("file_name", doc.FileName),
			zap.String("mime_type", mimeType),
			zap.Error(err),
		)
		return "", domain.NewExtractionError("could not read the uploaded document", err)
	}

	var text string
	if resp != nil && resp.Document != nil {
		text = resp.Document.GetText()
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewNoExtractableTextError(domain.NoExtractableTextMessage)
	}
	return text, nil
}

func (d *DocumentAI) Close() error {
	return d.closeFn()
}

var _ domain.TextExtractor = (*DocumentAI)(nil)
