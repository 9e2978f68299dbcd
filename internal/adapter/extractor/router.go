package extractor

import (
	"context"
	"strings"

	"compliance-coursegen/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MimeTypeDOCX is only accepted by Document AI Layout Parser processors, not by OCR.
const MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ocrTypes are sent to the document extractor. Everything else that is not text/* is rejected.
var ocrTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
	"image/gif":       true,
	"image/bmp":       true,
	"image/webp":      true,
}

// Router picks an extractor from the sniffed content type. The client-declared
// MIME type is ignored.
type Router struct {
	text          domain.TextExtractor
	documents     domain.TextExtractor
	documentTypes map[string]bool
	logger        *zap.Logger
}

type RouterOption func(*Router)

// WithDOCX routes Word documents to the document extractor. Enable it only for a
// Layout Parser processor.
func WithDOCX() RouterOption {
	return func(r *Router) { r.documentTypes[MimeTypeDOCX] = true }
}

// NewRouter builds a Router. documents may be nil when Document AI is not configured.
func NewRouter(text, documents domain.TextExtractor, logger *zap.Logger, opts ...RouterOption) *Router {
	r := &Router{
		text:          text,
		documents:     documents,
		documentTypes: make(map[string]bool, len(ocrTypes)+1),
		logger:        logger,
	}
	for k := range ocrTypes {
		r.documentTypes[k] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DetectMimeType returns the sniffed MIME type without parameters.
func DetectMimeType(data []byte) string {
	mtype := mimetype.Detect(data).String()
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = mtype[:i]
	}
	return mtype
}

func (r *Router) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil || len(doc.Data) == 0 {
		return "", domain.NewExtractionError("document is empty", nil)
	}

	mtype := mimetype.Detect(doc.Data)
	detected := DetectMimeType(doc.Data)
	r.logger.Debug("Routing document for extraction",
		zap.String("file_name", doc.FileName),
		zap.String("declared_type", doc.MimeType),
		zap.String("detected_type", detected),
	)

	switch {
	case isText(mtype):
		return r.text.Extract(ctx, doc)
	case r.documentTypes[detected]:
		if r.documents == nil {
			return "", domain.NewExtractionError("extraction for "+detected+" documents is not configured", nil)
		}
		routed := *doc
		routed.MimeType = detected
		return r.documents.Extract(ctx, &routed)
	default:
		return "", domain.NewExtractionError("unsupported document type "+detected, nil)
	}
}

var _ domain.TextExtractor = (*Router)(nil)
