// Package extractor turns uploaded documents into plain text for the generation pipeline.
package extractor

import (
	"context"
	"strings"
	"unicode/utf8"

	"compliance-coursegen/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

// PlainText handles text/* uploads (txt, markdown, csv, html) without a remote call.
type PlainText struct{}

func NewPlainText() *PlainText {
	return &PlainText{}
}

func (p *PlainText) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil || len(doc.Data) == 0 {
		return "", domain.NewExtractionError("document is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mtype := mimetype.Detect(doc.Data)
	if !isText(mtype) {
		return "", domain.NewExtractionError("document is not plain text ("+mtype.String()+")", nil)
	}
	if !utf8.Valid(doc.Data) {
		return strings.ToValidUTF8(string(doc.Data), "�"), nil
	}
	return string(doc.Data), nil
}

// isText walks the detected type and its parents looking for a text/* type.
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

var _ domain.TextExtractor = (*PlainText)(nil)
