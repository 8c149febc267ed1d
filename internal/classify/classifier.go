// Package classify maps a document's file extension to a human-readable
// document-type label.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JaimeStill/docflow/internal/pipeline"
)

// Document-type labels.
const (
	LabelPDF     = "PDF Document"
	LabelWord    = "Word Document"
	LabelImage   = "Image File"
	LabelUnknown = "Unknown Type"
)

var labels = map[string]string{
	".pdf":  LabelPDF,
	".doc":  LabelWord,
	".docx": LabelWord,
	".png":  LabelImage,
	".jpg":  LabelImage,
	".jpeg": LabelImage,
}

// Label returns the document-type label for ext. Matching is case-insensitive;
// an empty or unrecognized extension yields LabelUnknown.
func Label(ext string) string {
	if label, ok := labels[strings.ToLower(ext)]; ok {
		return label
	}
	return LabelUnknown
}

// Classifier is the classification unit.
type Classifier struct {
	logger *slog.Logger
}

// New creates a Classifier.
func New(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logger.With("system", "classify")}
}

// Handle classifies a document by its extension. It never fails on well-formed input.
func (c *Classifier) Handle(ctx context.Context, in pipeline.ClassifyInput) (pipeline.ClassificationResult, error) {
	result := pipeline.ClassificationResult{
		DocumentID:     in.DocumentID,
		Classification: Label(in.FileExtension),
	}

	c.logger.InfoContext(
		ctx, "document classified",
		"document_id", result.DocumentID,
		"classification", result.Classification,
	)

	return result, nil
}
