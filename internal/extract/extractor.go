// Package extract decomposes a document's resource path into its storage
// metadata: bucket name, container-relative path, base filename, and extension.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JaimeStill/docflow/internal/pipeline"
)

// Extractor is the metadata extraction unit.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("system", "extract")}
}

// Handle extracts metadata from in.ResourcePath. An absent resource path is a
// structural input error; the document id is passed through unused.
func (e *Extractor) Handle(ctx context.Context, in pipeline.WorkflowInput) (pipeline.DocumentMetadata, error) {
	if in.ResourcePath == "" {
		return pipeline.DocumentMetadata{}, pipeline.MissingField("s3_path")
	}

	md := Parse(in.ResourcePath)

	e.logger.InfoContext(
		ctx, "metadata extracted",
		"bucket_name", md.BucketName,
		"s3_path", md.ResourcePath,
		"file_name", md.FileName,
		"file_extension", md.FileExtension,
	)

	return md, nil
}

// Parse decomposes a resource path, with or without a scheme prefix.
func Parse(resourcePath string) pipeline.DocumentMetadata {
	path := pipeline.TrimScheme(resourcePath)
	bucket, _, _ := strings.Cut(path, "/")
	name, ext := pipeline.SplitExt(pipeline.BaseName(path))

	return pipeline.DocumentMetadata{
		BucketName:    bucket,
		ResourcePath:  path,
		FileName:      name,
		FileExtension: ext,
	}
}
