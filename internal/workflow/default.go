package workflow

// Placeholders bound at deploy time.
const (
	PlaceholderExtract  = "ExtractFunctionArn"
	PlaceholderClassify = "ClassifyFunctionArn"
)

// State names in the default definition.
const (
	StateExtract  = "ExtractMetadata"
	StateClassify = "ClassifyDocument"
)

// Default returns the two-step pipeline definition. Extraction output is kept
// under $.metadata so the classification step receives the document id from
// the execution input alongside the extracted extension.
func Default() *Definition {
	return &Definition{
		Comment:        "Extract document metadata, then classify the document by file extension.",
		StartAt:        StateExtract,
		TimeoutSeconds: 300,
		States: map[string]State{
			StateExtract: {
				Type:       TypeTask,
				Resource:   "${" + PlaceholderExtract + "}",
				ResultPath: "$.metadata",
				Next:       StateClassify,
			},
			StateClassify: {
				Type:     TypeTask,
				Resource: "${" + PlaceholderClassify + "}",
				Parameters: map[string]any{
					"document_id.$":    "$.document_id",
					"file_extension.$": "$.metadata.file_extension",
				},
				End: true,
			},
		},
	}
}
