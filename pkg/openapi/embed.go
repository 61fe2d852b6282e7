package openapi

import (
	_ "embed"
)

// DefaultOperationID is the operation in the embedded contact document.
const DefaultOperationID = "submitContact"

//go:embed contact.yaml
var defaultDocument []byte

// DefaultDocument returns the embedded contact form definition.
func DefaultDocument() Document {
	return MustNewDocument(SourceFromFS("contact.yaml"), defaultDocument)
}
