package ports

import (
	"formexport/domain/form"
)

// DocumentRenderer serializes a composed form into document bytes
type DocumentRenderer interface {
	// Render writes the whole form; a failure yields no bytes
	Render(doc form.Document) ([]byte, error)

	// Extension is the file extension without the dot, e.g. "docx"
	Extension() string
}
