// Package archive packs generated documents into one zip file.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"formexport/domain/form"
)

// Bundle writes every document into a deflated zip, in order. Entries carry
// the given modification time so identical input gives identical bytes.
func Bundle(docs []form.GeneratedDocument, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.Filename == "" {
			return nil, fmt.Errorf("document without a file name")
		}
		if seen[doc.Filename] {
			return nil, fmt.Errorf("duplicate file name %s", doc.Filename)
		}
		seen[doc.Filename] = true

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     doc.Filename,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", doc.Filename, err)
		}
		if _, err := w.Write(doc.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", doc.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unbundle reads the documents back out of a zip produced by Bundle
func Unbundle(data []byte) ([]form.GeneratedDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	docs := make([]form.GeneratedDocument, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		var content bytes.Buffer
		_, err = content.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		docs = append(docs, form.GeneratedDocument{Filename: f.Name, Content: content.Bytes()})
	}
	return docs, nil
}
