// Package ingest turns source files into stored, chunked, vectorized
// documents.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Reader extracts plain text from one source format.
type Reader interface {
	// Extensions returns the lowercase file extensions this reader handles.
	Extensions() []string

	// Read extracts the document text from raw file bytes.
	Read(name string, data []byte) (string, error)
}

// PlainTextReader passes .txt and .md content through unchanged. Markdown
// markup is left in place: it tokenizes harmlessly and keeping the bytes
// untouched preserves citation offsets against the original file.
type PlainTextReader struct{}

// Extensions implements Reader.
func (PlainTextReader) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Read implements Reader.
func (PlainTextReader) Read(name string, data []byte) (string, error) {
	return string(data), nil
}

// readerFor finds the reader for a file path.
func readerFor(readers []Reader, path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, r := range readers {
		for _, e := range r.Extensions() {
			if e == ext {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("no reader for %q files", ext)
}

// DefaultReaders returns the built-in format readers.
func DefaultReaders() []Reader {
	return []Reader{
		PlainTextReader{},
		HTMLReader{},
	}
}
