package qcflow

import (
	"io"

	"github.com/ghalamif/QCFlow/internal/adapters/source"
	"github.com/ghalamif/QCFlow/internal/adapters/store"
)

// JSONSource decodes a stream of histogram objects; see NewJSONSource.
type JSONSource = source.JSONSource

// NewJSONSource reads concatenated histogram JSON objects from r. metric
// fills records that carry no metric name.
func NewJSONSource(r io.Reader, metric string) *JSONSource {
	return source.NewJSONSource(r, metric)
}

// OpenJSONSource opens a histogram JSON file. Close it when done.
func OpenJSONSource(path, metric string) (*JSONSource, error) {
	return source.OpenJSONFile(path, metric)
}

// FormatPoint renders p as one line of the file store's series format.
func FormatPoint(p SummaryPoint) string {
	return store.FormatPoint(p)
}
