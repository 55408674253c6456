// Package source reads histogram records produced by the radar processing chain.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// JSONSource decodes a stream of concatenated histogram objects:
//
//	{"metric":"dBZ_bias","timestamp":"2026-10-19T00:00:00Z","bin_centers":[...],"counts":[...]}
//
// Next returns io.EOF once the stream is exhausted.
type JSONSource struct {
	dec    *json.Decoder
	closer io.Closer
	metric string
}

// NewJSONSource reads from r. metric fills records that carry no metric name.
func NewJSONSource(r io.Reader, metric string) *JSONSource {
	return &JSONSource{dec: json.NewDecoder(bufio.NewReader(r)), metric: metric}
}

func OpenJSONFile(path, metric string) (*JSONSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewJSONSource(f, metric)
	s.closer = f
	return s, nil
}

func (s *JSONSource) Next(ctx context.Context) (domain.HistogramRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.HistogramRecord{}, err
	}
	var rec domain.HistogramRecord
	if err := s.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.HistogramRecord{}, io.EOF
		}
		return domain.HistogramRecord{}, fmt.Errorf("decode histogram: %w", err)
	}
	if rec.Metric == "" {
		rec.Metric = s.metric
	}
	if rec.Timestamp.IsZero() {
		return domain.HistogramRecord{}, fmt.Errorf("%w: missing timestamp", domain.ErrInvalidHistogram)
	}
	if err := rec.Validate(); err != nil {
		return domain.HistogramRecord{}, err
	}
	return rec, nil
}

func (s *JSONSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

var _ ports.HistogramSource = (*JSONSource)(nil)
