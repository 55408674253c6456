package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghalamif/QCFlow/internal/domain"
)

func TestJSONSourceStream(t *testing.T) {
	input := `{"metric":"dBZ_bias","timestamp":"2026-10-18T00:00:00Z","bin_centers":[0.1,0.2],"counts":[3,4]}
{"timestamp":"2026-10-19T00:00:00Z","bin_centers":[0.1],"counts":[5]}`
	src := NewJSONSource(strings.NewReader(input), "fallback")
	ctx := context.Background()

	first, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if first.Metric != "dBZ_bias" || first.Total() != 7 {
		t.Fatalf("unexpected first record %+v", first)
	}

	second, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if second.Metric != "fallback" {
		t.Fatalf("expected fallback metric, got %q", second.Metric)
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestJSONSourceRejectsInvalidHistogram(t *testing.T) {
	input := `{"timestamp":"2026-10-19T00:00:00Z","bin_centers":[0.2,0.1],"counts":[1,1]}`
	if _, err := NewJSONSource(strings.NewReader(input), "m").Next(context.Background()); !errors.Is(err, domain.ErrInvalidHistogram) {
		t.Fatalf("expected ErrInvalidHistogram, got %v", err)
	}

	missingTS := `{"bin_centers":[0.1],"counts":[1]}`
	if _, err := NewJSONSource(strings.NewReader(missingTS), "m").Next(context.Background()); !errors.Is(err, domain.ErrInvalidHistogram) {
		t.Fatalf("expected missing timestamp to be rejected, got %v", err)
	}
}

func TestOpenJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.json")
	if err := os.WriteFile(path, []byte(`{"timestamp":"2026-10-19T00:00:00Z","bin_centers":[1],"counts":[2]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := OpenJSONFile(path, "zdr")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	rec, err := src.Next(context.Background())
	if err != nil || rec.Metric != "zdr" {
		t.Fatalf("unexpected record %+v (%v)", rec, err)
	}
}
