package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func testPoint(d int, np int64, central float64) domain.SummaryPoint {
	return domain.SummaryPoint{
		Timestamp:   day(d),
		SampleCount: np,
		Low:         domain.Float(central - 0.1),
		Central:     domain.Float(central),
		High:        domain.Float(central + 0.1),
	}
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return s
}

func TestFileStoreAppendKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	if err := s.Write(ctx, "dBZ_bias", []domain.SummaryPoint{testPoint(3, 10, 0.3)}, ports.WriteAppend); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Write(ctx, "dBZ_bias", []domain.SummaryPoint{testPoint(1, 20, 0.1)}, ports.WriteAppend); err != nil {
		t.Fatalf("append: %v", err)
	}

	series, err := s.Load(ctx, "dBZ_bias", ports.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if series.Len() != 2 || !series.Points[0].Timestamp.Equal(day(3)) || !series.Points[1].Timestamp.Equal(day(1)) {
		t.Fatalf("expected insertion order, got %+v", series.Points)
	}

	sorted, err := s.Load(ctx, "dBZ_bias", ports.LoadOptions{SortByDate: true})
	if err != nil {
		t.Fatalf("load sorted: %v", err)
	}
	if !sorted.Points[0].Timestamp.Equal(day(1)) {
		t.Fatalf("expected sorted series to start at day 1, got %v", sorted.Points[0].Timestamp)
	}
}

func TestFileStoreRewriteNormalizes(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	points := []domain.SummaryPoint{
		testPoint(2, 10, 0.2),
		testPoint(1, 10, 0.1),
		testPoint(2, 30, 0.25),
		{Timestamp: day(4)},
	}
	if err := s.Write(ctx, "zdr", points, ports.WriteRewrite); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	series, err := s.Load(ctx, "zdr", ports.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := domain.Normalize(points)
	if series.Len() != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), series.Len())
	}
	for i := range want {
		if !series.Points[i].Equal(want[i]) {
			t.Fatalf("point %d: expected %+v, got %+v", i, want[i], series.Points[i])
		}
	}
	if series.Points[1].SampleCount != 30 {
		t.Fatalf("expected last write to win for duplicate timestamp, got np=%d", series.Points[1].SampleCount)
	}
	if series.Points[2].Central != nil {
		t.Fatalf("expected masked quantiles for empty event")
	}
}

func TestFileStoreMissingSeriesIsEmpty(t *testing.T) {
	s := newTestFileStore(t)
	series, err := s.Load(context.Background(), "absent", ports.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if series.Len() != 0 || len(series.Warnings) != 0 {
		t.Fatalf("expected empty series, got %+v", series)
	}
}

func TestFileStoreSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	if err := s.Write(ctx, "rhohv", []domain.SummaryPoint{testPoint(1, 5, 0.9)}, ports.WriteAppend); err != nil {
		t.Fatalf("append: %v", err)
	}

	path, _ := s.Path("rhohv")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.WriteString("not-a-date,5,1,1,1\n")
	f.WriteString("2026-10-02T00:00:00Z,5,1\n")
	f.Close()

	if err := s.Write(ctx, "rhohv", []domain.SummaryPoint{testPoint(3, 7, 0.95)}, ports.WriteAppend); err != nil {
		t.Fatalf("append: %v", err)
	}

	series, err := s.Load(ctx, "rhohv", ports.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 valid points, got %d", series.Len())
	}
	if len(series.Warnings) != 2 {
		t.Fatalf("expected 2 parse warnings, got %+v", series.Warnings)
	}
	if !strings.HasPrefix(series.Warnings[0].Content, "not-a-date") {
		t.Fatalf("unexpected warning %+v", series.Warnings[0])
	}
}

func TestFileStoreTruncatesTornLine(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	if err := s.Write(ctx, "phidp", []domain.SummaryPoint{testPoint(1, 5, 1)}, ports.WriteAppend); err != nil {
		t.Fatalf("append: %v", err)
	}

	path, _ := s.Path("phidp")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.WriteString("2026-10-02T00:00:00Z,5,0.")
	f.Close()

	if err := s.Write(ctx, "phidp", []domain.SummaryPoint{testPoint(3, 5, 3)}, ports.WriteAppend); err != nil {
		t.Fatalf("append after torn line: %v", err)
	}

	series, err := s.Load(ctx, "phidp", ports.LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if series.Len() != 2 || len(series.Warnings) != 0 {
		t.Fatalf("expected torn line dropped cleanly, got %d points %d warnings", series.Len(), len(series.Warnings))
	}
}

func TestFileStoreLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	unlock, err := s.Lock(ctx, "dBZ_bias")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := s.Lock(ctx, "dBZ_bias")
		if err == nil {
			u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatalf("second lock acquired while first was held")
	case <-time.After(100 * time.Millisecond):
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := unlock(); err != nil {
		t.Fatalf("second unlock should be a no-op: %v", err)
	}

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatalf("second lock not acquired after release")
	}
}

func TestFileStoreLockHonoursContext(t *testing.T) {
	s := newTestFileStore(t)

	unlock, err := s.Lock(context.Background(), "dBZ_bias")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.Lock(ctx, "dBZ_bias")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("lock wait ignored the context deadline")
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s := newTestFileStore(t)
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if _, err := s.Load(context.Background(), key, ports.LoadOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
