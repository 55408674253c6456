package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghalamif/QCFlow/internal/domain"
)

func TestFileArchiveSave(t *testing.T) {
	dir := t.TempDir()
	a := NewFileArchive(dir)

	rec := domain.AlarmRecord{ID: "alarm-1", Timestamp: time.Date(2026, 10, 19, 6, 30, 5, 0, time.UTC)}
	ref, err := a.Save(context.Background(), "dBZ_bias", rec, []byte("payload"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(dir, "dBZ_bias", "alarm_20261019063005.txt"); ref != want {
		t.Fatalf("expected %s, got %s", want, ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected archived payload %q (%v)", data, err)
	}
}
