package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

const alarmFileLayout = "20060102150405"

// FileArchive writes each alarm payload to <dir>/<key>/alarm_<timestamp>.txt.
type FileArchive struct {
	dir string
}

func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir}
}

func (a *FileArchive) Save(ctx context.Context, key string, rec domain.AlarmRecord, payload []byte) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(a.dir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "alarm_"+rec.Timestamp.UTC().Format(alarmFileLayout)+".txt")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var _ ports.AlarmArchive = (*FileArchive)(nil)
