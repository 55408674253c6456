package ports

import (
	"context"

	"github.com/ghalamif/QCFlow/internal/domain"
)

// AlarmArchive persists a rendered alarm payload and returns a reference to it.
type AlarmArchive interface {
	Save(ctx context.Context, key string, rec domain.AlarmRecord, payload []byte) (string, error)
}
