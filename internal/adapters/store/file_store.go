package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps one delimited text file per series key. Appends go to the
// end of the file; rewrites replace it atomically through a rename.
type FileStore struct {
	dir string
	obs ports.Observability

	mu   sync.Mutex
	keys map[string]chan struct{}
}

func NewFileStore(dir string, obs ports.Observability) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if obs == nil {
		obs = ports.NopObservability{}
	}
	return &FileStore{
		dir:  dir,
		obs:  obs,
		keys: make(map[string]chan struct{}),
	}, nil
}

func (s *FileStore) Name() string { return "file" }

// Path returns the file backing key.
func (s *FileStore) Path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+".csv"), nil
}

// Lock serializes writers of key inside this process and across processes
// sharing the directory.
func (s *FileStore) Lock(ctx context.Context, key string) (ports.Unlocker, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	km, ok := s.keys[key]
	if !ok {
		km = make(chan struct{}, 1)
		s.keys[key] = km
	}
	s.mu.Unlock()

	select {
	case km <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		<-km
		if err == nil {
			err = fmt.Errorf("lock %s: not acquired", key)
		}
		return nil, err
	}

	var once sync.Once
	return func() error {
		var uerr error
		once.Do(func() {
			uerr = fl.Unlock()
			<-km
		})
		return uerr
	}, nil
}

func (s *FileStore) Load(ctx context.Context, key string, opts ports.LoadOptions) (*domain.Series, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	series := &domain.Series{Metric: key}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return series, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || line == columnHeader {
			continue
		}
		p, err := decodeLine(line)
		if err != nil {
			s.warn(series, &domain.ParseError{Key: key, Line: lineNo, Content: line, Err: err})
			continue
		}
		series.Points = append(series.Points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("series %s scan: %w", key, err)
	}

	if opts.SortByDate {
		series.SortByDate()
	}
	return series, nil
}

func (s *FileStore) Write(ctx context.Context, key string, points []domain.SummaryPoint, mode ports.WriteMode) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	switch mode {
	case ports.WriteAppend:
		return s.append(key, path, points)
	case ports.WriteRewrite:
		return s.rewrite(key, path, domain.Normalize(points))
	default:
		return fmt.Errorf("series %s: unknown write mode %d", key, mode)
	}
}

func (s *FileStore) append(key, path string, points []domain.SummaryPoint) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := s.repairTail(key, f)
	if err != nil {
		return err
	}
	if _, err := f.Seek(size, io.SeekStart); err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if size == 0 {
		if _, err := w.WriteString(fileHeader(key)); err != nil {
			return err
		}
	}
	for _, p := range points {
		if _, err := w.WriteString(encodeLine(p) + "\n"); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// repairTail truncates a trailing line left without its newline by an
// interrupted write and returns the resulting file size.
func (s *FileStore) repairTail(key string, f *os.File) (int64, error) {
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := stat.Size()
	if size == 0 {
		return 0, nil
	}

	var last [1]byte
	if _, err := f.ReadAt(last[:], size-1); err != nil {
		return 0, err
	}
	if last[0] == '\n' {
		return size, nil
	}

	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil {
		return 0, err
	}
	keep := int64(bytes.LastIndexByte(data, '\n') + 1)
	if err := f.Truncate(keep); err != nil {
		return 0, err
	}
	s.obs.LogWarn("series_torn_line_truncated",
		ports.Field{Key: "key", Value: key},
		ports.Field{Key: "content", Value: string(data[keep:])})
	return keep, nil
}

func (s *FileStore) rewrite(key, path string, points []domain.SummaryPoint) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(fileHeader(key)); err != nil {
		tmp.Close()
		return err
	}
	for _, p := range points {
		if _, err := w.WriteString(encodeLine(p) + "\n"); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (s *FileStore) warn(series *domain.Series, perr *domain.ParseError) {
	series.Warnings = append(series.Warnings, domain.ParseWarning{
		Line:    perr.Line,
		Content: perr.Content,
		Reason:  perr.Err.Error(),
	})
	s.obs.LogWarn("series_line_skipped",
		ports.Field{Key: "key", Value: perr.Key},
		ports.Field{Key: "line", Value: perr.Line},
		ports.Field{Key: "content", Value: perr.Content},
		ports.Field{Key: "reason", Value: perr.Err.Error()})
	s.obs.IncCounter(ports.MetricParseWarnings, 1)
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid series key %q", key)
	}
	return nil
}

var _ ports.SeriesStore = (*FileStore)(nil)
