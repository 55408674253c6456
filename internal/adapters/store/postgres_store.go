package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

const (
	DefaultPointsTable = "monitoring_points"
	DefaultAlarmsTable = "monitoring_alarms"
)

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PostgresStore keeps every series in one table keyed by metric. Insertion
// order is the bigserial seq column.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = DefaultPointsTable
	}
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (p *PostgresStore) Name() string { return "postgres" }

// EnsureSchema creates the points table when it does not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+p.table+
		" (metric TEXT NOT NULL, seq BIGSERIAL PRIMARY KEY, ts TIMESTAMPTZ NOT NULL, np BIGINT NOT NULL,"+
		" central_q DOUBLE PRECISION, low_q DOUBLE PRECISION, high_q DOUBLE PRECISION)")
	return err
}

func (p *PostgresStore) Load(ctx context.Context, key string, opts ports.LoadOptions) (*domain.Series, error) {
	order := "seq"
	if opts.SortByDate {
		order = "ts, seq"
	}
	rows, err := p.db.QueryContext(ctx,
		"SELECT ts, np, central_q, low_q, high_q FROM "+p.table+" WHERE metric = $1 ORDER BY "+order, key)
	if err != nil {
		return nil, fmt.Errorf("series %s query: %w", key, err)
	}
	defer rows.Close()

	series := &domain.Series{Metric: key}
	for rows.Next() {
		var (
			pt                 domain.SummaryPoint
			central, low, high sql.NullFloat64
		)
		if err := rows.Scan(&pt.Timestamp, &pt.SampleCount, &central, &low, &high); err != nil {
			return nil, fmt.Errorf("series %s scan: %w", key, err)
		}
		pt.Timestamp = pt.Timestamp.UTC()
		if pt.SampleCount > 0 {
			pt.Central, pt.Low, pt.High = nullable(central), nullable(low), nullable(high)
		}
		series.Points = append(series.Points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("series %s rows: %w", key, err)
	}
	return series, nil
}

func (p *PostgresStore) Write(ctx context.Context, key string, points []domain.SummaryPoint, mode ports.WriteMode) error {
	switch mode {
	case ports.WriteAppend:
		if len(points) == 0 {
			return nil
		}
		query, args := p.insert(key, points)
		_, err := p.db.ExecContext(ctx, query, args...)
		return err
	case ports.WriteRewrite:
		return p.rewrite(ctx, key, domain.Normalize(points))
	default:
		return fmt.Errorf("series %s: unknown write mode %d", key, mode)
	}
}

func (p *PostgresStore) rewrite(ctx context.Context, key string, points []domain.SummaryPoint) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+p.table+" WHERE metric = $1", key); err != nil {
		tx.Rollback()
		return err
	}
	if len(points) > 0 {
		query, args := p.insert(key, points)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (p *PostgresStore) insert(key string, points []domain.SummaryPoint) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.table)
	b.WriteString(" (metric, ts, np, central_q, low_q, high_q) VALUES ")

	args := make([]any, 0, len(points)*6)
	for i, pt := range points {
		if i > 0 {
			b.WriteString(",")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args,
			key,
			pt.Timestamp.UTC(),
			pt.SampleCount,
			nullFloat(pt.Central),
			nullFloat(pt.Low),
			nullFloat(pt.High),
		)
	}
	return b.String(), args
}

// Lock takes a session advisory lock on a dedicated connection, so the lock
// and its release always run on the same backend.
func (p *PostgresStore) Lock(ctx context.Context, key string) (ports.Unlocker, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(hashtext($1))", key); err != nil {
		conn.Close()
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}

	var once sync.Once
	return func() error {
		var uerr error
		once.Do(func() {
			_, uerr = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", key)
			if cerr := conn.Close(); uerr == nil {
				uerr = cerr
			}
		})
		return uerr
	}, nil
}

// PostgresArchive stores alarm payloads alongside their structured record.
type PostgresArchive struct {
	db    *sql.DB
	table string
}

func NewPostgresArchive(db *sql.DB, table string) *PostgresArchive {
	if table == "" {
		table = DefaultAlarmsTable
	}
	return &PostgresArchive{db: db, table: pq.QuoteIdentifier(table)}
}

func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+a.table+
		" (id TEXT PRIMARY KEY, metric TEXT NOT NULL, site TEXT, ts TIMESTAMPTZ NOT NULL,"+
		" recipients TEXT[] NOT NULL, record JSONB NOT NULL, payload TEXT NOT NULL)")
	return err
}

func (a *PostgresArchive) Save(ctx context.Context, key string, rec domain.AlarmRecord, payload []byte) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal alarm: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		"INSERT INTO "+a.table+" (id, metric, site, ts, recipients, record, payload) VALUES ($1,$2,$3,$4,$5,$6,$7)",
		rec.ID, key, rec.Site, rec.Timestamp.UTC(), pq.Array(rec.Recipients), body, string(payload))
	if err != nil {
		return "", err
	}
	return "postgres:" + rec.ID, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.Float(v.Float64)
}

var (
	_ ports.SeriesStore  = (*PostgresStore)(nil)
	_ ports.AlarmArchive = (*PostgresArchive)(nil)
)
