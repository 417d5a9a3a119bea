package timescale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vol-spread-monitor/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// IndexClose is one raw daily close as fetched from a supplier. Only quotes
// are journaled, never signals: the monitor itself stays stateless.
type IndexClose struct {
	Time   time.Time
	Symbol string
	Source string
	Close  float64
}

// Writer journals fetched index closes to TimescaleDB. Optional: New
// returns (nil, nil) when disabled, and a nil *Writer is a no-op.
type Writer struct {
	db     *sql.DB
	log    *zap.Logger
	schema string
}

func New(cfg config.TimescaleConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("timescale dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	writer := &Writer{
		db:     db,
		log:    log,
		schema: schema,
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// WriteClose upserts one daily close. Best-effort from the caller's point of
// view: a journaling failure must never abort the run.
func (w *Writer) WriteClose(ctx context.Context, quote IndexClose) error {
	if w == nil || w.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, symbol, source, close
	) VALUES (
		$1,$2,$3,$4
	)
	ON CONFLICT (ts, symbol) DO UPDATE SET
		source = EXCLUDED.source,
		close = EXCLUDED.close`, w.table("index_closes"))
	_, err := w.db.ExecContext(ctx, query,
		quote.Time,
		quote.Symbol,
		quote.Source,
		quote.Close,
	)
	return err
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("timescale db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		symbol TEXT NOT NULL,
		source TEXT NOT NULL,
		close DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (ts, symbol)
	)`, w.table("index_closes"))); err != nil {
		return err
	}
	if err := w.exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb"); err != nil {
		if w.log != nil {
			w.log.Warn("timescale extension ensure failed", zap.Error(err))
		}
		return nil
	}
	if err := w.exec(ctx, fmt.Sprintf("SELECT create_hypertable('%s', 'ts', if_not_exists => TRUE)", w.table("index_closes"))); err != nil && w.log != nil {
		w.log.Warn("timescale index_closes hypertable create failed", zap.Error(err))
	}
	return nil
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
