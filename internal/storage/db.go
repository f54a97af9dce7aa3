package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"builtwith/internal"
)

// TimeLayout is how run timestamps are stored. It is fixed width so that
// text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

const defaultListLimit = 20

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "enable WAL")
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  command TEXT NOT NULL,
  domain TEXT,
  source TEXT NOT NULL,
  model TEXT,
  records INTEGER NOT NULL DEFAULT 0,
  analysis INTEGER NOT NULL DEFAULT 0,
  output TEXT,
  status TEXT NOT NULL,
  error TEXT,
  startedAt TEXT NOT NULL,
  durationMs INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_startedAt ON runs(startedAt);
CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(run internal.RunRecord) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	_, err := d.conn.Exec(`
INSERT INTO runs (id, command, domain, source, model, records, analysis, output, status, error, startedAt, durationMs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Command, run.Domain, string(run.Source), run.Model, run.Records, run.Analysis,
		run.Output, string(run.Status), run.Error, run.StartedAt, run.DurationMs)
	return errors.Wrapf(err, "insert run %s", run.ID)
}

// ListRuns returns up to limit runs, newest first. A non-positive limit means
// the default of 20.
func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := d.conn.Query(`
SELECT id, command, COALESCE(domain, ''), source, COALESCE(model, ''), records, analysis,
       COALESCE(output, ''), status, COALESCE(error, ''), startedAt, durationMs
FROM runs
ORDER BY startedAt DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	out := []internal.RunRecord{}
	for rows.Next() {
		var r internal.RunRecord
		var source, status string
		if err := rows.Scan(
			&r.ID, &r.Command, &r.Domain, &source, &r.Model, &r.Records, &r.Analysis,
			&r.Output, &status, &r.Error, &r.StartedAt, &r.DurationMs,
		); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.Source = internal.ProfileSource(source)
		r.Status = internal.RunStatus(status)
		out = append(out, r)
	}

	return out, rows.Err()
}
