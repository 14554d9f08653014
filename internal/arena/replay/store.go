// Package replay persists recorded games and plays them back. A
// replay is the ordered list of per-tick event batches; re-folding
// them reproduces the game exactly, so nothing else is stored.
package replay

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/luarena/luarena/internal/arena/event"
	"github.com/luarena/luarena/internal/arena/replay/migrations"
	"github.com/luarena/luarena/internal/platform/storage/sqlitemigrate"
)

// Summary describes one stored replay.
type Summary struct {
	ID        uuid.UUID
	CreatedAt time.Time
	StepCount int
}

// Store provides SQLite-backed persistence for replays.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a replay store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save writes one recorded game and returns its replay id. Batches
// are stored in emission order, one row per tick.
func (s *Store) Save(ctx context.Context, history []event.StepEvents) (uuid.UUID, error) {
	if len(history) == 0 {
		return uuid.Nil, fmt.Errorf("history is empty")
	}

	id := uuid.New()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO replays (id, created_at, step_count) VALUES (?, ?, ?)`,
		id.String(),
		time.Now().UTC().UnixMilli(),
		len(history),
	); err != nil {
		_ = tx.Rollback()
		return uuid.Nil, fmt.Errorf("insert replay: %w", err)
	}
	for seq, batch := range history {
		payload, err := event.MarshalStepEvents(batch)
		if err != nil {
			_ = tx.Rollback()
			return uuid.Nil, fmt.Errorf("encode step %d: %w", seq, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO replay_steps (replay_id, seq, events) VALUES (?, ?, ?)`,
			id.String(),
			seq,
			payload,
		); err != nil {
			_ = tx.Rollback()
			return uuid.Nil, fmt.Errorf("insert step %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit replay: %w", err)
	}
	return id, nil
}

// Load reads one replay's batches in emission order.
func (s *Store) Load(ctx context.Context, id uuid.UUID) ([]event.StepEvents, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT events FROM replay_steps WHERE replay_id = ? ORDER BY seq`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var history []event.StepEvents
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		batch, err := event.UnmarshalStepEvents(payload)
		if err != nil {
			return nil, fmt.Errorf("decode step %d: %w", len(history), err)
		}
		history = append(history, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("replay %s not found", id)
	}
	return history, nil
}

// List returns stored replays, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, created_at, step_count FROM replays ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query replays: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var raw string
		var createdAt int64
		var summary Summary
		if err := rows.Scan(&raw, &createdAt, &summary.StepCount); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		summary.ID, err = uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse replay id %q: %w", raw, err)
		}
		summary.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read replays: %w", err)
	}
	return summaries, nil
}

// Latest returns the most recently stored replay id.
func (s *Store) Latest(ctx context.Context) (uuid.UUID, error) {
	var raw string
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id FROM replays ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, fmt.Errorf("no replays stored")
		}
		return uuid.Nil, fmt.Errorf("query latest replay: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse replay id %q: %w", raw, err)
	}
	return id, nil
}
