package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive/migrations"
)

const errBattleIDEmpty = "battle ID cannot be empty"

// Config holds the dependencies for the sqlite archive
type Config struct {
	Path  string
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", strings.TrimSpace(cfg.Path), vb)
	return vb.Build()
}

var _ Repository = (*Store)(nil)

// Store is the sqlite-backed archive
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Open opens the archive database and applies migrations
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	dsn := filepath.Clean(cfg.Path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to open archive")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.StoreUnavailable(err, "failed to ping archive")
	}
	// one writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := applyMigrations(ctx, db, migrations.FS, clk); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, clock: clk}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveBattle(ctx context.Context, input SaveBattleInput) (*SaveBattleOutput, error) {
	if input.Meta == nil || input.Meta.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	data, err := json.Marshal(input.Meta)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal meta")
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO battles (battle_id, seed, winner, corrupted, exchange_counter, meta_json, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (battle_id) DO UPDATE SET
    winner = excluded.winner,
    corrupted = excluded.corrupted,
    exchange_counter = excluded.exchange_counter,
    meta_json = excluded.meta_json,
    finished_at = excluded.finished_at
`,
		input.Meta.BattleID,
		input.Meta.Seed,
		input.Meta.Winner,
		boolToInt(input.Meta.Corrupted),
		input.Meta.ExchangeCounter,
		string(data),
		s.clock.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to save battle")
	}
	return &SaveBattleOutput{}, nil
}

func (s *Store) GetBattle(ctx context.Context, input GetBattleInput) (*GetBattleOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	var (
		data       string
		finishedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT meta_json, finished_at FROM battles WHERE battle_id = ?", input.BattleID,
	).Scan(&data, &finishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("battle %s is not archived", input.BattleID)
		}
		return nil, errors.StoreUnavailable(err, "failed to read battle")
	}

	var meta combat.BattleMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal archived meta")
	}
	return &GetBattleOutput{Summary: &Summary{Meta: &meta, FinishedAt: time.UnixMilli(finishedAt).UTC()}}, nil
}

func (s *Store) AppendLog(ctx context.Context, input AppendLogInput) (*AppendLogOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.FirstSeq < 0 {
		return nil, errors.InvalidArgument("first sequence must be >= 0")
	}
	if len(input.Entries) == 0 {
		return &AppendLogOutput{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to begin log append")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO battle_log (battle_id, seq, exchange_counter, action_id, entry_json)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to prepare log append")
	}
	defer func() { _ = stmt.Close() }()

	stored := 0
	for i, entry := range input.Entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal log entry %s", entry.ActionID)
		}
		res, err := stmt.ExecContext(ctx, input.BattleID, input.FirstSeq+i, entry.ExchangeCounter, entry.ActionID, string(data))
		if err != nil {
			return nil, errors.StoreUnavailable(err, "failed to append log entry")
		}
		if n, err := res.RowsAffected(); err == nil {
			stored += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to commit log append")
	}
	return &AppendLogOutput{Stored: stored}, nil
}

func (s *Store) ListLog(ctx context.Context, input ListLogInput) (*ListLogOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Offset < 0 || input.Limit <= 0 {
		return nil, errors.InvalidArgument("offset must be >= 0 and limit positive")
	}

	out := &ListLogOutput{}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM battle_log WHERE battle_id = ?", input.BattleID,
	).Scan(&out.Total); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to count log entries")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT entry_json FROM battle_log
WHERE battle_id = ?
ORDER BY seq ASC
LIMIT ? OFFSET ?`, input.BattleID, input.Limit, input.Offset)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to list log entries")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to scan log entry")
		}
		var entry combat.LogEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal log entry")
		}
		out.Entries = append(out.Entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to iterate log entries")
	}
	return out, nil
}

func (s *Store) Checkpoint(ctx context.Context, input CheckpointInput) (*CheckpointOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to begin checkpoint")
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock.Now().UTC().UnixMilli()
	stored := 0
	for _, a := range input.Actors {
		if !a.Meta.IsAlive {
			continue
		}
		data, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal actor %s", a.CharID)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO actor_checkpoints (battle_id, actor_id, tick, snapshot_json, created_at)
VALUES (?, ?, ?, ?, ?)`, input.BattleID, a.CharID, input.Tick, string(data), now); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to store checkpoint")
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to commit checkpoint")
	}
	return &CheckpointOutput{Stored: stored}, nil
}

func (s *Store) LatestCheckpoint(ctx context.Context, input LatestCheckpointInput) (*LatestCheckpointOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	var tick sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		"SELECT MAX(tick) FROM actor_checkpoints WHERE battle_id = ?", input.BattleID,
	).Scan(&tick); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to find checkpoint")
	}
	if !tick.Valid {
		return nil, errors.NotFoundf("battle %s has no checkpoint", input.BattleID)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT snapshot_json FROM actor_checkpoints
WHERE battle_id = ? AND tick = ?
ORDER BY actor_id ASC`, input.BattleID, tick.Int64)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read checkpoint")
	}
	defer func() { _ = rows.Close() }()

	out := &LatestCheckpointOutput{Tick: tick.Int64}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to scan checkpoint")
		}
		var a combat.ActorSnapshot
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal checkpoint")
		}
		out.Actors = append(out.Actors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to iterate checkpoint")
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
