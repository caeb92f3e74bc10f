// Package archive provides the durable cold store of battles: one summary
// row per finished battle, every log entry, and periodic checkpoints of
// living actor snapshots for crash recovery.
package archive

//go:generate mockgen -destination=mock/mock_repository.go -package=archivemock github.com/KirkDiggler/rpg-combat/internal/repositories/archive Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// Repository defines the interface for the battle archive
type Repository interface {
	// SaveBattle upserts the summary row of a battle
	SaveBattle(ctx context.Context, input SaveBattleInput) (*SaveBattleOutput, error)

	// GetBattle returns the summary row
	// Returns errors.NotFound if the battle was never archived
	GetBattle(ctx context.Context, input GetBattleInput) (*GetBattleOutput, error)

	// AppendLog stores log entries at consecutive sequence numbers starting
	// at FirstSeq; entries already stored are left untouched
	AppendLog(ctx context.Context, input AppendLogInput) (*AppendLogOutput, error)

	// ListLog returns a slice of the archived log and its total length
	ListLog(ctx context.Context, input ListLogInput) (*ListLogOutput, error)

	// Checkpoint stores the snapshots of living actors at a battle tick
	Checkpoint(ctx context.Context, input CheckpointInput) (*CheckpointOutput, error)

	// LatestCheckpoint returns the newest checkpoint of a battle
	// Returns errors.NotFound if none exists
	LatestCheckpoint(ctx context.Context, input LatestCheckpointInput) (*LatestCheckpointOutput, error)
}

// Summary is the archived view of a battle
type Summary struct {
	Meta       *combat.BattleMeta
	FinishedAt time.Time
}

// SaveBattleInput defines the request for archiving a battle summary
type SaveBattleInput struct {
	Meta *combat.BattleMeta
}

// SaveBattleOutput defines the response for archiving a battle summary
type SaveBattleOutput struct{}

// GetBattleInput defines the request for reading a battle summary
type GetBattleInput struct {
	BattleID string
}

// GetBattleOutput defines the response for reading a battle summary
type GetBattleOutput struct {
	Summary *Summary
}

// AppendLogInput defines the request for archiving log entries
type AppendLogInput struct {
	BattleID string
	FirstSeq int
	Entries  []*combat.LogEntry
}

// AppendLogOutput reports how many entries were newly stored
type AppendLogOutput struct {
	Stored int
}

// ListLogInput defines the request for reading the archived log
type ListLogInput struct {
	BattleID string
	Offset   int
	Limit    int
}

// ListLogOutput defines the response for reading the archived log
type ListLogOutput struct {
	Entries []*combat.LogEntry
	Total   int
}

// CheckpointInput defines the request for storing a checkpoint
type CheckpointInput struct {
	BattleID string
	Tick     int64
	Actors   []*combat.ActorSnapshot
}

// CheckpointOutput defines the response for storing a checkpoint
type CheckpointOutput struct {
	Stored int
}

// LatestCheckpointInput defines the request for reading the newest checkpoint
type LatestCheckpointInput struct {
	BattleID string
}

// LatestCheckpointOutput defines the response for reading the newest checkpoint
type LatestCheckpointOutput struct {
	Tick   int64
	Actors []*combat.ActorSnapshot
}
