// Package battle provides the hot-cache persistence of running battles:
// the control record, actor snapshots, pending intents, required-target
// queues, the action queue, timeout signals and the battle log.
package battle

//go:generate mockgen -destination=mock/mock_repository.go -package=battlemock github.com/KirkDiggler/rpg-combat/internal/repositories/battle Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// Repository defines the interface for battle state persistence
type Repository interface {
	// CreateBattle seeds a battle's meta, snapshots and target queues
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the battle already exists
	CreateBattle(ctx context.Context, input CreateBattleInput) (*CreateBattleOutput, error)

	// GetMeta returns the control record
	// Returns errors.NotFound with reason INVALID_BATTLE if it doesn't exist
	GetMeta(ctx context.Context, input GetMetaInput) (*GetMetaOutput, error)

	// LoadContext returns the meta and the snapshots of the requested actors,
	// or of every actor when ActorIDs is empty
	LoadContext(ctx context.Context, input LoadContextInput) (*LoadContextOutput, error)

	// RegisterIntent writes an intent unless the actor already holds one in
	// the same (strategy, target) slot, in which case the existing move id is
	// returned and nothing is written
	RegisterIntent(ctx context.Context, input RegisterIntentInput) (*RegisterIntentOutput, error)

	// ListIntents returns the pending intents of the given actors in one read
	ListIntents(ctx context.Context, input ListIntentsInput) (*ListIntentsOutput, error)

	// GetTargetQueues returns the required-target queue of each given bot
	GetTargetQueues(ctx context.Context, input GetTargetQueuesInput) (*GetTargetQueuesOutput, error)

	// AddRequiredTarget appends a target to a bot's queue; duplicates are ignored
	AddRequiredTarget(ctx context.Context, input AddRequiredTargetInput) (*AddRequiredTargetOutput, error)

	// TransferActions atomically pushes actions, deletes the intents they
	// consumed and removes the given timeout signals. Returns errors.Aborted
	// if any consumed intent is gone, in which case nothing is written.
	TransferActions(ctx context.Context, input TransferActionsInput) (*TransferActionsOutput, error)

	// PeekActions returns up to Limit actions from the head of the queue
	// without removing them, plus the queue length
	PeekActions(ctx context.Context, input PeekActionsInput) (*PeekActionsOutput, error)

	// CommitBatch is the executor's commit point: it writes snapshots and
	// meta, appends log entries, pops the consumed actions and prunes target
	// queues in one transaction
	CommitBatch(ctx context.Context, input CommitBatchInput) (*CommitBatchOutput, error)

	// AddSignal records a timeout signal for the next collector run
	AddSignal(ctx context.Context, input AddSignalInput) (*AddSignalOutput, error)

	// ListSignals reads pending timeout signals without clearing them; they
	// are consumed by the TransferActions that acts on them
	ListSignals(ctx context.Context, input ListSignalsInput) (*ListSignalsOutput, error)

	// ListLog returns a slice of the battle log and its total length
	ListLog(ctx context.Context, input ListLogInput) (*ListLogOutput, error)

	// Finalize ends the battle in one atomic write. Only the first call for a
	// battle returns First=true; later calls write nothing.
	// Returns errors.NotFound with reason INVALID_BATTLE if it doesn't exist
	Finalize(ctx context.Context, input FinalizeInput) (*FinalizeOutput, error)

	// IsAnnounced reports whether the result of a finished battle has been
	// delivered
	IsAnnounced(ctx context.Context, input IsAnnouncedInput) (*IsAnnouncedOutput, error)

	// MarkAnnounced records that the result has been delivered
	MarkAnnounced(ctx context.Context, input MarkAnnouncedInput) (*MarkAnnouncedOutput, error)

	// ListBattleIDs returns the ids of every battle in the cache
	ListBattleIDs(ctx context.Context, input ListBattleIDsInput) (*ListBattleIDsOutput, error)
}

// CreateBattleInput defines the request for seeding a battle
type CreateBattleInput struct {
	Meta    *combat.BattleMeta
	Actors  []*combat.ActorSnapshot
	Targets map[string][]string
}

// CreateBattleOutput defines the response for seeding a battle
type CreateBattleOutput struct{}

// GetMetaInput defines the request for reading a battle's meta
type GetMetaInput struct {
	BattleID string
}

// GetMetaOutput defines the response for reading a battle's meta
type GetMetaOutput struct {
	Meta *combat.BattleMeta
}

// LoadContextInput defines the request for loading a battle context
type LoadContextInput struct {
	BattleID string
	ActorIDs []string
}

// LoadContextOutput defines the response for loading a battle context
type LoadContextOutput struct {
	Meta   *combat.BattleMeta
	Actors map[string]*combat.ActorSnapshot
}

// RegisterIntentInput defines the request for writing an intent
type RegisterIntentInput struct {
	BattleID string
	Move     *combat.CombatMove
}

// RegisterIntentOutput defines the response for writing an intent
type RegisterIntentOutput struct {
	MoveID  string
	Created bool
}

// ListIntentsInput defines the request for reading pending intents
type ListIntentsInput struct {
	BattleID string
	ActorIDs []string
}

// ListIntentsOutput maps actor id to its intents sorted by move id
type ListIntentsOutput struct {
	Intents map[string][]*combat.CombatMove
}

// GetTargetQueuesInput defines the request for reading target queues
type GetTargetQueuesInput struct {
	BattleID string
	BotIDs   []string
}

// GetTargetQueuesOutput maps bot id to its sorted required targets
type GetTargetQueuesOutput struct {
	Targets map[string][]string
}

// AddRequiredTargetInput defines the request for queueing a target
type AddRequiredTargetInput struct {
	BattleID string
	BotID    string
	TargetID string
}

// AddRequiredTargetOutput defines the response for queueing a target
type AddRequiredTargetOutput struct {
	Added bool
}

// TransferActionsInput defines the request for moving intents to the action queue
type TransferActionsInput struct {
	BattleID string
	Actions  []*combat.CombatAction

	// Signals are removed in the same write as the actions are pushed
	Signals []combat.Signal
}

// TransferActionsOutput reports what the transfer did. Pushed counts the
// moves carried by the pushed actions.
type TransferActionsOutput struct {
	Pushed  int
	Deleted int
}

// PeekActionsInput defines the request for reading the queue head
type PeekActionsInput struct {
	BattleID string
	Limit    int
}

// PeekActionsOutput defines the response for reading the queue head
type PeekActionsOutput struct {
	Actions []*combat.CombatAction
	Pending int
}

// TargetRemoval drops a target from a bot's required-target queue
type TargetRemoval struct {
	BotID    string
	TargetID string
}

// CommitBatchInput defines the request for committing an executor batch
type CommitBatchInput struct {
	BattleID        string
	Meta            *combat.BattleMeta
	Actors          []*combat.ActorSnapshot
	Entries         []*combat.LogEntry
	ConsumedActions int
	TargetRemovals  []TargetRemoval
}

// CommitBatchOutput defines the response for committing an executor batch
type CommitBatchOutput struct {
	LogLength int
}

// AddSignalInput defines the request for recording a timeout signal
type AddSignalInput struct {
	BattleID string
	Signal   combat.Signal
}

// AddSignalOutput defines the response for recording a timeout signal
type AddSignalOutput struct{}

// ListSignalsInput defines the request for reading timeout signals
type ListSignalsInput struct {
	BattleID string
}

// ListSignalsOutput holds the pending signals sorted by (char id, move id)
type ListSignalsOutput struct {
	Signals []combat.Signal
}

// ListLogInput defines the request for reading the battle log
type ListLogInput struct {
	BattleID string
	Offset   int
	Limit    int
}

// ListLogOutput defines the response for reading the battle log
type ListLogOutput struct {
	Entries []*combat.LogEntry
	Total   int
}

// FinalizeInput defines the request for ending a battle. Entry is an
// optional system log entry appended with the final meta.
type FinalizeInput struct {
	Meta  *combat.BattleMeta
	Entry *combat.LogEntry
}

// FinalizeOutput defines the response for ending a battle
type FinalizeOutput struct {
	First bool
}

// IsAnnouncedInput defines the request for checking result delivery
type IsAnnouncedInput struct {
	BattleID string
}

// IsAnnouncedOutput defines the response for checking result delivery
type IsAnnouncedOutput struct {
	Announced bool
}

// MarkAnnouncedInput defines the request for recording result delivery
type MarkAnnouncedInput struct {
	BattleID string
}

// MarkAnnouncedOutput defines the response for recording result delivery
type MarkAnnouncedOutput struct{}

// ListBattleIDsInput defines the request for listing battles
type ListBattleIDsInput struct{}

// ListBattleIDsOutput defines the response for listing battles
type ListBattleIDsOutput struct {
	BattleIDs []string
}
