package turn

import (
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
)

// View names what GetBattleView returns
type View string

const (
	ViewSnapshot View = "snapshot"
	ViewLog      View = "log"
	ViewHistory  View = "history"
)

// Views lists every valid view
var Views = []string{string(ViewSnapshot), string(ViewLog), string(ViewHistory)}

// PageSize is the number of log entries per page
const PageSize = 50

// CreateBattleInput defines the request for opening a battle
type CreateBattleInput struct {
	Meta   *combat.BattleMeta
	Actors []*combat.ActorSnapshot
	// Targets seeds the bots' required-target queues.
	Targets map[string][]string
}

// CreateBattleOutput defines the response for opening a battle
type CreateBattleOutput struct {
	BattleID string
}

// RegisterMoveInput defines the request for submitting one intent
type RegisterMoveInput struct {
	BattleID string
	CharID   string
	Strategy combat.Strategy
	Payload  combat.PayloadInput
}

// RegisterMoveOutput defines the response for submitting one intent.
// Created is false when an identical intent was already pending.
type RegisterMoveOutput struct {
	MoveID  string
	Created bool
}

// MoveRequest is one entry of a batch submission
type MoveRequest struct {
	Strategy combat.Strategy
	Payload  combat.PayloadInput
}

// RegisterMovesBatchInput defines the request for submitting many intents
// of one actor
type RegisterMovesBatchInput struct {
	BattleID string
	CharID   string
	Moves    []MoveRequest
}

// RegisterMovesBatchOutput holds the move ids in request order
type RegisterMovesBatchOutput struct {
	MoveIDs []string
}

// GetBattleViewInput defines the request for reading a battle
type GetBattleViewInput struct {
	BattleID string
	View     View
	// Page starts at 1; zero means the first page.
	Page int
}

// GetBattleViewOutput defines the response for reading a battle. Snapshot
// views fill Meta and Actors; log and history views fill Entries and Total.
type GetBattleViewOutput struct {
	Meta    *combat.BattleMeta
	Actors  []combat.PublicActor
	Entries []*combat.LogEntry
	Total   int
	Page    int
	// Summary is the archived record of a finished battle.
	Summary *archive.Summary
}
