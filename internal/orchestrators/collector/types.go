package collector

import "github.com/KirkDiggler/rpg-combat/internal/entities/combat"

// CollectInput defines the request for one collector run
type CollectInput struct {
	BattleID string
}

// AITurnRequest asks the AI task to answer targets the bot has no pending
// exchange against
type AITurnRequest struct {
	BotID          string   `json:"bot_id"`
	MissingTargets []string `json:"missing_targets"`
}

// CollectOutput defines the result of one collector run
type CollectOutput struct {
	// Active is false when the battle has already ended; nothing else is set.
	Active bool

	// Actions are the actions pushed onto the queue, instants and items
	// first, then paired exchanges, then forced ones.
	Actions []*combat.CombatAction

	AIRequests []AITurnRequest

	// BatchSize is the advised size of the next executor run.
	BatchSize int

	// Pending is the action queue length after the transfer.
	Pending int

	// Backpressure is set when matchmaking was skipped because the queue
	// was over its threshold.
	Backpressure bool

	// Winner is a team name or combat.WinnerDraw once the battle is decided.
	// It is only computed when the action queue is empty.
	Winner string
}

// Decided reports whether the run found a winner
func (o *CollectOutput) Decided() bool {
	return o.Winner != ""
}
