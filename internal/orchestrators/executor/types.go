package executor

import "github.com/KirkDiggler/rpg-combat/internal/entities/combat"

// ExecuteInput defines the request for one executor batch
type ExecuteInput struct {
	BattleID  string
	BatchSize int
}

// ExecuteOutput defines the result of one executor batch
type ExecuteOutput struct {
	// Processed is the number of actions consumed from the queue.
	Processed int

	// Remaining is the queue length after the batch.
	Remaining int

	// Entries are the log entries appended, in action order.
	Entries []*combat.LogEntry

	// Deaths are actors that died during the batch.
	Deaths []string

	// LogLength is the hot log length after the commit.
	LogLength int
}
