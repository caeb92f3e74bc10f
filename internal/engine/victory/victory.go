// Package victory decides whether a battle is over.
package victory

import (
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// Result is the outcome of a check.
type Result struct {
	Decided bool
	// Winner is a team name or combat.WinnerDraw when Decided.
	Winner string
}

// Check partitions teams into those with a living member and those without.
// One team left wins; none left is a draw; otherwise the battle continues.
func Check(meta *combat.BattleMeta) Result {
	var alive []string
	for _, team := range meta.TeamNames() {
		for _, id := range meta.Teams[team] {
			if !meta.IsDead(id) {
				alive = append(alive, team)
				break
			}
		}
	}

	switch len(alive) {
	case 0:
		return Result{Decided: true, Winner: combat.WinnerDraw}
	case 1:
		return Result{Decided: true, Winner: alive[0]}
	default:
		return Result{}
	}
}
