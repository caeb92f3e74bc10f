package engine

import (
	"strings"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// CheckConsistency verifies that HP, the alive flag and dead_actors agree for
// every given actor and that every temp mutation has a live owner record.
func CheckConsistency(meta *combat.BattleMeta, actors ...*combat.ActorSnapshot) error {
	var problems []string
	for _, a := range actors {
		if a == nil {
			continue
		}
		zero := a.Meta.HP == 0
		dead := !a.Meta.IsAlive
		listed := meta.IsDead(a.CharID)
		if zero != dead || dead != listed {
			problems = append(problems, "actor "+a.CharID+" has inconsistent death state")
		}
		for _, orphan := range a.OrphanTemps() {
			problems = append(problems, "actor "+a.CharID+" has orphan temp "+orphan)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.ConsistencyViolationf("battle %s: %s", meta.BattleID, strings.Join(problems, "; ")).
		WithMeta("battle_id", meta.BattleID)
}
