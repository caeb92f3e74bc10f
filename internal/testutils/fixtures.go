package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/testutils/builders"
)

// Team names used by the fixtures
const (
	TeamBlue = "blue"
	TeamRed  = "red"

	// TestBattleID is the default battle of the fixtures
	TestBattleID = "battle-test-001"
)

// Duel is a battle of two actors with symmetric stats
type Duel struct {
	Meta   *combat.BattleMeta
	Actors []*combat.ActorSnapshot
}

// ActorMap indexes the duel's snapshots by id
func (d *Duel) ActorMap() map[string]*combat.ActorSnapshot {
	out := make(map[string]*combat.ActorSnapshot, len(d.Actors))
	for _, a := range d.Actors {
		out[a.CharID] = a
	}
	return out
}

// CreateTestDuel creates blue={1} vs red={2}, both players with 100 HP and
// 20 power, seed 42
func CreateTestDuel() *Duel {
	return &Duel{
		Meta: builders.NewBattleBuilder(TestBattleID).
			WithPlayer(TeamBlue, "1").
			WithPlayer(TeamRed, "2").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").Build(),
		},
	}
}

// CreateTestBotDuel creates blue={1} (player) vs red={2} (striker bot)
func CreateTestBotDuel() *Duel {
	return &Duel{
		Meta: builders.NewBattleBuilder(TestBattleID).
			WithPlayer(TeamBlue, "1").
			WithBot(TeamRed, "2").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").WithRole("striker").Build(),
		},
	}
}

// Exchange builds an exchange intent
func Exchange(moveID, from, to string) *combat.CombatMove {
	return &combat.CombatMove{MoveID: moveID, CharID: from, Payload: combat.ExchangePayload{TargetID: to}}
}

// LoadRegistry loads the embedded game data
func LoadRegistry(t *testing.T) *gamedata.Registry {
	reg, err := gamedata.LoadDefault()
	require.NoError(t, err, "failed to load registry")
	return reg
}
