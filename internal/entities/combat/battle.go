// Package combat holds the data model of a battle: the control record, actor
// snapshots with their layered stats, intents, actions and the battle log.
package combat

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// ActorKind tells players apart from bots.
type ActorKind string

const (
	ActorKindPlayer ActorKind = "player"
	ActorKindAI     ActorKind = "ai"
)

// WinnerDraw is the winner value when no team survives or the battle is
// corrupted.
const WinnerDraw = "draw"

// BattleMeta is the per-battle control record.
type BattleMeta struct {
	BattleID        string               `json:"battle_id"`
	Seed            int64                `json:"seed"`
	Teams           map[string][]string  `json:"teams"`
	ActorsInfo      map[string]ActorKind `json:"actors_info"`
	DeadActors      []string             `json:"dead_actors"`
	Active          bool                 `json:"active"`
	ExchangeCounter int64                `json:"exchange_counter"`
	Winner          string               `json:"winner,omitempty"`
	Corrupted       bool                 `json:"corrupted,omitempty"`
}

// GetID implements core.Entity
func (m *BattleMeta) GetID() string {
	return m.BattleID
}

// GetType implements core.Entity
func (m *BattleMeta) GetType() string {
	return "battle"
}

// TeamOf returns the team the actor belongs to.
func (m *BattleMeta) TeamOf(actorID string) (string, bool) {
	for team, members := range m.Teams {
		for _, id := range members {
			if id == actorID {
				return team, true
			}
		}
	}
	return "", false
}

// TeamNames returns the team names in sorted order.
func (m *BattleMeta) TeamNames() []string {
	names := make([]string, 0, len(m.Teams))
	for name := range m.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActorIDs returns every actor of every team, sorted.
func (m *BattleMeta) ActorIDs() []string {
	var ids []string
	for _, members := range m.Teams {
		ids = append(ids, members...)
	}
	sort.Strings(ids)
	return ids
}

// IsDead reports membership in dead_actors.
func (m *BattleMeta) IsDead(actorID string) bool {
	return slices.Contains(m.DeadActors, actorID)
}

// IsLiving reports an actor that is on a team and not dead.
func (m *BattleMeta) IsLiving(actorID string) bool {
	_, ok := m.TeamOf(actorID)
	return ok && !m.IsDead(actorID)
}

// MarkDead adds the actor to dead_actors, keeping the slice sorted and unique.
func (m *BattleMeta) MarkDead(actorID string) {
	if m.IsDead(actorID) {
		return
	}
	m.DeadActors = append(m.DeadActors, actorID)
	sort.Strings(m.DeadActors)
}

// UnmarshalJSON decodes a control record and normalizes dead_actors to a
// sorted set, whatever order the writer used.
func (m *BattleMeta) UnmarshalJSON(data []byte) error {
	type plain BattleMeta
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = BattleMeta(p)
	if len(m.DeadActors) > 0 {
		sort.Strings(m.DeadActors)
		m.DeadActors = slices.Compact(m.DeadActors)
	}
	return nil
}

// LivingActors returns all living actor ids, sorted.
func (m *BattleMeta) LivingActors() []string {
	var ids []string
	for _, id := range m.ActorIDs() {
		if !m.IsDead(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsAI reports whether the actor is a bot.
func (m *BattleMeta) IsAI(actorID string) bool {
	return m.ActorsInfo[actorID] == ActorKindAI
}

// Enemies returns living actors on other teams, sorted.
func (m *BattleMeta) Enemies(actorID string) []string {
	team, ok := m.TeamOf(actorID)
	if !ok {
		return nil
	}
	var ids []string
	for _, id := range m.LivingActors() {
		if other, _ := m.TeamOf(id); other != team {
			ids = append(ids, id)
		}
	}
	return ids
}

// Allies returns living actors on the same team, the actor included, sorted.
func (m *BattleMeta) Allies(actorID string) []string {
	team, ok := m.TeamOf(actorID)
	if !ok {
		return nil
	}
	var ids []string
	for _, id := range m.LivingActors() {
		if other, _ := m.TeamOf(id); other == team {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks the structural invariants of the record.
func (m *BattleMeta) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("battle_id", m.BattleID, vb)
	if len(m.Teams) < 2 {
		vb.Field("teams", "needs at least two teams")
	}

	seen := make(map[string]string)
	for _, team := range m.TeamNames() {
		if team == WinnerDraw {
			vb.InvalidField("teams", "team name draw is reserved")
		}
		for _, id := range m.Teams[team] {
			if prev, dup := seen[id]; dup {
				vb.Fieldf("teams", "actor %s is on %s and %s", id, prev, team)
			}
			seen[id] = team
			if _, ok := m.ActorsInfo[id]; !ok {
				vb.Fieldf("actors_info", "actor %s has no kind", id)
			}
		}
	}
	dead := make(map[string]bool, len(m.DeadActors))
	for _, id := range m.DeadActors {
		if _, ok := seen[id]; !ok {
			vb.Fieldf("dead_actors", "actor %s is not on a team", id)
		}
		if dead[id] {
			vb.Fieldf("dead_actors", "actor %s is listed twice", id)
		}
		dead[id] = true
	}
	if !m.Active && m.Winner == "" {
		vb.Field("winner", "must be set once the battle is inactive")
	}
	return vb.Build()
}
