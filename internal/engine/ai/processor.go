// Package ai decides what a bot does against one enemy. Decisions depend
// only on snapshot content so they can be asserted in tests.
package ai

import (
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
)

// Roles and the ability tag each one favours.
const (
	RoleStriker = "striker"
	RoleTank    = "tank"
	RoleSupport = "support"
)

var roleTags = map[string]string{
	RoleStriker: "damage",
	RoleTank:    "defense",
	RoleSupport: "control",
}

// Config holds the dependencies for the processor
type Config struct {
	Registry *gamedata.Registry
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	return vb.Build()
}

// Processor is the AI processor.
type Processor struct {
	registry *gamedata.Registry
}

// New creates a processor
func New(cfg *Config) (*Processor, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ai processor config")
	}
	return &Processor{registry: cfg.Registry}, nil
}

// DecideInput is a bot and the enemy it must answer.
type DecideInput struct {
	Bot   *combat.ActorSnapshot
	Enemy *combat.ActorSnapshot
}

// DecideExchange picks the bot's exchange against the enemy: the first
// affordable loadout ability carrying the role's tag, else the cheapest
// playable feint in hand, else a plain attack.
func (p *Processor) DecideExchange(in *DecideInput) (combat.ExchangePayload, error) {
	if in == nil || in.Bot == nil || in.Enemy == nil {
		return combat.ExchangePayload{}, errors.InvalidArgument("bot and enemy are required")
	}
	payload := combat.ExchangePayload{TargetID: in.Enemy.CharID}

	if id := p.pickAbility(in.Bot); id != "" {
		payload.AbilityID = id
		return payload, nil
	}
	if id := pickFeint(in.Bot); id != "" {
		payload.FeintID = id
	}
	return payload, nil
}

func (p *Processor) pickAbility(bot *combat.ActorSnapshot) string {
	tag, ok := roleTags[bot.Role]
	if !ok {
		tag = roleTags[RoleStriker]
	}

	loadout := append([]string(nil), bot.Loadout...)
	sort.Strings(loadout)
	for _, id := range loadout {
		def, err := p.registry.GetAbility(id)
		if err != nil {
			continue
		}
		// abilities that skip the calculator are not exchange material
		if def.PipelineMutations.Preset != "" || !def.HasTag(tag) {
			continue
		}
		if abilities.CanAfford(bot, def.Cost) {
			return id
		}
	}
	return ""
}

func pickFeint(bot *combat.ActorSnapshot) string {
	tokens := bot.Meta.Tokens[combat.TokenTactical]
	best, bestCost := "", 0
	for id, cost := range bot.Meta.Feints.Hand {
		if cost > tokens {
			continue
		}
		if best == "" || cost < bestCost || (cost == bestCost && id < best) {
			best, bestCost = id, cost
		}
	}
	return best
}
