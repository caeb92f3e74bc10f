package combat

import (
	"encoding/json"
	"strings"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// Strategy is how an intent wants to be resolved.
type Strategy string

const (
	StrategyExchange Strategy = "exchange"
	StrategyItem     Strategy = "item"
	StrategyInstant  Strategy = "instant"
)

// Strategies lists every valid strategy.
var Strategies = []string{string(StrategyExchange), string(StrategyItem), string(StrategyInstant)}

// Payload is the strategy-specific body of a move. The concrete types are
// ExchangePayload, ItemPayload and InstantPayload.
type Payload interface {
	Strategy() Strategy
	// Target is the raw target descriptor: a concrete actor id or one of the
	// Target* descriptors.
	Target() string
	isPayload()
}

// ExchangePayload strikes one concrete actor, optionally with an ability or
// a feint.
type ExchangePayload struct {
	TargetID  string `json:"target_id"`
	AbilityID string `json:"ability_id,omitempty"`
	FeintID   string `json:"feint_id,omitempty"`
}

func (ExchangePayload) Strategy() Strategy { return StrategyExchange }
func (p ExchangePayload) Target() string   { return p.TargetID }
func (ExchangePayload) isPayload()         {}

// ItemPayload uses an item on the resolved targets.
type ItemPayload struct {
	TargetID string `json:"target_id"`
	ItemID   string `json:"item_id"`
}

func (ItemPayload) Strategy() Strategy { return StrategyItem }
func (p ItemPayload) Target() string   { return p.TargetID }
func (ItemPayload) isPayload()         {}

// InstantPayload fires an ability without waiting for a partner.
type InstantPayload struct {
	TargetID  string `json:"target_id"`
	AbilityID string `json:"ability_id"`
}

func (InstantPayload) Strategy() Strategy { return StrategyInstant }
func (p InstantPayload) Target() string   { return p.TargetID }
func (InstantPayload) isPayload()         {}

// PayloadInput is the untyped submission shape.
type PayloadInput struct {
	TargetID  string `json:"target_id,omitempty"`
	AbilityID string `json:"ability_id,omitempty"`
	FeintID   string `json:"feint_id,omitempty"`
	ItemID    string `json:"item_id,omitempty"`
}

// NewPayload validates a submission and builds the typed payload.
func NewPayload(strategy Strategy, in PayloadInput) (Payload, error) {
	vb := errors.NewValidationBuilder()
	switch strategy {
	case StrategyExchange:
		errors.ValidateRequired("target_id", in.TargetID, vb)
		if IsTargetDescriptor(in.TargetID) {
			vb.InvalidField("target_id", "exchange needs a concrete actor id")
		}
		if in.AbilityID != "" && in.FeintID != "" {
			vb.InvalidField("feint_id", "cannot combine an ability and a feint")
		}
		if err := vb.Build(); err != nil {
			return nil, err
		}
		return ExchangePayload{TargetID: in.TargetID, AbilityID: in.AbilityID, FeintID: in.FeintID}, nil
	case StrategyItem:
		errors.ValidateRequired("item_id", in.ItemID, vb)
		if err := vb.Build(); err != nil {
			return nil, err
		}
		target := in.TargetID
		if target == "" {
			target = TargetSelf
		}
		return ItemPayload{TargetID: target, ItemID: in.ItemID}, nil
	case StrategyInstant:
		errors.ValidateRequired("ability_id", in.AbilityID, vb)
		errors.ValidateRequired("target_id", in.TargetID, vb)
		if err := vb.Build(); err != nil {
			return nil, err
		}
		return InstantPayload{TargetID: in.TargetID, AbilityID: in.AbilityID}, nil
	default:
		errors.ValidateEnum("strategy", string(strategy), Strategies, vb)
		return nil, vb.Build()
	}
}

// Target descriptors understood by the target resolver.
const (
	TargetSelf          = "self"
	TargetRandomEnemy   = "random_enemy"
	TargetLowestHPEnemy = "lowest_hp_enemy"
	TargetLowestHPAlly  = "lowest_hp_ally"
	TargetCleave        = "cleave"
	TargetAllEnemies    = "all_enemies"
	TargetAllAllies     = "all_allies"
)

var targetDescriptors = map[string]bool{
	TargetSelf:          true,
	TargetRandomEnemy:   true,
	TargetLowestHPEnemy: true,
	TargetLowestHPAlly:  true,
	TargetCleave:        true,
	TargetAllEnemies:    true,
	TargetAllAllies:     true,
}

// IsTargetDescriptor reports whether target is a descriptor rather than an id.
func IsTargetDescriptor(target string) bool {
	return targetDescriptors[target]
}

// CombatMove is a pending intent.
type CombatMove struct {
	MoveID  string   `json:"move_id"`
	CharID  string   `json:"char_id"`
	Payload Payload  `json:"payload"`
	Targets []string `json:"targets,omitempty"`
}

// Strategy is the payload's strategy.
func (m *CombatMove) Strategy() Strategy {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.Strategy()
}

// DedupeKey identifies the (strategy, target) slot an actor may hold at most
// one pending intent in.
func (m *CombatMove) DedupeKey() string {
	return string(m.Strategy()) + ":" + m.Payload.Target()
}

type moveWire struct {
	MoveID   string          `json:"move_id"`
	CharID   string          `json:"char_id"`
	Strategy Strategy        `json:"strategy"`
	Payload  json.RawMessage `json:"payload"`
	Targets  []string        `json:"targets,omitempty"`
}

// MarshalJSON tags the payload with its strategy.
func (m CombatMove) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(moveWire{
		MoveID:   m.MoveID,
		CharID:   m.CharID,
		Strategy: m.Strategy(),
		Payload:  payload,
		Targets:  m.Targets,
	})
}

// UnmarshalJSON decodes the payload variant named by strategy.
func (m *CombatMove) UnmarshalJSON(data []byte) error {
	var w moveWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var payload Payload
	switch w.Strategy {
	case StrategyExchange:
		var p ExchangePayload
		if err := json.Unmarshal(w.Payload, &p); err != nil {
			return err
		}
		payload = p
	case StrategyItem:
		var p ItemPayload
		if err := json.Unmarshal(w.Payload, &p); err != nil {
			return err
		}
		payload = p
	case StrategyInstant:
		var p InstantPayload
		if err := json.Unmarshal(w.Payload, &p); err != nil {
			return err
		}
		payload = p
	default:
		return errors.InvalidArgumentf("move %s has unknown strategy %q", w.MoveID, w.Strategy)
	}

	*m = CombatMove{MoveID: w.MoveID, CharID: w.CharID, Payload: payload, Targets: w.Targets}
	return nil
}

// ActionType classifies a CombatAction.
type ActionType string

const (
	ActionExchange ActionType = "exchange"
	ActionItem     ActionType = "item"
	ActionInstant  ActionType = "instant"
	ActionSystem   ActionType = "system"
)

// CombatAction is a resolved unit of work on the action queue.
type CombatAction struct {
	ActionID    string      `json:"action_id"`
	Type        ActionType  `json:"action_type"`
	Move        *CombatMove `json:"move"`
	PartnerMove *CombatMove `json:"partner_move,omitempty"`
	IsForced    bool        `json:"is_forced,omitempty"`
}

// Moves returns the moves the action consumed.
func (a *CombatAction) Moves() []*CombatMove {
	if a.PartnerMove != nil {
		return []*CombatMove{a.Move, a.PartnerMove}
	}
	return []*CombatMove{a.Move}
}

// SignalBatch is the wildcard move id of a timeout signal.
const SignalBatch = "batch"

// Signal is a check_timeout request for the collector. MoveID is a concrete
// move or SignalBatch; CharID optionally scopes a batch signal to one actor.
type Signal struct {
	MoveID string `json:"move_id"`
	CharID string `json:"char_id,omitempty"`
}

// Key is the signal's set member encoding.
func (s Signal) Key() string {
	return s.CharID + "|" + s.MoveID
}

// ParseSignal decodes a set member written by Key.
func ParseSignal(key string) (Signal, error) {
	charID, moveID, ok := strings.Cut(key, "|")
	if !ok || moveID == "" {
		return Signal{}, errors.InvalidArgumentf("malformed timeout signal %q", key)
	}
	return Signal{MoveID: moveID, CharID: charID}, nil
}

// Matches reports whether the signal forces move.
func (s Signal) Matches(move *CombatMove) bool {
	if s.MoveID == SignalBatch {
		return s.CharID == "" || s.CharID == move.CharID
	}
	return s.MoveID == move.MoveID
}
