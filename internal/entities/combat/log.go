package combat

import "sort"

// EventType names an entry of a log entry's event list.
type EventType string

const (
	EventHit         EventType = "HIT"
	EventMiss        EventType = "MISS"
	EventBlock       EventType = "BLOCK"
	EventParry       EventType = "PARRY"
	EventDodge       EventType = "DODGE"
	EventCrit        EventType = "CRIT"
	EventApplyEffect EventType = "APPLY_EFFECT"
	EventExpire      EventType = "EXPIRE"
	EventDeath       EventType = "DEATH"
	EventCorrupted   EventType = "CORRUPTED"
)

// SkipReason explains why an action did not reach the calculator.
type SkipReason string

const (
	SkipNoResource        SkipReason = "NO_RESOURCE"
	SkipNoTarget          SkipReason = "NO_TARGET"
	SkipControlled        SkipReason = "CONTROLLED"
	SkipActorDead         SkipReason = "ACTOR_DEAD"
	SkipUnknownDefinition SkipReason = "UNKNOWN_DEFINITION"
)

// Event is one observable happening of an action.
type Event struct {
	Type     EventType `json:"type"`
	SourceID string    `json:"source_id,omitempty"`
	TargetID string    `json:"target_id,omitempty"`
	Value    int       `json:"value,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// ResourceChanges maps actor -> resource -> label -> signed delta.
type ResourceChanges map[string]map[string]map[string]Expr

// Add accumulates a delta. Flat deltas under the same label sum; a
// multiplier replaces any flat delta already on the label.
func (rc ResourceChanges) Add(actorID, resource, label string, delta Expr) {
	byResource, ok := rc[actorID]
	if !ok {
		byResource = make(map[string]map[string]Expr)
		rc[actorID] = byResource
	}
	byLabel, ok := byResource[resource]
	if !ok {
		byLabel = make(map[string]Expr)
		byResource[resource] = byLabel
	}
	if prev, ok := byLabel[label]; ok && prev.Kind == ExprFlat && delta.Kind == ExprFlat {
		byLabel[label] = Flat(prev.FlatValue() + delta.FlatValue())
		return
	}
	if prev, ok := byLabel[label]; ok && prev.Kind == ExprMult && delta.Kind == ExprMult {
		byLabel[label] = Mult(prev.Value * delta.Value)
		return
	}
	byLabel[label] = delta
}

// Actors returns the actors with changes, sorted.
func (rc ResourceChanges) Actors() []string {
	ids := make([]string, 0, len(rc))
	for id := range rc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge adds every change of other into rc.
func (rc ResourceChanges) Merge(other ResourceChanges) {
	for actorID, byResource := range other {
		for resource, byLabel := range byResource {
			for label, delta := range byLabel {
				rc.Add(actorID, resource, label, delta)
			}
		}
	}
}

// Strike is the outcome of one source->target calculation.
type Strike struct {
	TargetID    string  `json:"target_id"`
	Outcome     Outcome `json:"outcome"`
	IsCrit      bool    `json:"is_crit,omitempty"`
	DamageFinal int     `json:"damage_final"`
}

// LogEntry is the battle-log record of one action. A paired exchange nests
// the counter-strike under Partner.
type LogEntry struct {
	ActionID        string          `json:"action_id"`
	ExchangeCounter int64           `json:"exchange_counter"`
	SourceID        string          `json:"source_id"`
	TargetIDs       []string        `json:"target_ids"`
	ActionType      ActionType      `json:"action_type"`
	IsForced        bool            `json:"is_forced"`
	Events          []Event         `json:"events"`
	DamageFinal     int             `json:"damage_final"`
	ResourceChanges ResourceChanges `json:"resource_changes,omitempty"`
	SkipReason      SkipReason      `json:"skip_reason,omitempty"`
	Strikes         []Strike        `json:"strikes,omitempty"`
	Partner         *LogEntry       `json:"partner,omitempty"`
}

// CountEvents counts events of type t in the entry and its partner.
func (e *LogEntry) CountEvents(t EventType) int {
	n := 0
	for _, ev := range e.Events {
		if ev.Type == t {
			n++
		}
	}
	if e.Partner != nil {
		n += e.Partner.CountEvents(t)
	}
	return n
}
