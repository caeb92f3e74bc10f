package combat

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// Stat keys held in raw.attributes.
const (
	StatPower = "power"
	StatMaxHP = "hp_max"
	StatMaxEN = "en_max"
)

// Stat keys held in raw.modifiers.
const (
	StatAccuracy      = "accuracy"
	StatEvasion       = "evasion"
	StatDodge         = "dodge_chance"
	StatParry         = "parry_chance"
	StatBlock         = "block_chance"
	StatShield        = "shield_block"
	StatCrit          = "crit_chance"
	StatCritMult      = "crit_mult"
	StatArmorFlat     = "armor_flat"
	StatArmorPct      = "armor_pct"
	StatBlockFraction = "block_fraction"
)

// Resources that resource_changes can address. Tokens use TokenResource.
const (
	ResourceHP = "hp"
	ResourceEN = "en"
)

// TokenResource names the resource_changes key of a token kind.
func TokenResource(kind string) string {
	return "token:" + kind
}

// TokenTactical is the token kind feints are paid with.
const TokenTactical = "tactical"

// FeintHandSize is the maximum number of feints held at once.
const FeintHandSize = 3

var attributeKeys = map[string]bool{
	StatPower: true,
	StatMaxHP: true,
	StatMaxEN: true,
}

// IsAttribute reports whether key lives in raw.attributes; everything else is
// a modifier.
func IsAttribute(key string) bool {
	return attributeKeys[key]
}

// RawStat is one layered stat entry.
type RawStat struct {
	Base   float64         `json:"base"`
	Source map[string]Expr `json:"source,omitempty"`
	Temp   map[string]Expr `json:"temp,omitempty"`
}

// HasDice reports whether any layer rolls dice.
func (r *RawStat) HasDice() bool {
	for _, e := range r.Source {
		if e.IsDice() {
			return true
		}
	}
	for _, e := range r.Temp {
		if e.IsDice() {
			return true
		}
	}
	return false
}

// SortedSourceKeys returns the source layer keys in fold order.
func (r *RawStat) SortedSourceKeys() []string {
	return sortedExprKeys(r.Source)
}

// SortedTempKeys returns the temp layer keys in fold order.
func (r *RawStat) SortedTempKeys() []string {
	return sortedExprKeys(r.Temp)
}

func sortedExprKeys(m map[string]Expr) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RawMatrix holds the attributes and modifiers of an actor.
type RawMatrix struct {
	Attributes map[string]*RawStat `json:"attributes"`
	Modifiers  map[string]*RawStat `json:"modifiers"`
}

// FeintState is an actor's feint catalog and current hand.
type FeintState struct {
	Arsenal []string       `json:"arsenal,omitempty"`
	Hand    map[string]int `json:"hand,omitempty"`
}

// ActorMeta carries the mutable resources of an actor.
type ActorMeta struct {
	HP              int            `json:"hp"`
	EN              int            `json:"en"`
	Tokens          map[string]int `json:"tokens,omitempty"`
	ExchangeCounter int64          `json:"exchange_counter"`
	Feints          FeintState     `json:"feints"`
	IsAlive         bool           `json:"is_alive"`
}

// Statuses are the owning arenas of time-bound records. temp entries in the
// raw matrix refer back to these records by uid.
type Statuses struct {
	Effects   []*ActiveEffect  `json:"effects,omitempty"`
	Abilities []*ActiveAbility `json:"abilities,omitempty"`
}

// ActorSnapshot is the per-actor unit of read and write.
type ActorSnapshot struct {
	CharID     string             `json:"char_id"`
	Role       string             `json:"role,omitempty"`
	Loadout    []string           `json:"loadout,omitempty"`
	Meta       ActorMeta          `json:"meta"`
	Raw        RawMatrix          `json:"raw"`
	Statuses   Statuses           `json:"statuses"`
	DirtyStats []string           `json:"dirty_stats,omitempty"`
	Derived    map[string]float64 `json:"derived,omitempty"`
}

// Validate checks the resource invariants a snapshot must hold before it is
// seeded into a battle.
func (a *ActorSnapshot) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("char_id", a.CharID, vb)

	m := a.Meta
	if m.HP < 0 {
		vb.Fieldf("meta.hp", "must not be negative, got %d", m.HP)
	}
	if m.EN < 0 {
		vb.Fieldf("meta.en", "must not be negative, got %d", m.EN)
	}
	if m.IsAlive != (m.HP > 0) {
		vb.Fieldf("meta.is_alive", "is %t with hp %d", m.IsAlive, m.HP)
	}
	if limit, ok := a.poolLimit(StatMaxHP); ok && m.HP > limit {
		vb.Fieldf("meta.hp", "%d exceeds hp_max %d", m.HP, limit)
	}
	if limit, ok := a.poolLimit(StatMaxEN); ok && m.EN > limit {
		vb.Fieldf("meta.en", "%d exceeds en_max %d", m.EN, limit)
	}

	kinds := make([]string, 0, len(m.Tokens))
	for kind := range m.Tokens {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if m.Tokens[kind] < 0 {
			vb.Fieldf("meta.tokens", "%s balance is negative", kind)
		}
	}
	return vb.Build()
}

// poolLimit returns the cap key puts on its pool when it is known without
// rolling: the derived value when fresh, else the fold of flat layers.
func (a *ActorSnapshot) poolLimit(key string) (int, bool) {
	if v, ok := a.Derived[key]; ok && !a.IsDirty(key) {
		return int(math.Floor(v)), true
	}
	s, ok := a.Stat(key)
	if !ok {
		return 0, false
	}
	acc := s.Base
	for _, layer := range []map[string]Expr{s.Source, s.Temp} {
		for _, e := range layer {
			if e.Kind != ExprFlat {
				return 0, false
			}
			acc += e.FlatValue()
		}
	}
	return int(math.Floor(acc)), true
}

// GetID implements core.Entity
func (a *ActorSnapshot) GetID() string {
	return a.CharID
}

// GetType implements core.Entity
func (a *ActorSnapshot) GetType() string {
	return "combat_actor"
}

// Stat returns the raw entry for key from whichever section holds it.
func (a *ActorSnapshot) Stat(key string) (*RawStat, bool) {
	if s, ok := a.Raw.Attributes[key]; ok {
		return s, true
	}
	s, ok := a.Raw.Modifiers[key]
	return s, ok
}

// EnsureStat returns the raw entry for key, creating a zero-based entry in the
// section the key belongs to.
func (a *ActorSnapshot) EnsureStat(key string) *RawStat {
	if s, ok := a.Stat(key); ok {
		return s
	}
	s := &RawStat{}
	if IsAttribute(key) {
		if a.Raw.Attributes == nil {
			a.Raw.Attributes = make(map[string]*RawStat)
		}
		a.Raw.Attributes[key] = s
	} else {
		if a.Raw.Modifiers == nil {
			a.Raw.Modifiers = make(map[string]*RawStat)
		}
		a.Raw.Modifiers[key] = s
	}
	return s
}

// StatKeys lists every raw key of the actor, sorted.
func (a *ActorSnapshot) StatKeys() []string {
	keys := make([]string, 0, len(a.Raw.Attributes)+len(a.Raw.Modifiers))
	for k := range a.Raw.Attributes {
		keys = append(keys, k)
	}
	for k := range a.Raw.Modifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetTemp writes a temp contribution owned by uid and marks the key dirty.
func (a *ActorSnapshot) SetTemp(key, uid string, e Expr) {
	s := a.EnsureStat(key)
	if s.Temp == nil {
		s.Temp = make(map[string]Expr)
	}
	s.Temp[uid] = e
	a.MarkDirty(key)
}

// RemoveTemp drops uid's contribution from each key and marks them dirty.
func (a *ActorSnapshot) RemoveTemp(uid string, keys []string) {
	for _, key := range keys {
		if s, ok := a.Stat(key); ok {
			delete(s.Temp, uid)
			if len(s.Temp) == 0 {
				s.Temp = nil
			}
		}
		a.MarkDirty(key)
	}
}

// MarkDirty adds keys to dirty_stats.
func (a *ActorSnapshot) MarkDirty(keys ...string) {
	for _, key := range keys {
		i := sort.SearchStrings(a.DirtyStats, key)
		if i < len(a.DirtyStats) && a.DirtyStats[i] == key {
			continue
		}
		a.DirtyStats = append(a.DirtyStats, "")
		copy(a.DirtyStats[i+1:], a.DirtyStats[i:])
		a.DirtyStats[i] = key
	}
}

// IsDirty reports whether key needs recomputation.
func (a *ActorSnapshot) IsDirty(key string) bool {
	i := sort.SearchStrings(a.DirtyStats, key)
	return i < len(a.DirtyStats) && a.DirtyStats[i] == key
}

// CommitDerived stores freshly resolved values and clears dirty_stats.
func (a *ActorSnapshot) CommitDerived(values map[string]float64) {
	if a.Derived == nil {
		a.Derived = make(map[string]float64, len(values))
	}
	for k, v := range values {
		a.Derived[k] = v
	}
	a.DirtyStats = nil
}

// Owners returns the uids of every live ability and effect.
func (a *ActorSnapshot) Owners() map[string]bool {
	owners := make(map[string]bool, len(a.Statuses.Abilities)+len(a.Statuses.Effects))
	for _, ab := range a.Statuses.Abilities {
		owners[ab.UID] = true
	}
	for _, ef := range a.Statuses.Effects {
		owners[ef.UID] = true
	}
	return owners
}

// OrphanTemps lists "key/uid" pairs whose uid has no live owner record.
func (a *ActorSnapshot) OrphanTemps() []string {
	owners := a.Owners()
	var orphans []string
	for _, key := range a.StatKeys() {
		s, _ := a.Stat(key)
		for _, uid := range s.SortedTempKeys() {
			if !owners[uid] {
				orphans = append(orphans, key+"/"+uid)
			}
		}
	}
	return orphans
}

// Clone returns a deep copy.
func (a *ActorSnapshot) Clone() *ActorSnapshot {
	data, err := json.Marshal(a)
	if err != nil {
		panic(err)
	}
	out := &ActorSnapshot{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

// PublicEffect is the visible part of an ActiveEffect.
type PublicEffect struct {
	EffectID         string `json:"effect_id"`
	ExpireAtExchange int64  `json:"expire_at_exchange"`
}

// PublicActor is the projection returned by the snapshot view.
type PublicActor struct {
	CharID  string         `json:"char_id"`
	HP      int            `json:"hp"`
	EN      int            `json:"en"`
	Tokens  map[string]int `json:"tokens,omitempty"`
	IsAlive bool           `json:"is_alive"`
	Effects []PublicEffect `json:"effects,omitempty"`
}

// Public projects the snapshot for callers outside the engine.
func (a *ActorSnapshot) Public() PublicActor {
	p := PublicActor{
		CharID:  a.CharID,
		HP:      a.Meta.HP,
		EN:      a.Meta.EN,
		Tokens:  a.Meta.Tokens,
		IsAlive: a.Meta.IsAlive,
	}
	for _, ef := range a.Statuses.Effects {
		p.Effects = append(p.Effects, PublicEffect{EffectID: ef.EffectID, ExpireAtExchange: ef.ExpireAtExchange})
	}
	return p
}
