// Package gamedata is the immutable, process-wide table of abilities, feints,
// effects, items, skill formulas, pipeline presets and trigger rules.
//
// A Registry is built once at startup and shared by reference. Lookups hand
// out pointers into the tables; callers must treat them as read-only.
package gamedata

import (
	"embed"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

//go:embed data/*.yaml
var defaultData embed.FS

// DefaultPath is the embedded registry file.
const DefaultPath = "data/registry.yaml"

// Pipeline flag path prefixes used by presets and pipeline mutations.
const (
	PhasePrefix   = "phases."
	TriggerPrefix = "triggers."
)

// Registry is the read-only lookup of game data.
type Registry struct {
	abilities map[string]*AbilityDefinition
	feints    map[string]*AbilityDefinition
	effects   map[string]*EffectDefinition
	items     map[string]*ItemDefinition
	formulas  map[string]SkillFormula
	presets   map[string]map[string]bool
	triggers  map[string]TriggerRule
}

// LoadDefault builds the registry from the embedded definitions.
func LoadDefault() (*Registry, error) {
	return Load(defaultData, DefaultPath)
}

// Load decodes a YAML definitions file from fsys.
func Load(fsys fs.FS, path string) (*Registry, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open game data %s", path)
	}
	defer func() { _ = f.Close() }()

	var defs Definitions
	if err := yaml.NewDecoder(f).Decode(&defs); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to decode game data %s", path)
	}

	reg, err := New(&defs)
	if err != nil {
		return nil, err
	}

	slog.Info("game data loaded",
		"path", path,
		"abilities", len(reg.abilities),
		"feints", len(reg.feints),
		"effects", len(reg.effects),
		"items", len(reg.items))
	return reg, nil
}

// New validates defs and builds a registry from them. defs must not be
// modified afterwards.
func New(defs *Definitions) (*Registry, error) {
	if defs == nil {
		return nil, errors.InvalidArgument("definitions are required")
	}

	r := &Registry{
		abilities: defs.Abilities,
		feints:    defs.Feints,
		effects:   defs.Effects,
		items:     defs.Items,
		formulas:  defs.SkillFormulas,
		presets:   defs.PipelinePresets,
		triggers:  defs.TriggerRules,
	}
	if r.abilities == nil {
		r.abilities = make(map[string]*AbilityDefinition)
	}
	if r.feints == nil {
		r.feints = make(map[string]*AbilityDefinition)
	}
	if r.effects == nil {
		r.effects = make(map[string]*EffectDefinition)
	}
	if r.items == nil {
		r.items = make(map[string]*ItemDefinition)
	}
	if r.formulas == nil {
		r.formulas = make(map[string]SkillFormula)
	}
	if r.presets == nil {
		r.presets = make(map[string]map[string]bool)
	}
	if r.triggers == nil {
		r.triggers = make(map[string]TriggerRule)
	}

	for id, def := range r.abilities {
		def.ID = id
	}
	for id, def := range r.feints {
		def.ID = id
	}
	for id, def := range r.effects {
		def.ID = id
	}
	for id, def := range r.items {
		def.ID = id
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) validate() error {
	vb := errors.NewValidationBuilder()

	checkTechnique := func(kind string, def *AbilityDefinition) {
		field := kind + "." + def.ID
		if p := def.PipelineMutations.Preset; p != "" {
			if _, ok := r.presets[p]; !ok {
				vb.Fieldf(field, "unknown pipeline preset %s", p)
			}
		}
		for flag := range def.PipelineMutations.Flags {
			if !validFlagPath(flag) {
				vb.Fieldf(field, "bad pipeline flag %s", flag)
			}
		}
		for _, trig := range def.Triggers {
			if _, ok := r.triggers[trig]; !ok {
				vb.Fieldf(field, "unknown trigger %s", trig)
			}
		}
		if d := def.OverrideDamage; d != nil && (d.Min < 0 || d.Max < d.Min) {
			vb.Fieldf(field, "bad override_damage %d..%d", d.Min, d.Max)
		}
		for _, descs := range def.Payload {
			r.checkDescriptors(vb, field, descs)
		}
		r.checkDescriptors(vb, field, def.OnResolve)
	}

	for _, id := range sortedKeys(r.abilities) {
		checkTechnique("abilities", r.abilities[id])
	}
	for _, id := range sortedKeys(r.feints) {
		def := r.feints[id]
		checkTechnique("feints", def)
		if len(def.Cost.Tokens) == 0 {
			vb.Fieldf("feints."+id, "needs a token cost")
		}
	}
	for _, id := range sortedKeys(r.effects) {
		def := r.effects[id]
		switch def.Kind {
		case EffectKindStat, EffectKindControl, EffectKindDoT:
		case EffectKindRestoreHP:
			if def.Value == nil {
				vb.Fieldf("effects."+id, "restore_hp needs a value")
			}
		default:
			vb.Fieldf("effects."+id, "unknown kind %q", def.Kind)
		}
	}
	for _, id := range sortedKeys(r.items) {
		def := r.items[id]
		if def.Preset != "" {
			if _, ok := r.presets[def.Preset]; !ok {
				vb.Fieldf("items."+id, "unknown pipeline preset %s", def.Preset)
			}
		}
		r.checkDescriptors(vb, "items."+id, def.Effects)
	}
	for name, flags := range r.presets {
		for flag := range flags {
			if !validFlagPath(flag) {
				vb.Fieldf("pipeline_presets."+name, "bad pipeline flag %s", flag)
			}
		}
	}

	return vb.Build()
}

func (r *Registry) checkDescriptors(vb *errors.ValidationBuilder, field string, descs []combat.EffectDescriptor) {
	for _, d := range descs {
		if _, ok := r.effects[d.EffectID]; !ok {
			vb.Fieldf(field, "unknown effect %s", d.EffectID)
		}
	}
}

func validFlagPath(path string) bool {
	return (strings.HasPrefix(path, PhasePrefix) && len(path) > len(PhasePrefix)) ||
		(strings.HasPrefix(path, TriggerPrefix) && len(path) > len(TriggerPrefix))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAbility returns errors.NotFound for unknown ids.
func (r *Registry) GetAbility(id string) (*AbilityDefinition, error) {
	def, ok := r.abilities[id]
	if !ok {
		return nil, errors.NotFoundf("ability %s not found", id)
	}
	return def, nil
}

// GetFeint returns errors.NotFound for unknown ids.
func (r *Registry) GetFeint(id string) (*AbilityDefinition, error) {
	def, ok := r.feints[id]
	if !ok {
		return nil, errors.NotFoundf("feint %s not found", id)
	}
	return def, nil
}

// GetEffect returns errors.NotFound for unknown ids.
func (r *Registry) GetEffect(id string) (*EffectDefinition, error) {
	def, ok := r.effects[id]
	if !ok {
		return nil, errors.NotFoundf("effect %s not found", id)
	}
	return def, nil
}

// GetItem returns errors.NotFound for unknown ids.
func (r *Registry) GetItem(id string) (*ItemDefinition, error) {
	def, ok := r.items[id]
	if !ok {
		return nil, errors.NotFoundf("item %s not found", id)
	}
	return def, nil
}

// GetFormula returns the named formula. An undefined formula is the identity
// clamped to [0, 100].
func (r *Registry) GetFormula(name string) SkillFormula {
	if f, ok := r.formulas[name]; ok {
		return f
	}
	return SkillFormula{PerPoint: 1, Min: 0, Max: 100}
}

// GetPreset returns errors.NotFound for unknown presets.
func (r *Registry) GetPreset(name string) (map[string]bool, error) {
	flags, ok := r.presets[name]
	if !ok {
		return nil, errors.NotFoundf("pipeline preset %s not found", name)
	}
	return flags, nil
}

// GetTriggerRule looks up a trigger by name.
func (r *Registry) GetTriggerRule(name string) (TriggerRule, bool) {
	rule, ok := r.triggers[name]
	return rule, ok
}

// FeintIDs lists every feint id, sorted.
func (r *Registry) FeintIDs() []string {
	return sortedKeys(r.feints)
}
