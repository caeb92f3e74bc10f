// Package idgen produces move, task and owner uids.
package idgen

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out identifiers. Implementations are safe for concurrent
// use.
type Generator interface {
	Generate() string
}

// SequentialGenerator yields prefix_1, prefix_2, ...
type SequentialGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequential returns a counter-backed generator. An empty prefix yields
// bare numbers.
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// NewScoped returns a sequential generator whose prefix joins the scope
// parts with ':'. Generators built from the same scope agree id for id, so
// owner uids survive a replay of the battle.
func NewScoped(scope ...string) *SequentialGenerator {
	return NewSequential(strings.Join(scope, ":"))
}

// Generate returns the next id in sequence.
func (g *SequentialGenerator) Generate() string {
	return join(g.prefix, strconv.FormatUint(g.n.Add(1), 10))
}

// UUIDGenerator yields prefix_<uuid v4>. Used for ids that must be unique
// across processes (tasks, live move ids).
type UUIDGenerator struct {
	prefix string
}

// NewUUID returns a random generator.
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate returns a fresh random id.
func (g *UUIDGenerator) Generate() string {
	return join(g.prefix, uuid.NewString())
}

func join(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
