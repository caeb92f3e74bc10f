// Package rng derives reproducible random streams from labelled seeds.
//
// Every stochastic decision in a battle draws from a stream seeded on the
// battle's root seed plus a label naming the decision (actor, exchange
// counter, stat key, ...). Replaying a battle with the same inputs therefore
// replays every roll.
package rng

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// Seed hashes the parts with fnv64a, separating them with a zero byte so
// ("ab","c") and ("a","bc") differ. Zero is never returned.
func Seed(parts ...string) int64 {
	hasher := fnv.New64a()
	for i, part := range parts {
		if i > 0 {
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte(part))
	}
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// Stream is a deterministic random source. It is not safe for concurrent
// use; build one per decision.
type Stream struct {
	r *rand.Rand
}

var _ dice.Roller = (*Stream)(nil)

// New returns a stream seeded from the parts.
func New(parts ...string) *Stream {
	return &Stream{r: rand.New(rand.NewSource(Seed(parts...)))}
}

// ForStat is the stream used to evaluate dice terms of one raw stat of one
// actor at one exchange counter.
func ForStat(battleID string, rootSeed, counter int64, actorID, key string) *Stream {
	return New(battleID, strconv.FormatInt(rootSeed, 10), strconv.FormatInt(counter, 10), actorID, "stat", key)
}

// ForStrike is the stream used for the outcome rolls of one strike.
func ForStrike(battleID string, rootSeed, counter int64, sourceID, targetID string) *Stream {
	return New(battleID, strconv.FormatInt(rootSeed, 10), strconv.FormatInt(counter, 10), sourceID, "strike", targetID)
}

// ForLabel is a general stream keyed on battle, counter, actor and a label.
func ForLabel(battleID string, rootSeed, counter int64, actorID, label string) *Stream {
	return New(battleID, strconv.FormatInt(rootSeed, 10), strconv.FormatInt(counter, 10), actorID, label)
}

// Roll returns a value in [1, size].
func (s *Stream) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	return s.r.Intn(size) + 1, nil
}

// RollN rolls count dice of the given size.
func (s *Stream) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, errors.InvalidArgumentf("dice count must not be negative, got %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Percentile rolls a d100.
func (s *Stream) Percentile() int {
	return s.r.Intn(100) + 1
}

// Between returns a value in [lo, hi]; lo is returned when hi <= lo.
func (s *Stream) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// Intn returns a value in [0, n); 0 when n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

// Shuffle permutes ids in place.
func (s *Stream) Shuffle(ids []string) {
	s.r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}
