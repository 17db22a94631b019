package knowledge

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// SchedulerConfig configures a Scheduler. The zero value selects uniformly
// over unmastered cards with a time-seeded randomness source.
type SchedulerConfig struct {
	// Weights biases selection toward levels 0 to 2: a level's chance is its
	// population times its weight. All-zero means equal weights; a single
	// zero defers that level until no weighted card remains. Mastered cards
	// are never selected regardless of weighting.
	Weights [3]float64
	// Rand is the randomness source; nil means time-seeded.
	Rand *rand.Rand
}

// Scheduler is the per-session knowledge state machine. It owns a transient
// view of every card's Record, writes each change through to the store the
// moment it happens, and decides which card to ask next. It performs no I/O
// beyond the store and its transitions cannot fail.
type Scheduler struct {
	store   Store
	keys    []Key
	recs    map[Key]Record
	prev    int // index of the previously selected key, or -1
	weights [3]float64
	rng     *rand.Rand
}

// NewScheduler loads the records for keys from store (missing records start
// at level 0) and applies the load-time cap: a card already at the top level
// is brought down one, so a session never begins with nothing to ask. Cap
// demotions are written through immediately.
func NewScheduler(ctx context.Context, store Store, keys []Key, cfg SchedulerConfig) (*Scheduler, error) {
	weights := cfg.Weights
	if weights == [3]float64{} {
		weights = [3]float64{1, 1, 1}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Scheduler{
		store:   store,
		keys:    keys,
		recs:    make(map[Key]Record, len(keys)),
		prev:    -1,
		weights: weights,
		rng:     rng,
	}

	for _, key := range keys {
		rec, _, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge for card: %w", err)
		}
		if rec.Mastered() {
			rec.Level = MaxLevel - 1
			rec.Failures = 0
			if err := store.Put(ctx, key, rec); err != nil {
				return nil, fmt.Errorf("failed to apply level cap: %w", err)
			}
		}
		s.recs[key] = rec
	}

	return s, nil
}

// Done reports whether every card is mastered. A scheduler over zero cards
// is done immediately.
func (s *Scheduler) Done() bool {
	for _, key := range s.keys {
		if !s.recs[key].Mastered() {
			return false
		}
	}
	return true
}

// Next selects the card to ask: a level is drawn weighted by population ×
// weight, then a card uniformly within that level. A level weighted zero is
// only eligible once no positively weighted card remains, and the previous
// selection is excluded whenever any other card is eligible. ok is false
// when every card is mastered.
func (s *Scheduler) Next() (Key, bool) {
	pool := s.eligible()
	if len(pool) == 0 {
		return "", false
	}
	if len(pool) > 1 {
		pool = s.withoutPrev(pool)
	}

	var byLevel [3][]int
	for _, i := range pool {
		level := s.recs[s.keys[i]].Level
		byLevel[level] = append(byLevel[level], i)
	}

	total := 0.0
	for level, cards := range byLevel {
		total += float64(len(cards)) * s.weights[level]
	}
	if total == 0 {
		// Only zero-weighted cards are left; draw uniformly.
		i := pool[s.rng.Intn(len(pool))]
		s.prev = i
		return s.keys[i], true
	}

	draw := s.rng.Float64() * total
	for level, cards := range byLevel {
		draw -= float64(len(cards)) * s.weights[level]
		if draw < 0 {
			i := cards[s.rng.Intn(len(cards))]
			s.prev = i
			return s.keys[i], true
		}
	}
	// Float round-off left the draw past every populated level.
	i := pool[s.rng.Intn(len(pool))]
	s.prev = i
	return s.keys[i], true
}

// eligible returns the indexes of unmastered cards on positively weighted
// levels, or all unmastered cards when no level with cards has weight.
func (s *Scheduler) eligible() []int {
	var all, weighted []int
	for i, key := range s.keys {
		if s.recs[key].Mastered() {
			continue
		}
		all = append(all, i)
		if s.weights[s.recs[key].Level] > 0 {
			weighted = append(weighted, i)
		}
	}
	if len(weighted) > 0 {
		return weighted
	}
	return all
}

func (s *Scheduler) withoutPrev(pool []int) []int {
	kept := pool[:0:0]
	for _, i := range pool {
		if i != s.prev {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return pool
	}
	return kept
}

// Record feeds one answer's outcome into the state machine and writes the
// new record through to the store.
func (s *Scheduler) Record(ctx context.Context, key Key, correct bool) error {
	rec, ok := s.recs[key]
	if !ok {
		return fmt.Errorf("unknown card key %s", key)
	}
	if correct {
		rec = rec.Correct()
	} else {
		rec = rec.Incorrect()
	}
	s.recs[key] = rec
	if err := s.store.Put(ctx, key, rec); err != nil {
		return fmt.Errorf("failed to persist knowledge: %w", err)
	}
	return nil
}

// Level returns the current level of a card.
func (s *Scheduler) Level(key Key) Level {
	return s.recs[key].Level
}

// Distribution counts cards per level, for the session header display.
func (s *Scheduler) Distribution() [4]int {
	var dist [4]int
	for _, key := range s.keys {
		dist[s.recs[key].Level]++
	}
	return dist
}
