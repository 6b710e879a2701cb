// Package expdecay scores lookup keys by exponentially decayed hit counts.
// A key hit n times in a burst scores about n, and the score halves every
// HalfLife without further hits.
package expdecay

import (
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/unl-locationid/internal/hotness"
)

// power of two, pick masks the hash
const numShards = 64

var _ hotness.Interface = (*Tracker)(nil)

type Tracker struct {
	HalfLife time.Duration

	lambda float64 // per second
	now    func() time.Time
	shards [numShards]shard
}

type shard struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	score float64
	at    time.Time
}

// New returns a tracker; halfLife <= 0 means one minute.
func New(halfLife time.Duration) *Tracker {
	if halfLife <= 0 {
		halfLife = time.Minute
	}
	t := &Tracker{
		HalfLife: halfLife,
		lambda:   math.Ln2 / halfLife.Seconds(),
		now:      time.Now,
	}
	for i := range t.shards {
		t.shards[i].m = make(map[string]entry)
	}
	return t
}

func (t *Tracker) Inc(key string) {
	if key == "" {
		return
	}
	now := t.now()
	s := t.pick(key)
	s.mu.Lock()
	e := s.m[key]
	s.m[key] = entry{score: t.at(e, now) + 1, at: now}
	s.mu.Unlock()
}

func (t *Tracker) Score(key string) float64 {
	if key == "" {
		return 0
	}
	now := t.now()
	s := t.pick(key)
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return t.at(e, now)
}

// Reset forgets keys, typically after their cache entries were invalidated.
func (t *Tracker) Reset(keys ...string) {
	for _, k := range keys {
		s := t.pick(k)
		s.mu.Lock()
		delete(s.m, k)
		s.mu.Unlock()
	}
}

// Prune forgets keys whose score decayed below floor and reports how many
// went. Without it the tracker grows with every distinct lookup.
func (t *Tracker) Prune(floor float64) int {
	now := t.now()
	removed := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for k, e := range s.m {
			if t.at(e, now) < floor {
				delete(s.m, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func (t *Tracker) Size() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// at is e's score decayed to now.
func (t *Tracker) at(e entry, now time.Time) float64 {
	dt := now.Sub(e.at).Seconds()
	if e.score == 0 || dt <= 0 {
		return e.score
	}
	return e.score * math.Exp(-t.lambda*dt)
}

func (t *Tracker) pick(key string) *shard {
	return &t.shards[xxhash.Sum64String(key)&(numShards-1)]
}
