package words

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/mohammed-shakir/unl-locationid/internal/cache"
	"github.com/mohammed-shakir/unl-locationid/internal/cache/keys"
	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
	"github.com/mohammed-shakir/unl-locationid/internal/hotness"
	"github.com/mohammed-shakir/unl-locationid/internal/logger"
)

// Lookup is the upstream side of a Resolver; *Client implements it.
type Lookup interface {
	ToWords(ctx context.Context, location string) (model.Location, error)
	Words(ctx context.Context, words string) (model.Location, error)
}

// Tier is one cache level. A Gated tier is only written once the lookup key
// is hot enough (see ResolverOptions.MinScore).
type Tier struct {
	Name  string
	Store cache.Interface
	Gated bool
}

type ResolverOptions struct {
	TTL       time.Duration
	OpTimeout time.Duration

	// Hotness counts every lookup key; nil admits everything.
	Hotness  hotness.Interface
	MinScore float64
}

// Resolver answers lookups from its cache tiers, fastest first, and falls
// back to the upstream service. Cache failures only ever cost a miss.
type Resolver struct {
	up    Lookup
	tiers []Tier
	opts  ResolverOptions
	log   *slog.Logger
}

func NewResolver(up Lookup, log *slog.Logger, opts ResolverOptions, tiers ...Tier) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	return &Resolver{up: up, tiers: tiers, opts: opts, log: log}
}

func (r *Resolver) ToWords(ctx context.Context, location string) (model.Location, error) {
	kind, err := Classify(location)
	if err != nil {
		return model.Location{}, err
	}
	key := keys.Key(kind, location)
	return r.resolve(ctx, key, func(ctx context.Context) (model.Location, error) {
		return r.up.ToWords(ctx, location)
	})
}

func (r *Resolver) Words(ctx context.Context, words string) (model.Location, error) {
	return r.resolve(ctx, keys.Words(words), func(ctx context.Context) (model.Location, error) {
		return r.up.Words(ctx, words)
	})
}

func (r *Resolver) resolve(ctx context.Context, key string, fetch func(context.Context) (model.Location, error)) (model.Location, error) {
	if r.opts.Hotness != nil {
		r.opts.Hotness.Inc(key)
	}
	for i, t := range r.tiers {
		loc, raw, ok := r.get(ctx, t, key)
		if !ok || !r.live(ctx, t, key, loc, raw) {
			continue
		}
		ctx = logger.WithCacheTier(ctx, t.Name)
		r.log.DebugContext(ctx, "words cache hit", "key", key)
		// refill the faster tiers that missed
		r.store(ctx, r.tiers[:i], loc, entryKeys(key, loc)...)
		return loc, nil
	}

	loc, err := fetch(ctx)
	if err != nil {
		return model.Location{}, err
	}
	ctx = logger.WithCacheTier(ctx, "upstream")
	r.log.DebugContext(ctx, "words fetched", "key", key, "locationId", loc.LocationID)

	r.store(ctx, r.tiers, loc, entryKeys(key, loc)...)
	return loc, nil
}

// entryKeys is the input key followed by the identity keys of loc. A cached
// entry is only served while every identity still holds the same value, so
// dropping or refreshing either identity retires the entry under every key.
func entryKeys(key string, loc model.Location) []string {
	out := []string{key}
	if loc.LocationID != "" {
		if k := keys.LocationID(loc.LocationID); k != key {
			out = append(out, k)
		}
	}
	if loc.Words != "" {
		if k := keys.Words(loc.Words); !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// live reports whether the identities of an entry found under key still hold
// raw in t. An orphaned entry, typically a coordinates lookup whose locationId
// was invalidated, is deleted and treated as a miss.
func (r *Resolver) live(ctx context.Context, t Tier, key string, loc model.Location, raw []byte) bool {
	ids := entryKeys(key, loc)[1:]
	if len(ids) == 0 {
		return true
	}
	cctx, cancel := context.WithTimeout(ctx, r.opts.OpTimeout)
	defer cancel()

	got, err := t.Store.MGet(cctx, ids)
	if err != nil {
		r.log.WarnContext(ctx, "words cache read failed", "tier", t.Name, "err", err)
		return false
	}
	orphaned := false
	for _, id := range ids {
		if v, ok := got[id]; !ok || !bytes.Equal(v, raw) {
			orphaned = true
			break
		}
	}
	if !orphaned {
		return true
	}
	r.log.DebugContext(ctx, "words cache entry orphaned", "tier", t.Name, "key", key)
	if _, err := t.Store.Del(cctx, key); err != nil {
		r.log.WarnContext(ctx, "words cache delete failed", "tier", t.Name, "key", key, "err", err)
	}
	return false
}

func (r *Resolver) get(ctx context.Context, t Tier, key string) (model.Location, []byte, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.opts.OpTimeout)
	defer cancel()

	got, err := t.Store.MGet(cctx, []string{key})
	if err != nil {
		r.log.WarnContext(ctx, "words cache read failed", "tier", t.Name, "err", err)
		return model.Location{}, nil, false
	}
	raw, ok := got[key]
	if !ok {
		return model.Location{}, nil, false
	}
	var loc model.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		r.log.WarnContext(ctx, "words cache entry corrupt", "tier", t.Name, "key", key, "err", err)
		return model.Location{}, nil, false
	}
	return loc, raw, true
}

func (r *Resolver) store(ctx context.Context, tiers []Tier, loc model.Location, storeKeys ...string) {
	if len(tiers) == 0 {
		return
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		r.log.WarnContext(ctx, "words cache encode failed", "err", err)
		return
	}
	for _, t := range tiers {
		if t.Gated && !r.admit(t, storeKeys[0]) {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, r.opts.OpTimeout)
		if err := t.Store.SetAll(cctx, storeKeys, raw, r.opts.TTL); err != nil {
			r.log.WarnContext(ctx, "words cache write failed", "tier", t.Name, "keys", len(storeKeys), "err", err)
		}
		cancel()
	}
}

func (r *Resolver) admit(t Tier, key string) bool {
	if r.opts.Hotness == nil || r.opts.MinScore <= 0 {
		return true
	}
	if r.opts.Hotness.Score(key) < r.opts.MinScore {
		observability.IncCacheAdmission(t.Name, "skipped")
		return false
	}
	observability.IncCacheAdmission(t.Name, "admitted")
	return true
}

// Invalidate drops keys from every tier and forgets their hotness. It
// returns the first error but still tries all tiers.
func (r *Resolver) Invalidate(ctx context.Context, ks ...string) error {
	if r.opts.Hotness != nil {
		r.opts.Hotness.Reset(ks...)
	}
	var first error
	for _, t := range r.tiers {
		cctx, cancel := context.WithTimeout(ctx, r.opts.OpTimeout)
		n, err := t.Store.Del(cctx, ks...)
		cancel()
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		r.log.DebugContext(ctx, "words cache invalidated", "tier", t.Name, "keys", len(ks), "removed", n)
	}
	return first
}
