package era

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/bitflora/patristics-explorer/internal/corpus"
)

// WorkSource fetches one work's citation list.
type WorkSource interface {
	Work(ctx context.Context, id int) (corpus.WorkDetail, error)
}

// Gatherer collects per-work citation lists for the timeline. Resolved works
// are cached by id for the session, so recomputing the timeline after a
// filter change only fetches works not seen before.
type Gatherer struct {
	src   WorkSource
	cache *corpus.Cache[int, corpus.WorkDetail]
	limit int
	log   *slog.Logger
}

// NewGatherer returns a gatherer running at most limit fetches at once
// (runtime.NumCPU() when limit ≤ 0).
func NewGatherer(src WorkSource, limit int, logger *slog.Logger) *Gatherer {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gatherer{
		src:   src,
		cache: corpus.NewCache[int, corpus.WorkDetail](),
		limit: limit,
		log:   logger,
	}
}

// Cached returns the number of works resolved so far.
func (g *Gatherer) Cached() int { return g.cache.Len() }

// Gather resolves the citation lists of ids. Fetches for distinct ids run in
// parallel; a failure is reported under its id in failed and does not stop
// the others or enter the cache.
func (g *Gatherer) Gather(ctx context.Context, ids []int) (refs map[int]corpus.WorkDetail, failed map[int]error) {
	refs = make(map[int]corpus.WorkDetail, len(ids))
	failed = make(map[int]error)

	var pending []int
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if d, ok := g.cache.Get(id); ok {
			refs[id] = d
			continue
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return refs, failed
	}

	sem := make(chan struct{}, g.limit)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, id := range pending {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				failed[id] = ctx.Err()
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			d, err := g.cache.GetOrLoad(ctx, id, func(ctx context.Context) (corpus.WorkDetail, error) {
				if err := ctx.Err(); err != nil {
					return corpus.WorkDetail{}, err
				}
				return g.src.Work(ctx, id)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.log.Debug("work fetch failed", "work", id, "error", err)
				failed[id] = err
				return
			}
			refs[id] = d
		}(id)
	}
	wg.Wait()

	g.log.Debug("gathered work citations",
		"requested", len(seen), "fetched", len(pending)-len(failed), "failed", len(failed))
	return refs, failed
}
