// internal/recommend/engine.go

package recommend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

// Engine runs the full recommendation pipeline: profile, candidate
// generation, union, fetch, scoring.
type Engine struct {
	repo     Repository
	geocoder Geocoder
	profiles *ProfileBuilder
	scorer   *Scorer
}

func NewEngine(repo Repository, geocoder Geocoder, maxDistanceKm float64) *Engine {
	if geocoder == nil {
		geocoder = CoordinateSuffixGeocoder{}
	}
	return &Engine{
		repo:     repo,
		geocoder: geocoder,
		profiles: NewProfileBuilder(repo, geocoder),
		scorer:   NewScorer(geocoder, maxDistanceKm),
	}
}

// Recommend returns the top events for a user. The two candidate
// generators are independent reads and run concurrently. An empty
// candidate union falls back to the nearest upcoming events the user
// has not registered for.
func (e *Engine) Recommend(ctx context.Context, userID int64, limit int) ([]*events.Event, error) {
	profile, err := e.profiles.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	var collab, content []int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		collab, err = collaborativeCandidates(gctx, e.repo, userID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		content, err = contentCandidates(gctx, e.repo, e.geocoder, profile, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	union := unionIDs(collab, content)
	candidateSetSize.Observe(float64(len(union)))

	if len(union) == 0 {
		recommendationsServed.WithLabelValues("fallback").Inc()
		fallback, err := e.repo.GetUpcomingExcluding(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
		return fallback, nil
	}

	candidates, err := e.repo.GetEventsByIDs(ctx, union)
	if err != nil {
		return nil, err
	}
	candidates = reorder(candidates, union)

	if len(candidates) < limit && len(profile.TopCategories) > 0 {
		exclude, err := e.repo.GetRegisteredEventIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		exclude = append(exclude, union...)

		padding, err := e.repo.GetUpcomingSameCategory(ctx, profile.TopCategories, exclude, limit-len(candidates))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, padding...)
	}

	ranked := e.scorer.Rank(candidates, profile)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	recommendationsServed.WithLabelValues("scored").Inc()
	return ranked, nil
}

// unionIDs merges the two candidate lists, collaborative first,
// preserving order and dropping duplicates.
func unionIDs(collab, content []int64) []int64 {
	seen := make(map[int64]bool, len(collab)+len(content))
	union := make([]int64, 0, len(collab)+len(content))
	for _, id := range collab {
		if !seen[id] {
			seen[id] = true
			union = append(union, id)
		}
	}
	for _, id := range content {
		if !seen[id] {
			seen[id] = true
			union = append(union, id)
		}
	}
	return union
}

// reorder puts fetched events back into candidate-union order so that
// tie-breaking in the scorer stays deterministic.
func reorder(fetched []*events.Event, order []int64) []*events.Event {
	byID := make(map[int64]*events.Event, len(fetched))
	for _, e := range fetched {
		byID[e.ID] = e
	}

	out := make([]*events.Event, 0, len(fetched))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}
