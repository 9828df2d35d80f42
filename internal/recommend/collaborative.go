// internal/recommend/collaborative.go

package recommend

import (
	"context"
	"sort"
)

const topSimilarUsers = 10

// collaborativeCandidates surfaces future events registered for by users
// whose attendance overlaps the target user's. This is co-occurrence
// counting, not matrix factorization: each similar user is weighted by
// how many events they share with the target user, and a candidate
// event's score is the sum of the weights of the similar users holding
// a registration for it.
func collaborativeCandidates(ctx context.Context, repo Repository, userID int64, limit int) ([]int64, error) {
	similar, err := repo.GetCoRegistrants(ctx, userID, topSimilarUsers)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return nil, nil
	}

	similarity := make(map[int64]float64, len(similar))
	userIDs := make([]int64, 0, len(similar))
	for _, s := range similar {
		similarity[s.UserID] = float64(s.SharedCount)
		userIDs = append(userIDs, s.UserID)
	}

	pairs, err := repo.GetFutureRegistrations(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	ownIDs, err := repo.GetRegisteredEventIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	own := make(map[int64]bool, len(ownIDs))
	for _, id := range ownIDs {
		own[id] = true
	}

	scores := make(map[int64]float64)
	var order []int64
	for _, p := range pairs {
		if own[p.EventID] {
			continue
		}
		if _, seen := scores[p.EventID]; !seen {
			order = append(order, p.EventID)
		}
		scores[p.EventID] += similarity[p.UserID]
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order, nil
}
