package leaderboard

import (
	"context"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/model"
	"github.com/Mankeylol/lolly-leaderboard-backend/scoring"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
)

// Reconciler merges one cast's computed deltas into the user store. Each
// write is individually atomic per fid; there is no cross-user transaction.
// The marker write is the concurrency gate: of any number of writers racing
// on the same cast, sync runs included, only the one whose marker write takes
// awards points.
type Reconciler struct {
	Store store.UserStore
}

func NewReconciler(userStore store.UserStore) *Reconciler {
	return &Reconciler{Store: userStore}
}

// Apply persists a non-no-op delta for the cast. It first tries to win the
// cast's marker: a first-sighting delta by inserting it, a recompute delta by
// advancing the stored ScoredAt past the snapshot the delta was computed
// against. Losing the marker means another writer already scored the cast,
// nothing is awarded and Apply reports false. Winning it awards the author
// and, on first sighting, each reactor through independent atomic
// increments. A store failure aborts only this cast's reconciliation; the
// returned error is always a *store.StoreError.
func (r *Reconciler) Apply(ctx context.Context, cast feed.Cast, delta *scoring.Delta, scoredAt time.Time) (bool, error) {
	marker := model.ProcessedCast{
		UserFid:      cast.Author.Fid,
		Hash:         cast.Hash,
		LikesCount:   int64(len(cast.Reactions.Likes)),
		RecastsCount: int64(len(cast.Reactions.Recasts)),
		Username:     cast.Author.Username,
		ScoredAt:     scoredAt,
	}

	won, err := r.winMarker(ctx, delta, &marker)
	if err != nil || !won {
		return false, err
	}

	// The reference aggregate is recomputed from the marker rows store-side,
	// an overwrite from a stale snapshot can't drop a sibling cast's growth.
	if err := r.Store.RefreshLikesAggregate(ctx, cast.Author.Fid); err != nil {
		return false, err
	}
	if err := r.Store.IncrementPoints(ctx, cast.Author.Fid, cast.Author.Username, delta.Author); err != nil {
		return false, err
	}

	// Reactor updates are independent of the author update and of each other:
	// a failure on one reactor doesn't unwind the others, the marker gate
	// already guarantees the cast won't be fully re-awarded.
	for fid, reactor := range delta.Reactors {
		if err := r.Store.IncrementPoints(ctx, fid, reactor.Username, reactor.Points); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *Reconciler) winMarker(ctx context.Context, delta *scoring.Delta, marker *model.ProcessedCast) (bool, error) {
	switch delta.Kind {
	case scoring.DeltaFirstSighting:
		// The author row must exist before a marker can reference it.
		if err := r.Store.EnsureUser(ctx, marker.UserFid, marker.Username); err != nil {
			return false, err
		}
		return r.Store.ClaimProcessedCast(ctx, marker)
	case scoring.DeltaRecompute:
		return r.Store.RefreshProcessedCast(ctx, marker, delta.PriorScoredAt)
	}
	return false, nil
}
