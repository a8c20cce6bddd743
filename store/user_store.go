package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/model"
)

// StoreError is any persistence failure. The orchestrator treats it as fatal
// to the current cast's reconciliation only, never to the whole run.
type StoreError struct {
	Op  string
	Fid int64
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s for fid %d: %v", e.Op, e.Fid, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UserStore is the persistence port of the scoring engine. All mutations are
// keyed by fid and individually atomic; there are no cross-key transactions.
// The marker operations double as concurrency gates: sync runs may overlap,
// and whichever run wins the marker write is the only one allowed to award
// the cast. In particular IncrementPoints must be a true store-side
// increment, not a read-modify-write, so overlapping runs can't lose updates.
type UserStore interface {
	// FindByFid returns the user with their processed casts preloaded, or
	// (nil, nil) when the fid has never been seen.
	FindByFid(ctx context.Context, fid int64) (*model.User, error)

	// EnsureUser inserts a zero-point row for the fid if none exists yet.
	// A no-op when the fid is already known.
	EnsureUser(ctx context.Context, fid int64, username string) error

	// IncrementPoints atomically adds amount to the user's points and
	// overwrites their username, creating the row if the fid is unseen.
	IncrementPoints(ctx context.Context, fid int64, username string, amount int64) error

	// ClaimProcessedCast inserts the marker and reports whether the insert
	// took. Exactly one of any number of concurrent claims for the same
	// (marker.UserFid, marker.Hash) pair returns true.
	ClaimProcessedCast(ctx context.Context, marker *model.ProcessedCast) (bool, error)

	// RefreshProcessedCast overwrites the existing marker for
	// (marker.UserFid, marker.Hash), but only if its stored ScoredAt still
	// equals basedOn. Reports whether the overwrite took; false means another
	// run already rescored the cast past that snapshot.
	RefreshProcessedCast(ctx context.Context, marker *model.ProcessedCast, basedOn time.Time) (bool, error)

	// RefreshLikesAggregate recomputes the user's cached reference like
	// aggregate from their processed-cast rows in a single store-side
	// statement, so concurrent refreshes can't lose each other's updates.
	RefreshLikesAggregate(ctx context.Context, fid int64) error

	// TopUsers lists the top limit users by points descending.
	TopUsers(ctx context.Context, limit int) ([]model.User, error)
}
