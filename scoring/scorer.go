package scoring

import (
	"fmt"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/model"
)

// DefaultRecomputeWindow is how long a scored cast stays frozen before its
// reaction counts are eligible for rescoring.
const DefaultRecomputeWindow = 24 * time.Hour

// MalformedCastError rejects a cast the scorer cannot attribute. The
// orchestrator skips such casts instead of aborting the run.
type MalformedCastError struct {
	Hash   string
	Reason string
}

func (e *MalformedCastError) Error() string {
	return fmt.Sprintf("malformed cast %q: %s", e.Hash, e.Reason)
}

// DeltaKind tells the reconciler which shape of write the delta needs.
type DeltaKind int

const (
	// First time this (author, hash) pair is scored: full award, marker insert.
	DeltaFirstSighting DeltaKind = iota
	// Marker is still inside the recompute window: nothing to apply.
	DeltaNoOp
	// Marker aged out: like-count difference award, marker overwrite.
	DeltaRecompute
)

// ReactorDelta is the award for one identity that reacted to the cast.
type ReactorDelta struct {
	Username string
	Points   int64
}

// Delta is the outcome of scoring a single cast: the author's point delta
// and one entry per distinct reactor. Scoring never mutates persistent
// state, applying the delta is the reconciler's job.
type Delta struct {
	Kind     DeltaKind
	Author   int64
	Reactors map[int64]ReactorDelta
	// ScoredAt of the marker a recompute delta was computed against, zero
	// otherwise. The reconciler only applies the delta if it can advance the
	// marker past exactly this timestamp, so two runs recomputing from the
	// same snapshot can't both award.
	PriorScoredAt time.Time
}

// AuthorState is the slice of persistent state scoring depends on, assembled
// by the caller so the scorer itself stays pure.
type AuthorState struct {
	// Marker for this exact cast hash, nil if the cast has never been scored
	// for this author.
	Marker *model.ProcessedCast
	// The author's cached aggregate like count as of the last scoring pass.
	ReferenceLikes int64
	// Sum of stored like counts across the author's other processed casts,
	// excluding the cast being scored.
	OtherCastLikes int64
}

// Scorer computes point deltas per cast. Construct with NewScorer.
type Scorer struct {
	policy PointPolicy
	window time.Duration
}

func NewScorer(policy PointPolicy, window time.Duration) *Scorer {
	if window <= 0 {
		window = DefaultRecomputeWindow
	}
	return &Scorer{policy: policy, window: window}
}

// Score computes the author's and reactors' point deltas for one cast.
//
// First sighting awards the full cast: post points plus current like and
// recast counts for the author, one single-action award per distinct reactor.
// Inside the recompute window the cast is frozen and the delta is a no-op,
// which is what makes repeated polling idempotent. Past the window the author
// is re-awarded only the growth of their aggregate like count since the last
// pass, clamped at zero, while recasts are re-awarded at the full current
// count. Reactors are only awarded on first sighting.
func (s *Scorer) Score(cast feed.Cast, state AuthorState, now time.Time) (*Delta, error) {
	if cast.Author.Fid == 0 {
		return nil, &MalformedCastError{Hash: cast.Hash, Reason: "missing author fid"}
	}

	likesCount := int64(len(cast.Reactions.Likes))
	recastsCount := int64(len(cast.Reactions.Recasts))

	if state.Marker == nil {
		delta := &Delta{
			Kind: DeltaFirstSighting,
			Author: s.policy.Award(ActionPost) +
				likesCount*s.policy.Award(ActionLike) +
				recastsCount*s.policy.Award(ActionRecast),
			Reactors: s.reactorDeltas(cast),
		}
		return delta, nil
	}

	if now.Sub(state.Marker.ScoredAt) < s.window {
		return &Delta{Kind: DeltaNoOp, Reactors: map[int64]ReactorDelta{}}, nil
	}

	// Recompute: award only the growth of the author's aggregate like count
	// since the last pass. A shrinking count (feed inconsistency) clamps to
	// zero rather than clawing points back. Recasts are not delta-gated, the
	// full current count is re-awarded every recompute.
	newAggregateLikes := state.OtherCastLikes + likesCount
	likesDifference := newAggregateLikes - state.ReferenceLikes
	if likesDifference < 0 {
		likesDifference = 0
	}
	delta := &Delta{
		Kind: DeltaRecompute,
		Author: likesDifference*s.policy.Award(ActionLike) +
			recastsCount*s.policy.Award(ActionRecast),
		Reactors:      map[int64]ReactorDelta{},
		PriorScoredAt: state.Marker.ScoredAt,
	}
	return delta, nil
}

// reactorDeltas fans the cast's reaction lists out into per-identity awards.
// A reactor appearing twice in one reaction list counts once per kind; liking
// and recasting the same cast are distinct actions and both award.
func (s *Scorer) reactorDeltas(cast feed.Cast) map[int64]ReactorDelta {
	deltas := make(map[int64]ReactorDelta)

	award := func(reactions []feed.Reaction, kind ActionKind) {
		seen := make(map[int64]bool)
		for _, r := range reactions {
			if r.Fid == 0 || seen[r.Fid] {
				continue
			}
			seen[r.Fid] = true
			d := deltas[r.Fid]
			d.Points += s.policy.Award(kind)
			if r.Fname != "" {
				d.Username = r.Fname
			}
			deltas[r.Fid] = d
		}
	}

	award(cast.Reactions.Likes, ActionLike)
	award(cast.Reactions.Recasts, ActionRecast)

	return deltas
}
