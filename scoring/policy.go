package scoring

// ActionKind enumerates the scoreable actions on a cast.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	// Cast authored.
	ActionPost
	// Like received or given.
	ActionLike
	// Recast received or given.
	ActionRecast
)

// PointPolicy maps an action kind to its point award. Weights are
// configuration, not constants: every scoring call site goes through Award so
// tuning never touches the scorer.
type PointPolicy struct {
	PostPoints   int64
	LikePoints   int64
	RecastPoints int64
}

// DefaultPointPolicy returns the production weights.
func DefaultPointPolicy() PointPolicy {
	return PointPolicy{
		PostPoints:   169,
		LikePoints:   10,
		RecastPoints: 40,
	}
}

// Award returns the point value of one action. Total over all kinds; unknown
// kinds award zero.
func (p PointPolicy) Award(kind ActionKind) int64 {
	switch kind {
	case ActionPost:
		return p.PostPoints
	case ActionLike:
		return p.LikePoints
	case ActionRecast:
		return p.RecastPoints
	default:
		return 0
	}
}
