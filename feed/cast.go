package feed

import (
	"time"

	"github.com/araddon/dateparse"
)

// Reaction is one like or recast on a cast. The feed only reports who
// reacted, recency is tracked on the enclosing cast's processed marker.
type Reaction struct {
	Fid   int64  `json:"fid"`
	Fname string `json:"fname"`
}

type Author struct {
	Fid      int64  `json:"fid"`
	Username string `json:"username"`
}

type Reactions struct {
	Likes   []Reaction `json:"likes"`
	Recasts []Reaction `json:"recasts"`
}

// Cast is one post as reported by the channel feed. Identity is the content
// hash. The feed is a live view, not a snapshot: re-fetches of the same hash
// may carry updated reaction lists.
type Cast struct {
	Hash      string    `json:"hash"`
	Author    Author    `json:"author"`
	Reactions Reactions `json:"reactions"`
	Timestamp string    `json:"timestamp"`
}

// CreatedAt parses the cast's wire timestamp. The feed has served several
// shapes over time, so lean on dateparse instead of a fixed layout. Returns
// zero time when unparseable.
func (c *Cast) CreatedAt() time.Time {
	t, err := dateparse.ParseAny(c.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Page is one page of a cursor-paginated feed. An empty NextCursor means the
// traversal is complete; an empty Casts slice alone does not.
type Page struct {
	Casts      []Cast
	NextCursor string
}
