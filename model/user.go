package model

import "time"

/*

User is one leaderboard participant, keyed by their Farcaster fid. A row is
created the first time an fid is seen, either as a cast author or as a
reactor, and is never deleted by the sync engine.

Points only ever grows, and is only ever mutated through atomic increments at
the store boundary. LikesCount is the cached aggregate of like counts across
all of the user's processed casts as of the last scoring pass; the scorer
diffs fresh aggregates against it to award only new likes on recompute.
Username is last-write-wins on every sighting.

*/

type User struct {
	Fid        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Username   string
	Points     int64
	LikesCount int64

	ProcessedCasts []ProcessedCast `json:"processed_casts" gorm:"foreignKey:UserFid;references:Fid"`
}
