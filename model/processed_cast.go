package model

import "time"

// ProcessedCast marks that one cast was scored for one author. The composite
// unique index on (user_fid, hash) guarantees at most one marker per pair:
// re-sightings overwrite the row in place, they never append.
//
// ScoredAt gates recompute: a cast is rescored only once its marker is older
// than the recompute window.
type ProcessedCast struct {
	Id           int64  `gorm:"primaryKey"`
	UserFid      int64  `gorm:"uniqueIndex:idx_user_fid_hash"`
	Hash         string `gorm:"uniqueIndex:idx_user_fid_hash"`
	LikesCount   int64
	RecastsCount int64
	Username     string
	ScoredAt     time.Time
}
