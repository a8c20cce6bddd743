package store

import (
	"context"
	"errors"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgUserStore is the Postgres implementation of UserStore on top of gorm.
// Points mutations go through ON CONFLICT upserts with a store-side
// "points + ?" expression, and the marker gates ride the composite unique
// index on (user_fid, hash): claims are ON CONFLICT DO NOTHING inserts,
// refreshes are conditional updates on scored_at. That is what keeps
// concurrent sync runs from losing increments or awarding a cast twice.
type PgUserStore struct {
	DB *gorm.DB
}

func NewPgUserStore(db *gorm.DB) *PgUserStore {
	return &PgUserStore{DB: db}
}

func (s *PgUserStore) FindByFid(ctx context.Context, fid int64) (*model.User, error) {
	var user model.User
	res := s.DB.WithContext(ctx).Preload("ProcessedCasts").Where("fid = ?", fid).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &StoreError{Op: "find", Fid: fid, Err: res.Error}
	}
	return &user, nil
}

func (s *PgUserStore) EnsureUser(ctx context.Context, fid int64, username string) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fid"}},
		DoNothing: true,
	}).Create(&model.User{Fid: fid, Username: username})
	if res.Error != nil {
		return &StoreError{Op: "ensure", Fid: fid, Err: res.Error}
	}
	return nil
}

func (s *PgUserStore) IncrementPoints(ctx context.Context, fid int64, username string, amount int64) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("users.points + ?", amount),
			"username":   username,
			"updated_at": time.Now(),
		}),
	}).Create(&model.User{Fid: fid, Username: username, Points: amount})
	if res.Error != nil {
		return &StoreError{Op: "increment", Fid: fid, Err: res.Error}
	}
	return nil
}

func (s *PgUserStore) ClaimProcessedCast(ctx context.Context, marker *model.ProcessedCast) (bool, error) {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_fid"}, {Name: "hash"}},
		DoNothing: true,
	}).Create(marker)
	if res.Error != nil {
		return false, &StoreError{Op: "claim marker", Fid: marker.UserFid, Err: res.Error}
	}
	return res.RowsAffected == 1, nil
}

func (s *PgUserStore) RefreshProcessedCast(ctx context.Context, marker *model.ProcessedCast, basedOn time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&model.ProcessedCast{}).
		Where("user_fid = ? AND hash = ? AND scored_at = ?", marker.UserFid, marker.Hash, basedOn).
		Updates(map[string]interface{}{
			"likes_count":   marker.LikesCount,
			"recasts_count": marker.RecastsCount,
			"username":      marker.Username,
			"scored_at":     marker.ScoredAt,
		})
	if res.Error != nil {
		return false, &StoreError{Op: "refresh marker", Fid: marker.UserFid, Err: res.Error}
	}
	return res.RowsAffected == 1, nil
}

func (s *PgUserStore) RefreshLikesAggregate(ctx context.Context, fid int64) error {
	res := s.DB.WithContext(ctx).Exec(
		`UPDATE users SET likes_count = (SELECT COALESCE(SUM(likes_count), 0) FROM processed_casts WHERE user_fid = ?), updated_at = ? WHERE fid = ?`,
		fid, time.Now(), fid)
	if res.Error != nil {
		return &StoreError{Op: "refresh likes", Fid: fid, Err: res.Error}
	}
	return nil
}

func (s *PgUserStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	res := s.DB.WithContext(ctx).Order("points DESC").Limit(limit).Find(&users)
	if res.Error != nil {
		return nil, &StoreError{Op: "top users", Err: res.Error}
	}
	return users, nil
}
