package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/model"
)

// FakeUserStore is the in-memory UserStore used by tests. Mutations hold a
// single lock, so each call is atomic the same way the Postgres statements
// are. FailOps makes the named operations fail, to exercise skip paths.
type FakeUserStore struct {
	mu      sync.Mutex
	users   map[int64]*model.User
	FailOps map[string]bool
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{
		users:   make(map[int64]*model.User),
		FailOps: make(map[string]bool),
	}
}

func (s *FakeUserStore) fail(op string, fid int64) error {
	if s.FailOps[op] {
		return &StoreError{Op: op, Fid: fid, Err: errors.New("injected failure")}
	}
	return nil
}

func (s *FakeUserStore) FindByFid(ctx context.Context, fid int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("find", fid); err != nil {
		return nil, err
	}
	user, ok := s.users[fid]
	if !ok {
		return nil, nil
	}
	clone := *user
	clone.ProcessedCasts = append([]model.ProcessedCast{}, user.ProcessedCasts...)
	return &clone, nil
}

func (s *FakeUserStore) EnsureUser(ctx context.Context, fid int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ensure", fid); err != nil {
		return err
	}
	if _, ok := s.users[fid]; !ok {
		s.users[fid] = &model.User{Fid: fid, Username: username}
	}
	return nil
}

func (s *FakeUserStore) IncrementPoints(ctx context.Context, fid int64, username string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("increment", fid); err != nil {
		return err
	}
	user, ok := s.users[fid]
	if !ok {
		s.users[fid] = &model.User{Fid: fid, Username: username, Points: amount}
		return nil
	}
	user.Points += amount
	user.Username = username
	return nil
}

func (s *FakeUserStore) ClaimProcessedCast(ctx context.Context, marker *model.ProcessedCast) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("claim marker", marker.UserFid); err != nil {
		return false, err
	}
	user, ok := s.users[marker.UserFid]
	if !ok {
		return false, &StoreError{Op: "claim marker", Fid: marker.UserFid, Err: errors.New("no such user")}
	}
	for i := range user.ProcessedCasts {
		if user.ProcessedCasts[i].Hash == marker.Hash {
			return false, nil
		}
	}
	user.ProcessedCasts = append(user.ProcessedCasts, *marker)
	return true, nil
}

func (s *FakeUserStore) RefreshProcessedCast(ctx context.Context, marker *model.ProcessedCast, basedOn time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("refresh marker", marker.UserFid); err != nil {
		return false, err
	}
	user, ok := s.users[marker.UserFid]
	if !ok {
		return false, nil
	}
	for i := range user.ProcessedCasts {
		pc := &user.ProcessedCasts[i]
		if pc.Hash == marker.Hash && pc.ScoredAt.Equal(basedOn) {
			*pc = *marker
			return true, nil
		}
	}
	return false, nil
}

func (s *FakeUserStore) RefreshLikesAggregate(ctx context.Context, fid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("refresh likes", fid); err != nil {
		return err
	}
	user, ok := s.users[fid]
	if !ok {
		return nil
	}
	var total int64
	for i := range user.ProcessedCasts {
		total += user.ProcessedCasts[i].LikesCount
	}
	user.LikesCount = total
	return nil
}

func (s *FakeUserStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("top users", 0); err != nil {
		return nil, err
	}
	users := []model.User{}
	for _, u := range s.users {
		clone := *u
		users = append(users, clone)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// User returns the stored record, for test assertions.
func (s *FakeUserStore) User(fid int64) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[fid]
}
