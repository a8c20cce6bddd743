package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/scoring"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = scoring.PointPolicy{PostPoints: 100, LikePoints: 10, RecastPoints: 20}

type fakeFetcher struct {
	pages  map[string]*feed.Page
	failAt string
	fail   bool
}

func (f *fakeFetcher) FetchPage(ctx context.Context, cursor string) (*feed.Page, error) {
	if f.fail && cursor == f.failAt {
		return nil, errors.New("upstream unavailable")
	}
	page, ok := f.pages[cursor]
	if !ok {
		return nil, errors.New("unknown cursor")
	}
	return page, nil
}

func singlePage(casts ...feed.Cast) *fakeFetcher {
	return &fakeFetcher{pages: map[string]*feed.Page{
		"": {Casts: casts, NextCursor: ""},
	}}
}

func testCast() feed.Cast {
	return feed.Cast{
		Hash:   "0xabc",
		Author: feed.Author{Fid: 1, Username: "u1"},
		Reactions: feed.Reactions{
			Likes: []feed.Reaction{
				{Fid: 2, Fname: "u2"},
				{Fid: 3, Fname: "u3"},
			},
			Recasts: []feed.Reaction{
				{Fid: 4, Fname: "u4"},
			},
		},
	}
}

func newTestSyncer(fetcher feed.PageFetcher, userStore store.UserStore) *Syncer {
	return NewSyncer(fetcher, userStore, scoring.NewScorer(testPolicy, 24*time.Hour))
}

func TestSyncEndToEndFirstSighting(t *testing.T) {
	userStore := store.NewFakeUserStore()
	syncer := newTestSyncer(singlePage(testCast()), userStore)

	report := syncer.Run(context.Background())

	assert.Equal(t, RunDone, report.Status)
	assert.Equal(t, 1, report.CastsSeen)
	assert.Equal(t, 1, report.CastsScored)
	assert.Equal(t, 0, report.CastsSkipped)

	author := userStore.User(1)
	require.NotNil(t, author)
	assert.Equal(t, int64(100+20+20), author.Points)
	assert.Equal(t, "u1", author.Username)
	assert.Equal(t, int64(2), author.LikesCount)
	require.Len(t, author.ProcessedCasts, 1)
	marker := author.ProcessedCasts[0]
	assert.Equal(t, "0xabc", marker.Hash)
	assert.Equal(t, int64(2), marker.LikesCount)
	assert.Equal(t, int64(1), marker.RecastsCount)

	assert.Equal(t, int64(10), userStore.User(2).Points)
	assert.Equal(t, int64(10), userStore.User(3).Points)
	assert.Equal(t, int64(20), userStore.User(4).Points)
}

// Scoring the same cast twice inside the recompute window awards nothing new.
func TestSyncIdempotentWithinWindow(t *testing.T) {
	userStore := store.NewFakeUserStore()
	syncer := newTestSyncer(singlePage(testCast()), userStore)

	first := syncer.Run(context.Background())
	require.Equal(t, RunDone, first.Status)
	second := syncer.Run(context.Background())
	require.Equal(t, RunDone, second.Status)

	assert.Equal(t, 1, second.CastsSeen)
	assert.Equal(t, 0, second.CastsScored)
	assert.Equal(t, 0, second.CastsSkipped)

	assert.Equal(t, int64(140), userStore.User(1).Points)
	assert.Equal(t, int64(10), userStore.User(2).Points)
	assert.Equal(t, int64(10), userStore.User(3).Points)
	assert.Equal(t, int64(20), userStore.User(4).Points)
	// still exactly one marker for the (author, hash) pair
	require.Len(t, userStore.User(1).ProcessedCasts, 1)
}

func TestSyncRecomputeAfterWindow(t *testing.T) {
	userStore := store.NewFakeUserStore()

	// Use a tiny window so the second run is already outside of it.
	scorer := scoring.NewScorer(testPolicy, time.Nanosecond)

	cast := testCast()
	syncer := NewSyncer(singlePage(cast), userStore, scorer)
	require.Equal(t, RunDone, syncer.Run(context.Background()).Status)

	// The cast grew from 2 to 5 likes between the passes.
	grown := testCast()
	grown.Reactions.Likes = []feed.Reaction{
		{Fid: 2, Fname: "u2"}, {Fid: 3, Fname: "u3"},
		{Fid: 5, Fname: "u5"}, {Fid: 6, Fname: "u6"}, {Fid: 7, Fname: "u7"},
	}
	syncer = NewSyncer(singlePage(grown), userStore, scorer)
	report := syncer.Run(context.Background())
	require.Equal(t, RunDone, report.Status)
	assert.Equal(t, 1, report.CastsScored)

	author := userStore.User(1)
	// 140 from the first pass, then +3 likes and the full recast re-award
	assert.Equal(t, int64(140+3*10+1*20), author.Points)
	assert.Equal(t, int64(5), author.LikesCount)
	require.Len(t, author.ProcessedCasts, 1)
	assert.Equal(t, int64(5), author.ProcessedCasts[0].LikesCount)
	// reactors are not awarded on recompute
	assert.Nil(t, userStore.User(5))
}

// A malformed cast in the middle of a page doesn't take down its neighbors.
func TestSyncPartialFailureIsolation(t *testing.T) {
	casts := []feed.Cast{}
	for i := 1; i <= 5; i++ {
		cast := feed.Cast{
			Hash:   "0xhash" + string(rune('0'+i)),
			Author: feed.Author{Fid: int64(10 + i), Username: "author"},
		}
		if i == 2 {
			cast.Author.Fid = 0
		}
		casts = append(casts, cast)
	}
	userStore := store.NewFakeUserStore()
	syncer := newTestSyncer(singlePage(casts...), userStore)

	report := syncer.Run(context.Background())

	assert.Equal(t, RunDone, report.Status)
	assert.Equal(t, 5, report.CastsSeen)
	assert.Equal(t, 4, report.CastsScored)
	assert.Equal(t, 1, report.CastsSkipped)
	for _, fid := range []int64{11, 13, 14, 15} {
		require.NotNil(t, userStore.User(fid))
		assert.Equal(t, int64(100), userStore.User(fid).Points)
	}
}

func TestSyncStoreFailureSkipsCast(t *testing.T) {
	userStore := store.NewFakeUserStore()
	userStore.FailOps["ensure"] = true
	syncer := newTestSyncer(singlePage(testCast()), userStore)

	report := syncer.Run(context.Background())

	assert.Equal(t, RunDone, report.Status)
	assert.Equal(t, 1, report.CastsSkipped)
	assert.Equal(t, 0, report.CastsScored)
}

func TestSyncFetchFailureFailsRunWithResumeCursor(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]*feed.Page{
			"": {Casts: []feed.Cast{testCast()}, NextCursor: "A"},
		},
		failAt: "A",
		fail:   true,
	}
	userStore := store.NewFakeUserStore()
	syncer := newTestSyncer(fetcher, userStore)

	report := syncer.Run(context.Background())

	assert.Equal(t, RunFailed, report.Status)
	assert.Equal(t, "A", report.ResumeCursor)
	assert.NotEmpty(t, report.Error)
	// the page before the failure was still reconciled
	assert.Equal(t, 1, report.CastsScored)
	require.NotNil(t, userStore.User(1))
}

func TestSyncWalksMultiplePages(t *testing.T) {
	castOnPage := func(hash string, fid int64) feed.Cast {
		return feed.Cast{Hash: hash, Author: feed.Author{Fid: fid, Username: "author"}}
	}
	fetcher := &fakeFetcher{pages: map[string]*feed.Page{
		"":  {Casts: []feed.Cast{castOnPage("0x1", 1), castOnPage("0x2", 2)}, NextCursor: "A"},
		"A": {Casts: []feed.Cast{castOnPage("0x3", 3)}, NextCursor: "B"},
		"B": {Casts: []feed.Cast{}, NextCursor: "C"},
		"C": {Casts: []feed.Cast{}, NextCursor: ""},
	}}
	userStore := store.NewFakeUserStore()
	syncer := newTestSyncer(fetcher, userStore)

	report := syncer.Run(context.Background())

	assert.Equal(t, RunDone, report.Status)
	assert.Equal(t, 3, report.CastsSeen)
	assert.Equal(t, 3, report.CastsScored)
}

func likeList(n int, baseFid int64) []feed.Reaction {
	likes := make([]feed.Reaction, n)
	for i := range likes {
		likes[i] = feed.Reaction{Fid: baseFid + int64(i), Fname: "reactor"}
	}
	return likes
}

// One author with two casts on the same page, rescored across passes. The
// reference aggregate is recomputed from the marker rows store-side, so each
// cast's like growth is awarded exactly once no matter how the page's
// goroutines interleave, and a pass with no growth awards nothing.
func TestSyncSameAuthorCastsOnOnePage(t *testing.T) {
	userStore := store.NewFakeUserStore()
	scorer := scoring.NewScorer(testPolicy, time.Nanosecond)

	pageWith := func(likesA, likesB int) *fakeFetcher {
		return singlePage(
			feed.Cast{
				Hash:      "0xaaa",
				Author:    feed.Author{Fid: 1, Username: "u1"},
				Reactions: feed.Reactions{Likes: likeList(likesA, 100)},
			},
			feed.Cast{
				Hash:      "0xbbb",
				Author:    feed.Author{Fid: 1, Username: "u1"},
				Reactions: feed.Reactions{Likes: likeList(likesB, 200)},
			},
		)
	}

	syncer := NewSyncer(pageWith(1, 1), userStore, scorer)
	require.Equal(t, RunDone, syncer.Run(context.Background()).Status)
	require.Equal(t, int64(2*100+2*10), userStore.User(1).Points)
	require.Equal(t, int64(2), userStore.User(1).LikesCount)

	// Both casts grew between passes: 1->5 and 1->3 likes.
	syncer = NewSyncer(pageWith(5, 3), userStore, scorer)
	require.Equal(t, RunDone, syncer.Run(context.Background()).Status)
	assert.Equal(t, int64(220+6*10), userStore.User(1).Points)
	assert.Equal(t, int64(8), userStore.User(1).LikesCount)

	// No growth since the last pass: nothing further is awarded.
	syncer = NewSyncer(pageWith(5, 3), userStore, scorer)
	require.Equal(t, RunDone, syncer.Run(context.Background()).Status)
	assert.Equal(t, int64(280), userStore.User(1).Points)
	assert.Equal(t, int64(8), userStore.User(1).LikesCount)
	require.Len(t, userStore.User(1).ProcessedCasts, 2)
}
