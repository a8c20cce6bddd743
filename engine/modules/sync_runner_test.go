package modules

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/engine"
	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/leaderboard"
	"github.com/Mankeylol/lolly-leaderboard-backend/scoring"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	page *feed.Page
}

func (f *stubFetcher) FetchPage(ctx context.Context, cursor string) (*feed.Page, error) {
	return f.page, nil
}

func TestSyncRunnerRunsOnRequestAndReports(t *testing.T) {
	// Persistent so the request published below reaches the runner even if
	// it subscribes a moment later.
	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &stubFetcher{page: &feed.Page{
		Casts: []feed.Cast{{
			Hash:   "0xabc",
			Author: feed.Author{Fid: 1, Username: "u1"},
			Reactions: feed.Reactions{
				Likes: []feed.Reaction{{Fid: 2, Fname: "u2"}},
			},
		}},
	}}
	userStore := store.NewFakeUserStore()
	syncer := leaderboard.NewSyncer(fetcher, userStore, scoring.NewScorer(scoring.DefaultPointPolicy(), 24*time.Hour))

	reports, err := bus.Subscribe(ctx, engine.TOPIC_SYNC_REPORT)
	require.NoError(t, err)

	runner := NewSyncRunner(SyncRunnerConfig{Name: "test_runner"}, syncer, nil, bus)
	go runner.RunModule(ctx)

	payload, err := json.Marshal(SyncRequest{RequestedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(engine.TOPIC_SYNC_REQUEST, message.NewMessage(watermill.NewUUID(), payload)))

	select {
	case msg := <-reports:
		msg.Ack()
		var report leaderboard.RunReport
		require.NoError(t, json.Unmarshal(msg.Payload, &report))
		assert.Equal(t, leaderboard.RunDone, report.Status)
		assert.Equal(t, 1, report.CastsSeen)
		assert.Equal(t, 1, report.CastsScored)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run report")
	}

	author := userStore.User(1)
	require.NotNil(t, author)
	assert.Equal(t, int64(169+10), author.Points)
	assert.Equal(t, int64(10), userStore.User(2).Points)
}
