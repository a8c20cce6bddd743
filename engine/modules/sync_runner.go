package modules

import (
	"context"
	"encoding/json"

	"github.com/Mankeylol/lolly-leaderboard-backend/engine"
	"github.com/Mankeylol/lolly-leaderboard-backend/leaderboard"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type SyncRunnerConfig struct {
	// Name of the runner.
	Name string
}

// SyncRunner listens for sync requests on the event bus, runs one full
// leaderboard sync per request, invalidates the leaderboard cache when a run
// lands fresh points, and publishes the run report for the reporter.
type SyncRunner struct {
	engine.Module

	Config SyncRunnerConfig

	Syncer *leaderboard.Syncer

	Cache *utils.LeaderboardCache

	EventBus *gochannel.GoChannel
}

// Return a new instance of SyncRunner.
func NewSyncRunner(config SyncRunnerConfig, syncer *leaderboard.Syncer, cache *utils.LeaderboardCache, e *gochannel.GoChannel) *SyncRunner {
	return &SyncRunner{
		Config:   config,
		Syncer:   syncer,
		Cache:    cache,
		EventBus: e,
	}
}

// After a run finished, publish its report for the reporter to emit metrics.
func (r *SyncRunner) publishRunReport(report *leaderboard.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return r.EventBus.Publish(engine.TOPIC_SYNC_REPORT, msg)
}

func (r *SyncRunner) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, engine.TOPIC_SYNC_REQUEST)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		report := r.Syncer.Run(ctx)
		if report.CastsScored > 0 {
			r.Cache.InvalidateLeaderboard()
		}
		if err := r.publishRunReport(report); err != nil {
			Logger.Log.Errorf("fail to publish run report: %v", err)
		}
	}

	return nil
}

func (r *SyncRunner) Name() string {
	return r.Config.Name
}
