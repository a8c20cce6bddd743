package modules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/engine"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type SchedulerConfig struct {
	// Name of the scheduler.
	Name string
	// Time between two sync passes.
	Interval time.Duration
}

// SyncRequest is the payload published on every scheduler tick.
type SyncRequest struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Scheduler periodically asks for a leaderboard sync pass by publishing on
// the event bus. The first tick fires immediately on startup.
type Scheduler struct {
	engine.Module

	Config SchedulerConfig

	EventBus *gochannel.GoChannel
}

// Return a new instance of Scheduler.
func NewScheduler(config SchedulerConfig, e *gochannel.GoChannel) *Scheduler {
	return &Scheduler{
		Config:   config,
		EventBus: e,
	}
}

func (s *Scheduler) publishSyncRequest() error {
	payload, err := json.Marshal(SyncRequest{RequestedAt: time.Now()})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.EventBus.Publish(engine.TOPIC_SYNC_REQUEST, msg)
}

func (s *Scheduler) RunModule(ctx context.Context) error {
	if err := s.publishSyncRequest(); err != nil {
		return err
	}

	ticker := time.NewTicker(s.Config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			Logger.Log.Infof("scheduler %s requesting sync pass", s.Name())
			if err := s.publishSyncRequest(); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) Name() string {
	return s.Config.Name
}
