package modules

import (
	"context"
	"encoding/json"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Mankeylol/lolly-leaderboard-backend/engine"
	"github.com/Mankeylol/lolly-leaderboard-backend/leaderboard"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ReporterConfig struct {
	Name string
}

// Reporter's job is to listen to run reports and send the counters to
// Datadog (or other service if there's any) for monitoring purpose.
type Reporter struct {
	engine.Module

	Config ReporterConfig

	Statsd *statsd.Client

	EventBus *gochannel.GoChannel
}

func NewReporter(config ReporterConfig, statsd *statsd.Client, e *gochannel.GoChannel) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// Report one run's counters to Datadog.
func ReportRunResult(report *leaderboard.RunReport, client *statsd.Client) {
	tags := []string{"status:" + string(report.Status)}
	if err := client.Incr(engine.DDOG_SYNC_RUN_COUNTER, tags, 1); err != nil {
		Logger.Log.Infoln("cannot report run counter")
	}
	client.Count(engine.DDOG_CASTS_SEEN_COUNTER, int64(report.CastsSeen), tags, 1)
	client.Count(engine.DDOG_CASTS_SCORED_COUNTER, int64(report.CastsScored), tags, 1)
	client.Count(engine.DDOG_CASTS_SKIPPED_COUNTER, int64(report.CastsSkipped), tags, 1)
}

func (r *Reporter) ProcessRunReports(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, engine.TOPIC_SYNC_REPORT)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		report := leaderboard.RunReport{}
		if err := json.Unmarshal(msg.Payload, &report); err != nil {
			return err
		}

		ReportRunResult(&report, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	return r.ProcessRunReports(ctx)
}

func (r *Reporter) Name() string {
	return r.Config.Name
}
