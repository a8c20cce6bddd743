package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Mankeylol/lolly-leaderboard-backend/app_config"
	"github.com/Mankeylol/lolly-leaderboard-backend/engine"
	"github.com/Mankeylol/lolly-leaderboard-backend/engine/modules"
	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/leaderboard"
	"github.com/Mankeylol/lolly-leaderboard-backend/scoring"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils/dotenv"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

var (
	AppConfigPath *string
	// Configuration to customize binary startup.
	AppConfig app_config.SyncerAppConfig
)

// init() will always be called on before the execution of main function.
func init() {
	AppConfigPath = flag.String("app_config_path", "cmd/syncer/config.yaml", "path to syncer app config")
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func NewDogStatsdClient() *statsd.Client {
	statsd, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return statsd
}

func NewSyncer() *leaderboard.Syncer {
	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	policy := scoring.PointPolicy{
		PostPoints:   AppConfig.POST_POINTS,
		LikePoints:   AppConfig.LIKE_POINTS,
		RecastPoints: AppConfig.RECAST_POINTS,
	}
	scorer := scoring.NewScorer(policy, time.Duration(AppConfig.RECOMPUTE_WINDOW_HOUR)*time.Hour)
	fetcher := feed.NewNeynarClientFromEnv(AppConfig.CHANNEL_ID, AppConfig.PAGE_LIMIT)

	return leaderboard.NewSyncer(fetcher, store.NewPgUserStore(db), scorer)
}

func main() {
	flag.Parse()
	Logger.InitLogger()
	utils.InitTracer()
	utils.InitProfiler()
	defer utils.CloseTracer()
	defer utils.CloseProfiler()

	AppConfig = app_config.ParseSyncerAppConfig(*AppConfigPath)

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize all engine modules here.
	ms := []engine.Module{
		// Reporter sends the execution metrics to Datadog for monitoring.
		modules.NewReporter(modules.ReporterConfig{Name: "reporter"}, NewDogStatsdClient(), eventbus),
		// Scheduler requests a sync pass every interval.
		modules.NewScheduler(
			modules.SchedulerConfig{
				Name:     "scheduler",
				Interval: time.Duration(AppConfig.SYNC_INTERVAL_SECOND) * time.Second,
			},
			eventbus,
		),
		// SyncRunner executes requested sync passes and publishes run reports.
		modules.NewSyncRunner(
			modules.SyncRunnerConfig{Name: "sync_runner"},
			NewSyncer(),
			utils.GetLeaderboardCache(),
			eventbus,
		),
	}

	e := engine.NewEngine(ms, eventbus)

	// blocking call.
	e.Run(ctx)

	Logger.Log.Infoln("engine stopped execution")
}
