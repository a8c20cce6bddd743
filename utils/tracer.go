package utils

import (
	. "github.com/Mankeylol/lolly-leaderboard-backend/utils/flag"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// InitTracer starts the Datadog tracer. No-op outside of prod so that local
// runs and tests don't attempt to reach an agent.
func InitTracer() {
	if !IsProdEnv() {
		return
	}

	tracer.Start(
		tracer.WithService(ServiceName),
		tracer.WithEnv("production"),
	)

	Logger.Log.WithFields(
		logrus.Fields{"service": ServiceName},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
