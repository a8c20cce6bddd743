package engine

const (
	// A sync pass has been requested by the scheduler.
	TOPIC_SYNC_REQUEST = "topic.sync_request"
	// A sync pass finished, payload is the run report.
	TOPIC_SYNC_REPORT = "topic.sync_report"

	// Datadog counters emitted by the reporter.
	DDOG_SYNC_RUN_COUNTER      = "leaderboard.sync.run"
	DDOG_CASTS_SEEN_COUNTER    = "leaderboard.sync.casts_seen"
	DDOG_CASTS_SCORED_COUNTER  = "leaderboard.sync.casts_scored"
	DDOG_CASTS_SKIPPED_COUNTER = "leaderboard.sync.casts_skipped"
)
