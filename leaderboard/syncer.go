package leaderboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mankeylol/lolly-leaderboard-backend/feed"
	"github.com/Mankeylol/lolly-leaderboard-backend/scoring"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/google/uuid"
)

type RunStatus string

const (
	RunDone   RunStatus = "done"
	RunFailed RunStatus = "failed"
)

// RunReport is the outcome of one full sync pass over the channel feed.
type RunReport struct {
	RunId        string    `json:"run_id"`
	Status       RunStatus `json:"status"`
	CastsSeen    int       `json:"casts_seen"`
	CastsScored  int       `json:"casts_scored"`
	CastsSkipped int       `json:"casts_skipped"`
	// Cursor of the page fetch that failed, empty unless Status is failed. A
	// later run can resume the traversal from here.
	ResumeCursor string    `json:"resume_cursor"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Syncer is the top level orchestrator: it walks the channel feed page by
// page, scores every cast and reconciles the deltas into the user store.
type Syncer struct {
	Fetcher    feed.PageFetcher
	Store      store.UserStore
	Scorer     *scoring.Scorer
	Reconciler *Reconciler
}

func NewSyncer(fetcher feed.PageFetcher, userStore store.UserStore, scorer *scoring.Scorer) *Syncer {
	return &Syncer{
		Fetcher:    fetcher,
		Store:      userStore,
		Scorer:     scorer,
		Reconciler: NewReconciler(userStore),
	}
}

// Run performs one full traversal. Casts within a page are scored and
// reconciled concurrently, their per-fid writes are independent; pages are
// fetched strictly in cursor order because each fetch needs the previous
// page's cursor. Per-cast failures (malformed cast, store write failure) are
// counted and skipped; only a page-fetch failure fails the run, reporting the
// cursor to resume from.
func (s *Syncer) Run(ctx context.Context) *RunReport {
	report := &RunReport{
		RunId:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	var mu sync.Mutex

	err := feed.WalkPages(ctx, s.Fetcher, func(page *feed.Page) error {
		var wg sync.WaitGroup
		for i := range page.Casts {
			wg.Add(1)
			go func(cast feed.Cast) {
				defer wg.Done()
				scored, skipped := s.processCast(ctx, cast, report.RunId)
				mu.Lock()
				report.CastsSeen++
				if scored {
					report.CastsScored++
				}
				if skipped {
					report.CastsSkipped++
				}
				mu.Unlock()
			}(page.Casts[i])
		}
		wg.Wait()
		return nil
	})

	report.FinishedAt = time.Now()
	if err != nil {
		report.Status = RunFailed
		report.Error = err.Error()
		var fetchErr *feed.FetchError
		if errors.As(err, &fetchErr) {
			report.ResumeCursor = fetchErr.Cursor
		}
		Logger.Log.Errorf("sync run %s failed: %v", report.RunId, err)
		return report
	}
	report.Status = RunDone
	Logger.Log.Infof(
		"sync run %s done: %d casts seen, %d scored, %d skipped",
		report.RunId, report.CastsSeen, report.CastsScored, report.CastsSkipped)
	return report
}

// processCast scores and reconciles one cast. Returns whether the cast was
// scored and whether it was skipped; a no-op inside the recompute window is
// neither.
func (s *Syncer) processCast(ctx context.Context, cast feed.Cast, runId string) (scored bool, skipped bool) {
	state, err := s.authorState(ctx, cast)
	if err != nil {
		Logger.Log.Errorf("run %s: fail to load author state for cast %s: %v", runId, cast.Hash, err)
		return false, true
	}

	delta, err := s.Scorer.Score(cast, state, time.Now())
	if err != nil {
		Logger.Log.Errorf("run %s: skip cast %s: %v", runId, cast.Hash, err)
		return false, true
	}
	if delta.Kind == scoring.DeltaNoOp {
		return false, false
	}

	applied, err := s.Reconciler.Apply(ctx, cast, delta, time.Now())
	if err != nil {
		Logger.Log.Errorf("run %s: fail to reconcile cast %s: %v", runId, cast.Hash, err)
		return false, true
	}
	if !applied {
		// An overlapping run won the cast's marker between our read and our
		// write; its award stands, ours doesn't apply.
		return false, false
	}
	return true, false
}

// authorState gathers the persistent state the scorer needs for this cast's
// author: the marker for this hash, the cached reference aggregate, and the
// stored like counts of the author's other processed casts.
func (s *Syncer) authorState(ctx context.Context, cast feed.Cast) (scoring.AuthorState, error) {
	state := scoring.AuthorState{}
	if cast.Author.Fid == 0 {
		// Let the scorer reject it as malformed.
		return state, nil
	}

	author, err := s.Store.FindByFid(ctx, cast.Author.Fid)
	if err != nil {
		return state, err
	}
	if author == nil {
		return state, nil
	}

	state.ReferenceLikes = author.LikesCount
	for i := range author.ProcessedCasts {
		pc := author.ProcessedCasts[i]
		if pc.Hash == cast.Hash {
			marker := pc
			state.Marker = &marker
		} else {
			state.OtherCastLikes += pc.LikesCount
		}
	}
	return state, nil
}
