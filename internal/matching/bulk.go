package matching

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/talent-matcher/internal/models"
)

// BulkOutcome is the result of one candidate in a bulk run. Result is nil
// when the candidate was never dispatched.
type BulkOutcome struct {
	Candidate Candidate
	Result    *models.MatchResult
	Duration  time.Duration
}

// BulkMatcher scores many candidates against one rule set with a bounded
// number of concurrent evaluations.
type BulkMatcher struct {
	engine      *Engine
	concurrency int
	timeout     time.Duration
}

func NewBulkMatcher(engine *Engine, concurrency int, timeout time.Duration) *BulkMatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BulkMatcher{engine: engine, concurrency: concurrency, timeout: timeout}
}

// Run scores every candidate against rs. Cancelling ctx stops dispatching
// new candidates; evaluations already started run to completion under
// their own timeout. onResult, when set, is called once per finished
// candidate and may be called from several goroutines at a time.
// The returned slice is in candidate order.
func (b *BulkMatcher) Run(ctx context.Context, rs *models.RuleSet, candidates []Candidate, onResult func(BulkOutcome)) []BulkOutcome {
	outcomes := make([]BulkOutcome, len(candidates))
	for i, c := range candidates {
		outcomes[i].Candidate = c
	}

	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)

	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// dispatch may have waited on the limit; re-check before starting
			if ctx.Err() != nil {
				return nil
			}
			out := b.score(ctx, rs, c)

			outcomes[i] = out

			if onResult != nil {
				onResult(out)
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (b *BulkMatcher) score(ctx context.Context, rs *models.RuleSet, c Candidate) BulkOutcome {
	runCtx := context.WithoutCancel(ctx)
	if b.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	result := b.engine.Match(runCtx, rs, c)
	return BulkOutcome{Candidate: c, Result: result, Duration: time.Since(start)}
}
