package checker

import (
	"context"
	"sync"
	"time"

	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Checker is the interface that classification implementations must satisfy
type Checker interface {
	// Classify produces exactly one verdict for a single target
	Classify(ctx context.Context, target string) verdict.Verdict

	// Name returns the name of this checker (e.g., "check takeover")
	Name() string
}

// ResultFunc is invoked once per verdict, in completion order, from a single goroutine.
type ResultFunc func(target string, v verdict.Verdict, duration float64)

// Runner orchestrates the execution of checks with concurrency and rate limiting
type Runner struct {
	Concurrency int // Maximum number of concurrent classifications
	RateLimit   int // Classifications started per second (0 = unlimited)
	Logger      *zap.Logger
	OnResult    ResultFunc
}

type indexedVerdict struct {
	idx      int
	verdict  verdict.Verdict
	duration float64
}

// Run classifies every target with at most Concurrency in flight and returns
// the verdicts in input order.
//
// Cancelling ctx stops scheduling new targets. Classifications already in
// flight run to completion on their own per-call timeouts, and the verdicts
// produced so far are returned.
func (r *Runner) Run(ctx context.Context, targets []string, chk Checker) []verdict.Verdict {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
	}

	// in-flight work must not be cut short by batch cancellation
	workCtx := context.WithoutCancel(ctx)

	results := make(chan indexedVerdict, concurrency)
	slots := make([]verdict.Verdict, len(targets))
	done := make([]bool, len(targets))
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for res := range results {
			slots[res.idx] = res.verdict
			done[res.idx] = true
			if r.OnResult != nil {
				r.OnResult(targets[res.idx], res.verdict, res.duration)
			}
		}
	}()

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	scheduled := 0

schedule:
	for i, target := range targets {
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			break schedule
		}
		if err := limiter.Wait(ctx); err != nil {
			<-sem
			break schedule
		}

		scheduled++
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()
			v := chk.Classify(workCtx, t)
			results <- indexedVerdict{idx: idx, verdict: v, duration: time.Since(start).Seconds()}
		}(i, target)
	}

	wg.Wait()
	close(results)
	<-collected

	if scheduled < len(targets) {
		logger.Warn("run cancelled before all targets were scheduled",
			zap.String("checker", chk.Name()),
			zap.Int("scheduled", scheduled),
			zap.Int("total", len(targets)),
		)
	}

	out := make([]verdict.Verdict, 0, scheduled)
	for i := range targets {
		if done[i] {
			out = append(out, slots[i])
		}
	}
	return out
}

// FilterVulnerable keeps only verdicts flagged as vulnerable.
func FilterVulnerable(verdicts []verdict.Verdict) []verdict.Verdict {
	return lo.Filter(verdicts, func(v verdict.Verdict, _ int) bool {
		return v.IsVulnerable()
	})
}
