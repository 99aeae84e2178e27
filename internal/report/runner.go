// Package report runs the full pipeline for one request: it asks the engine
// for the natal chart and a horoscope per queried date, assembles correlated
// snapshots and composes the output document.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/ziwei/internal/chart"
	"github.com/papapumpkin/ziwei/internal/correlate"
	"github.com/papapumpkin/ziwei/internal/engine"
	"github.com/papapumpkin/ziwei/internal/logging"
	"github.com/papapumpkin/ziwei/internal/request"
	"github.com/papapumpkin/ziwei/internal/sanitize"
	"github.com/papapumpkin/ziwei/internal/telemetry"
)

// Failure policies for future dates.
const (
	// PolicyAbort fails the whole run on the first future-date failure.
	PolicyAbort = "abort"
	// PolicyIsolate records failed future dates and keeps the rest.
	PolicyIsolate = "isolate"
)

// ErrUnknownPolicy is returned for a failure policy other than abort or
// isolate.
var ErrUnknownPolicy = errors.New("unknown failure policy")

// Progress receives per-step notifications. ui.Printer satisfies it.
// SnapshotDone and SnapshotFailed may be called from several goroutines.
type Progress interface {
	RunStart(runID, baseDate string, futureCount int)
	RunDone(elapsed time.Duration, failures int)
	ChartLoaded(palaces int)
	SnapshotDone(date string)
	SnapshotFailed(date string, err error)
}

// Runner executes report runs. The zero value is not usable; Engine is
// required. Other fields have defaults.
type Runner struct {
	Engine      engine.Engine
	Vocabulary  correlate.Vocabulary
	Policy      string
	Concurrency int
	Logger      *zap.Logger
	Telemetry   *telemetry.Emitter
	Progress    Progress

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

func (r *Runner) logger() *zap.Logger {
	return logging.OrNop(r.Logger)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

func (r *Runner) concurrency() int {
	if r.Concurrency < 1 {
		return 1
	}
	return r.Concurrency
}

func (r *Runner) policy() (string, error) {
	switch r.Policy {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicyIsolate:
		return PolicyIsolate, nil
	}
	return "", fmt.Errorf("report: %w: %q", ErrUnknownPolicy, r.Policy)
}

func (r *Runner) emit(evt telemetry.Event) {
	if err := r.Telemetry.Emit(evt); err != nil {
		r.logger().Warn("telemetry emit failed", zap.Error(err))
	}
}

// futureResult is the slot one future-date goroutine writes to.
type futureResult struct {
	entry    FutureEntry
	snapshot correlate.Snapshot
	err      error
}

// Run produces the document for a normalized request. Engine failures for
// the natal chart or the base date are always fatal; future-date failures
// follow the runner's policy.
func (r *Runner) Run(ctx context.Context, n *request.Normalized) (*Document, error) {
	policy, err := r.policy()
	if err != nil {
		return nil, err
	}
	log := r.logger()
	runID := r.newID()
	start := r.now()

	log.Info("report run started",
		zap.String("run", runID),
		zap.String("birth_date", n.BirthDate),
		zap.String("base_date", n.BaseDate),
		zap.Int("future_dates", len(n.FutureDates)),
		zap.String("policy", policy))
	r.emit(telemetry.Event{Kind: telemetry.KindRunStart, RunID: runID, Date: n.BaseDate,
		Data: map[string]any{"futureDates": len(n.FutureDates), "policy": policy}})
	if r.Progress != nil {
		r.Progress.RunStart(runID, n.BaseDate, len(n.FutureDates))
	}

	doc, err := r.run(ctx, n, runID, policy)
	if err != nil {
		log.Error("report run failed", zap.String("run", runID), zap.Error(err))
		r.emit(telemetry.Event{Kind: telemetry.KindRunFailed, RunID: runID, Data: map[string]string{"error": err.Error()}})
		return nil, err
	}
	doc.GeneratedAt = start.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	elapsed := r.now().Sub(start)

	log.Info("report run done",
		zap.String("run", runID),
		zap.Int("future_failures", len(doc.FutureFailures)),
		zap.Duration("elapsed", elapsed))
	r.emit(telemetry.Event{Kind: telemetry.KindRunDone, RunID: runID,
		Data: map[string]int{"futureFailures": len(doc.FutureFailures)}})
	if r.Progress != nil {
		r.Progress.RunDone(elapsed, len(doc.FutureFailures))
	}
	return doc, nil
}

func (r *Runner) run(ctx context.Context, n *request.Normalized, runID, policy string) (*Document, error) {
	if r.Engine == nil {
		return nil, fmt.Errorf("report: no engine configured")
	}
	astro, err := r.Engine.Chart(ctx, engine.BirthFrom(n))
	if err != nil {
		return nil, fmt.Errorf("report: natal chart: %w", err)
	}
	natal := astro.Natal()
	if natal == nil {
		return nil, fmt.Errorf("report: natal chart: %w", chart.ErrMalformedChart)
	}
	r.emit(telemetry.Event{Kind: telemetry.KindChartLoaded, RunID: runID, Data: map[string]int{"palaces": len(natal.Palaces)}})
	if r.Progress != nil {
		r.Progress.ChartLoaded(len(natal.Palaces))
	}

	opts := correlate.Options{
		IncludeIndexMapping: n.IncludeIndexMapping,
		Vocabulary:          r.Vocabulary,
		Sanitize:            sanitize.Clean,
	}

	current, err := r.horoscope(ctx, astro, n.BaseDate, n.Location)
	if err != nil {
		r.snapshotFailed(runID, n.BaseDate, err)
		return nil, fmt.Errorf("report: base date %s: %w", n.BaseDate, err)
	}
	currentDetailed := correlate.AssembleSnapshot(natal, current, n.BaseDate, opts)
	r.snapshotDone(runID, n.BaseDate)

	results, err := r.future(ctx, astro, natal, n, opts, runID, policy)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		RunID: runID,
		NormalizedInput: NormalizedInput{
			Calendar:       n.Calendar,
			BirthDate:      n.BirthDate,
			TimeIndex:      n.TimeIndex,
			Gender:         n.Gender,
			Birthplace:     n.Birthplace,
			BirthConfirmed: true,
			Timezone:       n.Timezone,
			BaseDateSolar:  n.BaseDate,
			BaseDateLunar:  lunarDate(current),
		},
		OutputPolicy:    newOutputPolicy(n.IncludeIndexMapping),
		Natal:           natal.Raw,
		Current:         sanitize.Snapshot(rawBundle(current)),
		Future:          make([]FutureEntry, 0, len(results)),
		CurrentDetailed: currentDetailed,
		FutureDetailed:  make([]correlate.Snapshot, 0, len(results)),
	}
	for i, res := range results {
		if res.err != nil {
			doc.FutureFailures = append(doc.FutureFailures, FutureFailure{
				TargetSolarDate: n.FutureDates[i],
				Error:           res.err.Error(),
			})
			continue
		}
		doc.Future = append(doc.Future, res.entry)
		doc.FutureDetailed = append(doc.FutureDetailed, res.snapshot)
	}
	return doc, nil
}

// future builds one slot per future date, in input order. Under the abort
// policy the first failure cancels the remaining dates and is returned.
func (r *Runner) future(ctx context.Context, astro engine.Astrolabe, natal *chart.Natal,
	n *request.Normalized, opts correlate.Options, runID, policy string) ([]futureResult, error) {
	results := make([]futureResult, len(n.FutureDates))
	if len(results) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	for i, date := range n.FutureDates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := r.horoscope(gctx, astro, date, n.Location)
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, context.Canceled) {
					return err
				}
				r.snapshotFailed(runID, date, err)
				if policy == PolicyAbort {
					return fmt.Errorf("report: future date %s: %w", date, err)
				}
				results[i].err = err
				return nil
			}
			results[i] = futureResult{
				entry: FutureEntry{
					TargetSolarDate: date,
					Snapshot:        sanitize.Snapshot(rawBundle(h)),
				},
				snapshot: correlate.AssembleSnapshot(natal, h, date, opts),
			}
			r.snapshotDone(runID, date)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) horoscope(ctx context.Context, astro engine.Astrolabe, date string, loc *time.Location) (*chart.Horoscope, error) {
	if loc == nil {
		loc = time.UTC
	}
	at, err := request.LocalNoon(date, loc)
	if err != nil {
		return nil, err
	}
	r.logger().Debug("requesting horoscope", zap.String("date", date), zap.Time("at", at))
	return astro.Horoscope(ctx, at)
}

func (r *Runner) snapshotDone(runID, date string) {
	r.emit(telemetry.Event{Kind: telemetry.KindSnapshotDone, RunID: runID, Date: date})
	if r.Progress != nil {
		r.Progress.SnapshotDone(date)
	}
}

func (r *Runner) snapshotFailed(runID, date string, err error) {
	r.logger().Warn("snapshot failed", zap.String("run", runID), zap.String("date", date), zap.Error(err))
	r.emit(telemetry.Event{Kind: telemetry.KindSnapshotFailed, RunID: runID, Date: date,
		Data: map[string]string{"error": err.Error()}})
	if r.Progress != nil {
		r.Progress.SnapshotFailed(date, err)
	}
}

func rawBundle(h *chart.Horoscope) any {
	if h == nil || h.Raw == nil {
		return nil
	}
	return h.Raw
}

func lunarDate(h *chart.Horoscope) *string {
	if h == nil || h.LunarDate == "" {
		return nil
	}
	s := h.LunarDate
	return &s
}
