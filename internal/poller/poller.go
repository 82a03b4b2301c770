// Package poller implements a terminal client that follows a live race
// through the HTTP API. It polls the race view and standings on a fixed
// interval and starts every cycle by aborting the previous one, so a
// slow response can never overwrite a newer view.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/internal/domain/predict"
	"github.com/lapedge/lapedge/pkg/logger"
)

// Config holds configuration for a polling session.
type Config struct {
	BaseURL  string        // Base URL of the service
	EventID  string        // Event to follow
	Distance int           // Distance in meters
	Gender   string        // "women" or "men"
	Interval time.Duration // Polling interval
	Timeout  time.Duration // Per-request timeout
	Cycles   int           // Number of cycles; 0 runs until the context ends
	LogFile  string        // Log file for session output
	Verbose  bool          // Enable verbose logging
}

// Snapshot is the merged result of one completed poll cycle.
type Snapshot struct {
	Race        model.RaceView
	Standings   model.StandingsView
	Predictions map[string]*predict.Prediction
	FetchedAt   time.Time
}

// Stats holds polling session statistics.
type Stats struct {
	CyclesCompleted int
	CyclesAborted   int
	RequestsFailed  int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// Poller drives the fetch loop.
type Poller struct {
	cfg    Config
	client *httpClient

	onUpdate func(Snapshot)

	mu         sync.Mutex
	cancelPrev context.CancelFunc
	stats      Stats
}

// New creates a poller. The onUpdate callback receives every completed
// snapshot; a nil callback renders snapshots to the session log.
func New(cfg Config, onUpdate func(Snapshot)) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Gender == "" {
		cfg.Gender = "women"
	}
	p := &Poller{
		cfg:      cfg,
		client:   newHTTPClient(cfg.Timeout),
		onUpdate: onUpdate,
	}
	if p.onUpdate == nil {
		p.onUpdate = func(s Snapshot) { renderSnapshot(cfg, s) }
	}
	return p
}

// Run executes the polling session: one immediate cycle, then one per
// interval tick, until the context ends or the configured cycle count
// is reached.
func (p *Poller) Run(ctx context.Context) error {
	if p.cfg.EventID == "" || p.cfg.Distance <= 0 {
		return ErrMissingTarget
	}

	if err := p.client.checkHealth(ctx, p.cfg.BaseURL); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	p.stats.StartTime = time.Now()
	logger.Get().Info(ctx, "starting polling session",
		logger.String("baseURL", p.cfg.BaseURL),
		logger.String("event", p.cfg.EventID),
		logger.Int("distance", p.cfg.Distance),
		logger.String("gender", p.cfg.Gender),
		logger.Duration("interval", p.cfg.Interval))

	// Cycles run concurrently with the ticker so a slow upstream can
	// never delay the next tick; the new cycle aborts the slow one.
	var wg sync.WaitGroup
	launch := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.cycle(ctx)
		}()
	}
	launch()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	cycles := 1
	for p.cfg.Cycles == 0 || cycles < p.cfg.Cycles {
		select {
		case <-ctx.Done():
			wg.Wait()
			p.finish()
			return ctx.Err()
		case <-ticker.C:
			launch()
			cycles++
		}
	}

	wg.Wait()
	p.finish()
	return nil
}

// Stats returns a copy of the session statistics.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// cycle runs one fetch cycle. Starting a cycle cancels the previous
// one, mirroring the abort-before-refetch behavior of the dashboard.
func (p *Poller) cycle(ctx context.Context) {
	cycleCtx := p.begin(ctx)
	defer p.end(cycleCtx)

	snap, err := p.fetch(cycleCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, context.Canceled) {
			p.mu.Lock()
			p.stats.CyclesAborted++
			p.mu.Unlock()
			return
		}
		p.mu.Lock()
		p.stats.RequestsFailed++
		p.mu.Unlock()
		logger.Get().Warn(ctx, "poll cycle failed", logger.Error(err))
		return
	}

	p.mu.Lock()
	p.stats.CyclesCompleted++
	p.mu.Unlock()
	p.onUpdate(snap)
}

// begin replaces the active cycle context, aborting any in-flight
// requests from the previous cycle.
func (p *Poller) begin(ctx context.Context) context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	p.cancelPrev = cancel
	return cycleCtx
}

// end releases the cycle context if it is still the active one.
func (p *Poller) end(cycleCtx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cycleCtx.Err() == nil && p.cancelPrev != nil {
		p.cancelPrev()
		p.cancelPrev = nil
	}
}

// fetch retrieves the race view and standings in parallel and derives
// per-skater finish predictions. A standings failure is tolerated; the
// race view is required.
func (p *Poller) fetch(ctx context.Context) (Snapshot, error) {
	var (
		race      model.RaceView
		standings model.StandingsView
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.client.getJSON(gctx, p.viewURL("live"), &race)
	})
	g.Go(func() error {
		if err := p.client.getJSON(gctx, p.viewURL("standings"), &standings); err != nil && gctx.Err() == nil {
			logger.Get().Debug(gctx, "standings unavailable", logger.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Race:        race,
		Standings:   standings,
		Predictions: map[string]*predict.Prediction{},
		FetchedAt:   time.Now(),
	}
	if race.CurrentRace != nil {
		for _, sk := range race.CurrentRace.Skaters {
			if pred := predict.FinishTime(sk, p.cfg.Distance, race.Distance, race.CurrentRace.Leader, standings.Standings); pred != nil {
				snap.Predictions[sk.ID] = pred
			}
		}
	}
	return snap, nil
}

func (p *Poller) viewURL(kind string) string {
	return fmt.Sprintf("%s/%s/%s/%d?gender=%s",
		p.cfg.BaseURL, kind, p.cfg.EventID, p.cfg.Distance, p.cfg.Gender)
}

func (p *Poller) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelPrev != nil {
		p.cancelPrev()
		p.cancelPrev = nil
	}
	p.stats.EndTime = time.Now()
	p.stats.Duration = p.stats.EndTime.Sub(p.stats.StartTime)
	displayFinalStats(p.stats)
}
