package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/drivescore/internal/pipeline"
	"github.com/fortuna/drivescore/internal/store"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("a scoring run is already in progress")

// Runner executes a scoring job.
type Runner interface {
	Run(ctx context.Context, spec pipeline.JobSpec, reporter pipeline.Reporter) (*pipeline.Result, error)
}

// RunReader reads recorded runs.
type RunReader interface {
	Latest(ctx context.Context) (*store.ScoringRun, error)
}

// RunService starts scoring runs in the background, one at a time.
type RunService struct {
	runner Runner
	runs   RunReader

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewRunService constructs a RunService.
func NewRunService(runner Runner, runs RunReader, logger *log.Logger) *RunService {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = log.New(log.Writer(), "[runs] ", log.LstdFlags)
	}

	return &RunService{
		runner: runner,
		runs:   runs,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Trigger starts a run for the job and returns without waiting for it.
func (s *RunService) Trigger(spec pipeline.JobSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunInProgress
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("run service stopped: %w", err)
	}

	s.running = true
	s.wg.Add(1)
	go s.execute(spec)
	return nil
}

// Running reports whether a run is active.
func (s *RunService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RunService) execute(spec pipeline.JobSpec) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result, err := s.runner.Run(s.ctx, spec, &logReporter{logger: s.logger})
	if err != nil {
		s.logger.Printf("run %d-%d failed: %v", spec.StartSeason, spec.EndSeason, err)
		return
	}
	s.logger.Printf("run %s scored %d drives across %d seasons", result.RunID, len(result.Drives), len(result.Seasons))
}

// GetLatestRun returns the most recently started run
func (s *RunService) GetLatestRun(ctx context.Context) (*store.ScoringRun, error) {
	run, err := s.runs.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching latest run: %w", err)
	}
	return run, nil
}

// Shutdown cancels the active run and waits for it to stop.
func (s *RunService) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

type logReporter struct {
	logger *log.Logger
}

func (r *logReporter) OnJobStart(spec pipeline.JobSpec) {
	r.logger.Printf("Starting run for seasons %d-%d (dry_run=%v)", spec.StartSeason, spec.EndSeason, spec.DryRun)
}

func (r *logReporter) OnSeasonStart(season int, index int, total int) {
	r.logger.Printf("[%d/%d] Loading season %d", index+1, total, season)
}

func (r *logReporter) OnSeasonLoaded(season int, drives int) {
	r.logger.Printf("Season %d: %d drives", season, drives)
}

func (r *logReporter) OnProgress(message string, current int, total int) {
	r.logger.Printf("Progress: %s (%d/%d)", message, current, total)
}

func (r *logReporter) OnJobComplete(result *pipeline.Result) {
	r.logger.Printf("✓ Run %s complete", result.RunID)
}

func (r *logReporter) OnJobError(err error) {
	r.logger.Printf("Run error: %v", err)
}
