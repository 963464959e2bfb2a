package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrUnknownJob is returned by Trigger for a name that was never added.
var ErrUnknownJob = errors.New("unknown job")

// Job is a unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; zero means no timeout
	Run      func(ctx context.Context) error
}

// Status reports the run history of one job.
type Status struct {
	Name        string    `json:"name"`
	Interval    string    `json:"interval"`
	Runs        int64     `json:"runs"`
	Failures    int64     `json:"failures"`
	LastRun     time.Time `json:"last_run,omitzero"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

type jobState struct {
	job Job

	// run serializes executions of the job.
	run sync.Mutex

	mu     sync.Mutex
	status Status
}

// Supervisor owns the goroutines of all periodic jobs.
type Supervisor struct {
	logger *slog.Logger

	mu    sync.Mutex
	jobs  map[string]*jobState
	order []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Supervisor.
func New(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		logger: logger,
		jobs:   make(map[string]*jobState),
	}
}

// Add registers a job. Jobs must be added before Start.
func (s *Supervisor) Add(job Job) error {
	if job.Name == "" {
		return errors.New("job name is required")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if job.Run == nil {
		return fmt.Errorf("job %s: run func is required", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("job %s: already added", job.Name)
	}
	s.jobs[job.Name] = &jobState{
		job:    job,
		status: Status{Name: job.Name, Interval: job.Interval.String()},
	}
	s.order = append(s.order, job.Name)
	return nil
}

// Start begins every job loop in the background.
func (s *Supervisor) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		js := s.jobs[name]
		s.wg.Add(1)
		go s.loop(js)
	}

	s.logger.Info("supervisor started", "jobs", len(s.order))
	return nil
}

// Stop cancels every job and waits for running ones to return.
func (s *Supervisor) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("supervisor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs a job now and returns its result. If the job is already
// running, Trigger waits for that run to finish first.
func (s *Supervisor) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	js, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("trigger %s: %w", name, ErrUnknownJob)
	}
	return s.execute(ctx, js)
}

// Statuses returns the status of every job in the order they were added.
func (s *Supervisor) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.order))
	for _, name := range s.order {
		js := s.jobs[name]
		js.mu.Lock()
		out = append(out, js.status)
		js.mu.Unlock()
	}
	return out
}

// loop runs a job immediately, then on every tick.
func (s *Supervisor) loop(js *jobState) {
	defer s.wg.Done()

	ticker := time.NewTicker(js.job.Interval)
	defer ticker.Stop()

	s.execute(s.ctx, js)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(s.ctx, js)
		}
	}
}

func (s *Supervisor) execute(ctx context.Context, js *jobState) error {
	js.run.Lock()
	defer js.run.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx := ctx
	if js.job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, js.job.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := js.job.Run(runCtx)

	js.mu.Lock()
	js.status.Runs++
	js.status.LastRun = start
	if err != nil {
		js.status.Failures++
		js.status.LastError = err.Error()
	} else {
		js.status.LastSuccess = start
		js.status.LastError = ""
	}
	js.mu.Unlock()

	if err != nil {
		s.logger.Warn("job failed",
			"job", js.job.Name,
			"err", err,
			"duration", time.Since(start),
		)
		return err
	}

	s.logger.Debug("job complete", "job", js.job.Name, "duration", time.Since(start))
	return nil
}
