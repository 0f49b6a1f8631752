package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status enumerates run lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Progress is one coarse step boundary of a running orchestration.
type Progress struct {
	Step    string `json:"step"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// Run is one orchestration submitted to the runner. Orchestrators report
// through Report and AddError; the shell polls a Snapshot.
type Run struct {
	ID       string
	Type     string
	Status   Status
	Progress Progress
	Errors   []string
	Success  int
	Failed   int
	Started  time.Time
	Finished time.Time

	cancel context.CancelFunc
	mu     sync.Mutex
}

// Report records a progress boundary.
func (r *Run) Report(step string, current, total int) {
	r.mu.Lock()
	r.Progress = Progress{Step: step, Current: current, Total: total}
	r.mu.Unlock()
}

// AddError appends a per-item failure message.
func (r *Run) AddError(msg string) {
	r.mu.Lock()
	r.Errors = append(r.Errors, msg)
	r.Failed++
	r.mu.Unlock()
}

// AddSuccess counts a completed item.
func (r *Run) AddSuccess() {
	r.mu.Lock()
	r.Success++
	r.mu.Unlock()
}

// Snapshot is the externally visible state of a run.
type Snapshot struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Status   Status    `json:"status"`
	Progress Progress  `json:"progress"`
	Errors   []string  `json:"errors,omitempty"`
	Success  int       `json:"success_count"`
	Failed   int       `json:"failed_count"`
	Started  time.Time `json:"started_at"`
	Finished time.Time `json:"finished_at,omitempty"`
}

func (r *Run) snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make([]string, len(r.Errors))
	copy(errs, r.Errors)
	return Snapshot{
		ID:       r.ID,
		Type:     r.Type,
		Status:   r.Status,
		Progress: r.Progress,
		Errors:   errs,
		Success:  r.Success,
		Failed:   r.Failed,
		Started:  r.Started,
		Finished: r.Finished,
	}
}

// Fn is the body of a run. It must honor ctx at item boundaries.
type Fn func(ctx context.Context, run *Run) error

// Runner tracks submitted orchestrations and keeps a bounded history of
// finished ones.
type Runner struct {
	history int
	logger  *zap.Logger

	mu   sync.Mutex
	runs map[string]*Run
}

// NewRunner builds a Runner keeping the last history finished runs.
func NewRunner(history int, logger *zap.Logger) *Runner {
	if history <= 0 {
		history = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{history: history, logger: logger, runs: make(map[string]*Run)}
}

// Submit starts a run in its own goroutine and returns its id.
func (rn *Runner) Submit(runType string, fn Fn) string {
	ctx, cancel := context.WithCancel(context.Background())
	run := &Run{
		ID:      uuid.NewString(),
		Type:    runType,
		Status:  StatusPending,
		Started: time.Now().UTC(),
		cancel:  cancel,
	}

	rn.mu.Lock()
	rn.runs[run.ID] = run
	rn.evictLocked()
	rn.mu.Unlock()

	go func() {
		defer cancel()

		run.mu.Lock()
		run.Status = StatusRunning
		run.mu.Unlock()

		err := fn(ctx, run)

		run.mu.Lock()
		run.Finished = time.Now().UTC()
		switch {
		case ctx.Err() != nil:
			run.Status = StatusCancelled
		case err != nil:
			run.Status = StatusFailed
			run.Errors = append(run.Errors, err.Error())
		default:
			run.Status = StatusSucceeded
		}
		status := run.Status
		run.mu.Unlock()

		rn.logger.Sugar().Infow("run finished", "run_id", run.ID, "type", runType, "status", status)
	}()

	return run.ID
}

// Cancel asks a run to stop at its next item boundary.
func (rn *Runner) Cancel(id string) error {
	rn.mu.Lock()
	run, ok := rn.runs[id]
	rn.mu.Unlock()
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	run.cancel()
	return nil
}

// Get returns a snapshot of one run.
func (rn *Runner) Get(id string) (Snapshot, bool) {
	rn.mu.Lock()
	run, ok := rn.runs[id]
	rn.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return run.snapshot(), true
}

// List returns snapshots of all known runs, newest first.
func (rn *Runner) List() []Snapshot {
	rn.mu.Lock()
	snaps := make([]Snapshot, 0, len(rn.runs))
	for _, run := range rn.runs {
		snaps = append(snaps, run.snapshot())
	}
	rn.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Started.After(snaps[j].Started) })
	return snaps
}

// evictLocked drops the oldest finished runs beyond the history limit.
func (rn *Runner) evictLocked() {
	if len(rn.runs) <= rn.history {
		return
	}
	type aged struct {
		id      string
		started time.Time
	}
	var finished []aged
	for id, run := range rn.runs {
		run.mu.Lock()
		done := run.Status == StatusSucceeded || run.Status == StatusFailed || run.Status == StatusCancelled
		started := run.Started
		run.mu.Unlock()
		if done {
			finished = append(finished, aged{id: id, started: started})
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].started.Before(finished[j].started) })
	for _, f := range finished {
		if len(rn.runs) <= rn.history {
			break
		}
		delete(rn.runs, f.id)
	}
}
