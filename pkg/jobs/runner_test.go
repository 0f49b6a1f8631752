package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitStatus(t *testing.T, rn *Runner, id string, want Status) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := rn.Get(id)
		require.True(t, ok)
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s never reached %s", id, want)
	return Snapshot{}
}

func TestRunnerSuccessAndProgress(t *testing.T) {
	rn := NewRunner(10, nil)

	id := rn.Submit("pull_student", func(_ context.Context, run *Run) error {
		run.Report("modules", 3, 6)
		run.AddSuccess()
		run.AddSuccess()
		return nil
	})

	snap := waitStatus(t, rn, id, StatusSucceeded)
	assert.Equal(t, "modules", snap.Progress.Step)
	assert.Equal(t, 3, snap.Progress.Current)
	assert.Equal(t, 6, snap.Progress.Total)
	assert.Equal(t, 2, snap.Success)
	assert.Zero(t, snap.Failed)
}

func TestRunnerFailureCollectsError(t *testing.T) {
	rn := NewRunner(10, nil)

	id := rn.Submit("push_student", func(_ context.Context, run *Run) error {
		run.AddError("item 2: form rejected")
		return errors.New("1 of 3 items failed")
	})

	snap := waitStatus(t, rn, id, StatusFailed)
	assert.Contains(t, snap.Errors, "item 2: form rejected")
	assert.Contains(t, snap.Errors, "1 of 3 items failed")
	assert.Equal(t, 1, snap.Failed)
}

func TestRunnerCancel(t *testing.T) {
	rn := NewRunner(10, nil)
	started := make(chan struct{})

	id := rn.Submit("bulk_structure", func(ctx context.Context, run *Run) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	require.NoError(t, rn.Cancel(id))
	snap := waitStatus(t, rn, id, StatusCancelled)
	assert.Equal(t, StatusCancelled, snap.Status)
}

func TestRunnerHistoryEviction(t *testing.T) {
	rn := NewRunner(2, nil)

	var ids []string
	for i := 0; i < 4; i++ {
		id := rn.Submit("pull_student", func(_ context.Context, _ *Run) error { return nil })
		ids = append(ids, id)
		waitStatus(t, rn, id, StatusSucceeded)
		time.Sleep(2 * time.Millisecond)
	}
	// submitting one more triggers eviction of the oldest finished runs
	last := rn.Submit("pull_student", func(_ context.Context, _ *Run) error { return nil })
	waitStatus(t, rn, last, StatusSucceeded)

	_, ok := rn.Get(ids[0])
	assert.False(t, ok)
	assert.LessOrEqual(t, len(rn.List()), 3)
}

func TestRunnerCancelUnknownRun(t *testing.T) {
	rn := NewRunner(2, nil)
	assert.Error(t, rn.Cancel("missing"))
}
