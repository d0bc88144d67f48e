package datagrid

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// cleanupDelay is the idle interval between detaching a grid and tearing
// down its recycle pool. A detach immediately followed by reattach (tab
// switch, redock) cancels the pending task and pays no teardown cost.
const cleanupDelay = 500 * time.Millisecond

// CleanupTask is a cancelable, run-once deferred action. Running a
// canceled or already-run task is a no-op, so a task that raced a
// reattach resolves harmlessly.
type CleanupTask struct {
	run      func()
	canceled bool
	done     bool
}

func newCleanupTask(run func()) *CleanupTask {
	return &CleanupTask{run: run}
}

// Cancel prevents the task from running.
func (t *CleanupTask) Cancel() {
	t.canceled = true
}

// Canceled reports whether the task was canceled before running.
func (t *CleanupTask) Canceled() bool {
	return t.canceled
}

// Run executes the task unless it was canceled or has already run.
func (t *CleanupTask) Run() {
	if t == nil || t.canceled || t.done {
		return
	}
	t.done = true
	t.run()
}

// CleanupMsg delivers a scheduled cleanup task back to the grid through
// the host's message loop.
type CleanupMsg struct {
	Task *CleanupTask
}

// scheduleCleanup defers the task onto the bubbletea command queue.
func scheduleCleanup(t *CleanupTask) tea.Cmd {
	return tea.Tick(cleanupDelay, func(time.Time) tea.Msg {
		return CleanupMsg{Task: t}
	})
}
