package service

import "golang.org/x/sync/errgroup"

// Scheduler runs a task now or later. The orchestrator is agnostic to whether
// the callback executes inline, on a goroutine or on an external queue.
type Scheduler func(task func())

// WaitScheduler runs tasks on a bounded goroutine group and lets the owner
// block until every scheduled task has finished. It backs the CLI's async
// mode, where the process must not exit with jobs still running.
type WaitScheduler struct {
	group errgroup.Group
}

// NewWaitScheduler builds a scheduler running at most limit tasks at once.
// A non-positive limit means unbounded.
func NewWaitScheduler(limit int) *WaitScheduler {
	w := &WaitScheduler{}
	if limit > 0 {
		w.group.SetLimit(limit)
	}
	return w
}

// Schedule satisfies the Scheduler contract.
func (w *WaitScheduler) Schedule(task func()) {
	w.group.Go(func() error {
		task()
		return nil
	})
}

// Wait blocks until all scheduled tasks are done.
func (w *WaitScheduler) Wait() {
	// Tasks never return errors; failures live in the job records.
	_ = w.group.Wait()
}
