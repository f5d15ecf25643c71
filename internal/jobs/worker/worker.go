package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

// Task is a periodic job. Run is called once at start and then every Interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Worker struct {
	log   *logger.Logger
	tasks []Task
	wg    sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, tasks ...Task) *Worker {
	return &Worker{
		log:   baseLog.With("component", "MaintenanceWorker"),
		tasks: tasks,
	}
}

// Start launches one loop per task. Loops exit when ctx is cancelled; Wait
// blocks until they have.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting maintenance worker", "tasks", len(w.tasks))
	for _, t := range w.tasks {
		if t.Run == nil || t.Interval <= 0 {
			w.log.Warn("Skipping misconfigured task", "task", t.Name, "interval", t.Interval)
			continue
		}
		w.wg.Add(1)
		go w.runLoop(ctx, t)
	}
}

func (w *Worker) Wait() { w.wg.Wait() }

// RunOnce executes every task a single time, in order, and returns the first error.
func (w *Worker) RunOnce(ctx context.Context) error {
	for _, t := range w.tasks {
		if t.Run == nil {
			continue
		}
		if err := w.runTask(ctx, t); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
	}
	return nil
}

func (w *Worker) runLoop(ctx context.Context, t Task) {
	defer w.wg.Done()
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	w.tick(ctx, t)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Task loop stopped", "task", t.Name)
			return
		case <-ticker.C:
			w.tick(ctx, t)
		}
	}
}

func (w *Worker) tick(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.runTask(ctx, t); err != nil {
		w.log.Warn("Task failed", "task", t.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	w.log.Debug("Task finished", "task", t.Name, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Task panic", "task", t.Name, "panic", r)
			err = &panicError{Val: r}
		}
	}()
	return t.Run(ctx)
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
