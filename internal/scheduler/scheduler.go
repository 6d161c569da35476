// Package scheduler runs one-shot deferred sends and keeps an observable
// in-memory record of each task. Records are not durable: a restart drops
// every pending task silently.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/maildraft/internal/telemetry"
)

// State is the lifecycle state of a scheduled send.
type State string

const (
	StatePending State = "pending"
	StateSent    State = "sent"
	StateFailed  State = "failed"
)

// Task is the observable record of one scheduled send. Clients can poll it
// after the original request has returned; it never contains credentials or
// message content.
type Task struct {
	ID          string     `json:"id"`
	State       State      `json:"state"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	FiredAt     *time.Time `json:"firedAt,omitempty"`
	MessageID   string     `json:"messageId,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// SendFunc performs the deferred transmission. It must own a snapshot of the
// fully-resolved message and credentials; it is never handed shared state.
type SendFunc func(ctx context.Context) (string, error)

// Scheduler owns the timers and task records.
type Scheduler struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	timers map[string]*time.Timer
	logger *slog.Logger

	// sendTimeout bounds each deferred transmission.
	sendTimeout time.Duration

	now func() time.Time
}

// New creates a scheduler. There is no cancellation API for individual tasks;
// once accepted, a task fires exactly once or dies with the process.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tasks:       make(map[string]*Task),
		timers:      make(map[string]*time.Timer),
		logger:      logger,
		sendTimeout: time.Minute,
		now:         time.Now,
	}
}

// Schedule registers a one-shot deferred send firing at (or after) at.
// A target in the past fires immediately. Returns the pending task record;
// the caller's response goes out before the transmission happens.
func (s *Scheduler) Schedule(at time.Time, send SendFunc) Task {
	now := s.now()
	delay := at.Sub(now)
	if delay < 0 {
		delay = 0
	}

	task := &Task{
		ID:          uuid.New().String(),
		State:       StatePending,
		ScheduledAt: at,
		CreatedAt:   now,
	}

	// Copy the record before releasing the lock: a past-dated target can
	// fire before this function returns, and fire mutates the shared record
	// under the same lock.
	s.mu.Lock()
	s.tasks[task.ID] = task
	s.timers[task.ID] = time.AfterFunc(delay, func() { s.fire(task.ID, send) })
	snapshot := *task
	s.mu.Unlock()

	s.logger.Info("scheduler: send accepted",
		"task_id", snapshot.ID,
		"scheduled_at", at,
		"delay", delay,
	)
	telemetry.Business.ScheduledAccepted.Inc()
	telemetry.Business.ScheduleDelay.Observe(delay.Seconds())

	return snapshot
}

// fire runs the deferred transmission. The original caller is long gone, so
// failures are recorded on the task and logged, never propagated.
func (s *Scheduler) fire(id string, send SendFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()

	messageID, err := send(ctx)
	firedAt := s.now()

	s.mu.Lock()
	task, ok := s.tasks[id]
	if ok {
		task.FiredAt = &firedAt
		if err != nil {
			task.State = StateFailed
			task.Error = err.Error()
		} else {
			task.State = StateSent
			task.MessageID = messageID
		}
	}
	delete(s.timers, id)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduler: scheduled send failed", "task_id", id, "error", err)
		telemetry.Business.ScheduledFired.WithLabelValues("failed").Inc()
		return
	}
	s.logger.Info("scheduler: scheduled send completed", "task_id", id, "message_id", messageID)
	telemetry.Business.ScheduledFired.WithLabelValues("sent").Inc()
}

// Get returns a copy of the task record for id.
func (s *Scheduler) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// List returns copies of all task records, oldest first.
func (s *Scheduler) List() []Task {
	s.mu.RLock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Stop cancels all timers that have not fired yet. Pending records stay
// pending; this is only called on process shutdown, where dropping them is
// the documented behavior anyway.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
