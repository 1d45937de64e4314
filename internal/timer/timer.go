// Package timer fires persisted one-shot events. Timers live in the store so
// they survive restarts; gocron only holds the in-process schedule.
package timer

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
)

type Handler func(t store.Timer)

type Dispatcher struct {
	store     *store.Store
	scheduler gocron.Scheduler
	logger    *logrus.Entry

	mu       sync.Mutex
	handlers map[string]Handler
	jobs     map[string]uuid.UUID
}

func NewDispatcher(s *store.Store, logger *logrus.Entry) (*Dispatcher, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}
	return &Dispatcher{
		store:     s,
		scheduler: scheduler,
		logger:    logger.WithField("component", "timer"),
		handlers:  make(map[string]Handler),
		jobs:      make(map[string]uuid.UUID),
	}, nil
}

// Handle registers the handler called when a timer with the given event fires.
func (d *Dispatcher) Handle(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = h
}

func (d *Dispatcher) Start() {
	d.scheduler.Start()
}

func (d *Dispatcher) Stop() error {
	return d.scheduler.Shutdown()
}

// Create persists the timer and schedules it.
func (d *Dispatcher) Create(t store.Timer) (store.Timer, error) {
	if t.ID == "" {
		t.ID = store.NewTimerID(t.BotID)
	}
	if err := d.store.CreateTimer(t); err != nil {
		return t, errors.Wrap(err, "save timer")
	}
	if err := d.schedule(t); err != nil {
		_ = d.store.DeleteTimer(t.ID)
		return t, err
	}
	return t, nil
}

// Delete cancels a timer that has not fired yet.
func (d *Dispatcher) Delete(id string) error {
	if err := d.store.DeleteTimer(id); err != nil {
		return err
	}
	d.unschedule(id)
	return nil
}

// Restore schedules every stored timer of a bot. Timers that expired while the
// bot was offline fire right away.
func (d *Dispatcher) Restore(botID int64) (int, error) {
	timers, err := d.store.ListTimers(botID)
	if err != nil {
		return 0, err
	}
	for _, t := range timers {
		if err := d.schedule(t); err != nil {
			return 0, err
		}
	}
	return len(timers), nil
}

// Pending returns the number of timers scheduled in this process.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

func (d *Dispatcher) schedule(t store.Timer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.jobs[t.ID]; ok {
		return nil
	}

	start := gocron.OneTimeJobStartImmediately()
	if t.ExpiresAt.After(time.Now()) {
		start = gocron.OneTimeJobStartDateTime(t.ExpiresAt)
	}
	job, err := d.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(d.fire, t),
		gocron.WithName(t.Event+"-"+t.ID),
	)
	if err != nil {
		// The expiry can slip into the past between the check and NewJob.
		job, err = d.scheduler.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
			gocron.NewTask(d.fire, t),
			gocron.WithName(t.Event+"-"+t.ID),
		)
		if err != nil {
			return errors.Wrapf(err, "schedule timer %v", t.ID)
		}
	}
	d.jobs[t.ID] = job.ID()
	return nil
}

func (d *Dispatcher) unschedule(id string) {
	d.mu.Lock()
	jobID, ok := d.jobs[id]
	delete(d.jobs, id)
	d.mu.Unlock()
	if ok {
		_ = d.scheduler.RemoveJob(jobID)
	}
}

func (d *Dispatcher) fire(t store.Timer) {
	d.mu.Lock()
	delete(d.jobs, t.ID)
	handler, ok := d.handlers[t.Event]
	d.mu.Unlock()

	// Whoever deletes the document owns the delivery.
	err := d.store.DeleteTimer(t.ID)
	if errors.Is(err, store.ErrTimerNotFound) {
		return
	} else if err != nil {
		d.logger.WithError(err).WithField("timer_id", t.ID).Error("failed to delete fired timer")
		return
	}

	if !ok {
		d.logger.WithField("event", t.Event).Warn("no handler for timer event")
		return
	}
	handler(t)
}
