// Package usage counts command invocations per bot and writes them to the
// store in batches.
package usage

import (
	"maps"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
)

const FlushInterval = time.Minute

type Recorder struct {
	store     *store.Store
	botID     int64
	scheduler gocron.Scheduler
	logger    *logrus.Entry

	mu      sync.Mutex
	pending map[string]int
}

func NewRecorder(s *store.Store, botID int64, interval time.Duration, logger *logrus.Entry) (*Recorder, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}
	r := &Recorder{
		store:     s,
		botID:     botID,
		scheduler: scheduler,
		logger:    logger.WithField("component", "usage"),
		pending:   make(map[string]int),
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.flushAndLog),
		gocron.WithName("command-usage"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, errors.Wrap(err, "schedule command usage flush")
	}
	return r, nil
}

// Record counts one invocation of the command with the given qualified name.
func (r *Recorder) Record(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[command]++
}

// Pending returns the counts not written yet.
func (r *Recorder) Pending() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pending)
}

// Flush writes the pending counts. On failure they are kept for the next
// flush.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	batch := r.pending
	r.pending = make(map[string]int)
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := r.store.AddCommandUsage(r.botID, batch); err != nil {
		r.mu.Lock()
		for name, n := range batch {
			r.pending[name] += n
		}
		r.mu.Unlock()
		return err
	}
	r.logger.WithField("commands", len(batch)).Debug("wrote command usage")
	return nil
}

func (r *Recorder) flushAndLog() {
	if err := r.Flush(); err != nil {
		r.logger.WithError(err).Error("failed to write command usage")
	}
}

func (r *Recorder) Start() {
	r.scheduler.Start()
}

// Stop stops the periodic flush and writes whatever is still pending.
func (r *Recorder) Stop() error {
	if err := r.scheduler.Shutdown(); err != nil {
		r.logger.WithError(err).Warn("failed to stop usage scheduler")
	}
	return r.Flush()
}
