// Package runner starts a bot for every registration in the store and keeps
// them online until the context is cancelled.
package runner

import (
	"context"
	"slices"
	"sync"

	"github.com/reinodovo/custom-bots/internal/bot"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLogins bounds how many sessions connect at the same time.
const maxConcurrentLogins = 5

type Runner struct {
	store      *store.Store
	settings   bot.Settings
	newSession bot.SessionFactory
	logger     *logrus.Logger

	mu   sync.Mutex
	bots []*bot.Bot
}

func New(s *store.Store, settings bot.Settings, newSession bot.SessionFactory, logger *logrus.Logger) *Runner {
	return &Runner{
		store:      s,
		settings:   settings,
		newSession: newSession,
		logger:     logger,
	}
}

// Start opens a session for every registration with a token. A bot that fails
// to log in is reported and skipped; only failing to read the registrations
// is an error.
func (r *Runner) Start(ctx context.Context) (int, error) {
	registrations, err := r.store.ListRegistrations()
	if err != nil {
		return 0, err
	}
	r.logger.WithField("count", len(registrations)).Info("loaded bot registrations")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLogins)
	for _, registration := range registrations {
		registration := registration
		logger := r.logger.WithFields(logrus.Fields{"bot_id": registration.ID, "bot_name": registration.Name})
		if registration.Token == "" {
			logger.Warn("registration has no token, skipping")
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			b, err := r.startBot(registration)
			if err != nil {
				logger.WithError(err).Error("failed to start bot")
				return nil
			}
			r.mu.Lock()
			r.bots = append(r.bots, b)
			r.mu.Unlock()
			logger.Info("bot started")
			return nil
		})
	}
	_ = g.Wait()
	return r.Active(), nil
}

func (r *Runner) startBot(registration store.Registration) (*bot.Bot, error) {
	session, err := r.newSession(registration.Token)
	if err != nil {
		return nil, err
	}
	b, err := bot.New(registration, bot.Options{
		Store:    r.store,
		Session:  session,
		Settings: r.settings,
		Logger:   r.logger,
		Shutdown: r.shutdown,
	})
	if err != nil {
		return nil, err
	}
	if err := b.Open(); err != nil {
		return nil, err
	}
	return b, nil
}

// Run starts every bot and blocks until ctx is done, then stops them.
func (r *Runner) Run(ctx context.Context) error {
	active, err := r.Start(ctx)
	if err != nil {
		return err
	}
	r.logger.WithField("active", active).Info("runner is up, press CTRL-C to exit")

	<-ctx.Done()
	return r.Stop()
}

// Active returns the number of bots with an open session.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bots)
}

// Bots returns the running bots.
func (r *Runner) Bots() []*bot.Bot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*bot.Bot(nil), r.bots...)
}

// shutdown takes one bot offline, leaving the others running.
func (r *Runner) shutdown(b *bot.Bot) error {
	r.mu.Lock()
	r.bots = slices.DeleteFunc(r.bots, func(running *bot.Bot) bool { return running == b })
	active := len(r.bots)
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{
		"bot_id": b.Registration().ID,
		"active": active,
	}).Info("bot shut down")
	return b.Close()
}

func (r *Runner) Stop() error {
	r.mu.Lock()
	bots := r.bots
	r.bots = nil
	r.mu.Unlock()

	var g errgroup.Group
	for _, b := range bots {
		b := b
		g.Go(func() error {
			if err := b.Close(); err != nil {
				r.logger.WithError(err).WithField("bot_id", b.Registration().ID).Warn("failed to close bot")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
