package store

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/database"
)

var ErrTimerNotFound = errors.New("timer not found")

// Timer is a persisted one-shot event owned by a bot. Its ID starts with the
// bot ID so the timers of one bot can be listed without reading the others.
type Timer struct {
	ID        string    `bson:"id"`
	BotID     int64     `bson:"bot_id"`
	Event     string    `bson:"event"`
	ChannelID string    `bson:"channel_id"`
	AuthorID  string    `bson:"author_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// NewTimerID returns a fresh "<botID>/<uuid>" timer ID.
func NewTimerID(botID int64) string {
	return timerPrefix(botID) + uuid.New().String()
}

func timerPrefix(botID int64) string {
	return strconv.FormatInt(botID, 10) + "/"
}

func NewTimer(botID int64, event string, expiresAt time.Time) Timer {
	return Timer{
		ID:        NewTimerID(botID),
		BotID:     botID,
		Event:     event,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
}

func (s *Store) CreateTimer(t Timer) error {
	if t.ID == "" {
		t.ID = NewTimerID(t.BotID)
	}
	if !strings.HasPrefix(t.ID, timerPrefix(t.BotID)) {
		return errors.Errorf("timer %v does not belong to bot %v", t.ID, t.BotID)
	}
	return s.db.InsertObject(timersBucket, t.ID, t)
}

func (s *Store) GetTimer(id string) (Timer, error) {
	t := Timer{}
	err := s.db.GetObject(timersBucket, id, &t)
	if errors.Is(err, database.ErrKeyNotFound) {
		return t, ErrTimerNotFound
	}
	return t, err
}

// DeleteTimer returns ErrTimerNotFound when the timer was already removed,
// which is how a fired timer is told apart from a cancelled one.
func (s *Store) DeleteTimer(id string) error {
	err := s.db.DeleteObject(timersBucket, id)
	if errors.Is(err, database.ErrKeyNotFound) {
		return ErrTimerNotFound
	}
	return err
}

// ListTimers returns the timers of a bot, earliest expiry first.
func (s *Store) ListTimers(botID int64) ([]Timer, error) {
	keys, err := s.db.Keys(timersBucket, timerPrefix(botID))
	if err != nil {
		return nil, err
	}
	timers := []Timer{}
	for _, key := range keys {
		t := Timer{}
		err := s.db.GetObject(timersBucket, key, &t)
		if errors.Is(err, database.ErrKeyNotFound) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "load timer %v", key)
		}
		timers = append(timers, t)
	}
	sort.Slice(timers, func(i, j int) bool {
		return timers[i].ExpiresAt.Before(timers[j].ExpiresAt)
	})
	return timers, nil
}
