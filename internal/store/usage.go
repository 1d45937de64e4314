package store

import (
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/database"
)

// CommandUsage counts how often each command of a bot was invoked, keyed by
// the command's qualified name.
type CommandUsage struct {
	BotID    int64          `bson:"id"`
	Commands map[string]int `bson:"command"`
}

func (s *Store) GetCommandUsage(botID int64) (CommandUsage, error) {
	usage := CommandUsage{BotID: botID, Commands: map[string]int{}}
	err := s.db.GetObject(usageBucket, registrationKey(botID), &usage)
	if errors.Is(err, database.ErrKeyNotFound) {
		return usage, nil
	} else if err != nil {
		return usage, err
	}
	if usage.Commands == nil {
		usage.Commands = map[string]int{}
	}
	return usage, nil
}

// AddCommandUsage adds counts to the stored totals of a bot. Each bot only
// writes its own document, so the read-modify-write does not race with other
// bots.
func (s *Store) AddCommandUsage(botID int64, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	usage, err := s.GetCommandUsage(botID)
	if err != nil {
		return errors.Wrapf(err, "load command usage of %v", botID)
	}
	for name, n := range counts {
		usage.Commands[name] += n
	}
	return s.db.SaveObject(usageBucket, registrationKey(botID), usage)
}
