package store

import (
	"sort"
	"strconv"

	"github.com/reinodovo/custom-bots/internal/database"
)

const (
	registrationsBucket = "mainConfigCollection"
	timersBucket        = "timerCollections"
	usageBucket         = "commandCollection"
)

type Store struct {
	db database.Database
}

func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

func registrationKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sortRegistrations(registrations []Registration) {
	sort.Slice(registrations, func(i, j int) bool {
		return registrations[i].ID < registrations[j].ID
	})
}
