package store

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(database.NewInMemoryDatabase())
}

func TestAddRegistrationAppliesDefaults(t *testing.T) {
	s := newTestStore()

	r, err := s.AddRegistration(Registration{ID: 10, Name: "helper", Status: "IDLE", Token: "token"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, r.Prefix)
	assert.Equal(t, "idle", r.Status)
	assert.Equal(t, DefaultActivity, r.Activity)
	assert.Equal(t, []string{AllCogs}, r.Cogs)

	got, err := s.GetRegistration(10)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestAddRegistrationValidates(t *testing.T) {
	s := newTestStore()

	tests := map[string]struct {
		registration Registration
		message      string
	}{
		"missing id":   {Registration{Name: "a"}, "id is required!"},
		"missing name": {Registration{ID: 1}, "name is required!"},
		"bad status":   {Registration{ID: 1, Name: "a", Status: "away"}, "status must be one of the following: 'online', 'idle', 'dnd', 'invisible'!"},
		"bad activity": {Registration{ID: 1, Name: "a", Activity: "dancing"}, "activity must be one of the following"},
		"negative ids": {Registration{ID: 1, Name: "a", OwnerID: -5}, "owner_id must not be negative!"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddRegistration(tt.registration)
			assert.True(t, errors.Is(err, ErrInvalidRegistration), "got %v", err)
			assert.ErrorContains(t, err, tt.message)
			assert.NotContains(t, err.Error(), "Field validation")
		})
	}

	list, err := s.ListRegistrations()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Registration{Prefix: "!", Status: "online", Activity: "playing", Cogs: []string{AllCogs}}.Validate()

	var invalid *InvalidRegistrationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"id is required!", "name is required!"}, invalid.Problems)
	assert.Equal(t, "id is required! name is required!", err.Error())
}

func TestAddRegistrationTwice(t *testing.T) {
	s := newTestStore()

	_, err := s.AddRegistration(Registration{ID: 1, Name: "a"})
	require.NoError(t, err)
	_, err = s.AddRegistration(Registration{ID: 1, Name: "b"})
	assert.True(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestDistinctRegistrationsAreIndependent(t *testing.T) {
	s := newTestStore()

	_, err := s.AddRegistration(Registration{ID: 20, Name: "second", Prefix: "?"})
	require.NoError(t, err)
	_, err = s.AddRegistration(Registration{ID: 3, Name: "first"})
	require.NoError(t, err)

	list, err := s.ListRegistrations()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(20), list[1].ID)

	second, err := s.GetRegistration(20)
	require.NoError(t, err)
	assert.Equal(t, "?", second.Prefix)
	first, err := s.GetRegistration(3)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, first.Prefix)
}

func TestSaveAndDeleteRegistration(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRegistration(Registration{ID: 5, Name: "a"})
	require.NoError(t, err)

	r.Prefix = "$"
	r.SuggestionChannel = "123"
	require.NoError(t, s.SaveRegistration(r))

	got, err := s.GetRegistration(5)
	require.NoError(t, err)
	assert.Equal(t, "$", got.Prefix)
	assert.Equal(t, "123", got.SuggestionChannel)

	require.NoError(t, s.DeleteRegistration(5))
	_, err = s.GetRegistration(5)
	assert.True(t, errors.Is(err, ErrNotRegistered))
	assert.True(t, errors.Is(s.DeleteRegistration(5), ErrNotRegistered))
}

func TestTimers(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	later := NewTimer(1, "reminder", now.Add(time.Hour))
	sooner := NewTimer(1, "reminder", now.Add(time.Minute))
	other := NewTimer(2, "reminder", now)
	sharedDigits := NewTimer(10, "reminder", now)
	for _, timer := range []Timer{later, sooner, other, sharedDigits} {
		require.NoError(t, s.CreateTimer(timer))
	}

	timers, err := s.ListTimers(1)
	require.NoError(t, err)
	require.Len(t, timers, 2)
	assert.Equal(t, sooner.ID, timers[0].ID)
	assert.Equal(t, later.ID, timers[1].ID)
	assert.WithinDuration(t, sooner.ExpiresAt, timers[0].ExpiresAt, time.Millisecond)

	require.NoError(t, s.DeleteTimer(sooner.ID))
	assert.True(t, errors.Is(s.DeleteTimer(sooner.ID), ErrTimerNotFound))

	_, err = s.GetTimer(sooner.ID)
	assert.True(t, errors.Is(err, ErrTimerNotFound))
}

func TestTimerIDsArePrefixedByBot(t *testing.T) {
	s := newTestStore()

	timer := NewTimer(42, "reminder", time.Now())
	assert.True(t, strings.HasPrefix(timer.ID, "42/"), timer.ID)

	anonymous := Timer{BotID: 42, Event: "reminder"}
	require.NoError(t, s.CreateTimer(anonymous))
	timers, err := s.ListTimers(42)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.True(t, strings.HasPrefix(timers[0].ID, "42/"), timers[0].ID)

	foreign := NewTimer(7, "reminder", time.Now())
	foreign.BotID = 42
	assert.Error(t, s.CreateTimer(foreign))
}

func TestCommandUsage(t *testing.T) {
	s := newTestStore()

	usage, err := s.GetCommandUsage(1)
	require.NoError(t, err)
	assert.Empty(t, usage.Commands)

	require.NoError(t, s.AddCommandUsage(1, map[string]int{"ping": 2, "set prefix": 1}))
	require.NoError(t, s.AddCommandUsage(1, map[string]int{"ping": 1}))
	require.NoError(t, s.AddCommandUsage(2, map[string]int{"help": 4}))
	require.NoError(t, s.AddCommandUsage(2, nil))

	usage, err = s.GetCommandUsage(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ping": 3, "set prefix": 1}, usage.Commands)

	usage, err = s.GetCommandUsage(2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"help": 4}, usage.Commands)
}
