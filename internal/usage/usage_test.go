package usage

import (
	"testing"
	"time"

	"github.com/reinodovo/custom-bots/internal/database"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDatabase struct {
	*database.InMemoryDatabase
	fail bool
}

func (db *failingDatabase) SaveObject(bucket string, key string, object any) error {
	if db.fail {
		return assert.AnError
	}
	return db.InMemoryDatabase.SaveObject(bucket, key, object)
}

func newTestRecorder(t *testing.T, db database.Database, interval time.Duration) (*Recorder, *store.Store) {
	t.Helper()
	s := store.NewStore(db)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	r, err := NewRecorder(s, 1, interval, logrus.NewEntry(logger))
	require.NoError(t, err)
	return r, s
}

func TestFlushAddsToStoredCounts(t *testing.T) {
	r, s := newTestRecorder(t, database.NewInMemoryDatabase(), time.Hour)

	r.Record("ping")
	r.Record("ping")
	r.Record("set prefix")
	require.NoError(t, r.Flush())
	assert.Empty(t, r.Pending())

	r.Record("ping")
	require.NoError(t, r.Flush())
	require.NoError(t, r.Flush())

	usage, err := s.GetCommandUsage(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ping": 3, "set prefix": 1}, usage.Commands)
}

func TestFailedFlushKeepsCounts(t *testing.T) {
	db := &failingDatabase{InMemoryDatabase: database.NewInMemoryDatabase(), fail: true}
	r, s := newTestRecorder(t, db, time.Hour)

	r.Record("ping")
	assert.Error(t, r.Flush())
	r.Record("ping")
	assert.Equal(t, map[string]int{"ping": 2}, r.Pending())

	db.fail = false
	require.NoError(t, r.Flush())
	usage, err := s.GetCommandUsage(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ping": 2}, usage.Commands)
}

func TestPeriodicFlush(t *testing.T) {
	r, s := newTestRecorder(t, database.NewInMemoryDatabase(), 50*time.Millisecond)
	r.Start()
	t.Cleanup(func() { _ = r.Stop() })

	r.Record("uptime")
	require.Eventually(t, func() bool {
		usage, err := s.GetCommandUsage(1)
		return err == nil && usage.Commands["uptime"] == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStopFlushesPending(t *testing.T) {
	r, s := newTestRecorder(t, database.NewInMemoryDatabase(), time.Hour)
	r.Start()

	r.Record("help")
	require.NoError(t, r.Stop())

	usage, err := s.GetCommandUsage(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"help": 1}, usage.Commands)
}
