package database

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string   `bson:"name"`
	Count int      `bson:"count"`
	Tags  []string `bson:"tags"`
}

func TestInMemorySaveAndGet(t *testing.T) {
	db := NewInMemoryDatabase()

	require.NoError(t, db.SaveObject("bucket", "a", record{Name: "first", Count: 1, Tags: []string{"x"}}))
	require.NoError(t, db.SaveObject("bucket", "a", record{Name: "second", Count: 2}))

	var got record
	require.NoError(t, db.GetObject("bucket", "a", &got))
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, 2, got.Count)
	assert.Empty(t, got.Tags)
}

func TestInMemoryGetMissing(t *testing.T) {
	db := NewInMemoryDatabase()

	var got record
	err := db.GetObject("bucket", "missing", &got)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestInMemoryStoredValueIsCopied(t *testing.T) {
	db := NewInMemoryDatabase()
	saved := record{Name: "a", Tags: []string{"one"}}
	require.NoError(t, db.SaveObject("bucket", "a", saved))

	saved.Tags[0] = "changed"

	var got record
	require.NoError(t, db.GetObject("bucket", "a", &got))
	assert.Equal(t, []string{"one"}, got.Tags)
}

func TestInMemoryInsertDuplicate(t *testing.T) {
	db := NewInMemoryDatabase()

	require.NoError(t, db.InsertObject("bucket", "a", record{Name: "a"}))
	err := db.InsertObject("bucket", "a", record{Name: "b"})
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var got record
	require.NoError(t, db.GetObject("bucket", "a", &got))
	assert.Equal(t, "a", got.Name)
}

func TestInMemoryDelete(t *testing.T) {
	db := NewInMemoryDatabase()
	require.NoError(t, db.SaveObject("bucket", "a", record{Name: "a"}))

	require.NoError(t, db.DeleteObject("bucket", "a"))
	assert.True(t, errors.Is(db.DeleteObject("bucket", "a"), ErrKeyNotFound))
}

func TestInMemoryKeysArePerBucket(t *testing.T) {
	db := NewInMemoryDatabase()
	require.NoError(t, db.SaveObject("bots", "2", record{}))
	require.NoError(t, db.SaveObject("bots", "1", record{}))
	require.NoError(t, db.SaveObject("timers", "x", record{}))

	keys, err := db.Keys("bots", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, keys)

	keys, err = db.Keys("empty", "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInMemoryKeysWithPrefix(t *testing.T) {
	db := NewInMemoryDatabase()
	for _, key := range []string{"1/b", "1/a", "10/c", "2/d"} {
		require.NoError(t, db.SaveObject("timers", key, record{}))
	}

	keys, err := db.Keys("timers", "1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"1/a", "1/b"}, keys)

	keys, err = db.Keys("timers", "3/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInMemoryBucketsWithSharedPrefix(t *testing.T) {
	db := NewInMemoryDatabase()
	require.NoError(t, db.SaveObject("a_b", "1", record{Name: "nested"}))
	require.NoError(t, db.SaveObject("a", "b_1", record{Name: "flat"}))

	keys, err := db.Keys("a", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b_1"}, keys)

	keys, err = db.Keys("a_b", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, keys)

	var got record
	require.NoError(t, db.GetObject("a_b", "1", &got))
	assert.Equal(t, "nested", got.Name)

	require.NoError(t, db.DeleteObject("a", "b_1"))
	require.NoError(t, db.GetObject("a_b", "1", &got))

	keys, err = db.Keys("a", "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInMemoryConcurrentAccess(t *testing.T) {
	db := NewInMemoryDatabase()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_ = db.SaveObject("bucket", key, record{Count: i})
			var got record
			_ = db.GetObject("bucket", key, &got)
			_, _ = db.Keys("bucket", "")
		}(i)
	}
	wg.Wait()

	keys, err := db.Keys("bucket", "")
	require.NoError(t, err)
	assert.Len(t, keys, 26)
}
