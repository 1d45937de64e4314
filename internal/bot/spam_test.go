package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpamControl(t *testing.T) {
	s := newSpamControl(3, 5*time.Second)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, s.allow("user", now), "command %d within the limit", i)
	}
	// Over the limit: two strikes are tolerated, the third blocks.
	assert.True(t, s.allow("user", now))
	assert.True(t, s.allow("user", now))
	assert.False(t, s.allow("user", now))
	assert.False(t, s.allow("user", now.Add(time.Second)))

	assert.True(t, s.allow("other", now), "users are limited separately")

	// A new window clears the strikes once a command goes through.
	assert.True(t, s.allow("user", now.Add(5*time.Second)))
	assert.True(t, s.allow("user", now.Add(5*time.Second)))
}
