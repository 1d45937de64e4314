package bot

import (
	"sync"
	"time"
)

const (
	spamRate    = 3
	spamPer     = 5 * time.Second
	spamStrikes = 3
)

type cooldown struct {
	window time.Time
	tokens int
}

// spamControl allows rate commands per user in fixed windows of per. Each
// command over the limit is a strike; a user with spamStrikes strikes is
// ignored until a command goes through within the limit.
type spamControl struct {
	mu      sync.Mutex
	rate    int
	per     time.Duration
	buckets map[string]*cooldown
	strikes map[string]int
}

func newSpamControl(rate int, per time.Duration) *spamControl {
	return &spamControl{
		rate:    rate,
		per:     per,
		buckets: make(map[string]*cooldown),
		strikes: make(map[string]int),
	}
}

func (s *spamControl) allow(userID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[userID]
	if !ok || now.Sub(bucket.window) >= s.per {
		bucket = &cooldown{window: now, tokens: s.rate}
		s.buckets[userID] = bucket
	}

	if bucket.tokens == 0 {
		s.strikes[userID]++
		return s.strikes[userID] < spamStrikes
	}
	bucket.tokens--
	delete(s.strikes, userID)
	return true
}
