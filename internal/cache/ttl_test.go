package cache_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/buxdao/nft-ownership-sync/internal/cache"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
)

func TestIsStale(t *testing.T) {
	fetched := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ttl      time.Duration
		now      time.Time
		expected bool
	}{
		{name: "fresh", ttl: time.Minute, now: fetched.Add(30 * time.Second), expected: false},
		{name: "exactly at ttl", ttl: time.Minute, now: fetched.Add(time.Minute), expected: true},
		{name: "expired", ttl: time.Minute, now: fetched.Add(2 * time.Minute), expected: true},
		{name: "zero ttl", ttl: 0, now: fetched, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cache.IsStale(fetched, tt.ttl, tt.now))
		})
	}
}

func TestTTL_GetSetPurge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	current := start
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return current }).AnyTimes()

	c := cache.NewTTL[string, string](time.Minute, clock)

	_, ok := c.Get("wallet")
	assert.False(t, ok)

	c.Set("wallet", "alice")
	value, ok := c.Get("wallet")
	assert.True(t, ok)
	assert.Equal(t, "alice", value)

	current = start.Add(30 * time.Second)
	c.Set("other", "bob")

	current = start.Add(61 * time.Second)
	_, ok = c.Get("wallet")
	assert.False(t, ok)
	value, ok = c.Get("other")
	assert.True(t, ok)
	assert.Equal(t, "bob", value)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
}
