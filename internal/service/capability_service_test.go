package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type mockVisibilityCounter struct {
	counts map[int64]int
	calls  int
}

func (m *mockVisibilityCounter) CountVisibleUsers(ctx context.Context, userID int64) (int, error) {
	m.calls++
	return m.counts[userID], nil
}

type mockVisibilityCache struct {
	values map[string]bool
	ttls   map[string]time.Duration
}

func newMockVisibilityCache() *mockVisibilityCache {
	return &mockVisibilityCache{values: map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (m *mockVisibilityCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*bool)) = v
	return nil
}

func (m *mockVisibilityCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.(bool)
	m.ttls[key] = ttl
	return nil
}

func TestManagerVisibilityComputesAndCaches(t *testing.T) {
	counter := &mockVisibilityCounter{counts: map[int64]int{7: 3}}
	cache := newMockVisibilityCache()
	svc := NewCapabilityService(counter, cache, 5*time.Minute, nil)

	visible, err := svc.ManagerVisibility(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, 5*time.Minute, cache.ttls["visibility:manager:7"])

	// Second lookup is served from the cache.
	visible, err = svc.ManagerVisibility(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, 1, counter.calls)
}

func TestManagerVisibilityNobodyReports(t *testing.T) {
	counter := &mockVisibilityCounter{counts: map[int64]int{}}
	svc := NewCapabilityService(counter, newMockVisibilityCache(), time.Minute, nil)

	visible, err := svc.ManagerVisibility(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestManagerVisibilityWithoutCache(t *testing.T) {
	counter := &mockVisibilityCounter{counts: map[int64]int{7: 1}}
	svc := NewCapabilityService(counter, nil, time.Minute, nil)

	visible, err := svc.ManagerVisibility(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, visible)
}
