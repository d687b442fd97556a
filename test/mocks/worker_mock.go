package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wvflights/flightlog-api/pkg/registry"
)

// MockLeaderElector stands in for the Redis leader lock.
type MockLeaderElector struct {
	mock.Mock
}

func (m *MockLeaderElector) IsLeader() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockPublisher records heartbeats instead of writing them to Redis.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, hb registry.Heartbeat, ttl time.Duration) error {
	args := m.Called(ctx, hb, ttl)
	return args.Error(0)
}
