package mocks

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/mock"
)

// MockCronner mocks worker.Cronner. AddFunc keeps the registered function
// so tests can fire it with Fire.
type MockCronner struct {
	mock.Mock
	funcs []func()
}

func (m *MockCronner) Start() {
	m.Called()
}

func (m *MockCronner) Stop() context.Context {
	args := m.Called()
	if ctx, ok := args.Get(0).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

func (m *MockCronner) AddFunc(spec string, cmd func()) (cron.EntryID, error) {
	args := m.Called(spec)
	if args.Error(1) == nil {
		m.funcs = append(m.funcs, cmd)
	}
	return args.Get(0).(cron.EntryID), args.Error(1)
}

// Fire runs every registered function once.
func (m *MockCronner) Fire() {
	for _, fn := range m.funcs {
		fn()
	}
}
