package service

import (
	"apiflow/internal/api/models"
	"apiflow/internal/engine"
	"apiflow/internal/plan"
	"apiflow/internal/progress"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockTestCaseLoader struct {
	mock.Mock
}

func (m *mockTestCaseLoader) FindByID(id uint) (models.TestCase, error) {
	args := m.Called(id)
	return args.Get(0).(models.TestCase), args.Error(1)
}

type mockEnvironmentLoader struct {
	mock.Mock
}

func (m *mockEnvironmentLoader) FindByID(id uint) (models.Environment, error) {
	args := m.Called(id)
	return args.Get(0).(models.Environment), args.Error(1)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Execute(ctx context.Context, doc []byte, baseURL string, timeout time.Duration) engine.Outcome {
	args := m.Called(ctx, doc, baseURL, timeout)
	return args.Get(0).(engine.Outcome)
}

func (m *mockRunner) Validate(ctx context.Context, doc []byte) (bool, string) {
	args := m.Called(ctx, doc)
	return args.Bool(0), args.String(1)
}

func (m *mockRunner) Format() plan.Format {
	return plan.FormatJSON
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Set(key string, value any, ttl time.Duration) error {
	return m.Called(key, value, ttl).Error(0)
}

func (m *mockCache) Get(key string, dest any) error {
	return m.Called(key, dest).Error(0)
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []progress.Event
}

func (p *recordingPublisher) Publish(e progress.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) statuses() []progress.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]progress.Status, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

// countingSweeper counts sweeps and returns a fixed result.
type countingSweeper struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (s *countingSweeper) CleanupStale(maxAge time.Duration) (int, error) {
	s.calls.Add(1)
	return s.removed, s.err
}
