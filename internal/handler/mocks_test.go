package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/progress"
	"github.com/osse101/liveops/internal/recurring"
)

// MockLifecycle mocks lifecycle.Service
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) CreateEvent(ctx context.Context, spec domain.EventSpec) (*domain.Event, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockLifecycle) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockLifecycle) CancelEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockLifecycle) GetActiveEvents(ctx context.Context, timezone string, typeFilter domain.EventType) ([]domain.EventView, error) {
	args := m.Called(ctx, timezone, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventView), args.Error(1)
}

func (m *MockLifecycle) GetUpcomingEvents(ctx context.Context, horizonHours int, timezone string) ([]domain.EventView, error) {
	args := m.Called(ctx, horizonHours, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventView), args.Error(1)
}

func (m *MockLifecycle) SweepExpiredEvents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockProgress mocks progress.Service
type MockProgress struct {
	mock.Mock
}

func (m *MockProgress) UpdateProgress(ctx context.Context, eventID, playerID string, partial map[string]float64) (*progress.UpdateResult, error) {
	args := m.Called(ctx, eventID, playerID, partial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.UpdateResult), args.Error(1)
}

func (m *MockProgress) GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error) {
	args := m.Called(ctx, eventID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventProgress), args.Error(1)
}

// MockRewards mocks reward.Service
type MockRewards struct {
	mock.Mock
}

func (m *MockRewards) CompleteEvent(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	args := m.Called(ctx, eventID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventCompletion), args.Error(1)
}

func (m *MockRewards) CompleteLoaded(ctx context.Context, evt *domain.Event, playerID string) (*domain.EventCompletion, bool, error) {
	args := m.Called(ctx, evt, playerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.EventCompletion), args.Bool(1), args.Error(2)
}

func (m *MockRewards) GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	args := m.Called(ctx, eventID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventCompletion), args.Error(1)
}

// MockRecurring mocks recurring.Service
type MockRecurring struct {
	mock.Mock
}

func (m *MockRecurring) Run(ctx context.Context, class recurring.Class) (recurring.Outcome, error) {
	args := m.Called(ctx, class)
	return args.Get(0).(recurring.Outcome), args.Error(1)
}

func (m *MockRecurring) Tick(ctx context.Context, class recurring.Class) {
	m.Called(ctx, class)
}

func (m *MockRecurring) Catalog() recurring.Catalog {
	return recurring.Catalog{}
}

// serve routes one request through a chi router so path parameters resolve
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
