package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/config"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/recurring"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/sse"
	"github.com/osse101/liveops/internal/worker"
)

type recordingScheduler struct {
	specs map[string]string
	fail  string
}

func (r *recordingScheduler) Schedule(ctx context.Context, spec string, job worker.Job) error {
	if spec == r.fail {
		return errors.New("bad spec")
	}
	r.specs[job.Name()] = spec
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Environment:      "test",
		ServiceName:      "liveops",
		Version:          "test",
		StoreDriver:      config.StoreDriverSQLite,
		SQLitePath:       filepath.Join(dir, "events.db"),
		StoreTimeout:     time.Second,
		DeadLetterPath:   filepath.Join(dir, "dl", "deadletter.jsonl"),
		CatalogPath:      filepath.Join(dir, "missing.yaml"),
		SweepSchedule:    "@every 1m",
		DailySchedule:    "@every 10m",
		WeeklySchedule:   "@every 1h",
		SeasonalSchedule: "@every 6h",
		WeatherSchedule:  "@every 30m",
		SpecialSchedule:  "0 */6 * * *",
		PatternSchedule:  "",
	}
}

func TestStartBackgroundJobs(t *testing.T) {
	cfg := testConfig(t)
	sched := &recordingScheduler{specs: map[string]string{}}

	err := StartBackgroundJobs(context.Background(), cfg, sched, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "@every 1m", sched.specs[JobNameSweep])
	assert.Equal(t, "@every 10m", sched.specs["recurring_daily"])
	assert.Equal(t, "0 */6 * * *", sched.specs["recurring_special"])
	// empty schedule disables the class
	assert.NotContains(t, sched.specs, "recurring_pattern")
	assert.Len(t, sched.specs, 6)
}

func TestStartBackgroundJobs_BadSpec(t *testing.T) {
	cfg := testConfig(t)
	cfg.WeatherSchedule = "not a schedule"
	sched := &recordingScheduler{specs: map[string]string{}, fail: "not a schedule"}

	err := StartBackgroundJobs(context.Background(), cfg, sched, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(recurring.ClassWeather))
}

func TestSweepJob(t *testing.T) {
	repo := repository.NewFakeEventRepository()
	clk := clock.NewSimulated(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	lc := lifecycle.NewService(repo, nil, nil, clk)

	repo.Put(domain.Event{
		ID:        "expired",
		Title:     "Old",
		EventType: domain.EventTypeLive,
		StartTime: clk.Now().Add(-3 * time.Hour),
		EndTime:   clk.Now().Add(-time.Hour),
		Timezone:  "UTC",
		IsActive:  true,
	})

	job := SweepJob(lc)
	assert.Equal(t, JobNameSweep, job.Name())
	require.NoError(t, job.Process(context.Background()))

	got, err := repo.GetEvent(context.Background(), "expired")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	repo.SetError(errors.New("store down"))
	assert.Error(t, job.Process(context.Background()))
}

func TestRecurringJob(t *testing.T) {
	repo := repository.NewFakeEventRepository()
	clk := clock.NewSimulated(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	lc := lifecycle.NewService(repo, nil, nil, clk)
	rec := recurring.NewService(repo, lc, nil, recurring.Location{}, recurring.Catalog{}, clk)

	job := RecurringJob(rec, recurring.ClassDaily)
	assert.Equal(t, "recurring_daily", job.Name())

	require.NoError(t, job.Process(context.Background()))
	require.NoError(t, job.Process(context.Background()))
	assert.Equal(t, 1, repo.Count(domain.EventTypeDailyChallenge))
}

func TestClassSchedules_CoversEveryClass(t *testing.T) {
	schedules := ClassSchedules(testConfig(t))
	for _, class := range recurring.Classes {
		assert.Contains(t, schedules, class)
	}
}

func TestInitializeEventSystem(t *testing.T) {
	cfg := testConfig(t)

	bus, publisher, err := InitializeEventSystem(cfg)
	require.NoError(t, err)
	require.NotNil(t, bus)
	t.Cleanup(func() { _ = publisher.Shutdown(context.Background()) })

	assert.DirExists(t, filepath.Dir(cfg.DeadLetterPath))

	received := make(chan event.Event, 1)
	bus.Subscribe(event.EventCreated, func(ctx context.Context, evt event.Event) error {
		received <- evt
		return nil
	})
	publisher.PublishWithRetry(context.Background(), event.Event{Type: event.EventCreated})

	select {
	case evt := <-received:
		assert.Equal(t, event.EventCreated, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := testConfig(t)

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())

	assert.FileExists(t, cfg.SQLitePath)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "mongo"

	_, err := OpenStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownDriver)
}

func TestLoadCatalog_MissingFileUsesDefaults(t *testing.T) {
	catalog, err := LoadCatalog(testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, recurring.DefaultCatalog().Daily.Priority, catalog.Daily.Priority)
	assert.NotEmpty(t, catalog.Daily.Templates)
}

func TestLoadCatalog_InvalidFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CatalogPath, []byte("daily: [not, a, map]\n"), 0o644))

	_, err := LoadCatalog(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFailedCatalog)
}

func TestSetupLogger_FileOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")

	closer, err := SetupLogger(cfg)
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(cfg.LogDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LogFileExtension, filepath.Ext(entries[0].Name()))
}

func TestCleanupLogs_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf(LogFileNamePattern, fmt.Sprintf("2026-10-%02d_00-00-00", i+1))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	cleanupLogs(dir, LogFileRetentionCount)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, LogFileRetentionCount+1)
	assert.NoFileExists(t, filepath.Join(dir, fmt.Sprintf(LogFileNamePattern, "2026-10-01_00-00-00")))
	assert.FileExists(t, filepath.Join(dir, fmt.Sprintf(LogFileNamePattern, "2026-10-12_00-00-00")))
}

func TestRegisterEventHandlers_ForwardsToHub(t *testing.T) {
	bus := event.NewMemoryBus()
	hub := sse.NewHub()
	hub.Start()
	defer hub.Stop()

	RegisterEventHandlers(context.Background(), EventHandlerDependencies{EventBus: bus, Hub: hub})

	client := hub.Register(sse.Filter{})
	require.NotNil(t, client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), event.NewEventCreated(domain.Event{ID: "e1", Title: "Launch"})))

	select {
	case msg := <-client.EventChannel:
		assert.Equal(t, string(event.EventCreated), msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not receive the event")
	}
}

func TestGracefulShutdown_NilComponents(t *testing.T) {
	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{})
	})
}
