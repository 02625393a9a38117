package factory

import (
	"time"

	"github.com/duelhub/duelhub/internal/channel"
	"github.com/duelhub/duelhub/internal/dependencies/mocks"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/match"
	"github.com/duelhub/duelhub/internal/storage/memory"
	"github.com/duelhub/duelhub/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Recorder  *notify.Recorder
	Channels  *channel.Memory
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	recorder := notify.NewRecorder()
	channels := channel.NewMemory()

	matchCfg := match.DefaultConfig()
	matchCfg.EndGraceDelay = 0

	app := newWithDependencies(store, mockClock, channels, recorder, matchCfg, lobby.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Recorder:  recorder,
		Channels:  channels,
	}
}
