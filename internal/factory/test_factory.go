package factory

import (
	"time"

	"github.com/mcoot/tabletag-go/internal/dependencies/mocks"
	"github.com/mcoot/tabletag-go/internal/services/identity"
	"github.com/mcoot/tabletag-go/internal/storage/memory"
	"github.com/mcoot/tabletag-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(identityCfg identity.Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.New(mockClock)

	app := newWithDependencies(store, mockClock, mockRandom, identityCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
