package user

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/infrastructure/persistence/memory"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/pantrysense/v2/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPreferences_DefaultsThenUpdate(t *testing.T) {
	cache := memory.NewCacheRepository(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	defaults := user.DefaultPreferences()
	defaults.DarkMode = true
	svc := NewPreferencesService(defaults, cache, zaptest.NewLogger(t))

	prefs, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, prefs.DarkMode)
	assert.Equal(t, "zepto", prefs.DefaultGrocery)

	prefs.DefaultGrocery = "blinkit"
	prefs.Notifications = false
	updated, err := svc.Update(ctx, "u1", *prefs)
	require.NoError(t, err)
	assert.Equal(t, "blinkit", updated.DefaultGrocery)

	again, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, *updated, *again)

	other, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, defaults, *other)
}

func TestPreferences_RejectsUnknownGrocery(t *testing.T) {
	cache := &testutils.MockCacheRepository{}
	svc := NewPreferencesService(user.DefaultPreferences(), cache, zaptest.NewLogger(t))

	prefs := user.DefaultPreferences()
	prefs.DefaultGrocery = "instacart"
	_, err := svc.Update(context.Background(), "u1", prefs)
	assert.Equal(t, errors.CodeValidationFailed, errors.GetCode(err))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPreferences_InvalidDefaultsReplaced(t *testing.T) {
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, "prefs:u1").Return(nil, outbound.ErrCacheMiss)

	svc := NewPreferencesService(user.Preferences{DefaultGrocery: "nowhere"}, cache, zaptest.NewLogger(t))
	prefs, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, user.DefaultPreferences(), *prefs)
}

func TestPreferences_StoreErrors(t *testing.T) {
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, "prefs:u1").Return(nil, stderrors.New("redis down"))
	cache.On("Get", mock.Anything, "prefs:u2").Return([]byte("{not json"), nil)

	svc := NewPreferencesService(user.DefaultPreferences(), cache, zaptest.NewLogger(t))

	_, err := svc.Get(context.Background(), "u1")
	assert.Equal(t, errors.CodeExternalServiceError, errors.GetCode(err))

	prefs, err := svc.Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, user.DefaultPreferences(), *prefs)
}
