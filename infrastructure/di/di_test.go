package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusqa/infrastructure/config"
	"campusqa/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeContainerWithFileBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StorageBackend = config.BackendFile
	cfg.DataDir = t.TempDir()
	cfg.TimeZone = "UTC"

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, container.Service)
	assert.Empty(t, container.Service.Snapshot().Questions)

	handler := container.Router.Setup()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, container.Service.Logout(context.Background()))
	_, found, err := container.Store.Get(context.Background(), persistence.DefaultStateKey)
	require.NoError(t, err)
	assert.True(t, found, "mutations persist through the wired store")
}

func TestProvideBlobStoreRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StorageBackend = "tape"
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)

	_, _, err = ProvideBlobStore(context.Background(), cfg, logger, ProvideMetrics())
	assert.Error(t, err)
}

func TestProvideLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"

	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}
