package resilience_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosmoke/geosmoke/internal/provider/resilience"
)

func TestRegistry_RegistersConfiguredClients(t *testing.T) {
	registry := resilience.NewRegistry()

	cfg := fastConfig("ipapi")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	cfg = fastConfig("backup")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "backup", all[0].Name)
	assert.Equal(t, "ipapi", all[1].Name)

	h := registry.Health("ipapi")
	require.NotNil(t, h)
	assert.Equal(t, gobreaker.StateClosed, h.State)
	assert.True(t, h.Healthy())
	assert.Nil(t, h.LastSuccessAt)

	assert.Nil(t, registry.Health("missing"))
}

func TestRegistry_RecordsCallOutcomes(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !failing.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("ipapi")
	cfg.MaxRetries = 0
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	h := registry.Health("ipapi")
	require.NotNil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)

	failing.Store(true)
	resp, err = get(t, client, server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	h = registry.Health("ipapi")
	require.NotNil(t, h.LastFailureAt)
	assert.Contains(t, h.LastError, "Service Unavailable")
}

func TestRegistry_RecordForUnknownProviderIsIgnored(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.RecordFailure("ghost", errors.New("boom"))
	registry.RecordSuccess("ghost")
	assert.Empty(t, registry.All())
}
