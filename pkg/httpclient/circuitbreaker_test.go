package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_PassesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(New(fastConfig()), DefaultCircuitBreakerConfig("test-ok"), nil)
	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MaxRetries = 0
	cbCfg := DefaultCircuitBreakerConfig("test-trip")
	cbCfg.MinRequests = 3
	cbCfg.Timeout = time.Minute
	cb := NewCircuitBreakerClient(New(cfg), cbCfg, nil)

	for i := 0; i < 3; i++ {
		_, err := cb.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	var m dto.Metric
	require.NoError(t, circuitBreakerState.WithLabelValues("test-trip").Write(&m))
	assert.Equal(t, 2.0, m.GetGauge().GetValue())

	_, err := cb.Get(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cbCfg := DefaultCircuitBreakerConfig("test-4xx")
	cbCfg.MinRequests = 2
	cb := NewCircuitBreakerClient(New(fastConfig()), cbCfg, nil)

	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestStateToFloat(t *testing.T) {
	assert.Equal(t, 0.0, stateToFloat(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateToFloat(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateToFloat(gobreaker.StateOpen))
}
