package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(msg string) Checker {
	return func(context.Context) error { return fmt.Errorf("%s", msg) }
}

func serveReadiness(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("sessions", failing("down"))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	code, resp := serveReadiness(t, NewHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestReadinessHandler_AllUp(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("sessions", ok)
	h.RegisterNonCritical("kafka", ok)

	code, resp := serveReadiness(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.NotEmpty(t, resp.Checks["sessions"].Latency)
}

func TestReadinessHandler_NonCriticalDown_Degraded(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("sessions", ok)
	h.RegisterNonCritical("kafka", failing("broker unreachable"))

	code, resp := serveReadiness(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.True(t, resp.Checks["sessions"].Critical)
	assert.False(t, resp.Checks["kafka"].Critical)
	assert.Equal(t, "broker unreachable", resp.Checks["kafka"].Error)
}

func TestReadinessHandler_CriticalDown_503(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("sessions", failing("connection refused"))
	h.RegisterNonCritical("kafka", failing("down too"))

	code, resp := serveReadiness(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["sessions"].Status)
}

func TestRegister_IsCriticalAndOverwrites(t *testing.T) {
	h := NewHandler()
	h.Register("sessions", ok)
	h.Register("sessions", failing("fail"))

	code, resp := serveReadiness(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Len(t, resp.Checks, 1)
	assert.True(t, resp.Checks["sessions"].Critical)
}

func TestCheck_ContextCarriesDeadline(t *testing.T) {
	h := NewHandler()
	h.Register("deadline", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return fmt.Errorf("no deadline")
		}
		return nil
	})

	assert.Equal(t, StatusUp, h.Check(context.Background()).Status)
}
