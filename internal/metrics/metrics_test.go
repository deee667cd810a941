package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.RecordPersist("users", nil)
	m.RecordPersist("users", errors.New("disk full"))
	m.RecordLogin("failed")
	m.RecordMutation("create_task")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PersistWrites.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("create_task")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPersist("users", errors.New("x"))
		m.RecordLogin("success")
		m.RecordAIRequest("summary", "ok", 0.1)
		m.RecordBackup(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordAudit("Login")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskflow_audit_entries_total{action="Login"} 1`)
}
