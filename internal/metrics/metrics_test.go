package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New("jwtauth")

	m.Login("Jwt", OutcomeSuccess)
	m.Login("Jwt", OutcomeSuccess)
	m.Login("Cookie", OutcomeFailure)
	m.Refresh(OutcomeExpired)
	m.Logout()
	m.Decision("editor-policy,multi-auth-policy", DecisionDeny)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("Jwt", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("Cookie", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues(OutcomeExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("editor-policy,multi-auth-policy", DecisionDeny)))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login("Jwt", OutcomeSuccess)
		m.Refresh(OutcomeInvalid)
		m.Logout()
		m.Decision("x", DecisionAllow)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New("jwtauth")
	m.Logout()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jwtauth_logouts_total 1")
}
