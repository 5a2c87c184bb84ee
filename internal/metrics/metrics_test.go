package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LeadCreated()
	m.LeadCreated()
	m.LeadStatusChanged("won")
	m.ProposalCreated()
	m.ProposalRevised()
	m.ReportExported("leads", "csv")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LeadsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadStatusChanges.WithLabelValues("won")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProposalsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProposalRevisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportExports.WithLabelValues("leads", "csv")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LeadCreated()
		m.LeadStatusChanged("new")
		m.ProposalCreated()
		m.ProposalRevised()
		m.ReportExported("proposals", "xlsx")
		m.ObserveRequest("GET", "/leads", 200, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/leads", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leaddesk_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), "leaddesk_leads_created_total 0")
}
