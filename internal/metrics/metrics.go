// Package metrics holds the prometheus collectors for leaddesk.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the domain counters and the request histogram. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LeadsCreated      prometheus.Counter
	LeadStatusChanges *prometheus.CounterVec
	ProposalsCreated  prometheus.Counter
	ProposalRevisions prometheus.Counter
	ReportExports     *prometheus.CounterVec
	HTTPRequests      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		LeadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaddesk",
			Name:      "leads_created_total",
			Help:      "Leads created.",
		}),
		LeadStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaddesk",
			Name:      "lead_status_changes_total",
			Help:      "Lead status updates by target status.",
		}, []string{"status"}),
		ProposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaddesk",
			Name:      "proposals_created_total",
			Help:      "Proposals created.",
		}),
		ProposalRevisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaddesk",
			Name:      "proposal_revisions_total",
			Help:      "Proposal edits that appended a history entry.",
		}),
		ReportExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaddesk",
			Name:      "report_exports_total",
			Help:      "Report exports by report type and format.",
		}, []string{"type", "format"}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leaddesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LeadsCreated,
		m.LeadStatusChanges,
		m.ProposalsCreated,
		m.ProposalRevisions,
		m.ReportExports,
		m.HTTPRequests,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) LeadCreated() {
	if m != nil {
		m.LeadsCreated.Inc()
	}
}

func (m *Metrics) LeadStatusChanged(status string) {
	if m != nil {
		m.LeadStatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ProposalCreated() {
	if m != nil {
		m.ProposalsCreated.Inc()
	}
}

func (m *Metrics) ProposalRevised() {
	if m != nil {
		m.ProposalRevisions.Inc()
	}
}

func (m *Metrics) ReportExported(reportType, format string) {
	if m != nil {
		m.ReportExports.WithLabelValues(reportType, format).Inc()
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
	}
}
