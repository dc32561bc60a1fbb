// Package metrics exposes Prometheus counters for the credential and
// outreach flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid_credentials"
	LoginLocked  = "locked"
	LoginError   = "error"
)

// Generation stages that can fall back.
const (
	StageBody       = "body"
	StageCompliance = "compliance"
)

var (
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gophcrm_login_attempts_total",
		Help: "Authentication attempts by outcome",
	}, []string{"outcome"})
	AccountLockouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gophcrm_account_lockouts_total",
		Help: "Accounts locked after too many failed attempts",
	})
	GenerationFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gophcrm_generation_fallbacks_total",
		Help: "Text generation calls that failed or returned nothing and used the fallback",
	}, []string{"stage"})
	ComplianceResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gophcrm_compliance_results_total",
		Help: "Compliance reviews by result",
	}, []string{"result"})
	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gophcrm_emails_sent_total",
		Help: "Outreach emails processed by send status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(AccountLockouts)
	prometheus.MustRegister(GenerationFallbacks)
	prometheus.MustRegister(ComplianceResults)
	prometheus.MustRegister(EmailsSent)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ComplianceLabel maps a compliance flag to its label value.
func ComplianceLabel(compliant bool) string {
	if compliant {
		return "compliant"
	}
	return "non_compliant"
}
