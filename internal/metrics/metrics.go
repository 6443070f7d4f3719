// Package metrics holds the domain counters. HTTP instrumentation lives in
// internal/http.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolbazli_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"}) // success | unknown_account | bad_password | invalid | error

	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolbazli_tokens_issued_total",
		Help: "Access tokens signed",
	})

	RoleChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolbazli_role_changes_total",
		Help: "Role and membership mutations by operation and result",
	}, []string{"op", "result"})

	Registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolbazli_registrations_total",
		Help: "Account registrations by result",
	}, []string{"result"}) // created | partial | rejected | error

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolbazli_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"scope"})
)

// Register registers the domain metrics on reg (or the default registerer if nil).
// Already registered collectors are ignored.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LoginAttempts, TokensIssued, RoleChanges, Registrations, RateLimited} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// ObserveRoleChange counts one mutation.
func ObserveRoleChange(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RoleChanges.WithLabelValues(op, result).Inc()
}
