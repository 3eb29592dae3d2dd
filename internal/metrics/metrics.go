// Package metrics exposes the process counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesHandled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_messages_handled_total",
		Help: "Inbound chat messages processed by the conversation engine.",
	})

	SendFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_send_fallbacks_total",
		Help: "Outbound sends that fell back to the secondary channel.",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_send_failures_total",
		Help: "Outbound sends that failed on both channels.",
	})

	ResolverRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_resolver_runs_total",
		Help: "Domain resolver runs started.",
	})

	ResolverFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_resolver_failures_total",
		Help: "Domain resolver runs that could not persist an updated record.",
	})

	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviebot_sessions_swept_total",
		Help: "Sessions evicted by the staleness sweep.",
	})
)
