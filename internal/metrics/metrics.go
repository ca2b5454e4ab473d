// Package metrics holds the prometheus collectors shared by the api and worker binaries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icebreaker",
		Name:      "bot_updates_total",
		Help:      "Inbound chat updates handled, by resolved state.",
	}, []string{"state"})

	UpdateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icebreaker",
		Name:      "bot_update_failures_total",
		Help:      "Inbound chat updates that ended in a collaborator failure, by state.",
	}, []string{"state"})

	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icebreaker",
		Name:      "bot_renders_total",
		Help:      "Message reconciler outcomes.",
	}, []string{"outcome"})

	DeliveryJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icebreaker",
		Name:      "delivery_jobs_total",
		Help:      "Outbound delivery jobs, by result.",
	}, []string{"result"})
)
