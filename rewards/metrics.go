package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type rewardsMetrics struct {
	pointsAwarded prometheus.Counter
	koinsAwarded  prometheus.Counter
	withdrawals   *prometheus.CounterVec
}

func newRewardsMetrics(reg prometheus.Registerer) *rewardsMetrics {
	factory := promauto.With(reg)
	return &rewardsMetrics{
		pointsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kondecoracao",
			Subsystem: "rewards",
			Name:      "points_awarded_total",
			Help:      "Points awarded",
		}),
		koinsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kondecoracao",
			Subsystem: "rewards",
			Name:      "koins_awarded_total",
			Help:      "Koins credited by awards",
		}),
		withdrawals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kondecoracao",
			Subsystem: "rewards",
			Name:      "withdrawals_total",
			Help:      "Withdrawal transitions by resulting status",
		}, []string{"status"}),
	}
}
