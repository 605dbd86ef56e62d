package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QueueSize        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "mm_queue_size", Help: "players currently queued across all regions"})
	MatchesFormed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "mm_matches_formed_total", Help: "matches proposed by the engine"})
	MatchesConfirmed = prometheus.NewCounter(prometheus.CounterOpts{Name: "mm_matches_confirmed_total", Help: "matches accepted by all players"})
	MatchesCancelled = prometheus.NewCounter(prometheus.CounterOpts{Name: "mm_matches_cancelled_total", Help: "matches cancelled by accept timeout"})
	MatchesCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "mm_matches_completed_total", Help: "matches with a reported result"})
)

func Init() {
	prometheus.MustRegister(QueueSize, MatchesFormed, MatchesConfirmed, MatchesCancelled, MatchesCompleted)
}
