package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "checkins_total", Help: "Check-in attempts by entry path and result",
	}, []string{"path", "result"})
	CheckOuts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "checkouts_total", Help: "Check-out attempts by result",
	}, []string{"result"})
	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "qr_sessions_created_total", Help: "QR sessions created",
	})
	SessionsEnded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rollcall", Name: "qr_sessions_ended_total", Help: "QR sessions explicitly ended",
	})
	RateCalc = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rollcall", Name: "rate_calc_seconds", Help: "Attendance rate computation latency",
		Buckets: prometheus.DefBuckets,
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rollcall", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(CheckIns, CheckOuts, SessionsCreated, SessionsEnded, RateCalc, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
