package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

var (
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_fetch_requests_total",
		Help: "Total upstream region API requests",
	}, []string{"level"})
	FetchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_fetch_fail_total",
		Help: "Total upstream region API failures by kind",
	}, []string{"level", "kind"})
	FetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "area_fetch_duration_ms",
		Help:    "Upstream region API call duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"level"})
	StoreHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_store_hits_total",
		Help: "Local store lookups that returned rows",
	}, []string{"level"})
	StoreMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_store_misses_total",
		Help: "Local store lookups that returned nothing",
	}, []string{"level"})
	IngestRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_ingest_rows_total",
		Help: "Rows persisted from upstream payloads",
	}, []string{"level"})
	IngestFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_ingest_fail_total",
		Help: "Payloads rejected by decode or persist",
	}, []string{"level"})
	PayloadCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "area_payload_cache_hits_total",
		Help: "Redis payload cache hits",
	})
	PayloadCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "area_payload_cache_misses_total",
		Help: "Redis payload cache misses",
	})
	NoticesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "area_notices_total",
		Help: "Failure notices shown to the user",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_http_requests_total",
		Help: "HTTP mirror requests by method and status code",
	}, []string{"method", "code"})
)

func init() {
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(FetchFailTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(StoreHitsTotal)
	prometheus.MustRegister(StoreMissesTotal)
	prometheus.MustRegister(IngestRowsTotal)
	prometheus.MustRegister(IngestFailTotal)
	prometheus.MustRegister(PayloadCacheHitsTotal)
	prometheus.MustRegister(PayloadCacheMissesTotal)
	prometheus.MustRegister(NoticesTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler：暴露已注册指标，主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
