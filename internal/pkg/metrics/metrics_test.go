package metrics

import "testing"

// 各指标必须在 InitMetrics 之前就可用：auth 等包在任意时刻 Inc() 都不应崩溃。
func TestCollectorsUsableBeforeInit(t *testing.T) {
	if HTTPRequestsTotal == nil || HTTPRequestDuration == nil ||
		RegistrationsTotal == nil || RecoverThrottledTotal == nil {
		t.Fatalf("collectors must be constructed at declaration time")
	}

	RegistrationsTotal.Inc()
	RecoverThrottledTotal.Inc()
	HTTPRequestsTotal.WithLabelValues("GET", "/tasks", "200").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/tasks").Observe(0.05)
}

func TestInitMetricsIdempotent(t *testing.T) {
	// 重复注册同一指标会 panic，Once 必须保证只注册一次
	InitMetrics()
	InitMetrics()
}
