package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 指标在声明时即构造完成，任何包在任何时刻调用都不会遇到 nil；
// InitMetrics 只负责向默认 Registry 注册。
var (
	// HTTPRequestsTotal 按方法、路由与状态码统计 HTTP 请求数。
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasknest_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration 统计请求耗时分布。
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tasknest_http_request_duration_seconds",
		Help:    "HTTP request latency distribution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RegistrationsTotal 统计成功注册的用户数。
	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasknest_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	// RecoverThrottledTotal 统计被频控拦截的找回密码请求数。
	RecoverThrottledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasknest_recover_throttled_total",
		Help: "Total number of password recovery requests rejected by the rate limiter.",
	})

	registerOnce sync.Once
)

// InitMetrics 将全部指标注册到默认 Registry，可安全地多次调用。
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			RegistrationsTotal,
			RecoverThrottledTotal,
		)
	})
}
