// Package metrics — коллекторы Prometheus сервисов Accountable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests — число HTTP-запросов по маршруту и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	// HTTPDuration — длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "accountable",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// GuardDecisions — решения охраны представлений.
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "guard_decisions_total",
		Help:      "View guard decisions by requested view and outcome.",
	}, []string{"view", "action"})

	// AdminAuthFailures — отклонённые вызовы admin RPC.
	AdminAuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "admin_auth_failures_total",
		Help:      "Admin RPC calls rejected by authorization.",
	})

	// AdminRateLimited — вызовы admin RPC, отклонённые ограничителем частоты.
	AdminRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "admin_rate_limited_total",
		Help:      "Admin RPC calls rejected by the per-client rate limiter.",
	})

	// NotificationsPublished — уведомления, отправленные планировщиком в брокер.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "notifications_published_total",
		Help:      "Task notifications published to the broker by routing key and result.",
	}, []string{"routing_key", "result"})

	// EmailsSent — письма, отправленные отправщиком.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountable",
		Name:      "emails_sent_total",
		Help:      "Notification emails by queue and result.",
	}, []string{"queue", "result"})
)

// Result возвращает метку результата операции.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
