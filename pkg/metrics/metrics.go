// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三组：
//   - HTTP：请求数、耗时、处理中请求数
//   - 流通业务：借还/预约等账本操作结果
//   - 异步修正：可借数量与书架容量的修正任务
//
// 所有指标在第一次使用时注册到默认Registry，/metrics端点通过promhttp.Handler()暴露。
//
// 命名规范：
//  1. Counter 以 _total 结尾
//  2. Histogram 以单位结尾（_seconds）
//  3. 标签只使用有限取值（operation、kind、result），不用book_id/user_id做标签
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// LedgerOperationsTotal 账本操作总数
	// 标签：operation（lend/return/pay_late_fee/reserve/...）、result（success或错误类别）
	LedgerOperationsTotal *prometheus.CounterVec

	// ReconcileTasksTotal 修正任务总数
	// 标签：kind（book_availability/shelf_capacity/reservation_complete）、result（success/failure/skipped）
	ReconcileTasksTotal *prometheus.CounterVec

	// ReconcileTaskDuration 修正任务耗时
	ReconcileTaskDuration *prometheus.HistogramVec

	// ReconcileQueueDropped 队列已满被丢弃的任务数
	ReconcileQueueDropped prometheus.Counter

	// ReconcileQueueDepth 当前排队的任务数
	ReconcileQueueDepth prometheus.Gauge

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// MessagesPublishedTotal 发布到RabbitMQ的事件数
	// 标签：routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 从RabbitMQ消费的事件数
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标（可重复调用）
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "借阅/预约账本操作总数",
		},
		[]string{"operation", "result"},
	)

	ReconcileTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_tasks_total",
			Help: "修正任务总数",
		},
		[]string{"kind", "result"},
	)

	ReconcileTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconcile_task_duration_seconds",
			Help:    "修正任务耗时（秒）",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	ReconcileQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_queue_dropped_total",
			Help: "队列已满被丢弃的修正任务数",
		},
	)

	ReconcileQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_queue_depth",
			Help: "排队中的修正任务数",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "事件消息发布总数",
		},
		[]string{"routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "事件消息消费总数",
		},
		[]string{"routing_key", "result"},
	)
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// TrackInFlight 处理中请求数+1，返回的函数用于-1
func TrackInFlight() func() {
	InitMetrics()
	HTTPRequestsInProgress.Inc()
	return HTTPRequestsInProgress.Dec
}

// IncLedgerOperation 记录一次账本操作结果
func IncLedgerOperation(operation, result string) {
	InitMetrics()
	LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveReconcileTask 记录一次修正任务
func ObserveReconcileTask(kind, result string, d time.Duration) {
	InitMetrics()
	ReconcileTasksTotal.WithLabelValues(kind, result).Inc()
	ReconcileTaskDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncReconcileDropped 队列满丢弃计数
func IncReconcileDropped() {
	InitMetrics()
	ReconcileQueueDropped.Inc()
}

// AddReconcileQueueDepth 调整排队任务数
func AddReconcileQueueDepth(delta float64) {
	InitMetrics()
	ReconcileQueueDepth.Add(delta)
}

// SetCircuitBreakerState 记录熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// IncMessagePublished 记录事件发布结果
func IncMessagePublished(routingKey, result string) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// IncMessageConsumed 记录事件消费结果
func IncMessageConsumed(routingKey, result string) {
	InitMetrics()
	MessagesConsumedTotal.WithLabelValues(routingKey, result).Inc()
}
