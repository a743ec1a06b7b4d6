package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScheduleWrites 排课写入结果计数，op=create|update|delete，status=ok|conflict|invalid|error
	ScheduleWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edusync_schedule_writes_total",
			Help: "Schedule write attempts by operation and outcome",
		},
		[]string{"op", "status"},
	)

	// ScheduleConflicts 被拒绝的冲突写入，reason=faculty|section|faculty+section|constraint
	ScheduleConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edusync_schedule_conflicts_total",
			Help: "Schedule writes rejected because of an overlapping entry",
		},
		[]string{"reason"},
	)

	// LockWait 获取时段锁的耗时
	LockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edusync_schedule_lock_wait_seconds",
			Help:    "Time spent waiting for schedule slot locks",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LockFallbacks 锁服务不可用时降级为进程内锁的次数
	LockFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edusync_schedule_lock_fallbacks_total",
			Help: "Slot lock acquisitions that fell back to the in-process locker",
		},
	)

	// AuditConflicts 最近一次巡检发现的冲突对数量
	AuditConflicts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edusync_audit_conflicting_pairs",
			Help: "Conflicting schedule pairs found by the last audit run",
		},
	)

	// AuditRuns 巡检执行次数，status=ok|error
	AuditRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edusync_audit_runs_total",
			Help: "Conflict audit runs by outcome",
		},
		[]string{"status"},
	)

	// HTTPRequests HTTP 请求计数
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edusync_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration HTTP 请求耗时
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edusync_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// Register 注册到默认 Registry；多次调用只注册一次
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ScheduleWrites,
			ScheduleConflicts,
			LockWait,
			LockFallbacks,
			AuditConflicts,
			AuditRuns,
			HTTPRequests,
			HTTPDuration,
		)
	})
}
