package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// toolCalls counts tool calls by tool and outcome ("ok" or "error").
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goeq_tool_calls_total",
		Help: "Total tool calls by tool and status",
	}, []string{"tool", "status"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goeq_tool_duration_seconds",
		Help:    "Tool call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	}, []string{"tool"})
)

func observe(tool string, resp ToolResponse, start time.Time) {
	if !isKnownTool(tool) {
		tool = "unknown"
	}
	status := "ok"
	if resp.Error != "" {
		status = "error"
	}
	toolCalls.WithLabelValues(tool, status).Inc()
	toolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}
