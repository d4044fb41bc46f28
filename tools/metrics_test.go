package tools

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordOutcome(t *testing.T) {
	reg := NewRegistry(nil)
	okBefore := testutil.ToFloat64(toolCalls.WithLabelValues("tool_spec", "ok"))
	errBefore := testutil.ToFloat64(toolCalls.WithLabelValues("unknown", "error"))

	HandleToolCall(reg, ToolRequest{Tool: "tool_spec"})
	HandleToolCall(reg, ToolRequest{Tool: "bogus"})

	assert.Equal(t, okBefore+1, testutil.ToFloat64(toolCalls.WithLabelValues("tool_spec", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(toolCalls.WithLabelValues("unknown", "error")))
}
