package server

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/goeq/tools"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// ============================================================
// Config
// ============================================================

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Config{Addr: ":8080", Transport: "http", LogLevel: "info", MaxBodyBytes: 1 << 20, MaxRangeLen: 4096}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	environ := map[string]string{"GOEQ_ADDR": ":9000", "GOEQ_LOG_LEVEL": "debug"}
	cfg, err := ParseConfig(fs, []string{"-transport", "stdio"}, environ)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-max-range-len", "16"}, map[string]string{"GOEQ_MAX_RANGE_LEN": "8"})
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxRangeLen)
}

func TestParseConfigRejects(t *testing.T) {
	cases := []struct {
		args    []string
		environ map[string]string
	}{
		{[]string{"-transport", "carrier-pigeon"}, map[string]string{}},
		{nil, map[string]string{"GOEQ_LOG_LEVEL": "loud"}},
		{nil, map[string]string{"GOEQ_MAX_BODY_BYTES": "0"}},
		{nil, map[string]string{"GOEQ_MAX_BODY_BYTES": "lots"}},
		{[]string{"-max-range-len", "0"}, map[string]string{}},
	}
	for _, c := range cases {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		_, err := ParseConfig(fs, c.args, c.environ)
		assert.Error(t, err, "%v %v", c.args, c.environ)
	}
}

// ============================================================
// HTTP
// ============================================================

func postTool(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, tools.ToolResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body)))
	var resp tools.ToolResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestToolEndpoint(t *testing.T) {
	reg := tools.NewRegistry(nil)
	h := NewHandler(reg, discard(), 1<<20)

	rec, resp := postTool(t, h, `{"tool":"system_create","params":{"naming":{"prefix":"p_"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, resp.Error)
	id := resp.String

	body := `{"tool":"bind","params":{"system":"` + id + `","name":"x","rhs":{"type":"num","value":"4"}}}`
	rec, resp = postTool(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p_x = 4", resp.String)
	assert.Equal(t, 1, reg.Len())
}

func TestToolEndpointRejectsBadRequests(t *testing.T) {
	h := NewHandler(tools.NewRegistry(nil), discard(), 64)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = postTool(t, h, `{"tool":"equations","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postTool(t, h, `{"tool":"tool_spec"} {}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postTool(t, h, `{"tool":"tool_spec","params":{"pad":"`+strings.Repeat("x", 128)+`"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemaHealthMetrics(t *testing.T) {
	h := NewHandler(tools.NewRegistry(nil), discard(), 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bind_range"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	_, _ = postTool(t, h, `{"tool":"tool_spec"}`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "goeq_tool_calls_total")
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	done := make(chan error, 1)
	go func() { done <- serveHTTP(ctx, srv, discard()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

// ============================================================
// MCP
// ============================================================

func TestRunMCPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	done := make(chan error, 1)
	go func() { done <- RunMCP(ctx, tools.NewRegistry(nil), serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(clientCtx, &mcp.CallToolParams{Name: "tool_spec", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.True(t, bytes.Contains([]byte(text), []byte("system_create")))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("MCP server did not stop after cancel")
	}
}
