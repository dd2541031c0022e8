package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/pkg/adapters/memory"
	"github.com/aretw0/lay/pkg/adapters/sim"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simRunner(p *program.Program, opts ...lay.Option) (lay.Result, error) {
	l := ports.Layer[int, int, lay.Op, *measured.Bits, error, error](sim.New(p.Width()))
	return lay.RunProgram(p, l, opts...)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	c, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return c.Text
}

func TestRunProgram(t *testing.T) {
	s := NewServer(simRunner)

	res, err := s.handleRunProgram(context.Background(), call("run_program", map[string]any{
		"program": "ops: [init, {x: 0}, {measure: 0}]",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out lay.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "1", out.Bits)

	res, err = s.handleRunProgram(context.Background(), call("run_program", map[string]any{
		"program": `{"ops":["init",{"x":1},{"measure":1}]}`,
		"format":  "json",
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"bits":"01"`)
}

func TestRunProgram_Errors(t *testing.T) {
	s := NewServer(simRunner, WithLimits(program.Limits{Qubits: 4, Slots: 8}))

	tests := []struct {
		name string
		args map[string]any
		msg  string
	}{
		{"missing program", map[string]any{}, "program"},
		{"unknown format", map[string]any{"program": "ops: [init]", "format": "toml"}, "toml"},
		{"malformed", map[string]any{"program": "ops: [{warp: 0}]"}, "invalid program"},
		{"huge slot", map[string]any{"program": "qubits: 1\nops: [{measure: {qubit: 0, slot: 9223372036854775806}}]"}, "beyond index"},
		{"too many qubits", map[string]any{"program": "ops: [{x: 9}]"}, "qubits"},
		{"too many slots", map[string]any{"program": "ops: [{measure: {qubit: 0, slot: 8}}]"}, "slots"},
		{"unsupported gate", map[string]any{"program": "ops: [{h: 0}]"}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleRunProgram(context.Background(), call("run_program", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.msg)
		})
	}
}

func TestRunProgram_PanicReleasesLock(t *testing.T) {
	calls := 0
	run := func(p *program.Program, opts ...lay.Option) (lay.Result, error) {
		calls++
		if calls == 1 {
			panic("backend blew up")
		}
		return simRunner(p, opts...)
	}
	s := NewServer(run)
	req := call("run_program", map[string]any{"program": "ops: [init, {x: 0}, {measure: 0}]"})

	assert.Panics(t, func() { _, _ = s.handleRunProgram(context.Background(), req) })

	res, err := s.handleRunProgram(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"bits":"1"`)
}

func TestTraceTools(t *testing.T) {
	ctx := context.Background()
	s := NewServer(simRunner, WithTraceStore(memory.NewTraceStore()))

	res, err := s.handleRunProgram(ctx, call("run_program", map[string]any{"program": "ops: [init, {x: 0}, {measure: 0}]"}))
	require.NoError(t, err)
	var out lay.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.NotEmpty(t, out.Session)

	res, err = s.handleListSessions(ctx, call("list_sessions", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["`+out.Session+`"]`, text(t, res))

	res, err = s.handleListTraces(ctx, call("list_traces", map[string]any{"session_id": out.Session}))
	require.NoError(t, err)
	var traces []ports.Trace
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &traces))
	require.Len(t, traces, 1)
	assert.Equal(t, []string{"initialize()", "x(0)", "measure(0, 0)"}, traces[0].Ops)

	res, err = s.handleGetTrace(ctx, call("get_trace", map[string]any{"trace_id": traces[0].ID}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), traces[0].ID)

	res, err = s.handleGetTrace(ctx, call("get_trace", map[string]any{"trace_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleListTraces(ctx, call("list_traces", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolsList(t *testing.T) {
	list := func(s *Server) string {
		msg := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		return string(data)
	}

	bare := list(NewServer(simRunner))
	assert.Contains(t, bare, "run_program")
	assert.NotContains(t, bare, "get_trace")

	full := list(NewServer(simRunner, WithTraceStore(memory.NewTraceStore())))
	for _, name := range []string{"run_program", "list_sessions", "list_traces", "get_trace"} {
		assert.Contains(t, full, name)
	}
}
