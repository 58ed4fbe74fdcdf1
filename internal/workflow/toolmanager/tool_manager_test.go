package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/kestrel/internal/logging"
	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

type mockInput struct {
	Value string   `json:"value"`
	Count int      `json:"count,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type mockTool struct {
	name        string
	executeFunc func(ctx context.Context, input any) (tool.Result, error)
}

func (m *mockTool) Name() string { return m.name }
func (m *mockTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: m.name,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"value": {Type: tool.TypeString},
				"count": {Type: tool.TypeInteger},
				"tags":  {Type: tool.TypeArray, Items: &tool.Schema{Type: tool.TypeString}},
			},
			Required: []string{"value"},
		},
	}
}
func (m *mockTool) Input() any { return &mockInput{} }
func (m *mockTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, input)
	}
	return tool.Success("echo", input.(*mockInput).Value), nil
}

type mockGatedTool struct {
	mockTool
	permissionFunc func(input any) (*permission.Request, error)
}

func (m *mockGatedTool) Permission(input any) (*permission.Request, error) {
	return m.permissionFunc(input)
}

type mockGate struct {
	authorizeFunc func(ctx context.Context, req permission.Request) error
	calls         atomic.Int32
}

func (m *mockGate) Authorize(ctx context.Context, req permission.Request) error {
	m.calls.Add(1)
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, req)
	}
	return nil
}

func newManager(gate *mockGate, tools ...Tool) *ToolManager {
	return NewToolManager(gate, 4, logging.Discard(), tools...)
}

func call(name, args string) Call {
	return Call{ID: "call_" + name, Name: name, Arguments: json.RawMessage(args)}
}

func TestDeclarations_SortedByName(t *testing.T) {
	tm := newManager(&mockGate{}, &mockTool{name: "zeta"}, &mockTool{name: "alpha"}, &mockTool{name: "mid"})

	var names []string
	for _, d := range tm.Declarations() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestDispatch_HappyPath_DecodesTypedInput(t *testing.T) {
	var got *mockInput
	tm := newManager(&mockGate{}, &mockTool{name: "echo", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
		got = input.(*mockInput)
		return tool.Success("echo", got.Value), nil
	}})

	res, err := tm.Dispatch(context.Background(), call("echo", `{"value":"hi","count":3,"tags":["a","b"]}`))
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, &mockInput{Value: "hi", Count: 3, Tags: []string{"a", "b"}}, got)
}

func TestDispatch_Failures(t *testing.T) {
	tm := newManager(&mockGate{}, &mockTool{name: "echo"}, &mockTool{name: "other"})

	tests := []struct {
		name string
		call Call
		want string
	}{
		{"unknown tool lists available", call("nope", `{}`), `unknown tool "nope"; available tools: echo, other`},
		{"arguments not an object", call("echo", `["x"]`), "arguments must be a JSON object"},
		{"malformed json", call("echo", `{"value":`), "arguments must be a JSON object"},
		{"missing required", call("echo", `{}`), `invalid argument "value": required`},
		{"empty arguments treated as object", call("echo", ``), `invalid argument "value": required`},
		{"wrong type", call("echo", `{"value":1}`), `invalid argument "value": expected string`},
		{"fractional integer", call("echo", `{"value":"x","count":1.5}`), `invalid argument "count"`},
		{"bad array item", call("echo", `{"value":"x","tags":["a",2]}`), `invalid argument "tags[1]"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tm.Dispatch(context.Background(), tt.call)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.want)
		})
	}
}

func TestDispatch_Permission(t *testing.T) {
	newGated := func(perm func(any) (*permission.Request, error), executed *bool) *mockGatedTool {
		return &mockGatedTool{
			mockTool: mockTool{name: "gated", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
				*executed = true
				return tool.Success("message", "done"), nil
			}},
			permissionFunc: perm,
		}
	}
	editReq := func(any) (*permission.Request, error) {
		return &permission.Request{Class: permission.ClassFileEdit, Operation: "editing a.txt"}, nil
	}

	t.Run("granted executes", func(t *testing.T) {
		executed := false
		gate := &mockGate{}
		tm := newManager(gate, newGated(editReq, &executed))

		res, err := tm.Dispatch(context.Background(), call("gated", `{"value":"x"}`))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, executed)
		assert.Equal(t, int32(1), gate.calls.Load())
	})

	t.Run("denied becomes failure without executing", func(t *testing.T) {
		executed := false
		gate := &mockGate{authorizeFunc: func(ctx context.Context, req permission.Request) error {
			return &permission.DeniedError{Class: req.Class, Operation: req.Operation}
		}}
		tm := newManager(gate, newGated(editReq, &executed))

		res, err := tm.Dispatch(context.Background(), call("gated", `{"value":"x"}`))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "permission denied")
		assert.False(t, executed)
	})

	t.Run("precheck failure never prompts", func(t *testing.T) {
		executed := false
		gate := &mockGate{}
		tm := newManager(gate, newGated(func(any) (*permission.Request, error) {
			return nil, errors.New("access denied: outside workspace")
		}, &executed))

		res, err := tm.Dispatch(context.Background(), call("gated", `{"value":"x"}`))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "access denied: outside workspace", res.Error)
		assert.Equal(t, int32(0), gate.calls.Load())
		assert.False(t, executed)
	})

	t.Run("nil request skips the gate", func(t *testing.T) {
		executed := false
		gate := &mockGate{}
		tm := newManager(gate, newGated(func(any) (*permission.Request, error) { return nil, nil }, &executed))

		res, err := tm.Dispatch(context.Background(), call("gated", `{"value":"x"}`))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, int32(0), gate.calls.Load())
	})

	t.Run("cancelled while prompting propagates", func(t *testing.T) {
		executed := false
		ctx, cancel := context.WithCancel(context.Background())
		gate := &mockGate{authorizeFunc: func(ctx context.Context, req permission.Request) error {
			cancel()
			return ctx.Err()
		}}
		tm := newManager(gate, newGated(editReq, &executed))

		_, err := tm.Dispatch(ctx, call("gated", `{"value":"x"}`))
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, executed)
	})
}

func TestDispatch_ExecuteErrors(t *testing.T) {
	t.Run("panic becomes failure", func(t *testing.T) {
		tm := newManager(&mockGate{}, &mockTool{name: "boom", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			panic("kaboom")
		}})

		res, err := tm.Dispatch(context.Background(), call("boom", `{"value":"x"}`))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, `tool "boom" panicked: kaboom`)
	})

	t.Run("returned error becomes failure", func(t *testing.T) {
		tm := newManager(&mockGate{}, &mockTool{name: "bad", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			return tool.Result{}, errors.New("invalid input type")
		}})

		res, err := tm.Dispatch(context.Background(), call("bad", `{"value":"x"}`))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "invalid input type", res.Error)
	})

	t.Run("context cancellation propagates", func(t *testing.T) {
		tm := newManager(&mockGate{}, &mockTool{name: "slow", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			return tool.Result{}, context.Canceled
		}})

		_, err := tm.Dispatch(context.Background(), call("slow", `{"value":"x"}`))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDispatchAll_RequestOrder(t *testing.T) {
	tm := newManager(&mockGate{}, &mockTool{name: "sleep", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
		in := input.(*mockInput)
		time.Sleep(time.Duration(in.Count) * time.Millisecond)
		return tool.Success("echo", in.Value), nil
	}})

	calls := []Call{
		call("sleep", `{"value":"first","count":30}`),
		call("sleep", `{"value":"second","count":1}`),
		call("nope", `{}`),
		call("sleep", `{"value":"fourth","count":10}`),
	}
	results, err := tm.DispatchAll(context.Background(), calls)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "first", results[0].PrimaryValue())
	assert.Equal(t, "second", results[1].PrimaryValue())
	assert.False(t, results[2].Success)
	assert.Equal(t, "fourth", results[3].PrimaryValue())
}

func TestDispatchAll_BoundedParallelism(t *testing.T) {
	var running, peak atomic.Int32
	var mu sync.Mutex
	tm := NewToolManager(&mockGate{}, 2, logging.Discard(), &mockTool{name: "work", executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
		n := running.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return tool.Success("echo", "ok"), nil
	}})

	calls := make([]Call, 6)
	for i := range calls {
		calls[i] = call("work", `{"value":"x"}`)
	}
	_, err := tm.DispatchAll(context.Background(), calls)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDispatchAll_Empty(t *testing.T) {
	tm := newManager(&mockGate{})
	results, err := tm.DispatchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewToolManager_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { NewToolManager(nil, 1, logging.Discard()) })
	assert.Panics(t, func() { NewToolManager(&mockGate{}, 1, nil) })
}
