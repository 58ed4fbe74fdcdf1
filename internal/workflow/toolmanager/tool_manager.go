package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"

	"github.com/Cyclone1070/kestrel/internal/tool"
)

// Call is one tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

type ToolManager struct {
	registry    map[string]Tool
	gate        authorizer
	maxParallel int
	logger      *slog.Logger
}

// NewToolManager creates a dispatcher. maxParallel bounds DispatchAll.
func NewToolManager(gate authorizer, maxParallel int, logger *slog.Logger, tools ...Tool) *ToolManager {
	if gate == nil {
		panic("gate is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	tm := &ToolManager{
		registry:    make(map[string]Tool),
		gate:        gate,
		maxParallel: maxParallel,
		logger:      logger,
	}
	for _, t := range tools {
		tm.Register(t)
	}
	return tm
}

// Register adds t, replacing any tool with the same name.
func (m *ToolManager) Register(t Tool) {
	m.registry[t.Name()] = t
}

// Declarations returns every tool schema, sorted by name.
func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, t := range m.registry {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

func (m *ToolManager) names() []string {
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates, authorizes and executes one call. Every problem is
// reported as a failed result; only context cancellation is returned as
// an error.
func (m *ToolManager) Dispatch(ctx context.Context, call Call) (tool.Result, error) {
	logger := m.logger.With("tool", call.Name, "call_id", call.ID)

	t, ok := m.registry[call.Name]
	if !ok {
		logger.Warn("unknown tool requested")
		return tool.Failuref("unknown tool %q; available tools: %s", call.Name, strings.Join(m.names(), ", ")), nil
	}

	args, err := decodeArguments(call.Arguments)
	if err != nil {
		return tool.Failure(err), nil
	}
	if err := t.Declaration().Parameters.Validate(args); err != nil {
		logger.Debug("arguments rejected by schema", "error", err)
		return tool.Failure(err), nil
	}

	input := t.Input()
	if err := decodeInput(args, input); err != nil {
		return tool.Failure(&tool.ValidationError{Reason: err.Error()}), nil
	}

	if p, ok := t.(permissioned); ok {
		req, err := p.Permission(input)
		if err != nil {
			logger.Info("precheck rejected call", "error", err)
			return tool.Failure(err), nil
		}
		if req != nil {
			if err := m.gate.Authorize(ctx, *req); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return tool.Result{}, ctxErr
				}
				logger.Info("permission refused", "class", req.Class, "error", err)
				return tool.Failure(err), nil
			}
		}
	}

	res, err := m.execute(ctx, t, input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tool.Result{}, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return tool.Result{}, err
		}
		logger.Error("tool execution failed", "error", err)
		return tool.Failure(err), nil
	}

	logger.Debug("tool executed", "success", res.Success)
	return res, nil
}

func (m *ToolManager) execute(ctx context.Context, t Tool, input any) (res tool.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %q panicked: %v", t.Name(), r)
		}
	}()
	return t.Execute(ctx, input)
}

// DispatchAll runs calls concurrently, at most maxParallel at a time.
// Results are returned in request order regardless of completion order.
func (m *ToolManager) DispatchAll(ctx context.Context, calls []Call) ([]tool.Result, error) {
	results := make([]tool.Result, len(calls))
	if len(calls) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxParallel)
	for i, call := range calls {
		g.Go(func() error {
			res, err := m.Dispatch(gctx, call)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, &tool.ValidationError{Reason: "arguments must be a JSON object"}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func decodeInput(args map[string]any, input any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: false,
		Result:           input,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
