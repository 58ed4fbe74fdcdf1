package loop

import (
	"context"
	"log/slog"
	"time"

	"github.com/Cyclone1070/kestrel/internal/prompt"
	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/workflow"
	"github.com/Cyclone1070/kestrel/internal/workflow/toolmanager"
)

// Loop drives rounds between the collaborator and the tool dispatcher.
// Only one round runs at a time.
type Loop struct {
	collaborator collaborator
	tools        toolDispatcher
	memory       memoryReader
	events       chan<- workflow.Event
	stepBudget   int
	root         string
	now          func() time.Time
	logger       *slog.Logger
}

// NewLoop creates a Loop. memory and events may be nil.
func NewLoop(
	c collaborator,
	tools toolDispatcher,
	memory memoryReader,
	events chan<- workflow.Event,
	stepBudget int,
	root string,
	logger *slog.Logger,
) *Loop {
	if c == nil {
		panic("collaborator is required")
	}
	if tools == nil {
		panic("tools is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if stepBudget < 1 {
		stepBudget = 1
	}
	return &Loop{
		collaborator: c,
		tools:        tools,
		memory:       memory,
		events:       events,
		stepBudget:   stepBudget,
		root:         root,
		now:          time.Now,
		logger:       logger,
	}
}

// RunRound runs steps until the model stops requesting tools, and returns
// the messages the round produced in emission order. The input conversation
// is never modified.
//
// A *CollaboratorError or *StepBudgetError is returned together with the
// messages produced before it. A context error ends the round as is.
func (l *Loop) RunRound(ctx context.Context, conversation []provider.Message) ([]provider.Message, error) {
	defer l.emit(ctx, workflow.DoneEvent{})

	system, err := prompt.Render(prompt.Data{
		Now:    l.now(),
		Root:   l.root,
		Memory: l.readMemory(),
	})
	if err != nil {
		return nil, err
	}
	declarations := l.tools.Declarations()

	var produced []provider.Message
	for step := 1; step <= l.stepBudget; step++ {
		if err := ctx.Err(); err != nil {
			return produced, err
		}

		l.emit(ctx, workflow.ThinkingEvent{})
		messages := make([]provider.Message, 0, len(conversation)+len(produced))
		messages = append(messages, conversation...)
		messages = append(messages, produced...)

		out, err := l.step(ctx, step, provider.Request{
			System:   system,
			Messages: messages,
			Tools:    declarations,
		})
		if err != nil {
			return produced, err
		}
		produced = append(produced, out.messages...)

		if len(out.calls) == 0 {
			l.logger.Debug("round finished", "steps", step, "messages", len(produced))
			return produced, nil
		}

		toolMsg, err := l.dispatch(ctx, out.calls)
		if err != nil {
			return produced, err
		}
		produced = append(produced, toolMsg)
	}

	l.logger.Warn("step budget exhausted", "budget", l.stepBudget)
	l.emit(ctx, workflow.BudgetExceededEvent{Budget: l.stepBudget})
	return produced, &StepBudgetError{Budget: l.stepBudget}
}

type stepOutput struct {
	messages []provider.Message
	calls    []provider.ToolCallPart
}

// step consumes one collaborator stream in emission order.
func (l *Loop) step(ctx context.Context, n int, req provider.Request) (stepOutput, error) {
	var (
		out      stepOutput
		finished bool
		lastErr  error
		answered = map[string]bool{}
	)

	for ev := range l.collaborator.Stream(ctx, req) {
		switch e := ev.(type) {
		case provider.TextDelta:
			l.emit(ctx, workflow.TextEvent{Text: e.Text})
		case provider.ToolCallRequested:
			out.calls = append(out.calls, e.Call)
		case provider.ToolCallResult:
			// Executed by the collaborator; shown but never dispatched here.
			answered[e.Result.CallID] = true
			l.emit(ctx, workflow.ToolResultEvent{
				Call:   provider.ToolCallPart{ID: e.Result.CallID, ToolName: e.Result.ToolName},
				Result: e.Result.Result,
			})
		case provider.StepFinished:
			l.logger.Debug("step finished", "step", n, "reason", e.Reason)
		case provider.Error:
			lastErr = e.Err
			l.logger.Warn("collaborator error", "step", n, "error", e.Err)
			l.emit(ctx, workflow.ErrorEvent{Err: e.Err})
		case provider.Finished:
			finished = true
			out.messages = e.Messages
		}
	}

	if !finished {
		if err := ctx.Err(); err != nil {
			return stepOutput{}, err
		}
		if lastErr == nil {
			lastErr = ErrStreamEnded
		}
		return stepOutput{}, &CollaboratorError{Step: n, Cause: lastErr}
	}

	if len(answered) > 0 {
		pending := out.calls[:0]
		for _, c := range out.calls {
			if !answered[c.ID] {
				pending = append(pending, c)
			}
		}
		out.calls = pending
	}
	return out, nil
}

// dispatch runs the step's calls and builds one tool message whose results
// follow request order.
func (l *Loop) dispatch(ctx context.Context, calls []provider.ToolCallPart) (provider.Message, error) {
	reqs := make([]toolmanager.Call, len(calls))
	for i, c := range calls {
		reqs[i] = toolmanager.Call{ID: c.ID, Name: c.ToolName, Arguments: c.Arguments}
	}

	results, err := l.tools.DispatchAll(ctx, reqs)
	if err != nil {
		return provider.Message{}, err
	}

	parts := make([]provider.Part, len(calls))
	for i, c := range calls {
		parts[i] = provider.ToolResultPart{CallID: c.ID, ToolName: c.ToolName, Result: results[i]}
		l.emit(ctx, workflow.ToolResultEvent{Call: c, Result: results[i]})
	}
	return provider.NewMessage(provider.RoleTool, parts...), nil
}

func (l *Loop) readMemory() string {
	if l.memory == nil {
		return ""
	}
	notes, err := l.memory.Read()
	if err != nil {
		l.logger.Warn("failed to read memory notes", "error", err)
		return ""
	}
	return notes
}

func (l *Loop) emit(ctx context.Context, ev workflow.Event) {
	if l.events == nil {
		return
	}
	select {
	case l.events <- ev:
	case <-ctx.Done():
	}
}
