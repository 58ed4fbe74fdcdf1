package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/provider"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "claude-sonnet-4-5"

// eventStream is the part of the SDK's SSE stream the provider reads.
type eventStream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

type streamOpener func(ctx context.Context, params anthropic.MessageNewParams) eventStream

// Provider streams steps from the Anthropic Messages API.
type Provider struct {
	open      streamOpener
	model     string
	maxTokens int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a Provider authenticated with apiKey.
func New(cfg config.ProviderConfig, apiKey string, logger *slog.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, provider.ErrMissingAPIKey
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
	)
	open := func(ctx context.Context, params anthropic.MessageNewParams) eventStream {
		return client.Messages.NewStreaming(ctx, params)
	}
	return newProvider(open, cfg, logger), nil
}

func newProvider(open streamOpener, cfg config.ProviderConfig, logger *slog.Logger) *Provider {
	if logger == nil {
		panic("logger is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		open:      open,
		model:     model,
		maxTokens: cfg.MaxTokens,
		limiter:   provider.NewLimiter(cfg.RequestsPerMinute),
		logger:    logger.With("provider", "anthropic", "model", model),
	}
}

// Model returns the model name in use.
func (p *Provider) Model() string {
	return p.model
}

// Stream runs one step. The channel closes after Finished, or after Error
// when the call fails.
func (p *Provider) Stream(ctx context.Context, req provider.Request) <-chan provider.StreamEvent {
	out := make(chan provider.StreamEvent, 16)
	go func() {
		defer close(out)
		p.stream(ctx, req, out)
	}()
	return out
}

func (p *Provider) stream(ctx context.Context, req provider.Request, out chan<- provider.StreamEvent) {
	send := func(ev provider.StreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		send(provider.Error{Err: err})
		return
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  toMessageParams(req.Messages),
		Tools:     toToolParams(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	p.logger.Debug("stream request", "messages", len(params.Messages), "tools", len(params.Tools))
	stream := p.open(ctx, params)
	defer stream.Close()

	acc := &accumulator{}
	for stream.Next() {
		for _, ev := range acc.handle(stream.Current()) {
			if !send(ev) {
				return
			}
		}
	}
	if err := stream.Err(); err != nil {
		p.logger.Warn("stream failed", "error", err)
		send(provider.Error{Err: mapError(err)})
		return
	}

	var messages []provider.Message
	if parts := acc.parts(); len(parts) > 0 {
		messages = append(messages, provider.NewMessage(provider.RoleAssistant, parts...))
	}
	send(provider.Finished{Messages: messages})
}

// accumulator rebuilds content blocks from stream events.
type accumulator struct {
	blocks     []provider.Part
	text       strings.Builder
	inText     bool
	call       *provider.ToolCallPart
	input      strings.Builder
	stopReason string
}

func (a *accumulator) handle(event anthropic.MessageStreamEventUnion) []provider.StreamEvent {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		switch block := e.ContentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			a.inText = true
			a.text.Reset()
			if block.Text != "" {
				a.text.WriteString(block.Text)
				return []provider.StreamEvent{provider.TextDelta{Text: block.Text}}
			}
		case anthropic.ToolUseBlock:
			a.call = &provider.ToolCallPart{ID: block.ID, ToolName: block.Name}
			a.input.Reset()
		}

	case anthropic.ContentBlockDeltaEvent:
		switch delta := e.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			a.text.WriteString(delta.Text)
			return []provider.StreamEvent{provider.TextDelta{Text: delta.Text}}
		case anthropic.InputJSONDelta:
			a.input.WriteString(delta.PartialJSON)
		}

	case anthropic.ContentBlockStopEvent:
		if a.call != nil {
			call := *a.call
			call.Arguments = rawArguments([]byte(a.input.String()))
			a.blocks = append(a.blocks, call)
			a.call = nil
			return []provider.StreamEvent{provider.ToolCallRequested{Call: call}}
		}
		if a.inText {
			if a.text.Len() > 0 {
				a.blocks = append(a.blocks, provider.TextPart{Text: a.text.String()})
			}
			a.inText = false
		}

	case anthropic.MessageDeltaEvent:
		a.stopReason = string(e.Delta.StopReason)

	case anthropic.MessageStopEvent:
		return []provider.StreamEvent{provider.StepFinished{Reason: a.stopReason}}
	}
	return nil
}

func (a *accumulator) parts() []provider.Part {
	return a.blocks
}

// mapError maps SDK errors to provider errors.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.StatusCode, "anthropic API error", err)
	}
	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
