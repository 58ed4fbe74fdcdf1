package gemini

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/provider"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gemini-2.5-pro"

// GeminiProvider streams steps from Google Gemini.
type GeminiProvider struct {
	client     GeminiClient
	modelName  string
	maxTokens  int
	maxRetries int
	limiter    *rate.Limiter
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

// New creates a new GeminiProvider with the specified client.
func New(client GeminiClient, cfg config.ProviderConfig, logger *slog.Logger) *GeminiProvider {
	if client == nil {
		panic("client is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiProvider{
		client:     client,
		modelName:  model,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		limiter:    provider.NewLimiter(cfg.RequestsPerMinute),
		backoff:    exponentialBackoff,
		logger:     logger.With("provider", "gemini", "model", model),
	}
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Second << attempt
}

// Model returns the currently active model name.
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// Stream runs one step. Retryable failures are retried with backoff as long
// as nothing has been emitted for the step yet.
func (p *GeminiProvider) Stream(ctx context.Context, req provider.Request) <-chan provider.StreamEvent {
	out := make(chan provider.StreamEvent, 16)
	go func() {
		defer close(out)
		p.stream(ctx, req, out)
	}()
	return out
}

func (p *GeminiProvider) stream(ctx context.Context, req provider.Request, out chan<- provider.StreamEvent) {
	send := func(ev provider.StreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	contents := toGeminiContents(req.Messages)
	genConfig := toGeminiConfig(req.System, p.maxTokens, req.Tools)

	for attempt := 0; ; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			send(provider.Error{Err: err})
			return
		}

		acc := &accumulator{}
		emitted, err := p.attempt(ctx, contents, genConfig, acc, send)
		if err == nil {
			if acc.stopped {
				return
			}
			if !send(provider.StepFinished{Reason: acc.finishReason}) {
				return
			}
			var messages []provider.Message
			if len(acc.parts) > 0 {
				messages = append(messages, provider.NewMessage(provider.RoleAssistant, acc.parts...))
			}
			send(provider.Finished{Messages: messages})
			return
		}

		if ctx.Err() != nil {
			send(provider.Error{Err: ctx.Err()})
			return
		}
		mapped := mapGeminiError(err)
		if emitted || attempt >= p.maxRetries || !provider.IsRetryable(mapped) {
			p.logger.Warn("stream failed", "attempt", attempt+1, "error", err)
			send(provider.Error{Err: mapped})
			return
		}

		wait := p.backoff(attempt)
		p.logger.Info("retrying stream", "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			send(provider.Error{Err: ctx.Err()})
			return
		}
	}
}

// attempt consumes one streamed response. emitted reports whether any event
// reached the caller before err.
func (p *GeminiProvider) attempt(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
	acc *accumulator,
	send func(provider.StreamEvent) bool,
) (emitted bool, err error) {
	for resp, streamErr := range p.client.GenerateContentStream(ctx, p.modelName, contents, genConfig) {
		if streamErr != nil {
			return emitted, streamErr
		}
		events, blocked := acc.handle(resp)
		if blocked != nil {
			send(provider.Error{Err: blocked})
			acc.stopped = true
			return true, nil
		}
		for _, ev := range events {
			emitted = true
			if !send(ev) {
				acc.stopped = true
				return emitted, nil
			}
		}
	}
	return emitted, nil
}

// accumulator folds response chunks into message parts. Adjacent text
// chunks merge into one text part.
type accumulator struct {
	parts        []provider.Part
	finishReason string
	stopped      bool
}

func (a *accumulator) handle(resp *genai.GenerateContentResponse) ([]provider.StreamEvent, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, nil
	}
	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}
	if candidate.FinishReason != "" {
		a.finishReason = strings.ToLower(string(candidate.FinishReason))
	}
	if candidate.Content == nil {
		return nil, nil
	}

	var events []provider.StreamEvent
	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			call := toToolCall(part.FunctionCall)
			a.parts = append(a.parts, call)
			events = append(events, provider.ToolCallRequested{Call: call})
		case part.Text != "" && !part.Thought:
			a.appendText(part.Text)
			events = append(events, provider.TextDelta{Text: part.Text})
		}
	}
	return events, nil
}

func (a *accumulator) appendText(text string) {
	if n := len(a.parts); n > 0 {
		if last, ok := a.parts[n-1].(provider.TextPart); ok {
			a.parts[n-1] = provider.TextPart{Text: last.Text + text}
			return
		}
	}
	a.parts = append(a.parts, provider.TextPart{Text: text})
}

// toToolCall converts a function call, synthesizing an ID when Gemini
// omits one.
func toToolCall(fc *genai.FunctionCall) provider.ToolCallPart {
	id := fc.ID
	if id == "" {
		id = provider.NewCallID()
	}
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte("{}")
	}
	return provider.ToolCallPart{ID: id, ToolName: fc.Name, Arguments: raw}
}
