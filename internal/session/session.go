// Package session drives the interactive read-run loop around the agent.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool/todo"
	"github.com/Cyclone1070/kestrel/internal/workflow/loop"
)

// DefaultRequest is used when the session starts without a request.
const DefaultRequest = "Hi"

// InputPrompt is shown before each interactive turn.
const InputPrompt = "You: "

// Dependencies holds the components a Session needs.
type Dependencies struct {
	Runner   roundRunner
	Input    inputReader
	Output   output
	Rendered renderWaiter
	Memory   noteReader
	Todos    todoReader
	Logger   *slog.Logger
}

// Session keeps the conversation for one process lifetime.
type Session struct {
	runner     roundRunner
	input      inputReader
	out        output
	rendered   renderWaiter
	memory     noteReader
	todos      todoReader
	logger     *slog.Logger
	unattended bool

	conversation []provider.Message
}

// New creates a Session. In unattended mode Run returns after one round.
func New(deps Dependencies, unattended bool) *Session {
	if deps.Runner == nil {
		panic("runner is required")
	}
	if deps.Input == nil {
		panic("input is required")
	}
	if deps.Output == nil {
		panic("output is required")
	}
	if deps.Logger == nil {
		panic("logger is required")
	}
	return &Session{
		runner:     deps.Runner,
		input:      deps.Input,
		out:        deps.Output,
		rendered:   deps.Rendered,
		memory:     deps.Memory,
		todos:      deps.Todos,
		logger:     deps.Logger,
		unattended: unattended,
	}
}

// Conversation returns the messages exchanged so far.
func (s *Session) Conversation() []provider.Message {
	return s.conversation
}

// Run handles request and then, unless unattended, keeps reading turns
// until the user exits or input ends. It returns nil on a normal exit and
// the context error on interrupt.
func (s *Session) Run(ctx context.Context, request string) error {
	if strings.TrimSpace(request) == "" {
		request = DefaultRequest
	}

	for {
		done, err := s.handle(ctx, request)
		if err != nil || done {
			return err
		}
		if s.unattended {
			return nil
		}

		request, err = s.input.ReadInput(ctx, InputPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.out.Write("\n")
				return nil
			}
			return err
		}
	}
}

// handle processes one line of input. done reports that the user asked to exit.
func (s *Session) handle(ctx context.Context, line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	case "/memory":
		s.showMemory()
		return false, nil
	case "/todos":
		s.showTodos()
		return false, nil
	}

	return false, s.round(ctx, line)
}

func (s *Session) round(ctx context.Context, text string) error {
	s.conversation = append(s.conversation, provider.UserText(text))

	produced, err := s.runner.RunRound(ctx, s.conversation)
	s.conversation = append(s.conversation, produced...)
	if s.rendered != nil {
		s.rendered.WaitDone(ctx)
	}

	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var budgetErr *loop.StepBudgetError
	var collabErr *loop.CollaboratorError
	switch {
	case errors.As(err, &budgetErr):
		s.logger.Info("round hit step budget", "budget", budgetErr.Budget)
	case errors.As(err, &collabErr):
		s.logger.Warn("round ended by collaborator error", "error", err)
		s.out.Write(fmt.Sprintf("Round ended: %v\n\n", collabErr.Cause))
	default:
		s.logger.Error("round failed", "error", err)
		s.out.Write(fmt.Sprintf("Round failed: %v\n\n", err))
	}
	return nil
}

func (s *Session) showMemory() {
	if s.memory == nil {
		s.out.Write("Memory is not configured.\n\n")
		return
	}
	notes, err := s.memory.Read()
	if err != nil {
		s.out.Write(fmt.Sprintf("Failed to read %s: %v\n\n", s.memory.Path(), err))
		return
	}
	if strings.TrimSpace(notes) == "" {
		s.out.Write(fmt.Sprintf("No notes saved in %s yet.\n\n", s.memory.Path()))
		return
	}
	s.out.Write(s.out.Markdown(notes))
}

func (s *Session) showTodos() {
	if s.todos == nil {
		s.out.Write("Todos are not configured.\n\n")
		return
	}
	todos, err := s.todos.Read()
	if err != nil {
		s.out.Write(fmt.Sprintf("Failed to read todos: %v\n\n", err))
		return
	}
	s.out.Write(todo.Checklist(todos) + "\n\n")
}
