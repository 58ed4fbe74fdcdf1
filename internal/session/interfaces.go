package session

import (
	"context"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool/todo"
)

// roundRunner runs one agent round.
type roundRunner interface {
	RunRound(ctx context.Context, conversation []provider.Message) ([]provider.Message, error)
}

// inputReader reads a line from the user.
type inputReader interface {
	ReadInput(ctx context.Context, prompt string) (string, error)
}

// output writes session messages to the terminal.
type output interface {
	Write(s string)
	Markdown(text string) string
}

// renderWaiter blocks until the renderer has drawn the end of a round.
type renderWaiter interface {
	WaitDone(ctx context.Context)
}

// noteReader reads the memory note file.
type noteReader interface {
	Read() (string, error)
	Path() string
}

// todoReader reads the session todo list.
type todoReader interface {
	Read() ([]todo.Todo, error)
}
