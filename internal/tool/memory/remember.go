package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/kestrel/internal/tool"
)

var ErrEmptyNote = errors.New("note must not be empty")

// RememberRequest holds one note to persist.
type RememberRequest struct {
	Note string `json:"note"`
}

type noteAppender interface {
	Append(note string) error
	Path() string
}

// RememberTool appends notes that survive across sessions.
type RememberTool struct {
	store noteAppender
}

func NewRememberTool(store noteAppender) *RememberTool {
	if store == nil {
		panic("store is required")
	}
	return &RememberTool{store: store}
}

func (t *RememberTool) Name() string {
	return "remember"
}

func (t *RememberTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "remember",
		Description: "Saves a short note to the project memory file. Notes are shown to you at the start of every future request.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"note": {Type: tool.TypeString, Description: "The fact or preference to remember, in markdown"},
			},
			Required: []string{"note"},
		},
	}
}

func (t *RememberTool) Input() any {
	return &RememberRequest{}
}

func (t *RememberTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*RememberRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := t.store.Append(req.Note); err != nil {
		return tool.Failure(err), nil
	}
	return tool.Success("message", "Saved to "+t.store.Path()), nil
}
