package todo

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// todoStore defines the interface for todo storage.
type todoStore interface {
	Read() ([]Todo, error)
	Write(todos []Todo) error
}

// ReadTodosTool handles reading todos.
type ReadTodosTool struct {
	store  todoStore
	config *config.Config
}

// NewReadTodosTool creates a new ReadTodosTool with injected dependencies.
func NewReadTodosTool(store todoStore, cfg *config.Config) *ReadTodosTool {
	if store == nil {
		panic("store is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReadTodosTool{
		store:  store,
		config: cfg,
	}
}

func (t *ReadTodosTool) Name() string {
	return "todo_read"
}

func (t *ReadTodosTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "todo_read",
		Description: "Reads the current todo list.",
		Parameters: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{},
		},
	}
}

func (t *ReadTodosTool) Input() any {
	return &ReadTodosRequest{}
}

// Execute returns all todos. An empty list is not an error.
func (t *ReadTodosTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadTodosRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}

	todos, err := t.store.Read()
	if err != nil {
		return tool.Failure(&StoreReadError{Cause: err}), nil
	}

	return tool.Success("message", Checklist(todos)).With("todos", todos), nil
}

// WriteTodosTool handles writing todos.
type WriteTodosTool struct {
	store  todoStore
	config *config.Config
}

// NewWriteTodosTool creates a new WriteTodosTool with injected dependencies.
func NewWriteTodosTool(store todoStore, cfg *config.Config) *WriteTodosTool {
	if store == nil {
		panic("store is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &WriteTodosTool{
		store:  store,
		config: cfg,
	}
}

func (t *WriteTodosTool) Name() string {
	return "todo_write"
}

func (t *WriteTodosTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "todo_write",
		Description: "Replaces the todo list. Always send every item, not only the ones that changed.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"todos": {
					Type:        tool.TypeArray,
					Description: "The complete todo list",
					Items: &tool.Schema{
						Type: tool.TypeObject,
						Properties: map[string]*tool.Schema{
							"description": {Type: tool.TypeString, Description: "Task description"},
							"status":      {Type: tool.TypeString, Enum: allStatuses},
						},
						Required: []string{"description", "status"},
					},
				},
			},
			Required: []string{"todos"},
		},
	}
}

func (t *WriteTodosTool) Input() any {
	return &WriteTodosRequest{}
}

// Execute replaces all todos in the store.
func (t *WriteTodosTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteTodosRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}

	todos := req.Todos
	if todos == nil {
		todos = []Todo{}
	}
	if err := t.store.Write(todos); err != nil {
		return tool.Failure(&StoreWriteError{Cause: err}), nil
	}

	return tool.Success("message", Checklist(todos)).With("todos", todos), nil
}

// StoreReadError wraps a failed store read.
type StoreReadError struct {
	Cause error
}

func (e *StoreReadError) Error() string { return fmt.Sprintf("failed to read todos: %v", e.Cause) }
func (e *StoreReadError) Unwrap() error { return e.Cause }

// StoreWriteError wraps a failed store write.
type StoreWriteError struct {
	Cause error
}

func (e *StoreWriteError) Error() string { return fmt.Sprintf("failed to write todos: %v", e.Cause) }
func (e *StoreWriteError) Unwrap() error { return e.Cause }
