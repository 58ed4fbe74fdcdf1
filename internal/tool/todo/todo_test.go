package todo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Cyclone1070/kestrel/internal/config"
)

type failingStore struct{}

func (failingStore) Read() ([]Todo, error)    { return nil, errors.New("disk gone") }
func (failingStore) Write(todos []Todo) error { return errors.New("disk gone") }

func todosOf(t *testing.T, payload map[string]any) []Todo {
	t.Helper()
	todos, ok := payload["todos"].([]Todo)
	if !ok {
		t.Fatalf("todos payload has type %T", payload["todos"])
	}
	return todos
}

func TestTodoTools(t *testing.T) {
	cfg := config.DefaultConfig()
	ctx := context.Background()

	// Helper to create tools with a fresh store
	createTools := func() (*ReadTodosTool, *WriteTodosTool) {
		store := NewInMemoryTodoStore()
		return NewReadTodosTool(store, cfg), NewWriteTodosTool(store, cfg)
	}

	t.Run("Happy Path", func(t *testing.T) {
		readTool, writeTool := createTools()

		res, err := readTool.Execute(ctx, &ReadTodosRequest{})
		if err != nil || !res.Success {
			t.Fatalf("todo_read failed: %v %s", err, res.Error)
		}
		if got := todosOf(t, res.Payload); len(got) != 0 {
			t.Errorf("expected empty todos, got %d", len(got))
		}
		if res.PrimaryValue() != "No todos." {
			t.Errorf("unexpected empty message %q", res.PrimaryValue())
		}

		todos := []Todo{
			{Description: "Task 1", Status: TodoStatusPending},
			{Description: "Task 2", Status: TodoStatusInProgress},
			{Description: "Task 3", Status: TodoStatusCompleted},
			{Description: "Task 4", Status: TodoStatusCancelled},
		}
		res, err = writeTool.Execute(ctx, &WriteTodosRequest{Todos: todos})
		if err != nil || !res.Success {
			t.Fatalf("todo_write failed: %v %s", err, res.Error)
		}
		want := "- [ ] Task 1\n- [~] Task 2 (in progress)\n- [x] Task 3\n- [-] ~~Task 4~~"
		if res.PrimaryValue() != want {
			t.Errorf("checklist mismatch:\nwant %q\ngot  %q", want, res.PrimaryValue())
		}

		res, _ = readTool.Execute(ctx, &ReadTodosRequest{})
		got := todosOf(t, res.Payload)
		if len(got) != 4 {
			t.Fatalf("expected 4 todos, got %d", len(got))
		}
		if got[1].Status != TodoStatusInProgress {
			t.Errorf("expected in_progress, got %s", got[1].Status)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		readTool, writeTool := createTools()

		_, _ = writeTool.Execute(ctx, &WriteTodosRequest{Todos: []Todo{{Description: "A", Status: TodoStatusPending}}})
		_, _ = writeTool.Execute(ctx, &WriteTodosRequest{Todos: []Todo{{Description: "B", Status: TodoStatusCompleted}}})

		res, _ := readTool.Execute(ctx, &ReadTodosRequest{})
		got := todosOf(t, res.Payload)
		if len(got) != 1 || got[0].Description != "B" {
			t.Errorf("expected only B, got %+v", got)
		}
	})

	t.Run("Empty Write Clears", func(t *testing.T) {
		readTool, writeTool := createTools()

		_, _ = writeTool.Execute(ctx, &WriteTodosRequest{Todos: []Todo{{Description: "Task", Status: TodoStatusPending}}})
		res, err := writeTool.Execute(ctx, &WriteTodosRequest{})
		if err != nil || !res.Success {
			t.Fatalf("empty write failed: %v %s", err, res.Error)
		}

		res, _ = readTool.Execute(ctx, &ReadTodosRequest{})
		if got := todosOf(t, res.Payload); len(got) != 0 {
			t.Errorf("expected empty list, got %d items", len(got))
		}
	})

	t.Run("Data Isolation", func(t *testing.T) {
		readTool, writeTool := createTools()

		_, _ = writeTool.Execute(ctx, &WriteTodosRequest{Todos: []Todo{{Description: "Original", Status: TodoStatusPending}}})

		res, _ := readTool.Execute(ctx, &ReadTodosRequest{})
		todosOf(t, res.Payload)[0].Description = "Modified"

		res, _ = readTool.Execute(ctx, &ReadTodosRequest{})
		if todosOf(t, res.Payload)[0].Description != "Original" {
			t.Error("todo_read returned a reference to internal state, not a copy")
		}
	})

	t.Run("Invalid Items", func(t *testing.T) {
		_, writeTool := createTools()

		tests := []struct {
			name  string
			todos []Todo
			want  error
		}{
			{"bad status", []Todo{{Description: "x", Status: "later"}}, ErrInvalidStatus},
			{"blank description", []Todo{{Description: "  ", Status: TodoStatusPending}}, ErrEmptyDescription},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res, err := writeTool.Execute(ctx, &WriteTodosRequest{Todos: tt.todos})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Success || !strings.Contains(res.Error, tt.want.Error()) {
					t.Errorf("expected failure containing %q, got %+v", tt.want, res)
				}
			})
		}
	})

	t.Run("Concurrency", func(t *testing.T) {
		readTool, writeTool := createTools()
		var wg sync.WaitGroup

		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				if id%2 == 0 {
					_, _ = writeTool.Execute(ctx, &WriteTodosRequest{Todos: []Todo{{Description: "Concurrent", Status: TodoStatusPending}}})
				} else {
					_, _ = readTool.Execute(ctx, &ReadTodosRequest{})
				}
			}(i)
		}
		wg.Wait()
	})

	t.Run("Store Failure", func(t *testing.T) {
		readTool := NewReadTodosTool(failingStore{}, cfg)
		writeTool := NewWriteTodosTool(failingStore{}, cfg)

		res, err := readTool.Execute(ctx, &ReadTodosRequest{})
		if err != nil || res.Success || !strings.Contains(res.Error, "failed to read todos") {
			t.Errorf("expected read failure, got %+v, %v", res, err)
		}

		res, err = writeTool.Execute(ctx, &WriteTodosRequest{})
		if err != nil || res.Success || !strings.Contains(res.Error, "failed to write todos") {
			t.Errorf("expected write failure, got %+v, %v", res, err)
		}
	})

	t.Run("Wrong Input Type", func(t *testing.T) {
		readTool, _ := createTools()
		if _, err := readTool.Execute(ctx, &WriteTodosRequest{}); err == nil {
			t.Error("expected error for wrong input type")
		}
	})
}
