package todo

import (
	"strings"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// TodoStatus represents the status of a todo item.
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusCancelled  TodoStatus = "cancelled"
)

var allStatuses = []string{
	string(TodoStatusPending),
	string(TodoStatusInProgress),
	string(TodoStatusCompleted),
	string(TodoStatusCancelled),
}

// Todo represents a single task item.
type Todo struct {
	Description string     `json:"description"`
	Status      TodoStatus `json:"status"`
}

// ReadTodosRequest takes no arguments.
type ReadTodosRequest struct{}

func (r *ReadTodosRequest) Validate(cfg *config.Config) error {
	return nil
}

// WriteTodosRequest replaces the whole list.
type WriteTodosRequest struct {
	Todos []Todo `json:"todos"`
}

func (r *WriteTodosRequest) Validate(cfg *config.Config) error {
	for i, todo := range r.Todos {
		switch todo.Status {
		case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted, TodoStatusCancelled:
		default:
			return &InvalidStatusError{Index: i, Status: todo.Status}
		}
		if strings.TrimSpace(todo.Description) == "" {
			return &EmptyDescriptionError{Index: i}
		}
	}
	return nil
}

// Checklist renders todos as a markdown checklist.
func Checklist(todos []Todo) string {
	if len(todos) == 0 {
		return "No todos."
	}
	var sb strings.Builder
	for i, t := range todos {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch t.Status {
		case TodoStatusCompleted:
			sb.WriteString("- [x] " + t.Description)
		case TodoStatusInProgress:
			sb.WriteString("- [~] " + t.Description + " (in progress)")
		case TodoStatusCancelled:
			sb.WriteString("- [-] ~~" + t.Description + "~~")
		default:
			sb.WriteString("- [ ] " + t.Description)
		}
	}
	return sb.String()
}
