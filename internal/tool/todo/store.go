package todo

import "sync"

// InMemoryTodoStore implements todo storage using an in-memory slice.
type InMemoryTodoStore struct {
	todos []Todo
	mu    sync.RWMutex
}

// NewInMemoryTodoStore creates a new instance of InMemoryTodoStore.
func NewInMemoryTodoStore() *InMemoryTodoStore {
	return &InMemoryTodoStore{
		todos: make([]Todo, 0),
	}
}

// Read returns the current list of todos.
func (s *InMemoryTodoStore) Read() ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to ensure isolation
	result := make([]Todo, len(s.todos))
	copy(result, s.todos)
	return result, nil
}

// Write replaces the current list of todos with the provided list.
func (s *InMemoryTodoStore) Write(todos []Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to ensure isolation
	s.todos = make([]Todo, len(todos))
	copy(s.todos, todos)
	return nil
}
