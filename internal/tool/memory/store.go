package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// noteFS defines the filesystem operations the memory store needs.
type noteFS interface {
	ReadFile(path string, limit int64) ([]byte, error)
	AppendFile(path string, content []byte) error
}

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
}

// Store is an append-only markdown note file inside the workspace.
type Store struct {
	fs       noteFS
	resolver pathResolver
	relPath  string
	maxSize  int64
	now      func() time.Time

	mu sync.Mutex
}

// NewStore creates a store backed by relPath, resolved through the sandbox
// on every access.
func NewStore(fs noteFS, resolver pathResolver, relPath string, maxSize int64) *Store {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if relPath == "" {
		panic("relPath is required")
	}
	return &Store{
		fs:       fs,
		resolver: resolver,
		relPath:  relPath,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// Path returns the configured workspace-relative path.
func (s *Store) Path() string {
	return s.relPath
}

// Read returns the whole note file. A missing file reads as empty.
func (s *Store) Read() (string, error) {
	abs, err := s.resolver.Abs(s.relPath)
	if err != nil {
		return "", err
	}

	data, err := s.fs.ReadFile(abs, s.maxSize)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read memory file: %w", err)
	}
	return string(data), nil
}

// Append adds one timestamped section. Existing content is never rewritten.
func (s *Store) Append(note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrEmptyNote
	}

	abs, err := s.resolver.Abs(s.relPath)
	if err != nil {
		return err
	}

	section := fmt.Sprintf("## %s\n\n%s\n\n", s.now().Format(time.RFC3339), note)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.AppendFile(abs, []byte(section)); err != nil {
		return fmt.Errorf("failed to append memory note: %w", err)
	}
	return nil
}
