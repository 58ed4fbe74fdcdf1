// Package permission gates side-effecting tool operations behind user consent.
package permission

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// Class is the unit of consent. A grant covers every later operation of the same class.
type Class string

const (
	ClassFileEdit  Class = "file-edit"
	ClassFileWrite Class = "file-write"

	shellPrefix = "shell:"
)

// ShellClass returns the class of a shell command line: "shell:" followed by
// the basename of its first whitespace-delimited token.
func ShellClass(command string) Class {
	return Class(shellPrefix + CommandRoot(command))
}

// CommandRoot extracts the command name from a command line.
// Example: "/usr/bin/git status" returns "git".
func CommandRoot(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}

// Request describes one operation that needs consent.
type Request struct {
	Class     Class
	Operation string // human-readable, shown in the prompt
}

// prompter asks the user a yes/no question.
type prompter interface {
	ReadPermission(ctx context.Context, operation string) (bool, error)
}

// Gate decides whether an operation may run. Grants live for the session only
// and are never revoked.
type Gate struct {
	prompter   prompter
	unattended bool
	allow      []string
	deny       []string
	logger     *slog.Logger

	mu     sync.RWMutex // protects grants
	grants map[Class]bool

	promptSem chan struct{} // one prompt at a time
}

// NewGate creates a Gate. In unattended mode every request is granted without prompting.
func NewGate(cfg config.PermissionConfig, p prompter, unattended bool, logger *slog.Logger) *Gate {
	if p == nil {
		panic("prompter is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Gate{
		prompter:   p,
		unattended: unattended,
		allow:      slices.Clone(cfg.ShellAllow),
		deny:       slices.Clone(cfg.ShellDeny),
		logger:     logger,
		grants:     make(map[Class]bool),
		promptSem:  make(chan struct{}, 1),
	}
}

// Unattended reports whether the gate bypasses prompting.
func (g *Gate) Unattended() bool {
	return g.unattended
}

// Granted reports whether class has a session grant.
func (g *Gate) Granted(class Class) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.grants[class]
}

// Authorize returns nil when the operation may proceed, a *DeniedError when
// it may not, or the context error when cancelled while waiting for the user.
func (g *Gate) Authorize(ctx context.Context, req Request) error {
	if req.Class == "" {
		return fmt.Errorf("permission request has no class")
	}

	if g.unattended {
		return nil
	}

	if g.Granted(req.Class) {
		return nil
	}

	if name, ok := strings.CutPrefix(string(req.Class), shellPrefix); ok {
		if slices.Contains(g.deny, name) {
			g.logger.Info("permission denied by policy", "class", req.Class)
			return &DeniedError{Class: req.Class, Operation: req.Operation, ByPolicy: true}
		}
		if slices.Contains(g.allow, name) {
			return nil
		}
	}

	select {
	case g.promptSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.promptSem }()

	// Another prompt may have granted the class while we waited.
	if g.Granted(req.Class) {
		return nil
	}

	allowed, err := g.prompter.ReadPermission(ctx, req.Operation)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to get user permission: %w", err)
	}

	if !allowed {
		g.logger.Info("permission denied by user", "class", req.Class)
		return &DeniedError{Class: req.Class, Operation: req.Operation}
	}

	g.mu.Lock()
	g.grants[req.Class] = true
	g.mu.Unlock()
	g.logger.Info("permission granted for session", "class", req.Class)

	return nil
}
