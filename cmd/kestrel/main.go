// Package main is the kestrel command: a terminal coding agent that works
// inside the current directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/logging"
	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/provider/anthropic"
	"github.com/Cyclone1070/kestrel/internal/provider/gemini"
	"github.com/Cyclone1070/kestrel/internal/session"
	"github.com/Cyclone1070/kestrel/internal/tool/directory"
	"github.com/Cyclone1070/kestrel/internal/tool/file"
	"github.com/Cyclone1070/kestrel/internal/tool/memory"
	"github.com/Cyclone1070/kestrel/internal/tool/search"
	"github.com/Cyclone1070/kestrel/internal/tool/service/executor"
	"github.com/Cyclone1070/kestrel/internal/tool/service/fs"
	"github.com/Cyclone1070/kestrel/internal/tool/service/git"
	"github.com/Cyclone1070/kestrel/internal/tool/service/path"
	"github.com/Cyclone1070/kestrel/internal/tool/shell"
	"github.com/Cyclone1070/kestrel/internal/tool/todo"
	"github.com/Cyclone1070/kestrel/internal/ui"
	"github.com/Cyclone1070/kestrel/internal/workflow"
	"github.com/Cyclone1070/kestrel/internal/workflow/loop"
	"github.com/Cyclone1070/kestrel/internal/workflow/toolmanager"
)

// Environment variables read at startup.
const (
	envUnattended = "KESTREL_UNATTENDED"
	envProvider   = "KESTREL_PROVIDER"
	envModel      = "KESTREL_MODEL"
	envAnthropic  = "ANTHROPIC_API_KEY"
	envGemini     = "GEMINI_API_KEY"
)

// collaborator is implemented by every provider.
type collaborator interface {
	Stream(ctx context.Context, req provider.Request) <-chan provider.StreamEvent
	Model() string
}

// Workspace holds the per-directory services shared by the tools.
type Workspace struct {
	Root     string
	Resolver *path.Resolver
	FS       *fs.OSFileSystem
	Todos    *todo.InMemoryTodoStore
	Memory   *memory.Store
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Variables already set win over .env.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}

	logger, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}
	defer func() { _ = closeLog() }()

	unattended := isUnattended(os.Getenv)

	collab, err := createProvider(ctx, cfg, os.Getenv, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: failed to get working directory: %v\n", err)
		return 1
	}
	ws, err := newWorkspace(cfg, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}

	request, err := initialRequest(args, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: failed to read request: %v\n", err)
		return 1
	}

	term := ui.NewTerminal(os.Stdin, os.Stdout)
	spinner := ui.NewSpinner(term, "Thinking")
	renderer := ui.NewRenderer(term, spinner)
	prompter := ui.NewPrompter(term, spinner, stop)

	gate := permission.NewGate(cfg.Permission, prompter, unattended, logger)
	manager := toolmanager.NewToolManager(gate, cfg.Agent.MaxParallelTools, logger, createTools(cfg, ws, logger)...)

	events := make(chan workflow.Event, 64)
	go renderer.Run(ctx, events)

	agent := loop.NewLoop(collab, manager, ws.Memory, events, cfg.Agent.StepBudget, ws.Root, logger)
	sess := session.New(session.Dependencies{
		Runner:   agent,
		Input:    prompter,
		Output:   term,
		Rendered: renderer,
		Memory:   ws.Memory,
		Todos:    ws.Todos,
		Logger:   logger,
	}, unattended)

	logger.Info("session started",
		"root", ws.Root,
		"provider", cfg.Provider.Name,
		"model", collab.Model(),
		"unattended", unattended,
	)

	if err := sess.Run(ctx, request); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file and applies environment overrides.
func loadConfig(getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if name := getenv(envProvider); name != "" {
		cfg.Provider.Name = strings.ToLower(name)
	}
	if model := getenv(envModel); model != "" {
		cfg.Provider.Model = model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isUnattended reports whether prompts are bypassed and the session ends
// after one round.
func isUnattended(getenv func(string) string) bool {
	return truthy(getenv(envUnattended)) || truthy(getenv("CI")) || truthy(getenv("YOLO"))
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// initialRequest joins the trailing arguments, or reads piped stdin when
// there are none.
func initialRequest(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if f, ok := stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createProvider builds the configured collaborator. A missing credential is
// a startup fault.
func createProvider(ctx context.Context, cfg *config.Config, getenv func(string) string, logger *slog.Logger) (collaborator, error) {
	switch cfg.Provider.Name {
	case "anthropic":
		key := getenv(envAnthropic)
		if key == "" {
			return nil, fmt.Errorf("%s is required: %w", envAnthropic, provider.ErrMissingAPIKey)
		}
		p, err := anthropic.New(cfg.Provider, key, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gemini":
		key := getenv(envGemini)
		if key == "" {
			return nil, fmt.Errorf("%s is required: %w", envGemini, provider.ErrMissingAPIKey)
		}
		client, err := gemini.NewClientFromAPIKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.New(client, cfg.Provider, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

// newWorkspace canonicalises root and creates the shared services.
func newWorkspace(cfg *config.Config, root string) (*Workspace, error) {
	canonicalRoot, err := path.CanonicaliseRoot(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize workspace root: %w", err)
	}
	resolver := path.NewResolver(canonicalRoot)
	osFS := fs.NewOSFileSystem()
	return &Workspace{
		Root:     canonicalRoot,
		Resolver: resolver,
		FS:       osFS,
		Todos:    todo.NewInMemoryTodoStore(),
		Memory:   memory.NewStore(osFS, resolver, cfg.Agent.MemoryFile, cfg.Tools.MaxFileSize),
	}, nil
}

// createTools instantiates every tool with its dependencies.
func createTools(cfg *config.Config, ws *Workspace, logger *slog.Logger) []toolmanager.Tool {
	var matcher interface {
		ShouldIgnore(relativePath string, isDir bool) bool
	}
	m, err := git.NewIgnoreMatcher(ws.Root)
	if err != nil {
		logger.Warn("failed to load .gitignore, ignoring nothing", "error", err)
		matcher = &git.NoOpMatcher{}
	} else {
		matcher = m
	}

	commandExecutor := executor.NewOSCommandExecutor(cfg)

	return []toolmanager.Tool{
		file.NewReadFileTool(ws.FS, ws.Resolver, cfg),
		file.NewWriteFileTool(ws.FS, ws.Resolver, cfg),
		file.NewEditFileTool(ws.FS, ws.Resolver, cfg),
		directory.NewListTool(ws.FS, matcher, ws.Resolver, cfg),
		directory.NewGlobTool(ws.FS, matcher, ws.Resolver, cfg),
		search.NewGrepTool(ws.FS, matcher, ws.Resolver, cfg),
		shell.NewShellTool(commandExecutor, ws.Resolver, cfg),
		todo.NewReadTodosTool(ws.Todos, cfg),
		todo.NewWriteTodosTool(ws.Todos, cfg),
		memory.NewRememberTool(ws.Memory),
	}
}
