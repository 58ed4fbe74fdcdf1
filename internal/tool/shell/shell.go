package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/tool/service/executor"
)

// ShellTool executes commands on the local machine, in the workspace root.
type ShellTool struct {
	commandExecutor commandExecutor
	pathResolver    pathResolver
	config          *config.Config
}

// NewShellTool creates a new ShellTool with injected dependencies.
func NewShellTool(commandExecutor commandExecutor, pathResolver pathResolver, cfg *config.Config) *ShellTool {
	if commandExecutor == nil {
		panic("commandExecutor is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ShellTool{
		commandExecutor: commandExecutor,
		pathResolver:    pathResolver,
		config:          cfg,
	}
}

func (t *ShellTool) Name() string {
	return "bash"
}

func (t *ShellTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "bash",
		Description: "Executes a shell command in the workspace root and returns its combined output.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command":         {Type: tool.TypeString, Description: "The shell command to execute"},
				"timeout_seconds": {Type: tool.TypeInteger, Description: "Timeout in seconds (optional)"},
				"env_files": {
					Type:        tool.TypeArray,
					Description: "Paths to .env files to load before running (optional)",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
			},
			Required: []string{"command"},
		},
	}
}

func (t *ShellTool) Input() any {
	return &ShellRequest{}
}

// Permission rejects unsafe commands and env files outside the workspace
// before the user is asked.
func (t *ShellTool) Permission(input any) (*permission.Request, error) {
	req, ok := input.(*ShellRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	if err := t.precheck(req); err != nil {
		return nil, err
	}
	return &permission.Request{
		Class:     permission.ShellClass(req.Command),
		Operation: fmt.Sprintf("executing `%s`", req.Command),
	}, nil
}

func (t *ShellTool) precheck(req *ShellRequest) error {
	if err := req.Validate(t.config); err != nil {
		return err
	}
	if err := CheckCommandSafety(req.Command); err != nil {
		return err
	}
	for _, envFile := range req.EnvFiles {
		if _, err := t.pathResolver.Abs(envFile); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the command with a timeout. A non-zero exit is a failure
// carrying the exit code and output.
func (t *ShellTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ShellRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := t.precheck(req); err != nil {
		return tool.Failure(err), nil
	}

	env, err := t.buildEnv(req.EnvFiles)
	if err != nil {
		return tool.Failure(err), nil
	}

	timeoutSeconds := req.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = t.config.Tools.DefaultShellTimeout
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	result, execErr := t.commandExecutor.RunWithTimeout(ctx, []string{"sh", "-c", req.Command}, t.pathResolver.Root(), env, timeout)
	if result == nil {
		result = &executor.Result{ExitCode: -1}
	}
	output := result.Stdout + result.Stderr

	if execErr != nil {
		switch {
		case errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded):
			return tool.Result{}, execErr
		case errors.Is(execErr, executor.ErrTimeout):
			return tool.Failure(&TimeoutError{Duration: timeout}), nil
		case result.ExitCode > 0:
			return tool.Failuref("command exited with code %d\n%s", result.ExitCode, strings.TrimRight(output, "\n")), nil
		default:
			return tool.Failure(execErr), nil
		}
	}

	return tool.Success("output", output).
		With("exit_code", result.ExitCode).
		With("truncated", result.Truncated), nil
}

// buildEnv layers env files over the process environment. Later files win.
func (t *ShellTool) buildEnv(envFiles []string) ([]string, error) {
	env := os.Environ()
	if len(envFiles) == 0 {
		return env, nil
	}

	for _, envFile := range envFiles {
		abs, err := t.pathResolver.Abs(envFile)
		if err != nil {
			return nil, err
		}
		vars, err := godotenv.Read(abs)
		if err != nil {
			return nil, &EnvFileReadError{Path: envFile, Cause: err}
		}
		for k, v := range vars {
			env = append(env, k+"="+v)
		}
	}
	return env, nil
}
