package shell

import (
	"context"
	"time"

	"github.com/Cyclone1070/kestrel/internal/tool/service/executor"
)

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Root() string
}

// commandExecutor defines the interface for executing shell commands.
type commandExecutor interface {
	RunWithTimeout(ctx context.Context, cmd []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}
