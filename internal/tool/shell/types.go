package shell

import (
	"strings"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// MaxTimeoutSeconds bounds timeout_seconds so the duration cannot overflow.
const MaxTimeoutSeconds = 24 * 60 * 60

// ShellRequest runs one command line through sh -c.
type ShellRequest struct {
	Command        string   `json:"command"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	EnvFiles       []string `json:"env_files,omitempty"` // relative to the workspace root
}

func (r *ShellRequest) Validate(cfg *config.Config) error {
	if strings.TrimSpace(r.Command) == "" {
		return &CommandRequiredError{}
	}
	if r.TimeoutSeconds < 0 {
		return &NegativeTimeoutError{Value: r.TimeoutSeconds}
	}
	if r.TimeoutSeconds > MaxTimeoutSeconds {
		return &TimeoutTooLargeError{Value: r.TimeoutSeconds, Max: MaxTimeoutSeconds}
	}
	return nil
}
