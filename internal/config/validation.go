package config

import (
	"fmt"
	"slices"
	"strings"
)

var validProviders = []string{"anthropic", "gemini"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Agent
	if c.Agent.StepBudget < 1 {
		errs = append(errs, "agent.step_budget must be >= 1")
	}
	if c.Agent.MaxParallelTools < 1 {
		errs = append(errs, "agent.max_parallel_tools must be >= 1")
	}

	// Provider
	if !slices.Contains(validProviders, c.Provider.Name) {
		errs = append(errs, fmt.Sprintf("provider.name must be one of %v", validProviders))
	}
	if c.Provider.MaxTokens < 1 {
		errs = append(errs, "provider.max_tokens must be >= 1")
	}
	if c.Provider.RequestsPerMinute < 1 {
		errs = append(errs, "provider.requests_per_minute must be >= 1")
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, "provider.max_retries must be >= 0")
	}

	// Tools
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.DefaultShellTimeout < 1 {
		errs = append(errs, "tools.default_shell_timeout must be >= 1")
	}
	if c.Tools.GracefulShutdownMs < 1 {
		errs = append(errs, "tools.graceful_shutdown_ms must be >= 1")
	}
	if c.Tools.MaxListEntries < 1 {
		errs = append(errs, "tools.max_list_entries must be >= 1")
	}
	if c.Tools.MaxGlobResults < 1 {
		errs = append(errs, "tools.max_glob_results must be >= 1")
	}
	if c.Tools.MaxGrepMatches < 1 {
		errs = append(errs, "tools.max_grep_matches must be >= 1")
	}
	if c.Tools.MaxLineLength < 1 {
		errs = append(errs, "tools.max_line_length must be >= 1")
	}

	// Permission: a command cannot be both allowed and denied
	for _, name := range c.Permission.ShellAllow {
		if slices.Contains(c.Permission.ShellDeny, name) {
			errs = append(errs, fmt.Sprintf("permission: %q is in both shell_allow and shell_deny", name))
		}
	}

	// Log
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Sprintf("log.level must be one of %v", validLogLevels))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
