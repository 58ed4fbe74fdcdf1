package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Agent      AgentConfig      `json:"agent" yaml:"agent"`
	Provider   ProviderConfig   `json:"provider" yaml:"provider"`
	Tools      ToolsConfig      `json:"tools" yaml:"tools"`
	Permission PermissionConfig `json:"permission" yaml:"permission"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type AgentConfig struct {
	StepBudget       int    `json:"step_budget" yaml:"step_budget"`               // Default: 25
	MaxParallelTools int    `json:"max_parallel_tools" yaml:"max_parallel_tools"` // Default: 8
	MemoryFile       string `json:"memory_file" yaml:"memory_file"`               // Default: .kestrel/memory.md (relative to the sandbox root)
}

type ProviderConfig struct {
	Name              string `json:"name" yaml:"name"`   // "anthropic" or "gemini"
	Model             string `json:"model" yaml:"model"` // Empty selects the provider default
	MaxTokens         int    `json:"max_tokens" yaml:"max_tokens"`
	RequestsPerMinute int    `json:"requests_per_minute" yaml:"requests_per_minute"`
	MaxRetries        int    `json:"max_retries" yaml:"max_retries"`
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize       int64 `json:"max_file_size" yaml:"max_file_size"`                 // Default: 20MB
	EditFailOnNoMatch bool  `json:"edit_fail_on_no_match" yaml:"edit_fail_on_no_match"` // Default: false

	// Command Execution
	MaxCommandOutputSize int64 `json:"max_command_output_size" yaml:"max_command_output_size"` // Default: 1MB
	DefaultShellTimeout  int   `json:"default_shell_timeout" yaml:"default_shell_timeout"`     // Default: 600 (seconds)
	GracefulShutdownMs   int   `json:"graceful_shutdown_ms" yaml:"graceful_shutdown_ms"`       // Default: 2000

	// Listing & Search
	MaxListEntries int `json:"max_list_entries" yaml:"max_list_entries"` // Default: 1000
	MaxGlobResults int `json:"max_glob_results" yaml:"max_glob_results"` // Default: 1000
	MaxGrepMatches int `json:"max_grep_matches" yaml:"max_grep_matches"` // Default: 500
	MaxLineLength  int `json:"max_line_length" yaml:"max_line_length"`   // Default: 2000
}

// PermissionConfig holds static shell rules. Runtime grants are never written back here.
type PermissionConfig struct {
	ShellAllow []string `json:"shell_allow" yaml:"shell_allow"`
	ShellDeny  []string `json:"shell_deny" yaml:"shell_deny"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	File   string `json:"file" yaml:"file"`     // Empty disables the file sink
	Stderr bool   `json:"stderr" yaml:"stderr"` // Mirror records to stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			StepBudget:       25,
			MaxParallelTools: 8,
			MemoryFile:       ".kestrel/memory.md",
		},
		Provider: ProviderConfig{
			Name:              "anthropic",
			MaxTokens:         8192,
			RequestsPerMinute: 50,
			MaxRetries:        2,
		},
		Tools: ToolsConfig{
			MaxFileSize:          20 * 1024 * 1024,
			MaxCommandOutputSize: 1024 * 1024,
			DefaultShellTimeout:  600,
			GracefulShutdownMs:   2000,
			MaxListEntries:       1000,
			MaxGlobResults:       1000,
			MaxGrepMatches:       500,
			MaxLineLength:        2000,
		},
		Permission: PermissionConfig{
			ShellAllow: []string{},
			ShellDeny:  []string{},
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.cache/kestrel/kestrel.log",
		},
	}
}
