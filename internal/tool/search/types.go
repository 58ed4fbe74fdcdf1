package search

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// GrepRequest represents the parameters for a grep operation.
type GrepRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`    // file or directory, default workspace root
	Include string `json:"include,omitempty"` // doublestar glob on the file path relative to Path
}

func (r *GrepRequest) Validate(cfg *config.Config) error {
	if r.Pattern == "" {
		return ErrPatternRequired
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		return &InvalidRegexError{Pattern: r.Pattern, Cause: err}
	}
	if r.Include != "" && !doublestar.ValidatePattern(r.Include) {
		return &InvalidIncludeError{Include: r.Include}
	}
	return nil
}
