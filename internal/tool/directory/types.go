package directory

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// ListRequest lists the immediate children of one directory.
type ListRequest struct {
	DirPath        string `json:"dirPath"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
}

func (r *ListRequest) Validate(cfg *config.Config) error {
	if r.DirPath == "" {
		return ErrPathRequired
	}
	return nil
}

// GlobRequest matches files under Path (default: the workspace root).
type GlobRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

func (r *GlobRequest) Validate(cfg *config.Config) error {
	if r.Pattern == "" {
		return ErrPatternRequired
	}
	if strings.Contains(r.Pattern, "..") || strings.HasPrefix(r.Pattern, "/") || filepath.IsAbs(r.Pattern) {
		return &PatternEscapeError{Pattern: r.Pattern}
	}
	if !doublestar.ValidatePattern(r.Pattern) {
		return &InvalidPatternError{Pattern: r.Pattern}
	}
	return nil
}
