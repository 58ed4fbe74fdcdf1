package directory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/tool/paginationutil"
)

// GlobTool finds files by doublestar pattern.
type GlobTool struct {
	fs            dirLister
	ignoreMatcher ignoreMatcher
	pathResolver  pathResolver
	config        *config.Config
}

// NewGlobTool creates a new GlobTool with injected dependencies.
func NewGlobTool(fs dirLister, ignoreMatcher ignoreMatcher, pathResolver pathResolver, cfg *config.Config) *GlobTool {
	if fs == nil {
		panic("fs is required")
	}
	if ignoreMatcher == nil {
		panic("ignoreMatcher is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GlobTool{
		fs:            fs,
		ignoreMatcher: ignoreMatcher,
		pathResolver:  pathResolver,
		config:        cfg,
	}
}

func (t *GlobTool) Name() string {
	return "glob"
}

func (t *GlobTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "glob",
		Description: "Finds files matching a glob pattern such as '**/*.go'. Returns workspace-relative paths, sorted.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Glob pattern, relative to the search directory. Supports '**'."},
				"path":    {Type: tool.TypeString, Description: "Directory to search in (default: workspace root)"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GlobTool) Input() any {
	return &GlobRequest{}
}

// Execute walks the search directory and collects files whose path
// relative to it matches the pattern. Gitignored paths are skipped.
func (t *GlobTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GlobRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}

	searchPath := req.Path
	if searchPath == "" {
		searchPath = "."
	}
	searchRoot, err := t.pathResolver.Abs(searchPath)
	if err != nil {
		return tool.Failure(err), nil
	}

	info, err := t.fs.Stat(searchRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failuref("%v: %s", ErrFileMissing, searchPath), nil
		}
		return tool.Failure(&StatError{Path: searchPath, Cause: err}), nil
	}
	if !info.IsDir() {
		return tool.Failuref("%v: %s", ErrNotADirectory, searchPath), nil
	}

	var matches []string
	walkErr := filepath.WalkDir(searchRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == searchRoot {
			return nil
		}

		if d.IsDir() && d.Name() == ".git" {
			return fs.SkipDir
		}

		workspaceRel := t.pathResolver.Display(p)
		if t.ignoreMatcher.ShouldIgnore(workspaceRel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(searchRoot, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(req.Pattern, filepath.ToSlash(rel)); ok {
			matches = append(matches, workspaceRel)
		}
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		return tool.Failure(walkErr), nil
	}

	sort.Strings(matches)
	page, pagination := paginationutil.ApplyPagination(matches, 0, t.config.Tools.MaxGlobResults)
	if page == nil {
		page = []string{}
	}

	return tool.Success("files", page).
		With("truncated", pagination.Truncated).
		With("total_count", pagination.TotalCount), nil
}
