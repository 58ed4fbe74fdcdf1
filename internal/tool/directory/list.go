package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// ListTool handles directory listing operations.
type ListTool struct {
	fs            dirLister
	ignoreMatcher ignoreMatcher
	pathResolver  pathResolver
	config        *config.Config
}

// NewListTool creates a new ListTool with injected dependencies.
func NewListTool(fs dirLister, ignoreMatcher ignoreMatcher, pathResolver pathResolver, cfg *config.Config) *ListTool {
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
	return &ListTool{
		fs:            fs,
		ignoreMatcher: ignoreMatcher,
		pathResolver:  pathResolver,
		config:        cfg,
	}
}

func (t *ListTool) Name() string {
	return "ls"
}

func (t *ListTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "ls",
		Description: "Lists the immediate children of a directory. Directories come first and end with '/'.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"dirPath":         {Type: tool.TypeString, Description: "Directory to list, relative to the workspace root ('.' for the root)"},
				"include_ignored": {Type: tool.TypeBoolean, Description: "Include gitignored entries"},
			},
			Required: []string{"dirPath"},
		},
	}
}

func (t *ListTool) Input() any {
	return &ListRequest{}
}

// Execute lists one directory level, sorted with directories first.
func (t *ListTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ListRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}

	abs, err := t.pathResolver.Abs(req.DirPath)
	if err != nil {
		return tool.Failure(err), nil
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failuref("%v: %s", ErrFileMissing, req.DirPath), nil
		}
		return tool.Failure(&StatError{Path: req.DirPath, Cause: err}), nil
	}
	if !info.IsDir() {
		return tool.Failuref("%v: %s", ErrNotADirectory, req.DirPath), nil
	}

	entries, err := t.fs.ListDir(abs)
	if err != nil {
		return tool.Failure(&ListDirError{Path: req.DirPath, Cause: err}), nil
	}
	if err := ctx.Err(); err != nil {
		return tool.Result{}, err
	}

	var dirs, files []string
	for _, entry := range entries {
		isDir := entry.IsDir()
		// Symlinked directories list as directories
		if entry.Type()&os.ModeSymlink != 0 {
			if target, err := t.fs.Stat(filepath.Join(abs, entry.Name())); err == nil {
				isDir = target.IsDir()
			}
		}

		rel := t.pathResolver.Display(filepath.Join(abs, entry.Name()))
		if !req.IncludeIgnored && t.ignoreMatcher.ShouldIgnore(rel, isDir) {
			continue
		}

		if isDir {
			dirs = append(dirs, entry.Name()+"/")
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	items := append(dirs, files...)
	truncated := false
	if maxEntries := t.config.Tools.MaxListEntries; len(items) > maxEntries {
		items = items[:maxEntries]
		truncated = true
	}
	if items == nil {
		items = []string{}
	}

	return tool.Success("items", items).With("truncated", truncated), nil
}
