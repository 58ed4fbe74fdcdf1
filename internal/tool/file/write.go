package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

const defaultFilePerm os.FileMode = 0o644

// WriteFileTool creates or overwrites files.
type WriteFileTool struct {
	fileOps      fileSystem
	pathResolver pathResolver
	config       *config.Config
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fileOps fileSystem, pathResolver pathResolver, cfg *config.Config) *WriteFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &WriteFileTool{fileOps: fileOps, pathResolver: pathResolver, config: cfg}
}

func (t *WriteFileTool) Name() string {
	return "file_write"
}

func (t *WriteFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_write",
		Description: "Creates or overwrites a file with the given content.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath": {Type: tool.TypeString, Description: "Path to the file"},
				"content":  {Type: tool.TypeString, Description: "Content to write"},
			},
			Required: []string{"filePath", "content"},
		},
	}
}

func (t *WriteFileTool) Input() any {
	return &WriteFileRequest{}
}

// Permission confines the path before the user is asked.
func (t *WriteFileTool) Permission(input any) (*permission.Request, error) {
	req, ok := input.(*WriteFileRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return nil, err
	}
	return &permission.Request{
		Class:     permission.ClassFileWrite,
		Operation: "writing " + t.pathResolver.Display(abs),
	}, nil
}

// Execute writes the content atomically, creating parent directories.
// An existing file keeps its permissions.
func (t *WriteFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteFileRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}

	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return tool.Failure(err), nil
	}

	perm := defaultFilePerm
	info, err := t.fileOps.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return tool.Failuref("%v: %s", ErrIsDirectory, req.FilePath), nil
	case err == nil:
		perm = info.Mode().Perm()
	case !os.IsNotExist(err):
		return tool.Failure(&StatError{Path: req.FilePath, Cause: err}), nil
	}

	if err := t.fileOps.EnsureDirs(filepath.Dir(abs)); err != nil {
		return tool.Failure(&WriteError{Path: req.FilePath, Cause: err}), nil
	}

	if err := t.fileOps.WriteFileAtomic(abs, []byte(req.Content), perm); err != nil {
		if ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		return tool.Failure(&WriteError{Path: req.FilePath, Cause: err}), nil
	}

	return tool.Success("message", "File written successfully").
		With("bytes_written", len(req.Content)), nil
}
