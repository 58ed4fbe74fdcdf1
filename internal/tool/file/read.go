package file

import (
	"context"
	"fmt"
	"os"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/tool/helper/content"
)

// ReadFileTool reads a whole text file from the workspace.
type ReadFileTool struct {
	fileOps      fileSystem
	pathResolver pathResolver
	config       *config.Config
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fileOps fileSystem, pathResolver pathResolver, cfg *config.Config) *ReadFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReadFileTool{fileOps: fileOps, pathResolver: pathResolver, config: cfg}
}

func (t *ReadFileTool) Name() string {
	return "file_read"
}

func (t *ReadFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_read",
		Description: "Reads the contents of a file in the workspace.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath": {Type: tool.TypeString, Description: "Path to the file, relative to the workspace root"},
			},
			Required: []string{"filePath"},
		},
	}
}

func (t *ReadFileTool) Input() any {
	return &ReadFileRequest{}
}

// Execute reads the file. Directories, binary files and files over the
// size limit are rejected.
func (t *ReadFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadFileRequest)
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

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failuref("%v: %s", ErrFileMissing, req.FilePath), nil
		}
		return tool.Failure(&StatError{Path: req.FilePath, Cause: err}), nil
	}
	if info.IsDir() {
		return tool.Failuref("%v: %s", ErrIsDirectory, req.FilePath), nil
	}

	maxFileSize := t.config.Tools.MaxFileSize
	if info.Size() > maxFileSize {
		return tool.Failuref("%v: %s (%d bytes, limit %d)", ErrFileTooLarge, req.FilePath, info.Size(), maxFileSize), nil
	}

	data, err := t.fileOps.ReadFile(abs, maxFileSize)
	if err != nil {
		return tool.Failure(err), nil
	}

	if content.IsBinaryContent(data) {
		return tool.Failuref("%v: %s", ErrBinaryFile, req.FilePath), nil
	}

	return tool.Success("content", string(data)).With("size", len(data)), nil
}
