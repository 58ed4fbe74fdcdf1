package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

const noMatchMessage = "no match found for search string; file left unchanged"

// EditFileTool handles file editing operations.
type EditFileTool struct {
	fileOps      fileSystem
	pathResolver pathResolver
	config       *config.Config
}

// NewEditFileTool creates a new EditFileTool with injected dependencies.
func NewEditFileTool(fileOps fileSystem, pathResolver pathResolver, cfg *config.Config) *EditFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &EditFileTool{fileOps: fileOps, pathResolver: pathResolver, config: cfg}
}

func (t *EditFileTool) Name() string {
	return "file_edit"
}

func (t *EditFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_edit",
		Description: "Makes a targeted edit to a file by replacing the first occurrence of a literal string.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath": {Type: tool.TypeString, Description: "Path to the file"},
				"search":   {Type: tool.TypeString, Description: "String to replace"},
				"replace":  {Type: tool.TypeString, Description: "Replacement string"},
			},
			Required: []string{"filePath", "search", "replace"},
		},
	}
}

func (t *EditFileTool) Input() any {
	return &EditFileRequest{}
}

// Permission confines the path before the user is asked.
func (t *EditFileTool) Permission(input any) (*permission.Request, error) {
	req, ok := input.(*EditFileRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return nil, err
	}
	return &permission.Request{
		Class:     permission.ClassFileEdit,
		Operation: "editing " + t.pathResolver.Display(abs),
	}, nil
}

// Execute replaces the first literal occurrence of the search string.
// Line endings and file permissions are preserved and the file is written atomically.
// When nothing matches the file is not rewritten.
func (t *EditFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*EditFileRequest)
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

	data, err := t.fileOps.ReadFile(abs, t.config.Tools.MaxFileSize)
	if err != nil {
		return tool.Failure(err), nil
	}

	rawContent := string(data)

	// Files that are CRLF throughout are matched on \n-normalized text and
	// converted back. Anything else, mixed endings included, is spliced as is.
	crlf := isCRLFOnly(rawContent)
	oldContent, search, replace := rawContent, req.Search, req.Replace
	if crlf {
		oldContent = strings.ReplaceAll(rawContent, "\r\n", "\n")
		search = strings.ReplaceAll(search, "\r\n", "\n")
		replace = strings.ReplaceAll(replace, "\r\n", "\n")
	}

	if !strings.Contains(oldContent, search) {
		if t.config.Tools.EditFailOnNoMatch {
			return tool.Failuref("%s: %s", noMatchMessage, req.FilePath), nil
		}
		return tool.Success("message", noMatchMessage).With("matched", false), nil
	}

	content := strings.Replace(oldContent, search, replace, 1)

	finalContent := content
	if crlf {
		finalContent = strings.ReplaceAll(content, "\n", "\r\n")
	}

	newContentBytes := []byte(finalContent)

	maxFileSize := t.config.Tools.MaxFileSize
	if int64(len(newContentBytes)) > maxFileSize {
		return tool.Failuref("file too large after edit: %s (size %d, limit %d)", req.FilePath, len(newContentBytes), maxFileSize), nil
	}

	if err := t.fileOps.WriteFileAtomic(abs, newContentBytes, info.Mode().Perm()); err != nil {
		if ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		return tool.Failure(&WriteError{Path: req.FilePath, Cause: err}), nil
	}

	diff, added, removed := computeUnifiedDiff(filepath.Base(abs), oldContent, content)

	return tool.Success("message", "File edited successfully").
		With("matched", true).
		With("diff", diff).
		With("added_lines", added).
		With("removed_lines", removed), nil
}

// isCRLFOnly reports whether s has line breaks and every one of them is \r\n.
func isCRLFOnly(s string) bool {
	lf := strings.Count(s, "\n")
	return lf > 0 && strings.Count(s, "\r\n") == lf
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
