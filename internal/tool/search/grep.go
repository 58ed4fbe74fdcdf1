package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Cyclone1070/kestrel/internal/config"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/tool/helper/content"
)

const truncatedSuffix = "...[truncated]"

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	fs            fileSystem
	ignoreMatcher ignoreMatcher
	pathResolver  pathResolver
	config        *config.Config
}

// NewGrepTool creates a new GrepTool with injected dependencies.
func NewGrepTool(fs fileSystem, ignoreMatcher ignoreMatcher, pathResolver pathResolver, cfg *config.Config) *GrepTool {
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
	return &GrepTool{
		fs:            fs,
		ignoreMatcher: ignoreMatcher,
		pathResolver:  pathResolver,
		config:        cfg,
	}
}

func (t *GrepTool) Name() string {
	return "grep"
}

func (t *GrepTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "grep",
		Description: "Searches file contents with a Go regular expression. Returns matches as 'path:line: text'.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Regular expression (RE2 syntax)"},
				"path":    {Type: tool.TypeString, Description: "File or directory to search (default: workspace root)"},
				"include": {Type: tool.TypeString, Description: "Only search files matching this glob, e.g. '**/*.go'"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GrepTool) Input() any {
	return &GrepRequest{}
}

// Execute searches a single file or walks a directory, skipping gitignored
// paths and binary files. Matches are sorted by file then line.
func (t *GrepTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GrepRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(t.config); err != nil {
		return tool.Failure(err), nil
	}
	re := regexp.MustCompile(req.Pattern)

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

	s := &scan{
		re:       re,
		maxLine:  t.config.Tools.MaxLineLength,
		maxMatch: t.config.Tools.MaxGrepMatches,
		maxSize:  t.config.Tools.MaxFileSize,
		fs:       t.fs,
		matches:  []string{},
	}

	if !info.IsDir() {
		s.searchFile(searchRoot, t.pathResolver.Display(searchRoot))
	} else {
		err = t.walk(ctx, searchRoot, req.Include, s)
		if err != nil && ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		if err != nil && !errors.Is(err, errMatchLimit) {
			return tool.Failure(err), nil
		}
	}

	return tool.Success("matches", s.matches).With("truncated", s.truncated), nil
}

var errMatchLimit = errors.New("match limit reached")

func (t *GrepTool) walk(ctx context.Context, searchRoot, include string, s *scan) error {
	var files []string
	err := filepath.WalkDir(searchRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
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
		if t.ignoreMatcher.ShouldIgnore(t.pathResolver.Display(p), d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if include != "" {
			rel, err := filepath.Rel(searchRoot, p)
			if err != nil {
				return nil
			}
			if ok, _ := doublestar.Match(include, filepath.ToSlash(rel)); !ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return err
	}

	// WalkDir visits in lexical order per directory; sort the whole set by display path
	sort.Slice(files, func(i, j int) bool {
		return t.pathResolver.Display(files[i]) < t.pathResolver.Display(files[j])
	})
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.searchFile(f, t.pathResolver.Display(f)) {
			return errMatchLimit
		}
	}
	return nil
}

// scan accumulates formatted matches up to a limit.
type scan struct {
	re        *regexp.Regexp
	maxLine   int
	maxMatch  int
	maxSize   int64
	fs        fileSystem
	matches   []string
	truncated bool
}

// searchFile appends the matches of one file. It returns false once the
// match limit is hit.
func (s *scan) searchFile(abs, display string) bool {
	data, err := s.fs.ReadFile(abs, s.maxSize)
	if err != nil || content.IsBinaryContent(data) {
		return true
	}

	for i, line := range content.SplitLines(string(data)) {
		if !s.re.MatchString(line) {
			continue
		}
		if len(s.matches) >= s.maxMatch {
			s.truncated = true
			return false
		}
		if len(line) > s.maxLine {
			line = line[:s.maxLine] + truncatedSuffix
		}
		s.matches = append(s.matches, fmt.Sprintf("%s:%d: %s", display, i+1, line))
	}
	return true
}
