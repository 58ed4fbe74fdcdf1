package path

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAbs(t *testing.T) {
	workspaceRoot := "/workspace"
	resolver := NewResolver(workspaceRoot)

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{
			name:     "relative path within workspace",
			input:    "src/main.go",
			expected: "/workspace/src/main.go",
			err:      nil,
		},
		{
			name:     "absolute path within workspace",
			input:    "/workspace/src/main.go",
			expected: "/workspace/src/main.go",
			err:      nil,
		},
		{
			name:     "path with dots within workspace",
			input:    "src/../src/main.go",
			expected: "/workspace/src/main.go",
			err:      nil,
		},
		{
			name:     "workspace root",
			input:    ".",
			expected: "/workspace",
			err:      nil,
		},
		{
			name:     "absolute workspace root",
			input:    "/workspace",
			expected: "/workspace",
			err:      nil,
		},
		{
			name:     "escape attempt via parent dots",
			input:    "../../../etc/passwd",
			expected: "",
			err:      ErrOutsideWorkspace,
		},
		{
			name:     "absolute path outside workspace",
			input:    "/etc/passwd",
			expected: "",
			err:      ErrOutsideWorkspace,
		},
		{
			name:     "prefix match but not child",
			input:    "/workspacefoo/bar",
			expected: "",
			err:      ErrOutsideWorkspace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := resolver.Abs(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if abs != tt.expected {
				t.Errorf("expected abs %q, got %q", tt.expected, abs)
			}
		})
	}
}

func TestRel(t *testing.T) {
	workspaceRoot := "/workspace"
	resolver := NewResolver(workspaceRoot)

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{
			name:     "relative path within workspace",
			input:    "src/main.go",
			expected: "src/main.go",
			err:      nil,
		},
		{
			name:     "absolute path within workspace",
			input:    "/workspace/src/main.go",
			expected: "src/main.go",
			err:      nil,
		},
		{
			name:     "workspace root",
			input:    "/workspace",
			expected: "",
			err:      nil,
		},
		{
			name:     "escape attempt",
			input:    "/etc/passwd",
			expected: "",
			err:      ErrOutsideWorkspace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := resolver.Rel(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if rel != tt.expected {
				t.Errorf("expected rel %q, got %q", tt.expected, rel)
			}
		})
	}
}

func TestCanonicaliseRoot(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "pathutil-test")
	if err != nil {
		t.Fatalf("failed to create tmp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	resolvedTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve tmp dir: %v", err)
	}

	t.Run("valid directory", func(t *testing.T) {
		got, err := CanonicaliseRoot(resolvedTmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != resolvedTmpDir {
			t.Errorf("expected %q, got %q", resolvedTmpDir, got)
		}
	})

	t.Run("non-existent path", func(t *testing.T) {
		_, err := CanonicaliseRoot(filepath.Join(resolvedTmpDir, "non-existent"))
		if err == nil {
			t.Fatal("expected error for non-existent path")
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		tmpFile := filepath.Join(resolvedTmpDir, "file.txt")
		if err := os.WriteFile(tmpFile, []byte("test"), 0o644); err != nil {
			t.Fatalf("failed to create tmp file: %v", err)
		}
		_, err := CanonicaliseRoot(tmpFile)
		if err == nil {
			t.Fatal("expected error for file instead of directory")
		}
	})
}

func canonicalTemp(t *testing.T) string {
	t.Helper()
	root, err := CanonicaliseRoot(t.TempDir())
	if err != nil {
		t.Fatalf("canonicalise temp dir: %v", err)
	}
	return root
}

func TestAbs_Symlinks(t *testing.T) {
	root := canonicalTemp(t)
	outside := canonicalTemp(t)

	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "alias")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(root)

	t.Run("link escaping the root is denied", func(t *testing.T) {
		_, err := resolver.Abs("escape/secret.txt")
		if !errors.Is(err, ErrOutsideWorkspace) {
			t.Fatalf("expected ErrOutsideWorkspace, got %v", err)
		}
		var denied *AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("expected AccessDeniedError, got %T", err)
		}
		if !strings.Contains(err.Error(), "access denied") {
			t.Errorf("message should say access denied: %q", err.Error())
		}
	})

	t.Run("link inside the root resolves to its target", func(t *testing.T) {
		got, err := resolver.Abs("alias/new/file.go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(root, "src", "new", "file.go")
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("dangling link is denied", func(t *testing.T) {
		_, err := resolver.Abs("dangling")
		if !errors.Is(err, ErrOutsideWorkspace) {
			t.Fatalf("expected ErrOutsideWorkspace, got %v", err)
		}
	})

	t.Run("non-existent path inside root is allowed", func(t *testing.T) {
		got, err := resolver.Abs("a/b/c.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != filepath.Join(root, "a", "b", "c.txt") {
			t.Errorf("unexpected path %q", got)
		}
	})
}

func TestAbs_RootNotSet(t *testing.T) {
	_, err := NewResolver("").Abs("x")
	if !errors.Is(err, ErrWorkspaceRootNotSet) {
		t.Fatalf("expected ErrWorkspaceRootNotSet, got %v", err)
	}
}

func TestDisplay(t *testing.T) {
	resolver := NewResolver("/workspace")
	if got := resolver.Display("/workspace/src/main.go"); got != "src/main.go" {
		t.Errorf("expected src/main.go, got %q", got)
	}
	if got := resolver.Display("/workspace"); got != "." {
		t.Errorf("expected ., got %q", got)
	}
	if got := resolver.Root(); got != "/workspace" {
		t.Errorf("expected /workspace, got %q", got)
	}
}
