package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/kestrel/internal/tool/service/fs"
	"github.com/Cyclone1070/kestrel/internal/tool/service/path"
)

func newStore(t *testing.T, rel string) (*Store, string) {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	s := NewStore(fs.NewOSFileSystem(), path.NewResolver(root), rel, 1024*1024)
	clock := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s, root
}

func TestStore_ReadMissingIsEmpty(t *testing.T) {
	s, _ := newStore(t, ".kestrel/memory.md")

	got, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_AppendOnly(t *testing.T) {
	s, root := newStore(t, ".kestrel/memory.md")

	require.NoError(t, s.Append("uses go 1.25"))
	require.NoError(t, s.Append("  prefers table tests \n"))

	want := "## 2026-03-01T09:31:00Z\n\nuses go 1.25\n\n" +
		"## 2026-03-01T09:32:00Z\n\nprefers table tests\n\n"

	got, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	onDisk, err := os.ReadFile(filepath.Join(root, ".kestrel", "memory.md"))
	require.NoError(t, err)
	assert.Equal(t, want, string(onDisk))
}

func TestStore_EmptyNoteRejected(t *testing.T) {
	s, _ := newStore(t, "memory.md")
	assert.ErrorIs(t, s.Append("   "), ErrEmptyNote)
}

func TestStore_OutsideWorkspace(t *testing.T) {
	s, _ := newStore(t, "../escape.md")

	assert.ErrorIs(t, s.Append("x"), path.ErrOutsideWorkspace)
	_, err := s.Read()
	assert.ErrorIs(t, err, path.ErrOutsideWorkspace)
}

func TestRememberTool(t *testing.T) {
	s, _ := newStore(t, ".kestrel/memory.md")
	rt := NewRememberTool(s)

	res, err := rt.Execute(context.Background(), &RememberRequest{Note: "run make lint before commits"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Saved to .kestrel/memory.md", res.PrimaryValue())

	notes, err := s.Read()
	require.NoError(t, err)
	assert.Contains(t, notes, "run make lint before commits")

	res, err = rt.Execute(context.Background(), &RememberRequest{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrEmptyNote.Error(), res.Error)
}
