package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForBatch(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-ch:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return nil
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tour.md")
	other := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(src, []byte("# A\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("# B\n"), 0o644))

	batches := make(chan []string, 4)
	w, err := New([]string{src}, func(paths []string) { batches <- paths }, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("# B2\n"), 0o644))
	require.NoError(t, os.WriteFile(src, []byte("# A2\n"), 0o644))

	got := waitForBatch(t, batches)
	abs, _ := filepath.Abs(src)
	assert.Equal(t, []string{abs}, got)
}

func TestWatchDirectoryDebounces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(src, []byte("# A\n"), 0o644))

	batches := make(chan []string, 4)
	w, err := New([]string{dir}, func(paths []string) { batches <- paths }, 100*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(src, []byte("# A again\n"), 0o644))
	}

	got := waitForBatch(t, batches)
	abs, _ := filepath.Abs(src)
	assert.Equal(t, []string{abs}, got)
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, nil, 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewMissingTarget(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing.md")}, nil, 0, nil)
	assert.Error(t, err)
}
