package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeScene(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func waitForWidth(t *testing.T, p *Provider, want float64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_, bounds := p.Snapshot()
		if bounds.Max[0] == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	_, bounds := p.Snapshot()
	t.Fatalf("snapshot width = %v, want %v", bounds.Max[0], want)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeScene(t, path, "world:\n  width: 400\n  height: 300\n")

	provider := NewProvider()
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, provider.SetDocument(doc))

	w, err := NewWatcher(path, provider, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	writeScene(t, path, "world:\n  width: 640\n  height: 480\n")
	waitForWidth(t, provider, 640)
}

func TestWatcherKeepsSnapshotOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeScene(t, path, "world:\n  width: 400\n  height: 300\n")

	provider := NewProvider()
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, provider.SetDocument(doc))

	w, err := NewWatcher(path, provider, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	writeScene(t, path, "world:\n  width: -5\n  height: 300\n")

	// Give the debounce time to fire, then confirm the old snapshot held.
	time.Sleep(400 * time.Millisecond)
	_, bounds := provider.Snapshot()
	require.Equal(t, 400.0, bounds.Max[0])
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeScene(t, path, "world:\n  width: 400\n  height: 300\n")

	provider := NewProvider()
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, provider.SetDocument(doc))

	w, err := NewWatcher(path, provider, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	writeScene(t, filepath.Join(dir, "notes.yaml"), "world:\n  width: 999\n  height: 1\n")

	time.Sleep(300 * time.Millisecond)
	_, bounds := provider.Snapshot()
	require.Equal(t, 400.0, bounds.Max[0])
}
