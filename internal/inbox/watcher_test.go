package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/metrics"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

func writeDeckFile(t *testing.T, dir, name, title string) string {
	t.Helper()
	path, err := export.ExportDecks([]models.Deck{{ID: title, Title: title, Cards: []models.Card{
		{ID: "c", Front: "q", Back: "a"},
	}}}, filepath.Join(dir, name), export.DeckOptions{})
	require.NoError(t, err)
	return path
}

func newTestWatcher(t *testing.T) (*Watcher, *decks.Repository) {
	t.Helper()
	repo := decks.NewRepository()
	w := New(t.TempDir(), export.NewImporter(repo, nil),
		WithDebounce(20*time.Millisecond),
		WithMinInterval(time.Millisecond))
	return w, repo
}

func TestProcessFile_MovesToProcessed(t *testing.T) {
	w, repo := newTestWatcher(t)
	path := writeDeckFile(t, w.Dir(), "a.json", "Alpha")

	result, err := w.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DecksAdded)
	assert.Len(t, repo.Decks(), 1)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(w.Dir(), ProcessedDir, "a.json"))
}

func TestProcessFile_MovesInvalidToFailed(t *testing.T) {
	w, repo := newTestWatcher(t)
	path := filepath.Join(w.Dir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := w.ProcessFile(context.Background(), path)
	require.Error(t, err)
	assert.Empty(t, repo.Decks())
	assert.FileExists(t, filepath.Join(w.Dir(), FailedDir, "broken.json"))
}

func TestProcessFile_RecordsMetrics(t *testing.T) {
	repo := decks.NewRepository()
	collector := metrics.NewCollector()
	w := New(t.TempDir(), export.NewImporter(repo, nil), WithMetrics(collector))

	_, err := w.ProcessFile(context.Background(), writeDeckFile(t, w.Dir(), "a.json", "Alpha"))
	require.NoError(t, err)
	bad := filepath.Join(w.Dir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[]x"), 0o600))
	_, err = w.ProcessFile(context.Background(), bad)
	require.Error(t, err)

	stats := collector.GetStats()
	assert.Equal(t, uint64(1), stats.FilesImported)
	assert.Equal(t, uint64(1), stats.ImportFailures)
	assert.Equal(t, 2, stats.ImportLatency.Count)
}

func TestProcessFile_NameCollision(t *testing.T) {
	w, _ := newTestWatcher(t)
	ctx := context.Background()

	first := writeDeckFile(t, w.Dir(), "same.json", "One")
	_, err := w.ProcessFile(ctx, first)
	require.NoError(t, err)

	second := writeDeckFile(t, w.Dir(), "same.json", "Two")
	_, err = w.ProcessFile(ctx, second)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(w.Dir(), ProcessedDir))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestScan_ImportsExistingFiles(t *testing.T) {
	w, repo := newTestWatcher(t)
	writeDeckFile(t, w.Dir(), "1.json", "First")
	writeDeckFile(t, w.Dir(), "2.json", "Second")
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir(), "notes.txt"), []byte("ignore"), 0o600))

	n, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	decks := repo.Decks()
	require.Len(t, decks, 2)
	assert.Equal(t, "First", decks[0].Title)
	assert.Equal(t, "Second", decks[1].Title)
	assert.FileExists(t, filepath.Join(w.Dir(), "notes.txt"))
}

func TestDueWaitsForDebounce(t *testing.T) {
	w, _ := newTestWatcher(t)
	path := writeDeckFile(t, w.Dir(), "x.json", "X")
	now := time.Now()

	w.touch(path, now)
	assert.Empty(t, w.due(now.Add(5*time.Millisecond)))
	assert.Equal(t, []string{path}, w.due(now.Add(25*time.Millisecond)))
	assert.Empty(t, w.due(now.Add(time.Second)), "a file is handed out once")

	w.touch(filepath.Join(w.Dir(), "gone.json"), now)
	assert.Empty(t, w.due(now.Add(time.Second)), "deleted files are dropped")
}

func TestIsDeckFile(t *testing.T) {
	assert.True(t, isDeckFile("a.json"))
	assert.True(t, isDeckFile("A.JSON"))
	assert.True(t, isDeckFile("b.fdenc"))
	assert.False(t, isDeckFile("c.txt"))
	assert.False(t, isDeckFile("json"))
}

func TestStart_ImportsDroppedFile(t *testing.T) {
	w, repo := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	writeDeckFile(t, w.Dir(), "dropped.json", "Dropped")

	require.Eventually(t, func() bool {
		return len(repo.Decks()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	w.Stop()
	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStart_TinyDebounce(t *testing.T) {
	repo := decks.NewRepository()
	w := New(t.TempDir(), export.NewImporter(repo, nil),
		WithDebounce(time.Nanosecond),
		WithMinInterval(time.Millisecond))
	writeDeckFile(t, w.Dir(), "quick.json", "Quick")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(repo.Decks()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
