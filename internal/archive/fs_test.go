package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSProviderSavePage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	provider, err := NewFSProvider(dir)
	require.NoError(t, err)

	rawURL := "https://acme.test/news/trial-results"
	require.NoError(t, provider.SavePage(context.Background(), rawURL, []byte("<html>page</html>")))

	var found string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".html" {
			found = path
		}
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, found)

	body, err := os.ReadFile(found)
	require.NoError(t, err)
	assert.Equal(t, "<html>page</html>", string(body))
	assert.Contains(t, found, "acme.test")
}

func TestFSProviderCreatesBaseDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "archive")
	_, err := NewFSProvider(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFSProviderRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewFSProvider("   ")
	require.Error(t, err)
}

func TestObjectNameGroupsByHostAndDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	name := objectName("https://acme.test/news/one", now)
	assert.Contains(t, name, "acme.test/2026-03-14/")
	assert.Equal(t, ".html", filepath.Ext(name))

	// Same URL, same key; different URL, different key.
	assert.Equal(t, name, objectName("https://acme.test/news/one", now))
	assert.NotEqual(t, name, objectName("https://acme.test/news/two", now))
}
