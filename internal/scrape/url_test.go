package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURLRelative(t *testing.T) {
	t.Parallel()

	got, err := ResolveURL("https://www.astrazeneca.com", "/media-centre/press-releases/2026/results.html")
	require.NoError(t, err)
	assert.Equal(t, "https://www.astrazeneca.com/media-centre/press-releases/2026/results.html", got)
}

func TestResolveURLCanonicalizes(t *testing.T) {
	t.Parallel()

	got, err := ResolveURL("https://www.jnj.com", "HTTPS://WWW.JNJ.COM:443/media-center/press-releases/item#section")
	require.NoError(t, err)
	assert.Equal(t, "https://www.jnj.com/media-center/press-releases/item", got)
}

func TestResolveURLStripsDefaultHTTPPort(t *testing.T) {
	t.Parallel()

	got, err := ResolveURL("http://example.com", "http://example.com:80/news")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/news", got)
}

func TestResolveURLEmptyHref(t *testing.T) {
	t.Parallel()

	_, err := ResolveURL("https://example.com", "   ")
	require.Error(t, err)
}

func TestResolveURLSameInputSameKey(t *testing.T) {
	t.Parallel()

	a, err := ResolveURL("https://www.pfizer.com", "/newsroom/press-release/detail")
	require.NoError(t, err)
	b, err := ResolveURL("https://www.pfizer.com/newsroom/press-releases", "https://www.pfizer.com/newsroom/press-release/detail")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
