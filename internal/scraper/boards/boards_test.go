package boards

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogWellFormed(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	seen := make(map[string]bool)
	for _, b := range all {
		assert.NotEmpty(t, b.ID)
		assert.NotEmpty(t, b.Region)
		assert.False(t, seen[b.ID], "duplicate board id %s", b.ID)
		seen[b.ID] = true

		if b.Supported() {
			assert.Positive(t, b.Timeout, "board %s needs a timeout", b.ID)
		}
	}
}

func TestSearchURLEscaping(t *testing.T) {
	for _, b := range All() {
		raw := b.SearchURL("machine learning engineer", "Zurich, Switzerland")
		require.NotEmpty(t, raw, "board %s", b.ID)

		parsed, err := url.Parse(raw)
		require.NoError(t, err, "board %s produced unparseable URL %q", b.ID, raw)
		assert.Equal(t, "https", parsed.Scheme)
		assert.NotContains(t, raw, " ", "board %s left unescaped spaces", b.ID)
	}
}

func TestPageURL(t *testing.T) {
	b, ok := Get("swissdevjobs")
	require.True(t, ok)
	require.True(t, b.Paginated)

	base := b.SearchURL("golang", "")
	assert.Equal(t, base, b.PageURL(base, 1))
	assert.Contains(t, b.PageURL(base, 3), "page=3")

	unpaginated, ok := Get("jobsch")
	require.True(t, ok)
	assert.Equal(t, "x", unpaginated.PageURL("x", 5))
}

func TestUnsupportedBoards(t *testing.T) {
	for _, id := range []string{"linkedin", "indeed"} {
		b, ok := Get(id)
		require.True(t, ok)
		assert.False(t, b.Supported())
	}
}

func TestGetUnknown(t *testing.T) {
	_, ok := Get("monster")
	assert.False(t, ok)
}
