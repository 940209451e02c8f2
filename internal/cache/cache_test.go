package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/cosense/pkg/api"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	sq, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	mem, err := Open(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sq.Close()
		_ = mem.Close()
	})
	return map[string]Store{"sqlite": sq, "mem": mem}
}

func page(project, title, text string, at time.Time) api.CachedPage {
	pt := api.PageText{Project: project, Title: title, Text: text}
	return api.CachedPage{PageText: pt, Hash: pt.Hash(), FetchedAt: at}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "postgres://x")
	assert.Error(t, err)
}

func TestPageRoundTrip(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetPage(ctx, "p", "Missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.PutPage(ctx, page("p", "Go", "Go\nfirst", at)))
			require.NoError(t, st.PutPage(ctx, page("p", "Go", "Go\nsecond", at.Add(time.Minute))))

			got, err := st.GetPage(ctx, "p", "Go")
			require.NoError(t, err)
			assert.Equal(t, "Go\nsecond", got.Text)
			assert.Equal(t, api.PageText{Project: "p", Title: "Go", Text: "Go\nsecond"}.Hash(), got.Hash)
			assert.True(t, at.Add(time.Minute).Equal(got.FetchedAt))

			_, err = st.GetPage(ctx, "other", "Go")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestTitles(t *testing.T) {
	ctx := context.Background()
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.PutPage(ctx, page("p", "Old", "x", time.Now().Add(-time.Hour))))
			require.NoError(t, st.RememberTitles(ctx, "p", []string{"Alpha", "", "Beta"}))
			require.NoError(t, st.RememberTitles(ctx, "q", []string{"Elsewhere"}))

			titles, err := st.Titles(ctx, "p", 0)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Alpha", "Beta", "Old"}, titles)
			assert.Equal(t, "Old", titles[len(titles)-1])

			limited, err := st.Titles(ctx, "p", 1)
			require.NoError(t, err)
			assert.Len(t, limited, 1)
		})
	}
}

func TestSearchText(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.PutPage(ctx, page("p", "Gopher", "Gopher\nthe mascot of go\nunrelated", now)))
			require.NoError(t, st.PutPage(ctx, page("p", "Rust", "Rust\ncrab", now)))
			require.NoError(t, st.PutPage(ctx, page("other", "Mascot", "mascot", now)))

			hits, err := st.SearchText(ctx, "p", "mascot", 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "Gopher", hits[0].Title)
			assert.Equal(t, []string{"the mascot of go"}, hits[0].Lines)

			none, err := st.SearchText(ctx, "p", "  ", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestFTSQueryQuotesInput(t *testing.T) {
	assert.Equal(t, `"a" "b""c"`, ftsQuery(` a  b"c `))
	assert.Equal(t, "", ftsQuery(""))
}

func TestSnippetLines(t *testing.T) {
	text := "Title\nfoo bar\nnothing\nFOO again\nfoo third"
	assert.Equal(t, []string{"foo bar", "FOO again"}, snippetLines(text, "foo", 2))
}
