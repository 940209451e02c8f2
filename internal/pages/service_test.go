package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/cosense/internal/cache"
	"github.com/mithrel/cosense/internal/client"
	"github.com/mithrel/cosense/pkg/api"
)

type fakeRemote struct {
	texts   map[string]string
	search  api.SearchResult
	list    api.PageList
	err     error
	fetches int
}

func (f *fakeRemote) Search(ctx context.Context, q string) (api.SearchResult, error) {
	if f.err != nil {
		return api.SearchResult{}, f.err
	}
	return f.search, nil
}

func (f *fakeRemote) PageText(ctx context.Context, title string) (string, error) {
	f.fetches++
	if f.err != nil {
		return "", f.err
	}
	t, ok := f.texts[title]
	if !ok {
		return "", &client.StatusError{Code: 404, Body: "not found"}
	}
	return t, nil
}

func (f *fakeRemote) ListPages(ctx context.Context, opts client.ListOptions) (api.PageList, error) {
	if f.err != nil {
		return api.PageList{}, f.err
	}
	return f.list, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T, r Remote) (*Service, *clock) {
	t.Helper()
	st, err := cache.Open(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	clk := &clock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	return New(r, st, Options{
		BaseURL: "https://example.test",
		Project: "myproj",
		MaxAge:  5 * time.Minute,
		Now:     clk.Now,
	}), clk
}

func TestTextUsesFreshCache(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{texts: map[string]string{"Go": "Go\nv1"}}
	svc, clk := newService(t, r)

	p, stale, err := svc.Text(ctx, "Go")
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "Go\nv1", p.Text)
	assert.Equal(t, 1, r.fetches)

	clk.now = clk.now.Add(time.Minute)
	_, _, err = svc.Text(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, 1, r.fetches, "fresh cache entry should be served")

	r.texts["Go"] = "Go\nv2"
	clk.now = clk.now.Add(10 * time.Minute)
	p, _, err = svc.Text(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, 2, r.fetches)
	assert.Equal(t, "Go\nv2", p.Text)
	assert.Equal(t, api.PageText{Project: "myproj", Title: "Go", Text: "Go\nv2"}.Hash(), p.Hash)
}

func TestTextFallsBackToStaleCopy(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{texts: map[string]string{"Go": "Go\nv1"}}
	svc, clk := newService(t, r)

	_, _, err := svc.Text(ctx, "Go")
	require.NoError(t, err)

	r.err = errors.New("offline")
	clk.now = clk.now.Add(time.Hour)
	p, stale, err := svc.Text(ctx, "Go")
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "Go\nv1", p.Text)

	_, _, err = svc.Text(ctx, "Never fetched")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{texts: map[string]string{
		"Go Notes": "Go Notes\n see [Other]",
		"Broken":   "Broken\n\xff",
	}}
	svc, _ := newService(t, r)

	page, err := svc.Show(ctx, "Go Notes")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/myproj/Go%20Notes", page.URL)
	assert.Equal(t, "# Go Notes  \n* see [Other](https://example.test/myproj/Other)", page.Markdown)
	assert.Empty(t, page.ConversionError)
	assert.NotEmpty(t, page.Hash)

	broken, err := svc.Show(ctx, "Broken")
	require.NoError(t, err)
	assert.Equal(t, "Broken\n\xff", broken.Markdown)
	assert.NotEmpty(t, broken.ConversionError)

	_, err = svc.Show(ctx, "Missing")
	var se *client.StatusError
	assert.True(t, errors.As(err, &se))
}

func TestSearchRemembersTitlesForCompletion(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{search: api.SearchResult{Pages: []api.PageSummary{
		{ID: "1", Title: "Golang"},
		{ID: "2", Title: "Rust"},
	}}}
	svc, _ := newService(t, r)

	res, err := svc.Search(ctx, "lang")
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)

	got, err := svc.CompleteTitles(ctx, "go", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Golang"}, got)
}

func TestSearchOfflineUsesCachedText(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{texts: map[string]string{"Gopher": "Gopher\nmascot line"}}
	svc, _ := newService(t, r)
	_, _, err := svc.Text(ctx, "Gopher")
	require.NoError(t, err)

	r.err = errors.New("offline")
	res, err := svc.Search(ctx, "mascot")
	var stale *StaleError
	require.True(t, errors.As(err, &stale))
	require.Len(t, res.Pages, 1)
	assert.Equal(t, "Gopher", res.Pages[0].Title)

	_, err = svc.Search(ctx, "nothing-cached")
	assert.EqualError(t, err, "offline")
}

func TestListPagesRemembersTitles(t *testing.T) {
	ctx := context.Background()
	r := &fakeRemote{list: api.PageList{Count: 1, Pages: []api.PageInfo{{Title: "Listed"}}}}
	svc, _ := newService(t, r)

	list, err := svc.ListPages(ctx, client.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	got, err := svc.CompleteTitles(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Listed"}, got)
}

func TestWithoutStore(t *testing.T) {
	r := &fakeRemote{texts: map[string]string{"A": "A"}}
	svc := New(r, nil, Options{Project: "p"})
	_, _, err := svc.Text(context.Background(), "A")
	require.NoError(t, err)
	got, err := svc.CompleteTitles(context.Background(), "a", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
