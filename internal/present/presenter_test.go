package present

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/cosense/pkg/api"
)

func TestParseMode(t *testing.T) {
	for _, name := range ModeNames {
		_, ok := ParseMode(name)
		assert.True(t, ok, name)
	}
	m, ok := ParseMode("yaml")
	assert.False(t, ok)
	assert.Equal(t, ModePretty, m)
}

func TestRenderPageModes(t *testing.T) {
	p := api.RenderedPage{Title: "T", Text: "T\n[* b]", Markdown: "# T  \n**b**"}

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, p, Options{Mode: ModePlain}))
	assert.Contains(t, buf.String(), "[* b]")

	buf.Reset()
	require.NoError(t, RenderPage(&buf, p, Options{Mode: ModeMarkdown}))
	assert.Contains(t, buf.String(), "**b**")

	buf.Reset()
	require.NoError(t, RenderPage(&buf, p, Options{Mode: ModeJSON}))
	var got api.RenderedPage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, p.Markdown, got.Markdown)
}

func TestRenderSearchPlain(t *testing.T) {
	res := api.SearchResult{SearchQuery: "go", Pages: []api.PageSummary{{ID: "1", Title: "Go", Lines: []string{"a", "b"}}}}
	var buf bytes.Buffer
	require.NoError(t, RenderSearch(context.Background(), &buf, nil, res, Options{Mode: ModePlain}, nil))
	assert.Contains(t, buf.String(), "Go")
}

func TestPageStreamRejectsTUI(t *testing.T) {
	_, err := PageStream(&bytes.Buffer{}, Options{Mode: ModeTUI})
	assert.Error(t, err)
}
