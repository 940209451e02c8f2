package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/cosense/internal/bookpage"
	"github.com/mithrel/cosense/pkg/api"
)

const productHTML = `<html><body>
<span id="productTitle"> The Go Book </span>
<img id="landingImage" data-a-dynamic-image="{&quot;https://img.test/c._AC_SY300_.jpg&quot;:[300,200],&quot;https://img.test/c._AC_SY500_.jpg&quot;:[500,333]}">
</body></html>`

var listed = []api.PageInfo{
	{ID: "1", Title: "First", Updated: 1700000000},
	{ID: "2", Title: "Second", Updated: 1700000100},
	{ID: "3", Title: "Third", Updated: 1700000200},
}

// fakeCosense serves the subset of the API the CLI talks to.
func fakeCosense(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pages/proj/search/query", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.SearchResult{
			ProjectName: "proj",
			SearchQuery: r.URL.Query().Get("q"),
			Count:       2,
			Pages: []api.PageSummary{
				{ID: "a1", Title: "Hello", Lines: []string{"hello world"}},
				{ID: "a2", Title: "Hello again", Lines: []string{"again"}},
			},
		})
	})
	mux.HandleFunc("/api/pages/proj/Hello/text", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "Hello\nsome [* bold] text\n #tag")
	})
	mux.HandleFunc("/api/pages/proj", func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := min(len(listed), skip+limit)
		_ = json.NewEncoder(w).Encode(api.PageList{Skip: skip, Limit: limit, Count: len(listed), Pages: listed[skip:end]})
	})
	mux.HandleFunc("/dp/B000TEST", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, productHTML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfigTOML(t *testing.T, dir, baseURL, extra string) string {
	t.Helper()
	cfg := filepath.Join(dir, "config.toml")
	content := `base_url = "` + baseURL + `"
project = "proj"
data_dir = "` + strings.ReplaceAll(filepath.Join(dir, "data"), "\\", "\\\\") + `"
` + extra
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))
	return cfg
}

// run executes the CLI with args and returns combined output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T, extra string) (string, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg-config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg-data"))
	srv := fakeCosense(t)
	return writeConfigTOML(t, dir, srv.URL, extra), srv
}

func TestSearchPlainAndJSON(t *testing.T) {
	cfg, _ := setup(t, "")

	out, err := run(t, "", "--config", cfg, "search", "hello")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Hello again")
	assert.Contains(t, out, "hello world")

	out, err = run(t, "", "--config", cfg, "search", "hello", "--output", "json", "--limit", "1")
	require.NoError(t, err, out)
	var res api.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "hello", res.SearchQuery)
	assert.Len(t, res.Pages, 1)
}

func TestSearchRequiresQueryOutsideTUI(t *testing.T) {
	cfg, _ := setup(t, "")
	_, err := run(t, "", "--config", cfg, "search")
	assert.Error(t, err)
}

func TestPageShowModes(t *testing.T) {
	cfg, srv := setup(t, "")

	out, err := run(t, "", "--config", cfg, "page", "show", "Hello", "--output", "markdown")
	require.NoError(t, err, out)
	assert.Contains(t, out, "# Hello")
	assert.Contains(t, out, "**bold**")
	assert.Contains(t, out, "[#tag]("+srv.URL+"/proj/tag)")

	out, err = run(t, "", "--config", cfg, "page", "show", "Hello", "--raw")
	require.NoError(t, err, out)
	assert.Contains(t, out, "[* bold]")

	out, err = run(t, "", "--config", cfg, "page", "show", "Hello", "--output", "json")
	require.NoError(t, err, out)
	var p api.RenderedPage
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, srv.URL+"/proj/Hello", p.URL)
	assert.NotEmpty(t, p.Hash)
}

func TestPageShowMissingPage(t *testing.T) {
	cfg, _ := setup(t, "cache.enabled = false\n")
	_, err := run(t, "", "--config", cfg, "page", "show", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestPageListAllStreams(t *testing.T) {
	cfg, _ := setup(t, "")
	out, err := run(t, "", "--config", cfg, "page", "list", "--all", "--limit", "2", "--output", "ndjson")
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var last api.PageInfo
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, "Third", last.Title)
}

func TestPageExportMarkdown(t *testing.T) {
	cfg, _ := setup(t, "")
	dir := t.TempDir()
	out, err := run(t, "", "--config", cfg, "page", "export", "Hello", "--output-dir", dir)
	require.NoError(t, err, out)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**bold**")
}

func TestConvertStdin(t *testing.T) {
	cfg, srv := setup(t, "")

	out, err := run(t, "Title\n [Other]", "--config", cfg, "convert")
	require.NoError(t, err, out)
	assert.Equal(t, "# Title  \n* [Other]("+srv.URL+"/proj/Other)\n", out)

	out, err = run(t, "no title here", "--config", cfg, "convert", "--untitled")
	require.NoError(t, err, out)
	assert.Equal(t, "no title here\n", out)
}

func TestConvertFailureKeepsText(t *testing.T) {
	cfg, _ := setup(t, "")
	out, err := run(t, "T\nbad \xff", "--config", cfg, "convert")
	require.Error(t, err)
	assert.Contains(t, out, "bad \xff")
}

func TestConvertFailureWritesInputUnchanged(t *testing.T) {
	cfg, _ := setup(t, "")
	input := "T\nbad \xff\n\n\n"
	out, err := run(t, input, "--config", cfg, "convert")
	require.Error(t, err)
	assert.Equal(t, input, out)
}

func TestConvertAST(t *testing.T) {
	cfg, _ := setup(t, "")
	out, err := run(t, "Title\ncode:a.go\n x", "--config", cfg, "convert", "--ast")
	require.NoError(t, err, out)
	assert.Contains(t, out, "CodeBlock")
	assert.Contains(t, out, "a.go")
}

func TestBookCommand(t *testing.T) {
	cfg, srv := setup(t, "")

	out, err := run(t, "", "--config", cfg, "book", srv.URL+"/dp/B000TEST/ref=xyz?th=1")
	require.NoError(t, err, out)
	body := bookpage.Body("ref/book", "The Go Book", srv.URL+"/dp/B000TEST", "https://img.test/c._SY500_.jpg")
	assert.Equal(t, bookpage.NewPageURL(srv.URL, "proj", "The Go Book", body), strings.TrimSpace(out))
}

func TestBookReadsClipboard(t *testing.T) {
	cfg, srv := setup(t, "")
	orig := readClipboard
	t.Cleanup(func() { readClipboard = orig })
	readClipboard = func() (string, error) { return " " + srv.URL + "/dp/B000TEST \n", nil }

	out, err := run(t, "", "--config", cfg, "book", "--json")
	require.NoError(t, err, out)
	var d bookpage.Draft
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "The Go Book", d.Title)
}

func TestSessionConfigProvider(t *testing.T) {
	cfg, _ := setup(t, "[session]\nprovider = \"config\"\n")

	out, err := run(t, "", "--config", cfg, "session", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "provider: config")
	assert.Contains(t, out, "sid: (missing)")

	out, err = run(t, "s%3Aabcdefghijkl\n", "--config", cfg, "session", "set")
	require.NoError(t, err, out)
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[projects.proj]")
	assert.Contains(t, string(data), `sid = "s%3Aabcdefghijkl"`)

	out, err = run(t, "", "--config", cfg, "session", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "sid: s%3A")
	assert.NotContains(t, out, "abcdefghijkl")

	out, err = run(t, "", "--config", cfg, "session", "clear")
	require.NoError(t, err, out)
	out, err = run(t, "", "--config", cfg, "session", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "sid: (missing)")
}

func TestSessionNoneProviderRejectsSet(t *testing.T) {
	cfg, _ := setup(t, "")
	_, err := run(t, "", "--config", cfg, "session", "set", "abc")
	assert.Error(t, err)
}

func TestConfigGenerateShowCheck(t *testing.T) {
	cfg, srv := setup(t, "")
	gen := filepath.Join(t.TempDir(), "out", "config.toml")

	out, err := run(t, "", "--config", cfg, "config", "generate", "-o", gen)
	require.NoError(t, err, out)
	assert.FileExists(t, gen)
	_, err = run(t, "", "--config", cfg, "config", "generate", "-o", gen)
	assert.Error(t, err, "existing file needs --overwrite or --update")

	out, err = run(t, "", "--config", cfg, "config", "show")
	require.NoError(t, err, out)
	assert.Contains(t, out, "base_url = "+srv.URL)
	assert.Contains(t, out, "project = proj")

	out, err = run(t, "", "--config", cfg, "config", "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Config OK")
}

func TestConfigCheckReportsProblems(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfigTOML(t, dir, "not a url", "[search]\nlimit = 0\n")
	_, err := run(t, "", "--config", cfg, "config", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "search.limit")
}

func TestProjectFlagOverridesConfig(t *testing.T) {
	cfg, _ := setup(t, "")
	_, err := run(t, "", "--config", cfg, "--project", "other", "page", "show", "Hello")
	require.Error(t, err, "other project has no pages on the fake server")
}

func TestRemoveDraftLogsFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "draft")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))

	var buf bytes.Buffer
	removeDraft(log.New(&buf, "", 0), dir)
	assert.Contains(t, buf.String(), "cli: remove draft "+dir)

	buf.Reset()
	removeDraft(log.New(&buf, "", 0), filepath.Join(t.TempDir(), "gone.md"))
	assert.Empty(t, buf.String())
}
