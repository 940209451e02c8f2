package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraft(t *testing.T) {
	input := "# comment line\n" +
		"Title: My Page\n" +
		"Tags: alpha, #beta ,  two words\n" +
		"---\n" +
		"\n" +
		"first line\n" +
		" indented [link]\n" +
		"#inline-tag stays\n\n"

	title, tags, body := ParseDraft(input)
	assert.Equal(t, "My Page", title)
	assert.Equal(t, []string{"alpha", "beta", "two words"}, tags)
	assert.Equal(t, "first line\n indented [link]\n#inline-tag stays", body)
}

func TestParseDraftRoundTrip(t *testing.T) {
	content := ComposeContent("T", []string{"a", "b"}, " code:x.go\n  fmt.Println()")
	title, tags, body := ParseDraft(content)
	assert.Equal(t, "T", title)
	assert.Equal(t, []string{"a", "b"}, tags)
	assert.Equal(t, " code:x.go\n  fmt.Println()", body)
}

func TestComposeContent(t *testing.T) {
	content := ComposeContent("Title", []string{"alpha", "beta"}, "body")
	assert.Contains(t, content, "Title: Title\n")
	assert.Contains(t, content, "Tags: alpha, beta\n")
	assert.Contains(t, content, "---\nbody\n")
}

func TestPageBody(t *testing.T) {
	assert.Equal(t, "text", PageBody("text", nil))
	assert.Equal(t, "text\n#go [two words]", PageBody("text", []string{"go", "two words"}))
	assert.Equal(t, "#go", PageBody("", []string{"go"}))
}

func TestPathForDraft(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	p, err := PathForDraft("my proj", "A/B")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cosense", "my-proj.A-B.cosense.txt"), p)
}

func TestOpenAtWithScriptedEditor(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ed.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'appended' >> \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", script)

	path := filepath.Join(dir, "drafts", "x.txt")
	out, changed, err := OpenAt(path, []byte("start\n"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "start\nappended\n", string(out))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
