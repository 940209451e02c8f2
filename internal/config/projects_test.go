package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetProjectValueAppendsSection(t *testing.T) {
	input := strings.TrimSpace(`
project = "main"
`)
	got := SetProjectValue(input, "work", "sid", "abc")
	assert.Equal(t, "project = \"main\"\n\n[projects.work]\nsid = \"abc\"", got)
}

func TestSetProjectValueReplacesKey(t *testing.T) {
	input := strings.TrimSpace(`
[projects.work]
base_url = "https://example.test"
sid = "old"

[search]
limit = 10
`)
	got := SetProjectValue(input, "work", "sid", "new")
	assert.NotContains(t, got, `sid = "old"`)
	assert.Contains(t, got, `sid = "new"`)
	assert.Contains(t, got, `base_url = "https://example.test"`)
	assert.Contains(t, got, "[search]\nlimit = 10")
}

func TestSetProjectValueAddsKeyToSection(t *testing.T) {
	input := "[projects.work]\nbase_url = \"https://example.test\"\n\n[search]\nlimit = 10"
	got := SetProjectValue(input, "work", "sid", "v")
	assert.Equal(t, "[projects.work]\nbase_url = \"https://example.test\"\nsid = \"v\"\n\n[search]\nlimit = 10", got)
}

func TestSetProjectValueQuotesNames(t *testing.T) {
	got := SetProjectValue("", "my.proj", "sid", "v")
	assert.Contains(t, got, `[projects."my.proj"]`)
}

func TestDeleteProjectValue(t *testing.T) {
	input := strings.TrimSpace(`
[projects.work]
sid = "a"

[projects.play]
sid = "b"
`)
	got, removed := DeleteProjectValue(input, "work", "sid")
	assert.True(t, removed)
	assert.NotContains(t, got, `sid = "a"`)
	assert.Contains(t, got, `sid = "b"`)

	_, removed = DeleteProjectValue(input, "missing", "sid")
	assert.False(t, removed)
}

func TestSetProjectValueOnDefaultConfig(t *testing.T) {
	def := RenderDefaultTOML()
	assert.NotContains(t, def, "projects = {}")
	assert.Contains(t, def, "# [projects.<name>]\n# base_url = \"\"\n# sid = \"\"")

	got := SetProjectValue(def, "work", "sid", "abc")
	assert.True(t, strings.HasSuffix(got, "\n\n[projects.work]\nsid = \"abc\""))

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(got)))
	assert.Equal(t, "abc", v.GetString("projects.work.sid"))
}
