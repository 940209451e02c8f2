package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "cosense"

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < .env < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, appName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	_ = v.ReadInConfig()

	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	v.Set("base_url", strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"))
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/cosense or ~/.local/share/cosense
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, appName, "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// It is the single source of truth for defaults and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "base_url", Default: "https://scrapbox.io", Comment: "Cosense site base URL"},
		{Key: "project", Default: "", Comment: "Project searched and browsed by default"},
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; cache DB is data_dir/cosense.db"},
		{Key: "verbose", Default: false, Comment: "Log HTTP and cache activity to stderr"},
		{Key: "output", Default: "pretty", Comment: "Default page output: plain, markdown, pretty, json"},
		{Key: "projects", Default: map[string]any{}, Comment: "Per-project overrides: [projects.<name>] base_url/sid"},

		{Key: "api.timeout_seconds", Default: 20, Comment: "HTTP timeout for API and product page requests"},
		{Key: "session.provider", Default: "none", Comment: "Where the connect.sid cookie comes from: none, keyring, config"},
		{Key: "session.sid", Default: "", Comment: "connect.sid value used when session.provider = \"config\""},
		{Key: "cache.enabled", Default: true, Comment: "Keep fetched page text in the local cache"},
		{Key: "cache.max_age_minutes", Default: 5, Comment: "Serve cached pages younger than this without asking the server"},
		{Key: "pretty.style", Default: "dracula", Comment: "Glamour style for pretty output"},
		{Key: "pretty.word_wrap", Default: 80, Comment: "Wrap width for pretty output"},
		{Key: "search.limit", Default: 50, Comment: "Maximum search results shown"},
		{Key: "book.tag", Default: "ref/book", Comment: "Hashtag put on pages created by the book command"},
		{Key: "book.image_height", Default: 500, Comment: "Preferred product image height in pixels"},
	}
}

// ResolveDBPath returns the sqlite cache path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, appName+".db")
}

// ProjectString reads projects.<project>.<key>, falling back to the
// top-level key.
func ProjectString(v *viper.Viper, project, key string) string {
	if project != "" {
		if s := strings.TrimSpace(v.GetString("projects." + project + "." + key)); s != "" {
			return s
		}
	}
	return v.GetString(key)
}
