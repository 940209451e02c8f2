package wire

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/cosense/internal/cache"
	"github.com/mithrel/cosense/internal/client"
	"github.com/mithrel/cosense/internal/config"
	"github.com/mithrel/cosense/internal/keys"
	"github.com/mithrel/cosense/internal/pages"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *log.Logger
	Project  string
	BaseURL  string
	Cache    cache.Store
	Client   *client.Client
	Pages    *pages.Service
	Sessions keys.SessionStore
}

// Overrides carries values given on the command line.
type Overrides struct {
	Project string
	// LogOutput replaces the verbose/quiet choice when set.
	LogOutput io.Writer
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper, ov Overrides) (*App, error) {
	out := io.Discard
	if v.GetBool("verbose") {
		out = os.Stderr
	}
	if ov.LogOutput != nil {
		out = ov.LogOutput
	}
	logger := log.New(out, "cosense ", log.LstdFlags)

	project := strings.TrimSpace(ov.Project)
	if project == "" {
		project = strings.TrimSpace(v.GetString("project"))
	}
	base := strings.TrimRight(config.ProjectString(v, project, "base_url"), "/")

	sessions, err := keys.New(v.GetString("session.provider"), configSessions(v))
	if err != nil {
		return nil, err
	}
	sid := ""
	if project != "" {
		if sid, err = keys.Lookup(sessions, project); err != nil {
			logger.Printf("wire: session lookup for %s: %v", project, err)
		}
	}

	var store cache.Store
	if v.GetBool("cache.enabled") {
		store, err = cache.Open(ctx, "sqlite://"+config.ResolveDBPath(v))
		if err != nil {
			// The cache is optional; remote commands still work.
			logger.Printf("wire: cache disabled: %v", err)
			store = nil
		}
	}

	cl := client.New(client.Options{
		BaseURL:   base,
		Project:   project,
		Timeout:   time.Duration(v.GetInt("api.timeout_seconds")) * time.Second,
		SessionID: sid,
		Logger:    logger,
	})
	svc := pages.New(cl, store, pages.Options{
		BaseURL: base,
		Project: project,
		MaxAge:  time.Duration(v.GetInt("cache.max_age_minutes")) * time.Minute,
		Logger:  logger,
	})

	return &App{
		Cfg:      v,
		Log:      logger,
		Project:  project,
		BaseURL:  base,
		Cache:    store,
		Client:   cl,
		Pages:    svc,
		Sessions: sessions,
	}, nil
}

// Close releases the cache handle.
func (a *App) Close() error {
	if a == nil || a.Cache == nil {
		return nil
	}
	return a.Cache.Close()
}

// configSessions collects session.sid and projects.<name>.sid values.
func configSessions(v *viper.Viper) *keys.ConfigStore {
	cs := &keys.ConfigStore{
		SIDs:    map[string]string{},
		Default: v.GetString("session.sid"),
	}
	for name := range v.GetStringMap("projects") {
		if sid := v.GetString("projects." + name + ".sid"); sid != "" {
			cs.SIDs[name] = sid
		}
	}
	return cs
}
