// Package cache keeps fetched page text and known titles locally.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/cosense/pkg/api"
)

// Store is the local page cache.
type Store interface {
	GetPage(ctx context.Context, project, title string) (api.CachedPage, error)
	PutPage(ctx context.Context, p api.CachedPage) error
	// RememberTitles records titles seen in search results or page lists.
	RememberTitles(ctx context.Context, project string, titles []string) error
	// Titles returns remembered titles, most recently seen first.
	Titles(ctx context.Context, project string, limit int) ([]string, error)
	// SearchText runs a full-text query over cached page text.
	SearchText(ctx context.Context, project, query string, limit int) ([]api.PageSummary, error)
	Close() error
}

var ErrNotFound = errors.New("not found")

// Open returns a Store for a "sqlite://<path>" or "mem://" DSN.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return openSQLite(ctx, dsn)
	case dsn == "mem://" || dsn == "":
		return newMemStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache dsn %q", dsn)
	}
}

// snippetLines picks up to n lines of text containing any query word.
func snippetLines(text, query string, n int) []string {
	words := strings.Fields(strings.ToLower(query))
	var out []string
	for _, line := range strings.Split(text, "\n") {
		l := strings.ToLower(line)
		for _, w := range words {
			if strings.Contains(l, w) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
		if len(out) >= n {
			break
		}
	}
	return out
}
