package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/cosense/pkg/api"
)

type pageKey struct{ project, title string }

type memStore struct {
	mu     sync.RWMutex
	pages  map[pageKey]api.CachedPage
	titles map[pageKey]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		pages:  make(map[pageKey]api.CachedPage),
		titles: make(map[pageKey]time.Time),
	}
}

func (m *memStore) GetPage(ctx context.Context, project, title string) (api.CachedPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[pageKey{project, title}]
	if !ok {
		return api.CachedPage{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) PutPage(ctx context.Context, p api.CachedPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pageKey{p.Project, p.Title}
	m.pages[k] = p
	m.titles[k] = p.FetchedAt
	return nil
}

func (m *memStore) RememberTitles(ctx context.Context, project string, titles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range titles {
		if t == "" {
			continue
		}
		m.titles[pageKey{project, t}] = now
	}
	return nil
}

func (m *memStore) Titles(ctx context.Context, project string, limit int) ([]string, error) {
	m.mu.RLock()
	type seen struct {
		title string
		at    time.Time
	}
	var all []seen
	for k, at := range m.titles {
		if k.project == project {
			all = append(all, seen{k.title, at})
		}
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].at.Equal(all[j].at) {
			return all[i].at.After(all[j].at)
		}
		return all[i].title < all[j].title
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.title)
	}
	return out, nil
}

func (m *memStore) SearchText(ctx context.Context, project, query string, limit int) ([]api.PageSummary, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []api.PageSummary
	for k, p := range m.pages {
		if k.project != project {
			continue
		}
		hay := strings.ToLower(p.Title + "\n" + p.Text)
		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, api.PageSummary{Title: p.Title, Lines: snippetLines(p.Text, query, 3)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }
