// Package pages combines the API client and the local cache.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mithrel/cosense/internal/cache"
	"github.com/mithrel/cosense/internal/client"
	"github.com/mithrel/cosense/internal/render"
	"github.com/mithrel/cosense/internal/util"
	"github.com/mithrel/cosense/pkg/api"
)

// Remote is the subset of the API client the service needs.
type Remote interface {
	Search(ctx context.Context, query string) (api.SearchResult, error)
	PageText(ctx context.Context, title string) (string, error)
	ListPages(ctx context.Context, opts client.ListOptions) (api.PageList, error)
}

type Options struct {
	BaseURL string
	Project string
	// MaxAge is how long a cached page is served without asking the server.
	MaxAge time.Duration
	Logger *log.Logger
	// Now is used for cache freshness; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	remote Remote
	store  cache.Store
	opts   Options
	log    *log.Logger
}

// New returns a Service. store may be nil to disable caching.
func New(remote Remote, store cache.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Service{remote: remote, store: store, opts: opts, log: lg}
}

// Search queries the server and remembers the returned titles. When the
// server cannot be reached, cached page text is searched instead and the
// remote error is returned alongside.
func (s *Service) Search(ctx context.Context, query string) (api.SearchResult, error) {
	res, err := s.remote.Search(ctx, query)
	if err != nil {
		if s.store == nil {
			return api.SearchResult{}, err
		}
		hits, cerr := s.store.SearchText(ctx, s.opts.Project, query, 0)
		if cerr != nil || len(hits) == 0 {
			return api.SearchResult{}, err
		}
		s.log.Printf("pages: search %q offline, %d cached hits", query, len(hits))
		return api.SearchResult{SearchQuery: query, Count: len(hits), Pages: hits}, &StaleError{Err: err}
	}
	if s.store != nil && len(res.Pages) > 0 {
		titles := make([]string, 0, len(res.Pages))
		for _, p := range res.Pages {
			titles = append(titles, p.Title)
		}
		if err := s.store.RememberTitles(ctx, s.opts.Project, titles); err != nil {
			s.log.Printf("pages: remember titles: %v", err)
		}
	}
	return res, nil
}

// StaleError marks results served from the cache because the server failed.
type StaleError struct{ Err error }

func (e *StaleError) Error() string { return "serving cached data: " + e.Err.Error() }
func (e *StaleError) Unwrap() error { return e.Err }

// Text returns the page text and its hash. stale is true when the server
// failed and a cached copy was returned instead.
func (s *Service) Text(ctx context.Context, title string) (page api.CachedPage, stale bool, err error) {
	var cached api.CachedPage
	haveCached := false
	if s.store != nil {
		c, err := s.store.GetPage(ctx, s.opts.Project, title)
		switch {
		case err == nil:
			cached, haveCached = c, true
			if s.opts.MaxAge > 0 && s.opts.Now().Sub(c.FetchedAt) < s.opts.MaxAge {
				s.log.Printf("pages: cache hit %q", title)
				return c, false, nil
			}
		case !errors.Is(err, cache.ErrNotFound):
			s.log.Printf("pages: cache read %q: %v", title, err)
		}
	}

	text, err := s.remote.PageText(ctx, title)
	if err != nil {
		if haveCached {
			s.log.Printf("pages: fetch %q failed, using cached copy: %v", title, err)
			return cached, true, nil
		}
		return api.CachedPage{}, false, err
	}

	pt := api.PageText{Project: s.opts.Project, Title: title, Text: text}
	page = api.CachedPage{PageText: pt, Hash: pt.Hash(), FetchedAt: s.opts.Now()}
	if haveCached && cached.Hash != page.Hash {
		s.log.Printf("pages: %q changed %s -> %s", title, short(cached.Hash), short(page.Hash))
	}
	if s.store != nil {
		if err := s.store.PutPage(ctx, page); err != nil {
			s.log.Printf("pages: cache write %q: %v", title, err)
		}
	}
	return page, false, nil
}

// Show fetches a page and converts it to Markdown. A conversion failure is
// reported in the result, not as an error; Markdown then holds the raw text.
func (s *Service) Show(ctx context.Context, title string) (api.RenderedPage, error) {
	page, stale, err := s.Text(ctx, title)
	if err != nil {
		return api.RenderedPage{}, err
	}
	out := api.RenderedPage{
		Title: title,
		URL:   client.PageURL(s.opts.BaseURL, s.opts.Project, title),
		Text:  page.Text,
		Hash:  page.Hash,
		Stale: stale,
	}
	md, cerr := render.Convert(page.Text, render.Options{BaseURL: s.opts.BaseURL, Project: s.opts.Project})
	out.Markdown = md
	if cerr != nil {
		s.log.Printf("pages: %q: %v", title, cerr)
		out.ConversionError = cerr.Error()
	}
	return out, nil
}

// ListPages returns a window of the project page list and remembers its titles.
func (s *Service) ListPages(ctx context.Context, opts client.ListOptions) (api.PageList, error) {
	list, err := s.remote.ListPages(ctx, opts)
	if err != nil {
		return api.PageList{}, err
	}
	if s.store != nil && len(list.Pages) > 0 {
		titles := make([]string, 0, len(list.Pages))
		for _, p := range list.Pages {
			titles = append(titles, p.Title)
		}
		if err := s.store.RememberTitles(ctx, s.opts.Project, titles); err != nil {
			s.log.Printf("pages: remember titles: %v", err)
		}
	}
	return list, nil
}

// CompleteTitles ranks remembered titles against prefix.
func (s *Service) CompleteTitles(ctx context.Context, prefix string, n int) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	titles, err := s.store.Titles(ctx, s.opts.Project, 2000)
	if err != nil {
		return nil, fmt.Errorf("load titles: %w", err)
	}
	return util.RankTitles(prefix, titles, n), nil
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
