package api

import (
	"strings"
	"time"
)

// PageSummary is one search hit as returned by the search endpoint.
type PageSummary struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Image string   `json:"image,omitempty"`
	Words []string `json:"words,omitempty"`
	Lines []string `json:"lines"`
}

// Snippet joins the matched lines the way list rows show them.
func (p PageSummary) Snippet() string {
	return strings.Join(p.Lines, " ")
}

type SearchResult struct {
	ProjectName string        `json:"projectName,omitempty"`
	SearchQuery string        `json:"searchQuery,omitempty"`
	Count       int           `json:"count"`
	Pages       []PageSummary `json:"pages"`
}

// PageInfo is a row of the project page list.
type PageInfo struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Image        string   `json:"image,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
	Pin          int64    `json:"pin"`
	Views        int      `json:"views"`
	Linked       int      `json:"linked"`
	Created      int64    `json:"created"`
	Updated      int64    `json:"updated"`
}

// UpdatedAt converts the unix seconds of Updated.
func (p PageInfo) UpdatedAt() time.Time {
	if p.Updated == 0 {
		return time.Time{}
	}
	return time.Unix(p.Updated, 0)
}

type PageList struct {
	ProjectName string     `json:"projectName,omitempty"`
	Skip        int        `json:"skip"`
	Limit       int        `json:"limit"`
	Count       int        `json:"count"`
	Pages       []PageInfo `json:"pages"`
}

// PageText is the raw notation of a page in a project.
type PageText struct {
	Project string `json:"project"`
	Title   string `json:"title"`
	Text    string `json:"text"`
}

// CachedPage is a PageText with its cache bookkeeping.
type CachedPage struct {
	PageText
	Hash      string    `json:"hash"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RenderedPage is what `page show` and the search browser display.
type RenderedPage struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Text            string `json:"text"`
	Markdown        string `json:"markdown"`
	Hash            string `json:"hash"`
	Stale           bool   `json:"stale,omitempty"`
	ConversionError string `json:"conversion_error,omitempty"`
}
