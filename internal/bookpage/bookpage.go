// Package bookpage builds a Cosense book page draft from an Amazon product URL.
package bookpage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mithrel/cosense/internal/client"
)

const (
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7"

	DefaultTag         = "ref/book"
	DefaultImageHeight = 500
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrTitleNotFound = errors.New("could not find #productTitle in the HTML")
	ErrImageNotFound = errors.New("could not find data-a-dynamic-image on #landingImage")
	ErrNoImageURLs   = errors.New("no urls were found in data-a-dynamic-image")

	sizeToken   = regexp.MustCompile(`(?i)\._[^.]+_\.(jpg|jpeg|png|webp)(\?.*)?$`)
	productPath = regexp.MustCompile(`(/dp/\w+|/gp/product/\w+)[/?]?`)
)

// ValidateURL parses s as an absolute URL.
func ValidateURL(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}
	return u, nil
}

// SimplifyURL strips everything but the product path from an Amazon URL.
// URLs without a product path are returned unchanged.
func SimplifyURL(u *url.URL) *url.URL {
	m := productPath.FindStringSubmatch(u.String())
	if m == nil {
		return u
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: m[1]}
}

// Fetcher downloads product pages with browser-like headers.
type Fetcher struct {
	client *http.Client
	log    *log.Logger
}

func NewFetcher(timeout time.Duration, lg *log.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, log: lg}
}

// Fetch retrieves the HTML of u, following redirects.
func (f *Fetcher) Fetch(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	f.log.Printf("bookpage: GET %s", u)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &client.StatusError{Code: resp.StatusCode, Body: resp.Request.URL.String()}
	}
	return string(body), nil
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// ExtractTitle returns the trimmed text of #productTitle.
func ExtractTitle(html string) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		return "", ErrTitleNotFound
	}
	return title, nil
}

// ExtractImage picks the product image from the #landingImage dynamic image
// map, preferring the variant already rendered at height, and rewrites its
// size token to request that height.
func ExtractImage(html string, height int) (string, error) {
	if height <= 0 {
		height = DefaultImageHeight
	}
	doc, err := parse(html)
	if err != nil {
		return "", err
	}
	raw, ok := doc.Find("#landingImage").First().Attr("data-a-dynamic-image")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrImageNotFound
	}
	urls, err := objectKeys(raw)
	if err != nil {
		return "", fmt.Errorf("decode data-a-dynamic-image: %w", err)
	}
	if len(urls) == 0 {
		return "", ErrNoImageURLs
	}
	sy := "_SY" + strconv.Itoa(height) + "_"
	picked := urls[0]
	for _, u := range urls {
		if strings.Contains(u, sy) {
			picked = u
			break
		}
	}
	return ResizeImage(picked, height), nil
}

// ResizeImage replaces the size token before the extension with _SY<height>_.
func ResizeImage(u string, height int) string {
	return sizeToken.ReplaceAllString(u, "._SY"+strconv.Itoa(height)+"_.$1$2")
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Body is the page text: a tag line, a link to the product and its image.
func Body(tag, title, productURL, image string) string {
	return "#" + tag + "\n[" + title + " " + productURL + "]\n[" + image + "]"
}

// NewPageURL opens the editor for a new page titled title with body
// prefilled.
func NewPageURL(base, project, title, body string) string {
	return client.PageURL(base, project, title) + "?body=" + queryEscape(body)
}

// queryEscape escapes like encodeURIComponent: spaces become %20, not '+'.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Draft is the outcome of the book page pipeline.
type Draft struct {
	ProductURL string `json:"product_url"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Body       string `json:"body"`
	PageURL    string `json:"page_url"`
}

type Options struct {
	BaseURL     string
	Project     string
	Tag         string
	ImageHeight int
}

// PageFetcher returns the HTML of a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, u string) (string, error)
}

type Builder struct {
	fetcher PageFetcher
	opts    Options
}

func NewBuilder(f PageFetcher, opts Options) *Builder {
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}
	if opts.ImageHeight <= 0 {
		opts.ImageHeight = DefaultImageHeight
	}
	return &Builder{fetcher: f, opts: opts}
}

// Create validates rawURL, fetches the product page and assembles the draft.
func (b *Builder) Create(ctx context.Context, rawURL string) (Draft, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return Draft{}, err
	}
	product := SimplifyURL(u).String()
	html, err := b.fetcher.Fetch(ctx, product)
	if err != nil {
		return Draft{}, fmt.Errorf("fetch product page: %w", err)
	}
	title, err := ExtractTitle(html)
	if err != nil {
		return Draft{}, err
	}
	image, err := ExtractImage(html, b.opts.ImageHeight)
	if err != nil {
		return Draft{}, err
	}
	body := Body(b.opts.Tag, title, product, image)
	return Draft{
		ProductURL: product,
		Title:      title,
		Image:      image,
		Body:       body,
		PageURL:    NewPageURL(b.opts.BaseURL, b.opts.Project, title, body),
	}, nil
}
