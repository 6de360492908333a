package metadata

import (
	"bufio"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/utils"
)

const sniffLen = 3072

// Source produces page metadata. Implementations never fail: every error
// degrades to defaults.
type Source interface {
	Extract(ctx context.Context, rawURL string) domain.Metadata
}

// Options tunes the page fetch.
type Options struct {
	Timeout        time.Duration
	MaxBytes       int
	UserAgent      string
	FaviconService string // fmt template, "%s" is the hostname

	// Client overrides the HTTP client (tests).
	Client *http.Client
}

// Extractor fetches a page and reads title, description and favicon from its head.
type Extractor struct {
	client *http.Client
	opts   Options
	log    logger.Logger
}

// NewExtractor creates an extractor with the given limits.
func NewExtractor(opts Options, log logger.Logger) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 64 * 1024
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Extractor{client: client, opts: opts, log: log}
}

// Extract fetches rawURL and returns its metadata.
// title defaults to rawURL, description to "". favicon is only empty when
// rawURL cannot be parsed.
func (e *Extractor) Extract(ctx context.Context, rawURL string) domain.Metadata {
	md := domain.Metadata{Title: rawURL}

	page, err := url.Parse(rawURL)
	if err != nil || page.Host == "" || (page.Scheme != "http" && page.Scheme != "https") {
		e.log.Debug("metadata: unparseable url", logger.String("url", rawURL))
		return md
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		md.Favicon = e.serviceIcon(page)
		return md
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Debug("metadata: fetch failed",
			logger.String("url", rawURL),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		md.Favicon = e.serviceIcon(page)
		return md
	}
	defer utils.Close(resp.Body)

	// the host answered, so a direct guess is better than the lookup service
	if resp.StatusCode >= http.StatusBadRequest {
		e.log.Debug("metadata: error status",
			logger.String("url", rawURL),
			logger.Int("status", resp.StatusCode),
		)
		md.Favicon = originIcon(page)
		return md
	}
	md.Fetched = true

	h := e.readHead(resp)
	if h.title != "" {
		md.Title = h.title
	}
	md.Description = h.desc()

	icon := h.icon
	if icon == "" {
		icon = headerIcon(resp)
	}
	md.Favicon = resolveIcon(page, icon)
	if md.Favicon == "" {
		md.Favicon = originIcon(page)
	}

	e.log.Debug("metadata: extracted",
		logger.String("url", rawURL),
		logger.Duration("elapsed", time.Since(start)),
		logger.Bool("has_description", md.Description != ""),
	)
	return md
}

// readHead streams at most MaxBytes of the body into the tokenizer.
func (e *Extractor) readHead(resp *http.Response) head {
	body := bufio.NewReaderSize(io.LimitReader(resp.Body, int64(e.opts.MaxBytes)), sniffLen)
	contentType := resp.Header.Get("Content-Type")

	peek, _ := body.Peek(sniffLen)
	if !isHTML(contentType, peek) {
		return head{}
	}

	r, err := charset.NewReader(body, contentType)
	if err != nil {
		r = body
	}
	return parseHead(r)
}

// isHTML trusts an explicit HTML content type, otherwise sniffs the payload.
func isHTML(contentType string, peek []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/html", "application/xhtml+xml":
			return true
		}
		if !strings.HasPrefix(mt, "text/") && mt != "application/octet-stream" {
			return false
		}
	}
	detected := mimetype.Detect(peek)
	return detected.Is("text/html") || detected.Is("application/xhtml+xml")
}
