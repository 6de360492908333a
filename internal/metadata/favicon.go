package metadata

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/peterhellberg/link"
)

// resolveIcon turns an icon href into an absolute URL relative to the page origin.
// Path-relative hrefs are taken relative to the origin root, not the page path.
func resolveIcon(page *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	root := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/"}
	return root.ResolveReference(ref).String()
}

// headerIcon returns the first icon advertised in the response Link header.
func headerIcon(resp *http.Response) string {
	for _, l := range link.ParseResponse(resp) {
		for _, rel := range strings.Fields(strings.ToLower(l.Rel)) {
			if strings.Contains(rel, "icon") && l.URI != "" {
				return l.URI
			}
		}
	}
	return ""
}

func originIcon(page *url.URL) string {
	return page.Scheme + "://" + page.Host + "/favicon.ico"
}

// serviceIcon builds the third-party lookup URL for host.
// An empty template falls back to the direct /favicon.ico guess.
func (e *Extractor) serviceIcon(page *url.URL) string {
	if e.opts.FaviconService == "" {
		return originIcon(page)
	}
	return fmt.Sprintf(e.opts.FaviconService, url.QueryEscape(page.Hostname()))
}
