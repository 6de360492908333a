package metadata

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// head is what the extractor cares about in a document's <head>.
type head struct {
	title         string
	description   string
	ogDescription string
	icon          string
}

// parseHead tokenizes r until </head>, <body> or EOF, whichever comes first.
// Reading stops there, so callers only pay for the head of the page.
func parseHead(r io.Reader) head {
	z := html.NewTokenizer(r)

	var (
		h         head
		title     strings.Builder
		inTitle   bool
		titleSeen bool
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, byte cap or a broken stream: keep what we have
			h.title = cleanText(title.String())
			return h

		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "title":
				if !titleSeen {
					inTitle = true
				}
			case "meta":
				if hasAttr {
					h.applyMeta(attrs(z))
				}
			case "link":
				if hasAttr && h.icon == "" {
					a := attrs(z)
					if strings.Contains(strings.ToLower(a["rel"]), "icon") {
						h.icon = strings.TrimSpace(a["href"])
					}
				}
			case "body":
				h.title = cleanText(title.String())
				return h
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				if inTitle {
					inTitle = false
					titleSeen = true
				}
			case "head":
				h.title = cleanText(title.String())
				return h
			}
		}
	}
}

func (h *head) applyMeta(a map[string]string) {
	content := cleanText(a["content"])
	if content == "" {
		return
	}
	switch {
	case strings.EqualFold(a["name"], "description") && h.description == "":
		h.description = content
	case strings.EqualFold(a["property"], "og:description") && h.ogDescription == "":
		h.ogDescription = content
	}
}

// desc returns the meta description, falling back to og:description.
func (h head) desc() string {
	if h.description != "" {
		return h.description
	}
	return h.ogDescription
}

func attrs(z *html.Tokenizer) map[string]string {
	out := make(map[string]string, 4)
	for {
		key, val, more := z.TagAttr()
		k := strings.ToLower(string(key))
		if _, dup := out[k]; !dup {
			out[k] = string(val)
		}
		if !more {
			return out
		}
	}
}

// cleanText collapses whitespace. The tokenizer has already decoded
// entities in title text and attribute values, so the text is kept as is.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
