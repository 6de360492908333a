package metadata

import (
	"net/url"
	"strings"
	"testing"
)

func TestParseHead(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantT    string
		wantDesc string
		wantIcon string
	}{
		{
			name:     "basic head",
			doc:      `<html><head><title>  Hello,   World </title><meta name="description" content="A page"><link rel="icon" href="/fav.png"></head></html>`,
			wantT:    "Hello, World",
			wantDesc: "A page",
			wantIcon: "/fav.png",
		},
		{
			name:     "attribute order and case",
			doc:      `<HEAD><META CONTENT="Reversed" NAME="Description"><LINK HREF="i.ico" REL="Shortcut Icon"></HEAD>`,
			wantDesc: "Reversed",
			wantIcon: "i.ico",
		},
		{
			name:     "og description fallback",
			doc:      `<head><meta property="og:description" content="From OG"></head>`,
			wantDesc: "From OG",
		},
		{
			name:     "name beats og regardless of order",
			doc:      `<head><meta property="og:description" content="og"><meta name="description" content="plain"></head>`,
			wantDesc: "plain",
		},
		{
			name:  "entities in title are decoded once",
			doc:   `<title>Tom &amp; Jerry &lt;b&gt;bold&lt;/b&gt;</title>`,
			wantT: "Tom & Jerry <b>bold</b>",
		},
		{
			name:  "escaped element name survives",
			doc:   `<head><title>Use &lt;div&gt; elements wisely</title></head>`,
			wantT: "Use <div> elements wisely",
		},
		{
			name:  "double escaped entity stays literal",
			doc:   `<head><title>Write &amp;lt; for less-than</title></head>`,
			wantT: "Write &lt; for less-than",
		},
		{
			name:     "escaped markup in description",
			doc:      `<head><meta name="description" content="The &lt;video&gt;   tag explained"></head>`,
			wantDesc: "The <video> tag explained",
		},
		{
			name:     "apple touch icon counts",
			doc:      `<head><link rel="apple-touch-icon" href="/apple.png"><link rel="icon" href="/second.png"></head>`,
			wantIcon: "/apple.png",
		},
		{
			name:     "stylesheet is not an icon",
			doc:      `<head><link rel="stylesheet" href="/s.css"></head>`,
			wantIcon: "",
		},
		{
			name:     "stops at body",
			doc:      `<head><title>T</title></head><body><meta name="description" content="late"></body>`,
			wantT:    "T",
			wantDesc: "",
		},
		{
			name:  "first title wins",
			doc:   `<title>one</title><svg><title>two</title></svg>`,
			wantT: "one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := parseHead(strings.NewReader(tt.doc))
			if h.title != tt.wantT {
				t.Errorf("title = %q, want %q", h.title, tt.wantT)
			}
			if h.desc() != tt.wantDesc {
				t.Errorf("description = %q, want %q", h.desc(), tt.wantDesc)
			}
			if h.icon != tt.wantIcon {
				t.Errorf("icon = %q, want %q", h.icon, tt.wantIcon)
			}
		})
	}
}

func TestResolveIcon(t *testing.T) {
	page, _ := url.Parse("https://example.com/blog/post?id=1")

	tests := []struct {
		href string
		want string
	}{
		{href: "https://cdn.example.net/i.png", want: "https://cdn.example.net/i.png"},
		{href: "//cdn.example.net/i.png", want: "https://cdn.example.net/i.png"},
		{href: "/static/i.png", want: "https://example.com/static/i.png"},
		{href: "img/i.png", want: "https://example.com/img/i.png"},
		{href: "../i.png", want: "https://example.com/i.png"},
		{href: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := resolveIcon(page, tt.href); got != tt.want {
				t.Errorf("resolveIcon(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        bool
	}{
		{name: "declared html", contentType: "text/html; charset=utf-8", body: "", want: true},
		{name: "declared image", contentType: "image/png", body: "<html>", want: false},
		{name: "missing type, html body", contentType: "", body: "<!DOCTYPE html><html><head>", want: true},
		{name: "text/plain with html body", contentType: "text/plain", body: "<html><head><title>x</title>", want: true},
		{name: "json", contentType: "", body: `{"a":1}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHTML(tt.contentType, []byte(tt.body)); got != tt.want {
				t.Errorf("isHTML() = %v, want %v", got, tt.want)
			}
		})
	}
}
