
package parser

import (
	"bytes"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultOrigin is the site every details link is resolved against.
const DefaultOrigin = "https://clustrmaps.com"

type Parser struct {
	origin *url.URL
}

// New returns a Parser resolving links against origin ("https://host").
// An unparsable or empty origin falls back to DefaultOrigin.
func New(origin string) *Parser {
	u, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		u, _ = url.Parse(DefaultOrigin)
	}
	return &Parser{origin: u}
}

func (p *Parser) Origin() string { return p.origin.String() }

var whitespaceRe = regexp.MustCompile(`\s+`)

// Document decodes raw markup to UTF-8 and parses it.
func (p *Parser) Document(r io.Reader, contentType string) (*goquery.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
}

// DocumentString is Document for markup already held as a string.
func (p *Parser) DocumentString(markup string) (*goquery.Document, error) {
	return p.Document(strings.NewReader(markup), "text/html; charset=utf-8")
}

// Title returns the trimmed <title> text, or "" for a nil document.
func Title(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return clean(doc.Find("title").First().Text())
}

// resolve turns an href into an absolute URL on the origin host. Links
// pointing at any other host are dropped.
func (p *Parser) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := p.origin.ResolveReference(ref)
	if !strings.EqualFold(abs.Host, p.origin.Host) {
		return ""
	}
	return abs.String()
}

func clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
