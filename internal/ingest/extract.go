package ingest

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"github.com/pravnik0/pravnik/internal/document"
)

// articleAnchorRe matches the anchor IDs paragraf.rs uses for law
// articles, e.g. "cl68" for Article 68.
var articleAnchorRe = regexp.MustCompile(`^cl(\d+)$`)

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// ExtractPage converts one fetched page into documents: a page-level
// document with the readable main text, plus one document per anchored
// article so citations can point at the exact provision.
func ExtractPage(pageURL *url.URL, body []byte) ([]document.Document, error) {
	// Law portals still serve legacy encodings; sniff and convert to
	// UTF-8 before parsing.
	utf8Body, err := decodeToUTF8(body)
	if err != nil {
		return nil, err
	}
	body = utf8Body

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting readable content: %w", err)
	}

	base := *pageURL
	base.Fragment = ""

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = base.Host + base.Path
	}

	var docs []document.Document

	if content := collapseWhitespace(article.TextContent); content != "" {
		docs = append(docs, document.Document{
			ID:      slugify(base.Host + base.Path),
			Title:   title,
			Content: content,
			URL:     base.String(),
		})
	}

	articleDocs, err := extractArticles(&base, title, body)
	if err != nil {
		return nil, err
	}
	docs = append(docs, articleDocs...)

	if len(docs) == 0 {
		return nil, fmt.Errorf("page %s has no extractable content", base.String())
	}
	return docs, nil
}

// extractArticles finds anchored law articles and emits one document
// per article. The article body is the anchor element's text, extended
// with following siblings up to the next article anchor when the anchor
// itself is only a heading.
func extractArticles(base *url.URL, pageTitle string, body []byte) ([]document.Document, error) {
	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var docs []document.Document
	dom.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		m := articleAnchorRe.FindStringSubmatch(id)
		if m == nil {
			return
		}

		content := collapseWhitespace(sel.Text())
		if content == "" || isArticleAnchor(sel) {
			content = collapseWhitespace(content + " " + siblingText(sel))
		}
		if content == "" {
			return
		}

		u := *base
		u.Fragment = id

		docs = append(docs, document.Document{
			ID:      slugify(base.Host+base.Path) + "-" + id,
			Title:   pageTitle + " - Article " + m[1],
			Content: content,
			URL:     u.String(),
			Article: m[1],
		})
	})

	return docs, nil
}

// decodeToUTF8 converts body to UTF-8, sniffing the source encoding
// from the content itself.
func decodeToUTF8(body []byte) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), "")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	return out, nil
}

// isArticleAnchor reports whether sel is a bare heading or anchor
// element rather than a content container.
func isArticleAnchor(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "a", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// siblingText gathers the text of following siblings until the next
// article anchor.
func siblingText(sel *goquery.Selection) string {
	var b strings.Builder
	for s := sel.Next(); s.Length() > 0; s = s.Next() {
		if id, ok := s.Attr("id"); ok && articleAnchorRe.MatchString(id) {
			break
		}
		if s.Find("[id]").FilterFunction(func(_ int, inner *goquery.Selection) bool {
			id, ok := inner.Attr("id")
			return ok && articleAnchorRe.MatchString(id)
		}).Length() > 0 {
			break
		}
		b.WriteString(s.Text())
		b.WriteString(" ")
	}
	return b.String()
}

// collapseWhitespace trims and folds runs of whitespace into single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// slugify lowercases s and replaces non-alphanumeric runs with dashes.
func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
