// Package web extracts recipe content from generic web pages: embedded
// structured data when present, visible page text otherwise.
package web

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/recipebox/recipebox/internal/infrastructure/extraction"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
)

// Config bounds extracted content.
type Config struct {
	MaxContent int
	MinContent int
	UserAgent  string
}

// Extractor implements the web content extractor.
type Extractor struct {
	fetcher outbound.PageFetcher
	cfg     Config
	logger  *zap.Logger
}

// NewExtractor creates a web extractor.
func NewExtractor(fetcher outbound.PageFetcher, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.MaxContent <= 0 {
		cfg.MaxContent = 40000
	}
	if cfg.MinContent <= 0 {
		cfg.MinContent = 50
	}
	return &Extractor{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.Named("web-extractor"),
	}
}

// Extract fetches pageURL and returns its extracted content.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	body, err := e.fetcher.Fetch(ctx, pageURL, extraction.BrowserHeaders(e.cfg.UserAgent))
	if err != nil {
		return "", err
	}

	content := e.ContentFromHTML(body, pageURL)
	if length := utf8.RuneCountInString(content); length < e.cfg.MinContent {
		e.logger.Warn("Extracted content too short", zap.String("url", pageURL), zap.Int("length", length))
		return "", errors.NewNoContentError(pageURL, length)
	}
	return content, nil
}

// ContentFromHTML prefers an embedded Recipe node and falls back to the
// page's visible text. It never fails; empty output means nothing usable.
func (e *Extractor) ContentFromHTML(body []byte, pageURL string) string {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		e.logger.Debug("HTML parse failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}

	if recipe, ok := structuredRecipe(goquery.NewDocumentFromNode(root)); ok {
		e.logger.Debug("Found structured recipe data", zap.String("url", pageURL))
		return recipe
	}

	text := Truncate(VisibleText(root), e.cfg.MaxContent)
	if utf8.RuneCountInString(text) >= e.cfg.MinContent {
		return text
	}

	if article := readableText(body, pageURL); utf8.RuneCountInString(article) > utf8.RuneCountInString(text) {
		e.logger.Debug("Using readability text", zap.String("url", pageURL))
		return Truncate(article, e.cfg.MaxContent)
	}
	return text
}

// structuredRecipe checks every ld+json block in document order.
func structuredRecipe(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find(`script[type*="ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if recipe, ok := FindRecipe([]byte(s.Text())); ok {
			found = recipe
			return false
		}
		return true
	})
	return found, found != ""
}

var skippedText = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// VisibleText joins all text nodes outside script, style and noscript with
// single spaces and collapses whitespace runs.
func VisibleText(root *html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedText[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Truncate caps s at limit runes.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

func readableText(body []byte, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return ""
	}

	return strings.Join(strings.Fields(article.TextContent), " ")
}
