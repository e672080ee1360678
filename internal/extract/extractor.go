// Package extract parses the curated markdown document into catalog entries.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/starlist/starlist/internal/app"
)

// defaultExcludedHeadings are structural section names that must never
// become categories.
var defaultExcludedHeadings = []string{
	"table of contents",
	"contents",
	"contributing",
	"contribute",
	"license",
	"citations",
	"similar lists",
	"acknowledgements",
}

// languageTagRe matches a leading "[R] - " style tag in descriptions.
var languageTagRe = regexp.MustCompile(`^\[[^\]]+\]\s*-\s*`)

// repoNameScrubRe removes characters github never allows in repo names,
// typically trailing markdown punctuation glued to the url.
var repoNameScrubRe = regexp.MustCompile(`[^\w\-.]`)

// Option configures an Extractor.
type Option func(*Extractor)

// WithExcludedHeadings replaces the default heading exclusion set.
func WithExcludedHeadings(headings []string) Option {
	return func(e *Extractor) {
		e.excluded = make(map[string]struct{}, len(headings))
		for _, h := range headings {
			e.excluded[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		}
	}
}

// Extractor scans markdown and produces catalog entries in document order.
//
// The scan is an explicit finite-state pass over the goldmark AST: the only
// state is the current category, updated on level-2/3 headings and read on
// list items. Identical input always yields identical output.
type Extractor struct {
	md       goldmark.Markdown
	excluded map[string]struct{}
}

var _ app.Extractor = &Extractor{}

// New creates new Extractor instance.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
	WithExcludedHeadings(defaultExcludedHeadings)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses doc and returns entries with stars unset, plus the number
// of list items skipped because their repository link was malformed.
func (e *Extractor) Extract(doc string) ([]app.Entry, int, error) {
	src := []byte(doc)
	root := e.md.Parser().Parse(text.NewReader(src))

	var (
		entries  []app.Entry
		skipped  int
		category string
	)

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 && node.Level != 3 {
				return ast.WalkSkipChildren, nil
			}
			title := strings.TrimSpace(nodeText(node, src))
			if _, excluded := e.excluded[strings.ToLower(title)]; excluded {
				// Items under a structural section carry no category
				// and must not inherit the previous one.
				category = ""
			} else {
				category = title
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			entry, ok, malformed := e.entryFromItem(node, src, category)
			if malformed {
				skipped++
			}
			if ok {
				entries = append(entries, entry)
			}
			// Nested list items are visited on their own.
			return ast.WalkContinue, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking markdown ast: %w", err)
	}

	return entries, skipped, nil
}

// entryFromItem inspects a single list item. ok reports a produced entry,
// malformed reports a github link that could not be normalized (or an item
// found outside any category section).
func (e *Extractor) entryFromItem(item *ast.ListItem, src []byte, category string) (app.Entry, bool, bool) {
	block := firstTextBlock(item)
	if block == nil {
		return app.Entry{}, false, false
	}

	var scan itemScan
	scan.walk(block, src)

	if scan.link == nil {
		// Prose line, or list item linking elsewhere.
		return app.Entry{}, false, false
	}

	owner, repo, ok := parseRepoURL(scan.dest)
	if !ok {
		return app.Entry{}, false, true
	}
	if category == "" {
		return app.Entry{}, false, true
	}

	name := strings.TrimSpace(nodeText(scan.link, src))
	if name == "" {
		name = owner + "/" + repo
	}

	return app.Entry{
		Name:        name,
		Owner:       owner,
		Repo:        repo,
		Category:    category,
		Description: cleanDescription(scan.desc.String()),
		URL:         "https://github.com/" + owner + "/" + repo,
	}, true, false
}

// itemScan walks a list item's inline tree in document order looking for
// the first github link. Text before the link (or inside it) is not part
// of the description; everything after it is.
type itemScan struct {
	link ast.Node
	dest string
	desc strings.Builder
}

func (s *itemScan) walk(n ast.Node, src []byte) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if s.link != nil {
			s.desc.WriteString(nodeText(child, src))
			continue
		}
		if dest, ok := linkDestination(child, src); ok {
			if isGithubURL(dest) {
				s.link = child
				s.dest = dest
			}
			continue
		}
		// Links may hide inside emphasis or other inline containers.
		s.walk(child, src)
	}
}

// firstTextBlock returns the list item's paragraph or text block child.
func firstTextBlock(item *ast.ListItem) ast.Node {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			return child
		}
	}
	return nil
}

// linkDestination returns the target of a link or autolink node.
func linkDestination(n ast.Node, src []byte) (string, bool) {
	switch node := n.(type) {
	case *ast.Link:
		return string(node.Destination), true
	case *ast.AutoLink:
		return string(node.URL(src)), true
	}
	return "", false
}

func isGithubURL(dest string) bool {
	d := strings.ToLower(dest)
	return strings.Contains(d, "://github.com/") ||
		strings.Contains(d, "://www.github.com/") ||
		strings.HasPrefix(d, "github.com/")
}

// parseRepoURL extracts the owner/repo pair from a github URL, stripping
// any trailing path segments, query or fragment. Case is preserved.
func parseRepoURL(dest string) (owner, repo string, ok bool) {
	if strings.HasPrefix(strings.ToLower(dest), "github.com/") {
		dest = "https://" + dest
	}
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", false
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return "", "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", false
	}
	owner = segments[0]
	repo = repoNameScrubRe.ReplaceAllString(segments[1], "")
	if owner == "" || repo == "" {
		return "", "", false
	}

	return owner, repo, true
}

// cleanDescription trims link separators and an optional leading language
// tag, then strips emoji.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-–—:, \t")
	s = languageTagRe.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "-–—:, \t")
	return strings.TrimSpace(stripEmoji(s))
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	writeNodeText(&b, n, src)
	return b.String()
}

func writeNodeText(b *strings.Builder, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Text:
		b.Write(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			b.WriteByte(' ')
		}
		return
	case *ast.String:
		b.Write(node.Value)
		return
	case *ast.AutoLink:
		b.Write(node.Label(src))
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		writeNodeText(b, child, src)
	}
}
