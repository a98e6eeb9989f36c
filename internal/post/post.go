package post

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Post is a single Markdown document: a dated article or a standalone page.
type Post struct {
	SourcePath string
	Slug       string
	Date       time.Time
	Title      string
	Layout     string
	Comments   bool
	Categories []string
	Published  bool
	Body       string
	Excerpt    string
	HasMore    bool
	Front      map[string]interface{}
}

var (
	filenamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(?i:md|markdown)$`)
	pagePattern     = regexp.MustCompile(`^(.+)\.(?i:md|markdown)$`)
	moreMarker      = regexp.MustCompile(`(?m)^\s*<!--\s*more\s*-->\s*$`)
)

// Front-matter dates as written in Jekyll-era posts, most specific first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFilename splits a post filename of the form YYYY-MM-DD-slug.md
// into its publish date and slug.
func ParseFilename(name string) (time.Time, string, error) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("filename %q does not match YYYY-MM-DD-slug.md", name)
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("filename %q has invalid date: %w", name, err)
	}
	return date, m[2], nil
}

// IsPostFilename reports whether name looks like a dated post file.
func IsPostFilename(name string) bool {
	return filenamePattern.MatchString(name)
}

// IsPageFilename reports whether name is a Markdown file without a date prefix.
func IsPageFilename(name string) bool {
	return pagePattern.MatchString(name) && !filenamePattern.MatchString(name)
}

// Load reads and parses a post file. Dated filenames supply the fallback
// date and the slug; pages take their slug from the bare filename.
func Load(path string) (*Post, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return Parse(path, fileBytes)
}

// Parse builds a Post from raw file bytes. The path is used for the
// filename-derived slug and date and for error messages.
func Parse(path string, fileBytes []byte) (*Post, error) {
	name := filepath.Base(path)

	var fileDate time.Time
	var slug string
	if IsPostFilename(name) {
		d, s, err := ParseFilename(name)
		if err != nil {
			return nil, err
		}
		fileDate, slug = d, s
	} else if m := pagePattern.FindStringSubmatch(name); m != nil {
		slug = m[1]
	} else {
		return nil, fmt.Errorf("file %q is not a Markdown document", path)
	}

	fm := make(map[string]interface{})
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
	if err != nil {
		// Tolerate documents without a front-matter block: the whole
		// file becomes the body.
		body = fileBytes
		fm = make(map[string]interface{})
	}

	p := &Post{
		SourcePath: path,
		Slug:       slug,
		Date:       fileDate,
		Published:  true,
		Body:       string(body),
		Front:      fm,
	}

	if title, ok := fm["title"].(string); ok && title != "" {
		p.Title = title
	} else {
		p.Title = titleFromSlug(slug)
	}

	if layout, ok := fm["layout"].(string); ok {
		p.Layout = layout
	}
	if comments, ok := fm["comments"].(bool); ok {
		p.Comments = comments
	}
	if published, ok := fm["published"].(bool); ok {
		p.Published = published
	}

	switch d := fm["date"].(type) {
	case string:
		if parsed, ok := parseDate(d); ok {
			p.Date = parsed
		}
	case time.Time:
		p.Date = d
	}
	// Pages carry no date; posts always have one from the filename if
	// the front-matter omits or mangles it.
	if p.Date.IsZero() && IsPostFilename(name) {
		return nil, fmt.Errorf("post %q has no date in front-matter or filename", path)
	}

	p.Categories = normalizeCategories(fm["categories"])

	if loc := moreMarker.FindStringIndex(p.Body); loc != nil {
		p.Excerpt = strings.TrimRight(p.Body[:loc[0]], "\n")
		p.HasMore = true
	} else {
		p.Excerpt = p.Body
	}

	return p, nil
}

// Permalink returns the output URL for the post: date-encoded for dated
// posts, a flat slug path for pages.
func (p *Post) Permalink() string {
	if IsPostFilename(filepath.Base(p.SourcePath)) {
		return fmt.Sprintf("/%04d/%02d/%02d/%s/", p.Date.Year(), p.Date.Month(), p.Date.Day(), p.Slug)
	}
	return "/" + p.Slug + "/"
}

func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// normalizeCategories accepts both a YAML list and a single scalar string
// (split on whitespace). Order is preserved, duplicates dropped.
func normalizeCategories(v interface{}) []string {
	var raw []string
	switch cats := v.(type) {
	case []interface{}:
		for _, c := range cats {
			if s, ok := c.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Fields(cats)
	}

	var out []string
	seen := make(map[string]bool)
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func titleFromSlug(slug string) string {
	s := strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " ")
	return cases.Title(language.English).String(s)
}

// Slugify turns free text (a category name, a title) into a URL-friendly
// identifier: lowercased, word characters only, hyphen separated.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
