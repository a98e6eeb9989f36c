package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Azdaroth/inkpress/internal/post"
	"github.com/Azdaroth/inkpress/internal/site"
)

const (
	// BaseLayout must exist at the root of the layouts directory.
	BaseLayout = "base.html"

	PostLayout     = "post.html"
	PageLayout     = "page.html"
	HomeLayout     = "home.html"
	ArchiveLayout  = "archive.html"
	CategoryLayout = "category.html"
)

// Item is a document prepared for templates: the parsed post plus its
// rendered body and excerpt.
type Item struct {
	*post.Post
	Permalink   string
	Content     template.HTML
	ExcerptHTML template.HTML
}

// Context is the data every layout executes against.
type Context struct {
	Site     *site.Site
	Item     *Item
	Items    []*Item
	Category string
}

// Layouts wraps the parsed layout templates.
type Layouts struct {
	tpl *template.Template
}

// LoadLayouts parses the layouts directory: base.html and partials/ first,
// then the page layouts, home.html last so its definitions win.
func LoadLayouts(dir string) (*Layouts, error) {
	var layoutFiles []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			layoutFiles = append(layoutFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in %q: %w", dir, err)
	}

	var basePath string
	var homePath string
	var partialFiles []string
	var pageFiles []string
	for _, f := range layoutFiles {
		switch {
		case filepath.Base(f) == BaseLayout && filepath.Dir(f) == filepath.Clean(dir):
			basePath = f
		case strings.HasPrefix(filepath.Dir(f), filepath.Join(dir, "partials")):
			partialFiles = append(partialFiles, f)
		case filepath.Base(f) == HomeLayout && filepath.Dir(f) == filepath.Clean(dir):
			homePath = f
		default:
			pageFiles = append(pageFiles, f)
		}
	}

	if basePath == "" {
		return nil, fmt.Errorf("%s not found directly in layouts directory %q", BaseLayout, dir)
	}

	tpl, err := template.ParseFiles(append([]string{basePath}, partialFiles...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", BaseLayout, err)
	}
	if len(pageFiles) > 0 {
		if tpl, err = tpl.ParseFiles(pageFiles...); err != nil {
			return nil, fmt.Errorf("failed to parse page layout files: %w", err)
		}
	}
	if homePath != "" {
		if tpl, err = tpl.ParseFiles(homePath); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", HomeLayout, err)
		}
	}

	return &Layouts{tpl: tpl}, nil
}

// Has reports whether a layout with the given name was parsed.
func (l *Layouts) Has(name string) bool {
	return l.tpl.Lookup(name) != nil
}

// Resolve picks the layout to execute: the front-matter override when it
// exists, then the preferred layout for the document kind, then base.html.
// It returns the chosen name and the name that was requested but missing
// ("" when the first choice was available).
func (l *Layouts) Resolve(override, preferred string) (chosen, missing string) {
	// Front-matter usually names layouts without the extension.
	if override != "" && !strings.HasSuffix(override, ".html") {
		override += ".html"
	}
	if override != "" {
		if l.Has(override) {
			return override, ""
		}
		missing = override
	}
	if l.Has(preferred) {
		return preferred, missing
	}
	if missing == "" {
		missing = preferred
	}
	return BaseLayout, missing
}

// Execute renders the named layout with the given context.
func (l *Layouts) Execute(w io.Writer, name string, ctx Context) error {
	if l.tpl.Lookup(name) == nil {
		return fmt.Errorf("layout %q not found", name)
	}
	if err := l.tpl.ExecuteTemplate(w, name, ctx); err != nil {
		return fmt.Errorf("failed to execute layout %q: %w", name, err)
	}
	return nil
}
