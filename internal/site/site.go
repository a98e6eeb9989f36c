package site

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Azdaroth/inkpress/internal/logger"
	"github.com/Azdaroth/inkpress/internal/post"
)

// Site holds everything the templates can see: site-wide parameters from
// config.yaml plus the collected content.
type Site struct {
	Title   string
	BaseURL string
	Params  map[string]interface{}

	Posts         []*post.Post
	Pages         []*post.Post
	Categories    map[string][]*post.Post
	CategoryNames []string
}

// Scan walks contentDir and collects every Markdown document. Dated
// filenames become posts, the rest become pages. Unpublished posts are
// skipped.
func Scan(contentDir string, log *logger.Logger) (*Site, error) {
	if _, err := os.Stat(contentDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("content directory %q not found", contentDir)
	}

	s := &Site{
		Categories: make(map[string][]*post.Post),
	}

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		isPost := post.IsPostFilename(name)
		if !isPost && !post.IsPageFilename(name) {
			return nil
		}

		p, err := post.Load(path)
		if err != nil {
			return err
		}
		if !p.Published {
			log.PostSkipped(path, "published: false")
			return nil
		}

		if isPost {
			s.Posts = append(s.Posts, p)
		} else {
			s.Pages = append(s.Pages, p)
		}
		log.PostLoaded(path, p.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sortPosts()
	s.indexCategories()
	return s, nil
}

// Posts are ordered newest first; posts without a date would sort last,
// though Scan never produces one.
func (s *Site) sortPosts() {
	sort.Slice(s.Posts, func(i, j int) bool {
		a, b := s.Posts[i], s.Posts[j]
		if a.Date.IsZero() {
			return false
		}
		if b.Date.IsZero() {
			return true
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})

	sort.Slice(s.Pages, func(i, j int) bool {
		return s.Pages[i].Slug < s.Pages[j].Slug
	})
}

func (s *Site) indexCategories() {
	for _, p := range s.Posts {
		for _, c := range p.Categories {
			s.Categories[c] = append(s.Categories[c], p)
		}
	}
	s.CategoryNames = make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		s.CategoryNames = append(s.CategoryNames, name)
	}
	sort.Strings(s.CategoryNames)
}

// Recent returns up to n of the newest posts.
func (s *Site) Recent(n int) []*post.Post {
	if n > len(s.Posts) {
		n = len(s.Posts)
	}
	return s.Posts[:n]
}
