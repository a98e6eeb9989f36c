package build

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/yuin/goldmark"

	"github.com/Azdaroth/inkpress/internal/config"
	"github.com/Azdaroth/inkpress/internal/logger"
	"github.com/Azdaroth/inkpress/internal/post"
	"github.com/Azdaroth/inkpress/internal/render"
	"github.com/Azdaroth/inkpress/internal/site"
)

// Builder runs the full build pipeline: clean, copy static assets, scan
// content, render pages into the output directory.
type Builder struct {
	cfg    config.Config
	params map[string]interface{}
	log    *logger.Logger
	md     goldmark.Markdown
}

func New(cfg config.Config, params map[string]interface{}, log *logger.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		params: params,
		log:    log,
		md:     render.NewMarkdown(cfg.HighlightStyle),
	}
}

func (b *Builder) Run() error {
	start := time.Now()
	b.log.BuildStarted(b.cfg.ContentDir, b.cfg.OutputDir)

	if _, err := os.Stat(b.cfg.ContentDir); os.IsNotExist(err) {
		return fmt.Errorf("content directory %q not found", b.cfg.ContentDir)
	}
	if _, err := os.Stat(b.cfg.LayoutsDir); os.IsNotExist(err) {
		return fmt.Errorf("layouts directory %q not found", b.cfg.LayoutsDir)
	}

	if err := os.RemoveAll(b.cfg.OutputDir); err != nil {
		return fmt.Errorf("failed to remove output directory %q: %w", b.cfg.OutputDir, err)
	}
	if err := os.MkdirAll(b.cfg.OutputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", b.cfg.OutputDir, err)
	}

	if _, err := os.Stat(b.cfg.StaticDir); err == nil {
		if err := copyDirContents(b.cfg.StaticDir, b.cfg.OutputDir); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
	} else {
		b.log.Debug("static directory not found, skipping copy", "dir", b.cfg.StaticDir)
	}

	layouts, err := render.LoadLayouts(b.cfg.LayoutsDir)
	if err != nil {
		return err
	}

	s, err := site.Scan(b.cfg.ContentDir, b.log)
	if err != nil {
		return err
	}
	s.Title = b.cfg.SiteTitle
	s.BaseURL = b.cfg.BaseURL
	s.Params = b.params

	postItems, err := b.renderItems(s.Posts)
	if err != nil {
		return err
	}
	pageItems, err := b.renderItems(s.Pages)
	if err != nil {
		return err
	}

	// Output paths are derived from filenames; two sources claiming one
	// path is a content error, not something to silently overwrite.
	seen := make(map[string]string)
	claim := func(outPath, source string) error {
		if prev, ok := seen[outPath]; ok {
			return fmt.Errorf("output path %q claimed by both %q and %q", outPath, prev, source)
		}
		seen[outPath] = source
		return nil
	}

	for _, item := range postItems {
		if err := b.writeDocument(layouts, s, item, render.PostLayout, postItems, claim); err != nil {
			return err
		}
	}
	for _, item := range pageItems {
		if err := b.writeDocument(layouts, s, item, render.PageLayout, postItems, claim); err != nil {
			return err
		}
	}

	if err := b.writeHome(layouts, s, postItems); err != nil {
		return err
	}
	if err := b.writeArchive(layouts, s, postItems); err != nil {
		return err
	}
	if err := b.writeCategories(layouts, s, postItems, claim); err != nil {
		return err
	}

	b.log.BuildCompleted(len(postItems), len(pageItems), time.Since(start))
	return nil
}

func (b *Builder) renderItems(posts []*post.Post) ([]*render.Item, error) {
	items := make([]*render.Item, 0, len(posts))
	for _, p := range posts {
		content, err := render.ToHTML(b.md, p.Body)
		if err != nil {
			return nil, fmt.Errorf("post %q: %w", p.SourcePath, err)
		}
		excerpt := content
		if p.HasMore {
			if excerpt, err = render.ToHTML(b.md, p.Excerpt); err != nil {
				return nil, fmt.Errorf("post %q excerpt: %w", p.SourcePath, err)
			}
		}
		items = append(items, &render.Item{
			Post:        p,
			Permalink:   p.Permalink(),
			Content:     content,
			ExcerptHTML: excerpt,
		})
	}
	return items, nil
}

func (b *Builder) writeDocument(layouts *render.Layouts, s *site.Site, item *render.Item, preferred string, all []*render.Item, claim func(string, string) error) error {
	name, missing := layouts.Resolve(item.Layout, preferred)
	if missing != "" {
		b.log.LayoutFallback(missing, name, item.Title)
	}

	outPath := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(item.Permalink), "index.html")
	if err := claim(outPath, item.SourcePath); err != nil {
		return err
	}

	ctx := render.Context{Site: s, Item: item, Items: all}
	return b.writePage(layouts, name, outPath, ctx)
}

// The homepage layout is required; a site without an index is broken.
func (b *Builder) writeHome(layouts *render.Layouts, s *site.Site, posts []*render.Item) error {
	if !layouts.Has(render.HomeLayout) {
		return fmt.Errorf("homepage layout %q not found in %q", render.HomeLayout, b.cfg.LayoutsDir)
	}
	recent := posts
	if len(recent) > b.cfg.HomePosts {
		recent = recent[:b.cfg.HomePosts]
	}
	ctx := render.Context{Site: s, Items: recent}
	return b.writePage(layouts, render.HomeLayout, filepath.Join(b.cfg.OutputDir, "index.html"), ctx)
}

func (b *Builder) writeArchive(layouts *render.Layouts, s *site.Site, posts []*render.Item) error {
	if !layouts.Has(render.ArchiveLayout) {
		b.log.Debug("archive layout not found, skipping", "layout", render.ArchiveLayout)
		return nil
	}
	ctx := render.Context{Site: s, Items: posts}
	return b.writePage(layouts, render.ArchiveLayout, filepath.Join(b.cfg.OutputDir, "archive", "index.html"), ctx)
}

func (b *Builder) writeCategories(layouts *render.Layouts, s *site.Site, posts []*render.Item, claim func(string, string) error) error {
	if len(s.CategoryNames) == 0 {
		return nil
	}
	if !layouts.Has(render.CategoryLayout) {
		b.log.Debug("category layout not found, skipping", "layout", render.CategoryLayout)
		return nil
	}

	byPost := make(map[*post.Post]*render.Item, len(posts))
	for _, item := range posts {
		byPost[item.Post] = item
	}

	for _, name := range s.CategoryNames {
		var items []*render.Item
		for _, p := range s.Categories[name] {
			items = append(items, byPost[p])
		}
		outPath := filepath.Join(b.cfg.OutputDir, "categories", post.Slugify(name), "index.html")
		if err := claim(outPath, "category "+name); err != nil {
			return err
		}
		ctx := render.Context{Site: s, Items: items, Category: name}
		if err := b.writePage(layouts, render.CategoryLayout, outPath, ctx); err != nil {
			return err
		}
	}
	return nil
}

// writePage renders a layout into memory and writes it atomically, so a
// serve-mode rebuild never exposes a half-written file.
func (b *Builder) writePage(layouts *render.Layouts, layout, outPath string, ctx render.Context) error {
	if err := os.MkdirAll(filepath.Dir(outPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", filepath.Dir(outPath), err)
	}

	var buf bytes.Buffer
	if err := layouts.Execute(&buf, layout, ctx); err != nil {
		return fmt.Errorf("rendering %q: %w", outPath, err)
	}
	if err := renameio.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", outPath, err)
	}

	b.log.PageWritten(outPath, layout)
	return nil
}

// copyDirContents recursively copies contents from src to dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		return copyFile(path, dstPath)
	})
}

// copyFile copies a single file from srcFile to dstFile.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", filepath.Dir(dstFile), err)
	}

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}

	if srcInfo, err := os.Stat(srcFile); err == nil {
		if err := os.Chmod(dstFile, srcInfo.Mode()); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", dstFile, err)
		}
	}
	return nil
}
