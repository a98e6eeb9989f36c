package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azdaroth/inkpress/internal/config"
	"github.com/Azdaroth/inkpress/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected output file %s", path)
	return string(data)
}

func testConfig(root string) config.Config {
	cfg := config.Default()
	cfg.SiteTitle = "Karol on Code"
	cfg.BaseURL = "https://example.com"
	cfg.ContentDir = filepath.Join(root, "content")
	cfg.LayoutsDir = filepath.Join(root, "layouts")
	cfg.StaticDir = filepath.Join(root, "static")
	cfg.OutputDir = filepath.Join(root, "public")
	return cfg
}

func writeLayouts(t *testing.T, dir string) {
	writeFile(t, filepath.Join(dir, "base.html"),
		`<html><head><title>{{ .Site.Title }}</title></head><body>{{ if .Item }}{{ .Item.Content }}{{ end }}</body></html>`)
	writeFile(t, filepath.Join(dir, "partials", "nav.html"),
		`{{ define "nav" }}<nav>{{ .Site.Title }}</nav>{{ end }}`)
	writeFile(t, filepath.Join(dir, "post.html"),
		`<html><body>{{ template "nav" . }}<article><h1>{{ .Item.Title }}</h1>{{ .Item.Content }}</article></body></html>`)
	writeFile(t, filepath.Join(dir, "page.html"),
		`<html><body><section>{{ .Item.Content }}</section></body></html>`)
	writeFile(t, filepath.Join(dir, "home.html"),
		`<html><body>{{ range .Items }}<h2>{{ .Title }}</h2>{{ .ExcerptHTML }}{{ end }}</body></html>`)
	writeFile(t, filepath.Join(dir, "archive.html"),
		`<html><body><ul>{{ range .Items }}<li>{{ .Title }}</li>{{ end }}</ul></body></html>`)
	writeFile(t, filepath.Join(dir, "category.html"),
		`<html><body><h1>{{ .Category }}</h1>{{ range .Items }}<h2>{{ .Title }}</h2>{{ end }}</body></html>`)
}

func writeContent(t *testing.T, dir string) {
	writeFile(t, filepath.Join(dir, "_posts", "2016-03-12-service-objects.md"), `---
title: "Service Objects"
categories: [Ruby on Rails]
---
Above the fold.

<!--more-->

Below the fold.
`)
	writeFile(t, filepath.Join(dir, "_posts", "2017-08-01-partitioning.md"), `---
title: "Partitioning"
categories: [PostgreSQL]
---
Partitioning body.
`)
	writeFile(t, filepath.Join(dir, "about.md"), `---
title: "About"
---
About body.
`)
}

func TestBuildGeneratesSite(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeLayouts(t, cfg.LayoutsDir)
	writeContent(t, cfg.ContentDir)
	writeFile(t, filepath.Join(cfg.StaticDir, "css", "site.css"), "body { margin: 0 }")

	params := map[string]interface{}{"author": "Karol"}
	require.NoError(t, New(cfg, params, logger.Discard()).Run())

	postPage := readFile(t, filepath.Join(cfg.OutputDir, "2016", "03", "12", "service-objects", "index.html"))
	assert.Contains(t, postPage, "<h1>Service Objects</h1>")
	assert.Contains(t, postPage, "Above the fold.")
	assert.Contains(t, postPage, "Below the fold.")
	assert.Contains(t, postPage, "<nav>Karol on Code</nav>")

	aboutPage := readFile(t, filepath.Join(cfg.OutputDir, "about", "index.html"))
	assert.Contains(t, aboutPage, "About body.")

	home := readFile(t, filepath.Join(cfg.OutputDir, "index.html"))
	assert.Contains(t, home, "<h2>Partitioning</h2>")
	assert.Contains(t, home, "<h2>Service Objects</h2>")
	assert.Contains(t, home, "Above the fold.")
	assert.NotContains(t, home, "Below the fold.", "excerpt must stop at the more marker")

	archive := readFile(t, filepath.Join(cfg.OutputDir, "archive", "index.html"))
	assert.Contains(t, archive, "<li>Partitioning</li>")
	assert.Contains(t, archive, "<li>Service Objects</li>")

	category := readFile(t, filepath.Join(cfg.OutputDir, "categories", "ruby-on-rails", "index.html"))
	assert.Contains(t, category, "<h1>Ruby on Rails</h1>")
	assert.Contains(t, category, "<h2>Service Objects</h2>")
	assert.NotContains(t, category, "Partitioning")

	css := readFile(t, filepath.Join(cfg.OutputDir, "css", "site.css"))
	assert.Equal(t, "body { margin: 0 }", css)
}

func TestBuildCleansOutputDir(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeLayouts(t, cfg.LayoutsDir)
	writeContent(t, cfg.ContentDir)

	stale := filepath.Join(cfg.OutputDir, "stale", "index.html")
	writeFile(t, stale, "old")

	require.NoError(t, New(cfg, nil, logger.Discard()).Run())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale output should be removed")
}

func TestBuildRequiresDirs(t *testing.T) {
	t.Run("missing content dir", func(t *testing.T) {
		root := t.TempDir()
		cfg := testConfig(root)
		writeLayouts(t, cfg.LayoutsDir)

		err := New(cfg, nil, logger.Discard()).Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content directory")
	})

	t.Run("missing layouts dir", func(t *testing.T) {
		root := t.TempDir()
		cfg := testConfig(root)
		writeContent(t, cfg.ContentDir)

		err := New(cfg, nil, logger.Discard()).Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "layouts directory")
	})

	t.Run("missing static dir is fine", func(t *testing.T) {
		root := t.TempDir()
		cfg := testConfig(root)
		writeLayouts(t, cfg.LayoutsDir)
		writeContent(t, cfg.ContentDir)

		require.NoError(t, New(cfg, nil, logger.Discard()).Run())
	})
}

func TestBuildRequiresHomeLayout(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeContent(t, cfg.ContentDir)
	writeFile(t, filepath.Join(cfg.LayoutsDir, "base.html"), `<html>{{ if .Item }}{{ .Item.Content }}{{ end }}</html>`)

	err := New(cfg, nil, logger.Discard()).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home.html")
}

func TestBuildSkipsOptionalListings(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeContent(t, cfg.ContentDir)
	writeFile(t, filepath.Join(cfg.LayoutsDir, "base.html"), `<html>{{ if .Item }}{{ .Item.Content }}{{ end }}</html>`)
	writeFile(t, filepath.Join(cfg.LayoutsDir, "home.html"), `<html>{{ range .Items }}{{ .Title }}{{ end }}</html>`)

	require.NoError(t, New(cfg, nil, logger.Discard()).Run())

	_, err := os.Stat(filepath.Join(cfg.OutputDir, "archive"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "categories"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildFrontMatterLayoutOverride(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeLayouts(t, cfg.LayoutsDir)
	writeFile(t, filepath.Join(cfg.LayoutsDir, "special.html"), `<html><body id="special">{{ .Item.Content }}</body></html>`)
	writeFile(t, filepath.Join(cfg.ContentDir, "_posts", "2016-03-12-custom.md"), `---
title: "Custom"
layout: special.html
---
Custom body.
`)

	require.NoError(t, New(cfg, nil, logger.Discard()).Run())

	page := readFile(t, filepath.Join(cfg.OutputDir, "2016", "03", "12", "custom", "index.html"))
	assert.Contains(t, page, `<body id="special">`)
}

func TestBuildDuplicateOutputPath(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeLayouts(t, cfg.LayoutsDir)
	writeFile(t, filepath.Join(cfg.ContentDir, "_posts", "2016-03-12-same-slug.md"), "---\ntitle: One\n---\nBody.\n")
	writeFile(t, filepath.Join(cfg.ContentDir, "elsewhere", "2016-03-12-same-slug.md"), "---\ntitle: Two\n---\nBody.\n")

	err := New(cfg, nil, logger.Discard()).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claimed by both")
}

func TestBuildHomePostsLimit(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.HomePosts = 1
	writeLayouts(t, cfg.LayoutsDir)
	writeContent(t, cfg.ContentDir)

	require.NoError(t, New(cfg, nil, logger.Discard()).Run())

	home := readFile(t, filepath.Join(cfg.OutputDir, "index.html"))
	assert.Contains(t, home, "Partitioning")
	assert.NotContains(t, home, "Service Objects")
}
