package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azdaroth/inkpress/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "_posts", "2016-03-12-service-objects.md"), `---
title: "Service Objects"
categories: [Ruby on Rails, Architecture]
---
Body one.
`)
	writeFile(t, filepath.Join(dir, "_posts", "2017-08-01-partitioning.markdown"), `---
title: "Partitioning"
categories: [PostgreSQL]
---
Body two.
`)
	writeFile(t, filepath.Join(dir, "_posts", "2015-01-10-ember-decorators.md"), `---
title: "Ember Decorators"
categories: [Ember, Architecture]
---
Body three.
`)
	writeFile(t, filepath.Join(dir, "about.md"), `---
title: "About"
layout: page
---
About body.
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not markdown")

	s, err := Scan(dir, logger.Discard())
	require.NoError(t, err)

	require.Len(t, s.Posts, 3)
	assert.Equal(t, "Partitioning", s.Posts[0].Title, "newest post first")
	assert.Equal(t, "Service Objects", s.Posts[1].Title)
	assert.Equal(t, "Ember Decorators", s.Posts[2].Title)

	require.Len(t, s.Pages, 1)
	assert.Equal(t, "about", s.Pages[0].Slug)

	assert.Equal(t, []string{"Architecture", "Ember", "PostgreSQL", "Ruby on Rails"}, s.CategoryNames)
	require.Len(t, s.Categories["Architecture"], 2)
	assert.Equal(t, "Service Objects", s.Categories["Architecture"][0].Title, "category posts newest first")
}

func TestScanSkipsUnpublished(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "2016-03-12-live.md"), "---\ntitle: Live\n---\nBody.\n")
	writeFile(t, filepath.Join(dir, "2016-03-13-draft.md"), "---\ntitle: Draft\npublished: false\n---\nBody.\n")

	s, err := Scan(dir, logger.Discard())
	require.NoError(t, err)

	require.Len(t, s.Posts, 1)
	assert.Equal(t, "Live", s.Posts[0].Title)
}

func TestScanDateTieBreaksOnSlug(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "2016-03-12-zebra.md"), "---\ntitle: Zebra\n---\nBody.\n")
	writeFile(t, filepath.Join(dir, "2016-03-12-aardvark.md"), "---\ntitle: Aardvark\n---\nBody.\n")

	s, err := Scan(dir, logger.Discard())
	require.NoError(t, err)

	require.Len(t, s.Posts, 2)
	assert.Equal(t, "Aardvark", s.Posts[0].Title)
	assert.Equal(t, "Zebra", s.Posts[1].Title)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestScanPropagatesParseErrors(t *testing.T) {
	dir := t.TempDir()
	// Dated filename with an impossible date.
	writeFile(t, filepath.Join(dir, "2016-13-40-broken.md"), "---\ntitle: Broken\n---\nBody.\n")

	_, err := Scan(dir, logger.Discard())
	require.Error(t, err)
}

func TestRecent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2016-03-12-one.md"), "---\ntitle: One\n---\nBody.\n")
	writeFile(t, filepath.Join(dir, "2016-03-13-two.md"), "---\ntitle: Two\n---\nBody.\n")

	s, err := Scan(dir, logger.Discard())
	require.NoError(t, err)

	assert.Len(t, s.Recent(1), 1)
	assert.Equal(t, "Two", s.Recent(1)[0].Title)
	assert.Len(t, s.Recent(10), 2)
}
