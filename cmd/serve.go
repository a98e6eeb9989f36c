package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Azdaroth/inkpress/internal/build"
)

var serverPort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a
local web server to serve your output directory. It also watches your content,
layouts, and static directories for changes and automatically rebuilds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := build.New(appConfig, siteParams, logg)

		if err := builder.Run(); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		go func() {
			// Wait a short period after an event before rebuilding so a
			// burst of saves triggers one build.
			var buildTimer *time.Timer
			debounceDuration := 500 * time.Millisecond

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
						logg.RebuildTriggered(event.Name, event.Op.String())

						// fsnotify does not watch new subdirectories
						// automatically.
						if event.Has(fsnotify.Create) && isDir(event.Name) {
							if err := watcher.Add(event.Name); err != nil {
								logg.WatchError(err)
							}
						}

						if buildTimer != nil {
							buildTimer.Stop()
						}
						buildTimer = time.AfterFunc(debounceDuration, func() {
							if err := builder.Run(); err != nil {
								logg.Error("rebuild failed", "error", err)
							} else {
								logg.Info("site rebuilt")
							}
						})
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					logg.WatchError(err)
				}
			}
		}()

		pathsToWatch := []string{
			appConfig.ContentDir,
			appConfig.LayoutsDir,
			appConfig.StaticDir,
		}

		for _, rootPath := range pathsToWatch {
			if _, statErr := os.Stat(rootPath); os.IsNotExist(statErr) {
				logg.Debug("directory not found, not watching", "dir", rootPath)
				continue
			}

			err = filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					logg.WatchError(err)
					return nil
				}
				if d.IsDir() {
					if watchErr := watcher.Add(path); watchErr != nil {
						logg.WatchError(watchErr)
					}
				}
				return nil
			})
			if err != nil {
				logg.WatchError(err)
			}
		}

		serverAddr := fmt.Sprintf(":%d", serverPort)
		logg.Info("serving site",
			"dir", appConfig.OutputDir,
			"url", fmt.Sprintf("http://localhost%s", serverAddr))

		fileServer := http.FileServer(http.Dir(appConfig.OutputDir))
		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// Prevent directory listing
			if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
				_, err := os.Stat(filepath.Join(appConfig.OutputDir, r.URL.Path, "index.html"))
				if os.IsNotExist(err) {
					http.NotFound(w, r)
					return
				}
			}
			// No caching during development
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
			fileServer.ServeHTTP(w, r)
		})

		if err := http.ListenAndServe(serverAddr, nil); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
