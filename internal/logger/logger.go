package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// BuildStarted logs the start of a build
func (l *Logger) BuildStarted(contentDir, outputDir string) {
	l.Info("build started",
		"content_dir", contentDir,
		"output_dir", outputDir)
}

// BuildCompleted logs a finished build
func (l *Logger) BuildCompleted(posts, pages int, duration time.Duration) {
	l.Info("build completed",
		"posts", posts,
		"pages", pages,
		"duration", duration.Round(time.Millisecond))
}

// PostLoaded logs a successfully parsed document
func (l *Logger) PostLoaded(file, title string) {
	l.Debug("loaded",
		"file", file,
		"title", title)
}

// PostSkipped logs when a document is excluded from the build
func (l *Logger) PostSkipped(file, reason string) {
	l.Debug("skipped",
		"file", file,
		"reason", reason)
}

// PageWritten logs a generated output file
func (l *Logger) PageWritten(path, layout string) {
	l.Debug("page written",
		"path", path,
		"layout", layout)
}

// LayoutFallback warns that a requested layout is missing
func (l *Logger) LayoutFallback(requested, used, item string) {
	l.Warn("layout not found",
		"requested", requested,
		"using", used,
		"item", item)
}

// RebuildTriggered logs a watch-mode rebuild
func (l *Logger) RebuildTriggered(file, op string) {
	l.Info("change detected",
		"file", file,
		"op", op)
}

// WatchError logs a watcher failure
func (l *Logger) WatchError(err error) {
	l.Error("watcher error", "error", err)
}
