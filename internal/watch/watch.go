// Package watch polls a directory for *.diff files and auto-applies each
// one against its target file.
package watch

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kazz187/srdiff/internal/engine"
	"github.com/kazz187/srdiff/internal/ignore"
)

// targetCommentPrefix marks the first line of a diff that has no sibling
// *.orig file, declaring which file it applies to instead.
const targetCommentPrefix = "--- target: "

// Watcher polls dir for *.diff files on a ticker, not an OS-level notify
// API: each tick it rescans the directory for files whose mtime moved
// since the last check, resolves each one's target file, applies it with
// the strict engine, and writes the result back.
type Watcher struct {
	dir      string
	ignore   *ignore.Controller
	interval time.Duration
	stopChan chan struct{}
	modTimes map[string]time.Time
}

// NewWatcher creates a watcher over dir. ignoreController may be nil, in
// which case no path is ever skipped.
func NewWatcher(dir string, ignoreController *ignore.Controller) *Watcher {
	return &Watcher{
		dir:      dir,
		ignore:   ignoreController,
		interval: 2 * time.Second,
		stopChan: make(chan struct{}),
		modTimes: make(map[string]time.Time),
	}
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop ends the polling goroutine.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

func (w *Watcher) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Scan()
		case <-w.stopChan:
			return
		}
	}
}

// Scan checks dir for new or modified *.diff files and applies each one.
// Exported so a caller (or a test) can drive a pass synchronously instead
// of waiting on the ticker.
func (w *Watcher) Scan() {
	if w.ignore != nil {
		if err := w.ignore.Reload(); err != nil {
			slog.Error("watch: failed to reload ignore file", "dir", w.dir, "error", err)
		}
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Error("watch: failed to read directory", "dir", w.dir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".diff") {
			continue
		}
		if w.ignore != nil && w.ignore.IsIgnored(entry.Name()) {
			continue
		}

		path := filepath.Join(w.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			slog.Error("watch: failed to stat diff file", "path", path, "error", err)
			continue
		}
		if last, ok := w.modTimes[path]; ok && !info.ModTime().After(last) {
			continue
		}
		w.modTimes[path] = info.ModTime()

		w.applyOne(path)
	}
}

func (w *Watcher) applyOne(diffPath string) {
	diffContent, err := os.ReadFile(diffPath)
	if err != nil {
		slog.Error("watch: failed to read diff file", "path", diffPath, "error", err)
		return
	}

	targetPath, body, err := resolveTarget(diffPath, string(diffContent))
	if err != nil {
		slog.Error("watch: failed to resolve target", "path", diffPath, "error", err)
		return
	}

	original, err := os.ReadFile(targetPath)
	if err != nil && !os.IsNotExist(err) {
		slog.Error("watch: failed to read target file", "path", targetPath, "error", err)
		return
	}

	result, err := engine.ApplyStrict(body, string(original), true)
	if err != nil {
		slog.Error("watch: failed to apply diff", "diff", diffPath, "target", targetPath, "error", err)
		return
	}

	if err := os.WriteFile(targetPath, []byte(result), 0644); err != nil {
		slog.Error("watch: failed to write target file", "path", targetPath, "error", err)
		return
	}

	slog.Info("watch: applied diff", "diff", diffPath, "target", targetPath)
}

// resolveTarget decides which file diffPath applies to: a sibling *.orig
// file if one exists, else a "--- target: <path>" comment on the diff's
// first line. It returns the target path and the diff body with that
// leading comment line stripped, if one was used.
func resolveTarget(diffPath, diffContent string) (string, string, error) {
	origPath := strings.TrimSuffix(diffPath, ".diff") + ".orig"
	if _, err := os.Stat(origPath); err == nil {
		return origPath, diffContent, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(diffContent))
	if scanner.Scan() {
		first := scanner.Text()
		if strings.HasPrefix(first, targetCommentPrefix) {
			target := strings.TrimSpace(strings.TrimPrefix(first, targetCommentPrefix))
			rest := strings.TrimPrefix(diffContent, first+"\n")
			return target, rest, nil
		}
	}

	return "", "", fmt.Errorf("no sibling .orig file and no %q comment in %s", targetCommentPrefix, diffPath)
}
