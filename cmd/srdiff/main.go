package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/srdiff/internal/config"
	"github.com/kazz187/srdiff/internal/engine"
	"github.com/kazz187/srdiff/internal/ignore"
	"github.com/kazz187/srdiff/internal/mcpserver"
	"github.com/kazz187/srdiff/internal/tui"
	"github.com/kazz187/srdiff/internal/watch"
)

var (
	app = kingpin.New("srdiff", "Apply and preview SEARCH/REPLACE diffs")

	_ = app.Version("0.1.0")
	_ = app.Author("kazz187")
	_ = app.UsageWriter(os.Stdout)
	_ = app.HelpFlag.Short('h')

	applyCmd     = app.Command("apply", "Apply a diff file to an original file")
	applyDialect = applyCmd.Flag("dialect", "Engine dialect: strict or lenient").Default("").String()
	applyDiff    = applyCmd.Flag("diff", "Path to the SEARCH/REPLACE diff file").Required().String()
	applyOrig    = applyCmd.Flag("original", "Path to the original file").Required().String()
	applyFinal   = applyCmd.Flag("final", "Whether diff is the complete diff content").Default("true").Bool()
	applyOut     = applyCmd.Flag("out", "Write the result here instead of stdout").String()

	previewCmd  = app.Command("preview", "Preview a streaming diff application in a terminal UI")
	previewDiff = previewCmd.Flag("diff", "Path to the SEARCH/REPLACE diff file").Required().String()
	previewOrig = previewCmd.Flag("original", "Path to the original file").Required().String()

	watchCmd        = app.Command("watch", "Watch a directory for *.diff files and auto-apply them")
	watchDir        = watchCmd.Flag("dir", "Directory to watch").String()
	watchIgnoreFile = watchCmd.Flag("ignore-file", "Ignore file name").String()

	mcpCmd = app.Command("mcp", "Start the MCP tool server over stdio")
)

func main() {
	mgr, err := config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(mgr.EffectiveLogLevel()),
	}))
	slog.SetDefault(logger)

	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case applyCmd.FullCommand():
		err = runApply(mgr)
	case previewCmd.FullCommand():
		err = runPreview(mgr)
	case watchCmd.FullCommand():
		err = runWatch(mgr)
	case mcpCmd.FullCommand():
		err = mcpserver.Serve()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runApply(mgr *config.Manager) error {
	dialect := *applyDialect
	if dialect == "" {
		dialect = mgr.EffectiveDialect()
	}

	diffContent, err := os.ReadFile(*applyDiff)
	if err != nil {
		return fmt.Errorf("failed to read diff file: %w", err)
	}
	original, err := os.ReadFile(*applyOrig)
	if err != nil {
		return fmt.Errorf("failed to read original file: %w", err)
	}

	result, err := applyViaDialect(dialect, string(diffContent), string(original), *applyFinal)
	if err != nil {
		return fmt.Errorf("failed to apply diff: %w", err)
	}

	if *applyOut != "" {
		return os.WriteFile(*applyOut, []byte(result), 0644)
	}
	fmt.Print(result)
	return nil
}

func runPreview(mgr *config.Manager) error {
	diffContent, err := os.ReadFile(*previewDiff)
	if err != nil {
		return fmt.Errorf("failed to read diff file: %w", err)
	}
	original, err := os.ReadFile(*previewOrig)
	if err != nil {
		return fmt.Errorf("failed to read original file: %w", err)
	}

	return tui.StartPreview(*previewDiff, string(original), string(diffContent), mgr.EffectiveDialect(), mgr.EffectiveChunkLines())
}

func runWatch(mgr *config.Manager) error {
	dir := *watchDir
	if dir == "" {
		dir = mgr.EffectiveWatchDir()
	}

	ignoreFile := *watchIgnoreFile
	if ignoreFile == "" {
		ignoreFile = mgr.EffectiveIgnoreFile()
	}
	ignoreController, err := ignore.NewControllerWithFileName(dir, ignoreFile)
	if err != nil {
		return fmt.Errorf("failed to load ignore file: %w", err)
	}

	w := watch.NewWatcher(dir, ignoreController)
	w.Start()
	defer w.Stop()

	slog.Info("watching for diff files", "dir", dir)
	select {}
}

func applyViaDialect(dialect, diffContent, original string, isFinal bool) (string, error) {
	if dialect == "lenient" {
		return engine.ApplyLenient(diffContent, original, isFinal)
	}
	return engine.ApplyStrict(diffContent, original, isFinal)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
