package tui

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/ishell/v2"

	"github.com/kazz187/srdiff/internal/engine"
)

// initREPL builds the ishell shell backing the preview's command prompt.
// The shell itself never reads stdin directly here: termui's own event
// loop (see UI.Run) delivers keystrokes to the InputHandler, and the
// shell only holds the prompt string and command name.
func initREPL() *ishell.Shell {
	shell := ishell.New()
	shell.SetPrompt("srdiff> ")
	return shell
}

// PreviewSession drives a streaming diff application through the engine,
// feeding diff lines to ApplyStrict/ApplyLenient in ChunkLines-sized
// increments so a user can step through a SEARCH/REPLACE script block by
// block and watch the result accumulate.
type PreviewSession struct {
	ui    *UI
	shell *ishell.Shell
	mu    sync.Mutex
	input *bytes.Buffer

	fileName   string
	original   string
	diffLines  []string
	chunkLines int
	dialect    string

	fedLines   int
	result     string
	blocksSeen int
}

// NewPreviewSession creates a preview session over original, stepping
// through diffContent chunkLines at a time using the named dialect
// ("strict" or "lenient").
func NewPreviewSession(fileName, original, diffContent, dialect string, chunkLines int) (*PreviewSession, error) {
	if chunkLines <= 0 {
		chunkLines = 1
	}

	input := bytes.NewBufferString("")
	shell := initREPL()
	u, err := NewUI(shell, input, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create UI: %w", err)
	}

	diffLines := strings.Split(diffContent, "\n")
	if n := len(diffLines); n > 0 && diffLines[n-1] == "" {
		diffLines = diffLines[:n-1]
	}

	return &PreviewSession{
		ui:         u,
		shell:      shell,
		input:      input,
		fileName:   fileName,
		original:   original,
		diffLines:  diffLines,
		chunkLines: chunkLines,
		dialect:    dialect,
	}, nil
}

// Start runs the preview session's UI loop until the user quits.
func (p *PreviewSession) Start() error {
	handler := NewInputHandler(p.ui, p, p.shell, p.input)
	p.ui.SetInputHandler(handler)

	p.ui.UpdateSessionInfo(&SessionInfo{
		FileName:   p.fileName,
		Dialect:    p.dialect,
		TotalBytes: len(strings.Join(p.diffLines, "\n")),
	})
	p.ui.AddBlockEntry(BlockEntry{Timestamp: time.Now(), Tier: "ready", Search: "type 'next', 'all', or 'quit'"})

	errCh := make(chan error, 1)
	go func() {
		if err := p.ui.Run(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	err := <-errCh
	if err != nil {
		slog.Error("preview UI error", "error", err)
		return err
	}
	return nil
}

// Close tears down the preview session's UI.
func (p *PreviewSession) Close() {
	p.ui.Close()
}

// StepNext feeds the next chunk of diff lines into the engine.
func (p *PreviewSession) StepNext() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fedLines >= len(p.diffLines) {
		p.ui.AddBlockEntry(BlockEntry{Timestamp: time.Now(), Tier: "done", Search: "no more diff lines"})
		return
	}

	end := p.fedLines + p.chunkLines
	if end > len(p.diffLines) {
		end = len(p.diffLines)
	}
	p.advanceTo(end)
}

// StepAll feeds the remainder of the diff in one go and finalizes the
// result.
func (p *PreviewSession) StepAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceTo(len(p.diffLines))
}

func (p *PreviewSession) advanceTo(end int) {
	chunk := strings.Join(p.diffLines[:end], "\n")
	if end > 0 {
		chunk += "\n"
	}
	isFinal := end >= len(p.diffLines)

	var (
		result string
		err    error
	)
	if p.dialect == "lenient" {
		result, err = engine.ApplyLenient(chunk, p.original, isFinal)
	} else {
		result, err = engine.ApplyStrict(chunk, p.original, isFinal)
	}
	if err != nil {
		p.ui.AddBlockEntry(BlockEntry{Timestamp: time.Now(), Tier: "error", Search: err.Error()})
		return
	}

	p.logNewBlocks(p.diffLines[p.fedLines:end])
	p.fedLines = end
	p.result = result

	p.ui.UpdateSessionInfo(&SessionInfo{
		FileName:      p.fileName,
		Dialect:       p.dialect,
		BytesConsumed: len(chunk),
		TotalBytes:    len(strings.Join(p.diffLines, "\n")) + 1,
		BlocksApplied: p.blocksSeen,
	})
	p.ui.UpdateOutput(p.result)
}

// logNewBlocks records one BlockEntry for each REPLACE block closed by the
// lines just fed, classifying its search pattern against the original
// text for display. The diff is rescanned from its first line so a block
// whose SEARCH lines arrived in an earlier step keeps its full pattern.
// This is a display-only heuristic for the block log; the engine
// package's own marker recognizer is what actually governs parsing.
func (p *PreviewSession) logNewBlocks(newLines []string) {
	var searchLines []string
	inSearch := false

	for i, line := range p.diffLines[:p.fedLines+len(newLines)] {
		trimmed := strings.TrimSpace(line)
		isSearchStart := strings.Contains(trimmed, "SEARCH") && (strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "<"))
		isSeparator := trimmed != "" && strings.Trim(trimmed, "=") == ""
		isReplaceEnd := strings.Contains(trimmed, "REPLACE") && (strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, ">"))

		switch {
		case isSearchStart:
			inSearch = true
			searchLines = nil
		case isSeparator:
			inSearch = false
		case isReplaceEnd:
			if i < p.fedLines {
				searchLines = nil
				continue
			}
			p.blocksSeen++
			pattern := ""
			if len(searchLines) > 0 {
				pattern = strings.Join(searchLines, "\n") + "\n"
			}
			tier := engine.ClassifyMatch(p.original, pattern, 0, p.dialect != "lenient")
			excerpt := strings.TrimSpace(pattern)
			if len(excerpt) > 40 {
				excerpt = excerpt[:40] + "..."
			}
			p.ui.AddBlockEntry(BlockEntry{Timestamp: time.Now(), Tier: string(tier), Search: excerpt})
			searchLines = nil
		case inSearch:
			searchLines = append(searchLines, line)
		}
	}
}

// StartPreview launches a terminal preview session over original, feeding
// diffContent to the engine chunkLines at a time.
func StartPreview(fileName, original, diffContent, dialect string, chunkLines int) error {
	session, err := NewPreviewSession(fileName, original, diffContent, dialect, chunkLines)
	if err != nil {
		return fmt.Errorf("failed to create preview session: %w", err)
	}
	defer session.Close()
	return session.Start()
}
