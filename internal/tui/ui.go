package tui

import (
	"bytes"
	"fmt"
	"time"

	"github.com/abiosoft/ishell/v2"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/mattn/go-runewidth"
)

// SessionInfo describes the file currently being previewed.
type SessionInfo struct {
	FileName      string
	Dialect       string
	BytesConsumed int
	TotalBytes    int
	BlocksApplied int
}

// BlockEntry records one resolved SEARCH block: which match tier found it
// and an excerpt of the search text, so a user stepping through a preview
// can see why a block landed where it did. The same log also carries
// status and error messages.
type BlockEntry struct {
	Timestamp time.Time
	Tier      string // an engine.MatchTier value, or a status label: "ready", "done", "error", "help"
	Search    string
}

// InputHandlerInterface defines the interface for input handlers
type InputHandlerInterface interface {
	HandleKeyEvent(e ui.Event) bool
	GetCursorPosition() int
}

// UI represents the TUI
type UI struct {
	shell        *ishell.Shell
	shellInput   *bytes.Buffer
	previewUI    *PreviewUI
	inputHandler InputHandlerInterface
	termWidth    int
	termHeight   int
}

// PreviewUI is the three-pane layout: session info on top, the block log
// in the middle, the accumulating result text at the bottom.
type PreviewUI struct {
	session  *Block[*widgets.Paragraph, *SessionInfo]
	blockLog *Block[*widgets.List, []BlockEntry]
	output   *Block[*widgets.Paragraph, string]
}

type Block[T ui.Drawable, S any] struct {
	Widget       T
	data         S
	updateSignal chan struct{}
}

func NewBlock[T ui.Drawable, S any](widget T, data S) *Block[T, S] {
	return &Block[T, S]{
		Widget:       widget,
		data:         data,
		updateSignal: make(chan struct{}, 1),
	}
}

func (b *Block[T, S]) SetData(data S) {
	b.data = data
	select {
	case b.updateSignal <- struct{}{}:
	default:
	}
}

func (b *Block[T, S]) GetData() S {
	return b.data
}

func (b *Block[T, S]) UpdateSignal() <-chan struct{} {
	return b.updateSignal
}

func (b *Block[T, S]) Render() {
	ui.Render(b.Widget)
}

func NewPreviewUI(dialect string) *PreviewUI {
	sessionData := &SessionInfo{
		Dialect: dialect,
	}

	session := widgets.NewParagraph()
	session.Title = "Session"
	session.BorderStyle.Fg = ui.ColorYellow
	session.PaddingTop = 0
	session.PaddingBottom = 0

	blockLog := widgets.NewList()
	blockLog.Title = "Applied Blocks"
	blockLog.BorderStyle.Fg = ui.ColorCyan
	blockLog.TextStyle = ui.NewStyle(ui.ColorWhite)
	blockLog.WrapText = true

	output := widgets.NewParagraph()
	output.Title = "Result"
	output.BorderStyle.Fg = ui.ColorGreen
	output.Text = ""

	p := &PreviewUI{
		session:  NewBlock(session, sessionData),
		blockLog: NewBlock(blockLog, []BlockEntry{}),
		output:   NewBlock(output, ""),
	}
	return p
}

func (p *PreviewUI) Render(termWidth, termHeight int) {
	grid := ui.NewGrid()
	grid.SetRect(0, 0, termWidth, termHeight)

	sessionCol := ui.NewCol(1.0, p.session.Widget)
	blockLogCol := ui.NewCol(1.0, p.blockLog.Widget)
	outputCol := ui.NewCol(1.0, p.output.Widget)

	sessionHeight := float64(3) / float64(termHeight)
	blockLogHeight := 0.4
	outputHeight := 1.0 - sessionHeight - blockLogHeight

	sessionRow := ui.NewRow(sessionHeight, sessionCol)
	blockLogRow := ui.NewRow(blockLogHeight, blockLogCol)
	outputRow := ui.NewRow(outputHeight, outputCol)

	grid.Set(
		sessionRow,
		blockLogRow,
		outputRow,
	)
	ui.Render(grid)
}

// NewUI creates a new TUI instance.
func NewUI(shell *ishell.Shell, shellInput *bytes.Buffer, dialect string) (*UI, error) {
	shell.SetPrompt("")

	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	return &UI{
		shell:      shell,
		shellInput: shellInput,
		previewUI:  NewPreviewUI(dialect),
	}, nil
}

// UpdateSessionInfo updates the session widget
func (u *UI) UpdateSessionInfo(info *SessionInfo) {
	u.previewUI.session.SetData(info)
}

// AddBlockEntry records a resolved SEARCH block in the block log
func (u *UI) AddBlockEntry(entry BlockEntry) {
	u.previewUI.blockLog.SetData(append(u.previewUI.blockLog.GetData(), entry))
}

// UpdateOutput replaces the accumulated result text shown in the output pane
func (u *UI) UpdateOutput(text string) {
	u.previewUI.output.SetData(text)
}

// UpdateREPLInput receives the current input line. The preview layout has
// no input pane, so nothing is drawn.
func (u *UI) UpdateREPLInput(input string) {
	// the command prompt lives in the shell itself; nothing to render here
	_ = input
}

// UpdateREPLPrompt updates the REPL prompt
func (u *UI) UpdateREPLPrompt(prompt string) {
	u.shell.SetPrompt(prompt)
}

// prerenderSession updates the session widget content.
func (u *UI) prerenderSession() {
	info := u.previewUI.session.GetData()
	text := fmt.Sprintf("file: %s | dialect: %s | consumed: %d/%d bytes | blocks: %d",
		info.FileName,
		info.Dialect,
		info.BytesConsumed,
		info.TotalBytes,
		info.BlocksApplied,
	)
	availableWidth := u.previewUI.session.Widget.Inner.Dx()
	u.previewUI.session.Widget.Text = truncateToWidth(text, availableWidth)
}

// truncateToWidth shortens text to fit within availableWidth display
// columns, appending "..." when it had to cut. Width is measured with
// go-runewidth so wide (e.g. CJK) characters count correctly.
func truncateToWidth(text string, availableWidth int) string {
	if runewidth.StringWidth(text) <= availableWidth {
		return text
	}
	truncated := ""
	currentWidth := 0
	for _, char := range text {
		charWidth := runewidth.RuneWidth(char)
		if currentWidth+charWidth+3 > availableWidth {
			break
		}
		truncated += string(char)
		currentWidth += charWidth
	}
	return truncated + "..."
}

// prerenderBlockLog updates the block log widget content.
func (u *UI) prerenderBlockLog() {
	u.previewUI.blockLog.Widget.Rows = []string{}
	for _, entry := range u.previewUI.blockLog.GetData() {
		timestamp := entry.Timestamp.Format("15:04:05")
		line := fmt.Sprintf("[%s] %s: %s", timestamp, entry.Tier, entry.Search)
		u.previewUI.blockLog.Widget.Rows = append(u.previewUI.blockLog.Widget.Rows, line)
	}
}

// prerenderOutput updates the output widget content.
func (u *UI) prerenderOutput() {
	u.previewUI.output.Widget.Text = u.previewUI.output.GetData()
}

// adjustGridLayout adjusts the previewUI layout based on terminal size.
func (u *UI) adjustGridLayout(termWidth, termHeight int) bool {
	if u.termWidth != termWidth || u.termHeight != termHeight {
		u.termWidth = termWidth
		u.termHeight = termHeight
		u.prerenderSession()
		u.prerenderBlockLog()
		u.prerenderOutput()
		u.previewUI.Render(termWidth, termHeight)
		return true
	}
	return false
}

// Close closes the UI.
func (u *UI) Close() {
	ui.Close()
}

// Run runs the UI event loop.
func (u *UI) Run() error {
	termWidth, termHeight := ui.TerminalDimensions()
	u.adjustGridLayout(termWidth, termHeight)
	uiEvents := ui.PollEvents()

	for {
		select {
		case e := <-uiEvents:
			if e.Type == ui.KeyboardEvent {
				if u.inputHandler != nil {
					if exit := u.inputHandler.HandleKeyEvent(e); exit {
						return nil
					}
				} else {
					switch e.ID {
					case "q", "<C-c>":
						return nil
					}
				}
			} else if e.Type == ui.ResizeEvent {
				time.Sleep(10 * time.Millisecond)
				termWidth, termHeight := ui.TerminalDimensions()
				u.adjustGridLayout(termWidth, termHeight)
			}
		case <-u.previewUI.session.UpdateSignal():
			u.prerenderSession()
			u.previewUI.session.Render()
		case <-u.previewUI.blockLog.UpdateSignal():
			u.prerenderBlockLog()
			u.previewUI.blockLog.Render()
		case <-u.previewUI.output.UpdateSignal():
			u.prerenderOutput()
			u.previewUI.output.Render()
		}
	}
}

// SetInputHandler sets the input handler for the UI.
func (u *UI) SetInputHandler(handler InputHandlerInterface) {
	u.inputHandler = handler
}
