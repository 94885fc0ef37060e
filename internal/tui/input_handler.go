package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/ishell/v2"

	ui "github.com/gizak/termui/v3"
)

// InputHandler handles key events for the preview REPL's command line:
// next / all / quit, with the line editing (cursor movement, history)
// that any REPL input box needs.
type InputHandler struct {
	ui           *UI
	session      *PreviewSession
	currentInput string
	cursorPos    int
	historyIndex int
	inputHistory []string
	shell        *ishell.Shell
	shellInput   io.Writer
}

// GetCursorPosition returns the current cursor position
func (h *InputHandler) GetCursorPosition() int {
	return h.cursorPos
}

// NewInputHandler creates a new input handler bound to session.
func NewInputHandler(ui *UI, session *PreviewSession, shell *ishell.Shell, shellInput io.Writer) *InputHandler {
	return &InputHandler{
		ui:           ui,
		session:      session,
		currentInput: "",
		cursorPos:    0,
		historyIndex: -1,
		inputHistory: []string{},
		shell:        shell,
		shellInput:   shellInput,
	}
}

// HandleKeyEvent handles a key event
func (h *InputHandler) HandleKeyEvent(e ui.Event) bool {
	switch e.ID {
	case "<C-c>":
		return true
	case "<Enter>":
		return h.handleEnter()
	case "<Backspace>":
		h.handleBackspace()
	case "<Delete>":
		h.handleDelete()
	case "<Left>":
		h.handleLeft()
	case "<Right>":
		h.handleRight()
	case "<Home>", "<C-a>":
		h.handleHome()
	case "<End>", "<C-e>":
		h.handleEnd()
	case "<Up>":
		h.handleUp()
	case "<Down>":
		h.handleDown()
	case "<C-k>":
		h.handleDeleteToEnd()
	case "<C-u>":
		h.handleDeleteToBeginning()
	case "<Space>":
		h.handleCharInput(" ")
	default:
		if len(e.ID) == 1 {
			h.handleCharInput(e.ID)
		}
	}

	h.ui.UpdateREPLInput(h.currentInput)
	return false
}

// handleEnter submits the current input line as a command.
func (h *InputHandler) handleEnter() bool {
	if h.currentInput == "" {
		return false
	}

	h.inputHistory = append(h.inputHistory, h.currentInput)
	h.historyIndex = -1

	command := strings.TrimSpace(h.currentInput)

	h.currentInput = ""
	h.cursorPos = 0
	h.ui.UpdateREPLInput(h.currentInput)

	return h.processCommand(command)
}

// processCommand runs one of the preview REPL's commands (next, all,
// quit, help). It
// returns true when the command should end the session.
func (h *InputHandler) processCommand(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "n", "next":
		h.session.StepNext()
	case "a", "all":
		h.session.StepAll()
	case "q", "quit", "exit":
		return true
	case "help", "?":
		h.ui.AddBlockEntry(BlockEntry{Tier: "help", Search: "commands: next (n), all (a), quit (q)"})
	default:
		h.ui.AddBlockEntry(BlockEntry{Tier: "error", Search: fmt.Sprintf("unknown command: %s", command)})
	}
	return false
}

func (h *InputHandler) handleBackspace() {
	if h.cursorPos > 0 {
		h.currentInput = h.currentInput[:h.cursorPos-1] + h.currentInput[h.cursorPos:]
		h.cursorPos--
	}
}

func (h *InputHandler) handleDelete() {
	if h.cursorPos < len(h.currentInput) {
		h.currentInput = h.currentInput[:h.cursorPos] + h.currentInput[h.cursorPos+1:]
	}
}

func (h *InputHandler) handleLeft() {
	if h.cursorPos > 0 {
		h.cursorPos--
	}
}

func (h *InputHandler) handleRight() {
	if h.cursorPos < len(h.currentInput) {
		h.cursorPos++
	}
}

func (h *InputHandler) handleHome() {
	h.cursorPos = 0
}

func (h *InputHandler) handleEnd() {
	h.cursorPos = len(h.currentInput)
}

func (h *InputHandler) handleUp() {
	if len(h.inputHistory) == 0 {
		return
	}
	if h.historyIndex == -1 {
		h.historyIndex = len(h.inputHistory) - 1
	} else if h.historyIndex > 0 {
		h.historyIndex--
	}
	h.currentInput = h.inputHistory[h.historyIndex]
	h.cursorPos = len(h.currentInput)
}

func (h *InputHandler) handleDown() {
	if h.historyIndex == -1 {
		return
	}
	if h.historyIndex < len(h.inputHistory)-1 {
		h.historyIndex++
		h.currentInput = h.inputHistory[h.historyIndex]
	} else {
		h.historyIndex = -1
		h.currentInput = ""
	}
	h.cursorPos = len(h.currentInput)
}

func (h *InputHandler) handleDeleteToEnd() {
	if h.cursorPos < len(h.currentInput) {
		h.currentInput = h.currentInput[:h.cursorPos]
	}
}

func (h *InputHandler) handleDeleteToBeginning() {
	if h.cursorPos > 0 {
		h.currentInput = h.currentInput[h.cursorPos:]
		h.cursorPos = 0
	}
}

func (h *InputHandler) handleCharInput(char string) {
	h.currentInput = h.currentInput[:h.cursorPos] + char + h.currentInput[h.cursorPos:]
	h.cursorPos++
}
