package engine

import (
	"sort"
	"strings"
)

// replacement is one resolved edit: replace original[Start:End] with
// Text. The lenient engine collects these as blocks resolve and only
// decides their final order at Finalize.
type replacement struct {
	Start int
	End   int
	Text  string
}

// LenientConstructor collects SEARCH/REPLACE blocks from a diff script in
// whatever order they arrive. Each block is resolved against the whole
// original text rather than strictly forward of a cursor: a match found
// behind the cursor is accepted and queued as an out-of-order edit rather
// than rejected. The result is reassembled at Finalize by sorting all
// resolved edits by start position and walking them over the original.
type LenientConstructor struct {
	original string

	st        state
	lineIndex int

	currentSearchLines  []string
	currentReplaceLines []string

	cursor       int
	replacements []replacement
}

// NewLenientConstructor prepares a constructor over original.
func NewLenientConstructor(original string) *LenientConstructor {
	return &LenientConstructor{original: original}
}

// ApplyLenient applies diffContent to original and returns the resulting
// text. Blocks are parsed in whatever order they appear and assembled by
// sorted position at Finalize; see LenientConstructor. When isFinal is
// false the engine returns a streaming snapshot of the edits resolved so
// far instead of raising ProcessingIncomplete for a block still open.
func ApplyLenient(diffContent, original string, isFinal bool) (string, error) {
	c := NewLenientConstructor(original)
	for _, line := range splitDiffLinesTolerant(diffContent) {
		if err := c.ProcessLine(line); err != nil {
			return "", err
		}
	}
	return c.Finalize(isFinal)
}

// ProcessLine feeds one more line of diff content into the machine.
func (c *LenientConstructor) ProcessLine(line string) error {
	c.lineIndex++
	switch c.st {
	case stateIdle:
		return c.processIdle(line)
	case stateInSearch:
		return c.processInSearch(line)
	case stateInReplace:
		return c.processInReplace(line)
	default:
		return errInvalidStateTransition()
	}
}

func (c *LenientConstructor) processIdle(line string) error {
	switch {
	case isSearchStart(line):
		c.st = stateInSearch
		c.currentSearchLines = nil
		return nil
	case strings.TrimSpace(line) == "":
		return nil
	case isSeparatorLike(line) || isReplaceEndLike(line) || isSearchLike(line):
		return errNoLinesAvailable()
	default:
		return nil
	}
}

func (c *LenientConstructor) processInSearch(line string) error {
	switch {
	case isSeparator(line):
		c.st = stateInReplace
		c.currentReplaceLines = nil
		return nil
	case isSearchStart(line):
		c.currentSearchLines = nil
		return nil
	default:
		c.currentSearchLines = append(c.currentSearchLines, line)
		return nil
	}
}

func (c *LenientConstructor) processInReplace(line string) error {
	if isReplaceEnd(line) {
		return c.resolveBlock()
	}
	c.currentReplaceLines = append(c.currentReplaceLines, line)
	return nil
}

// resolveBlock locates the accumulated search content, queues the
// resulting edit, and returns to Idle.
func (c *LenientConstructor) resolveBlock() error {
	searchContent := joinLines(c.currentSearchLines)
	replaceContent := joinLines(c.currentReplaceLines)

	m, err := c.resolveMatch(searchContent)
	if err != nil {
		return err
	}
	if m.End > len(c.original) {
		m.End = len(c.original)
	}

	c.replacements = append(c.replacements, replacement{Start: m.Start, End: m.End, Text: replaceContent})
	if m.Start >= c.cursor {
		c.cursor = m.End
	}

	c.st = stateIdle
	c.currentSearchLines = nil
	c.currentReplaceLines = nil
	return nil
}

// resolveMatch finds searchContent, trying the three-tier locator from
// the cursor forward first, then retrying against the whole original if
// that fails — the lenient engine's tolerance for out-of-order blocks.
func (c *LenientConstructor) resolveMatch(searchContent string) (matchRange, error) {
	if searchContent == "" {
		return matchRange{Start: 0, End: len(c.original)}, nil
	}
	if m, ok := locate(c.original, searchContent, c.cursor, false); ok {
		return m, nil
	}
	if m, ok := locate(c.original, searchContent, 0, false); ok {
		return m, nil
	}
	return matchRange{}, errSearchBlockNotFound(searchContent)
}

// Finalize closes out the machine. When isFinal is false this returns a
// streaming snapshot built from whatever edits have resolved so far,
// without forcing a still-open block closed or raising
// ProcessingIncomplete. When isFinal is true a still-open replace block is
// treated as implicitly closed by end of input, then all queued edits are
// sorted by start position and replayed over the original.
func (c *LenientConstructor) Finalize(isFinal bool) (string, error) {
	if !isFinal {
		return c.assemble(), nil
	}

	switch c.st {
	case stateInReplace:
		if err := c.resolveBlock(); err != nil {
			return "", err
		}
	case stateInSearch:
		return "", errProcessingIncomplete()
	}

	return c.assemble(), nil
}

// assemble sorts the resolved edits by start position and replays them
// over the original.
func (c *LenientConstructor) assemble() string {
	sort.SliceStable(c.replacements, func(i, j int) bool {
		return c.replacements[i].Start < c.replacements[j].Start
	})

	var result strings.Builder
	pos := 0
	for _, r := range c.replacements {
		if r.Start > pos {
			result.WriteString(c.original[pos:r.Start])
		}
		result.WriteString(r.Text)
		pos = r.End
	}
	if pos < len(c.original) {
		result.WriteString(c.original[pos:])
	}
	return result.String()
}
