package engine

import "strings"

// state is the strict engine's three-state machine: Idle, InSearch (a
// SEARCH block is accumulating pattern lines), InReplace (a block's match
// has resolved and replacement lines are streaming to the result).
type state int

const (
	stateIdle state = iota
	stateInSearch
	stateInReplace
)

// StrictConstructor applies a marker-delimited edit script to an original
// text left-to-right: every SEARCH block must resolve to a match at or
// after the end of the previous one, and the three match tiers are tried
// only from that cursor forward. Feed it line by line with ProcessLine,
// then call Finalize once the script is exhausted.
type StrictConstructor struct {
	original string

	st state

	result strings.Builder

	lastProcessedIndex int
	lineIndex          int
	matchEnd           int

	currentSearchLines []string

	// pending buffers lines seen while Idle that have not yet been
	// classified as ordinary passthrough content or as the start of a
	// malformed SEARCH block salvage can still recover.
	pending []string
}

// NewStrictConstructor prepares a constructor over original.
func NewStrictConstructor(original string) *StrictConstructor {
	return &StrictConstructor{original: original}
}

// ApplyStrict applies diffContent to original and returns the resulting
// text. When isFinal is false the engine runs in streaming mode: the
// untouched tail of original is not appended and an unterminated block
// does not raise ProcessingIncomplete, so a caller may re-invoke with a
// longer prefix of the same diff as more of it arrives. The engine itself
// holds no state across calls; a streaming caller re-runs from scratch
// with the accumulated diff text each time.
func ApplyStrict(diffContent, original string, isFinal bool) (string, error) {
	c := NewStrictConstructor(original)
	for _, line := range splitDiffLinesTolerant(diffContent) {
		if err := c.ProcessLine(line); err != nil {
			return "", err
		}
	}
	return c.Finalize(isFinal)
}

// splitDiffLinesTolerant splits on LF, dropping a trailing empty element
// produced when diffContent itself ends in a newline, then applies the
// streaming pre-pass: a final non-empty line that looks like the start of
// a marker (begins with one of "-<=+>") but isn't a recognized marker is
// dropped, tolerating a half-written marker cut off mid-stream.
func splitDiffLinesTolerant(diffContent string) []string {
	lines := strings.Split(diffContent, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if n := len(lines); n > 0 {
		last := lines[n-1]
		if last != "" && strings.ContainsRune("-<=+>", rune(last[0])) &&
			!isSearchStart(last) && !isSeparator(last) && !isReplaceEnd(last) {
			lines = lines[:n-1]
		}
	}
	return lines
}

// ProcessLine feeds one more line of diff content into the machine.
func (c *StrictConstructor) ProcessLine(line string) error {
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

func (c *StrictConstructor) processIdle(line string) error {
	switch {
	case isSearchStart(line):
		if err := c.salvageMissingReplaceEnd(); err != nil {
			return err
		}
		c.st = stateInSearch
		c.currentSearchLines = nil
		return nil
	case isSeparator(line) || isReplaceEnd(line):
		idx, ok := findSalvageIndex(c.pending, isSearchLike)
		if !ok {
			return errInvalidReplaceMarker(c.lineIndex)
		}
		c.flushPassthrough(c.pending[:idx])
		rest := append([]string(nil), c.pending[idx+1:]...)
		c.pending = nil
		c.st = stateInSearch
		c.currentSearchLines = rest
		if isSeparator(line) {
			return c.finalizeSearchEnterReplace()
		}
		return c.processInSearch(line)
	default:
		c.pending = append(c.pending, line)
		return nil
	}
}

// salvageMissingReplaceEnd handles a SEARCH-start arriving with
// non-standard content still pending: trims trailing blanks, then
// inspects what remains. A final line matching the REPLACE-end tag
// pattern is dropped rather than echoed, since it was meant as structure,
// not content. A final line that opens with a marker character but
// matches no marker or tag pattern (for example a REPLACE-end with too
// few '+') fails salvage with MissingReplaceMarker. Anything else is
// ordinary passthrough text and is flushed as-is.
func (c *StrictConstructor) salvageMissingReplaceEnd() error {
	trimTrailingEmptyPending(&c.pending)
	if len(c.pending) == 0 {
		c.pending = nil
		return nil
	}
	last := c.pending[len(c.pending)-1]
	switch {
	case replaceEndTagRe().MatchString(last):
		c.flushPassthrough(c.pending[:len(c.pending)-1])
	case looksLikeBrokenMarker(last):
		return errMissingReplaceMarker()
	default:
		c.flushPendingAsPassthrough()
		return nil
	}
	c.pending = nil
	return nil
}

// looksLikeBrokenMarker reports whether line opens with a marker prefix
// character but fails every recognized marker and tag pattern — i.e. it
// reads as a failed attempt at a marker rather than ordinary content.
func looksLikeBrokenMarker(line string) bool {
	if line == "" || !strings.ContainsRune("-<=+>", rune(line[0])) {
		return false
	}
	return !isSearchStart(line) && !isSeparator(line) && !isReplaceEnd(line) &&
		!searchTagRe().MatchString(line) && !replaceEndTagRe().MatchString(line)
}

func (c *StrictConstructor) processInSearch(line string) error {
	switch {
	case isSeparator(line):
		return c.finalizeSearchEnterReplace()
	case isSearchStart(line):
		// A second SEARCH-start before any separator has no salvage path:
		// the block never reached a state that lets us recover one side
		// of the diff from the other.
		return errInvalidStateTransition()
	case isReplaceEnd(line):
		// A REPLACE-end seen before any separator means the separator
		// itself was dropped: salvage it from the search buffer's own
		// trailing content. Everything after the recovered separator was
		// actually replacement text collected while we thought we were
		// still reading the search pattern, so it must reach the output
		// immediately once the match resolves, exactly as if it had
		// arrived through the normal InReplace path.
		idx, ok := findSalvageIndex(c.currentSearchLines, isSeparatorLike)
		if !ok {
			return errMalformedReplaceBlock(c.lineIndex)
		}
		searchContent := joinLines(c.currentSearchLines[:idx])
		replaceHead := c.currentSearchLines[idx+1:]
		if err := c.resolveAndEnterReplace(searchContent); err != nil {
			return err
		}
		c.flushPassthrough(replaceHead)
		return c.processInReplace(line)
	default:
		c.currentSearchLines = append(c.currentSearchLines, line)
		return nil
	}
}

// processInReplace streams replacement content straight to the output
// buffer as it arrives, since InReplace is only entered once a match has
// resolved and we already know where the replacement belongs — this is
// what lets a caller preview a partial result mid-block.
func (c *StrictConstructor) processInReplace(line string) error {
	if isReplaceEnd(line) {
		c.lastProcessedIndex = c.matchEnd
		c.st = stateIdle
		return nil
	}
	c.result.WriteString(line)
	c.result.WriteString("\n")
	return nil
}

// finalizeSearchEnterReplace resolves the accumulated search content to a
// match and transitions into InReplace.
func (c *StrictConstructor) finalizeSearchEnterReplace() error {
	return c.resolveAndEnterReplace(joinLines(c.currentSearchLines))
}

// resolveAndEnterReplace locates searchContent from the cursor forward,
// emits the untouched span up to the match, and advances into InReplace.
func (c *StrictConstructor) resolveAndEnterReplace(searchContent string) error {
	m, err := c.resolveMatch(searchContent)
	if err != nil {
		return err
	}
	if m.End > len(c.original) {
		// The fallback tiers may report a phantom trailing-LF byte past
		// a final line that has no actual newline; clamp so later
		// slicing of original never runs out of bounds.
		m.End = len(c.original)
	}
	c.result.WriteString(c.original[c.lastProcessedIndex:m.Start])
	c.matchEnd = m.End
	c.st = stateInReplace
	return nil
}

// matchEnd is set by resolveAndEnterReplace and consumed when the
// REPLACE-end marker closes the block.
func (c *StrictConstructor) resolveMatch(searchContent string) (matchRange, error) {
	if searchContent == "" {
		if c.original == "" {
			return matchRange{Start: 0, End: 0}, nil
		}
		return matchRange{Start: 0, End: len(c.original)}, nil
	}
	m, ok := locate(c.original, searchContent, c.lastProcessedIndex, true)
	if !ok {
		return matchRange{}, errSearchBlockNotFound(searchContent)
	}
	if m.Start < c.lastProcessedIndex {
		return matchRange{}, errSearchBlockIncorrectMatch(searchContent)
	}
	return m, nil
}

func (c *StrictConstructor) flushPendingAsPassthrough() {
	c.flushPassthrough(c.pending)
	c.pending = nil
}

func (c *StrictConstructor) flushPassthrough(lines []string) {
	for _, l := range lines {
		c.result.WriteString(l)
		c.result.WriteString("\n")
	}
}

// Finalize closes out the machine. When isFinal is false this is a
// streaming snapshot: the output buffer is returned as-is, with no tail
// appended and no ProcessingIncomplete raised for a block still open mid
// search or replace. When isFinal is true: a still-open replace block is
// closed as though its REPLACE-end had just arrived (recovering a diff
// that omits the final marker), any leftover Idle passthrough lines are
// emitted (trimming trailing blank lines), and the untouched tail of
// original is appended.
func (c *StrictConstructor) Finalize(isFinal bool) (string, error) {
	if !isFinal {
		return c.result.String(), nil
	}

	switch c.st {
	case stateInReplace:
		// A still-open replace block is treated as though its REPLACE-end
		// had just arrived: the replacement text is already in the output
		// buffer (processInReplace writes it as it streams in), so only
		// the cursor needs to advance. This recovers diffs that omit the
		// final marker.
		c.lastProcessedIndex = c.matchEnd
		c.st = stateIdle
	case stateInSearch:
		return "", errProcessingIncomplete()
	}

	trimTrailingEmptyPending(&c.pending)
	c.flushPendingAsPassthrough()

	c.result.WriteString(c.original[c.lastProcessedIndex:])
	return c.result.String(), nil
}

func trimTrailingEmptyPending(lines *[]string) {
	s := *lines
	for len(s) > 0 && s[len(s)-1] == "" {
		s = s[:len(s)-1]
	}
	*lines = s
}

// findSalvageIndex scans lines from the end for the most recent one a
// salvage predicate accepts, returning its index.
func findSalvageIndex(lines []string, like func(string) bool) (int, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if like(lines[i]) {
			return i, true
		}
	}
	return 0, false
}

func isSearchLike(line string) bool {
	return strings.Contains(line, "SEARCH") && !isSearchStart(line)
}

func isSeparatorLike(line string) bool {
	t := strings.Trim(line, "= \t")
	return t == "" && strings.Count(line, "=") >= 2
}

func isReplaceEndLike(line string) bool {
	return strings.Contains(line, "REPLACE") && !isReplaceEnd(line)
}
