package engine

import "strings"

// matchRange is a half-open byte interval [Start, End) in the original
// text identifying the substring a search pattern resolved to.
type matchRange struct {
	Start int
	End   int
}

// joinLines reassembles a block's accumulated lines the way they were
// fed in: each line followed by its own LF, including the last. This
// mirrors how the original content itself is laid out, so an exact
// substring search against it lines up on real line boundaries instead
// of leaving a dangling newline unconsumed.
func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// locateExact implements tier 1: exact substring search from startIndex.
func locateExact(original, pattern string, startIndex int) (matchRange, bool) {
	idx := strings.Index(original[startIndex:], pattern)
	if idx == -1 {
		return matchRange{}, false
	}
	start := startIndex + idx
	return matchRange{Start: start, End: start + len(pattern)}, true
}

// startLineForIndex returns the index of the original line containing
// byte offset startIndex, given the original split on LF.
func startLineForIndex(originalLines []string, startIndex int) int {
	lineNum := 0
	current := 0
	for current < startIndex && lineNum < len(originalLines) {
		current += len(originalLines[lineNum]) + 1 // +1 for the LF
		lineNum++
	}
	return lineNum
}

// trimTrailingEmptyLine drops a trailing empty string produced by
// splitting a pattern that ends in its own terminating LF.
func trimTrailingEmptyLine(lines []string) []string {
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	return lines
}

// byteOffsetOfLine sums original line lengths (plus one LF each) for the
// first n lines, giving the byte offset where line n begins.
func byteOffsetOfLine(originalLines []string, n int) int {
	offset := 0
	for k := 0; k < n; k++ {
		offset += len(originalLines[k]) + 1
	}
	return offset
}

// matchEndOffset computes the byte offset just past the last of count
// lines starting at line index i. When alwaysIncludeTrailingLF is true
// (the strict engine's rule) every matched line contributes len+1, even
// the file's last line. When false (the lenient engine's rule) the LF is
// added only for lines that are not the original's last line.
func matchEndOffset(originalLines []string, i, count int, alwaysIncludeTrailingLF bool) int {
	end := byteOffsetOfLine(originalLines, i)
	for k := 0; k < count; k++ {
		end += len(originalLines[i+k])
		if alwaysIncludeTrailingLF || i+k < len(originalLines)-1 {
			end++
		}
	}
	return end
}

// locateLineTrimmed implements tier 2: match each pattern line against
// the corresponding original line after trimming ASCII whitespace from
// both ends.
func locateLineTrimmed(original, pattern string, startIndex int, alwaysIncludeTrailingLF bool) (matchRange, bool) {
	originalLines := strings.Split(original, "\n")
	searchLines := trimTrailingEmptyLine(strings.Split(pattern, "\n"))
	if len(searchLines) == 0 {
		return matchRange{}, false
	}

	startLine := startLineForIndex(originalLines, startIndex)

	for i := startLine; i <= len(originalLines)-len(searchLines); i++ {
		if !linesMatchTrimmed(originalLines, searchLines, i) {
			continue
		}
		start := byteOffsetOfLine(originalLines, i)
		end := matchEndOffset(originalLines, i, len(searchLines), alwaysIncludeTrailingLF)
		return matchRange{Start: start, End: end}, true
	}
	return matchRange{}, false
}

// locateBlockAnchor implements tier 3: match only the first and last
// pattern lines (trimmed), accepting anything in between. Only used for
// patterns with at least 3 lines.
func locateBlockAnchor(original, pattern string, startIndex int, alwaysIncludeTrailingLF bool) (matchRange, bool) {
	originalLines := strings.Split(original, "\n")
	searchLines := strings.Split(pattern, "\n")
	if len(searchLines) < 3 {
		return matchRange{}, false
	}
	searchLines = trimTrailingEmptyLine(searchLines)

	firstLine := strings.TrimSpace(searchLines[0])
	lastLine := strings.TrimSpace(searchLines[len(searchLines)-1])
	blockSize := len(searchLines)

	startLine := startLineForIndex(originalLines, startIndex)

	for i := startLine; i <= len(originalLines)-blockSize; i++ {
		if strings.TrimSpace(originalLines[i]) != firstLine {
			continue
		}
		if strings.TrimSpace(originalLines[i+blockSize-1]) != lastLine {
			continue
		}
		start := byteOffsetOfLine(originalLines, i)
		end := matchEndOffset(originalLines, i, blockSize, alwaysIncludeTrailingLF)
		return matchRange{Start: start, End: end}, true
	}
	return matchRange{}, false
}

func linesMatchTrimmed(originalLines, searchLines []string, from int) bool {
	for j, searchLine := range searchLines {
		if strings.TrimSpace(originalLines[from+j]) != strings.TrimSpace(searchLine) {
			return false
		}
	}
	return true
}

// locate runs the three-tier strategy in order, stopping at the first
// tier that produces a result.
func locate(original, pattern string, startIndex int, alwaysIncludeTrailingLF bool) (matchRange, bool) {
	if m, ok := locateExact(original, pattern, startIndex); ok {
		return m, true
	}
	if m, ok := locateLineTrimmed(original, pattern, startIndex, alwaysIncludeTrailingLF); ok {
		return m, true
	}
	return locateBlockAnchor(original, pattern, startIndex, alwaysIncludeTrailingLF)
}
