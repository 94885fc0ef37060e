package engine

import (
	"sync"

	"github.com/coregx/coregex"
)

var (
	searchStartRe       = newMarkerRegex(`^[-]{3,} SEARCH>?$`)
	legacySearchStartRe = newMarkerRegex(`^[<]{3,} SEARCH>?$`)
	separatorRe         = newMarkerRegex(`^[=]{3,}$`)
	replaceEndRe        = newMarkerRegex(`^[+]{3,} REPLACE>?$`)
	legacyReplaceEndRe  = newMarkerRegex(`^[>]{3,} REPLACE>?$`)

	// Salvage-only patterns: a marker missing its trailing ">?" variance
	// isn't in play here since these match the un-suffixed canonical form
	// that a malformed line is being recognized as, for the lookahead
	// check salvage uses to decide whether a block can be recovered.
	searchTagRe     = newMarkerRegex(`^([-]{3,}|[<]{3,}) SEARCH$`)
	replaceEndTagRe = newMarkerRegex(`^([+]{3,}|[>]{3,}) REPLACE$`)
)

// newMarkerRegex memoizes a compiled coregex pattern behind a
// once-initialized singleton, per spec.md's note that compiled regular
// expressions may be memoized at process scope as immutable, lazily
// initialized singletons.
func newMarkerRegex(pattern string) func() *coregex.Regex {
	var (
		once sync.Once
		re   *coregex.Regex
	)
	return func() *coregex.Regex {
		once.Do(func() {
			re = coregex.MustCompile(pattern)
		})
		return re
	}
}

// isSearchStart reports whether line is a SEARCH-start marker, current or
// legacy dialect.
func isSearchStart(line string) bool {
	return searchStartRe().MatchString(line) || legacySearchStartRe().MatchString(line)
}

// isSeparator reports whether line is a separator marker. A trailing
// space (e.g. "======= ") deliberately fails this check.
func isSeparator(line string) bool {
	return separatorRe().MatchString(line)
}

// isReplaceEnd reports whether line is a REPLACE-end marker, current or
// legacy dialect.
func isReplaceEnd(line string) bool {
	return replaceEndRe().MatchString(line) || legacyReplaceEndRe().MatchString(line)
}
