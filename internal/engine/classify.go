package engine

// MatchTier names which locator tier resolved a search pattern.
type MatchTier string

const (
	TierExact       MatchTier = "exact"
	TierLineTrimmed MatchTier = "line-trimmed"
	TierBlockAnchor MatchTier = "block-anchor"
	TierNone        MatchTier = "no-match"
)

// ClassifyMatch reports which tier would resolve pattern against original
// starting at startIndex, without producing the match range itself. It
// exists for callers that want to surface match provenance (a preview UI
// logging how a block was found) without duplicating the locator's tier
// order themselves.
func ClassifyMatch(original, pattern string, startIndex int, alwaysIncludeTrailingLF bool) MatchTier {
	if pattern == "" {
		return TierExact
	}
	if _, ok := locateExact(original, pattern, startIndex); ok {
		return TierExact
	}
	if _, ok := locateLineTrimmed(original, pattern, startIndex, alwaysIncludeTrailingLF); ok {
		return TierLineTrimmed
	}
	if _, ok := locateBlockAnchor(original, pattern, startIndex, alwaysIncludeTrailingLF); ok {
		return TierBlockAnchor
	}
	return TierNone
}
