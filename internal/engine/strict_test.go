package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diffBlock(search, replace string) string {
	return "------- SEARCH\n" + search + "\n=======\n" + replace + "\n+++++++ REPLACE\n"
}

func TestApplyStrictSingleBlock(t *testing.T) {
	original := "line1\nline2\nline3\n"
	diff := diffBlock("line2", "replaced")

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "line1\nreplaced\nline3\n", got)
}

func TestApplyStrictLegacyMarkers(t *testing.T) {
	original := "line1\nline2\nline3\n"
	diff := "<<<<<<< SEARCH\nline2\n=======\nreplaced\n>>>>>>> REPLACE\n"

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "line1\nreplaced\nline3\n", got)
}

func TestApplyStrictMultipleBlocksInOrder(t *testing.T) {
	original := "a\nb\nc\nd\n"
	diff := diffBlock("a", "A") + diffBlock("c", "C")

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "A\nb\nC\nd\n", got)
}

func TestApplyStrictOutOfOrderBlocksRejected(t *testing.T) {
	original := "a\nb\nc\nd\n"
	diff := diffBlock("c", "C") + diffBlock("a", "A")

	_, err := ApplyStrict(diff, original, true)
	require.Error(t, err)
	var diffErr *DiffError
	require.ErrorAs(t, err, &diffErr)
	assert.Equal(t, SearchBlockNotFound, diffErr.Kind)
}

func TestApplyStrictEmptySearchOnEmptyOriginalInsertsWholeFile(t *testing.T) {
	diff := "------- SEARCH\n=======\nbrand new content\n+++++++ REPLACE\n"
	got, err := ApplyStrict(diff, "", true)
	require.NoError(t, err)
	assert.Equal(t, "brand new content\n", got)
}

func TestApplyStrictEmptySearchOnNonEmptyOriginalReplacesWholeFile(t *testing.T) {
	original := "old stuff\nmore old stuff\n"
	diff := "------- SEARCH\n=======\nall new\n+++++++ REPLACE\n"
	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "all new\n", got)
}

func TestApplyStrictSearchNotFound(t *testing.T) {
	original := "line1\nline2\n"
	diff := diffBlock("does not exist", "x")

	_, err := ApplyStrict(diff, original, true)
	require.Error(t, err)
	var diffErr *DiffError
	require.ErrorAs(t, err, &diffErr)
	assert.Equal(t, SearchBlockNotFound, diffErr.Kind)
}

func TestApplyStrictLineTrimmedFallback(t *testing.T) {
	original := "func f() {\n    return 1\n}\n"
	diff := diffBlock("func f() {\nreturn 1\n}", "func f() {\n    return 2\n}")

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "func f() {\n    return 2\n}\n", got)
}

// A diff that omits the final REPLACE-end marker is recovered at
// finalization: a resolved match with no closing marker is treated as if
// one had just arrived, per spec.md's documented §8 scenario 5.
func TestApplyStrictMissingFinalReplaceMarkerIsRecoveredAtFinalize(t *testing.T) {
	original := "line1\nline2\n"
	diff := "------- SEARCH\nline1\n=======\nreplaced\n"

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "replaced\nline2\n", got)
}

// SEARCH-start arriving with a pending line that reads as a failed
// attempt at closing the previous block (too few '+' to be a real
// REPLACE-end) is a genuine structural error, not passthrough text.
func TestApplyStrictBrokenReplaceEndBeforeSearchStartErrors(t *testing.T) {
	original := "line1\nline2\n"
	diff := "++ REPLACE\n" + diffBlock("line1", "replaced")

	_, err := ApplyStrict(diff, original, true)
	require.Error(t, err)
	var diffErr *DiffError
	require.ErrorAs(t, err, &diffErr)
	assert.Equal(t, MissingReplaceMarker, diffErr.Kind)
}

func TestApplyStrictUnclosedSearchBlockIsIncomplete(t *testing.T) {
	original := "line1\nline2\n"
	diff := "------- SEARCH\nline1\n"

	_, err := ApplyStrict(diff, original, true)
	require.Error(t, err)
	var diffErr *DiffError
	require.ErrorAs(t, err, &diffErr)
	assert.Equal(t, ProcessingIncomplete, diffErr.Kind)
}

func TestApplyStrictPassthroughContentOutsideBlocks(t *testing.T) {
	original := "line1\nline2\n"
	diff := "some preamble text\n" + diffBlock("line1", "replaced")

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "some preamble text\nreplaced\nline2\n", got)
}

func TestApplyStrictSalvagesMalformedSearchStart(t *testing.T) {
	original := "line1\nline2\n"
	// "-- SEARCH" is not a recognized marker (needs 3+ dashes), so it is
	// buffered as ordinary content until the confirmed separator forces
	// salvage to reinterpret it as the block's SEARCH-start line.
	diff := "-- SEARCH\nline1\n=======\nreplaced\n+++++++ REPLACE\n"

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "replaced\nline2\n", got)
}

func TestApplyStrictReplaceContentCanContainMarkerLookingLines(t *testing.T) {
	original := "line1\n"
	diff := diffBlock("line1", "looks like =======\nbut is not a marker")

	got, err := ApplyStrict(diff, original, true)
	require.NoError(t, err)
	assert.Equal(t, "looks like =======\nbut is not a marker\n", got)
}

// Streaming: a prefix of a well-formed diff never raises
// ProcessingIncomplete, and omits the untouched tail of original until
// the caller marks the input final.
func TestApplyStrictStreamingPrefixNeverIncomplete(t *testing.T) {
	original := "line1\nline2\nline3\n"
	prefix := "------- SEARCH\nline2\n=======\nreplaced\n"

	got, err := ApplyStrict(prefix, original, false)
	require.NoError(t, err)
	assert.Equal(t, "line1\nreplaced\n", got)

	full := prefix + "+++++++ REPLACE\n"
	got, err = ApplyStrict(full, original, true)
	require.NoError(t, err)
	assert.Equal(t, "line1\nreplaced\nline3\n", got)
}

// A diff string ending mid-marker (a half-written "+++++++ REPL") is
// dropped by the streaming pre-pass rather than treated as content, and
// the tail of original is withheld until the caller marks input final.
func TestApplyStrictStreamingDropsHalfWrittenTrailingMarker(t *testing.T) {
	original := "line1\nline2\n"
	diff := diffBlock("line1", "replaced") + "+++++++ REPL"

	got, err := ApplyStrict(diff, original, false)
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", got)
}
