// Package engine implements the SEARCH/REPLACE diff application engine:
// a tolerant marker recognizer, a three-tier match locator, and two
// coexisting dialects (a strict, left-to-right-ordered engine and a
// lenient, position-sorting engine) that apply a marker-delimited edit
// script to an original text buffer.
package engine

import "fmt"

// Kind identifies one of the engine's stable error categories.
type Kind int

const (
	// SearchBlockNotFound means all three match tiers failed to locate
	// a SEARCH block's pattern in the original text.
	SearchBlockNotFound Kind = iota
	// SearchBlockIncorrectMatch means a resolved match starts before the
	// strict engine's cursor, violating left-to-right ordering.
	SearchBlockIncorrectMatch
	// InvalidStateTransition means the state machine observed an illegal
	// transition that salvage could not repair.
	InvalidStateTransition
	// NoLinesAvailable means the lenient engine met a malformed
	// marker-like line outside any block.
	NoLinesAvailable
	// InvalidReplaceMarker means salvage of a missing SEARCH-start could
	// not find a rewritable SEARCH-like line.
	InvalidReplaceMarker
	// MalformedReplaceBlock means salvage of a missing separator could
	// not find a rewritable '='-run line.
	MalformedReplaceBlock
	// MissingReplaceMarker means salvage of a missing REPLACE-end found
	// no rewritable '+'/'>' line.
	MissingReplaceMarker
	// ProcessingIncomplete means is_final was set but the engine was not
	// Idle when the input ran out.
	ProcessingIncomplete
)

// DiffError is the engine's error type. Kind is stable across versions;
// Text carries the search pattern for the two match-related kinds and
// LineIndex carries the salvage line index where applicable.
type DiffError struct {
	Kind      Kind
	Text      string
	LineIndex int
}

func (e *DiffError) Error() string {
	switch e.Kind {
	case SearchBlockNotFound:
		return fmt.Sprintf("the SEARCH block:\n%s\n...does not match anything in the file.", e.Text)
	case SearchBlockIncorrectMatch:
		return fmt.Sprintf("the SEARCH block:\n%s\n...matched an incorrect content in the file.", e.Text)
	case InvalidStateTransition:
		return "invalid state transition.\nvalid transitions are:\n- Idle -> InSearch\n- InSearch -> InReplace"
	case NoLinesAvailable:
		return "invalid SEARCH/REPLACE block structure - no lines available to process"
	case InvalidReplaceMarker:
		return fmt.Sprintf("invalid REPLACE marker detected - could not find matching SEARCH block starting from line %d", e.LineIndex)
	case MalformedReplaceBlock:
		return fmt.Sprintf("malformed REPLACE block - missing valid separator after line %d", e.LineIndex)
	case MissingReplaceMarker:
		return "malformed SEARCH/REPLACE block structure: missing valid closing REPLACE marker"
	case ProcessingIncomplete:
		return "file processing incomplete - SEARCH/REPLACE operations still active during finalization"
	default:
		return "unknown diff error"
	}
}

func errSearchBlockNotFound(text string) error {
	return &DiffError{Kind: SearchBlockNotFound, Text: text}
}

func errSearchBlockIncorrectMatch(text string) error {
	return &DiffError{Kind: SearchBlockIncorrectMatch, Text: text}
}

func errInvalidStateTransition() error {
	return &DiffError{Kind: InvalidStateTransition}
}

func errNoLinesAvailable() error {
	return &DiffError{Kind: NoLinesAvailable}
}

func errInvalidReplaceMarker(lineIndex int) error {
	return &DiffError{Kind: InvalidReplaceMarker, LineIndex: lineIndex}
}

func errMalformedReplaceBlock(lineIndex int) error {
	return &DiffError{Kind: MalformedReplaceBlock, LineIndex: lineIndex}
}

func errMissingReplaceMarker() error {
	return &DiffError{Kind: MissingReplaceMarker}
}

func errProcessingIncomplete() error {
	return &DiffError{Kind: ProcessingIncomplete}
}
