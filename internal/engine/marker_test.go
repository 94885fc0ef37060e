package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSearchStart(t *testing.T) {
	assert.True(t, isSearchStart("------- SEARCH"))
	assert.True(t, isSearchStart("---------- SEARCH"))
	assert.True(t, isSearchStart("<<<<<<< SEARCH"))
	assert.True(t, isSearchStart("------- SEARCH>"))
	assert.False(t, isSearchStart("------- search"))
	assert.False(t, isSearchStart("some other line"))
}

func TestIsSeparator(t *testing.T) {
	assert.True(t, isSeparator("======="))
	assert.True(t, isSeparator("=========="))
	assert.False(t, isSeparator("======= "))
	assert.False(t, isSeparator("=="))
}

func TestIsReplaceEnd(t *testing.T) {
	assert.True(t, isReplaceEnd("+++++++ REPLACE"))
	assert.True(t, isReplaceEnd(">>>>>>> REPLACE"))
	assert.True(t, isReplaceEnd("+++++++ REPLACE>"))
	assert.False(t, isReplaceEnd("REPLACE"))
}

func TestMarkerRegexMemoization(t *testing.T) {
	a := searchStartRe()
	b := searchStartRe()
	assert.Same(t, a, b)
}
