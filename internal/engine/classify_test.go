package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMatchExact(t *testing.T) {
	original := "line1\nline2\nline3\n"
	assert.Equal(t, TierExact, ClassifyMatch(original, "line2\n", 0, true))
}

func TestClassifyMatchLineTrimmed(t *testing.T) {
	original := "func f() {\n    return 1\n}\n"
	assert.Equal(t, TierLineTrimmed, ClassifyMatch(original, "func f() {\nreturn 1\n}\n", 0, true))
}

func TestClassifyMatchBlockAnchor(t *testing.T) {
	original := "func f() {\n    x := 1\n    return x\n}\n"
	pattern := "func f() {\nanything at all\nand more\n}\n"
	assert.Equal(t, TierBlockAnchor, ClassifyMatch(original, pattern, 0, true))
}

func TestClassifyMatchNone(t *testing.T) {
	original := "line1\nline2\n"
	assert.Equal(t, TierNone, ClassifyMatch(original, "does not exist", 0, true))
}
