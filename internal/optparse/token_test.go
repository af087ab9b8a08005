package optparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_ScenarioS6OuterAndInnerPasses(t *testing.T) {
	input := "--img='-f \"a b.tif\" -d 0 -t h # comment\n      -c (-x 1 -y 2 -w 3 -h 4)'"

	outer := TokenizeStrings(input)
	assert.Equal(t, []string{
		`--img=-f "a b.tif" -d 0 -t h -c (-x 1 -y 2 -w 3 -h 4)`,
	}, outer)

	_, value, hasEq := splitEq(outer[0])
	assert.True(t, hasEq)

	inner := TokenizeStrings(value)
	assert.Equal(t, []string{
		"-f", "a b.tif", "-d", "0", "-t", "h", "-c", "-x 1 -y 2 -w 3 -h 4",
	}, inner)
}

func TestTokenize_SplitsOnUnquotedWhitespace(t *testing.T) {
	got := TokenizeStrings("  -a  1   -b 2  ")
	assert.Equal(t, []string{"-a", "1", "-b", "2"}, got)
}

func TestTokenize_CommentRunsToEndOfLine(t *testing.T) {
	got := TokenizeStrings("-a 1 # this is dropped\n-b 2")
	assert.Equal(t, []string{"-a", "1", "-b", "2"}, got)
}

func TestTokenize_EscapedHashIsLiteral(t *testing.T) {
	got := TokenizeStrings(`-a foo\#bar`)
	assert.Equal(t, []string{"-a", "foo#bar"}, got)
}

func TestTokenize_DoubleQuoteGroupPreservesSpaces(t *testing.T) {
	got := TokenizeStrings(`-f "a b.tif"`)
	assert.Equal(t, []string{"-f", "a b.tif"}, got)
}

func TestTokenize_ParenGroupQuotesWhitespace(t *testing.T) {
	got := TokenizeStrings("-c (-x 1 -y 2)")
	assert.Equal(t, []string{"-c", "-x 1 -y 2"}, got)
}

func TestTokenize_EmptyInputYieldsNoTokens(t *testing.T) {
	got := TokenizeStrings("")
	assert.Empty(t, got)
}

func TestTokenize_ExtraSeparatorsSplitLikeWhitespace(t *testing.T) {
	got := TokenizeStrings("1,2,3", ',')
	assert.Equal(t, []string{"1", "2", "3"}, got)
}
