package optparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileDesc() *Descriptor {
	return &Descriptor{ID: "file", Short: 'f', Long: "file", TakesArg: true}
}
func dateDesc() *Descriptor {
	return &Descriptor{ID: "date", Short: 'd', Long: "date", TakesArg: true, Checker: IntChecker()}
}
func verboseDesc() *Descriptor {
	return &Descriptor{ID: "verbose", Short: 'v', Long: "verbose", TakesArg: false}
}
func quietDesc() *Descriptor {
	return &Descriptor{ID: "quiet", Short: 'q', Long: "quiet", TakesArg: false}
}

func TestParser_ShortFlagStacking(t *testing.T) {
	p := New(Config{}, verboseDesc(), quietDesc())
	res, err := p.Parse([]string{"-vq"})
	require.NoError(t, err)
	_, hasV := res.First("verbose")
	_, hasQ := res.First("quiet")
	assert.True(t, hasV)
	assert.True(t, hasQ)
}

func TestParser_ShortOptionAttachedArgument(t *testing.T) {
	p := New(Config{}, fileDesc())
	res, err := p.Parse([]string{"-fpath.tif"})
	require.NoError(t, err)
	opt, ok := res.First("file")
	require.True(t, ok)
	assert.Equal(t, "path.tif", opt.Raw)
}

func TestParser_ShortOptionDetachedArgument(t *testing.T) {
	p := New(Config{}, fileDesc())
	res, err := p.Parse([]string{"-f", "path.tif"})
	require.NoError(t, err)
	opt, ok := res.First("file")
	require.True(t, ok)
	assert.Equal(t, "path.tif", opt.Raw)
}

func TestParser_StackedShortWithTrailingAttachedArg(t *testing.T) {
	p := New(Config{}, verboseDesc(), fileDesc())
	res, err := p.Parse([]string{"-vfpath.tif"})
	require.NoError(t, err)
	_, hasV := res.First("verbose")
	assert.True(t, hasV)
	opt, ok := res.First("file")
	require.True(t, ok)
	assert.Equal(t, "path.tif", opt.Raw)
}

func TestParser_LongOptionEquals(t *testing.T) {
	p := New(Config{}, dateDesc())
	res, err := p.Parse([]string{"--date=42"})
	require.NoError(t, err)
	opt, ok := res.First("date")
	require.True(t, ok)
	assert.Equal(t, int64(42), opt.Value)
}

func TestParser_LongOptionDetachedValue(t *testing.T) {
	p := New(Config{}, dateDesc())
	res, err := p.Parse([]string{"--date", "42"})
	require.NoError(t, err)
	opt, ok := res.First("date")
	require.True(t, ok)
	assert.Equal(t, int64(42), opt.Value)
}

func TestParser_LongOptionRejectsDetachedValueLookingLikeOption(t *testing.T) {
	p := New(Config{}, dateDesc())
	_, err := p.Parse([]string{"--date", "--verbose"})
	assert.Error(t, err)
}

func TestParser_DoubleDashTerminatesOptions(t *testing.T) {
	p := New(Config{}, verboseDesc())
	res, err := p.Parse([]string{"--", "-v", "file.tif"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-v", "file.tif"}, res.Args)
	_, hasV := res.First("verbose")
	assert.False(t, hasV)
}

func TestParser_LoneDashIsNonOptionArg(t *testing.T) {
	p := New(Config{}, verboseDesc())
	res, err := p.Parse([]string{"-"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-"}, res.Args)
}

func TestParser_AbbreviatedLongOption(t *testing.T) {
	p := New(Config{AbbrevMinLen: 3}, dateDesc())
	res, err := p.Parse([]string{"--dat=7"})
	require.NoError(t, err)
	opt, ok := res.First("date")
	require.True(t, ok)
	assert.Equal(t, int64(7), opt.Value)
}

func TestParser_AmbiguousAbbreviationFails(t *testing.T) {
	a := &Descriptor{ID: "alpha", Long: "alpha", TakesArg: false}
	b := &Descriptor{ID: "alternate", Long: "alternate", TakesArg: false}
	p := New(Config{AbbrevMinLen: 2}, a, b)
	_, err := p.Parse([]string{"--al"})
	assert.Error(t, err)
}

func TestParser_UnknownOptionFailsByDefault(t *testing.T) {
	p := New(Config{}, verboseDesc())
	_, err := p.Parse([]string{"--bogus"})
	assert.Error(t, err)
}

func TestParser_UnknownOptionSwallowed(t *testing.T) {
	p := New(Config{UnknownPolicy: UnknownSwallow}, verboseDesc())
	res, err := p.Parse([]string{"--bogus", "file.tif"})
	require.NoError(t, err)
	assert.Equal(t, []string{"--bogus"}, res.Unknown)
	assert.Equal(t, []string{"file.tif"}, res.Args)
}

func TestParser_OptionsMayNotFollowNonOptionsWhenDisabled(t *testing.T) {
	p := New(Config{OptionsMayFollowNonOptions: false}, verboseDesc())
	res, err := p.Parse([]string{"file.tif", "-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"file.tif", "-v"}, res.Args)
	_, hasV := res.First("verbose")
	assert.False(t, hasV)
}

func TestParser_OptionsMayFollowNonOptionsWhenEnabled(t *testing.T) {
	p := New(Config{OptionsMayFollowNonOptions: true}, verboseDesc())
	res, err := p.Parse([]string{"file.tif", "-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"file.tif"}, res.Args)
	_, hasV := res.First("verbose")
	assert.True(t, hasV)
}

func TestParser_SingleDashLongExactMatchWinsOverShortStack(t *testing.T) {
	// "verbose" as single-dash long vs. a short stack of v,e,r,b,o,s,e
	// (none of which are registered) — only the long interpretation
	// can possibly succeed here.
	p := New(Config{AllowSingleDashLong: true}, &Descriptor{ID: "verbose", Long: "verbose", TakesArg: false})
	res, err := p.Parse([]string{"-verbose"})
	require.NoError(t, err)
	_, ok := res.First("verbose")
	assert.True(t, ok)
}

func TestParser_SingleDashShortStackDisambiguatesOverAbbreviatedLong(t *testing.T) {
	// "-vq" is a valid short stack (v, q both registered); "verbose"
	// is only reachable via abbreviation, so the short stack wins.
	p := New(Config{AllowSingleDashLong: true, AbbrevMinLen: 1},
		verboseDesc(), quietDesc(),
		&Descriptor{ID: "vqlong", Long: "vqlongoption", TakesArg: false})
	res, err := p.Parse([]string{"-vq"})
	require.NoError(t, err)
	_, hasV := res.First("verbose")
	_, hasQ := res.First("quiet")
	assert.True(t, hasV)
	assert.True(t, hasQ)
}

func TestExpandOptionFiles_RecursivelyInlinesFileContents(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.opts")
	require.NoError(t, os.WriteFile(inner, []byte("-v\n"), 0o644))
	outer := filepath.Join(dir, "outer.opts")
	require.NoError(t, os.WriteFile(outer, []byte("--option-file="+inner+"\n-q\n"), 0o644))

	p := New(Config{}, verboseDesc(), quietDesc())
	res, err := p.Parse([]string{"--option-file=" + outer})
	require.NoError(t, err)
	_, hasV := res.First("verbose")
	_, hasQ := res.First("quiet")
	assert.True(t, hasV)
	assert.True(t, hasQ)
}
