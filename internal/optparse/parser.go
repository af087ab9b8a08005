package optparse

import (
	"os"
	"strings"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// UnknownPolicy controls how the parser reacts to an option token that
// matches no Descriptor.
type UnknownPolicy int

const (
	// UnknownFail raises invalid_argument_error immediately.
	UnknownFail UnknownPolicy = iota
	// UnknownSwallow discards the token silently, recording it in
	// Result.Unknown.
	UnknownSwallow
	// UnknownSwallowWithArg discards the token and, if the following
	// token does not itself look like an option, discards that too.
	UnknownSwallowWithArg
)

// Config tunes the parser's grammar-level behaviors.
type Config struct {
	// AllowSingleDashLong lets a single-dash token match a long
	// Descriptor name (e.g. "-verbose") in addition to a stacked
	// short-option group.
	AllowSingleDashLong bool
	// AbbrevMinLen, if > 0, lets a long option be spelled with any
	// unambiguous prefix of at least this many characters.
	AbbrevMinLen int
	// OptionsMayFollowNonOptions, when false, stops recognizing
	// option tokens as soon as the first non-option argument is seen
	// (classic getopt, no permutation); when true, options and
	// positional arguments may be freely interspersed.
	OptionsMayFollowNonOptions bool
	// UnknownPolicy governs tokens that match no known Descriptor.
	UnknownPolicy UnknownPolicy
}

// Parser parses argument token lists against an ordered Descriptor
// list. A Parser owns no process-wide state (spec §5) and may be
// reused across independent Parse calls.
type Parser struct {
	config      Config
	descriptors []*Descriptor
	byShort     map[rune]*Descriptor
	byLong      map[string]*Descriptor
}

// New builds a Parser over descriptors, in the given order.
// Result.Options follows the order of the parsed arguments, not of the
// descriptors; descriptor order decides only which descriptor keeps a
// short or long spelling that two of them share (the later one) and
// the order of the abbreviation scan. Lookup itself is by short rune /
// long name.
func New(config Config, descriptors ...*Descriptor) *Parser {
	p := &Parser{
		config:      config,
		descriptors: descriptors,
		byShort:     map[rune]*Descriptor{},
		byLong:      map[string]*Descriptor{},
	}
	for _, d := range descriptors {
		if d.Short != 0 {
			p.byShort[d.Short] = d
		}
		if d.Long != "" {
			p.byLong[d.Long] = d
		}
	}
	return p
}

const optionFileFlag = "--option-file="

// expandOptionFiles replaces every --option-file=<path> pseudo-option
// with the tokenized contents of <path>, recursively, until none
// remain (spec: "expansion terminates when no such pseudo-option
// remains").
func expandOptionFiles(tokens []string) ([]string, error) {
	for {
		changed := false
		out := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			if !strings.HasPrefix(tok, optionFileFlag) {
				out = append(out, tok)
				continue
			}
			path := tok[len(optionFileFlag):]
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fuserr.Wrap(fuserr.InvalidArgument, tok, err)
			}
			out = append(out, TokenizeStrings(string(data))...)
			changed = true
		}
		tokens = out
		if !changed {
			return tokens, nil
		}
	}
}

// Parse expands --option-file pseudo-options and parses the resulting
// token list against the Parser's descriptors.
func (p *Parser) Parse(rawTokens []string) (*Result, error) {
	tokens, err := expandOptionFiles(rawTokens)
	if err != nil {
		return nil, err
	}

	res := &Result{ByID: map[string][]Option{}}
	for _, d := range p.descriptors {
		if _, ok := res.ByID[d.ID]; !ok {
			res.ByID[d.ID] = nil
		}
	}

	terminated := false
	optionsDone := false
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case terminated || optionsDone:
			res.Args = append(res.Args, tok)
			i++
		case tok == "--":
			terminated = true
			i++
		case tok == "-" || !strings.HasPrefix(tok, "-"):
			res.Args = append(res.Args, tok)
			if !p.config.OptionsMayFollowNonOptions {
				optionsDone = true
			}
			i++
		default:
			var consumed int
			if strings.HasPrefix(tok, "--") {
				consumed, err = p.parseLong(tok[2:], tokens, i, res)
			} else {
				consumed, err = p.parseDash(tok, tokens, i, res)
			}
			if err != nil {
				return nil, err
			}
			i += consumed
		}
	}
	return res, nil
}

func splitEq(s string) (name, value string, hasEq bool) {
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}

func (p *Parser) exactLong(name string) *Descriptor { return p.byLong[name] }

// abbrevLong resolves name as an unambiguous prefix of some long
// option, per Config.AbbrevMinLen. ambiguous is true (with a non-nil
// err) when two or more descriptors share the prefix.
func (p *Parser) abbrevLong(name string) (d *Descriptor, ambiguous bool, err error) {
	if p.config.AbbrevMinLen <= 0 || len(name) < p.config.AbbrevMinLen {
		return nil, false, nil
	}
	var matches []*Descriptor
	for _, cand := range p.descriptors {
		if cand.Long != "" && strings.HasPrefix(cand.Long, name) {
			matches = append(matches, cand)
		}
	}
	switch len(matches) {
	case 0:
		return nil, false, nil
	case 1:
		return matches[0], false, nil
	default:
		return nil, true, fuserr.Invalidf("ambiguous option prefix --%s", name)
	}
}

func (p *Parser) resolveLongStrict(name string) (*Descriptor, error) {
	if d := p.exactLong(name); d != nil {
		return d, nil
	}
	d, _, err := p.abbrevLong(name)
	return d, err
}

// parseLong handles a "--..." token.
func (p *Parser) parseLong(raw string, tokens []string, i int, res *Result) (int, error) {
	name, value, hasEq := splitEq(raw)
	d, err := p.resolveLongStrict(name)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return p.handleUnknown(tokens, i, res)
	}
	return p.applyLongMatch(d, "--"+name, value, hasEq, tokens, i, res)
}

// parseDash handles a single-dash token, which may be a stacked short
// group or (if configured) a single-dash long option. Per spec: "when
// a token can match both a stacked short group and a single-dash long
// option, the long option wins unless the short form disambiguates."
// An exact long-name match is unambiguous and always wins; a valid
// short-option stack beats a merely-abbreviated long match; otherwise
// an abbreviated long match is tried last.
func (p *Parser) parseDash(tok string, tokens []string, i int, res *Result) (int, error) {
	body := tok[1:]
	name, value, hasEq := splitEq(body)

	if p.config.AllowSingleDashLong {
		if d := p.exactLong(name); d != nil {
			return p.applyLongMatch(d, "-"+name, value, hasEq, tokens, i, res)
		}
	}

	hits, attached, hasAttached, ok := p.scanShortStack(body)
	if ok {
		return p.execShortStack(hits, attached, hasAttached, tokens, i, res)
	}

	if p.config.AllowSingleDashLong {
		d, _, err := p.abbrevLong(name)
		if err != nil {
			return 0, err
		}
		if d != nil {
			return p.applyLongMatch(d, "-"+name, value, hasEq, tokens, i, res)
		}
	}

	return p.handleUnknown(tokens, i, res)
}

func (p *Parser) applyLongMatch(d *Descriptor, spelling, value string, hasEq bool, tokens []string, i int, res *Result) (int, error) {
	if !d.TakesArg {
		if hasEq {
			return 0, fuserr.Invalidf("option %s takes no argument", spelling)
		}
		res.appendFlag(d, spelling)
		return 1, nil
	}
	if hasEq {
		if err := res.appendChecked(d, spelling, value); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
		if err := res.appendChecked(d, spelling, tokens[i+1]); err != nil {
			return 0, err
		}
		return 2, nil
	}
	return 0, fuserr.Invalidf("option %s requires an argument", spelling)
}

// scanShortStack walks a single-dash token's body rune by rune. Every
// rune up to (and including) the first arg-taking descriptor must
// name a known short option; the first arg-taking descriptor
// terminates the stack and any remaining runes are its attached
// argument. ok is false if an unrecognized letter is encountered.
func (p *Parser) scanShortStack(body string) (hits []*Descriptor, attached string, hasAttached bool, ok bool) {
	runes := []rune(body)
	for idx, r := range runes {
		d := p.byShort[r]
		if d == nil {
			return nil, "", false, false
		}
		hits = append(hits, d)
		if d.TakesArg {
			if idx+1 < len(runes) {
				attached = string(runes[idx+1:])
				hasAttached = true
			}
			return hits, attached, hasAttached, true
		}
	}
	return hits, "", false, true
}

func (p *Parser) execShortStack(hits []*Descriptor, attached string, hasAttached bool, tokens []string, i int, res *Result) (int, error) {
	consumed := 1
	for _, d := range hits {
		spelling := "-" + string(d.Short)
		if !d.TakesArg {
			res.appendFlag(d, spelling)
			continue
		}
		var raw string
		if hasAttached {
			raw = attached
		} else if i+1 < len(tokens) {
			raw = tokens[i+1]
			consumed = 2
		} else {
			return 0, fuserr.Invalidf("option %s requires an argument", spelling)
		}
		if err := res.appendChecked(d, spelling, raw); err != nil {
			return 0, err
		}
	}
	return consumed, nil
}

func (p *Parser) handleUnknown(tokens []string, i int, res *Result) (int, error) {
	tok := tokens[i]
	switch p.config.UnknownPolicy {
	case UnknownSwallow:
		res.Unknown = append(res.Unknown, tok)
		return 1, nil
	case UnknownSwallowWithArg:
		res.Unknown = append(res.Unknown, tok)
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			return 2, nil
		}
		return 1, nil
	default:
		return 0, fuserr.Invalidf("unknown option %q", tok)
	}
}

func (res *Result) appendFlag(d *Descriptor, spelling string) {
	opt := Option{ID: d.ID, Descriptor: d, Spelling: spelling, Class: ArgNone}
	res.Options = append(res.Options, opt)
	res.ByID[d.ID] = append(res.ByID[d.ID], opt)
}

func (res *Result) appendChecked(d *Descriptor, spelling, raw string) error {
	var value any = raw
	class := ArgOK
	if d.Checker != nil {
		v, c, err := d.Checker.Check(raw)
		if err != nil {
			return fuserr.Wrap(fuserr.InvalidArgument, spelling, err)
		}
		if c == ArgIllegal {
			return fuserr.Invalidf("option %s: illegal argument %q", spelling, raw)
		}
		value, class = v, c
	}
	opt := Option{ID: d.ID, Descriptor: d, Spelling: spelling, Raw: raw, Value: value, Class: class}
	res.Options = append(res.Options, opt)
	res.ByID[d.ID] = append(res.ByID[d.ID], opt)
	return nil
}
