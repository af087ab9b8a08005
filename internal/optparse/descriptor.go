package optparse

// ArgClass is a checker's classification of an option's argument.
type ArgClass int

const (
	// ArgNone means the option takes no argument (a bare flag).
	ArgNone ArgClass = iota
	// ArgOK means the argument was present and valid; Value carries
	// the checker's parsed representation.
	ArgOK
	// ArgIgnore means the argument was present but the checker chose
	// to discard it (e.g. an empty vector-of-T element list).
	ArgIgnore
	// ArgIllegal means the argument failed validation; the checker
	// also returns a descriptive error in this case.
	ArgIllegal
)

func (c ArgClass) String() string {
	switch c {
	case ArgNone:
		return "NONE"
	case ArgOK:
		return "OK"
	case ArgIgnore:
		return "IGNORE"
	case ArgIllegal:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Checker validates and parses the raw text of an option argument.
// Implementations classify the argument; ArgIllegal must be paired
// with a non-nil error describing what was wrong.
type Checker interface {
	Check(raw string) (value any, class ArgClass, err error)
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(raw string) (any, ArgClass, error)

func (f CheckerFunc) Check(raw string) (any, ArgClass, error) { return f(raw) }

// Descriptor declares one recognized option.
type Descriptor struct {
	// ID is the spec identifier used to group parsed Options and is
	// independent of spelling, so long and short forms of the same
	// option share one ID.
	ID string
	// Short is the short-form letter ('f' for -f), or 0 if none.
	Short rune
	// Long is the long-form name ("file" for --file), or "" if none.
	Long string
	// TakesArg is false for bare flags (the checker, if any, is never
	// consulted and the resulting Option always has Class == ArgNone).
	TakesArg bool
	// Checker validates and parses the argument text. May be nil for
	// a TakesArg option that accepts any text verbatim (Value is then
	// the raw string, Class is ArgOK for non-empty text).
	Checker Checker
}

// Option is one parsed occurrence of a Descriptor in the argument
// token list.
type Option struct {
	ID         string
	Descriptor *Descriptor
	// Spelling is the literal form the user typed ("-f" or "--file").
	Spelling string
	Raw      string
	Value    any
	Class    ArgClass
}

// Result is the outcome of parsing one argument token list.
type Result struct {
	// Options is the insertion-ordered list of every parsed option
	// occurrence, in the order the tokens appeared.
	Options []Option
	// ByID maps a Descriptor's ID to its occurrences, in order. An ID
	// with no occurrences maps to an empty (nil) slice when queried
	// through Get, never panics or omits the key.
	ByID map[string][]Option
	// Args is the list of non-option arguments, in order.
	Args []string
	// Unknown is the list of unrecognized option tokens, in order,
	// present only when the parser's UnknownPolicy does not fail fast.
	Unknown []string
}

// Get returns the parsed occurrences for a Descriptor ID, or nil if
// the ID never occurred.
func (r *Result) Get(id string) []Option { return r.ByID[id] }

// First returns the first parsed occurrence for a Descriptor ID and
// whether one was present.
func (r *Result) First(id string) (Option, bool) {
	opts := r.ByID[id]
	if len(opts) == 0 {
		return Option{}, false
	}
	return opts[0], true
}
