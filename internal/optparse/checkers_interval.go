package optparse

import "github.com/fusionkit/imgfusion/internal/interval"

// IntervalChecker parses a single interval literal via
// internal/interval's grammar (spec §6): "[a,b]", "(a,b)", "[a,b)",
// "(a,b]", with an optional comma and inf/infinity bounds.
func IntervalChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		iv, err := interval.ParseInterval(raw)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return iv, ArgOK, nil
	})
}

// IntervalSetChecker parses a whitespace- or comma-separated list of
// interval literals, related as union.
func IntervalSetChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		s, err := interval.ParseSet(raw)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return s, ArgOK, nil
	})
}
