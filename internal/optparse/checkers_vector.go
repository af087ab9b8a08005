package optparse

import (
	"fmt"
	"strings"
)

// VectorOfChecker splits raw on commas and/or whitespace and runs
// elem against each field, collecting the parsed values in order. An
// empty raw string (after trimming) yields an empty, non-nil slice
// classified ArgIgnore, matching the "empty vector-of-T element list"
// case the ArgIgnore classification exists for.
func VectorOfChecker(elem Checker) Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return []any{}, ArgIgnore, nil
		}
		fields := splitVectorFields(trimmed)
		out := make([]any, 0, len(fields))
		for _, f := range fields {
			v, class, err := elem.Check(f)
			if err != nil {
				return nil, ArgIllegal, err
			}
			if class == ArgIllegal {
				return nil, ArgIllegal, fmt.Errorf("vector element %q rejected", f)
			}
			out = append(out, v)
		}
		return out, ArgOK, nil
	})
}

func splitVectorFields(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}
