// Package collection implements MultiRes[T], the spec §4.G thin
// resolution-tag/date-keyed map used to hold per-(tag,date) images,
// masks, or other per-acquisition values through the planner and
// fusion pipeline.
package collection

import (
	"sort"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

type key struct {
	tag  string
	date int
}

// MultiRes is a map keyed by (resolution tag, date), generic over the
// stored value type. The zero value is ready to use.
type MultiRes[T any] struct {
	entries map[key]T
}

func New[T any]() *MultiRes[T] {
	return &MultiRes[T]{entries: make(map[key]T)}
}

// Set stores v under (tag, date), overwriting any existing entry.
func (m *MultiRes[T]) Set(tag string, date int, v T) {
	if m.entries == nil {
		m.entries = make(map[key]T)
	}
	m.entries[key{tag, date}] = v
}

// Get retrieves the value stored under (tag, date). Missing keys raise
// logic_error per spec.
func (m *MultiRes[T]) Get(tag string, date int) (T, error) {
	var zero T
	v, ok := m.entries[key{tag, date}]
	if !ok {
		return zero, fuserr.Logicf("no entry for tag %q date %d", tag, date)
	}
	return v, nil
}

// Has reports whether (tag, date) is present.
func (m *MultiRes[T]) Has(tag string, date int) bool {
	_, ok := m.entries[key{tag, date}]
	return ok
}

// Remove deletes (tag, date). Missing keys raise logic_error.
func (m *MultiRes[T]) Remove(tag string, date int) error {
	if !m.Has(tag, date) {
		return fuserr.Logicf("no entry for tag %q date %d", tag, date)
	}
	delete(m.entries, key{tag, date})
	return nil
}

// GetResolutionTags returns the distinct tags present, in no
// particular order.
func (m *MultiRes[T]) GetResolutionTags() []string {
	seen := map[string]bool{}
	var out []string
	for k := range m.entries {
		if !seen[k.tag] {
			seen[k.tag] = true
			out = append(out, k.tag)
		}
	}
	return out
}

// GetDates returns the sorted-ascending dates present under tag.
func (m *MultiRes[T]) GetDates(tag string) []int {
	var out []int
	for k := range m.entries {
		if k.tag == tag {
			out = append(out, k.date)
		}
	}
	sort.Ints(out)
	return out
}

// Count returns the number of entries under tag; CountAll returns the
// total number of entries across all tags.
func (m *MultiRes[T]) Count(tag string) int {
	n := 0
	for k := range m.entries {
		if k.tag == tag {
			n++
		}
	}
	return n
}

func (m *MultiRes[T]) CountAll() int { return len(m.entries) }

// GetAny returns an arbitrary entry, used when the caller only needs
// one representative value (e.g. to read a common pixel type). Fails
// with logic_error if the collection is empty.
func (m *MultiRes[T]) GetAny() (T, error) {
	var zero T
	for _, v := range m.entries {
		return v, nil
	}
	return zero, fuserr.Logicf("multiRes collection is empty")
}
