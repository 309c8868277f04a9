package keywords

import (
	"sort"
	"strings"

	"movie_keywords/internal/filter"
)

// Kind names one of the keyword sets collected from eligible movies.
type Kind int

const (
	Titles Kind = iota
	URLs
	Writers
	Directors
	Actors
	Characters
)

var kindNames = [...]string{
	Titles:     "movie_names",
	URLs:       "movie_urls",
	Writers:    "writer_names",
	Directors:  "director_names",
	Actors:     "actor_names",
	Characters: "character_names",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every keyword set in output order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Accumulator collects the distinct keyword sets and the status histogram of
// one run. It only grows.
type Accumulator struct {
	sets      [len(kindNames)]map[string]struct{}
	histogram map[filter.Status]int
	total     int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{histogram: make(map[filter.Status]int)}
	for i := range a.sets {
		a.sets[i] = make(map[string]struct{})
	}
	return a
}

// Add records a value in the given set. Line breaks are folded into spaces
// so every value stays on one output line. Empty values are ignored.
func (a *Accumulator) Add(kind Kind, value string) {
	if strings.ContainsAny(value, "\r\n") {
		value = normalizeText(value)
	}
	if value == "" {
		return
	}
	a.sets[kind][value] = struct{}{}
}

// Observe counts one processed document under its status.
func (a *Accumulator) Observe(status filter.Status) {
	a.histogram[status]++
	a.total++
}

// Len returns the number of distinct values in a set.
func (a *Accumulator) Len(kind Kind) int {
	return len(a.sets[kind])
}

// Contains reports whether the set holds value.
func (a *Accumulator) Contains(kind Kind, value string) bool {
	_, ok := a.sets[kind][value]
	return ok
}

// Values returns the set sorted, so repeated runs produce identical output.
func (a *Accumulator) Values(kind Kind) []string {
	out := make([]string, 0, len(a.sets[kind]))
	for v := range a.sets[kind] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Count returns how many documents received status.
func (a *Accumulator) Count(status filter.Status) int {
	return a.histogram[status]
}

// Histogram returns a copy of the status counts.
func (a *Accumulator) Histogram() map[filter.Status]int {
	out := make(map[filter.Status]int, len(a.histogram))
	for k, v := range a.histogram {
		out[k] = v
	}
	return out
}

// Total is the number of documents observed.
func (a *Accumulator) Total() int {
	return a.total
}
