// Package dictionary loads the keyword files written by a run and matches
// free text against them with an Aho-Corasick automaton.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"movie_keywords/internal/keywords"
	"movie_keywords/internal/output"
)

// Match is one keyword found in a text.
type Match struct {
	Keyword string
	Kinds   []keywords.Kind
}

// Dictionary matches text against keywords case-insensitively.
type Dictionary struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	kinds    map[string][]keywords.Kind
}

// New builds a dictionary from keyword sets. Keywords shorter than minLength
// runes are dropped since they match inside ordinary words.
func New(sets map[keywords.Kind][]string, minLength int) *Dictionary {
	d := &Dictionary{kinds: make(map[string][]keywords.Kind)}

	for _, kind := range keywords.Kinds() {
		for _, kw := range sets[kind] {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if len([]rune(normalized)) < minLength || normalized == "" {
				continue
			}
			if _, seen := d.kinds[normalized]; !seen {
				d.keywords = append(d.keywords, normalized)
			}
			d.kinds[normalized] = appendKind(d.kinds[normalized], kind)
		}
	}

	if len(d.keywords) > 0 {
		d.matcher = ahocorasick.NewStringMatcher(d.keywords)
	}
	return d
}

func appendKind(kinds []keywords.Kind, kind keywords.Kind) []keywords.Kind {
	for _, k := range kinds {
		if k == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

// Load reads the name sets from the keyword files in dir. URLs are not
// loaded; missing files are skipped.
func Load(dir string, minLength int) (*Dictionary, error) {
	sets := make(map[keywords.Kind][]string)
	for _, kind := range keywords.Kinds() {
		if kind == keywords.URLs {
			continue
		}
		values, err := readLines(filepath.Join(dir, output.FileName(kind)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		sets[kind] = values
	}
	return New(sets, minLength), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// Size is the number of distinct keywords.
func (d *Dictionary) Size() int {
	return len(d.keywords)
}

// Match returns the keywords found in text, sorted.
func (d *Dictionary) Match(text string) []Match {
	if d.matcher == nil {
		return nil
	}

	hits := d.matcher.Match([]byte(strings.ToLower(text)))
	matches := make([]Match, 0, len(hits))
	for _, idx := range hits {
		if idx < 0 || idx >= len(d.keywords) {
			continue
		}
		kw := d.keywords[idx]
		matches = append(matches, Match{Keyword: kw, Kinds: d.kinds[kw]})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Keyword < matches[j].Keyword })
	return matches
}
