// Package keywords runs the corpus pass: every movie is classified by the
// eligibility filter and the names of eligible movies are collected into
// distinct keyword sets.
package keywords

import (
	"context"
	"errors"
	"fmt"

	"movie_keywords/internal/filter"
	"movie_keywords/internal/logger"
	"movie_keywords/internal/models"
)

// ErrMalformedDocument marks an eligible movie whose name fields do not have
// the expected shape.
var ErrMalformedDocument = errors.New("malformed movie document")

const defaultProgressEvery = 20000

// Source is a corpus that can be counted and streamed once, front to back.
type Source interface {
	Count(ctx context.Context) (int64, error)
	ForEach(ctx context.Context, fn func(models.Movie) error) error
}

// Recorder observes per-document outcomes, e.g. for metrics.
type Recorder interface {
	ObserveStatus(status filter.Status)
	ObserveMalformed()
}

// Options configure an Aggregator.
type Options struct {
	ProgressEvery int
	Cleaner       *Cleaner
	Recorder      Recorder
}

// Aggregator drives the single sequential pass over the corpus.
type Aggregator struct {
	filter        *filter.Filter
	cleaner       *Cleaner
	recorder      Recorder
	progressEvery int
	log           logger.Logger
}

// NewAggregator returns an Aggregator classifying movies with f.
func NewAggregator(f *filter.Filter, log logger.Logger, opts Options) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if opts.Cleaner == nil {
		opts.Cleaner = NewCleaner(false, false)
	}
	return &Aggregator{
		filter:        f,
		cleaner:       opts.Cleaner,
		recorder:      opts.Recorder,
		progressEvery: opts.ProgressEvery,
		log:           log,
	}
}

// Run streams the whole source once and returns the filled accumulator.
// Malformed eligible documents are logged and skipped; only source errors
// abort the run.
func (a *Aggregator) Run(ctx context.Context, src Source) (*Accumulator, error) {
	total, err := src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	a.log.Info("found movies", logger.Int64("total", total))

	acc := NewAccumulator()
	processed := 0

	err = src.ForEach(ctx, func(m models.Movie) error {
		if processed%a.progressEvery == 0 {
			a.log.Info("processing movies",
				logger.Int("processed", processed),
				logger.Int64("total", total))
		}
		processed++

		a.Process(acc, m)
		return nil
	})
	if err != nil {
		return acc, fmt.Errorf("iterate movies: %w", err)
	}

	return acc, nil
}

// Process classifies a single movie and merges its names when it is eligible.
func (a *Aggregator) Process(acc *Accumulator, m models.Movie) filter.Status {
	status := a.filter.FilterMovie(m)
	acc.Observe(status)
	if a.recorder != nil {
		a.recorder.ObserveStatus(status)
	}
	if !status.Eligible() {
		return status
	}

	if err := a.Merge(acc, m); err != nil {
		a.log.Error("failed to collect names for movie",
			logger.String("movie_id", m.ID()),
			logger.String("url", m.URL()),
			logger.Error(err))
		if a.recorder != nil {
			a.recorder.ObserveMalformed()
		}
	}
	return status
}

type staged struct {
	kind  Kind
	value string
}

// Merge adds the movie's title, URL, writers, director, actors and
// characters to the accumulator. Nothing is added if any of them is
// malformed.
func (a *Aggregator) Merge(acc *Accumulator, m models.Movie) error {
	var names []staged
	add := func(kind Kind, value string) {
		names = append(names, staged{kind: kind, value: value})
	}

	url, ok := m[models.FieldURL].(string)
	if !ok {
		return fieldError(models.FieldURL, m[models.FieldURL])
	}
	add(URLs, a.cleaner.URL(url))

	title, ok := m[models.FieldTitle].(string)
	if !ok {
		return fieldError(models.FieldTitle, m[models.FieldTitle])
	}
	add(Titles, a.cleaner.Name(title))

	if m.Has(models.FieldWriters) {
		writers, ok := models.Array(m[models.FieldWriters])
		if !ok {
			return fieldError(models.FieldWriters, m[models.FieldWriters])
		}
		for _, w := range writers {
			name, err := personName(w)
			if err != nil {
				return fmt.Errorf("%s: %w", models.FieldWriters, err)
			}
			add(Writers, a.cleaner.Name(name))
		}
	}

	if m.Has(models.FieldDirector) {
		name, err := personName(m[models.FieldDirector])
		if err != nil {
			return fmt.Errorf("%s: %w", models.FieldDirector, err)
		}
		add(Directors, a.cleaner.Name(name))
	}

	if m.Has(models.FieldCastMembers) {
		cast, ok := models.Array(m[models.FieldCastMembers])
		if !ok {
			return fieldError(models.FieldCastMembers, m[models.FieldCastMembers])
		}
		for _, c := range cast {
			member, ok := models.Doc(c)
			if !ok {
				return fieldError(models.FieldCastMembers, c)
			}
			actor, err := optionalString(member, models.FieldName)
			if err != nil {
				return fmt.Errorf("%s: %w", models.FieldCastMembers, err)
			}
			character, err := optionalString(member, models.FieldCharacterName)
			if err != nil {
				return fmt.Errorf("%s: %w", models.FieldCastMembers, err)
			}
			add(Actors, a.cleaner.Name(actor))
			add(Characters, a.cleaner.Name(character))
		}
	}

	for _, n := range names {
		acc.Add(n.kind, n.value)
	}
	return nil
}

// personName accepts both {name: ...} sub-documents and bare strings.
func personName(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	doc, ok := models.Doc(v)
	if !ok {
		return "", fieldError("person", v)
	}
	name, ok := doc[models.FieldName].(string)
	if !ok {
		return "", fieldError(models.FieldName, doc[models.FieldName])
	}
	return name, nil
}

func optionalString(doc map[string]interface{}, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(field, v)
	}
	return s, nil
}

func fieldError(field string, v interface{}) error {
	if v == nil {
		return fmt.Errorf("%w: %s missing", ErrMalformedDocument, field)
	}
	return fmt.Errorf("%w: %s has type %T", ErrMalformedDocument, field, v)
}
