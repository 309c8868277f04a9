// Package filter decides whether a movie document is eligible for the keyword
// dictionary. Extraction turns a loosely structured document into Fields and
// Evaluate applies the hard rules to them in a fixed order.
package filter

import (
	"strings"
	"time"

	"movie_keywords/internal/logger"
	"movie_keywords/internal/models"
)

// Policy carries the eligibility thresholds. AsOf is the dataset timestamp
// used for rating maturity and NextCutoff the first release date that is too
// late.
type Policy struct {
	AsOf           time.Time
	NextCutoff     time.Time
	MinRuntime     int
	MinScore       float64
	MinRatingCount int
	MaturityWindow time.Duration
	Country        string
	Language       string
}

// DefaultPolicy is the policy the dataset snapshot of 1 November 2015 was
// filtered with.
func DefaultPolicy() Policy {
	return Policy{
		AsOf:           time.Date(2015, time.November, 1, 0, 0, 0, 0, time.UTC),
		NextCutoff:     time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC),
		MinRuntime:     40,
		MinScore:       6.0,
		MinRatingCount: 1000,
		MaturityWindow: 14 * 24 * time.Hour,
		Country:        "USA",
		Language:       "english",
	}
}

// Evaluate returns the status of the first rule the fields fail, or OK.
// Rules are checked in order and later rules are never consulted once one
// fails.
func (p Policy) Evaluate(f Fields) Status {
	if f.ReleaseDate == nil {
		return NoReleaseDate
	}
	release := *f.ReleaseDate

	if !release.Before(p.NextCutoff) {
		return ReleasedAfterNewYear
	}

	if f.Languages == nil {
		return NoLanguages
	}
	if !containsFold(f.Languages, p.Language) {
		return NotEnglish
	}

	if f.Runtime == nil {
		return NoRuntime
	}
	if *f.Runtime < p.MinRuntime {
		return TooShort
	}

	matured := p.AsOf.Sub(release) >= p.MaturityWindow
	if f.AvgScore == nil && f.RatingCount == nil && matured {
		return MissingRatingForReleased
	}
	if f.AvgScore != nil && *f.AvgScore < p.MinScore {
		return RatingTooLow
	}
	if f.RatingCount != nil && *f.RatingCount < p.MinRatingCount && matured {
		return NotRatedEnough
	}

	if f.Countries == nil {
		return NoCountries
	}
	if !containsFold(f.Countries, p.Country) {
		return NotUSA
	}

	return OK
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// Filter combines extraction and evaluation for whole documents.
type Filter struct {
	policy    Policy
	extractor *Extractor
}

// New returns a Filter applying the given policy.
func New(policy Policy, log logger.Logger) *Filter {
	return &Filter{
		policy:    policy,
		extractor: NewExtractor(policy.Country, log),
	}
}

// FilterMovie classifies a single movie document.
func (f *Filter) FilterMovie(m models.Movie) Status {
	return f.policy.Evaluate(f.extractor.Extract(m))
}

// Policy returns the policy the filter applies.
func (f *Filter) Policy() Policy {
	return f.policy
}
