package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"movie_keywords/internal/logger"
	"movie_keywords/internal/models"
)

var (
	// ErrFieldMissing marks a field that is absent from the document.
	ErrFieldMissing = errors.New("field missing")
	// ErrMalformed marks a field that is present but cannot be parsed.
	ErrMalformed = errors.New("malformed value")
)

// Release date layouts, tried in order.
const (
	DateLayoutFull     = "2 January 2006"
	DateLayoutYearOnly = "2006"
)

const thousandsSeparator = ","

// Fields holds the typed values pulled out of a movie document. A nil pointer
// or nil slice means the value was missing or unparseable; a present but empty
// list is a non-nil empty slice.
type Fields struct {
	ReleaseDate *time.Time
	Languages   []string
	Runtime     *int
	Countries   []string
	AvgScore    *float64
	RatingCount *int
}

// Extractor reads Fields from raw movie documents. It never fails: parse
// problems degrade the field to absent and are reported as warnings.
type Extractor struct {
	country     string
	dateLayouts []string
	log         logger.Logger
}

// NewExtractor returns an extractor taking release dates from releaseInfo
// entries of the given country.
func NewExtractor(country string, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{
		country:     country,
		dateLayouts: []string{DateLayoutFull, DateLayoutYearOnly},
		log:         log,
	}
}

// Extract pulls every field independently out of the movie.
func (e *Extractor) Extract(m models.Movie) Fields {
	var f Fields
	log := e.log.With(logger.String("movie_id", m.ID()))

	if date, err := e.ReleaseDate(m); err == nil {
		f.ReleaseDate = &date
	} else if !m.Has(models.FieldReleaseInfo) {
		log.Warn("movie release date not found", logger.String("field", models.FieldReleaseInfo))
	} else {
		log.Debug("no usable release date", logger.Error(err))
	}

	if langs, err := StringSet(m[models.FieldLanguages]); err == nil {
		f.Languages = langs
	}

	if runtime, err := ParseRuntime(m[models.FieldRuntime]); err == nil {
		f.Runtime = &runtime
	} else if !errors.Is(err, ErrFieldMissing) {
		log.Warn("failed to parse runtime", logger.Error(err))
	}

	if countries, err := StringSet(m[models.FieldCountries]); err == nil {
		f.Countries = countries
	}

	rating, ok := models.Doc(m[models.FieldRating])
	if !ok {
		log.Warn("movie rating not found", logger.String("field", models.FieldRating))
		return f
	}
	if score, err := ParseScore(rating[models.FieldAvgScore]); err == nil {
		f.AvgScore = &score
	} else if !errors.Is(err, ErrFieldMissing) {
		log.Warn("failed to parse rating score", logger.Error(err))
	}
	if count, err := ParseCount(rating[models.FieldRatingCount]); err == nil {
		f.RatingCount = &count
	} else if !errors.Is(err, ErrFieldMissing) {
		log.Warn("failed to parse rating count", logger.Error(err))
	}

	return f
}

// ReleaseDate scans releaseInfo in document order and returns the last date
// for the extractor's country that parses.
func (e *Extractor) ReleaseDate(m models.Movie) (time.Time, error) {
	if !m.Has(models.FieldReleaseInfo) {
		return time.Time{}, fmt.Errorf("%s: %w", models.FieldReleaseInfo, ErrFieldMissing)
	}
	entries, ok := models.Array(m[models.FieldReleaseInfo])
	if !ok {
		return time.Time{}, fmt.Errorf("%s is %T: %w", models.FieldReleaseInfo, m[models.FieldReleaseInfo], ErrMalformed)
	}

	var (
		release time.Time
		found   bool
		matched int
	)
	for _, raw := range entries {
		entry, ok := models.Doc(raw)
		if !ok {
			continue
		}
		if country, _ := entry[models.FieldReleaseCountry].(string); country != e.country {
			continue
		}
		matched++
		value, _ := entry[models.FieldReleaseDate].(string)
		if t, err := ParseReleaseDate(value, e.dateLayouts...); err == nil {
			release, found = t, true
		}
	}

	switch {
	case found:
		return release, nil
	case matched == 0:
		return time.Time{}, fmt.Errorf("no %s release entry: %w", e.country, ErrFieldMissing)
	default:
		return time.Time{}, fmt.Errorf("%d %s release entries, none parseable: %w", matched, e.country, ErrMalformed)
	}
}

// ParseReleaseDate tries each layout in turn.
func ParseReleaseDate(value string, layouts ...string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrFieldMissing
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", value, ErrMalformed)
}

// ParseRuntime reads the leading integer of a runtime such as "1,234 min".
func ParseRuntime(v interface{}) (int, error) {
	switch raw := v.(type) {
	case nil:
		return 0, ErrFieldMissing
	case string:
		tokens := strings.Fields(strings.ReplaceAll(raw, thousandsSeparator, ""))
		if len(tokens) == 0 {
			return 0, fmt.Errorf("runtime %q: %w", raw, ErrMalformed)
		}
		n, err := strconv.Atoi(tokens[0])
		if err != nil {
			return 0, fmt.Errorf("runtime %q: %w", raw, ErrMalformed)
		}
		return n, nil
	default:
		return intValue(raw, "runtime")
	}
}

// ParseScore reads an average rating score.
func ParseScore(v interface{}) (float64, error) {
	switch raw := v.(type) {
	case nil:
		return 0, ErrFieldMissing
	case string:
		score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, fmt.Errorf("score %q: %w", raw, ErrMalformed)
		}
		return score, nil
	case float64:
		return raw, nil
	case int32:
		return float64(raw), nil
	case int64:
		return float64(raw), nil
	case int:
		return float64(raw), nil
	default:
		return 0, fmt.Errorf("score of type %T: %w", raw, ErrMalformed)
	}
}

// ParseCount reads a rating count such as "5,000".
func ParseCount(v interface{}) (int, error) {
	switch raw := v.(type) {
	case nil:
		return 0, ErrFieldMissing
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(raw, thousandsSeparator, "")))
		if err != nil {
			return 0, fmt.Errorf("rating count %q: %w", raw, ErrMalformed)
		}
		return n, nil
	default:
		return intValue(raw, "rating count")
	}
}

// StringSet reads a list of names. A lone string counts as a one element list
// and non-string elements are skipped.
func StringSet(v interface{}) ([]string, error) {
	if v == nil {
		return nil, ErrFieldMissing
	}
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	items, ok := models.Array(v)
	if !ok {
		return nil, fmt.Errorf("list of type %T: %w", v, ErrMalformed)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func intValue(v interface{}, what string) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s of type %T: %w", what, v, ErrMalformed)
	}
}
