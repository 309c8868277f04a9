package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"movie_keywords/internal/filter"
	"movie_keywords/internal/models"
)

func ptr[T any](v T) *T { return &v }

// eligibleFields passes every rule of the default policy.
func eligibleFields() filter.Fields {
	return filter.Fields{
		ReleaseDate: ptr(date(2015, time.January, 1)),
		Languages:   []string{"English"},
		Runtime:     ptr(95),
		Countries:   []string{"USA"},
		AvgScore:    ptr(7.2),
		RatingCount: ptr(5000),
	}
}

func TestPolicy_Evaluate(t *testing.T) {
	policy := filter.DefaultPolicy()

	tests := []struct {
		name   string
		mutate func(f *filter.Fields)
		want   filter.Status
	}{
		{name: "eligible", mutate: func(f *filter.Fields) {}, want: filter.OK},
		{name: "no release date", mutate: func(f *filter.Fields) { f.ReleaseDate = nil }, want: filter.NoReleaseDate},
		{name: "released on cutoff", mutate: func(f *filter.Fields) { f.ReleaseDate = ptr(date(2016, time.January, 1)) }, want: filter.ReleasedAfterNewYear},
		{name: "released after cutoff", mutate: func(f *filter.Fields) { f.ReleaseDate = ptr(date(2017, time.May, 3)) }, want: filter.ReleasedAfterNewYear},
		{name: "no languages", mutate: func(f *filter.Fields) { f.Languages = nil }, want: filter.NoLanguages},
		{name: "not english", mutate: func(f *filter.Fields) { f.Languages = []string{"French"} }, want: filter.NotEnglish},
		{name: "empty languages", mutate: func(f *filter.Fields) { f.Languages = []string{} }, want: filter.NotEnglish},
		{name: "english in any case", mutate: func(f *filter.Fields) { f.Languages = []string{"french", "ENGLISH"} }, want: filter.OK},
		{name: "no runtime", mutate: func(f *filter.Fields) { f.Runtime = nil }, want: filter.NoRuntime},
		{name: "too short", mutate: func(f *filter.Fields) { f.Runtime = ptr(39) }, want: filter.TooShort},
		{name: "exactly minimum runtime", mutate: func(f *filter.Fields) { f.Runtime = ptr(40) }, want: filter.OK},
		{
			name: "missing rating for released",
			mutate: func(f *filter.Fields) {
				f.AvgScore, f.RatingCount = nil, nil
			},
			want: filter.MissingRatingForReleased,
		},
		{
			name: "missing rating for recent release",
			mutate: func(f *filter.Fields) {
				f.ReleaseDate = ptr(date(2015, time.October, 20))
				f.AvgScore, f.RatingCount = nil, nil
			},
			want: filter.OK,
		},
		{
			name: "missing rating exactly at maturity",
			mutate: func(f *filter.Fields) {
				f.ReleaseDate = ptr(date(2015, time.October, 18))
				f.AvgScore, f.RatingCount = nil, nil
			},
			want: filter.MissingRatingForReleased,
		},
		{name: "rating too low", mutate: func(f *filter.Fields) { f.AvgScore = ptr(5.9) }, want: filter.RatingTooLow},
		{name: "rating at threshold", mutate: func(f *filter.Fields) { f.AvgScore = ptr(6.0) }, want: filter.OK},
		{
			name: "rating too low without count",
			mutate: func(f *filter.Fields) {
				f.AvgScore, f.RatingCount = ptr(4.0), nil
			},
			want: filter.RatingTooLow,
		},
		{name: "not rated enough", mutate: func(f *filter.Fields) { f.RatingCount = ptr(999) }, want: filter.NotRatedEnough},
		{
			name: "few ratings for recent release",
			mutate: func(f *filter.Fields) {
				f.ReleaseDate = ptr(date(2015, time.October, 25))
				f.RatingCount = ptr(10)
			},
			want: filter.OK,
		},
		{name: "no countries", mutate: func(f *filter.Fields) { f.Countries = nil }, want: filter.NoCountries},
		{name: "not usa", mutate: func(f *filter.Fields) { f.Countries = []string{"UK"} }, want: filter.NotUSA},
		{name: "usa in any case", mutate: func(f *filter.Fields) { f.Countries = []string{"uk", "usa"} }, want: filter.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := eligibleFields()
			tt.mutate(&f)
			assert.Equal(t, tt.want, policy.Evaluate(f))
		})
	}
}

func TestPolicy_Evaluate_NoReleaseDateWins(t *testing.T) {
	policy := filter.DefaultPolicy()

	candidates := []filter.Fields{
		{},
		{Languages: []string{"English"}, Runtime: ptr(100), Countries: []string{"USA"}},
		{Languages: []string{"German"}, Runtime: ptr(10), AvgScore: ptr(1.0), RatingCount: ptr(3)},
		{Countries: []string{"Japan"}},
	}
	for _, f := range candidates {
		assert.Equal(t, filter.NoReleaseDate, policy.Evaluate(f))
	}
}

func TestPolicy_Evaluate_FirstFailingRuleWins(t *testing.T) {
	policy := filter.DefaultPolicy()

	// Missing languages also fails the english check, but only the earlier
	// rule is reported.
	f := eligibleFields()
	f.Languages = nil
	f.Runtime = nil
	f.Countries = []string{"Canada"}
	assert.Equal(t, filter.NoLanguages, policy.Evaluate(f))

	// Rating rules come before country rules.
	f = eligibleFields()
	f.AvgScore = ptr(2.0)
	f.Countries = nil
	assert.Equal(t, filter.RatingTooLow, policy.Evaluate(f))

	f = eligibleFields()
	f.RatingCount = ptr(12)
	f.Countries = []string{"France"}
	assert.Equal(t, filter.NotRatedEnough, policy.Evaluate(f))
}

func TestPolicy_Evaluate_CustomThresholds(t *testing.T) {
	policy := filter.DefaultPolicy()
	policy.MinRuntime = 100
	policy.Language = "spanish"

	f := eligibleFields()
	f.Languages = []string{"Spanish"}
	assert.Equal(t, filter.TooShort, policy.Evaluate(f))

	f.Runtime = ptr(100)
	assert.Equal(t, filter.OK, policy.Evaluate(f))
}

func movieDoc(release string) models.Movie {
	return models.Movie{
		"_id":         "tt0000001",
		"title":       "The Example",
		"url":         "http://www.imdb.com/title/tt0000001/",
		"releaseInfo": bson.A{bson.M{"Country": "USA", "Date": release}},
		"languages":   bson.A{"English"},
		"runtime":     "95 min",
		"countries":   bson.A{"USA"},
		"rating":      bson.M{"avgScore": "7.2", "ratingCount": "5,000"},
	}
}

func TestFilter_FilterMovie(t *testing.T) {
	f := filter.New(filter.DefaultPolicy(), nil)

	assert.Equal(t, filter.OK, f.FilterMovie(movieDoc("01 January 2015")))

	released := movieDoc("01 October 2015")
	delete(released, "rating")
	assert.Equal(t, filter.MissingRatingForReleased, f.FilterMovie(released))

	// Released after the dataset timestamp, so the missing rating is expected.
	upcoming := movieDoc("01 December 2015")
	delete(upcoming, "rating")
	assert.Equal(t, filter.OK, f.FilterMovie(upcoming))

	assert.Equal(t, filter.ReleasedAfterNewYear, f.FilterMovie(movieDoc("01 January 2016")))

	lowRated := movieDoc("01 January 2015")
	lowRated["rating"] = bson.M{"avgScore": "5.4", "ratingCount": "5,000"}
	assert.Equal(t, filter.RatingTooLow, f.FilterMovie(lowRated))

	noCountry := movieDoc("01 January 2015")
	delete(noCountry, "countries")
	assert.Equal(t, filter.NoCountries, f.FilterMovie(noCountry))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "OK", filter.OK.String())
	assert.Equal(t, "MISSING_RATING_FOR_RELEASED", filter.MissingRatingForReleased.String())
	assert.Equal(t, "NOT_USA", filter.NotUSA.String())
	assert.Equal(t, "UNKNOWN", filter.Status(99).String())

	statuses := filter.Statuses()
	assert.Len(t, statuses, 12)
	assert.Equal(t, filter.OK, statuses[0])
	assert.Equal(t, filter.NotUSA, statuses[len(statuses)-1])
	assert.True(t, filter.OK.Eligible())
	assert.False(t, filter.NotUSA.Eligible())
}
