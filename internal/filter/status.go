package filter

// Status is the eligibility verdict for a single movie. Exactly one status is
// produced per document and only OK makes it into the keyword sets.
type Status int

const (
	OK Status = iota
	NoReleaseDate
	ReleasedAfterNewYear
	NoLanguages
	NotEnglish
	NoRuntime
	TooShort
	MissingRatingForReleased
	RatingTooLow
	NotRatedEnough
	NoCountries
	NotUSA
)

var statusNames = [...]string{
	OK:                       "OK",
	NoReleaseDate:            "NO_RELEASE_DATE",
	ReleasedAfterNewYear:     "RELEASED_AFTER_NEW_YEAR",
	NoLanguages:              "NO_LANGUAGES",
	NotEnglish:               "NOT_ENGLISH",
	NoRuntime:                "NO_RUNTIME",
	TooShort:                 "TOO_SHORT",
	MissingRatingForReleased: "MISSING_RATING_FOR_RELEASED",
	RatingTooLow:             "RATING_TOO_LOW",
	NotRatedEnough:           "NOT_RATED_ENOUGH",
	NoCountries:              "NO_COUNTRIES",
	NotUSA:                   "NOT_USA",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// Eligible reports whether the movie passed every rule.
func (s Status) Eligible() bool {
	return s == OK
}

// Statuses lists every status, OK first and then in rule order.
func Statuses() []Status {
	out := make([]Status, len(statusNames))
	for i := range statusNames {
		out[i] = Status(i)
	}
	return out
}
