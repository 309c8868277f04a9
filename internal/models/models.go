package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names of a scraped movie document.
const (
	FieldID          = "_id"
	FieldTitle       = "title"
	FieldURL         = "url"
	FieldReleaseInfo = "releaseInfo"
	FieldLanguages   = "languages"
	FieldRuntime     = "runtime"
	FieldCountries   = "countries"
	FieldRating      = "rating"
	FieldWriters     = "writers"
	FieldDirector    = "director"
	FieldCastMembers = "castMembers"

	FieldReleaseCountry = "Country"
	FieldReleaseDate    = "Date"
	FieldAvgScore       = "avgScore"
	FieldRatingCount    = "ratingCount"
	FieldName           = "name"
	FieldCharacterName  = "characterName"
)

// Movie is one loosely structured movie document as stored in the corpus.
// Any field may be missing or carry an unexpected type.
type Movie bson.M

// ID renders the document identifier for diagnostics.
func (m Movie) ID() string {
	switch id := m[FieldID].(type) {
	case nil:
		return ""
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}

// URL returns the movie URL, or "" when it is missing or not a string.
func (m Movie) URL() string {
	url, _ := m[FieldURL].(string)
	return url
}

// Has reports whether the field is present and not null.
func (m Movie) Has(field string) bool {
	v, ok := m[field]
	return ok && v != nil
}

// Doc converts a nested BSON value into a map. Decoding into bson.M yields
// primitive.M for sub-documents, but hand-built documents may use plain maps
// or ordered bson.D.
func Doc(v interface{}) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case Movie:
		return bson.M(d), true
	case map[string]interface{}:
		return bson.M(d), true
	case bson.D:
		return d.Map(), true
	default:
		return nil, false
	}
}

// Array converts a nested BSON array into a slice.
func Array(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []interface{}:
		return a, true
	case []string:
		out := make([]interface{}, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	case []bson.M:
		out := make([]interface{}, len(a))
		for i, d := range a {
			out[i] = d
		}
		return out, true
	default:
		return nil, false
	}
}
