// Package menu implements the training-menu wizard: the answer set a visitor builds
// (gender, training location, weekly frequency), the step sequencer that walks them
// through it, and the lookup of the matching program in the static program table.
package menu

import (
	"errors"
	"net/url"
	"strings"
)

// Query parameter names used to share a selection.
const (
	ParamGender    = "gender"
	ParamLocation  = "type"
	ParamFrequency = "freq"
)

// ErrInvalidSelection is returned when shared parameters cannot be trusted. The whole
// selection is discarded, never repaired field by field.
var ErrInvalidSelection = errors.New("menu: invalid selection parameters")

// Gender is the first wizard answer. The zero value means unset.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders lists the accepted genders in display order.
var Genders = []Gender{GenderMale, GenderFemale}

// Location is where the visitor trains. The zero value means unset.
type Location string

const (
	LocationGym  Location = "gym"
	LocationHome Location = "home"
)

// Locations lists the accepted locations in display order.
var Locations = []Location{LocationGym, LocationHome}

// Frequency is the number of training days per week. The zero value means unset.
type Frequency string

const (
	FrequencyOneTwo Frequency = "1-2"
	FrequencyThree  Frequency = "3"
	FrequencyFour   Frequency = "4"
	FrequencyFive   Frequency = "5"
	FrequencySix    Frequency = "6"
	FrequencySeven  Frequency = "7"
)

// Frequencies lists every frequency bucket in canonical order.
var Frequencies = []Frequency{
	FrequencyOneTwo,
	FrequencyThree,
	FrequencyFour,
	FrequencyFive,
	FrequencySix,
	FrequencySeven,
}

// ParseGender reports whether raw is exactly one of the gender literals.
func ParseGender(raw string) (Gender, bool) {
	for _, g := range Genders {
		if raw == string(g) {
			return g, true
		}
	}
	return "", false
}

// ParseLocation reports whether raw is exactly one of the location literals.
func ParseLocation(raw string) (Location, bool) {
	for _, l := range Locations {
		if raw == string(l) {
			return l, true
		}
	}
	return "", false
}

// ParseFrequency reports whether raw is exactly one of the frequency literals.
func ParseFrequency(raw string) (Frequency, bool) {
	for _, f := range Frequencies {
		if raw == string(f) {
			return f, true
		}
	}
	return "", false
}

// Selection is the visitor's set of answers. Frequency is never set together with
// LocationHome.
type Selection struct {
	Gender    Gender
	Location  Location
	Frequency Frequency
}

// IsEmpty reports whether no answer has been given.
func (s Selection) IsEmpty() bool {
	return s == Selection{}
}

// NeedsFrequency reports whether the frequency step applies to this selection.
func (s Selection) NeedsFrequency() bool {
	return s.Location != LocationHome
}

// Complete reports whether every applicable answer is present.
func (s Selection) Complete() bool {
	if s.Gender == "" || s.Location == "" {
		return false
	}
	return !s.NeedsFrequency() || s.Frequency != ""
}

// normalize enforces the home and frequency-filter rules.
func (s Selection) normalize() Selection {
	if s.Location == LocationHome {
		s.Frequency = ""
		return s
	}
	if s.Frequency != "" && !FrequencyAllowed(s.Gender, s.Location, s.Frequency) {
		s.Frequency = ""
	}
	return s
}

// Query serialises the selection into its shareable query parameters. Unset answers
// are omitted.
func (s Selection) Query() url.Values {
	q := url.Values{}
	if s.Gender != "" {
		q.Set(ParamGender, string(s.Gender))
	}
	if s.Location != "" {
		q.Set(ParamLocation, string(s.Location))
	}
	if s.Frequency != "" && s.Location != LocationHome {
		q.Set(ParamFrequency, string(s.Frequency))
	}
	return q
}

// Encode returns the encoded query string for the selection ("" when empty).
func (s Selection) Encode() string {
	return s.Query().Encode()
}

// URL returns path with the selection's query appended.
func (s Selection) URL(path string) string {
	if q := s.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// ParseSelection validates shared parameters. Absent or empty parameters are unset;
// a present parameter that is not an exact literal, a parameter given more than once,
// or a gym frequency the gender is not offered invalidates the whole selection and the
// empty Selection is returned with ErrInvalidSelection. A frequency sent with type=home
// is dropped.
func ParseSelection(q url.Values) (Selection, error) {
	var sel Selection
	var invalid []string

	if raw, ok := single(q, ParamGender); !ok {
		invalid = append(invalid, ParamGender)
	} else if raw != "" {
		g, ok := ParseGender(raw)
		if !ok {
			invalid = append(invalid, ParamGender)
		}
		sel.Gender = g
	}
	if raw, ok := single(q, ParamLocation); !ok {
		invalid = append(invalid, ParamLocation)
	} else if raw != "" {
		l, ok := ParseLocation(raw)
		if !ok {
			invalid = append(invalid, ParamLocation)
		}
		sel.Location = l
	}
	if raw, ok := single(q, ParamFrequency); !ok {
		invalid = append(invalid, ParamFrequency)
	} else if raw != "" {
		f, ok := ParseFrequency(raw)
		if !ok {
			invalid = append(invalid, ParamFrequency)
		}
		sel.Frequency = f
	}
	if len(invalid) > 0 {
		return Selection{}, &SelectionError{Params: invalid}
	}

	if sel.Location == LocationHome {
		sel.Frequency = ""
		return sel, nil
	}
	if sel.Frequency != "" && !FrequencyAllowed(sel.Gender, sel.Location, sel.Frequency) {
		return Selection{}, &SelectionError{Params: []string{ParamFrequency}, Contextual: true}
	}
	return sel, nil
}

// single returns the only value of key. ok is false when the key is repeated.
func single(q url.Values, key string) (raw string, ok bool) {
	switch vals := q[key]; len(vals) {
	case 0:
		return "", true
	case 1:
		return vals[0], true
	default:
		return "", false
	}
}

// SelectionError names the parameters that failed validation.
type SelectionError struct {
	Params     []string
	Contextual bool
}

func (e *SelectionError) Error() string {
	if e.Contextual {
		return "menu: parameter not offered for this combination: " + strings.Join(e.Params, ", ")
	}
	return "menu: invalid parameters: " + strings.Join(e.Params, ", ")
}

// Is lets errors.Is match ErrInvalidSelection.
func (e *SelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}
