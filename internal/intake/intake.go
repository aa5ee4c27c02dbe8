// Package intake estimates daily calorie and protein needs from body measurements
// and activity level (Mifflin-St Jeor).
package intake

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Gender selects the BMR constant and protein multiplier.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Activity is a key of Activities.
type Activity string

const (
	Sedentary Activity = "sedentary"
	Light     Activity = "light"
	Moderate  Activity = "moderate"
	Active    Activity = "active"
	Athlete   Activity = "athlete"
)

// ActivityLevel holds the multipliers of one activity option.
type ActivityLevel struct {
	Value         Activity
	CalorieFactor float64
	ProteinMale   float64
	ProteinFemale float64
}

// LabelKey is the i18n key of the option label.
func (a ActivityLevel) LabelKey() string { return "intake.activity." + string(a.Value) }

// Activities lists the options in display order.
var Activities = []ActivityLevel{
	{Value: Sedentary, CalorieFactor: 1.2, ProteinMale: 1.4, ProteinFemale: 1.2},
	{Value: Light, CalorieFactor: 1.375, ProteinMale: 1.6, ProteinFemale: 1.4},
	{Value: Moderate, CalorieFactor: 1.55, ProteinMale: 1.8, ProteinFemale: 1.5},
	{Value: Active, CalorieFactor: 1.725, ProteinMale: 2.0, ProteinFemale: 1.7},
	{Value: Athlete, CalorieFactor: 1.9, ProteinMale: 2.2, ProteinFemale: 1.9},
}

// Input bounds and defaults.
const (
	DefaultWeight = 70
	DefaultHeight = 170
	DefaultAge    = 30

	WeightMin, WeightMax = 30, 200
	HeightMin, HeightMax = 140, 220
	AgeMin, AgeMax       = 15, 80
)

// Input is a validated calculator input; build it with ParseInput or Normalize.
type Input struct {
	Gender   Gender   `json:"gender"`
	Weight   float64  `json:"weight"`
	Height   float64  `json:"height"`
	Age      float64  `json:"age"`
	Activity Activity `json:"activity"`
}

// DefaultInput is the form's initial state.
func DefaultInput() Input {
	return Input{Gender: Male, Weight: DefaultWeight, Height: DefaultHeight, Age: DefaultAge, Activity: Moderate}
}

// ParseInput reads gender, weight, height, age and activity from q. Blank or
// non-numeric values take the defaults, numbers are clamped to their bounds, and
// unknown genders or activities fall back to male and moderate.
func ParseInput(q url.Values) Input {
	in := Input{
		Gender:   Gender(q.Get("gender")),
		Weight:   parseNumber(q.Get("weight"), DefaultWeight),
		Height:   parseNumber(q.Get("height"), DefaultHeight),
		Age:      parseNumber(q.Get("age"), DefaultAge),
		Activity: Activity(q.Get("activity")),
	}
	return in.Normalize()
}

// Normalize clamps the measurements and replaces unknown enums with defaults.
func (in Input) Normalize() Input {
	if in.Gender != Female {
		in.Gender = Male
	}
	if _, ok := lookupActivity(in.Activity); !ok {
		in.Activity = Moderate
	}
	in.Weight = clamp(in.Weight, WeightMin, WeightMax)
	in.Height = clamp(in.Height, HeightMin, HeightMax)
	in.Age = clamp(in.Age, AgeMin, AgeMax)
	return in
}

// Query encodes the input as form values.
func (in Input) Query() url.Values {
	return url.Values{
		"gender":   {string(in.Gender)},
		"weight":   {formatNumber(in.Weight)},
		"height":   {formatNumber(in.Height)},
		"age":      {formatNumber(in.Age)},
		"activity": {string(in.Activity)},
	}
}

// Result is the calculator output. Calories are kcal per day, protein grams per day.
type Result struct {
	Input          Input `json:"input"`
	BMR            int   `json:"bmr"`
	Maintenance    int   `json:"maintenance"`
	Cut            int   `json:"cut"`
	Bulk           int   `json:"bulk"`
	Protein        int   `json:"protein"`
	ProteinPerMeal int   `json:"protein_per_meal"`
}

// Calculate computes the targets for a normalized input.
func Calculate(in Input) Result {
	in = in.Normalize()
	level, _ := lookupActivity(in.Activity)

	bmr := 10*in.Weight + 6.25*in.Height - 5*in.Age
	protein := level.ProteinMale
	if in.Gender == Female {
		bmr -= 161
		protein = level.ProteinFemale
	} else {
		bmr += 5
	}

	maintenance := round(bmr * level.CalorieFactor)
	proteinTarget := round(in.Weight * protein)
	return Result{
		Input:          in,
		BMR:            round(bmr),
		Maintenance:    maintenance,
		Cut:            round(float64(maintenance) * 0.9),
		Bulk:           round(float64(maintenance) * 1.1),
		Protein:        proteinTarget,
		ProteinPerMeal: round(float64(proteinTarget) / 3),
	}
}

func lookupActivity(a Activity) (ActivityLevel, bool) {
	for _, l := range Activities {
		if l.Value == a {
			return l, true
		}
	}
	return ActivityLevel{}, false
}

func parseNumber(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// round rounds half up.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
