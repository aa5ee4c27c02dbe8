package menu

// limitedFrequencies are the only buckets authored so far for female gym programs.
var limitedFrequencies = []Frequency{FrequencyOneTwo, FrequencyThree}

// FrequencyOptions returns the frequencies a visitor may pick for the given, possibly
// partial, gender and location, in canonical order. The returned slice is a copy.
func FrequencyOptions(g Gender, l Location) []Frequency {
	src := Frequencies
	if g == GenderFemale && l == LocationGym {
		src = limitedFrequencies
	}
	out := make([]Frequency, len(src))
	copy(out, src)
	return out
}

// FrequencyAllowed reports whether f is offered for the gender and location.
func FrequencyAllowed(g Gender, l Location, f Frequency) bool {
	for _, opt := range FrequencyOptions(g, l) {
		if opt == f {
			return true
		}
	}
	return false
}
