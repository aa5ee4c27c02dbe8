package menu

// Item is a single exercise line of a training day.
type Item struct {
	Name string `yaml:"name" json:"name"`
	Reps string `yaml:"reps" json:"reps"`
	Note string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Day is one training day with its ordered exercises.
type Day struct {
	Title string `yaml:"title" json:"title"`
	Items []Item `yaml:"items" json:"items"`
}

// Program is an authored training menu.
type Program struct {
	Title      string   `yaml:"title" json:"title"`
	Intro      []string `yaml:"intro" json:"intro"`
	Days       []Day    `yaml:"days" json:"days"`
	Principles []string `yaml:"principles" json:"principles"`
}

// Result is a resolved lookup: a program, or the coming-soon marker for a combination
// that is recognised but not authored yet. The zero Result is neither and stands for a
// selection that cannot be resolved yet.
type Result struct {
	Program    *Program
	comingSoon bool
}

// ComingSoon is the marker result.
var ComingSoon = Result{comingSoon: true}

// IsComingSoon reports whether the result is the coming-soon marker.
func (r Result) IsComingSoon() bool { return r.comingSoon }

// Status is the wire name of the result kind: available, coming_soon, or incomplete
// for the zero Result.
func (r Result) Status() string {
	switch {
	case r.comingSoon:
		return "coming_soon"
	case r.Program != nil:
		return "available"
	default:
		return "incomplete"
	}
}

// Table is the immutable program lookup keyed by gender, location and frequency.
// It is safe for concurrent use.
type Table struct {
	programs map[Gender]map[Location]map[Frequency]*Program
}

// Resolve looks the selection up. ok is false while the selection is not complete
// enough to resolve (gender or location unset, or a gym selection without frequency);
// callers show a placeholder then. Combinations missing from the table resolve to
// ComingSoon. For home selections the frequency is ignored and the first entry in
// canonical frequency order is returned.
func (t *Table) Resolve(sel Selection) (res Result, ok bool) {
	if sel.Gender == "" || sel.Location == "" {
		return Result{}, false
	}
	byFreq := t.programs[sel.Gender][sel.Location]
	if sel.Location == LocationHome {
		for _, f := range Frequencies {
			if p, found := byFreq[f]; found {
				return Result{Program: p}, true
			}
		}
		return ComingSoon, true
	}
	if sel.Frequency == "" {
		return Result{}, false
	}
	p, found := byFreq[sel.Frequency]
	if !found {
		return ComingSoon, true
	}
	return Result{Program: p}, true
}

// Combination is one fully specified key of the table.
type Combination struct {
	Gender    Gender
	Location  Location
	Frequency Frequency
}

// Selection returns the combination as a selection (frequency dropped for home).
func (c Combination) Selection() Selection {
	return Selection{Gender: c.Gender, Location: c.Location, Frequency: c.Frequency}.normalize()
}

// Combinations enumerates every selectable complete combination in display order:
// gym combinations per offered frequency, and one home combination per gender.
func Combinations() []Combination {
	var out []Combination
	for _, g := range Genders {
		for _, l := range Locations {
			if l == LocationHome {
				out = append(out, Combination{Gender: g, Location: l})
				continue
			}
			for _, f := range FrequencyOptions(g, l) {
				out = append(out, Combination{Gender: g, Location: l, Frequency: f})
			}
		}
	}
	return out
}

// Pending lists the selectable combinations that resolve to ComingSoon.
func (t *Table) Pending() []Combination {
	var out []Combination
	for _, c := range Combinations() {
		if res, ok := t.Resolve(c.Selection()); ok && res.IsComingSoon() {
			out = append(out, c)
		}
	}
	return out
}
