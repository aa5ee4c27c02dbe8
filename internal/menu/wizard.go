package menu

import (
	"errors"
	"fmt"
	"net/url"
)

// ParamStep carries the wizard's view cursor next to the shared selection. It is not
// part of the shared state: a missing or unknown value falls back to the step derived
// from the selection.
const ParamStep = "step"

// ErrInvalidAction is returned when an action names an unknown kind, field or value.
var ErrInvalidAction = errors.New("menu: invalid wizard action")

// Step is a position in the wizard.
type Step int

const (
	StepGender Step = iota
	StepLocation
	StepFrequency
	StepResult
)

var stepNames = [...]string{"gender", "location", "frequency", "result"}

func (s Step) String() string {
	if s < StepGender || s > StepResult {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep maps a step name back to its Step.
func ParseStep(raw string) (Step, bool) {
	for i, name := range stepNames {
		if raw == name {
			return Step(i), true
		}
	}
	return 0, false
}

// Wizard is the step sequencer. It owns the selection; the query string is only a
// mirror produced by Query and consumed by Hydrate. The zero value is a fresh wizard.
type Wizard struct {
	sel  Selection
	step Step
}

// New returns an empty wizard on the gender step.
func New() Wizard {
	return Wizard{}
}

// Hydrate rebuilds a wizard from shared parameters. On ErrInvalidSelection the fresh
// wizard is returned alongside the error so callers can reset and notify.
func Hydrate(q url.Values) (Wizard, error) {
	sel, err := ParseSelection(q)
	if err != nil {
		return New(), err
	}
	w := Wizard{sel: sel}
	w.step = w.initialStep()
	if raw := q.Get(ParamStep); raw != "" {
		if s, ok := ParseStep(raw); ok {
			w.step = s
			w.settle()
		}
	}
	return w, nil
}

// Selection returns the current answers.
func (w Wizard) Selection() Selection { return w.sel }

// Step returns the current position.
func (w Wizard) Step() Step { return w.step }

// IsResult reports whether the wizard shows the result.
func (w Wizard) IsResult() bool { return w.step == StepResult }

// VisibleSteps lists the question steps for the current selection. The frequency
// step is absent when training at home.
func (w Wizard) VisibleSteps() []Step {
	if w.sel.NeedsFrequency() {
		return []Step{StepGender, StepLocation, StepFrequency}
	}
	return []Step{StepGender, StepLocation}
}

// FrequencyOptions returns the frequencies currently offered.
func (w Wizard) FrequencyOptions() []Frequency {
	return FrequencyOptions(w.sel.Gender, w.sel.Location)
}

// Answered reports whether the question at s has a value.
func (w Wizard) Answered(s Step) bool {
	switch s {
	case StepGender:
		return w.sel.Gender != ""
	case StepLocation:
		return w.sel.Location != ""
	case StepFrequency:
		return w.sel.Frequency != ""
	default:
		return false
	}
}

// CanAdvance reports whether Next would move the wizard.
func (w Wizard) CanAdvance() bool {
	if w.step == StepResult || !w.Answered(w.step) {
		return false
	}
	vis := w.VisibleSteps()
	if w.step == vis[len(vis)-1] {
		return w.sel.Complete()
	}
	return true
}

// Position returns the zero-based index of the current step among the visible steps;
// the result sits at len(VisibleSteps()).
func (w Wizard) Position() int {
	vis := w.VisibleSteps()
	if w.step == StepResult {
		return len(vis)
	}
	return indexOf(vis, w.step)
}

// Progress returns how far through the visible steps the wizard is, from 0 to 1.
func (w Wizard) Progress() float64 {
	return float64(w.Position()) / float64(len(w.VisibleSteps()))
}

// SelectGender records the gender, clearing a frequency the new combination does not
// offer. The step does not change.
func (w *Wizard) SelectGender(g Gender) {
	w.sel.Gender = g
	w.sel = w.sel.normalize()
	w.settle()
}

// SelectLocation records the location. Choosing home drops the frequency; a later
// switch back to gym does not restore it.
func (w *Wizard) SelectLocation(l Location) {
	w.sel.Location = l
	w.sel = w.sel.normalize()
	w.settle()
}

// SelectFrequency records the frequency. It fails without changing state when the
// frequency is not offered for the current gender and location.
func (w *Wizard) SelectFrequency(f Frequency) error {
	if !w.sel.NeedsFrequency() || !FrequencyAllowed(w.sel.Gender, w.sel.Location, f) {
		return fmt.Errorf("%w: frequency %q not offered", ErrInvalidAction, f)
	}
	w.sel.Frequency = f
	w.settle()
	return nil
}

// Next moves to the following visible step, or to the result from the last one once
// the selection is complete. It is a no-op otherwise.
func (w *Wizard) Next() {
	if !w.CanAdvance() {
		return
	}
	vis := w.VisibleSteps()
	i := indexOf(vis, w.step)
	if i == len(vis)-1 {
		w.step = StepResult
		return
	}
	w.step = vis[i+1]
}

// Back moves to the previous visible step, stopping at the first one. From the result
// it returns to the last visible step.
func (w *Wizard) Back() {
	vis := w.VisibleSteps()
	if w.step == StepResult {
		w.step = vis[len(vis)-1]
		return
	}
	if i := indexOf(vis, w.step); i > 0 {
		w.step = vis[i-1]
	}
}

// Reset clears every answer and returns to the first step.
func (w *Wizard) Reset() {
	*w = New()
}

// Query mirrors the wizard into query parameters. The step is included only when it
// differs from the one Hydrate would derive from the selection alone.
func (w Wizard) Query() url.Values {
	q := w.sel.Query()
	if w.step != w.initialStep() {
		q.Set(ParamStep, w.step.String())
	}
	return q
}

// URL returns path with the wizard's query appended.
func (w Wizard) URL(path string) string {
	if q := w.Query().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// ActionKind names a wizard transition.
type ActionKind string

const (
	ActionSelect ActionKind = "select"
	ActionNext   ActionKind = "next"
	ActionBack   ActionKind = "back"
	ActionReset  ActionKind = "reset"
)

// Action is a single transition request. Field and Value are used by ActionSelect and
// take the shared parameter names and literals.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Field string     `json:"field,omitempty"`
	Value string     `json:"value,omitempty"`
}

// Apply performs the action. Invalid actions return ErrInvalidAction and leave the
// wizard untouched.
func (w *Wizard) Apply(a Action) error {
	switch a.Kind {
	case ActionNext:
		w.Next()
	case ActionBack:
		w.Back()
	case ActionReset:
		w.Reset()
	case ActionSelect:
		return w.applySelect(a.Field, a.Value)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}
	return nil
}

func (w *Wizard) applySelect(field, value string) error {
	switch field {
	case ParamGender:
		g, ok := ParseGender(value)
		if !ok {
			return fmt.Errorf("%w: gender %q", ErrInvalidAction, value)
		}
		w.SelectGender(g)
	case ParamLocation:
		l, ok := ParseLocation(value)
		if !ok {
			return fmt.Errorf("%w: type %q", ErrInvalidAction, value)
		}
		w.SelectLocation(l)
	case ParamFrequency:
		f, ok := ParseFrequency(value)
		if !ok {
			return fmt.Errorf("%w: freq %q", ErrInvalidAction, value)
		}
		return w.SelectFrequency(f)
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidAction, field)
	}
	return nil
}

// initialStep is the first unanswered visible step, or the result when complete.
func (w Wizard) initialStep() Step {
	for _, s := range w.VisibleSteps() {
		if !w.Answered(s) {
			return s
		}
	}
	return StepResult
}

// settle keeps the step consistent with the selection: a step that is no longer
// visible or not yet reachable is replaced, and the result requires a complete
// selection.
func (w *Wizard) settle() {
	first := w.initialStep()
	switch {
	case w.step == StepResult:
		if !w.sel.Complete() {
			w.step = first
		}
	case indexOf(w.VisibleSteps(), w.step) < 0:
		w.step = first
	case first != StepResult && w.step > first:
		w.step = first
	}
}

func indexOf(steps []Step, s Step) int {
	for i, v := range steps {
		if v == s {
			return i
		}
	}
	return -1
}
