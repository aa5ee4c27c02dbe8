package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/middleware"
	"machoda.com/macho-web/internal/observability"
)

const (
	menuPath           = "/menu"
	invalidParamsFlash = "menu.notice.invalid_params"
)

var wizardParams = []string{menu.ParamGender, menu.ParamLocation, menu.ParamFrequency, menu.ParamStep}

// MenuView is the template model of the wizard page.
type MenuView struct {
	Step      string
	StepKey   string
	Position  int
	Total     int
	Progress  float64
	Steps     []StepView
	Options   []OptionView
	Limited   bool
	NextHref  string
	NextKey   string
	BackHref  string
	ResetHref string
	Result    *ResultView
}

// StepView is one entry of the progress indicator.
type StepView struct {
	Key     string
	Done    bool
	Current bool
}

// OptionView is a selectable answer of the current step.
type OptionView struct {
	LabelKey string
	Value    string
	Href     string
	Selected bool
}

// ResultView carries the resolved program, or the coming-soon notice.
type ResultView struct {
	ComingSoon bool
	Program    *menu.Program
	ShareURL   string
}

// Menu renders the wizard. Untrusted parameters reset it with a notice; parameters
// that normalise away (a frequency sent with type=home, a redundant step) redirect
// to the canonical URL.
func (h *Handlers) Menu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	wiz, err := menu.Hydrate(q)
	if err != nil {
		var selErr *menu.SelectionError
		if errors.As(err, &selErr) {
			observability.FromContext(r.Context()).Debug("menu parameters rejected",
				zap.Strings("params", selErr.Params),
				zap.Bool("contextual", selErr.Contextual),
			)
		}
		middleware.GetSession(r).AddFlash(invalidParamsFlash)
		http.Redirect(w, r, withExtraParams(menuPath, q, url.Values{}), http.StatusSeeOther)
		return
	}
	canonical := wiz.Query()
	if !sameParams(q, canonical) {
		http.Redirect(w, r, withExtraParams(menuPath, q, canonical), http.StatusSeeOther)
		return
	}

	view := h.menuView(wiz)
	h.renderPage(w, r, http.StatusOK, "menu", h.page(r, "menu.title", view))
}

func (h *Handlers) menuView(wiz menu.Wizard) MenuView {
	sel := wiz.Selection()
	vis := wiz.VisibleSteps()
	v := MenuView{
		Step:      wiz.Step().String(),
		StepKey:   "menu.step." + wiz.Step().String(),
		Position:  wiz.Position() + 1,
		Total:     len(vis),
		Progress:  wiz.Progress(),
		ResetHref: menuPath,
	}
	for _, s := range vis {
		v.Steps = append(v.Steps, StepView{
			Key:     "menu.step." + s.String(),
			Done:    wiz.Answered(s) && s != wiz.Step(),
			Current: s == wiz.Step(),
		})
	}

	switch wiz.Step() {
	case menu.StepGender:
		for _, g := range menu.Genders {
			v.Options = append(v.Options, optionView(wiz, menu.ParamGender, string(g), "menu.gender.", sel.Gender == g))
		}
	case menu.StepLocation:
		for _, l := range menu.Locations {
			v.Options = append(v.Options, optionView(wiz, menu.ParamLocation, string(l), "menu.location.", sel.Location == l))
		}
	case menu.StepFrequency:
		for _, f := range wiz.FrequencyOptions() {
			v.Options = append(v.Options, optionView(wiz, menu.ParamFrequency, string(f), "menu.freq.", sel.Frequency == f))
		}
		v.Limited = len(wiz.FrequencyOptions()) < len(menu.Frequencies)
	case menu.StepResult:
		res, ok := h.table.Resolve(sel)
		if ok {
			v.Result = &ResultView{
				ComingSoon: res.IsComingSoon(),
				Program:    res.Program,
				ShareURL:   sel.URL(menuPath),
			}
		}
	}

	if wiz.CanAdvance() {
		next := wiz
		next.Next()
		v.NextHref = next.URL(menuPath)
		v.NextKey = "menu.next"
		if next.IsResult() {
			v.NextKey = "menu.show_result"
		}
	}
	if wiz.Position() > 0 {
		back := wiz
		back.Back()
		v.BackHref = back.URL(menuPath)
	}
	return v
}

func optionView(wiz menu.Wizard, field, value, keyPrefix string, selected bool) OptionView {
	next := wiz
	_ = next.Apply(menu.Action{Kind: menu.ActionSelect, Field: field, Value: value})
	return OptionView{
		LabelKey: keyPrefix + value,
		Value:    value,
		Href:     next.URL(menuPath),
		Selected: selected,
	}
}

// sameParams reports whether the wizard parameters of q already equal canonical.
func sameParams(q, canonical url.Values) bool {
	for _, k := range wizardParams {
		if q.Get(k) != canonical.Get(k) {
			return false
		}
		if len(q[k]) > 1 {
			return false
		}
	}
	return true
}

// withExtraParams builds path?query from the wizard parameters in wizard plus every
// non-wizard parameter of original (such as hl).
func withExtraParams(path string, original, wizard url.Values) string {
	out := cloneQuery(wizard)
	for k, v := range original {
		if isWizardParam(k) {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	if enc := out.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func isWizardParam(k string) bool {
	for _, p := range wizardParams {
		if k == p {
			return true
		}
	}
	return false
}
