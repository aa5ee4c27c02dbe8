package handlers

import (
	"net/http"

	"machoda.com/macho-web/internal/intake"
)

// IntakeView is the template model of the calculator page.
type IntakeView struct {
	Input      intake.Input
	Result     intake.Result
	Genders    []intake.Gender
	Activities []intake.ActivityLevel
}

// Intake renders the calculator form with the result for the submitted values, or
// for the defaults on first visit.
func (h *Handlers) Intake(w http.ResponseWriter, r *http.Request) {
	in := intake.ParseInput(r.URL.Query())
	view := IntakeView{
		Input:      in,
		Result:     intake.Calculate(in),
		Genders:    []intake.Gender{intake.Male, intake.Female},
		Activities: intake.Activities,
	}
	h.renderPage(w, r, http.StatusOK, "intake", h.page(r, "intake.title", view))
}
