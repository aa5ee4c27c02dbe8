package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"machoda.com/macho-web/internal/httpx"
	"machoda.com/macho-web/internal/intake"
	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/observability"
)

const maxWizardBody = 8 << 10

type selectionJSON struct {
	Gender    string `json:"gender,omitempty"`
	Location  string `json:"type,omitempty"`
	Frequency string `json:"freq,omitempty"`
}

func newSelectionJSON(sel menu.Selection) selectionJSON {
	return selectionJSON{Gender: string(sel.Gender), Location: string(sel.Location), Frequency: string(sel.Frequency)}
}

type programResponse struct {
	Status    string        `json:"status"`
	Selection selectionJSON `json:"selection"`
	Query     string        `json:"query"`
	Program   *menu.Program `json:"program,omitempty"`
}

// Programs resolves a shared selection to its program.
func (h *Handlers) Programs(w http.ResponseWriter, r *http.Request) {
	sel, err := menu.ParseSelection(r.URL.Query())
	if err != nil {
		writeSelectionError(w, r, err)
		return
	}
	resp := programResponse{Status: "incomplete", Selection: newSelectionJSON(sel), Query: sel.Encode()}
	if res, ok := h.table.Resolve(sel); ok {
		resp.Status = res.Status()
		resp.Program = res.Program
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type wizardRequest struct {
	Query  string       `json:"query"`
	Step   string       `json:"step,omitempty"`
	Action *menu.Action `json:"action,omitempty"`
}

type wizardResponse struct {
	Query            string           `json:"query"`
	URL              string           `json:"url"`
	Step             string           `json:"step"`
	VisibleSteps     []string         `json:"visible_steps"`
	FrequencyOptions []string         `json:"frequency_options"`
	Selection        selectionJSON    `json:"selection"`
	CanAdvance       bool             `json:"can_advance"`
	Progress         float64          `json:"progress"`
	Result           *programResponse `json:"result,omitempty"`
}

// Wizard applies one action to the state described by a query string and returns the
// new state. Without an action it only hydrates.
func (h *Handlers) Wizard(w http.ResponseWriter, r *http.Request) {
	var req wizardRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWizardBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "request body must be a wizard request object", http.StatusBadRequest))
		return
	}
	q, err := url.ParseQuery(strings.TrimPrefix(req.Query, "?"))
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "query is not a valid query string", http.StatusBadRequest))
		return
	}
	if req.Step != "" {
		q.Set(menu.ParamStep, req.Step)
	}
	wiz, err := menu.Hydrate(q)
	if err != nil {
		writeSelectionError(w, r, err)
		return
	}
	if req.Action != nil {
		if err := wiz.Apply(*req.Action); err != nil {
			if errors.Is(err, menu.ErrInvalidAction) {
				httpx.WriteError(r.Context(), w, httpx.NewError("invalid_action", err.Error(), http.StatusBadRequest))
				return
			}
			httpx.WriteError(r.Context(), w, httpx.NewError("internal", "wizard action failed", http.StatusInternalServerError))
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, h.wizardState(wiz))
}

func (h *Handlers) wizardState(wiz menu.Wizard) wizardResponse {
	sel := wiz.Selection()
	resp := wizardResponse{
		Query:            wiz.Query().Encode(),
		URL:              wiz.URL(menuPath),
		Step:             wiz.Step().String(),
		VisibleSteps:     []string{},
		FrequencyOptions: []string{},
		Selection:        newSelectionJSON(sel),
		CanAdvance:       wiz.CanAdvance(),
		Progress:         wiz.Progress(),
	}
	for _, s := range wiz.VisibleSteps() {
		resp.VisibleSteps = append(resp.VisibleSteps, s.String())
	}
	if sel.NeedsFrequency() {
		for _, f := range wiz.FrequencyOptions() {
			resp.FrequencyOptions = append(resp.FrequencyOptions, string(f))
		}
	}
	if wiz.IsResult() {
		if res, ok := h.table.Resolve(sel); ok {
			resp.Result = &programResponse{
				Status:    res.Status(),
				Selection: newSelectionJSON(sel),
				Query:     sel.Encode(),
				Program:   res.Program,
			}
		}
	}
	return resp
}

func writeSelectionError(w http.ResponseWriter, r *http.Request, err error) {
	var selErr *menu.SelectionError
	params := []string{}
	contextual := false
	if errors.As(err, &selErr) {
		params = selErr.Params
		contextual = selErr.Contextual
	}
	observability.FromContext(r.Context()).Debug("menu parameters rejected", zap.Strings("params", params))
	httpx.WriteError(r.Context(), w, httpx.NewError("invalid_selection", "selection parameters are invalid", http.StatusBadRequest).
		WithDetails(map[string]any{"params": params, "contextual": contextual, "reset": menuPath}))
}

// IntakeAPI returns the calculator result for the query parameters.
func (h *Handlers) IntakeAPI(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, intake.Calculate(intake.ParseInput(r.URL.Query())))
}
