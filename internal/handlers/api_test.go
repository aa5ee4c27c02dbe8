package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"machoda.com/macho-web/internal/testutil"
)

type programPayload struct {
	Status    string            `json:"status"`
	Selection map[string]string `json:"selection"`
	Query     string            `json:"query"`
	Program   *struct {
		Title string `json:"title"`
		Days  []struct {
			Title string `json:"title"`
		} `json:"days"`
	} `json:"program"`
}

type wizardPayload struct {
	Query            string          `json:"query"`
	URL              string          `json:"url"`
	Step             string          `json:"step"`
	VisibleSteps     []string        `json:"visible_steps"`
	FrequencyOptions []string        `json:"frequency_options"`
	CanAdvance       bool            `json:"can_advance"`
	Progress         float64         `json:"progress"`
	Result           *programPayload `json:"result"`
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()

	resp, body := get(t, ts, path)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	require.NoError(t, json.Unmarshal(body, out), string(body))
	return resp
}

func postWizard(t *testing.T, ts *httptest.Server, body string, out any) *http.Response {
	t.Helper()

	resp, err := ts.Client().Post(ts.URL+"/api/menu/wizard", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestProgramsAPI(t *testing.T) {
	ts := testutil.NewServer(t)

	var available programPayload
	resp := getJSON(t, ts, "/api/menu/programs?gender=male&type=gym&freq=4", &available)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.Equal(t, "available", available.Status)
	require.Equal(t, "freq=4&gender=male&type=gym", available.Query)
	require.NotNil(t, available.Program)
	require.Equal(t, "ジム週４回最強筋トレメニュー", available.Program.Title)
	require.Len(t, available.Program.Days, 4)

	var home programPayload
	getJSON(t, ts, "/api/menu/programs?gender=female&type=home&freq=6", &home)
	require.Equal(t, "available", home.Status)
	require.Equal(t, "gender=female&type=home", home.Query)
	require.Empty(t, home.Selection["freq"])

	var incomplete programPayload
	resp = getJSON(t, ts, "/api/menu/programs?gender=male&type=gym", &incomplete)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "incomplete", incomplete.Status)
	require.Nil(t, incomplete.Program)
}

func TestProgramsAPIRejectsInvalidSelection(t *testing.T) {
	ts := testutil.NewServer(t)

	cases := map[string]bool{
		"/api/menu/programs?type=car":                        false,
		"/api/menu/programs?gender=female&type=gym&freq=7":   true,
		"/api/menu/programs?gender=male&type=gym&freq=1%2C2": false,
		"/api/menu/programs?gender=male&gender=bogus&type=a": false,
	}
	for path, contextual := range cases {
		var payload map[string]any
		resp := getJSON(t, ts, path, &payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		require.Equal(t, "invalid_selection", payload["error"], path)
		require.Equal(t, "/menu", payload["reset"], path)
		require.Equal(t, contextual, payload["contextual"], path)
		require.NotEmpty(t, payload["request_id"], path)
	}
}

func TestWizardAPIWalksToResult(t *testing.T) {
	ts := testutil.NewServer(t)

	var state wizardPayload
	resp := postWizard(t, ts, `{"query":"gender=male","action":{"kind":"select","field":"type","value":"home"}}`, &state)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "location", state.Step)
	require.Equal(t, []string{"gender", "location"}, state.VisibleSteps)
	require.Empty(t, state.FrequencyOptions)
	require.True(t, state.CanAdvance)
	require.Equal(t, "gender=male&step=location&type=home", state.Query)
	require.Nil(t, state.Result)

	next := wizardPayload{}
	postWizard(t, ts, `{"query":"`+state.Query+`","action":{"kind":"next"}}`, &next)
	require.Equal(t, "result", next.Step)
	require.Equal(t, "gender=male&type=home", next.Query)
	require.Equal(t, "/menu?gender=male&type=home", next.URL)
	require.InDelta(t, 1.0, next.Progress, 1e-9)
	require.NotNil(t, next.Result)
	require.Equal(t, "available", next.Result.Status)
	require.Equal(t, "家トレ（自重）最強筋トレメニュー", next.Result.Program.Title)
}

func TestWizardAPIHydratesWithoutAction(t *testing.T) {
	ts := testutil.NewServer(t)

	var state wizardPayload
	postWizard(t, ts, `{"query":"?gender=female&type=gym"}`, &state)
	require.Equal(t, "frequency", state.Step)
	require.Equal(t, []string{"1-2", "3"}, state.FrequencyOptions)
	require.False(t, state.CanAdvance)

	postWizard(t, ts, `{"query":"gender=female&type=gym","step":"gender"}`, &state)
	require.Equal(t, "gender", state.Step)
	require.Equal(t, "gender=female&step=gender&type=gym", state.Query)
}

func TestWizardAPIErrors(t *testing.T) {
	ts := testutil.NewServer(t)

	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed", body: `{"query":`, code: "invalid_request"},
		{name: "unknown field", body: `{"query":"","extra":1}`, code: "invalid_request"},
		{name: "bad selection", body: `{"query":"gender=robot"}`, code: "invalid_selection"},
		{name: "unknown kind", body: `{"query":"","action":{"kind":"jump"}}`, code: "invalid_action"},
		{name: "unknown value", body: `{"query":"gender=male&type=gym","action":{"kind":"select","field":"freq","value":"9"}}`, code: "invalid_action"},
		{name: "not offered", body: `{"query":"gender=female&type=gym","action":{"kind":"select","field":"freq","value":"5"}}`, code: "invalid_action"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload map[string]any
			resp := postWizard(t, ts, tc.body, &payload)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Equal(t, tc.code, payload["error"])
		})
	}
}

func TestWizardAPIMethodNotAllowed(t *testing.T) {
	ts := testutil.NewServer(t)

	var payload map[string]any
	resp := getJSON(t, ts, "/api/menu/wizard", &payload)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, "method_not_allowed", payload["error"])
}

func TestIntakeAPI(t *testing.T) {
	ts := testutil.NewServer(t)

	var payload struct {
		Input struct {
			Gender string  `json:"gender"`
			Weight float64 `json:"weight"`
		} `json:"input"`
		BMR            int `json:"bmr"`
		Maintenance    int `json:"maintenance"`
		ProteinPerMeal int `json:"protein_per_meal"`
	}
	resp := getJSON(t, ts, "/api/intake", &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "male", payload.Input.Gender)
	require.Equal(t, 70.0, payload.Input.Weight)
	require.Equal(t, 1618, payload.BMR)
	require.Equal(t, 2507, payload.Maintenance)
	require.Equal(t, 42, payload.ProteinPerMeal)

	getJSON(t, ts, "/api/intake?weight=500", &payload)
	require.Equal(t, 200.0, payload.Input.Weight)
}
