package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/testutil"
)

func get(t *testing.T, ts *httptest.Server, path string, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := testutil.NoRedirectClient(ts).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func getPage(t *testing.T, ts *httptest.Server, path string, cookies ...*http.Cookie) *goquery.Document {
	t.Helper()

	resp, body := get(t, ts, path, cookies...)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	return testutil.ParseHTML(t, body)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == "macho_session" {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestMenuStartsOnGenderStep(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu")
	require.Equal(t, "gender", doc.Find("#wizard").AttrOr("data-step", ""))
	require.Equal(t, "最強筋トレメニュー診断", strings.TrimSpace(doc.Find("#wizard h1").Text()))
	require.Contains(t, doc.Find(".progress-label").Text(), "1")

	options := doc.Find(".options a.option")
	require.Equal(t, 2, options.Length())
	require.Equal(t, "/menu?gender=male&step=gender", options.First().AttrOr("href", ""))
	require.Zero(t, doc.Find("a.next").Length())
	require.Zero(t, doc.Find("a.back").Length())
}

func TestMenuSelectionDoesNotAdvance(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?gender=male&step=gender")
	require.Equal(t, "gender", doc.Find("#wizard").AttrOr("data-step", ""))
	require.Equal(t, "male", doc.Find("a.option.selected").AttrOr("data-value", ""))
	require.Equal(t, "/menu?gender=male", doc.Find("a.next").AttrOr("href", ""))
}

func TestMenuStepCursorLinks(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?gender=male&step=location&type=gym")
	require.Equal(t, "location", doc.Find("#wizard").AttrOr("data-step", ""))
	require.Equal(t, "/menu?gender=male&type=gym", doc.Find("a.next").AttrOr("href", ""))
	require.Equal(t, "/menu?gender=male&step=gender&type=gym", doc.Find("a.back").AttrOr("href", ""))
	require.Equal(t, "/menu", doc.Find("a.reset").AttrOr("href", ""))
}

func TestMenuHomeResult(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?gender=male&type=home")
	require.Equal(t, "result", doc.Find("#wizard").AttrOr("data-step", ""))
	require.Equal(t, "家トレ（自重）最強筋トレメニュー", strings.TrimSpace(doc.Find(".program-title").Text()))
	require.Equal(t, "/menu?gender=male&type=home", doc.Find("a.share-link").AttrOr("href", ""))
	require.Greater(t, doc.Find(".day").Length(), 0)
	require.Zero(t, doc.Find(".progress").Length())
}

func TestMenuGymResult(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?freq=4&gender=male&type=gym")
	require.Equal(t, "ジム週４回最強筋トレメニュー", strings.TrimSpace(doc.Find(".program-title").Text()))
	require.Equal(t, 4, doc.Find(".day").Length())

	doc = getPage(t, ts, "/menu?freq=3&gender=female&type=gym")
	require.Equal(t, "ジム週3回最強筋トレメニュー", strings.TrimSpace(doc.Find(".program-title").Text()))
}

func TestMenuFemaleGymOffersLimitedFrequencies(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?gender=female&type=gym")
	require.Equal(t, "frequency", doc.Find("#wizard").AttrOr("data-step", ""))
	var values []string
	doc.Find(".options a.option").Each(func(_ int, s *goquery.Selection) {
		values = append(values, s.AttrOr("data-value", ""))
	})
	require.Equal(t, []string{"1-2", "3"}, values)
	require.Equal(t, 1, doc.Find(".limited").Length())
}

func TestMenuRedirectsToNormalizedURL(t *testing.T) {
	ts := testutil.NewServer(t)

	cases := map[string]string{
		"/menu?gender=male&type=home&freq=3":            "/menu?gender=male&type=home",
		"/menu?freq=4&gender=male&type=gym&step=result": "/menu?freq=4&gender=male&type=gym",
		"/menu?step=bogus":                              "/menu",
		"/menu?gender=male&type=home&hl=en&freq=5":      "/menu?gender=male&hl=en&type=home",
	}
	for path, want := range cases {
		resp, _ := get(t, ts, path)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, want, resp.Header.Get("Location"), path)
	}
}

func TestMenuInvalidParamsResetWithNotice(t *testing.T) {
	ts := testutil.NewServer(t)

	for _, path := range []string{
		"/menu?gender=robot&type=gym",
		"/menu?gender=female&type=gym&freq=5",
		"/menu?freq=8",
		"/menu?gender=male&gender=bogus&type=home",
	} {
		resp, _ := get(t, ts, path)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/menu", resp.Header.Get("Location"), path)

		doc := getPage(t, ts, "/menu", sessionCookie(t, resp))
		require.Equal(t, "不正なパラメーターを検出したため診断を初期化しました。", strings.TrimSpace(doc.Find(".flash").Text()), path)
		require.Equal(t, "gender", doc.Find("#wizard").AttrOr("data-step", ""))
	}
}

func TestMenuFlashIsShownOnce(t *testing.T) {
	ts := testutil.NewServer(t)

	resp, _ := get(t, ts, "/menu?type=car")
	first, body := get(t, ts, "/menu", sessionCookie(t, resp))
	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, 1, testutil.ParseHTML(t, body).Find(".flash").Length())

	doc := getPage(t, ts, "/menu", sessionCookie(t, first))
	require.Zero(t, doc.Find(".flash").Length())
}

func TestMenuComingSoon(t *testing.T) {
	table, err := menu.LoadTable(strings.NewReader(`
male:
  gym:
    "3": coming_soon
`))
	require.NoError(t, err)
	ts := testutil.NewServer(t, testutil.WithTable(table))

	doc := getPage(t, ts, "/menu?freq=3&gender=male&type=gym")
	require.Equal(t, 1, doc.Find(".coming-soon").Length())
	require.Zero(t, doc.Find(".program").Length())

	doc = getPage(t, ts, "/menu?gender=female&type=home")
	require.Equal(t, 1, doc.Find(".coming-soon").Length())
}

func TestMenuEnglish(t *testing.T) {
	ts := testutil.NewServer(t)

	doc := getPage(t, ts, "/menu?hl=en")
	require.Equal(t, "Workout menu finder", strings.TrimSpace(doc.Find("#wizard h1").Text()))
	require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "Male", strings.TrimSpace(doc.Find(".options a.option").First().Text()))
}

func TestMenuHTMXRendersFragment(t *testing.T) {
	ts := testutil.NewServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/menu?gender=male", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(body), "<html")
	require.Contains(t, resp.Header.Values("Vary"), "HX-Request")
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "location", doc.Find("#wizard").AttrOr("data-step", ""))
}
