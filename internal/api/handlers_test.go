package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"socialtrends/internal/dashboard"
	"socialtrends/internal/engine"
	"socialtrends/internal/models"
	"socialtrends/internal/render"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("year,Twitter user count % change since 2010,Facebook user count % change since 2010,Suicide Rate % change since 2010,Total social media growth,Social Media Impact Score\n")
	for y := 2006; y <= 2020; y++ {
		i := float64(y - 2006)
		fmt.Fprintf(&b, "%d,%.1f,%.1f,%.1f,%.1f,%.1f\n", y, i*15, i*7, i*0.8, i*22, i*i*0.3)
	}
	path := filepath.Join(t.TempDir(), "cleaned_dataset.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newServer(t *testing.T, path string) (*echo.Echo, *engine.Source) {
	t.Helper()
	src := engine.NewSource(path, nil)
	h := NewHandler(dashboard.NewController(src, render.NewPNG(), nil), src, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, src
}

func do(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexRedirects(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))
	rec := do(e, "/")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/pages/overview" {
		t.Errorf("Expected redirect to overview, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestPagesRender(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))
	for _, p := range dashboard.Pages {
		rec := do(e, "/pages/"+p.Slug())
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", p, rec.Code, rec.Body.String())
			continue
		}
		body := rec.Body.String()
		if !strings.Contains(body, `class="active">`+string(p)+`</a>`) {
			t.Errorf("%s: active sidebar entry missing", p)
		}
	}

	body := do(e, "/pages/visualizations").Body.String()
	if n := strings.Count(body, "data:image/png;base64,"); n != 4 {
		t.Errorf("Expected 4 inline charts on Visualizations, got %d", n)
	}
}

func TestOverviewFilterQuery(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))
	q := url.Values{"column": {"year"}, "value": {"2007", "2019"}}
	rec := do(e, "/api/pages/overview?"+q.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view models.PageView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	rows := view.Sections[0].Table.Rows
	if len(rows) != 2 || rows[0][0] != "2007" || rows[1][0] != "2019" {
		t.Errorf("Unexpected filtered rows %v", rows)
	}
}

func TestAnalysisMinYear(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))

	rec := do(e, "/api/pages/analysis?min_year=2018")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var view models.PageView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Slider == nil || view.Slider.Value != 2018 {
		t.Errorf("Expected slider at 2018, got %+v", view.Slider)
	}

	if rec := do(e, "/api/pages/analysis?min_year=soon"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad min_year, got %d", rec.Code)
	}
}

func TestStatusMapping(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))
	cases := map[string]int{
		"/pages/settings":                 http.StatusNotFound,
		"/api/pages/settings":             http.StatusNotFound,
		"/api/pages/overview?column=nope": http.StatusBadRequest,
		"/api/columns/values?column=nope": http.StatusBadRequest,
		"/api/dataset?column=nope":        http.StatusBadRequest,
		"/api/dataset?value=2010":         http.StatusBadRequest,
	}
	for target, want := range cases {
		if rec := do(e, target); rec.Code != want {
			t.Errorf("%s: expected %d, got %d", target, want, rec.Code)
		}
	}
}

func TestLoadErrorIsFullPageFailure(t *testing.T) {
	e, src := newServer(t, filepath.Join(t.TempDir(), "missing.csv"))

	rec := do(e, "/pages/overview")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The dataset could not be loaded") || strings.Contains(body, "<nav>") {
		t.Errorf("Expected a bare error page, got %s", body)
	}

	if !src.Ready() {
		t.Error("Source should be marked ready after a failed load")
	}
	if rec := do(e, "/healthz"); rec.Code != http.StatusInternalServerError {
		t.Errorf("healthz after failed load: expected 500, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e, src := newServer(t, writeDataset(t))
	if rec := do(e, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before load, got %d", rec.Code)
	}
	if _, err := src.Load(); err != nil {
		t.Fatal(err)
	}
	if rec := do(e, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after load, got %d", rec.Code)
	}
}

func TestGetDatasetPagination(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))

	var page models.RowsPage
	rec := do(e, "/api/dataset?limit=5&offset=10")
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 15 || len(page.Rows) != 5 || page.Rows[0][0] != "2016" {
		t.Errorf("Unexpected page: total %d rows %d first %v", page.Total, len(page.Rows), page.Rows[0])
	}

	rec = do(e, "/api/dataset?offset=99")
	page = models.RowsPage{}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Rows) != 0 {
		t.Errorf("Expected no rows past the end, got %d", len(page.Rows))
	}
}

func TestSummaryAndColumns(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))

	var summary []struct {
		Column string             `json:"column"`
		Stats  map[string]float64 `json:"stats"`
	}
	if err := json.Unmarshal(do(e, "/api/summary").Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if len(summary) != 6 {
		t.Fatalf("Expected 6 numeric columns, got %d", len(summary))
	}
	for _, s := range summary {
		if s.Column == engine.ColFacebook && s.Stats["mean"] != 49 {
			t.Errorf("Expected facebook mean 49, got %v", s.Stats["mean"])
		}
	}

	var values []string
	q := url.Values{"column": {engine.ColYear}}
	if err := json.Unmarshal(do(e, "/api/columns/values?"+q.Encode()).Body.Bytes(), &values); err != nil {
		t.Fatal(err)
	}
	if len(values) != 15 || values[0] != "2006" {
		t.Errorf("Unexpected year values %v", values)
	}
}

func TestHeaderOnlyFileFailsEveryRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned_dataset.csv")
	header := "year,Twitter user count % change since 2010,Facebook user count % change since 2010,Suicide Rate % change since 2010,Total social media growth,Social Media Impact Score\n"
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	e, src := newServer(t, path)

	for i := 0; i < 2; i++ {
		if rec := do(e, "/pages/overview"); rec.Code != http.StatusInternalServerError {
			t.Errorf("Request %d: expected 500, got %d", i, rec.Code)
		}
	}
	if !src.Ready() {
		t.Error("Source should be ready after the failed load")
	}
	if rec := do(e, "/healthz"); rec.Code != http.StatusInternalServerError {
		t.Errorf("healthz: expected 500, got %d", rec.Code)
	}
}

func TestColumnSelectSubmitsAlone(t *testing.T) {
	e, _ := newServer(t, writeDataset(t))
	q := url.Values{"column": {engine.ColYear}, "value": {"2008"}}
	body := do(e, "/pages/overview?"+q.Encode()).Body.String()

	start := strings.Index(body, `class="column-form"`)
	if start < 0 {
		t.Fatal("column form missing")
	}
	columnForm := body[start : start+strings.Index(body[start:], "</form>")]
	if strings.Contains(columnForm, `name="value"`) {
		t.Error("Changing the column must not resubmit the previous values")
	}

	start = strings.Index(body, `class="value-form"`)
	if start < 0 {
		t.Fatal("value form missing")
	}
	valueForm := body[start : start+strings.Index(body[start:], "</form>")]
	if !strings.Contains(valueForm, `<input type="hidden" name="column" value="year">`) {
		t.Error("Value form should carry the current column")
	}
	if !strings.Contains(valueForm, `<option value="2008" selected>`) {
		t.Error("Selected value should stay marked")
	}
}
