package reportinghttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tesoreria/internal/dataset"
	"github.com/odyssey-erp/tesoreria/internal/fetch"
	"github.com/odyssey-erp/tesoreria/internal/layout"
	"github.com/odyssey-erp/tesoreria/internal/platform/httpx"
	"github.com/odyssey-erp/tesoreria/internal/records"
	"github.com/odyssey-erp/tesoreria/internal/render"
	"github.com/odyssey-erp/tesoreria/internal/reporting"
)

const summaryCSV = "recibidos,entregados,saldo\n1500.00,1200.00,300.00\n"

type countingHost struct {
	files map[string]string
	calls atomic.Int32
}

func (h *countingHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls.Add(1)
	switch body, ok := h.files[r.URL.Path]; {
	case !ok:
		http.NotFound(w, r)
	case body == "":
		http.Error(w, "boom", http.StatusInternalServerError)
	default:
		_, _ = w.Write([]byte(body))
	}
}

type stubService struct {
	result *reporting.Result
	err    error
	calls  int
}

func (s *stubService) Generate(context.Context, reporting.Request) (*reporting.Result, error) {
	s.calls++
	return s.result, s.err
}

func newRouter(t *testing.T, service ReportService, rate int) http.Handler {
	t.Helper()
	h := NewHandler(nil, service, rate)
	h.WithNow(func() time.Time { return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func newPipeline(t *testing.T, files map[string]string) (*httptest.Server, *countingHost, http.Handler) {
	t.Helper()
	host := &countingHost{files: files}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)
	svc := reporting.NewService(
		fetch.NewFetcher(srv.Client(), fetch.Options{}),
		dataset.NewClassifier(nil, nil),
		layout.NewEngine(layout.Options{}),
		render.NewPDFRenderer(),
		reporting.Options{},
	)
	return srv, host, newRouter(t, svc, 0)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func problem(t *testing.T, rr *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	require.Equal(t, httpx.ProblemContentType, rr.Header().Get("Content-Type"))
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func reportURL(urls ...string) string {
	joined := ""
	for i, u := range urls {
		if i > 0 {
			joined += ","
		}
		joined += u
	}
	return "/generar-reporte?url=" + url.QueryEscape(joined)
}

func TestMissingURLParameter(t *testing.T) {
	service := &stubService{}
	rr := get(t, newRouter(t, service, 0), "/generar-reporte")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	p := problem(t, rr)
	assert.Equal(t, msgMissingURL, p.Detail)
	assert.Zero(t, service.calls)

	rr = get(t, newRouter(t, service, 0), "/generar-reporte?url=%20,%20")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, service.calls)
}

func TestInvalidURLsAreListedWithoutFetching(t *testing.T) {
	_, host, router := newPipeline(t, map[string]string{"/brawny-letters.csv": summaryCSV})

	rr := get(t, router, reportURL("ftp://files.example/brawny-letters.csv", "not-a-url"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	p := problem(t, rr)
	assert.Equal(t, []string{"ftp://files.example/brawny-letters.csv", "not-a-url"}, p.Errors)
	assert.Contains(t, p.Detail, "URLs inválidas")
	assert.Zero(t, host.calls.Load())
}

func TestSummaryFetchFailureIsNotFound(t *testing.T) {
	srv, host, router := newPipeline(t, map[string]string{"/brawny-letters.csv": ""})

	rr := get(t, router, reportURL(srv.URL+"/brawny-letters.csv"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	p := problem(t, rr)
	assert.Equal(t, "Not Found", p.Title)
	assert.Contains(t, p.Detail, "brawny-letters")
	assert.NotContains(t, rr.Body.String(), "%PDF")
	assert.Equal(t, int32(1), host.calls.Load())
}

func TestHeaderOnlySummaryIsNotFound(t *testing.T) {
	srv, _, router := newPipeline(t, map[string]string{"/brawny-letters.csv": "recibidos,entregados,saldo\n"})

	rr := get(t, router, reportURL(srv.URL+"/brawny-letters.csv"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, problem(t, rr).Detail, "brawny-letters.csv")
}

func TestMalformedSummaryIsUnprocessable(t *testing.T) {
	srv, _, router := newPipeline(t, map[string]string{"/brawny-letters.csv": "recibidos,entregados\n1,2\n"})

	rr := get(t, router, reportURL(srv.URL+"/brawny-letters.csv"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	p := problem(t, rr)
	assert.Equal(t, "Unprocessable Content", p.Title)
	assert.Contains(t, p.Detail, "summary needs 3 columns")
}

func TestGenerateReportStreamsPDF(t *testing.T) {
	srv, _, router := newPipeline(t, map[string]string{
		"/brawny-letters.csv": summaryCSV,
		"/vague-stage.csv":    "n,c,p,s,g,e\nAna,10,x,0,1,PAGADO\n",
	})

	rr := get(t, router, reportURL(srv.URL+"/brawny-letters.csv", srv.URL+"/vague-stage.csv", srv.URL+"/pagos.csv"))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename=reporte-\d+\.pdf$`, rr.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rr.Header().Get(HeaderReportID))
	assert.Equal(t, "1", rr.Header().Get(HeaderWarnings))
	assert.Equal(t, "1", rr.Header().Get(HeaderFetchFailures))
	assert.Equal(t, "3", rr.Header().Get(HeaderPages))
	assert.Equal(t, "%PDF-", rr.Body.String()[:5])
}

func TestInternalErrorsHideDetails(t *testing.T) {
	service := &stubService{err: assert.AnError}
	rr := get(t, newRouter(t, service, 0), "/generar-reporte?url=https://example.com/brawny-letters.csv")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	p := problem(t, rr)
	assert.Empty(t, p.Detail)
	assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
}

func TestMalformedErrorFromService(t *testing.T) {
	service := &stubService{err: records.ErrMalformedDataset}
	rr := get(t, newRouter(t, service, 0), "/generar-reporte?url=https://example.com/a.csv")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestReportRateLimit(t *testing.T) {
	service := &stubService{result: &reporting.Result{ID: "r", Filename: "reporte-1.pdf", PDF: []byte("%PDF-1.3")}}
	router := newRouter(t, service, 1)

	first := get(t, router, "/generar-reporte?url=https://example.com/brawny-letters.csv")
	second := get(t, router, "/generar-reporte?url=https://example.com/brawny-letters.csv")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, service.calls)

	health := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestHealthAndIndex(t *testing.T) {
	router := newRouter(t, &stubService{}, 0)

	rr := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK","timestamp":"2026-03-05T12:00:00Z"}`, rr.Body.String())

	rr = get(t, router, "/test")
	assert.Equal(t, http.StatusOK, rr.Code)
	var body indexResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "GET /health", body.Endpoints["health"])
}
