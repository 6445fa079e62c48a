package reportinghttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/tesoreria/internal/dataset"
	"github.com/odyssey-erp/tesoreria/internal/fetch"
	"github.com/odyssey-erp/tesoreria/internal/platform/httpx"
	"github.com/odyssey-erp/tesoreria/internal/records"
	"github.com/odyssey-erp/tesoreria/internal/reporting"
)

// Response headers describing a generated report.
const (
	HeaderReportID      = "X-Report-ID"
	HeaderWarnings      = "X-Report-Warnings"
	HeaderFetchFailures = "X-Report-Fetch-Failures"
	HeaderPages         = "X-Report-Pages"
)

const msgMissingURL = "Debes incluir el parámetro 'url' con las URLs separadas por comas."

// ReportService is the pipeline contract used by the handler.
type ReportService interface {
	Generate(ctx context.Context, req reporting.Request) (*reporting.Result, error)
}

// Handler serves the report endpoint.
type Handler struct {
	logger        *slog.Logger
	service       ReportService
	ratePerMinute int
	now           func() time.Time
}

// NewHandler constructs the report HTTP handler. ratePerMinute <= 0 disables
// the per-IP limit on report generation.
func NewHandler(logger *slog.Logger, service ReportService, ratePerMinute int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, ratePerMinute: ratePerMinute, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	urls, err := fetch.ParseURLList(query.Get("url"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	refresh, _ := strconv.ParseBool(query.Get("refresh"))

	result, err := h.service.Generate(r.Context(), reporting.Request{URLs: urls, Refresh: refresh})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "application/pdf")
	header.Set("Content-Disposition", "attachment; filename="+result.Filename)
	header.Set("Content-Length", strconv.Itoa(len(result.PDF)))
	header.Set(HeaderReportID, result.ID)
	header.Set(HeaderWarnings, strconv.Itoa(len(result.Warnings)))
	header.Set(HeaderFetchFailures, strconv.Itoa(len(result.Failures)))
	header.Set(HeaderPages, strconv.Itoa(result.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PDF); err != nil {
		// Headers are gone; the client sees a truncated download.
		h.logger.Warn("stream pdf", slog.String("report_id", result.ID), slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *fetch.InvalidURLsError
	switch {
	case errors.As(err, &invalid):
		httpx.WriteProblem(w, httpx.ProblemDetail{
			Title:  "Invalid URLs",
			Status: http.StatusBadRequest,
			Detail: "URLs inválidas: " + strings.Join(invalid.URLs, ", "),
			Errors: invalid.URLs,
		})
	case errors.Is(err, fetch.ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Missing Parameter", msgMissingURL)
	case errors.Is(err, dataset.ErrMissingRequiredDataset):
		h.logger.Warn("report dataset missing", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, records.ErrMalformedDataset):
		h.logger.Warn("report dataset malformed", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnprocessable, err))
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		h.logger.Info("report cancelled by client", slog.String("path", r.URL.Path))
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Error("report timed out", slog.Any("error", err))
		httpx.Problem(w, http.StatusGatewayTimeout, "Timeout", "la generación del reporte excedió el tiempo límite")
	default:
		h.logger.Error("generate report", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: h.now().UTC().Format(time.RFC3339)})
}

type indexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, indexResponse{
		Message: "Servidor funcionando correctamente",
		Endpoints: map[string]string{
			"generar_reporte": "GET /generar-reporte?url=URL1,URL2,URL3",
			"health":          "GET /health",
			"metrics":         "GET /metrics",
		},
	})
}
