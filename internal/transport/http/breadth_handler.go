package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"breadthpulse/internal/breadth"
	apierrors "breadthpulse/internal/errors"
	"breadthpulse/internal/exporter"
)

// BreadthHandler serves the market breadth API with RFC 7807 errors
type BreadthHandler struct {
	service      BreadthServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewBreadthHandler creates a new breadth handler
func NewBreadthHandler(service BreadthServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BreadthHandler {
	return &BreadthHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "breadth_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the breadth routes
func (h *BreadthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/meta", h.GetMeta)
	r.Get("/trend", h.GetTrend)
	r.Get("/day/{date}", h.GetDay)
	r.Get("/export/trend", h.ExportTrend)
	r.Get("/export/day/{date}", h.ExportDay)

	return r
}

// trendRequest holds the parsed query parameters for trend endpoints
type trendRequest struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

// parseRange reads from/to query parameters. Missing bounds default to
// the dataset's full coverage.
func (h *BreadthHandler) parseRange(r *http.Request) (from, to time.Time, err error) {
	req := trendRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if vErr := h.validate.Struct(req); vErr != nil {
		return from, to, apierrors.ErrValidation("from/to", "dates must use the YYYY-MM-DD format")
	}

	if req.From == "" || req.To == "" {
		meta, mErr := h.service.Meta(r.Context())
		if mErr != nil {
			return from, to, mErr
		}
		if meta.MinDate == "" {
			return from, to, apierrors.New(http.StatusNotFound, "NO_DATA", "The data file contains no rows")
		}
		if req.From == "" {
			req.From = meta.MinDate
		}
		if req.To == "" {
			req.To = meta.MaxDate
		}
	}

	from, _ = time.Parse(breadth.DateFormat, req.From)
	to, _ = time.Parse(breadth.DateFormat, req.To)
	if from.After(to) {
		return from, to, apierrors.ErrValidation("from", "from must not be after to")
	}
	return from, to, nil
}

// parseDate reads and validates the {date} URL parameter
func (h *BreadthHandler) parseDate(r *http.Request) (time.Time, error) {
	raw := chi.URLParam(r, "date")
	if err := h.validate.Var(raw, "required,datetime=2006-01-02"); err != nil {
		return time.Time{}, apierrors.ErrValidation("date", "date must use the YYYY-MM-DD format")
	}
	d, _ := time.Parse(breadth.DateFormat, raw)
	return d, nil
}

// GetMeta handles GET /api/breadth/meta
func (h *BreadthHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Meta(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetTrend handles GET /api/breadth/trend?from=&to=
func (h *BreadthHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	trend, err := h.service.Trend(r.Context(), from, to)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   trend,
		"count":  len(trend.Metrics),
	})
}

// GetDay handles GET /api/breadth/day/{date}?index=
func (h *BreadthHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Day(r.Context(), date, r.URL.Query().Get("index"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
	})
}

// ExportTrend handles GET /api/breadth/export/trend?from=&to=&format=csv|xlsx
func (h *BreadthHandler) ExportTrend(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	trend, err := h.service.Trend(r.Context(), from, to)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("breadth_trend_%s_%s", trend.From, trend.To)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
		if err := exporter.WriteTrendCSV(w, trend.Counts, trend.Metrics); err != nil {
			h.logger.ErrorContext(r.Context(), "trend csv export failed", slog.String("error", err.Error()))
		}
	case "xlsx":
		f, err := exporter.BuildTrendWorkbook(trend.Counts, trend.Metrics)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, filename))
		if _, err := f.WriteTo(w); err != nil {
			h.logger.ErrorContext(r.Context(), "trend xlsx export failed", slog.String("error", err.Error()))
		}
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be csv or xlsx"))
	}
}

// ExportDay handles GET /api/breadth/export/day/{date}?index=&format=csv|xlsx
func (h *BreadthHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Day(r.Context(), date, r.URL.Query().Get("index"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("breadth_day_%s", snap.Date)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
		if err := exporter.WriteDayCSV(w, snap); err != nil {
			h.logger.ErrorContext(r.Context(), "day csv export failed", slog.String("error", err.Error()))
		}
	case "xlsx":
		f, err := exporter.BuildDayWorkbook(snap)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, filename))
		if _, err := f.WriteTo(w); err != nil {
			h.logger.ErrorContext(r.Context(), "day xlsx export failed", slog.String("error", err.Error()))
		}
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be csv or xlsx"))
	}
}
