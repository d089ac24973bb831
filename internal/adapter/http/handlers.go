package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
	"github.com/couchcryptid/school-accident-trends/internal/observability"
	"github.com/couchcryptid/school-accident-trends/internal/query"
)

type handlers struct {
	svc      QueryService
	logger   *slog.Logger
	metrics  *observability.Metrics
	validate *validator.Validate
}

type filterRequest struct {
	Dimension  string `json:"dimension" validate:"required"`
	Region     string `json:"region" validate:"required"`
	Weekday    string `json:"weekday" validate:"required,oneof=월 화 수 목 금 토 일"`
	HourStart  *int   `json:"hour_start" validate:"required,min=0,max=24"`
	HourEnd    *int   `json:"hour_end" validate:"required,min=0,max=24"`
	TargetYear *int   `json:"target_year" validate:"omitempty,min=1900,max=2100"`
}

func (f filterRequest) query() query.Query {
	q := query.Query{
		Dimension: f.Dimension,
		Region:    f.Region,
		Weekday:   f.Weekday,
		HourStart: *f.HourStart,
		HourEnd:   *f.HourEnd,
	}
	if f.TargetYear != nil {
		q.TargetYear = *f.TargetYear
	}
	return q
}

type gridRequest struct {
	Dimension  string `json:"dimension" validate:"required"`
	Region     string `json:"region" validate:"required"`
	Weekday    string `json:"weekday" validate:"required,oneof=월 화 수 목 금 토 일"`
	FromHour   *int   `json:"from_hour" validate:"omitempty,min=0,max=23"`
	ToHour     *int   `json:"to_hour" validate:"omitempty,min=1,max=24"`
	TargetYear *int   `json:"target_year" validate:"omitempty,min=1900,max=2100"`
}

type weekdaysRequest struct {
	Dimension string `json:"dimension" validate:"required"`
	Region    string `json:"region" validate:"required"`
	HourStart *int   `json:"hour_start" validate:"required,min=0,max=24"`
	HourEnd   *int   `json:"hour_end" validate:"required,min=0,max=24"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *handlers) catalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.svc.Catalog())
}

func (h *handlers) tabulate(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.decode(w, r, "tabulate", &req) {
		return
	}
	if !h.checkRange(w, r, "tabulate", *req.HourStart, *req.HourEnd) {
		return
	}
	res, err := h.svc.Tabulate(r.Context(), req.query())
	h.respond(w, r, "tabulate", res, err)
}

func (h *handlers) project(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.decode(w, r, "project", &req) {
		return
	}
	if !h.checkRange(w, r, "project", *req.HourStart, *req.HourEnd) {
		return
	}
	res, err := h.svc.Project(r.Context(), req.query())
	h.respond(w, r, "project", res, err)
}

func (h *handlers) grid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if !h.decode(w, r, "grid", &req) {
		return
	}

	q := query.GridQuery{Dimension: req.Dimension, Region: req.Region, Weekday: req.Weekday}
	q.FromHour, q.ToHour = h.svc.Window()
	if req.FromHour != nil {
		q.FromHour = *req.FromHour
	}
	if req.ToHour != nil {
		q.ToHour = *req.ToHour
	}
	if req.TargetYear != nil {
		q.TargetYear = *req.TargetYear
	}
	if q.FromHour >= q.ToHour {
		h.reject(w, r, "grid", fmt.Errorf("from_hour %d must be before to_hour %d", q.FromHour, q.ToHour))
		return
	}

	res, err := h.svc.Grid(r.Context(), q)
	h.respond(w, r, "grid", res, err)
}

func (h *handlers) weekdays(w http.ResponseWriter, r *http.Request) {
	var req weekdaysRequest
	if !h.decode(w, r, "weekdays", &req) {
		return
	}
	if !h.checkRange(w, r, "weekdays", *req.HourStart, *req.HourEnd) {
		return
	}
	res, err := h.svc.Weekdays(r.Context(), query.WeekdayQuery{
		Dimension: req.Dimension,
		Region:    req.Region,
		HourStart: *req.HourStart,
		HourEnd:   *req.HourEnd,
	})
	h.respond(w, r, "weekdays", res, err)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, endpoint string, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.reject(w, r, endpoint, fmt.Errorf("decode request: %w", err))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.reject(w, r, endpoint, validationError(err))
		return false
	}
	return true
}

// checkRange rejects an inverted hour range. An empty range is allowed.
func (h *handlers) checkRange(w http.ResponseWriter, r *http.Request, endpoint string, start, end int) bool {
	if end < start {
		h.reject(w, r, endpoint, fmt.Errorf("hour_end %d is before hour_start %d", end, start))
		return false
	}
	return true
}

func (h *handlers) respond(w http.ResponseWriter, r *http.Request, endpoint string, v any, err error) {
	switch {
	case err == nil:
		render.JSON(w, r, v)
	case errors.Is(err, domain.ErrUnknownDimension):
		h.reject(w, r, endpoint, err)
	default:
		h.logger.ErrorContext(r.Context(), "query failed",
			"endpoint", endpoint,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		writeError(w, r, http.StatusInternalServerError, "query failed")
	}
}

func (h *handlers) reject(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	h.metrics.InvalidRequests.WithLabelValues(endpoint).Inc()
	writeError(w, r, http.StatusBadRequest, err.Error())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return errors.New("invalid request: " + strings.Join(msgs, ", "))
}
