// Package api serves owner-scoped statistics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	apperrors "github.com/zsy-dream/HabitMaster-pioneer/internal/errors"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

type ownerKey struct{}

type Options struct {
	// Location is used when a request has no tz parameter.
	Location      *time.Location
	DefaultWindow int
	Timeout       time.Duration
	// Now is the reference clock, time.Now when nil.
	Now func() time.Time
}

type Router struct {
	mux  *chi.Mux
	svc  *stats.Service
	opts Options
}

func NewRouter(svc *stats.Service, opts Options) *Router {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultWindow <= 0 {
		opts.DefaultWindow = constants.DefaultHeatmapWindowDays
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.ServerRequestTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Router{mux: chi.NewRouter(), svc: svc, opts: opts}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) setupMiddleware() {
	r.mux.Use(chimiddleware.RequestID)
	r.mux.Use(chimiddleware.Recoverer)
	r.mux.Use(requestLogger)
	r.mux.Use(chimiddleware.Timeout(r.opts.Timeout))
}

func (r *Router) setupRoutes() {
	r.mux.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeSuccess(w, map[string]string{"status": "ok", "version": constants.Version})
	})
	r.mux.Handle("/metrics", promhttp.Handler())

	r.mux.Route("/api/v1/stats", func(sr chi.Router) {
		sr.Use(requireOwner)
		sr.Get("/streak", r.handleStreak)
		sr.Get("/heatmap", r.handleHeatmap)
		sr.Get("/monthly", r.handleMonthly)
		sr.Get("/chart", r.handleChart)
		sr.Get("/summary", r.handleSummary)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		logger.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(req.Context()))
	})
}

// requireOwner rejects requests without an owner header. Authentication is
// expected to happen in front of this server.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		owner := strings.TrimSpace(req.Header.Get(constants.OwnerHeader))
		if owner == "" {
			writeError(w, req, http.StatusUnauthorized, ErrorCodeUnauthorized, constants.OwnerHeader+" header is required")
			return
		}
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), ownerKey{}, owner)))
	})
}

func (r *Router) scope(req *http.Request) (stats.Scope, error) {
	loc := r.opts.Location
	if tz := req.URL.Query().Get("tz"); tz != "" {
		l, err := utils.LoadLocation(tz)
		if err != nil {
			return stats.Scope{}, fmt.Errorf("invalid tz %q", tz)
		}
		loc = l
	}
	owner, _ := req.Context().Value(ownerKey{}).(string)
	return stats.Scope{OwnerID: owner, Now: r.opts.Now(), Location: loc}, nil
}

func (r *Router) window(req *http.Request) (int, error) {
	raw := req.URL.Query().Get("window")
	if raw == "" {
		return r.opts.DefaultWindow, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > constants.MaxHeatmapWindowDays {
		return 0, fmt.Errorf("window must be an integer between 0 and %d", constants.MaxHeatmapWindowDays)
	}
	return n, nil
}

func period(req *http.Request) (stats.Period, error) {
	raw := req.URL.Query().Get("period")
	if raw == "" {
		return stats.PeriodWeek, nil
	}
	return stats.ParsePeriod(raw)
}

// fail maps aggregation errors onto HTTP statuses.
func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrMissingOwner):
		writeError(w, req, http.StatusUnauthorized, ErrorCodeUnauthorized, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, req, http.StatusGatewayTimeout, ErrorCodeTimeout, "statistics query timed out")
	case apperrors.IsQueryError(err):
		writeError(w, req, http.StatusBadGateway, ErrorCodeQueryFailed, err.Error())
	default:
		logger.Error("Unhandled stats error", "path", req.URL.Path, "error", err)
		writeError(w, req, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
	}
}

func (r *Router) handleStreak(w http.ResponseWriter, req *http.Request) {
	sc, err := r.scope(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	streak, err := r.svc.Streak(req.Context(), sc)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeSuccess(w, streak)
}

func (r *Router) handleHeatmap(w http.ResponseWriter, req *http.Request) {
	sc, err := r.scope(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	window, err := r.window(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	cells, err := r.svc.Heatmap(req.Context(), sc, window)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeSuccess(w, cells)
}

func (r *Router) handleMonthly(w http.ResponseWriter, req *http.Request) {
	sc, err := r.scope(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	rate, err := r.svc.Monthly(req.Context(), sc)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeSuccess(w, rate)
}

// handleChart returns the zero template when no sessions fall in the period.
func (r *Router) handleChart(w http.ResponseWriter, req *http.Request) {
	sc, err := r.scope(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	p, err := period(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	points, err := r.svc.Chart(req.Context(), sc, p)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	points, err = stats.WithDefaultTemplate(points, p)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeSuccess(w, points)
}

func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) {
	sc, err := r.scope(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	window, err := r.window(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	p, err := period(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	sum, err := r.svc.Summary(req.Context(), sc, window, p)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeSuccess(w, sum)
}
