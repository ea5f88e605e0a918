package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/publish"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// MaxReportSize bounds request bodies.
const MaxReportSize = 4 << 20

// DefaultCacheSize is the number of records kept in the read cache.
const DefaultCacheSize = 1024

// Options configures the handler.
type Options struct {
	Store store.Store

	// APIKeys authorize report uploads. When empty, uploads are open.
	APIKeys []string

	// CacheSize is the capacity of the record cache. Zero selects
	// DefaultCacheSize.
	CacheSize int

	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	Logger *log.Logger
}

type handler struct {
	store   store.Store
	apiKeys [][]byte
	cache   *lru.Cache[string, store.Record]
	logger  *log.Logger
}

// NewHandler builds the HTTP routes.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Store == nil {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "server needs a store")
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, store.Record](size)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeInternal, err, "create record cache")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	h := &handler{store: opts.Store, cache: cache, logger: logger}
	for _, k := range opts.APIKeys {
		h.apiKeys = append(h.apiKeys, []byte(k))
	}
	if len(h.apiKeys) == 0 {
		logger.Warn("no API keys configured; report uploads are not authenticated")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(h.requireAPIKey).Post("/reports", h.createReport)
		r.Get("/reports/{id}", h.getReport)
		r.Get("/artifacts/{coordinate}/reports", h.listReports)
	})
	return r, nil
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := []byte(r.Header.Get(publish.APIKeyHeader))
		if len(key) == 0 {
			writeError(w, aterrors.New(aterrors.ErrCodeUnauthorized, "missing %s header", publish.APIKeyHeader))
			return
		}
		for _, k := range h.apiKeys {
			if subtle.ConstantTimeCompare(key, k) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeError(w, aterrors.New(aterrors.ErrCodeForbidden, "invalid API key"))
	})
}

// receipt is the acknowledgement returned for an upload.
type receipt struct {
	ID         string    `json:"id"`
	Coordinate string    `json:"coordinate"`
	StoredAt   time.Time `json:"storedAt"`
}

func (h *handler) createReport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxReportSize))
	if err != nil {
		writeError(w, aterrors.Wrap(aterrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	rep, err := report.Unmarshal(data)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.store.Save(r.Context(), rep)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Add(rec.ID, rec)
	h.logger.Info("stored report", "id", rec.ID, "coordinate", rec.Coordinate)

	w.Header().Set("Location", "/api/v1/reports/"+rec.ID)
	writeJSON(w, http.StatusCreated, receipt{ID: rec.ID, Coordinate: rec.Coordinate, StoredAt: rec.StoredAt})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if rec, ok := h.cache.Get(id); ok {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cache.Add(rec.ID, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) listReports(w http.ResponseWriter, r *http.Request) {
	coord, err := url.PathUnescape(chi.URLParam(r, "coordinate"))
	if err != nil {
		writeError(w, aterrors.Wrap(aterrors.ErrCodeInvalidInput, err, "invalid coordinate"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, aterrors.New(aterrors.ErrCodeInvalidInput, "invalid limit %q", raw))
			return
		}
	}

	recs, err := h.store.List(r.Context(), coord, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(code aterrors.Code) int {
	switch code {
	case aterrors.ErrCodeInvalidInput, aterrors.ErrCodeInvalidReport, aterrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case aterrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case aterrors.ErrCodeForbidden:
		return http.StatusForbidden
	case aterrors.ErrCodeNotFound, aterrors.ErrCodeReportNotFound:
		return http.StatusNotFound
	case aterrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := aterrors.GetCode(err)
	if code == "" {
		code = aterrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Error: string(code), Message: aterrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
