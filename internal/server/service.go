package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/semaphore"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

const maxURLLength = 2048

// Runner executes one extraction run.
type Runner interface {
	Run(ctx context.Context, sourceURL string, kind constants.DocType) entity.Outcome
}

type Config struct {
	MaxInFlight    int64
	ExtractTimeout time.Duration // 0 means no deadline
	MaxBodyBytes   int64
	RateLimitEvery time.Duration // 0 disables
	RateLimitBurst int
}

// ExtractService serves the extraction HTTP API.
type ExtractService struct {
	runner   Runner
	cfg      Config
	inFlight *semaphore.Weighted
	limiters *clientLimiters // nil when rate limiting is off
	logger   *slog.Logger
}

func NewExtractService(runner Runner, cfg Config, logger *slog.Logger) *ExtractService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 8
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}
	s := &ExtractService{
		runner:   runner,
		cfg:      cfg,
		inFlight: semaphore.NewWeighted(cfg.MaxInFlight),
		logger:   logger,
	}
	if cfg.RateLimitEvery > 0 {
		s.limiters = newClientLimiters(cfg.RateLimitEvery, cfg.RateLimitBurst)
	}
	return s
}

// Handler returns the routed API with its middleware chain applied.
func (s *ExtractService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/extract-data", s.withRateLimit(s.withConcurrencyLimit(s.handleExtract)))

	return cors.AllowAll().Handler(s.withRequestContext(s.withRecovery(mux)))
}

func (s *ExtractService) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *ExtractService) handleExtract(w http.ResponseWriter, r *http.Request) {
	log := common.LoggerFromContext(r.Context(), s.logger)

	var req ExtractRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		log.Warn("extract.request.malformed", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "request body must be a JSON object"})
		return
	}

	if err := validateExtractRequest(&req); err != nil {
		log.Warn("extract.request.invalid", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
		return
	}

	ctx, cancel := common.WithOptionalTimeout(r.Context(), s.cfg.ExtractTimeout)
	defer cancel()

	kind, _ := constants.ParseDocType(req.DocType)
	log.Info("extract.start", "doc_type", kind, "url", redactURL(req.URL))

	out := s.runner.Run(ctx, req.URL, kind)
	writeJSON(w, http.StatusOK, ToResponse(out))
}

func validateExtractRequest(req *ExtractRequest) error {
	req.URL = strings.TrimSpace(req.URL)
	req.DocType = strings.ToLower(strings.TrimSpace(req.DocType))

	v := common.NewValidator()
	v.Field("url", req.URL, common.Required, common.MaxLength(maxURLLength))
	if req.URL != "" {
		v.Field("url", req.URL, common.AbsoluteHTTPURL)
	}
	v.Field("doc_type", req.DocType, common.Required)
	if req.DocType != "" {
		v.Field("doc_type", req.DocType, common.OneOf(constants.DocTypesAsStrings()...))
	}
	return v.Error()
}

// redactURL drops the query string, which often carries presigned credentials.
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------- Middleware ----------

func (s *ExtractService) withConcurrencyLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.inFlight.Acquire(r.Context(), 1); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Detail: "service at capacity"})
			return
		}
		defer s.inFlight.Release(1)
		next(w, r)
	}
}

func (s *ExtractService) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiters == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.allow(clientIP(r)) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(s.cfg.RateLimitEvery)))
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Detail: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

func (s *ExtractService) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)

		log := s.logger.With("req_id", reqID)
		ctx := common.WithRequestID(r.Context(), reqID)
		ctx = common.WithLogger(ctx, log)

		start := time.Now()
		ww := &wrapWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *ExtractService) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				common.LoggerFromContext(r.Context(), s.logger).Error("http.panic", "panic", rec)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type wrapWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrapWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
