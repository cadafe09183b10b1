// Package api — HTTP-слой и диспетчер методов сервиса скоринга.
//
// Здесь лежит всё, что относится к запросу: схемы полей, авторизация,
// правило пар, диспетчер (MethodHandler) и HTTP-обработчик, который
// разбирает JSON, вызывает диспетчер и пишет ответ в едином формате:
//
//	{"response": ..., "code": 200}
//	{"error": "...", "code": 4xx/5xx}
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scoring-api/internal/apierr"
	appMiddleware "scoring-api/internal/middleware"
	"scoring-api/internal/metrics"
)

// Pinger проверяет доступность хранилища для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler — HTTP-слой сервиса.
type Handler struct {
	methods *MethodHandler
	store   Pinger
	log     *slog.Logger
	metrics *metrics.Metrics

	requestTimeout time.Duration
	maxBodyBytes   int64
}

// HandlerConfig — параметры HTTP-слоя.
type HandlerConfig struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewHandler создаёт Handler. m может быть nil.
func NewHandler(methods *MethodHandler, store Pinger, log *slog.Logger, m *metrics.Metrics, cfg HandlerConfig) *Handler {
	return &Handler{
		methods:        methods,
		store:          store,
		log:            log,
		metrics:        m,
		requestTimeout: cfg.RequestTimeout,
		maxBodyBytes:   cfg.MaxBodyBytes,
	}
}

type successResponse struct {
	Response any `json:"response"`
	Code     int `json:"code"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Router собирает HTTP-роутер сервиса.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/healthz", h.healthz)

	r.Group(func(r chi.Router) {
		if h.maxBodyBytes > 0 {
			r.Use(appMiddleware.BodyLimitMiddleware(h.maxBodyBytes))
		}
		if h.requestTimeout > 0 {
			r.Use(appMiddleware.RequestTimeoutMiddleware(h.requestTimeout))
		}
		r.Post("/method", h.serveMethod)
		r.Post("/method/", h.serveMethod)
	})
	return r
}

// serveMethod обрабатывает POST /method.
func (h *Handler) serveMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	rc := &RequestContext{RequestID: appMiddleware.RequestIDFromContext(ctx)}
	if rc.RequestID == "" {
		rc.RequestID = appMiddleware.NewRequestID()
	}

	var (
		payload any
		err     error
	)
	body, decodeErr := decodeBody(r)
	if decodeErr != nil {
		h.log.InfoContext(ctx, "cannot decode request body", "request_id", rc.RequestID, "error", decodeErr)
		err = apierr.New(apierr.CodeValidation, "")
	} else {
		payload, err = h.dispatch(ctx, body, rc)
	}

	if h.handleContextError(ctx, rc, err) {
		return
	}

	code := h.writeResult(w, payload, err)

	h.log.InfoContext(ctx, "request processed",
		"request_id", rc.RequestID,
		"method", rc.Method,
		"code", code,
		"has", rc.Has,
		"nclients", rc.NClients,
	)
	if h.metrics != nil {
		h.metrics.ObserveRequest(rc.Method, code, time.Since(start).Seconds())
	}
}

// dispatch вызывает диспетчер и превращает панику в 500.
func (h *Handler) dispatch(ctx context.Context, body map[string]any, rc *RequestContext) (payload any, err error) {
	defer func() {
		if p := recover(); p != nil {
			h.log.ErrorContext(ctx, "unexpected error", "request_id", rc.RequestID, "panic", p)
			payload, err = nil, apierr.Wrap(fmt.Errorf("panic: %v", p), apierr.CodeInternal)
		}
	}()
	return h.methods.Handle(ctx, body, rc)
}

// writeResult пишет ответ и возвращает отправленный код.
func (h *Handler) writeResult(w http.ResponseWriter, payload any, err error) int {
	if err == nil {
		writeJSON(w, http.StatusOK, successResponse{Response: payload, Code: http.StatusOK})
		return http.StatusOK
	}

	status := apierr.Status(err)
	if status == http.StatusInternalServerError && !apierr.HasCode(err, apierr.CodeInternal) {
		// Диспетчер всё оборачивает в *apierr.Error; сюда попадает только чужое.
		h.log.Error("unclassified error", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: apierr.Message(err), Code: status})
	return status
}

// handleContextError: клиент ушёл, отвечать уже некому.
func (h *Handler) handleContextError(ctx context.Context, rc *RequestContext, err error) bool {
	if err == nil || !errors.Is(err, context.Canceled) || ctx.Err() == nil {
		return false
	}
	h.log.InfoContext(ctx, "request canceled", "request_id", rc.RequestID)
	return true
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.WarnContext(r.Context(), "store ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error: apierr.StatusText(http.StatusNotFound),
		Code:  http.StatusNotFound,
	})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Error: apierr.StatusText(http.StatusMethodNotAllowed),
		Code:  http.StatusMethodNotAllowed,
	})
}

// decodeBody разбирает тело как JSON-объект. Числа остаются json.Number,
// чтобы отличать целые от дробных.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	body, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("request body is not a JSON object")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// После WriteHeader статус уже не поменять, поэтому ошибку кодирования игнорируем.
	_ = json.NewEncoder(w).Encode(v)
}
