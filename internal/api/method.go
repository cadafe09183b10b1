package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scoring-api/internal/apierr"
	"scoring-api/internal/fields"
	"scoring-api/internal/metrics"
	"scoring-api/internal/scoring"
)

// Service — бизнес-операции, которые вызывает диспетчер.
type Service interface {
	Score(ctx context.Context, p scoring.Profile, isAdmin bool) float64
	Interests(ctx context.Context, ids []int64) (map[int64][]string, int, error)
}

// MethodHandler — диспетчер запросов к /method.
//
// Проверки идут в строгом порядке, и первая же терминальная ошибка
// возвращается как есть:
//
//  1. пустое тело                                   -> 422
//  2. account, login, token                         -> 400 (нет поля) / 422 (невалидно)
//  3. авторизация                                   -> 403
//  4. arguments, method                             -> 400 / 422
//  5. аргументы метода, правило пар, бизнес-операция
//
// Невалидные аргументы скоринга не прерывают проверку: собираются все,
// и клиент получает полный список за один запрос.
type MethodHandler struct {
	svc     Service
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// MethodOption настраивает MethodHandler.
type MethodOption func(*MethodHandler)

// WithClock подменяет часы (нужно для административного токена и
// ограничения по возрасту).
func WithClock(now func() time.Time) MethodOption {
	return func(h *MethodHandler) {
		h.now = now
	}
}

// NewMethodHandler создаёт диспетчер. m может быть nil.
func NewMethodHandler(svc Service, log *slog.Logger, m *metrics.Metrics, opts ...MethodOption) *MethodHandler {
	h := &MethodHandler{svc: svc, log: log, metrics: m, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle обрабатывает тело запроса и возвращает полезную нагрузку ответа
// либо *apierr.Error.
func (h *MethodHandler) Handle(ctx context.Context, body map[string]any, rc *RequestContext) (any, error) {
	if len(body) == 0 {
		h.log.InfoContext(ctx, "empty request body", "request_id", rc.RequestID)
		return nil, apierr.New(apierr.CodeValidation, "")
	}

	req := &MethodRequest{}
	if err := h.assignEnvelope(ctx, rc, credentialsSchema, body, req); err != nil {
		return nil, err
	}

	if !CheckAuth(req, h.now()) {
		h.log.InfoContext(ctx, "authentication failed", "request_id", rc.RequestID)
		if h.metrics != nil {
			h.metrics.AuthFailures.Inc()
		}
		return nil, apierr.New(apierr.CodeForbidden, "")
	}

	if err := h.assignEnvelope(ctx, rc, callSchema, body, req); err != nil {
		return nil, err
	}

	// rc.Method идёт в метки метрик: только известные имена.
	switch req.Method {
	case MethodOnlineScore:
		rc.Method = MethodOnlineScore
		return h.onlineScore(ctx, rc, req)
	case MethodClientsInterests:
		rc.Method = MethodClientsInterests
		return h.clientsInterests(ctx, rc, req)
	default:
		h.log.InfoContext(ctx, "unknown method", "request_id", rc.RequestID, "method", req.Method)
		return nil, apierr.New(apierr.CodeValidation, "Unknown Method")
	}
}

// assignEnvelope проверяет поля конверта; на первой ошибке выходит.
func (h *MethodHandler) assignEnvelope(ctx context.Context, rc *RequestContext, schema fields.Schema, body map[string]any, req *MethodRequest) error {
	for _, f := range schema {
		out := fields.Assign(f, body, h.now())
		switch out.Status {
		case fields.Missing:
			h.log.InfoContext(ctx, "required field is missing", "request_id", rc.RequestID, "field", f.Name)
			return apierr.New(apierr.CodeBadRequest, "")
		case fields.Invalid:
			h.log.InfoContext(ctx, "invalid field", "request_id", rc.RequestID, "field", f.Name, "reason", out.Reason)
			return apierr.New(apierr.CodeValidation, "")
		case fields.Valid:
			req.set(f.Name, out.Value)
		}
	}
	return nil
}

func (h *MethodHandler) onlineScore(ctx context.Context, rc *RequestContext, req *MethodRequest) (any, error) {
	if len(req.Arguments) == 0 {
		h.log.InfoContext(ctx, "empty arguments", "request_id", rc.RequestID)
		return nil, apierr.New(apierr.CodeValidation, "")
	}

	h.logUnknownArguments(ctx, rc, onlineScoreSchema, req.Arguments)

	var (
		args    OnlineScoreRequest
		invalid []string
	)
	for _, f := range onlineScoreSchema {
		out := fields.Assign(f, req.Arguments, h.now())
		switch out.Status {
		case fields.Missing:
			h.log.InfoContext(ctx, "required field is missing", "request_id", rc.RequestID, "field", f.Name)
			return nil, apierr.New(apierr.CodeBadRequest, "")
		case fields.Invalid:
			h.log.InfoContext(ctx, "invalid field", "request_id", rc.RequestID, "field", f.Name, "reason", out.Reason)
			invalid = append(invalid, f.Name)
		case fields.Valid:
			args.set(f.Name, out.Value)
			rc.Has = append(rc.Has, f.Name)
		}
	}

	if !PairOK(rc.Has) {
		h.log.InfoContext(ctx, "request does not satisfy pair policy", "request_id", rc.RequestID, "has", rc.Has)
		return nil, apierr.New(apierr.CodeValidation, "")
	}
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	score := h.svc.Score(ctx, args.Profile(), req.IsAdmin())
	return ScoreResponse{Score: score}, nil
}

func (h *MethodHandler) clientsInterests(ctx context.Context, rc *RequestContext, req *MethodRequest) (any, error) {
	if len(req.Arguments) == 0 {
		h.log.InfoContext(ctx, "empty arguments", "request_id", rc.RequestID)
		return nil, apierr.New(apierr.CodeValidation, "")
	}

	h.logUnknownArguments(ctx, rc, clientsInterestsSchema, req.Arguments)

	var (
		args    ClientsInterestsRequest
		invalid []string
	)
	for _, f := range clientsInterestsSchema {
		out := fields.Assign(f, req.Arguments, h.now())
		switch {
		case f.Name == "client_ids" && (out.Status == fields.Missing || out.Status == fields.Invalid):
			// Без списка клиентов продолжать нечего.
			h.log.InfoContext(ctx, "bad client_ids", "request_id", rc.RequestID, "status", out.Status, "reason", out.Reason)
			return nil, apierr.New(apierr.CodeValidation, "")
		case out.Status == fields.Missing:
			return nil, apierr.New(apierr.CodeBadRequest, "")
		case out.Status == fields.Invalid:
			h.log.InfoContext(ctx, "invalid field", "request_id", rc.RequestID, "field", f.Name, "reason", out.Reason)
			invalid = append(invalid, f.Name)
		case out.Status == fields.Valid:
			args.set(f.Name, out.Value)
		}
	}
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	interests, resolved, err := h.svc.Interests(ctx, args.ClientIDs)
	rc.NClients = resolved
	if err != nil {
		h.log.ErrorContext(ctx, "interests lookup failed", "request_id", rc.RequestID, "error", err)
		return nil, apierr.Wrap(err, apierr.CodeInternal)
	}
	return interests, nil
}

// logUnknownArguments: лишние аргументы не ошибка, но в логе их видно.
func (h *MethodHandler) logUnknownArguments(ctx context.Context, rc *RequestContext, schema fields.Schema, args map[string]any) {
	for name := range args {
		if _, ok := schema.Lookup(name); !ok {
			h.log.DebugContext(ctx, "unknown argument ignored",
				"request_id", rc.RequestID,
				"argument", name,
				"expected", schema.Names(),
			)
		}
	}
}

func invalidFields(names []string) error {
	return apierr.New(apierr.CodeValidation,
		fmt.Sprintf("The following field(s) are invalid: %s", strings.Join(names, ",")))
}
