package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"support-agent/internal/domain"
	"support-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	questionPath      = "/api/chat/question"
	interactionsPath  = "/api/chat/interactions/"
)

// UseCase is the application surface exposed over HTTP.
type UseCase interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
	GetInteraction(ctx context.Context, id string) (domain.Interaction, error)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer        string `json:"answer"`
	InteractionID string `json:"interactionId"`
}

type interactionResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// result is a transport-neutral response, rendered by the Lambda and chi adapters.
type result struct {
	status int
	body   any
}

type Handler struct {
	uc     UseCase
	logger *slog.Logger
}

func NewHandler(uc UseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

// Handle serves API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := h.logger.With("correlation_id", corrID)

	var res result
	switch {
	case event.HTTPMethod == http.MethodPost && strings.TrimRight(event.Path, "/") == questionPath:
		body := event.Body
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				res = invalidQuestion()
				break
			}
			body = string(decoded)
		}
		res = h.ask(ctx, logger, []byte(body))
	case event.HTTPMethod == http.MethodGet && strings.HasPrefix(event.Path, interactionsPath):
		id := event.PathParameters["id"]
		if id == "" {
			id = strings.TrimPrefix(event.Path, interactionsPath)
		}
		res = h.interaction(ctx, logger, id)
	default:
		res = result{status: http.StatusNotFound, body: errorResponse{Error: "Rota não encontrada.", Code: string(usecase.ErrorNotFound)}}
	}

	raw, err := json.Marshal(res.body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "err", err)
		raw = []byte(`{"error":"Erro interno.","code":"INTERNAL_ERROR"}`)
		res.status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: res.status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(raw),
	}, nil
}

func (h *Handler) ask(ctx context.Context, logger *slog.Logger, body []byte) result {
	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "err", err)
		return invalidQuestion()
	}

	out, err := h.uc.Ask(ctx, usecase.AskInput{Question: req.Question})
	if err != nil {
		return h.errorResult(ctx, logger, err)
	}
	logger.InfoContext(ctx, "question handled", "interaction_id", out.InteractionID)
	return result{status: http.StatusOK, body: askResponse{Answer: out.Answer, InteractionID: out.InteractionID}}
}

func (h *Handler) interaction(ctx context.Context, logger *slog.Logger, id string) result {
	rec, err := h.uc.GetInteraction(ctx, id)
	if err != nil {
		return h.errorResult(ctx, logger, err)
	}
	return result{status: http.StatusOK, body: interactionResponse{
		ID:        rec.ID,
		Question:  rec.Question,
		Answer:    rec.Answer,
		CreatedAt: rec.CreatedAt,
	}}
}

func (h *Handler) errorResult(ctx context.Context, logger *slog.Logger, err error) result {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		logger.ErrorContext(ctx, "unexpected error", "err", err)
		return result{status: http.StatusInternalServerError, body: errorResponse{Error: "Erro interno.", Code: string(usecase.ErrorInternal)}}
	}

	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		logger.InfoContext(ctx, "rejected request", "reason", ucErr.Reason)
		msg := "Pergunta não pode estar vazia."
		switch ucErr.Reason {
		case "question_too_long":
			msg = "Pergunta muito longa."
		case "empty_id":
			msg = "Identificador não pode estar vazio."
		}
		return result{status: http.StatusBadRequest, body: errorResponse{Error: msg, Code: string(ucErr.Code)}}
	case usecase.ErrorNotFound:
		return result{status: http.StatusNotFound, body: errorResponse{Error: "Interação não encontrada.", Code: string(ucErr.Code)}}
	default:
		logger.ErrorContext(ctx, "request failed", "code", string(ucErr.Code), "reason", ucErr.Reason, "err", ucErr.Err)
		return result{status: http.StatusInternalServerError, body: errorResponse{Error: "Erro interno.", Code: string(usecase.ErrorInternal)}}
	}
}

func invalidQuestion() result {
	return result{status: http.StatusBadRequest, body: errorResponse{Error: "Pergunta não pode estar vazia.", Code: string(usecase.ErrorInvalidInput)}}
}

// correlationID reuses the caller's X-Correlation-Id (any header case) or mints one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
