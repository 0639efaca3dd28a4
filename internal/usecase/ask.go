package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"support-agent/internal/domain"
)

const defaultMaxQuestion = 1000

// Answerer produces a final answer for a question. It never fails.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

type InteractionStore interface {
	SaveInteraction(ctx context.Context, question, answer string) (domain.Interaction, error)
	GetInteraction(ctx context.Context, id string) (domain.Interaction, error)
}

type AskService struct {
	answerer       Answerer
	store          InteractionStore
	maxQuestionLen int
	logger         *slog.Logger
}

type AskInput struct {
	Question string
}

type AskOutput struct {
	Answer        string
	InteractionID string
}

func NewAskService(answerer Answerer, store InteractionStore, maxQuestionLen int, logger *slog.Logger) (*AskService, error) {
	if answerer == nil {
		return nil, errors.New("usecase: answerer must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: interaction store must not be nil")
	}
	if maxQuestionLen <= 0 {
		maxQuestionLen = defaultMaxQuestion
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AskService{
		answerer:       answerer,
		store:          store,
		maxQuestionLen: maxQuestionLen,
		logger:         logger,
	}, nil
}

// Ask validates the question, answers it and records the pair. Only validation
// and cancellation are reported as errors; a failed write still returns the answer.
func (s *AskService) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return AskOutput{}, newError(ErrorInvalidInput, "empty_question", nil)
	}
	if utf8.RuneCountInString(question) > s.maxQuestionLen {
		return AskOutput{}, newError(ErrorInvalidInput, "question_too_long", nil)
	}

	answer := s.answerer.Answer(ctx, question)

	// nothing is persisted for an abandoned request
	if err := ctx.Err(); err != nil {
		return AskOutput{}, newError(ErrorInternal, "request_cancelled", err)
	}

	rec, err := s.store.SaveInteraction(ctx, question, answer)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist interaction", "question", question, "err", err)
		return AskOutput{Answer: answer}, nil
	}

	return AskOutput{
		Answer:        answer,
		InteractionID: rec.ID,
	}, nil
}

// GetInteraction returns a previously recorded question/answer pair.
func (s *AskService) GetInteraction(ctx context.Context, id string) (domain.Interaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Interaction{}, newError(ErrorInvalidInput, "empty_id", nil)
	}
	rec, err := s.store.GetInteraction(ctx, id)
	if errors.Is(err, domain.ErrInteractionNotFound) {
		return domain.Interaction{}, newError(ErrorNotFound, "interaction_not_found", err)
	}
	if err != nil {
		return domain.Interaction{}, newError(ErrorInternal, "interaction_lookup_error", err)
	}
	return rec, nil
}
