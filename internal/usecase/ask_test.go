package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-agent/internal/domain"
	"support-agent/internal/integrations/openai"
)

type fixedAnswerer struct {
	answer string
	calls  int
	cancel context.CancelFunc
}

func (f *fixedAnswerer) Answer(_ context.Context, _ string) string {
	f.calls++
	if f.cancel != nil {
		f.cancel()
	}
	return f.answer
}

func mustNewAskService(t *testing.T, a Answerer, store InteractionStore) *AskService {
	t.Helper()
	svc, err := NewAskService(a, store, 0, discardLogger())
	require.NoError(t, err)
	return svc
}

func TestNewAskService_Validation(t *testing.T) {
	_, err := NewAskService(nil, &mockStore{}, 0, nil)
	require.Error(t, err)
	_, err = NewAskService(&fixedAnswerer{}, nil, 0, nil)
	require.Error(t, err)

	svc, err := NewAskService(&fixedAnswerer{}, &mockStore{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, defaultMaxQuestion, svc.maxQuestionLen)
}

func TestAsk_HappyPath(t *testing.T) {
	a := &fixedAnswerer{answer: "Entregamos em todo o Brasil."}
	store := &mockStore{}
	svc := mustNewAskService(t, a, store)

	out, err := svc.Ask(context.Background(), AskInput{Question: "  Vocês entregam no Brasil todo?  "})
	require.NoError(t, err)
	require.Equal(t, "Entregamos em todo o Brasil.", out.Answer)
	require.Equal(t, "rec-1", out.InteractionID)
	require.Len(t, store.saved, 1)
	require.Equal(t, "Vocês entregam no Brasil todo?", store.saved[0].Question)
}

func TestAsk_InvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		question string
		reason   string
	}{
		{name: "empty", question: "", reason: "empty_question"},
		{name: "whitespace", question: " \n\t ", reason: "empty_question"},
		{name: "too long", question: strings.Repeat("ç", defaultMaxQuestion+1), reason: "question_too_long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &fixedAnswerer{answer: "x"}
			store := &mockStore{}
			svc := mustNewAskService(t, a, store)

			_, err := svc.Ask(context.Background(), AskInput{Question: tc.question})
			var ucErr *Error
			require.ErrorAs(t, err, &ucErr)
			require.Equal(t, ErrorInvalidInput, ucErr.Code)
			require.Equal(t, tc.reason, ucErr.Reason)
			require.Zero(t, a.calls)
			require.Empty(t, store.saved)
		})
	}
}

func TestAsk_MaxLengthCountsRunes(t *testing.T) {
	svc := mustNewAskService(t, &fixedAnswerer{answer: "ok"}, &mockStore{})
	_, err := svc.Ask(context.Background(), AskInput{Question: strings.Repeat("ã", defaultMaxQuestion)})
	require.NoError(t, err)
}

func TestAsk_StoreFailureStillAnswers(t *testing.T) {
	svc := mustNewAskService(t, &fixedAnswerer{answer: "Resposta"}, &mockStore{saveErr: errBoom})

	out, err := svc.Ask(context.Background(), AskInput{Question: "oi"})
	require.NoError(t, err)
	require.Equal(t, "Resposta", out.Answer)
	require.Empty(t, out.InteractionID)
}

func TestAsk_CancelledRequestIsNotPersisted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &mockStore{}
	svc := mustNewAskService(t, &fixedAnswerer{answer: "late", cancel: cancel}, store)

	_, err := svc.Ask(ctx, AskInput{Question: "oi"})
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorInternal, ucErr.Code)
	require.Equal(t, "request_cancelled", ucErr.Reason)
	require.Empty(t, store.saved)
}

// A 500 from the completion endpoint still yields an answer and a stored record.
func TestAsk_CompletionFailurePersistsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	client, err := openai.NewClient("sk-test", openai.WithBaseURL(srv.URL), openai.WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	require.NoError(t, err)

	h := newHarness(t, nil, &mockLLM{})
	h.assistant.llm = client
	store := &mockStore{}
	svc := mustNewAskService(t, h.assistant, store)

	out, err := svc.Ask(context.Background(), AskInput{Question: "qual o prazo de entrega?"})
	require.NoError(t, err)
	require.Equal(t, FallbackAnswer(testStore()), out.Answer)
	require.Len(t, store.saved, 1)
	require.NotEmpty(t, store.saved[0].Answer)
	require.Equal(t, out.InteractionID, store.saved[0].ID)
}

func TestGetInteraction(t *testing.T) {
	rec := domain.Interaction{ID: "abc", Question: "q", Answer: "a"}

	svc := mustNewAskService(t, &fixedAnswerer{}, &mockStore{getOut: rec})
	got, err := svc.GetInteraction(context.Background(), " abc ")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	var ucErr *Error
	svc = mustNewAskService(t, &fixedAnswerer{}, &mockStore{getErr: domain.ErrInteractionNotFound})
	_, err = svc.GetInteraction(context.Background(), "missing")
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorNotFound, ucErr.Code)

	svc = mustNewAskService(t, &fixedAnswerer{}, &mockStore{getErr: errBoom})
	_, err = svc.GetInteraction(context.Background(), "abc")
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorInternal, ucErr.Code)

	store := &mockStore{}
	svc = mustNewAskService(t, &fixedAnswerer{}, store)
	_, err = svc.GetInteraction(context.Background(), " ")
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorInvalidInput, ucErr.Code)
	require.Zero(t, store.getCalls)
}
