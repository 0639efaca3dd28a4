package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"support-agent/internal/domain"
	"support-agent/internal/usecase"
)

func TestRouter_Health(t *testing.T) {
	r := NewRouter(mustNewHandler(t, &stubUseCase{}), 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}

func TestRouter_Question(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Answer: "Temos sim!", InteractionID: "int-7"}}
	r := NewRouter(mustNewHandler(t, uc), 0)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/question", strings.NewReader(`{"question":"Tem borne?"}`))
	req.Header.Set("X-Correlation-Id", "corr-9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "corr-9", rec.Header().Get("X-Correlation-Id"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	out := parseBody[askResponse](t, rec.Body.String())
	require.Equal(t, "int-7", out.InteractionID)
	require.Equal(t, "Tem borne?", uc.in.Question)
}

func TestRouter_QuestionInvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	r := NewRouter(mustNewHandler(t, uc), 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/question", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Correlation-Id"))
	require.Zero(t, uc.askCalls)
}

func TestRouter_Interaction(t *testing.T) {
	uc := &stubUseCase{rec: domain.Interaction{ID: "abc", Question: "q", Answer: "a"}}
	r := NewRouter(mustNewHandler(t, uc), 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/interactions/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "abc", uc.getID)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := NewRouter(mustNewHandler(t, &stubUseCase{}), 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/question", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
