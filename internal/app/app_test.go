package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"support-agent/internal/config"
	"support-agent/internal/domain"
)

type memStore struct{ saved []domain.Interaction }

func (m *memStore) SaveInteraction(_ context.Context, q, a string) (domain.Interaction, error) {
	rec := domain.Interaction{ID: "mem-1", Question: q, Answer: a}
	m.saved = append(m.saved, rec)
	return rec, nil
}

func (m *memStore) GetInteraction(_ context.Context, _ string) (domain.Interaction, error) {
	return m.saved[0], nil
}

func TestStoreInfo_FeaturedLinks(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	info, err := StoreInfo(cfg.Store)
	require.NoError(t, err)
	require.Equal(t, "https://smcomponentes.com.br/loja/", info.URL)
	require.Len(t, info.Featured, 4)
	require.Equal(t, "https://smcomponentes.com.br/loja/categoria-conectores-variados", info.Featured[0].URL)
	require.Equal(t, "Acessórios", info.Featured[3].Name)
}

func TestStoreInfo_AddsTrailingSlash(t *testing.T) {
	info, err := StoreInfo(config.StoreConfig{BaseURL: "https://loja.test/shop"})
	require.NoError(t, err)
	require.Equal(t, "https://loja.test/shop/", info.URL)
}

func TestNew_WiresDefaults(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.LLM.APIKey = "sk-test"

	a, err := New(cfg, &memStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NotEmpty(t, a.Knowledge.Entries())
	require.NotNil(t, a.Handler)

	// bundled knowledge answers exactly without touching the network
	out := a.Assistant.Answer(context.Background(), a.Knowledge.Entries()[0].Question)
	require.Equal(t, a.Knowledge.Entries()[0].Answer, out)
}

func TestNew_RejectsMissingKey(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	_, err = New(cfg, &memStore{}, slog.Default())
	require.Error(t, err)
}

func TestNewLogger_Levels(t *testing.T) {
	require.True(t, NewLogger("debug").Enabled(context.Background(), slog.LevelDebug))
	require.False(t, NewLogger("warn").Enabled(context.Background(), slog.LevelInfo))
	require.True(t, NewLogger("bogus").Enabled(context.Background(), slog.LevelInfo))
}
