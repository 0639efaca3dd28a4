package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"support-agent/internal/domain"
)

func TestBuildContext_Sections(t *testing.T) {
	entries := []domain.KnowledgeEntry{{Question: "q", Answer: " Enviamos para todo o Brasil. "}}
	products := []domain.Product{{Name: "Borne KF301", Category: "Bornes", ProductURL: "https://loja.test/p?id=1&c=2"}}

	got := BuildContext(domain.IntentProductInquiry, entries, products, testStore())
	require.Contains(t, got, "- Enviamos para todo o Brasil.\n")
	require.Contains(t, got, "Borne KF301 (Bornes)")
	require.Contains(t, got, `href="https://loja.test/p?id=1&amp;c=2"`)
	require.Less(t, strings.Index(got, "Enviamos"), strings.Index(got, "Borne"))
	require.NotContains(t, got, "Canais de suporte")
}

func TestBuildContext_ProductFallbackCategories(t *testing.T) {
	got := BuildContext(domain.IntentProductInquiry, nil, nil, testStore())
	require.Contains(t, got, `<a href="https://smcomponentes.com.br/loja/categoria-potenciometros" target="_blank">Potenciômetros</a>`)
	require.NotContains(t, got, "Informações institucionais")
}

func TestBuildContext_SupportBlock(t *testing.T) {
	got := BuildContext(domain.IntentSupportRequest, nil, []domain.Product{{Name: "ignored"}}, testStore())
	require.Contains(t, got, "segunda a sexta")
	require.Contains(t, got, "contato@smcomponentes.com.br")
	require.Contains(t, got, "(11) 99999-0000")
	require.NotContains(t, got, "ignored")
}

func TestBuildContext_GeneralIsKnowledgeOnly(t *testing.T) {
	require.Empty(t, BuildContext(domain.IntentGeneralInquiry, nil, nil, testStore()))
}

func TestBuildPrompt(t *testing.T) {
	cases := []struct {
		intent  domain.Intent
		persona string
	}{
		{domain.IntentProductInquiry, "vendedor especializado da SM Componentes"},
		{domain.IntentSupportRequest, "técnico de suporte da SM Componentes"},
		{domain.IntentGeneralInquiry, "atendente da SM Componentes"},
	}
	for _, tc := range cases {
		got := BuildPrompt(tc.intent, "  Vocês vendem \"plug P2\"? ", "CTX", testStore())
		require.True(t, strings.HasPrefix(got, "Você é um "+tc.persona), "intent=%s", tc.intent)
		require.Contains(t, got, "CTX")
		require.Contains(t, got, `"Vocês vendem \"plug P2\"?"`)
		require.Contains(t, got, "português do Brasil")
		require.Contains(t, got, `target="_blank"`)
		require.Contains(t, got, "markdown")
	}
}

func TestFallbackAnswer(t *testing.T) {
	got := FallbackAnswer(testStore())
	require.Contains(t, got, `<a href="https://smcomponentes.com.br/loja/" target="_blank">SM Componentes</a>`)
	require.Contains(t, got, "mailto:contato@smcomponentes.com.br")
	require.Contains(t, got, "reformular")
}
