package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"support-agent/internal/config"
	"support-agent/internal/domain"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return NewClassifier(cfg.Intent.ProductKeywords, cfg.Intent.SupportKeywords)
}

func TestClassify_DefaultKeywords(t *testing.T) {
	c := defaultClassifier(t)
	cases := []struct {
		question string
		want     domain.Intent
	}{
		{"quero comprar um cabo hdmi", domain.IntentProductInquiry},
		{"Qual o PREÇO do adaptador?", domain.IntentProductInquiry},
		{"meu produto não funciona, preciso de suporte", domain.IntentSupportRequest},
		{"Preciso acionar a GARANTIA", domain.IntentSupportRequest},
		{"qual o horário de atendimento?", domain.IntentGeneralInquiry},
		{"", domain.IntentGeneralInquiry},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.Classify(tc.question), "question=%q", tc.question)
	}
}

func TestClassify_ProductTakesPriority(t *testing.T) {
	c := NewClassifier([]string{"comprar"}, []string{"problema"})
	require.Equal(t, domain.IntentProductInquiry, c.Classify("tive um problema ao comprar"))
}

func TestClassify_IgnoresBlankKeywords(t *testing.T) {
	c := NewClassifier([]string{" ", ""}, []string{"  SUPORTE "})
	require.Equal(t, domain.IntentSupportRequest, c.Classify("falar com o suporte"))
	require.Equal(t, domain.IntentGeneralInquiry, c.Classify("olá"))
}
