package usecase

import (
	"fmt"
	"html"
	"strings"

	"support-agent/internal/domain"
)

// StoreInfo carries the storefront facts quoted in prompts and fallback answers.
type StoreInfo struct {
	Name         string
	URL          string
	SupportEmail string
	WhatsApp     string
	SupportHours string
	// Featured are suggested when a product search finds nothing.
	Featured []CategoryLink
}

type CategoryLink struct {
	Name string
	URL  string
}

// BuildContext assembles the facts the model may rely on: knowledge-base answers,
// then product listings (or featured categories) for product questions, then the
// support contacts for support requests.
func BuildContext(intent domain.Intent, entries []domain.KnowledgeEntry, products []domain.Product, store StoreInfo) string {
	var sb strings.Builder

	if len(entries) > 0 {
		sb.WriteString("Informações institucionais:\n")
		for _, e := range entries {
			sb.WriteString("- ")
			sb.WriteString(strings.TrimSpace(e.Answer))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	switch intent {
	case domain.IntentProductInquiry:
		if len(products) > 0 {
			fmt.Fprintf(&sb, "Produtos encontrados na %s:\n", store.Name)
			for _, p := range products {
				fmt.Fprintf(&sb, "- %s (%s): %s\n", p.Name, p.Category, htmlAnchor(p.ProductURL, "Ver produto"))
			}
		} else {
			sb.WriteString("Nenhum produto específico encontrado. Categorias principais:\n")
			for _, c := range store.Featured {
				fmt.Fprintf(&sb, "- %s\n", htmlAnchor(c.URL, c.Name))
			}
		}
		sb.WriteString("\n")
	case domain.IntentSupportRequest:
		sb.WriteString("Canais de suporte:\n")
		fmt.Fprintf(&sb, "- Horário de atendimento: %s\n", store.SupportHours)
		fmt.Fprintf(&sb, "- E-mail: %s\n", store.SupportEmail)
		fmt.Fprintf(&sb, "- WhatsApp: %s\n", store.WhatsApp)
		sb.WriteString("\n")
	}

	return sb.String()
}

// BuildPrompt renders the single user message sent to the completion endpoint.
func BuildPrompt(intent domain.Intent, question, context string, store StoreInfo) string {
	return strings.Join([]string{
		persona(intent, store.Name),
		"",
		"Contexto disponível:",
		strings.TrimSpace(context),
		"",
		"Pergunta do cliente:",
		fmt.Sprintf("%q", strings.TrimSpace(question)),
		"",
		"Regras de resposta:",
		outputRules(),
		"",
		"Resposta:",
	}, "\n")
}

func persona(intent domain.Intent, storeName string) string {
	switch intent {
	case domain.IntentProductInquiry:
		return fmt.Sprintf("Você é um vendedor especializado da %s, loja de componentes eletrônicos como "+
			"conectores, cabos, adaptadores, potenciômetros, bornes, plugs e acessórios técnicos. "+
			"Ajude o cliente a encontrar o produto certo, citando nome e link dos produtos listados no contexto.", storeName)
	case domain.IntentSupportRequest:
		return fmt.Sprintf("Você é um técnico de suporte da %s. Seja empático, entenda o problema do cliente, "+
			"sugira os próximos passos e indique os canais de suporte do contexto.", storeName)
	default:
		return fmt.Sprintf("Você é um atendente da %s, loja de componentes eletrônicos. "+
			"Responda com clareza, precisão técnica e cordialidade.", storeName)
	}
}

func outputRules() string {
	return strings.Join([]string{
		"1) Responda em português do Brasil, de forma profissional e objetiva.",
		`2) Todo link deve ser uma tag HTML no formato <a href="URL" target="_blank">texto</a>.`,
		"3) Nunca escreva URLs soltas nem links em markdown.",
		"4) Use apenas as informações do contexto. Se não souber, não invente: diga que vai verificar com o time técnico.",
		"5) Finalize com uma chamada para ação curta.",
	}, "\n")
}

// FallbackAnswer is returned whenever the answer pipeline fails.
func FallbackAnswer(store StoreInfo) string {
	return fmt.Sprintf(
		"Desculpe, tive um probleminha técnico para responder agora. "+
			"Você pode conferir nossos produtos em %s ou falar com nosso suporte pelo e-mail %s. "+
			"Pode reformular sua dúvida? Estou aqui para ajudar!",
		htmlAnchor(store.URL, store.Name),
		htmlAnchor("mailto:"+store.SupportEmail, store.SupportEmail),
	)
}

func htmlAnchor(href, label string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(href), html.EscapeString(label))
}
