package chat

import (
	"fmt"
	"sort"
	"strings"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

const contextUnavailable = "Não foi possível obter informações dos emails no momento."

// BuildInboxContext summarises recent mail for the system prompt.
func BuildInboxContext(items []graph.MailItem, days int) string {
	var unread, attachments, important int
	counts := map[string]int{}
	for _, it := range items {
		if !it.IsRead {
			unread++
		}
		if it.HasAttachments {
			attachments++
		}
		if strings.EqualFold(it.Importance, "high") {
			important++
		}
		counts[it.From]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONTEXTO DA CAIXA DE ENTRADA (Últimos %d dias):\n\n", days)
	b.WriteString("ESTATÍSTICAS:\n")
	fmt.Fprintf(&b, "- Total de emails: %d\n", len(items))
	fmt.Fprintf(&b, "- Não lidos: %d\n", unread)
	fmt.Fprintf(&b, "- Com anexos: %d\n", attachments)
	fmt.Fprintf(&b, "- Marcados como importantes: %d\n", important)

	b.WriteString("\nTOP 5 REMETENTES:\n")
	for _, s := range topSenders(counts, 5) {
		fmt.Fprintf(&b, "- %s: %d email(s)\n", s, counts[s])
	}

	b.WriteString("\nÚLTIMOS 10 EMAILS:\n")
	for i, it := range items {
		if i == 10 {
			break
		}
		status := "✗"
		if it.IsRead {
			status = "✓"
		}
		fmt.Fprintf(&b, "%d. [%s] %s (de: %s)\n", i+1, status, observability.Truncate(it.Subject, 60), it.From)
	}
	return b.String()
}

// topSenders orders by count, then address, so ties are stable.
func topSenders(counts map[string]int, n int) []string {
	senders := make([]string, 0, len(counts))
	for s := range counts {
		senders = append(senders, s)
	}
	sort.Slice(senders, func(i, j int) bool {
		if counts[senders[i]] != counts[senders[j]] {
			return counts[senders[i]] > counts[senders[j]]
		}
		return senders[i] < senders[j]
	})
	if len(senders) > n {
		senders = senders[:n]
	}
	return senders
}

func SystemPrompt(inboxContext string) string {
	return `Você é um assistente inteligente que ajuda o usuário a gerenciar seus emails.

` + inboxContext + `
INSTRUÇÕES:
- Responda de forma clara, objetiva e amigável
- Use o contexto dos emails para responder perguntas
- Se não souber algo, seja honesto
- Sugira ações úteis quando apropriado
- Mantenha respostas concisas (máximo 200 palavras)

EXEMPLOS DE PERGUNTAS:
- "Quantos emails não lidos eu tenho?"
- "Quem mais me enviou emails recentemente?"
- "Tenho algum email importante?"
- "Me fale sobre os emails de hoje"
- "Preciso responder algum email urgente?"
`
}
