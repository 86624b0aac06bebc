package triage

import (
	"fmt"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

const (
	maxSubjectRunes = 200
	maxPreviewRunes = 300
)

func ClassifyPrompt(item graph.MailItem) string {
	return fmt.Sprintf(`Analise este email e classifique sua urgência em ALTA, MÉDIA ou BAIXA.

ALTA: Requer ação imediata, prazos curtos, problemas críticos
MÉDIA: Importante mas pode aguardar algumas horas
BAIXA: Informativo, sem pressa

Email:
De: %s
Assunto: %s
Prévia: %s

Responda APENAS com uma palavra: ALTA, MÉDIA ou BAIXA.`,
		item.From,
		observability.Truncate(item.Subject, maxSubjectRunes),
		observability.Truncate(item.BodyPreview, maxPreviewRunes),
	)
}

func SuggestPrompt(item graph.MailItem) string {
	return fmt.Sprintf(`Você é um assistente que redige respostas de email profissionais em português.

O email abaixo foi classificado como URGENTE. Escreva uma resposta curta que:
- confirme o recebimento e mostre que o assunto será tratado com prioridade
- responda diretamente ao pedido, se ele estiver claro na prévia
- não invente fatos, datas ou compromissos que não estejam no email
- tenha no máximo 5 frases e termine com "Atenciosamente"

Email recebido:
De: %s
Assunto: %s
Prévia: %s

Escreva somente o corpo da resposta, sem linha de assunto.`,
		item.From,
		observability.Truncate(item.Subject, maxSubjectRunes),
		observability.Truncate(item.BodyPreview, maxPreviewRunes),
	)
}

// fallbackReply is used when the model cannot produce a suggestion.
const fallbackReply = "Olá,\n\nRecebi seu email e vou priorizar esta demanda.\nRetorno com mais detalhes em breve.\n\nAtenciosamente"
