// Package chat is the interactive question-and-answer session over the
// user's recent mail.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailwatch/internal/agent"
	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
	"mailwatch/internal/report"
)

const (
	contextDays    = 3
	contextItems   = 50
	historyWindow  = 5
	apology        = "Desculpe, tive um problema ao processar sua pergunta. Tente novamente."
	clearedMessage = "✅ Histórico de conversa limpo!"
)

var chatOptions = agent.Options{Temperature: 0.7, MaxTokens: 300}

var SuggestedQuestions = []string{
	"Quantos emails não lidos eu tenho?",
	"Quem mais me enviou emails esta semana?",
	"Tenho algum email importante ou urgente?",
	"Me fale sobre os emails de hoje",
	"Há emails com anexos?",
	"Preciso responder algum email?",
	"Qual foi o último email que recebi?",
	"Resuma minha caixa de entrada",
}

const helpText = `🤖 COMANDOS DISPONÍVEIS

/resumo - Resumo rápido de hoje
/limpar - Limpa histórico de chat
/sugestões - Mostra perguntas sugeridas
/sair - Encerra o chat

Ou faça perguntas normalmente!`

type Inbox interface {
	MessagesSince(ctx context.Context, since time.Time, limit int) ([]graph.MailItem, error)
}

type Summarizer interface {
	TodaySummary(ctx context.Context) (report.Summary, error)
}

type Session struct {
	ID      string
	gen     agent.Generator
	inbox   Inbox
	summary Summarizer
	history History
	now     func() time.Time
	log     *observability.Logger
}

func NewSession(gen agent.Generator, inbox Inbox, summary Summarizer, now func() time.Time, logger *slog.Logger) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:      observability.NewCycleID(),
		gen:     gen,
		inbox:   inbox,
		summary: summary,
		now:     now,
		log:     observability.Component(logger, "chat"),
	}
}

func (s *Session) History() *History { return &s.history }

// Handle routes a line of user input. Lines starting with "/" are commands.
// quit is true when the user asked to leave.
func (s *Session) Handle(ctx context.Context, input string) (reply string, quit bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if strings.HasPrefix(input, "/") {
		if cmd := strings.ToLower(input); cmd == "/sair" || cmd == "/quit" {
			return "", true
		}
		return s.Command(ctx, input), false
	}
	return s.Ask(ctx, input), false
}

// Ask answers a question with the recent inbox as context. Both the question
// and the reply are recorded, including the apology sent on failure.
func (s *Session) Ask(ctx context.Context, question string) string {
	ctx = observability.WithCycleID(ctx, s.ID)
	s.history.Append(agent.Message{Role: agent.RoleUser, Content: question})

	msgs := append([]agent.Message{{Role: agent.RoleSystem, Content: SystemPrompt(s.inboxContext(ctx))}},
		s.history.Window(historyWindow)...)

	reply, err := s.gen.Generate(ctx, msgs, chatOptions)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = agent.ErrEmptyResponse
	}
	if err != nil {
		s.log.Error(ctx, "chat generation failed", "error", err.Error())
		reply = apology
	} else {
		reply = strings.TrimSpace(reply)
		s.log.Info(ctx, "chat answered", "question", observability.Truncate(question, 50))
	}
	s.history.Append(agent.Message{Role: agent.RoleAssistant, Content: reply})
	return reply
}

func (s *Session) inboxContext(ctx context.Context) string {
	if s.inbox == nil {
		return contextUnavailable
	}
	since := s.now().AddDate(0, 0, -contextDays)
	items, err := s.inbox.MessagesSince(ctx, since, contextItems)
	if err != nil {
		s.log.Error(ctx, "could not load inbox context", "error", err.Error())
		return contextUnavailable
	}
	return BuildInboxContext(items, contextDays)
}

func (s *Session) Command(ctx context.Context, cmd string) string {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "/resumo":
		if s.summary == nil {
			return contextUnavailable
		}
		sum, err := s.summary.TodaySummary(ctx)
		if err != nil {
			s.log.Error(ctx, "summary failed", "error", err.Error())
		}
		return report.QuickSummary(sum)
	case "/help":
		return helpText
	case "/limpar":
		s.history.Clear()
		s.log.Info(ctx, "chat history cleared", "total_entries", s.history.Total())
		return clearedMessage
	case "/sugestões", "/sugestoes":
		var b strings.Builder
		b.WriteString("💡 PERGUNTAS SUGERIDAS:\n\n")
		for i, q := range SuggestedQuestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		return b.String()
	}
	return fmt.Sprintf("❌ Comando '%s' não reconhecido. Digite /help para ver comandos.", cmd)
}
