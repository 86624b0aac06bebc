package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
	"mailwatch/internal/triage"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

func FormatTodaySummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n📊 RESUMO DE EMAILS RECEBIDOS HOJE\n%s\n", heavyRule, heavyRule)
	fmt.Fprintf(&b, "\n📬 Total de emails: %d\n", s.Total)
	fmt.Fprintf(&b, "📎 Com anexos: %d\n", s.WithAttachments)
	fmt.Fprintf(&b, "📄 Sem anexos: %d\n", s.WithoutAttachments)

	if len(s.Items) > 0 {
		fmt.Fprintf(&b, "\n%s\nDETALHES DOS EMAILS:\n%s\n", lightRule, lightRule)
		for i, it := range s.Items {
			if i == 20 {
				break
			}
			clip := "  "
			if it.HasAttachments {
				clip = "📎"
			}
			fmt.Fprintf(&b, "\n%d. %s [%s] %s\n", i+1, clip, it.ReceivedAt.Format("2006-01-02 15:04"), observability.Truncate(it.Subject, 50))
			fmt.Fprintf(&b, "   De: %s\n", it.From)
		}
	}
	fmt.Fprintf(&b, "\n%s", heavyRule)
	return b.String()
}

// QuickSummary is the short form used by the chat /resumo command.
func QuickSummary(s Summary) string {
	return fmt.Sprintf("📊 RESUMO RÁPIDO\n\nTotal hoje: %d\nCom anexos: %d\nSem anexos: %d",
		s.Total, s.WithAttachments, s.WithoutAttachments)
}

// AgeMarker grades how long a message has waited.
func AgeMarker(daysAgo int) string {
	switch {
	case daysAgo >= 3:
		return "🔴"
	case daysAgo >= 1:
		return "🟡"
	}
	return "🟢"
}

func FormatUnanswered(items []graph.MailItem, days int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n⚠️  EMAILS SEM RESPOSTA (Últimos %d dias)\n%s\n", heavyRule, days, heavyRule)
	if len(items) == 0 {
		b.WriteString("\n✅ Parabéns! Todos os emails foram respondidos.\n")
	} else {
		fmt.Fprintf(&b, "\n📭 Total: %d emails aguardando resposta\n%s\n", len(items), lightRule)
		for i, it := range items {
			if i == 30 {
				break
			}
			daysAgo := int(now.Sub(it.ReceivedAt).Hours() / 24)
			fmt.Fprintf(&b, "\n%d. %s %s\n", i+1, AgeMarker(daysAgo), observability.Truncate(it.Subject, 50))
			fmt.Fprintf(&b, "   De: %s\n", it.From)
			fmt.Fprintf(&b, "   Recebido: %s (%d dia(s) atrás)\n", it.ReceivedAt.Format("2006-01-02"), daysAgo)
		}
	}
	fmt.Fprintf(&b, "\n%s", heavyRule)
	return b.String()
}

// FormatUsersTable renders users as a fixed-width table, preceded by a count
// per status.
func FormatUsersTable(users []UserStatus) string {
	if len(users) == 0 {
		return "Nenhum usuário encontrado."
	}

	counts := map[string]int{}
	emoji := map[string]string{}
	for _, u := range users {
		counts[u.Description]++
		emoji[u.Description] = u.Emoji
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Total de usuários: %d\n\nResumo por status:\n", len(users))
	for _, s := range statuses {
		fmt.Fprintf(&b, "  %s %s: %d usuário(s)\n", emoji[s], s, counts[s])
	}
	fmt.Fprintf(&b, "\n%s\n", heavyRule)
	fmt.Fprintf(&b, "%-10s %-30s %-40s\n", "Status", "Nome", "Email")
	fmt.Fprintf(&b, "%s\n", lightRule)
	for _, u := range users {
		status := u.Emoji + " " + u.Description
		fmt.Fprintf(&b, "%-10s %-30s %-40s\n", status, observability.Truncate(u.Name, 28), observability.Truncate(u.Email, 38))
	}
	b.WriteString(heavyRule)
	return b.String()
}

// FormatResults renders one monitoring cycle: triaged mail first, then
// upcoming events.
func FormatResults(results []triage.Result, events []graph.CalendarEvent) string {
	var lines []string
	for _, r := range results {
		lines = append(lines,
			"📧 NOVO EMAIL",
			"De: "+r.Item.From,
			"Assunto: "+r.Item.Subject,
			fmt.Sprintf("Urgência: %s %s", r.Urgency.Marker(), r.Urgency),
		)
		if r.Suggestion != "" {
			lines = append(lines, "\n💡 Sugestão de resposta:", r.Suggestion)
		}
		lines = append(lines, strings.Repeat("-", 50))
	}
	if len(events) > 0 {
		lines = append(lines, FormatEvents(events))
	}
	return strings.Join(lines, "\n")
}

func FormatEvents(events []graph.CalendarEvent) string {
	if len(events) == 0 {
		return "📅 Nenhum evento nas próximas horas"
	}
	lines := []string{"📅 EVENTOS PRÓXIMOS"}
	for _, ev := range events {
		where := "📍 " + ev.Location
		if ev.IsOnlineMeeting {
			where = "💻 Online"
		}
		lines = append(lines, fmt.Sprintf("• %s (%s) %s", ev.Subject, ev.Start.Format("02/01 15:04"), where))
	}
	return strings.Join(lines, "\n")
}
