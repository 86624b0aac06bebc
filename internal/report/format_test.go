package report

import (
	"strings"
	"testing"
	"time"

	"mailwatch/internal/graph"
	"mailwatch/internal/triage"
)

func TestAgeMarker(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{0, "🟢"},
		{1, "🟡"},
		{2, "🟡"},
		{3, "🔴"},
		{10, "🔴"},
	}
	for _, tc := range cases {
		if got := AgeMarker(tc.days); got != tc.want {
			t.Errorf("AgeMarker(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestFormatTodaySummary(t *testing.T) {
	s := Summary{
		Total:              2,
		WithAttachments:    1,
		WithoutAttachments: 1,
		Items: []graph.MailItem{
			{Subject: "Contrato", From: "a@x.com", HasAttachments: true, ReceivedAt: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)},
			{Subject: "Almoço", From: "b@x.com", ReceivedAt: time.Date(2025, 3, 5, 11, 15, 0, 0, time.UTC)},
		},
	}
	out := FormatTodaySummary(s)
	for _, want := range []string{
		"📬 Total de emails: 2",
		"📎 Com anexos: 1",
		"📄 Sem anexos: 1",
		"1. 📎 [2025-03-05 09:00] Contrato",
		"2.    [2025-03-05 11:15] Almoço",
		"   De: b@x.com",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatUnanswered(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []graph.MailItem{
		{Subject: "Proposta", From: "a@x.com", ReceivedAt: now.Add(-4 * 24 * time.Hour)},
		{Subject: "Dúvida", From: "b@x.com", ReceivedAt: now.Add(-2 * time.Hour)},
	}
	out := FormatUnanswered(items, 7, now)
	for _, want := range []string{
		"EMAILS SEM RESPOSTA (Últimos 7 dias)",
		"📭 Total: 2 emails aguardando resposta",
		"1. 🔴 Proposta",
		"   Recebido: 2025-03-06 (4 dia(s) atrás)",
		"2. 🟢 Dúvida",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if !strings.Contains(FormatUnanswered(nil, 7, now), "Todos os emails foram respondidos") {
		t.Error("empty report should congratulate")
	}
}

func TestFormatUsersTable(t *testing.T) {
	if FormatUsersTable(nil) != "Nenhum usuário encontrado." {
		t.Fatal("empty table text")
	}
	out := FormatUsersTable([]UserStatus{
		{Name: "Ana", Email: "ana@x.com", Emoji: "🟢", Description: "Disponível"},
		{Name: "Bruno", Email: "bruno@x.com", Emoji: "🟢", Description: "Disponível"},
		{Name: "Carla", Email: "carla@x.com", Emoji: "🔴", Description: "Ocupado"},
	})
	for _, want := range []string{
		"📊 Total de usuários: 3",
		"🟢 Disponível: 2 usuário(s)",
		"🔴 Ocupado: 1 usuário(s)",
		"Ana",
		"carla@x.com",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResults(t *testing.T) {
	results := []triage.Result{
		{Item: graph.MailItem{From: "ops@x.com", Subject: "Servidor fora"}, Urgency: triage.High, Suggestion: "Verificando."},
		{Item: graph.MailItem{From: "news@x.com", Subject: "Newsletter"}, Urgency: triage.Low},
	}
	events := []graph.CalendarEvent{
		{Subject: "Daily", Start: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), IsOnlineMeeting: true},
		{Subject: "Almoço", Start: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), Location: graph.NoLocation},
	}
	out := FormatResults(results, events)
	for _, want := range []string{
		"Urgência: 🔴 ALTA",
		"💡 Sugestão de resposta:\nVerificando.",
		"Urgência: 🟢 BAIXA",
		"📅 EVENTOS PRÓXIMOS",
		"• Daily (05/03 10:00) 💻 Online",
		"• Almoço (05/03 12:00) 📍 Sem local",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("results missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Sugestão") != 1 {
		t.Error("only the high-urgency item should carry a suggestion")
	}
}

func TestQuickSummary(t *testing.T) {
	got := QuickSummary(Summary{Total: 5, WithAttachments: 2, WithoutAttachments: 3})
	if !strings.Contains(got, "Total hoje: 5") || !strings.Contains(got, "Sem anexos: 3") {
		t.Fatalf("quick summary = %q", got)
	}
}
