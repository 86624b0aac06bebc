package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
	"mailwatch/internal/triage"
)

type recordingSender struct {
	chatIDs []int64
	texts   []string
	err     error
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.chatIDs = append(s.chatIDs, chatID)
	s.texts = append(s.texts, text)
	return s.err
}

func urgentResult(id string) triage.Result {
	return triage.Result{
		Item: graph.MailItem{
			ID:          id,
			Subject:     "Servidor fora do ar",
			From:        "ops@example.com",
			ReceivedAt:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
			BodyPreview: "Produção parada desde 9h",
		},
		Urgency:    triage.High,
		Suggestion: "Estou verificando agora.",
	}
}

func TestAlerter_SendsOncePerItem(t *testing.T) {
	sender := &recordingSender{}
	a := NewAlerter(sender, 777, NewDedup(time.Hour), observability.Nop())

	for i := 0; i < 3; i++ {
		if err := a.Notify(context.Background(), urgentResult("m1")); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if err := a.Notify(context.Background(), urgentResult("m2")); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sender.texts) != 2 {
		t.Fatalf("sent %d alerts, want 2", len(sender.texts))
	}
	if sender.chatIDs[0] != 777 {
		t.Fatalf("chat_id=%d want=777", sender.chatIDs[0])
	}
}

func TestAlerter_FailedSendIsRetriedNextTime(t *testing.T) {
	sender := &recordingSender{err: errors.New("network down")}
	a := NewAlerter(sender, 1, NewDedup(time.Hour), observability.Nop())

	if err := a.Notify(context.Background(), urgentResult("m1")); err == nil {
		t.Fatal("expected error")
	}
	sender.err = nil
	if err := a.Notify(context.Background(), urgentResult("m1")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.texts) != 2 {
		t.Fatalf("send attempts = %d, want 2", len(sender.texts))
	}
}

func TestFormatAlert(t *testing.T) {
	text := FormatAlert(urgentResult("m1"))
	for _, want := range []string{
		"🔴 *Email urgente* (ALTA)",
		"*De:* ops@example.com",
		"*Assunto:* Servidor fora do ar",
		"*Recebido:* 01/03/2025 09:30",
		"Produção parada desde 9h",
		"*Sugestão de resposta:*\nEstou verificando agora.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("alert missing %q:\n%s", want, text)
		}
	}
}

func TestFormatAlert_NoSuggestion(t *testing.T) {
	res := urgentResult("m1")
	res.Suggestion = ""
	if strings.Contains(FormatAlert(res), "Sugestão") {
		t.Error("alert should not include an empty suggestion section")
	}
}
