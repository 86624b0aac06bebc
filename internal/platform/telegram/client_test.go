package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type msgReq struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func TestSendMessage_UsesConfiguredAPIBase(t *testing.T) {
	gotPath := ""
	got := msgReq{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewClientWithOptions("test-token", ts.URL+"/bot", ts.Client())
	if err := c.SendMessage(context.Background(), 12345, "hello"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("path=%q want=%q", gotPath, "/bottest-token/sendMessage")
	}
	if got.ChatID != 12345 {
		t.Fatalf("chat_id=%d want=12345", got.ChatID)
	}
	if got.Text != "hello" {
		t.Fatalf("text=%q want=hello", got.Text)
	}
	if got.ParseMode != "Markdown" {
		t.Fatalf("parse_mode=%q want=Markdown", got.ParseMode)
	}
}

func TestSendMessage_FallbackToPlainOnEntityParseError(t *testing.T) {
	calls := 0
	var first, second msgReq

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		var got msgReq
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if calls == 1 {
			first = got
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities: Can't find end of the entity starting at byte offset 10"}`))
			return
		}

		second = got
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewClientWithOptions("test-token", ts.URL+"/bot", ts.Client())
	if err := c.SendMessage(context.Background(), 12345, "broken _markdown"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if calls != 2 {
		t.Fatalf("calls=%d want=2", calls)
	}
	if first.ParseMode != "Markdown" {
		t.Fatalf("first parse_mode=%q want=Markdown", first.ParseMode)
	}
	if second.ParseMode != "" {
		t.Fatalf("second parse_mode=%q want empty", second.ParseMode)
	}
	if second.Text != "broken _markdown" {
		t.Fatalf("second text=%q", second.Text)
	}
}

func TestSendMessage_OtherErrorsNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer ts.Close()

	c := NewClientWithOptions("test-token", ts.URL+"/bot", ts.Client())
	err := c.SendMessage(context.Background(), 1, "hi")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d want=403", apiErr.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want=1", calls)
	}
}

func TestGetMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/getMe" {
			t.Errorf("path=%q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Mail","username":"mailwatch_bot"}}`))
	}))
	defer ts.Close()

	c := NewClientWithOptions("test-token", ts.URL+"/bot", ts.Client())
	u, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("getMe: %v", err)
	}
	if u.ID != 42 || u.Username != "mailwatch_bot" || !u.IsBot {
		t.Fatalf("user = %+v", u)
	}
}
