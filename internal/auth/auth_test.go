package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"mailwatch/internal/observability"
)

func TestConfigOAuth2Endpoints(t *testing.T) {
	oc := Config{TenantID: "contoso", ClientID: "app"}.OAuth2()

	base := "https://login.microsoftonline.com/contoso/oauth2/v2.0"
	if oc.Endpoint.TokenURL != base+"/token" {
		t.Errorf("token url = %q", oc.Endpoint.TokenURL)
	}
	if oc.Endpoint.DeviceAuthURL != base+"/devicecode" {
		t.Errorf("device url = %q", oc.Endpoint.DeviceAuthURL)
	}
	if oc.Endpoint.AuthStyle != oauth2.AuthStyleInParams {
		t.Errorf("auth style = %v, want in-params", oc.Endpoint.AuthStyle)
	}
	if strings.Join(oc.Scopes, " ") != strings.Join(DefaultScopes, " ") {
		t.Errorf("scopes = %v", oc.Scopes)
	}
}

func TestConfigDefaultsTenant(t *testing.T) {
	oc := Config{ClientID: "app", Authority: "http://localhost:9999/"}.OAuth2()
	if oc.Endpoint.TokenURL != "http://localhost:9999/common/oauth2/v2.0/token" {
		t.Errorf("token url = %q", oc.Endpoint.TokenURL)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "token.json"))

	if _, err := s.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("load empty = %v, want ErrNotLoggedIn", err)
	}

	want := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" || !got.Expiry.Equal(want.Expiry) {
		t.Fatalf("loaded %+v", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("load after clear = %v, want ErrNotLoggedIn", err)
	}
}

type sequenceSource struct {
	tokens []string
	i      int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{AccessToken: s.tokens[s.i]}
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return tok, nil
}

func TestPersistingSourceWritesBackRefresh(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "token.json"))
	p := &persistingSource{
		src:   &sequenceSource{tokens: []string{"old", "new"}},
		store: s,
		last:  "old",
		log:   observability.Component(observability.Nop(), "auth"),
	}

	if _, err := p.Token(); err != nil {
		t.Fatalf("token: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("unchanged token should not be written, load = %v", err)
	}

	if _, err := p.Token(); err != nil {
		t.Fatalf("token: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "new" {
		t.Fatalf("cached access token = %q, want new", got.AccessToken)
	}
}

func writeToken(w http.ResponseWriter, access string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"access_token":"` + access + `","token_type":"Bearer","expires_in":3600,"refresh_token":"rt2"}`))
}

func TestTokenSourceRefreshesExpiredToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenant/oauth2/v2.0/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = r.ParseForm()
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "rt1" {
			t.Errorf("form = %v", r.Form)
		}
		if r.Form.Get("client_id") != "app" {
			t.Errorf("client_id = %q", r.Form.Get("client_id"))
		}
		writeToken(w, "fresh")
	}))
	defer ts.Close()

	store := NewStore(filepath.Join(t.TempDir(), "token.json"))
	if err := store.Save(&oauth2.Token{AccessToken: "stale", RefreshToken: "rt1", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := Config{TenantID: "tenant", ClientID: "app", Authority: ts.URL}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, ts.Client())
	src, err := TokenSource(ctx, cfg, store, observability.Nop())
	if err != nil {
		t.Fatalf("token source: %v", err)
	}
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Fatalf("access token = %q, want fresh", tok.AccessToken)
	}
	cached, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cached.AccessToken != "fresh" || cached.RefreshToken != "rt2" {
		t.Fatalf("cached %+v", cached)
	}
}

func TestTokenSourceNotLoggedIn(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "token.json"))
	_, err := TokenSource(context.Background(), Config{ClientID: "app"}, store, observability.Nop())
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestLoginDeviceCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.URL.Path {
		case "/tenant/oauth2/v2.0/devicecode":
			if !strings.Contains(r.Form.Get("scope"), "Mail.Read") {
				t.Errorf("scope = %q", r.Form.Get("scope"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"device_code":"dc","user_code":"ABCD-1234","verification_uri":"https://microsoft.com/devicelogin","expires_in":900,"interval":1}`))
		case "/tenant/oauth2/v2.0/token":
			if r.Form.Get("device_code") != "dc" {
				t.Errorf("device_code = %q", r.Form.Get("device_code"))
			}
			writeToken(w, "device-token")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	store := NewStore(filepath.Join(t.TempDir(), "token.json"))
	var out bytes.Buffer
	cfg := Config{TenantID: "tenant", ClientID: "app", Authority: ts.URL}

	tok, err := Login(context.Background(), cfg, store, WritePrompt(&out), ts.Client())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.AccessToken != "device-token" {
		t.Fatalf("access token = %q", tok.AccessToken)
	}
	if !strings.Contains(out.String(), "ABCD-1234") || !strings.Contains(out.String(), "https://microsoft.com/devicelogin") {
		t.Fatalf("prompt = %q", out.String())
	}
	if cached, err := store.Load(); err != nil || cached.AccessToken != "device-token" {
		t.Fatalf("cached = %+v, %v", cached, err)
	}
}

func TestStatic(t *testing.T) {
	tok, err := Static("abc").Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
		t.Fatalf("token = %+v", tok)
	}
}
