package graph

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestUsersUsesUserListTimeout(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.RequestTimeout = 5 * time.Millisecond
	policy.UserListTimeout = 2 * time.Second

	c := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte(`{"value":[
			{"id":"u1","displayName":"Ana","mail":"ana@x.com"},
			{"id":"u2","displayName":"Bo","mail":"","userPrincipalName":"bo@x.onmicrosoft.com"}
		]}`))
	}), WithRetryPolicy(policy))

	users, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 || users[1].Email != "bo@x.onmicrosoft.com" {
		t.Fatalf("users = %#v", users)
	}
}

func TestPresence(t *testing.T) {
	c := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/users/u1/presence":
			_, _ = w.Write([]byte(`{"availability":"Busy","activity":"InAMeeting"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	p, err := c.Presence(context.Background(), "u1")
	if err != nil || p.Availability != "Busy" || p.Activity != "InAMeeting" {
		t.Fatalf("presence = %#v, err = %v", p, err)
	}
	p, err = c.Presence(context.Background(), "ghost")
	if err != nil || p.Availability != PresenceUnknown {
		t.Fatalf("missing presence = %#v, err = %v", p, err)
	}
}
