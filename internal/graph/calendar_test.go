package graph

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestUpcomingEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var start, end, top string
	c := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1.0/me/calendarview" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		start, end, top = q.Get("startDateTime"), q.Get("endDateTime"), q.Get("$top")
		_, _ = w.Write([]byte(`{"value":[
			{"subject":"Standup","start":{"dateTime":"2024-05-01T10:00:00.0000000","timeZone":"UTC"},
			 "location":{"displayName":"Room 1"},"isOnlineMeeting":false},
			{"subject":"Review","start":{"dateTime":"2024-05-01T15:30:00.0000000","timeZone":"UTC"},
			 "location":{"displayName":""},"isOnlineMeeting":true,"onlineMeetingUrl":"https://meet"}
		]}`))
	}), WithClock(func() time.Time { return now }))

	events, err := c.UpcomingEvents(context.Background(), 24*time.Hour, 3)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if start != "2024-05-01T09:00:00Z" || end != "2024-05-02T09:00:00Z" || top != "3" {
		t.Fatalf("window start=%q end=%q top=%q", start, end, top)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Location != "Room 1" || !events[0].Start.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("first event = %#v", events[0])
	}
	if events[1].Location != NoLocation || !events[1].IsOnlineMeeting {
		t.Fatalf("second event = %#v", events[1])
	}
}
