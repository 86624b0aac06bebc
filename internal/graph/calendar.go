package graph

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const eventSelect = "subject,start,end,location,isOnlineMeeting,onlineMeetingUrl"

// UpcomingEvents lists calendar events between now and now+window.
func (c *Client) UpcomingEvents(ctx context.Context, window time.Duration, limit int) ([]CalendarEvent, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	if limit <= 0 {
		limit = 5
	}
	start := c.now().UTC()
	end := start.Add(window)
	path := "/me/calendarview?" + encodeQuery(
		param{"startDateTime", start.Format(time.RFC3339)},
		param{"endDateTime", end.Format(time.RFC3339)},
		param{"$top", strconv.Itoa(limit)},
		param{"$select", eventSelect},
		param{"$orderby", "start/dateTime"},
	)
	c.log.Debug(ctx, "fetching upcoming events", "window", window.String(), "limit", limit)

	var resp listResponse[wireEvent]
	if err := c.Do(ctx, Request{Method: http.MethodGet, URL: path}, &resp); err != nil {
		return nil, fmt.Errorf("list calendar view: %w", err)
	}
	events := make([]CalendarEvent, 0, len(resp.Value))
	for _, e := range resp.Value {
		events = append(events, e.toEvent())
	}
	c.log.Info(ctx, "upcoming events fetched", "count", len(events))
	return events, nil
}
