package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Users lists the organisation's users. It uses the longer user listing
// timeout from the retry policy.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	path := "/users?" + encodeQuery(param{"$select", "id,displayName,mail,userPrincipalName"})
	var resp listResponse[wireUser]
	req := Request{Method: http.MethodGet, URL: path, Timeout: c.policy.UserListTimeout}
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, 0, len(resp.Value))
	for _, u := range resp.Value {
		users = append(users, u.toUser())
	}
	c.log.Info(ctx, "users fetched", "count", len(users))
	return users, nil
}

// Presence returns a user's availability. Users without a presence record
// (404) report PresenceUnknown.
func (c *Client) Presence(ctx context.Context, userID string) (Presence, error) {
	var p wirePresence
	err := c.Do(ctx, Request{Method: http.MethodGet, URL: "/users/" + url.PathEscape(userID) + "/presence"}, &p)
	if IsNotFound(err) {
		c.log.Debug(ctx, "presence not available", "user_id", userID)
		return Presence{Availability: PresenceUnknown, Activity: PresenceUnknown}, nil
	}
	if err != nil {
		return Presence{}, fmt.Errorf("presence for %s: %w", userID, err)
	}
	out := Presence{Availability: p.Availability, Activity: p.Activity}
	if out.Availability == "" {
		out.Availability = PresenceUnknown
	}
	if out.Activity == "" {
		out.Activity = PresenceUnknown
	}
	return out, nil
}
