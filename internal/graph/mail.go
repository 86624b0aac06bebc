package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	unreadSelect  = "id,subject,from,receivedDateTime,importance,bodyPreview,isRead,hasAttachments,conversationId"
	historySelect = "id,subject,from,receivedDateTime,isRead,hasAttachments,importance,bodyPreview,conversationId"
	maxPageSize   = 50
)

// UnreadMessages lists up to limit unread messages, newest first.
func (c *Client) UnreadMessages(ctx context.Context, limit int) ([]MailItem, error) {
	if limit <= 0 {
		limit = 5
	}
	path := "/me/messages?" + encodeQuery(
		param{"$filter", "isRead eq false"},
		param{"$top", strconv.Itoa(limit)},
		param{"$select", unreadSelect},
		param{"$orderby", "receivedDateTime desc"},
	)
	c.log.Debug(ctx, "fetching unread messages", "limit", limit)

	var resp listResponse[wireMessage]
	if err := c.Do(ctx, Request{Method: http.MethodGet, URL: path}, &resp); err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	items := make([]MailItem, 0, len(resp.Value))
	for _, m := range resp.Value {
		items = append(items, m.toItem())
	}
	c.log.Info(ctx, "unread messages fetched", "count", len(items))
	return items, nil
}

func (c *Client) MarkAsRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("mark as read: missing message id")
	}
	req := Request{
		Method: http.MethodPatch,
		URL:    "/me/messages/" + url.PathEscape(id),
		Body:   map[string]any{"isRead": true},
	}
	if err := c.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("mark %s as read: %w", shortID(id), err)
	}
	c.log.Info(ctx, "message marked as read", "message_id", shortID(id))
	return nil
}

// MessagesSince lists messages received at or after since, newest first,
// following @odata.nextLink until limit messages are collected.
func (c *Client) MessagesSince(ctx context.Context, since time.Time, limit int) ([]MailItem, error) {
	if limit <= 0 {
		limit = 100
	}
	path := "/me/messages?" + encodeQuery(
		param{"$filter", "receivedDateTime ge " + since.UTC().Format(time.RFC3339)},
		param{"$select", historySelect},
		param{"$orderby", "receivedDateTime desc"},
		param{"$top", strconv.Itoa(min(limit, maxPageSize))},
	)

	items := make([]MailItem, 0, min(limit, maxPageSize))
	for path != "" && len(items) < limit {
		var resp listResponse[wireMessage]
		if err := c.Do(ctx, Request{Method: http.MethodGet, URL: path}, &resp); err != nil {
			return nil, fmt.Errorf("list messages since %s: %w", since.Format(time.RFC3339), err)
		}
		for _, m := range resp.Value {
			if len(items) == limit {
				break
			}
			items = append(items, m.toItem())
		}
		path = resp.NextLink
	}
	return items, nil
}

// ConversationSenders returns the sender address of every message in a
// thread (first page only, at most 10 messages).
func (c *Client) ConversationSenders(ctx context.Context, conversationID string) ([]string, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation senders: missing conversation id")
	}
	path := "/me/messages?" + encodeQuery(
		param{"$filter", "conversationId eq " + quoteOData(conversationID)},
		param{"$select", "id,from"},
		param{"$top", "10"},
	)
	var resp listResponse[wireMessage]
	if err := c.Do(ctx, Request{Method: http.MethodGet, URL: path}, &resp); err != nil {
		return nil, fmt.Errorf("list conversation %s: %w", shortID(conversationID), err)
	}
	senders := make([]string, 0, len(resp.Value))
	for _, m := range resp.Value {
		senders = append(senders, m.toItem().From)
	}
	return senders, nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
