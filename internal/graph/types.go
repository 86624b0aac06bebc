package graph

import (
	"strings"
	"time"
)

const (
	UnknownSender   = "desconhecido"
	NoSubject       = "(sem assunto)"
	NoLocation      = "Sem local"
	PresenceUnknown = "PresenceUnknown"
)

// MailItem is the subset of a Graph message the agent works with.
type MailItem struct {
	ID             string
	Subject        string
	From           string
	FromName       string
	ReceivedAt     time.Time
	BodyPreview    string
	IsRead         bool
	HasAttachments bool
	Importance     string
	ConversationID string
}

type CalendarEvent struct {
	Subject          string
	Start            time.Time
	End              time.Time
	Location         string
	IsOnlineMeeting  bool
	OnlineMeetingURL string
}

type User struct {
	ID          string
	DisplayName string
	Email       string
}

type Presence struct {
	Availability string
	Activity     string
}

type listResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

type wireEmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type wireRecipient struct {
	EmailAddress *wireEmailAddress `json:"emailAddress"`
}

type wireMessage struct {
	ID               string         `json:"id"`
	Subject          *string        `json:"subject"`
	From             *wireRecipient `json:"from"`
	ReceivedDateTime string         `json:"receivedDateTime"`
	BodyPreview      string         `json:"bodyPreview"`
	IsRead           bool           `json:"isRead"`
	HasAttachments   bool           `json:"hasAttachments"`
	Importance       string         `json:"importance"`
	ConversationID   string         `json:"conversationId"`
}

func (m wireMessage) toItem() MailItem {
	item := MailItem{
		ID:             m.ID,
		Subject:        NoSubject,
		From:           UnknownSender,
		BodyPreview:    m.BodyPreview,
		IsRead:         m.IsRead,
		HasAttachments: m.HasAttachments,
		Importance:     m.Importance,
		ConversationID: m.ConversationID,
	}
	if m.Subject != nil && strings.TrimSpace(*m.Subject) != "" {
		item.Subject = *m.Subject
	}
	if m.From != nil && m.From.EmailAddress != nil {
		if addr := strings.TrimSpace(m.From.EmailAddress.Address); addr != "" {
			item.From = addr
		}
		item.FromName = m.From.EmailAddress.Name
	}
	if t, err := time.Parse(time.RFC3339, m.ReceivedDateTime); err == nil {
		item.ReceivedAt = t
	}
	return item
}

type wireDateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// graphDateTime is the layout Graph uses for dateTimeTimeZone values,
// e.g. "2024-05-01T14:30:00.0000000".
const graphDateTime = "2006-01-02T15:04:05.9999999"

func (d *wireDateTimeZone) time() time.Time {
	if d == nil || d.DateTime == "" {
		return time.Time{}
	}
	loc := time.UTC
	if d.TimeZone != "" {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}
	if t, err := time.ParseInLocation(graphDateTime, d.DateTime, loc); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, d.DateTime); err == nil {
		return t
	}
	return time.Time{}
}

type wireEvent struct {
	Subject  string            `json:"subject"`
	Start    *wireDateTimeZone `json:"start"`
	End      *wireDateTimeZone `json:"end"`
	Location *struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	IsOnlineMeeting  bool   `json:"isOnlineMeeting"`
	OnlineMeetingURL string `json:"onlineMeetingUrl"`
}

func (e wireEvent) toEvent() CalendarEvent {
	ev := CalendarEvent{
		Subject:          e.Subject,
		Start:            e.Start.time(),
		End:              e.End.time(),
		Location:         NoLocation,
		IsOnlineMeeting:  e.IsOnlineMeeting,
		OnlineMeetingURL: e.OnlineMeetingURL,
	}
	if ev.Subject == "" {
		ev.Subject = NoSubject
	}
	if e.Location != nil && strings.TrimSpace(e.Location.DisplayName) != "" {
		ev.Location = e.Location.DisplayName
	}
	return ev
}

type wireUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

func (u wireUser) toUser() User {
	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}
	return User{ID: u.ID, DisplayName: u.DisplayName, Email: email}
}

type wirePresence struct {
	Availability string `json:"availability"`
	Activity     string `json:"activity"`
}
