package microsoft

import (
	"strings"
	"time"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// Microsoft Graph API base URL.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// graphDateTime contains a date-time with time zone.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// graphItemBody contains message or event body content.
type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// graphRecipient represents an email recipient.
type graphRecipient struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

// graphAttendee represents an event attendee.
type graphAttendee struct {
	Type         string `json:"type"`
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

// graphEvent represents a Microsoft Calendar event from the Graph API.
type graphEvent struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Body      *graphItemBody  `json:"body,omitempty"`
	Start     *graphDateTime  `json:"start,omitempty"`
	End       *graphDateTime  `json:"end,omitempty"`
	Attendees []graphAttendee `json:"attendees,omitempty"`
	WebLink   string          `json:"webLink,omitempty"`

	IsOnlineMeeting       bool   `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string `json:"onlineMeetingProvider,omitempty"`
	OnlineMeeting         *struct {
		JoinURL string `json:"joinUrl"`
	} `json:"onlineMeeting,omitempty"`
}

// graphEventList is a collection response for events.
type graphEventList struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink,omitempty"`
}

// graphMessage represents an Outlook message from the Graph API.
type graphMessage struct {
	ID               string           `json:"id"`
	Subject          string           `json:"subject"`
	BodyPreview      string           `json:"bodyPreview,omitempty"`
	Body             *graphItemBody   `json:"body,omitempty"`
	From             *graphRecipient  `json:"from,omitempty"`
	ToRecipients     []graphRecipient `json:"toRecipients,omitempty"`
	ReceivedDateTime string           `json:"receivedDateTime,omitempty"`
	IsRead           bool             `json:"isRead"`
	ConversationID   string           `json:"conversationId,omitempty"`
	WebLink          string           `json:"webLink,omitempty"`
}

// graphMessageList is a collection response for messages.
type graphMessageList struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink,omitempty"`
}

// sendMailRequest is the body of POST /me/sendMail.
type sendMailRequest struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

type sendMailMessage struct {
	Subject      string           `json:"subject"`
	Body         graphItemBody    `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

// createEventRequest is the body of POST /me/events.
type createEventRequest struct {
	Subject               string          `json:"subject"`
	Body                  *graphItemBody  `json:"body,omitempty"`
	Start                 graphDateTime   `json:"start"`
	End                   graphDateTime   `json:"end"`
	Attendees             []graphAttendee `json:"attendees,omitempty"`
	IsOnlineMeeting       bool            `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string          `json:"onlineMeetingProvider,omitempty"`
	Location              *struct {
		DisplayName string `json:"displayName"`
	} `json:"location,omitempty"`
}

// toEvent converts a Graph event to the provider-agnostic shape.
func (e *graphEvent) toEvent() domain.Event {
	ev := domain.Event{
		ID:       e.ID,
		Summary:  e.Subject,
		HTMLLink: e.WebLink,
	}

	if e.Body != nil {
		ev.Description = e.Body.Content
	}
	if e.Start != nil {
		ev.Start = parseGraphTime(e.Start.DateTime)
	}
	if e.End != nil {
		ev.End = parseGraphTime(e.End.DateTime)
	}
	if e.OnlineMeeting != nil {
		ev.JoinURL = e.OnlineMeeting.JoinURL
	}
	for _, a := range e.Attendees {
		if a.EmailAddress.Address != "" {
			ev.Attendees = append(ev.Attendees, a.EmailAddress.Address)
		}
	}

	return ev
}

// toEventResult normalizes a created Graph event.
func (e *graphEvent) toEventResult() *domain.EventResult {
	result := &domain.EventResult{
		ID:       e.ID,
		HTMLLink: e.WebLink,
	}
	if e.OnlineMeeting != nil {
		result.JoinURL = e.OnlineMeeting.JoinURL
	}
	return result
}

// toMessage converts a Graph message to the provider-agnostic shape.
func (m *graphMessage) toMessage() domain.Message {
	msg := domain.Message{
		ID:       m.ID,
		ThreadID: m.ConversationID,
		Subject:  m.Subject,
		Snippet:  m.BodyPreview,
		Unread:   !m.IsRead,
		WebLink:  m.WebLink,
		Date:     parseGraphTime(m.ReceivedDateTime),
	}

	if m.Body != nil {
		msg.Body = m.Body.Content
	}
	if m.From != nil {
		msg.From = m.From.EmailAddress.Address
	}
	for _, r := range m.ToRecipients {
		if r.EmailAddress.Address != "" {
			msg.To = append(msg.To, r.EmailAddress.Address)
		}
	}

	return msg
}

// parseGraphTime parses the Graph dateTime variants. Graph returns either
// RFC3339 or a zone-less form like "2026-01-02T15:04:05.0000000".
func parseGraphTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}

	// Zone-less Graph timestamps are UTC by the Prefer header.
	value = strings.TrimSuffix(value, "Z")
	if idx := strings.Index(value, "."); idx >= 0 {
		value = value[:idx]
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// graphTime formats a time for Graph request bodies.
func graphTime(t time.Time) graphDateTime {
	return graphDateTime{
		DateTime: t.UTC().Format("2006-01-02T15:04:05"),
		TimeZone: "UTC",
	}
}

// recipient builds a Graph recipient for an address.
func recipient(address string) graphRecipient {
	var r graphRecipient
	r.EmailAddress.Address = address
	return r
}

// attendee builds a required Graph attendee for an address.
func attendee(address string) graphAttendee {
	var a graphAttendee
	a.Type = "required"
	a.EmailAddress.Address = address
	return a
}
