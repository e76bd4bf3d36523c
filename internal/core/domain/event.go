package domain

import "time"

// Event is a calendar event in provider-agnostic form.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	JoinURL     string    `json:"join_url,omitempty"`
	HTMLLink    string    `json:"html_link,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// EventRequest describes a calendar event to create.
type EventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string

	// MeetingLink, when set, is embedded in the event body instead of
	// requesting provider conferencing. Never both.
	MeetingLink string
	// WithConference requests provider conferencing (Google Meet or a Teams
	// online meeting). Ignored when MeetingLink is set.
	WithConference bool
}

// EventResult is the normalized outcome of calendar-event creation, so
// downstream persistence is provider-agnostic.
type EventResult struct {
	// ID is the provider event id, or a fixed placeholder when event
	// creation failed and the scheduler degraded to a local record.
	ID string `json:"id"`
	// JoinURL is the conference link (hangoutLink / onlineMeeting.joinUrl).
	JoinURL string `json:"join_url,omitempty"`
	// HTMLLink is the provider's web view of the event.
	HTMLLink string `json:"html_link,omitempty"`
}

// PlaceholderEventID marks an EventResult produced locally after the
// calendar provider failed. The interview is still recorded against it.
const PlaceholderEventID = "fallback-local"

// PlaceholderEvent returns the synthetic result used when calendar-event
// creation fails but scheduling must continue.
func PlaceholderEvent() *EventResult {
	return &EventResult{ID: PlaceholderEventID}
}

// IsPlaceholder reports whether this result came from the local fallback.
func (r *EventResult) IsPlaceholder() bool {
	return r.ID == PlaceholderEventID
}

// Message is an email message in provider-agnostic form.
type Message struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id,omitempty"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	To       []string  `json:"to,omitempty"`
	Snippet  string    `json:"snippet,omitempty"`
	Body     string    `json:"body,omitempty"`
	Date     time.Time `json:"date"`
	Unread   bool      `json:"unread,omitempty"`
	WebLink  string    `json:"web_link,omitempty"`
}

// OutboundEmail is a notification email to send.
type OutboundEmail struct {
	To      string
	Subject string
	// HTMLBody is the message body, sent as text/html.
	HTMLBody string
}

// Meeting is the normalized result of Zoom meeting creation.
type Meeting struct {
	ID      string `json:"id"`
	JoinURL string `json:"join_url"`
	Topic   string `json:"topic,omitempty"`
}

// MeetingRequest describes a scheduled meeting to create.
type MeetingRequest struct {
	Topic    string
	Agenda   string
	Start    time.Time
	Duration time.Duration
}
