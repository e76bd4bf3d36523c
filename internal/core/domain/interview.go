package domain

import "time"

// ScheduleRequest is what the HTTP layer hands to the scheduler for one
// interview booking.
type ScheduleRequest struct {
	AccountID      string          `json:"account_id"`
	CandidateID    string          `json:"candidate_id"`
	CandidateEmail string          `json:"candidate_email"`
	Summary        string          `json:"summary"`
	Description    string          `json:"description,omitempty"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Provider       MeetingProvider `json:"meeting_provider,omitempty"`
	// MeetingLink is a manually supplied join link, if any.
	MeetingLink string `json:"meeting_link,omitempty"`
}

// ScheduleOutcome reports the best-effort result of one scheduling attempt.
// The interview record is written whenever any progress was made; EmailError
// explains exactly which step, if any, degraded.
type ScheduleOutcome struct {
	Success     bool   `json:"success"`
	InterviewID string `json:"interview_id,omitempty"`
	MeetingLink string `json:"meeting_link,omitempty"`
	Location    string `json:"location,omitempty"`
	EmailSent   bool   `json:"email_sent"`
	EmailError  string `json:"email_error,omitempty"`
}

// Interview is the persisted record of one scheduling attempt. It is written
// exactly once per attempt, after meeting-link, calendar and email steps
// resolve, successfully or not.
type Interview struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	CandidateID    string    `json:"candidate_id"`
	CandidateEmail string    `json:"candidate_email"`
	Summary        string    `json:"summary"`
	Description    string    `json:"description,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MeetingLink    string    `json:"meeting_link,omitempty"`
	// Location is the human-readable label of where the interview happens,
	// e.g. "Zoom Meeting", "Microsoft Teams", "Google Meet".
	Location string `json:"location"`
	// EventID is the provider calendar event id, or PlaceholderEventID.
	EventID    string    `json:"event_id,omitempty"`
	EmailSent  bool      `json:"email_sent"`
	EmailError string    `json:"email_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Location labels for the supported meeting-link providers.
const (
	LocationZoom   = "Zoom Meeting"
	LocationTeams  = "Microsoft Teams"
	LocationMeet   = "Google Meet"
	LocationManual = "Manual Link"
	LocationNone   = "To be decided"
)
