package domain

// ProviderType identifies an external calendar/mail provider.
type ProviderType string

const (
	// ProviderGoogle is for Google services (Calendar, Gmail, Meet).
	ProviderGoogle ProviderType = "google"
	// ProviderMicrosoft is for Microsoft 365 services (Outlook mail, Calendar, Teams).
	ProviderMicrosoft ProviderType = "microsoft"
	// ProviderZoom is for Zoom meeting-link generation only.
	ProviderZoom ProviderType = "zoom"
	// ProviderSMTP is for outbound mail via a custom SMTP server only.
	ProviderSMTP ProviderType = "smtp"
)

// MeetingProvider selects how the join link for an interview is produced.
// It is supplied by the caller on each scheduling request.
type MeetingProvider string

const (
	// MeetingAuto lets the backend pick based on the connected identity.
	MeetingAuto MeetingProvider = "auto"
	// MeetingGoogle requests a Google Meet link.
	MeetingGoogle MeetingProvider = "google"
	// MeetingMicrosoft requests a Teams online meeting.
	MeetingMicrosoft MeetingProvider = "microsoft"
	// MeetingTeams is an alias callers use for Microsoft online meetings.
	MeetingTeams MeetingProvider = "teams"
	// MeetingZoom requests a Zoom meeting.
	MeetingZoom MeetingProvider = "zoom"
	// MeetingManual means the caller supplies the link themselves.
	MeetingManual MeetingProvider = "manual"
)

// WantsZoom reports whether the request explicitly asked for a Zoom meeting.
func (m MeetingProvider) WantsZoom() bool {
	return m == MeetingZoom
}

// WantsGoogleMeet reports whether a Google Meet link should be attempted.
// Both "auto" and "google" resolve to Meet when a Google identity exists.
func (m MeetingProvider) WantsGoogleMeet() bool {
	return m == MeetingAuto || m == MeetingGoogle || m == ""
}
