package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// mockCredStore is an in-memory credential store that records updates.
type mockCredStore struct {
	creds   map[string]*domain.AccountCredentials
	updates []domain.CredentialUpdate
}

func newMockCredStore() *mockCredStore {
	return &mockCredStore{creds: make(map[string]*domain.AccountCredentials)}
}

func (m *mockCredStore) Get(_ context.Context, accountID string) (*domain.AccountCredentials, error) {
	c, ok := m.creds[accountID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCredStore) Update(_ context.Context, accountID string, update domain.CredentialUpdate) error {
	m.updates = append(m.updates, update)
	c, ok := m.creds[accountID]
	if !ok {
		c = &domain.AccountCredentials{AccountID: accountID}
		m.creds[accountID] = c
	}
	if update.ZoomRefreshToken != nil {
		c.ZoomRefreshToken = *update.ZoomRefreshToken
	}
	if update.GoogleRefreshToken != nil {
		c.GoogleRefreshToken = *update.GoogleRefreshToken
	}
	if update.MicrosoftRefreshToken != nil {
		c.MicrosoftRefreshToken = *update.MicrosoftRefreshToken
	}
	return nil
}

// mockInterviewStore records saved interviews.
type mockInterviewStore struct {
	saved []domain.Interview
}

func (m *mockInterviewStore) Save(_ context.Context, interview domain.Interview) error {
	m.saved = append(m.saved, interview)
	return nil
}

func (m *mockInterviewStore) ListByCandidate(_ context.Context, candidateID string) ([]domain.Interview, error) {
	var out []domain.Interview
	for _, iv := range m.saved {
		if iv.CandidateID == candidateID {
			out = append(out, iv)
		}
	}
	return out, nil
}

// mockCalendar implements driven.CalendarClient with a shared call log.
type mockCalendar struct {
	name   string
	log    *[]string
	result *domain.EventResult
	err    error
}

func (m *mockCalendar) ListEvents(_ context.Context, _ string, _, _ time.Time) ([]domain.Event, error) {
	*m.log = append(*m.log, m.name+":list")
	return nil, m.err
}

func (m *mockCalendar) CreateEvent(_ context.Context, _ string, _ domain.EventRequest) (*domain.EventResult, error) {
	*m.log = append(*m.log, m.name+":create-event")
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockMail implements driven.MailClient.
type mockMail struct {
	name string
	log  *[]string
	err  error
}

func (m *mockMail) SendEmail(_ context.Context, _ string, _ domain.OutboundEmail) error {
	*m.log = append(*m.log, m.name+":send")
	return m.err
}

func (m *mockMail) ListMessages(_ context.Context, _, _ string, _ int) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockMail) GetThread(_ context.Context, _, _ string) ([]domain.Message, error) {
	return nil, nil
}

// mockMeeting implements driven.MeetingClient. When rotated is set it
// persists a rotated refresh token through the store before returning, the
// way the real Zoom client does.
type mockMeeting struct {
	log     *[]string
	store   *mockCredStore
	rotated string
	meeting *domain.Meeting
	err     error
}

func (m *mockMeeting) CreateMeeting(ctx context.Context, accountID string, _ domain.MeetingRequest) (*domain.Meeting, error) {
	if m.err != nil {
		*m.log = append(*m.log, "zoom:create-meeting")
		return nil, m.err
	}
	if m.rotated != "" {
		_ = m.store.Update(ctx, accountID, domain.CredentialUpdate{ZoomRefreshToken: &m.rotated})
		*m.log = append(*m.log, "zoom:persist-rotation")
	}
	*m.log = append(*m.log, "zoom:create-meeting")
	return m.meeting, nil
}

// mockSMTP implements the SMTPMailer seam.
type mockSMTP struct {
	configured bool
	log        *[]string
	err        error
}

func (m *mockSMTP) Configured(_ context.Context, _ string) bool {
	return m.configured
}

func (m *mockSMTP) SendEmail(_ context.Context, _ string, _ domain.OutboundEmail) error {
	*m.log = append(*m.log, "smtp:send")
	return m.err
}

func baseRequest() domain.ScheduleRequest {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	return domain.ScheduleRequest{
		AccountID:      "acc-1",
		CandidateID:    "cand-1",
		CandidateEmail: "candidate@example.com",
		Summary:        "Backend Engineer Interview",
		StartTime:      start,
		EndTime:        start.Add(45 * time.Minute),
		Provider:       domain.MeetingAuto,
	}
}

func TestSchedule_GoogleOnlyNeverTouchesOtherProviders(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:          "acc-1",
		GoogleRefreshToken: "g-refresh",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderGoogle, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "google", log: &log, result: &domain.EventResult{ID: "evt-1", JoinURL: "https://meet.google.com/abc"}},
		&mockMail{name: "google", log: &log},
	})
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, err: errors.New("should not be called")},
		&mockMail{name: "microsoft", log: &log, err: errors.New("should not be called")},
	})
	registry.Register(domain.ProviderZoom, &mockMeeting{log: &log, err: errors.New("should not be called")})

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "https://meet.google.com/abc", outcome.MeetingLink)
	assert.Equal(t, domain.LocationMeet, outcome.Location)
	for _, call := range log {
		assert.NotContains(t, call, "microsoft")
		assert.NotContains(t, call, "zoom")
	}
}

func TestSchedule_ZoomRotationPersistedBeforeCalendar(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:             "acc-1",
		MicrosoftRefreshToken: "ms-refresh",
		ZoomRefreshToken:      "zoom-old",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderZoom, &mockMeeting{
		log:     &log,
		store:   store,
		rotated: "zoom-new",
		meeting: &domain.Meeting{ID: "123", JoinURL: "https://zoom.us/j/123"},
	})
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, result: &domain.EventResult{ID: "evt-ms"}},
		&mockMail{name: "microsoft", log: &log},
	})

	req := baseRequest()
	req.Provider = domain.MeetingZoom

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "https://zoom.us/j/123", outcome.MeetingLink)
	assert.Equal(t, domain.LocationZoom, outcome.Location)
	assert.Equal(t, "zoom-new", store.creds["acc-1"].ZoomRefreshToken)

	require.Equal(t, []string{"zoom:persist-rotation", "zoom:create-meeting", "microsoft:create-event", "microsoft:send"}, log)
}

func TestSchedule_MicrosoftCalendarFailureDegradesToPlaceholder(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:             "acc-1",
		MicrosoftRefreshToken: "ms-refresh",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, err: errors.New("graph 503")},
		&mockMail{name: "microsoft", log: &log},
	})

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.True(t, outcome.EmailSent)
	require.Len(t, interviews.saved, 1)
	saved := interviews.saved[0]
	assert.Equal(t, domain.PlaceholderEventID, saved.EventID)
	assert.NotEmpty(t, saved.Location)
}

func TestSchedule_MailFallbackSurfacesLastError(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:             "acc-1",
		GoogleRefreshToken:    "g-refresh",
		MicrosoftRefreshToken: "ms-refresh",
		SMTPHost:              "smtp.example.com",
		SMTPUser:              "mailer",
		SMTPPass:              "secret",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, result: &domain.EventResult{ID: "evt-ms", JoinURL: "https://teams.microsoft.com/l/meetup"}},
		&mockMail{name: "microsoft", log: &log, err: errors.New("mailbox quota")},
	})
	registry.Register(domain.ProviderGoogle, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "google", log: &log, result: &domain.EventResult{ID: "evt-g"}},
		&mockMail{name: "google", log: &log, err: errors.New("gmail quota")},
	})
	mailer := &mockSMTP{configured: true, log: &log, err: errors.New("connection refused")}

	req := baseRequest()
	req.Provider = domain.MeetingMicrosoft

	s := NewScheduler(registry, store, interviews, mailer)
	outcome, err := s.Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, outcome.EmailSent)
	assert.Contains(t, outcome.EmailError, "google")
	assert.Contains(t, outcome.EmailError, "gmail quota")
	require.Equal(t, []string{"microsoft:create-event", "smtp:send", "microsoft:send", "google:send"}, log)
}

func TestSchedule_MicrosoftRateLimitMessageIsDistinct(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:             "acc-1",
		MicrosoftRefreshToken: "ms-refresh",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, result: &domain.EventResult{ID: "evt-ms"}},
		&mockMail{name: "microsoft", log: &log, err: fmt.Errorf("%w: outlook", domain.ErrRateLimited)},
	})

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.False(t, outcome.EmailSent)
	assert.Equal(t, "Outlook daily send limit reached, try again later", outcome.EmailError)
}

func TestSchedule_MicrosoftOnlyAutoGetsTeamsLink(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:             "acc-1",
		MicrosoftRefreshToken: "ms-refresh",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderMicrosoft, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "microsoft", log: &log, result: &domain.EventResult{
			ID:      "evt-ms",
			JoinURL: "https://teams.microsoft.com/l/meetup-join/xyz",
		}},
		&mockMail{name: "microsoft", log: &log},
	})

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://teams.microsoft.com/l/meetup-join/xyz", outcome.MeetingLink)
	assert.Equal(t, domain.LocationTeams, outcome.Location)
	assert.True(t, outcome.EmailSent)
}

func TestSchedule_ZoomWithoutCredentialAbortsBeforePersistence(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{AccountID: "acc-1"}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	registry.Register(domain.ProviderZoom, &mockMeeting{log: &log, err: errors.New("should not be called")})

	req := baseRequest()
	req.Provider = domain.MeetingZoom

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Nil(t, outcome)
	assert.Empty(t, interviews.saved)
	assert.Empty(t, log)
}

func TestSchedule_ManualLinkUsedDirectly(t *testing.T) {
	var log []string
	store := newMockCredStore()
	store.creds["acc-1"] = &domain.AccountCredentials{
		AccountID:          "acc-1",
		GoogleRefreshToken: "g-refresh",
	}
	interviews := &mockInterviewStore{}

	registry := NewRegistry()
	google := &mockCalendar{name: "google", log: &log, result: &domain.EventResult{ID: "evt-g"}}
	registry.Register(domain.ProviderGoogle, struct {
		*mockCalendar
		*mockMail
	}{google, &mockMail{name: "google", log: &log}})

	req := baseRequest()
	req.Provider = domain.MeetingManual
	req.MeetingLink = "https://whereby.com/hireflow"

	s := NewScheduler(registry, store, interviews, nil)
	outcome, err := s.Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "https://whereby.com/hireflow", outcome.MeetingLink)
	assert.Equal(t, domain.LocationManual, outcome.Location)
	// One calendar event embedding the manual link, no Meet request.
	assert.Equal(t, []string{"google:create-event", "google:send"}, log)
}

func TestSchedule_ValidatesInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ScheduleRequest)
	}{
		{name: "missing account", mutate: func(r *domain.ScheduleRequest) { r.AccountID = "" }},
		{name: "missing email", mutate: func(r *domain.ScheduleRequest) { r.CandidateEmail = "" }},
		{name: "missing summary", mutate: func(r *domain.ScheduleRequest) { r.Summary = "" }},
		{name: "zero times", mutate: func(r *domain.ScheduleRequest) { r.StartTime = time.Time{} }},
		{name: "end before start", mutate: func(r *domain.ScheduleRequest) { r.EndTime = r.StartTime.Add(-time.Hour) }},
	}

	s := NewScheduler(NewRegistry(), newMockCredStore(), &mockInterviewStore{}, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			_, err := s.Schedule(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
