package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// SMTPMailer sends notification email outside any calendar provider. It is
// tried first in the mail fallback chain when the account has SMTP settings.
type SMTPMailer interface {
	Configured(ctx context.Context, accountID string) bool
	SendEmail(ctx context.Context, accountID string, email domain.OutboundEmail) error
}

// Scheduler orchestrates one interview booking: meeting link, calendar
// event, notification email, then exactly one persisted interview record.
// Only the meeting-link step can abort the request; everything after it
// degrades and is reported through the outcome.
type Scheduler struct {
	registry   *Registry
	creds      driven.CredentialStore
	interviews driven.InterviewStore
	smtp       SMTPMailer
	now        func() time.Time
	newID      func() string
}

// NewScheduler creates the scheduling orchestrator. smtp may be nil when no
// SMTP mailer is wired.
func NewScheduler(registry *Registry, creds driven.CredentialStore, interviews driven.InterviewStore, smtp SMTPMailer) *Scheduler {
	return &Scheduler{
		registry:   registry,
		creds:      creds,
		interviews: interviews,
		smtp:       smtp,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// linkResult carries the meeting-link step's outcome into the calendar step.
type linkResult struct {
	link     string
	location string
	// googleEvent is the Meet-enabled event created while resolving the
	// link. Reused as the calendar event so Google-only accounts do not
	// get a duplicate.
	googleEvent *domain.EventResult
}

// Schedule books an interview. The only hard failure after validation is a
// Zoom request with no usable Zoom credential and no manual link, rejected
// before anything is written.
func (s *Scheduler) Schedule(ctx context.Context, req domain.ScheduleRequest) (*domain.ScheduleOutcome, error) {
	if err := validateSchedule(req); err != nil {
		return nil, err
	}

	creds, err := s.creds.Get(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			creds = &domain.AccountCredentials{AccountID: req.AccountID}
		} else {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
	}

	lr, err := s.resolveMeetingLink(ctx, req, creds)
	if err != nil {
		return nil, err
	}

	event := s.createCalendarEvent(ctx, req, creds, lr)
	if lr.link == "" && event.JoinURL != "" {
		lr.link = event.JoinURL
		if creds.HasMicrosoft() {
			lr.location = domain.LocationTeams
		} else {
			lr.location = domain.LocationMeet
		}
	}
	if lr.location == "" {
		lr.location = domain.LocationNone
	}

	emailSent, emailErr := s.sendNotification(ctx, req, creds, lr.link)

	interview := domain.Interview{
		ID:             s.newID(),
		AccountID:      req.AccountID,
		CandidateID:    req.CandidateID,
		CandidateEmail: req.CandidateEmail,
		Summary:        req.Summary,
		Description:    req.Description,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		MeetingLink:    lr.link,
		Location:       lr.location,
		EventID:        event.ID,
		EmailSent:      emailSent,
		EmailError:     emailErr,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.interviews.Save(ctx, interview); err != nil {
		return nil, fmt.Errorf("persist interview: %w", err)
	}

	return &domain.ScheduleOutcome{
		Success:     true,
		InterviewID: interview.ID,
		MeetingLink: lr.link,
		Location:    lr.location,
		EmailSent:   emailSent,
		EmailError:  emailErr,
	}, nil
}

func validateSchedule(req domain.ScheduleRequest) error {
	switch {
	case req.AccountID == "":
		return fmt.Errorf("%w: account_id required", domain.ErrInvalidInput)
	case req.CandidateEmail == "":
		return fmt.Errorf("%w: candidate_email required", domain.ErrInvalidInput)
	case req.Summary == "":
		return fmt.Errorf("%w: summary required", domain.ErrInvalidInput)
	case req.StartTime.IsZero() || req.EndTime.IsZero():
		return fmt.Errorf("%w: start_time and end_time required", domain.ErrInvalidInput)
	case !req.EndTime.After(req.StartTime):
		return fmt.Errorf("%w: end_time must be after start_time", domain.ErrInvalidInput)
	}
	return nil
}

// resolveMeetingLink runs the meeting-link step. Zoom when requested is
// authoritative and its absence aborts; a Google Meet attempt is best
// effort and leaves the link empty on failure.
func (s *Scheduler) resolveMeetingLink(ctx context.Context, req domain.ScheduleRequest, creds *domain.AccountCredentials) (linkResult, error) {
	if req.Provider.WantsZoom() {
		meetings := s.registry.Meeting(domain.ProviderZoom)
		if meetings != nil && creds.HasZoom() {
			meeting, err := meetings.CreateMeeting(ctx, req.AccountID, domain.MeetingRequest{
				Topic:    req.Summary,
				Agenda:   req.Description,
				Start:    req.StartTime,
				Duration: req.EndTime.Sub(req.StartTime),
			})
			if err == nil {
				return linkResult{link: meeting.JoinURL, location: domain.LocationZoom}, nil
			}
			logger.Warn("schedule: zoom meeting creation failed for account %s: %v", req.AccountID, err)
			if req.MeetingLink != "" {
				return linkResult{link: req.MeetingLink, location: domain.LocationManual}, nil
			}
			return linkResult{}, fmt.Errorf("%w: zoom meeting creation failed: %w", domain.ErrNotConnected, err)
		}
		if req.MeetingLink != "" {
			return linkResult{link: req.MeetingLink, location: domain.LocationManual}, nil
		}
		return linkResult{}, fmt.Errorf("%w: zoom requested but no zoom account linked", domain.ErrNotConnected)
	}

	if req.MeetingLink != "" {
		return linkResult{link: req.MeetingLink, location: domain.LocationManual}, nil
	}

	if req.Provider.WantsGoogleMeet() && creds.HasGoogle() {
		if calendar := s.registry.Calendar(domain.ProviderGoogle); calendar != nil {
			result, err := calendar.CreateEvent(ctx, req.AccountID, domain.EventRequest{
				Summary:        req.Summary,
				Description:    req.Description,
				Start:          req.StartTime,
				End:            req.EndTime,
				Attendees:      []string{req.CandidateEmail},
				WithConference: true,
			})
			if err == nil && result.JoinURL != "" {
				return linkResult{link: result.JoinURL, location: domain.LocationMeet, googleEvent: result}, nil
			}
			if err != nil {
				logger.Warn("schedule: google meet creation failed for account %s: %v", req.AccountID, err)
			} else {
				return linkResult{googleEvent: result}, nil
			}
		}
	}

	return linkResult{}, nil
}

// createCalendarEvent runs the calendar step. Microsoft wins when linked
// and its failure degrades to a local placeholder rather than falling
// through to Google. A Google event already created while resolving the
// link is reused. Never returns nil.
func (s *Scheduler) createCalendarEvent(ctx context.Context, req domain.ScheduleRequest, creds *domain.AccountCredentials, lr linkResult) *domain.EventResult {
	eventReq := domain.EventRequest{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.StartTime,
		End:         req.EndTime,
		Attendees:   []string{req.CandidateEmail},
		MeetingLink: lr.link,
	}
	if lr.link == "" {
		eventReq.WithConference = true
	}

	if creds.HasMicrosoft() {
		if calendar := s.registry.Calendar(domain.ProviderMicrosoft); calendar != nil {
			result, err := calendar.CreateEvent(ctx, req.AccountID, eventReq)
			if err == nil {
				return result
			}
			logger.Warn("schedule: microsoft event creation failed for account %s, recording locally: %v", req.AccountID, err)
			return domain.PlaceholderEvent()
		}
	}

	if lr.googleEvent != nil {
		return lr.googleEvent
	}

	if creds.HasGoogle() {
		if calendar := s.registry.Calendar(domain.ProviderGoogle); calendar != nil {
			result, err := calendar.CreateEvent(ctx, req.AccountID, eventReq)
			if err == nil {
				return result
			}
			logger.Warn("schedule: google event creation failed for account %s, recording locally: %v", req.AccountID, err)
		}
	}

	return domain.PlaceholderEvent()
}

// sendNotification runs the mail step: SMTP, then Microsoft, then Google.
// First success stops the chain; when every attempt fails the last error
// string is reported.
func (s *Scheduler) sendNotification(ctx context.Context, req domain.ScheduleRequest, creds *domain.AccountCredentials, link string) (bool, string) {
	email := domain.OutboundEmail{
		To:       req.CandidateEmail,
		Subject:  "Interview Invitation: " + req.Summary,
		HTMLBody: invitationBody(req, link),
	}

	lastErr := "no email provider configured"

	if s.smtp != nil && s.smtp.Configured(ctx, req.AccountID) {
		err := s.smtp.SendEmail(ctx, req.AccountID, email)
		if err == nil {
			return true, ""
		}
		logger.Warn("schedule: smtp send failed for account %s: %v", req.AccountID, err)
		lastErr = fmt.Sprintf("smtp: %v", err)
	}

	if creds.HasMicrosoft() {
		if mail := s.registry.Mail(domain.ProviderMicrosoft); mail != nil {
			err := mail.SendEmail(ctx, req.AccountID, email)
			if err == nil {
				return true, ""
			}
			logger.Warn("schedule: microsoft send failed for account %s: %v", req.AccountID, err)
			if errors.Is(err, domain.ErrRateLimited) {
				lastErr = domain.OutlookSendLimitMessage
			} else {
				lastErr = fmt.Sprintf("microsoft: %v", err)
			}
		}
	}

	if creds.HasGoogle() {
		if mail := s.registry.Mail(domain.ProviderGoogle); mail != nil {
			err := mail.SendEmail(ctx, req.AccountID, email)
			if err == nil {
				return true, ""
			}
			logger.Warn("schedule: google send failed for account %s: %v", req.AccountID, err)
			lastErr = fmt.Sprintf("google: %v", err)
		}
	}

	return false, lastErr
}

// invitationBody renders the notification email.
func invitationBody(req domain.ScheduleRequest, link string) string {
	body := fmt.Sprintf(
		"<html><body>"+
			"<h2>%s</h2>"+
			"<p>You have been invited to an interview.</p>"+
			"<p><b>When:</b> %s &ndash; %s (UTC)</p>",
		req.Summary,
		req.StartTime.UTC().Format("Mon, 2 Jan 2006 15:04"),
		req.EndTime.UTC().Format("15:04"),
	)
	if link != "" {
		body += fmt.Sprintf("<p><b>Join:</b> <a href=%q>%s</a></p>", link, link)
	}
	if req.Description != "" {
		body += "<p>" + req.Description + "</p>"
	}
	body += "</body></html>"
	return body
}
