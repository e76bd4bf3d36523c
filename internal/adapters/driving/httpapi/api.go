package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
)

// handleSchedule books an interview through the orchestrator.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req domain.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	outcome, err := s.scheduler.Schedule(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// activeCalendar picks the account's active calendar capability,
// Microsoft over Google.
func (s *Server) activeCalendar(r *http.Request, accountID string) (driven.CalendarClient, error) {
	creds, err := s.creds.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, err
	}

	if creds.HasMicrosoft() {
		if cal := s.registry.Calendar(domain.ProviderMicrosoft); cal != nil {
			return cal, nil
		}
	}
	if creds.HasGoogle() {
		if cal := s.registry.Calendar(domain.ProviderGoogle); cal != nil {
			return cal, nil
		}
	}
	return nil, domain.ErrNotConnected
}

// activeMail picks the account's active mail capability, Microsoft over
// Google.
func (s *Server) activeMail(r *http.Request, accountID string) (driven.MailClient, error) {
	creds, err := s.creds.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, err
	}

	if creds.HasMicrosoft() {
		if mail := s.registry.Mail(domain.ProviderMicrosoft); mail != nil {
			return mail, nil
		}
	}
	if creds.HasGoogle() {
		if mail := s.registry.Mail(domain.ProviderGoogle); mail != nil {
			return mail, nil
		}
	}
	return nil, domain.ErrNotConnected
}

// handleListEvents lists upcoming calendar events for an account. Optional
// from/to are RFC 3339; the default window is the next 7 days.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, fmt.Errorf("%w: account_id required", domain.ErrInvalidInput))
		return
	}

	from := time.Now().UTC()
	to := from.AddDate(0, 0, 7)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid from: %v", domain.ErrInvalidInput, err))
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid to: %v", domain.ErrInvalidInput, err))
			return
		}
		to = t
	}

	cal, err := s.activeCalendar(r, accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := cal.ListEvents(r.Context(), accountID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// handleListMessages lists recent mail, optionally filtered by q.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, fmt.Errorf("%w: account_id required", domain.ErrInvalidInput))
		return
	}

	max := 25
	if v := r.URL.Query().Get("max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}

	mail, err := s.activeMail(r, accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	messages, err := mail.ListMessages(r.Context(), accountID, r.URL.Query().Get("q"), max)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleGetThread returns every message in one conversation.
func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, fmt.Errorf("%w: account_id required", domain.ErrInvalidInput))
		return
	}

	threadID := chi.URLParam(r, "id")
	if threadID == "" {
		writeError(w, fmt.Errorf("%w: thread id required", domain.ErrInvalidInput))
		return
	}

	mail, err := s.activeMail(r, accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	messages, err := mail.GetThread(r.Context(), accountID, threadID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
