package httpapi

import (
	"fmt"
	"net/http"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// handleConnect redirects the browser to the provider's authorization URL.
// The account id rides through the redirect as OAuth state.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	provider, err := providerFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, fmt.Errorf("%w: account_id required", domain.ErrInvalidInput))
		return
	}

	auth := s.registry.Auth(provider)
	if auth == nil {
		writeError(w, fmt.Errorf("%w: %s", domain.ErrNotConfigured, provider))
		return
	}

	url, err := auth.AuthURL(accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// handleCallback completes the OAuth flow. Connecting Google clears any
// Microsoft credential and vice versa; only one of the two identities is
// active for calendar and mail routing.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := providerFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	code := r.URL.Query().Get("code")
	accountID := r.URL.Query().Get("state")
	if code == "" || accountID == "" {
		writeError(w, fmt.Errorf("%w: code and state required", domain.ErrInvalidInput))
		return
	}

	auth := s.registry.Auth(provider)
	if auth == nil {
		writeError(w, fmt.Errorf("%w: %s", domain.ErrNotConfigured, provider))
		return
	}

	if err := auth.ExchangeCode(r.Context(), accountID, code); err != nil {
		writeError(w, err)
		return
	}

	switch provider {
	case domain.ProviderGoogle:
		if err := s.creds.Update(r.Context(), accountID, domain.ClearMicrosoft()); err != nil {
			logger.Error("auth: failed to clear microsoft credential for account %s: %v", accountID, err)
		}
	case domain.ProviderMicrosoft:
		if err := s.creds.Update(r.Context(), accountID, domain.ClearGoogle()); err != nil {
			logger.Error("auth: failed to clear google credential for account %s: %v", accountID, err)
		}
	}

	logger.Info("auth: connected %s for account %s", provider, accountID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"provider": string(provider),
	})
}

// handleDisconnect nulls out the provider's credential columns.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	provider, err := providerFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, fmt.Errorf("%w: account_id required", domain.ErrInvalidInput))
		return
	}

	var update domain.CredentialUpdate
	switch provider {
	case domain.ProviderGoogle:
		update = domain.ClearGoogle()
	case domain.ProviderMicrosoft:
		update = domain.ClearMicrosoft()
	case domain.ProviderZoom:
		update = domain.ClearZoom()
	}

	if err := s.creds.Update(r.Context(), accountID, update); err != nil {
		writeError(w, fmt.Errorf("clearing credentials: %w", err))
		return
	}

	logger.Info("auth: disconnected %s for account %s", provider, accountID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"provider": string(provider),
	})
}
