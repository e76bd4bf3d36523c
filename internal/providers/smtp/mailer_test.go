package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

type stubStore struct {
	creds map[string]*domain.AccountCredentials
}

func (s *stubStore) Get(_ context.Context, accountID string) (*domain.AccountCredentials, error) {
	c, ok := s.creds[accountID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *stubStore) Update(_ context.Context, _ string, _ domain.CredentialUpdate) error {
	return nil
}

func configuredStore() *stubStore {
	return &stubStore{creds: map[string]*domain.AccountCredentials{
		"acc-1": {
			AccountID: "acc-1",
			SMTPHost:  "smtp.example.com",
			SMTPPort:  2525,
			SMTPUser:  "mailer",
			SMTPPass:  "secret",
			SMTPFrom:  "jobs@example.com",
		},
	}}
}

func TestSendEmail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewMailer(configuredStore(), Defaults{})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{
		To:       "candidate@example.com",
		Subject:  "Interview Invitation",
		HTMLBody: "<p>See you there</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "jobs@example.com", gotFrom)
	assert.Equal(t, []string{"candidate@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Interview Invitation")
	assert.Contains(t, string(gotMsg), "Content-Type: text/html")
	assert.Contains(t, string(gotMsg), "<p>See you there</p>")
}

func TestSendEmail_DefaultsSenderAndPort(t *testing.T) {
	store := configuredStore()
	store.creds["acc-1"].SMTPFrom = ""
	store.creds["acc-1"].SMTPPort = 0

	var gotAddr, gotFrom string
	m := NewMailer(store, Defaults{})
	m.send = func(addr string, _ smtp.Auth, from string, _ []string, _ []byte) error {
		gotAddr, gotFrom = addr, from
		return nil
	}

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{To: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "mailer", gotFrom)
}

func TestSendEmail_NotConfigured(t *testing.T) {
	m := NewMailer(&stubStore{creds: map[string]*domain.AccountCredentials{
		"acc-1": {AccountID: "acc-1", SMTPHost: "smtp.example.com"},
	}}, Defaults{})

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{To: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	err = m.SendEmail(context.Background(), "missing", domain.OutboundEmail{To: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSendEmail_PropagatesFailure(t *testing.T) {
	m := NewMailer(configuredStore(), Defaults{})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{To: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConfigured(t *testing.T) {
	m := NewMailer(configuredStore(), Defaults{})

	assert.True(t, m.Configured(context.Background(), "acc-1"))
	assert.False(t, m.Configured(context.Background(), "missing"))
}

func serverDefaults() Defaults {
	return Defaults{
		Host:     "relay.example.com",
		Port:     2525,
		Username: "relay",
		Password: "relaypass",
		Sender:   "noreply@example.com",
	}
}

func TestSendEmail_FallsBackToServerDefaults(t *testing.T) {
	store := &stubStore{creds: map[string]*domain.AccountCredentials{
		"acc-1": {AccountID: "acc-1"},
	}}

	var gotAddr, gotFrom string
	m := NewMailer(store, serverDefaults())
	m.send = func(addr string, _ smtp.Auth, from string, _ []string, _ []byte) error {
		gotAddr, gotFrom = addr, from
		return nil
	}

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{To: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "relay.example.com:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)

	// Unknown accounts can still send through the relay.
	err = m.SendEmail(context.Background(), "missing", domain.OutboundEmail{To: "x@example.com"})
	require.NoError(t, err)

	assert.True(t, m.Configured(context.Background(), "acc-1"))
	assert.True(t, m.Configured(context.Background(), "missing"))
}

func TestSendEmail_AccountSettingsWinOverDefaults(t *testing.T) {
	var gotAddr string
	m := NewMailer(configuredStore(), serverDefaults())
	m.send = func(addr string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAddr = addr
		return nil
	}

	err := m.SendEmail(context.Background(), "acc-1", domain.OutboundEmail{To: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
}
