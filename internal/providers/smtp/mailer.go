// Package smtp sends notification emails through an account's own SMTP
// server. It is the preferred mail channel when configured, since it avoids
// the daily send limits of the Google and Microsoft APIs.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// Defaults are server-level SMTP settings. Accounts without per-account SMTP
// columns fall back to them.
type Defaults struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

func (d Defaults) usable() bool {
	return d.Host != "" && d.Username != "" && d.Password != ""
}

// settings are the resolved values for one send.
type settings struct {
	host string
	port int
	user string
	pass string
	from string
}

// Mailer sends email over SMTP using per-account settings from the
// credential store, with server-level defaults as fallback.
type Mailer struct {
	store    driven.CredentialStore
	defaults Defaults

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a Mailer over the given credential store. defaults may be
// the zero value when no server-level SMTP is configured.
func NewMailer(store driven.CredentialStore, defaults Defaults) *Mailer {
	return &Mailer{
		store:    store,
		defaults: defaults,
		send:     smtp.SendMail,
	}
}

// resolve picks the account's own settings when complete, otherwise the
// server defaults. Returns ErrNotConfigured when neither is usable.
func (m *Mailer) resolve(ctx context.Context, accountID string) (settings, error) {
	creds, err := m.store.Get(ctx, accountID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return settings{}, fmt.Errorf("load credentials: %w", err)
	}

	if creds != nil && creds.HasSMTP() {
		return settings{
			host: creds.SMTPHost,
			port: creds.SMTPPort,
			user: creds.SMTPUser,
			pass: creds.SMTPPass,
			from: creds.SMTPFrom,
		}, nil
	}

	if m.defaults.usable() {
		return settings{
			host: m.defaults.Host,
			port: m.defaults.Port,
			user: m.defaults.Username,
			pass: m.defaults.Password,
			from: m.defaults.Sender,
		}, nil
	}

	return settings{}, fmt.Errorf("%w: smtp", domain.ErrNotConfigured)
}

// Configured reports whether the account can send over SMTP, through its own
// settings or the server defaults.
func (m *Mailer) Configured(ctx context.Context, accountID string) bool {
	_, err := m.resolve(ctx, accountID)
	return err == nil
}

// SendEmail sends an HTML email through the resolved SMTP server.
func (m *Mailer) SendEmail(ctx context.Context, accountID string, email domain.OutboundEmail) error {
	st, err := m.resolve(ctx, accountID)
	if err != nil {
		return err
	}

	sender := st.from
	if sender == "" {
		sender = st.user
	}

	port := st.port
	if port == 0 {
		port = 587
	}
	addr := st.host + ":" + strconv.Itoa(port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, email.To, email.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			email.HTMLBody,
	)

	auth := smtp.PlainAuth("", st.user, st.pass, st.host)
	if err := m.send(addr, auth, sender, []string{email.To}, msg); err != nil {
		return fmt.Errorf("smtp send via %s: %w", addr, err)
	}

	logger.Debug("smtp: sent email to %s via %s", email.To, addr)
	return nil
}
