// Package sqlite is the SQLite-backed storage adapter. A single Store owns
// the connection and hands out typed wrappers for the driven store ports.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// credential and interview store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.hireflow/data/hireflow.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hireflow", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "hireflow.db")

	// WAL mode for better concurrency under parallel scheduling requests
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CredentialStore returns a CredentialStore interface backed by this store.
func (s *Store) CredentialStore() driven.CredentialStore {
	return &credentialStore{store: s}
}

// InterviewStore returns an InterviewStore interface backed by this store.
func (s *Store) InterviewStore() driven.InterviewStore {
	return &interviewStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Credential Store ====================

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// Get loads the credential row for an account.
func (c *credentialStore) Get(ctx context.Context, accountID string) (*domain.AccountCredentials, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT account_id, google_refresh_token, microsoft_refresh_token,
		       microsoft_cache, microsoft_token_response, zoom_refresh_token,
		       smtp_host, smtp_port, smtp_user, smtp_pass, smtp_from,
		       created_at, updated_at
		FROM credentials WHERE account_id = ?`, accountID)

	var creds domain.AccountCredentials
	err := row.Scan(&creds.AccountID, &creds.GoogleRefreshToken,
		&creds.MicrosoftRefreshToken, &creds.MicrosoftCache,
		&creds.MicrosoftTokenResponse, &creds.ZoomRefreshToken,
		&creds.SMTPHost, &creds.SMTPPort, &creds.SMTPUser, &creds.SMTPPass,
		&creds.SMTPFrom, &creds.CreatedAt, &creds.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	return &creds, nil
}

// Update applies a partial update, creating the row if it does not exist.
// Only the columns named by non-nil update fields change.
func (c *credentialStore) Update(ctx context.Context, accountID string, update domain.CredentialUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO credentials (account_id) VALUES (?)", accountID); err != nil {
		return fmt.Errorf("ensuring credential row: %w", err)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.GoogleRefreshToken != nil {
		add("google_refresh_token", *update.GoogleRefreshToken)
	}
	if update.MicrosoftRefreshToken != nil {
		add("microsoft_refresh_token", *update.MicrosoftRefreshToken)
	}
	if update.MicrosoftCache != nil {
		add("microsoft_cache", *update.MicrosoftCache)
	}
	if update.MicrosoftTokenResponse != nil {
		add("microsoft_token_response", *update.MicrosoftTokenResponse)
	}
	if update.ZoomRefreshToken != nil {
		add("zoom_refresh_token", *update.ZoomRefreshToken)
	}
	if update.SMTPHost != nil {
		add("smtp_host", *update.SMTPHost)
	}
	if update.SMTPPort != nil {
		add("smtp_port", *update.SMTPPort)
	}
	if update.SMTPUser != nil {
		add("smtp_user", *update.SMTPUser)
	}
	if update.SMTPPass != nil {
		add("smtp_pass", *update.SMTPPass)
	}
	if update.SMTPFrom != nil {
		add("smtp_from", *update.SMTPFrom)
	}

	add("updated_at", time.Now().UTC())
	args = append(args, accountID)

	query := "UPDATE credentials SET " + strings.Join(sets, ", ") + " WHERE account_id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating credentials: %w", err)
	}

	return tx.Commit()
}

// ==================== Interview Store ====================

// interviewStore implements driven.InterviewStore.
type interviewStore struct {
	store *Store
}

var _ driven.InterviewStore = (*interviewStore)(nil)

// Save stores one interview record.
func (i *interviewStore) Save(ctx context.Context, interview domain.Interview) error {
	_, err := i.store.db.ExecContext(ctx, `
		INSERT INTO interviews (id, account_id, candidate_id, candidate_email,
			summary, description, start_time, end_time, meeting_link,
			location, event_id, email_sent, email_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		interview.ID, interview.AccountID, interview.CandidateID,
		interview.CandidateEmail, interview.Summary, interview.Description,
		interview.StartTime.UTC(), interview.EndTime.UTC(),
		interview.MeetingLink, interview.Location, interview.EventID,
		interview.EmailSent, interview.EmailError, interview.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving interview: %w", err)
	}
	return nil
}

// ListByCandidate returns a candidate's interviews, newest first.
func (i *interviewStore) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Interview, error) {
	rows, err := i.store.db.QueryContext(ctx, `
		SELECT id, account_id, candidate_id, candidate_email, summary,
		       description, start_time, end_time, meeting_link, location,
		       event_id, email_sent, email_error, created_at
		FROM interviews WHERE candidate_id = ?
		ORDER BY start_time DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("querying interviews: %w", err)
	}
	defer rows.Close()

	var interviews []domain.Interview
	for rows.Next() {
		var iv domain.Interview
		if err := rows.Scan(&iv.ID, &iv.AccountID, &iv.CandidateID,
			&iv.CandidateEmail, &iv.Summary, &iv.Description, &iv.StartTime,
			&iv.EndTime, &iv.MeetingLink, &iv.Location, &iv.EventID,
			&iv.EmailSent, &iv.EmailError, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interview: %w", err)
		}
		interviews = append(interviews, iv)
	}

	return interviews, rows.Err()
}
