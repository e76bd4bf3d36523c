package driven

import (
	"context"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// InterviewStore persists interview scheduling records.
type InterviewStore interface {
	// Save stores one interview record. Called exactly once per scheduling
	// attempt, after every step resolved.
	Save(ctx context.Context, interview domain.Interview) error

	// ListByCandidate returns interviews for a candidate, newest first.
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.Interview, error)
}
