package repository

import (
	"context"

	"ai-interview-service/internal/domain/model"
)

// InterviewRepository persists completed interview exchanges.
type InterviewRepository interface {
	// Save stores a new record, assigning its ID and CreatedAt, and
	// returns the assigned ID.
	Save(ctx context.Context, rec *model.InterviewRecord) (id string, err error)

	// ListAll returns every record ordered by CreatedAt descending.
	ListAll(ctx context.Context) ([]*model.InterviewRecord, error)
}
