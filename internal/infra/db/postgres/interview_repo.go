package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/model"
	"ai-interview-service/internal/domain/ports/repository"
	"ai-interview-service/internal/infra/security"
)

var _ repository.InterviewRepository = (*interviewRepo)(nil)

type interviewRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService // nil means transcripts stored in plaintext
}

// NewInterviewRepo returns a Postgres-backed interview repository. When enc
// is non-nil, user_text and ai_response_text are encrypted at rest.
func NewInterviewRepo(pool *pgxpool.Pool, enc *security.EncryptionService) repository.InterviewRepository {
	return &interviewRepo{pool: pool, enc: enc}
}

func (r *interviewRepo) Save(ctx context.Context, rec *model.InterviewRecord) (string, error) {
	const q = `
INSERT INTO interviews (id, user_audio_url, user_text, ai_response_text, ai_audio_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	id := ulid.Make().String()
	createdAt := time.Now().UTC()

	userText, aiText := rec.UserText, rec.AIResponseText
	if r.enc != nil {
		var err error
		if userText, err = r.enc.Encrypt(userText); err != nil {
			return "", fmt.Errorf("%w: encrypt user text: %v", domain.ErrPersistenceFailed, err)
		}
		if aiText, err = r.enc.Encrypt(aiText); err != nil {
			return "", fmt.Errorf("%w: encrypt ai text: %v", domain.ErrPersistenceFailed, err)
		}
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: acquire connection: %v", domain.ErrPersistenceFailed, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, q, id, rec.UserAudioURL, userText, aiText, rec.AIAudioURL, createdAt); err != nil {
		return "", fmt.Errorf("%w: insert interview: %v", domain.ErrPersistenceFailed, err)
	}

	rec.ID = id
	rec.CreatedAt = createdAt
	return id, nil
}

func (r *interviewRepo) ListAll(ctx context.Context) ([]*model.InterviewRecord, error) {
	const q = `
SELECT id, user_audio_url, user_text, ai_response_text, ai_audio_url, created_at
FROM interviews
ORDER BY created_at DESC`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", domain.ErrPersistenceFailed, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query interviews: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var out []*model.InterviewRecord
	for rows.Next() {
		rec := &model.InterviewRecord{}
		if err := rows.Scan(&rec.ID, &rec.UserAudioURL, &rec.UserText, &rec.AIResponseText, &rec.AIAudioURL, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan interview row: %v", domain.ErrPersistenceFailed, err)
		}
		if r.enc != nil {
			if rec.UserText, err = r.enc.Decrypt(rec.UserText); err != nil {
				return nil, fmt.Errorf("%w: decrypt user text: %v", domain.ErrPersistenceFailed, err)
			}
			if rec.AIResponseText, err = r.enc.Decrypt(rec.AIResponseText); err != nil {
				return nil, fmt.Errorf("%w: decrypt ai text: %v", domain.ErrPersistenceFailed, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate interviews: %v", domain.ErrPersistenceFailed, err)
	}
	return out, nil
}
