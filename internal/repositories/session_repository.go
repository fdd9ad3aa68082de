package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gridbase/internal/models"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(session *models.Session) error {
	ctx := context.Background()

	session.Prepare()

	query := `
		INSERT INTO sessions (id, user_id, refresh_token, is_revoked, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.IsRevoked,
		time.Now(),
		session.ExpiresAt,
	)

	return err
}

func (r *SessionRepository) FindByRefreshToken(token string) (*models.Session, error) {
	ctx := context.Background()

	query := `SELECT id, user_id, refresh_token, is_revoked, created_at, expires_at
		FROM sessions WHERE refresh_token = $1`

	var session models.Session
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.IsRevoked,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *SessionRepository) Revoke(id uuid.UUID) error {
	ctx := context.Background()

	query := `UPDATE sessions SET is_revoked = true WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *SessionRepository) RevokeAllForUser(userID uuid.UUID) error {
	ctx := context.Background()

	query := `UPDATE sessions SET is_revoked = true WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *SessionRepository) DeleteExpired() error {
	ctx := context.Background()

	query := `DELETE FROM sessions WHERE expires_at < NOW()`
	_, err := r.pool.Exec(ctx, query)
	return err
}
