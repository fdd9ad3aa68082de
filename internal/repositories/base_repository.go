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

type BaseRepository struct {
	pool *pgxpool.Pool
}

func NewBaseRepository(pool *pgxpool.Pool) *BaseRepository {
	return &BaseRepository{pool: pool}
}

func (r *BaseRepository) Create(base *models.Base) error {
	ctx := context.Background()

	base.Prepare()

	query := `
		INSERT INTO bases (id, user_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		base.ID,
		base.UserID,
		base.Name,
		base.Description,
		time.Now(),
	)

	return err
}

func (r *BaseRepository) GetByID(id uuid.UUID) (*models.Base, error) {
	ctx := context.Background()

	query := `SELECT id, user_id, name, description, created_at
		FROM bases WHERE id = $1`

	var base models.Base
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&base.ID,
		&base.UserID,
		&base.Name,
		&base.Description,
		&base.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &base, nil
}

// GetByUserID returns bases the user owns or is a member of.
func (r *BaseRepository) GetByUserID(userID uuid.UUID) ([]models.Base, error) {
	ctx := context.Background()

	query := `
		SELECT DISTINCT b.id, b.user_id, b.name, b.description, b.created_at
		FROM bases b
		LEFT JOIN base_members m ON m.base_id = b.id
		WHERE b.user_id = $1 OR m.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bases []models.Base
	for rows.Next() {
		var base models.Base
		err := rows.Scan(
			&base.ID,
			&base.UserID,
			&base.Name,
			&base.Description,
			&base.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}

	return bases, rows.Err()
}

func (r *BaseRepository) Update(base *models.Base) error {
	ctx := context.Background()

	query := `UPDATE bases SET name = $2, description = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, base.ID, base.Name, base.Description)
	return err
}

func (r *BaseRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM bases WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *BaseRepository) AddMember(member *models.BaseMember) error {
	ctx := context.Background()

	member.Prepare()

	query := `
		INSERT INTO base_members (id, base_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (base_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`

	_, err := r.pool.Exec(ctx, query,
		member.ID,
		member.BaseID,
		member.UserID,
		member.Role,
		time.Now(),
	)

	return err
}

func (r *BaseRepository) GetMember(baseID, userID uuid.UUID) (*models.BaseMember, error) {
	ctx := context.Background()

	query := `SELECT id, base_id, user_id, role, created_at
		FROM base_members WHERE base_id = $1 AND user_id = $2`

	var member models.BaseMember
	err := r.pool.QueryRow(ctx, query, baseID, userID).Scan(
		&member.ID,
		&member.BaseID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &member, nil
}

func (r *BaseRepository) GetMembers(baseID uuid.UUID) ([]models.BaseMember, error) {
	ctx := context.Background()

	query := `SELECT id, base_id, user_id, role, created_at
		FROM base_members WHERE base_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, baseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.BaseMember
	for rows.Next() {
		var member models.BaseMember
		err := rows.Scan(
			&member.ID,
			&member.BaseID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *BaseRepository) RemoveMember(baseID, userID uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM base_members WHERE base_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, baseID, userID)
	return err
}
