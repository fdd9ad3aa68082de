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

type TableRepository struct {
	pool *pgxpool.Pool
}

func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

func (r *TableRepository) Create(table *models.Table) error {
	ctx := context.Background()

	table.Prepare()

	query := `
		INSERT INTO tables (id, base_id, user_id, name, description, access_rule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`

	accessRule := table.AccessRule
	if accessRule == nil {
		accessRule = models.TableAccessRule{}
	}

	_, err := r.pool.Exec(ctx, query,
		table.ID,
		nullableUUID(table.BaseID),
		table.UserID,
		table.Name,
		table.Description,
		accessRule,
		time.Now(),
	)

	return err
}

func (r *TableRepository) GetByID(id uuid.UUID) (*models.Table, error) {
	ctx := context.Background()

	query := `SELECT id, base_id, user_id, name, description, access_rule, created_at, updated_at
		FROM tables WHERE id = $1`

	table, err := scanTable(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return table, nil
}

func (r *TableRepository) GetByUserID(userID uuid.UUID) ([]models.Table, error) {
	ctx := context.Background()

	query := `SELECT id, base_id, user_id, name, description, access_rule, created_at, updated_at
		FROM tables WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryTables(ctx, query, userID)
}

func (r *TableRepository) GetByBaseID(baseID uuid.UUID) ([]models.Table, error) {
	ctx := context.Background()

	query := `SELECT id, base_id, user_id, name, description, access_rule, created_at, updated_at
		FROM tables WHERE base_id = $1 ORDER BY created_at ASC`

	return r.queryTables(ctx, query, baseID)
}

func (r *TableRepository) Update(table *models.Table) error {
	ctx := context.Background()

	query := `
		UPDATE tables SET name = $2, description = $3, access_rule = $4, updated_at = $5
		WHERE id = $1
	`

	accessRule := table.AccessRule
	if accessRule == nil {
		accessRule = models.TableAccessRule{}
	}

	_, err := r.pool.Exec(ctx, query,
		table.ID,
		table.Name,
		table.Description,
		accessRule,
		time.Now(),
	)

	return err
}

func (r *TableRepository) Touch(id uuid.UUID) error {
	ctx := context.Background()

	query := `UPDATE tables SET updated_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, time.Now())
	return err
}

func (r *TableRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM tables WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *TableRepository) queryTables(ctx context.Context, query string, args ...any) ([]models.Table, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *table)
	}

	return tables, rows.Err()
}

func scanTable(row pgx.Row) (*models.Table, error) {
	var table models.Table
	var baseID *uuid.UUID
	err := row.Scan(
		&table.ID,
		&baseID,
		&table.UserID,
		&table.Name,
		&table.Description,
		&table.AccessRule,
		&table.CreatedAt,
		&table.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if baseID != nil {
		table.BaseID = *baseID
	}
	return &table, nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
