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

type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

func (r *RecordRepository) Create(record *models.Record) error {
	ctx := context.Background()

	record.Prepare()

	query := `
		INSERT INTO records (id, table_id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.TableID,
		record.UserID,
		record.Data,
		time.Now(),
	)

	return err
}

// BulkCreate inserts every record in one transaction; either all land or
// none do.
func (r *RecordRepository) BulkCreate(records []*models.Record) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO records (id, table_id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	now := time.Now()
	for _, record := range records {
		record.Prepare()
		if _, err := tx.Exec(ctx, query,
			record.ID,
			record.TableID,
			record.UserID,
			record.Data,
			now,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RecordRepository) GetByID(id uuid.UUID) (*models.Record, error) {
	ctx := context.Background()

	query := `SELECT id, table_id, user_id, data, created_at, updated_at
		FROM records WHERE id = $1`

	var record models.Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.TableID,
		&record.UserID,
		&record.Data,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

func (r *RecordRepository) GetByTableID(tableID uuid.UUID) ([]models.Record, error) {
	ctx := context.Background()

	query := `SELECT id, table_id, user_id, data, created_at, updated_at
		FROM records WHERE table_id = $1 ORDER BY created_at ASC`

	return r.queryRecords(ctx, query, tableID)
}

// GetPage returns one page of a table's records in insertion order, for
// bulk passes that must not load the whole table at once.
func (r *RecordRepository) GetPage(tableID uuid.UUID, limit, offset int) ([]models.Record, error) {
	ctx := context.Background()

	query := `SELECT id, table_id, user_id, data, created_at, updated_at
		FROM records WHERE table_id = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	return r.queryRecords(ctx, query, tableID, limit, offset)
}

func (r *RecordRepository) CountByTableID(tableID uuid.UUID) (int, error) {
	ctx := context.Background()

	query := `SELECT COUNT(*) FROM records WHERE table_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, tableID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RecordRepository) Update(record *models.Record) error {
	ctx := context.Background()

	query := `UPDATE records SET data = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, record.ID, record.Data, time.Now())
	return err
}

func (r *RecordRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM records WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *RecordRepository) DeleteByTableID(tableID uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM records WHERE table_id = $1`
	_, err := r.pool.Exec(ctx, query, tableID)
	return err
}

// RemoveKey strips one attribute key from every record of a table. Used
// when a column is deleted.
func (r *RecordRepository) RemoveKey(tableID uuid.UUID, key string) error {
	ctx := context.Background()

	query := `UPDATE records SET data = data - $2, updated_at = $3 WHERE table_id = $1 AND data ? $2`
	_, err := r.pool.Exec(ctx, query, tableID, key, time.Now())
	return err
}

func (r *RecordRepository) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var record models.Record
		err := rows.Scan(
			&record.ID,
			&record.TableID,
			&record.UserID,
			&record.Data,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
