package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gridbase/internal/models"
)

type ColumnRepository struct {
	pool *pgxpool.Pool
}

func NewColumnRepository(pool *pgxpool.Pool) *ColumnRepository {
	return &ColumnRepository{pool: pool}
}

// columnConfig is the JSONB blob persisted in the config column. Only the
// section matching the column's dataType is ever populated.
type columnConfig struct {
	Checkbox     *models.CheckboxConfig     `json:"checkbox,omitempty"`
	SingleSelect *models.SingleSelectConfig `json:"singleSelect,omitempty"`
	MultiSelect  *models.MultiSelectConfig  `json:"multiSelect,omitempty"`
	Formula      *models.FormulaConfig      `json:"formula,omitempty"`
	Date         *models.DateConfig         `json:"date,omitempty"`
	Currency     *models.CurrencyConfig     `json:"currency,omitempty"`
	Percent      *models.PercentConfig      `json:"percent,omitempty"`
	URL          *models.URLConfig          `json:"url,omitempty"`
	Phone        *models.PhoneConfig        `json:"phone,omitempty"`
	Time         *models.TimeConfig         `json:"time,omitempty"`
	Rating       *models.RatingConfig       `json:"rating,omitempty"`
	LinkedTable  *models.LinkedTableConfig  `json:"linkedTable,omitempty"`
	Lookup       *models.LookupConfig       `json:"lookup,omitempty"`
}

func packConfig(c *models.Column) ([]byte, error) {
	cfg := columnConfig{
		Checkbox:     c.CheckboxConfig,
		SingleSelect: c.SingleSelectConfig,
		MultiSelect:  c.MultiSelectConfig,
		Formula:      c.FormulaConfig,
		Date:         c.DateConfig,
		Currency:     c.CurrencyConfig,
		Percent:      c.PercentConfig,
		URL:          c.URLConfig,
		Phone:        c.PhoneConfig,
		Time:         c.TimeConfig,
		Rating:       c.RatingConfig,
		LinkedTable:  c.LinkedTableConfig,
		Lookup:       c.LookupConfig,
	}
	return json.Marshal(cfg)
}

func unpackConfig(raw []byte, c *models.Column) error {
	if len(raw) == 0 {
		return nil
	}
	var cfg columnConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}
	c.CheckboxConfig = cfg.Checkbox
	c.SingleSelectConfig = cfg.SingleSelect
	c.MultiSelectConfig = cfg.MultiSelect
	c.FormulaConfig = cfg.Formula
	c.DateConfig = cfg.Date
	c.CurrencyConfig = cfg.Currency
	c.PercentConfig = cfg.Percent
	c.URLConfig = cfg.URL
	c.PhoneConfig = cfg.Phone
	c.TimeConfig = cfg.Time
	c.RatingConfig = cfg.Rating
	c.LinkedTableConfig = cfg.LinkedTable
	c.LookupConfig = cfg.Lookup
	return nil
}

const columnFields = `id, table_id, name, key, type, data_type, "order",
	is_required, is_unique, default_value, config, created_at, updated_at`

func (r *ColumnRepository) Create(column *models.Column) error {
	ctx := context.Background()

	column.Prepare()

	cfg, err := packConfig(column)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO columns (id, table_id, name, key, type, data_type, "order",
			is_required, is_unique, default_value, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		column.ID,
		column.TableID,
		column.Name,
		column.Key,
		column.Type,
		column.DataType,
		column.Order,
		column.IsRequired,
		column.IsUnique,
		column.DefaultValue,
		cfg,
		time.Now(),
	)

	return err
}

// CreateAtPosition shifts every column at or after the requested order and
// inserts in the gap, all in one transaction.
func (r *ColumnRepository) CreateAtPosition(column *models.Column) error {
	ctx := context.Background()

	column.Prepare()

	cfg, err := packConfig(column)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	shift := `UPDATE columns SET "order" = "order" + 1 WHERE table_id = $1 AND "order" >= $2`
	if _, err := tx.Exec(ctx, shift, column.TableID, column.Order); err != nil {
		return err
	}

	insert := `
		INSERT INTO columns (id, table_id, name, key, type, data_type, "order",
			is_required, is_unique, default_value, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`
	_, err = tx.Exec(ctx, insert,
		column.ID,
		column.TableID,
		column.Name,
		column.Key,
		column.Type,
		column.DataType,
		column.Order,
		column.IsRequired,
		column.IsUnique,
		column.DefaultValue,
		cfg,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ColumnRepository) GetByID(id uuid.UUID) (*models.Column, error) {
	ctx := context.Background()

	query := `SELECT ` + columnFields + ` FROM columns WHERE id = $1`

	column, err := scanColumn(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return column, nil
}

func (r *ColumnRepository) GetByTableID(tableID uuid.UUID) ([]models.Column, error) {
	ctx := context.Background()

	query := `SELECT ` + columnFields + ` FROM columns
		WHERE table_id = $1 ORDER BY "order" ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		column, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *column)
	}

	return columns, rows.Err()
}

func (r *ColumnRepository) GetByTableAndName(tableID uuid.UUID, name string) (*models.Column, error) {
	ctx := context.Background()

	query := `SELECT ` + columnFields + ` FROM columns
		WHERE table_id = $1 AND name = $2`

	column, err := scanColumn(r.pool.QueryRow(ctx, query, tableID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return column, nil
}

func (r *ColumnRepository) MaxOrder(tableID uuid.UUID) (int, error) {
	ctx := context.Background()

	query := `SELECT COALESCE(MAX("order"), -1) FROM columns WHERE table_id = $1`

	var max int
	if err := r.pool.QueryRow(ctx, query, tableID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *ColumnRepository) Update(column *models.Column) error {
	ctx := context.Background()

	cfg, err := packConfig(column)
	if err != nil {
		return err
	}

	query := `
		UPDATE columns SET
			name = $2, key = $3, type = $4, data_type = $5, "order" = $6,
			is_required = $7, is_unique = $8, default_value = $9, config = $10,
			updated_at = $11
		WHERE id = $1
	`

	_, err = r.pool.Exec(ctx, query,
		column.ID,
		column.Name,
		column.Key,
		column.Type,
		column.DataType,
		column.Order,
		column.IsRequired,
		column.IsUnique,
		column.DefaultValue,
		cfg,
		time.Now(),
	)

	return err
}

// UpdateOrders rewrites the order of every listed column in one
// transaction; position in the slice becomes the order value.
func (r *ColumnRepository) UpdateOrders(tableID uuid.UUID, orderedIDs []uuid.UUID) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE columns SET "order" = $3, updated_at = $4 WHERE id = $1 AND table_id = $2`
	now := time.Now()
	for i, id := range orderedIDs {
		if _, err := tx.Exec(ctx, query, id, tableID, i, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ColumnRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	query := `DELETE FROM columns WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanColumn(row pgx.Row) (*models.Column, error) {
	var column models.Column
	var cfg []byte
	err := row.Scan(
		&column.ID,
		&column.TableID,
		&column.Name,
		&column.Key,
		&column.Type,
		&column.DataType,
		&column.Order,
		&column.IsRequired,
		&column.IsUnique,
		&column.DefaultValue,
		&cfg,
		&column.CreatedAt,
		&column.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unpackConfig(cfg, &column); err != nil {
		return nil, err
	}
	return &column, nil
}
