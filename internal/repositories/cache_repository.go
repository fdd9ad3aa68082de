package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gridbase/internal/models"
)

// CacheRepository keeps column metadata in Redis and publishes change
// notifications for mirror consumers. Every method is best-effort: callers
// log failures and move on, the cache is never authoritative.
type CacheRepository struct {
	rdb *redis.Client
}

func NewCacheRepository(rdb *redis.Client) *CacheRepository {
	return &CacheRepository{rdb: rdb}
}

const (
	columnCacheTTL       = 10 * time.Minute
	mirrorChannel        = "gridbase:table-changes"
	columnCacheKeyPrefix = "columns:"
)

func (r *CacheRepository) GetColumns(ctx context.Context, tableID uuid.UUID) ([]models.Column, error) {
	raw, err := r.rdb.Get(ctx, columnCacheKeyPrefix+tableID.String()).Bytes()
	if err != nil {
		return nil, err
	}
	var columns []models.Column
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *CacheRepository) SetColumns(ctx context.Context, tableID uuid.UUID, columns []models.Column) error {
	raw, err := json.Marshal(columns)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, columnCacheKeyPrefix+tableID.String(), raw, columnCacheTTL).Err()
}

func (r *CacheRepository) InvalidateColumns(ctx context.Context, tableID uuid.UUID) error {
	return r.rdb.Del(ctx, columnCacheKeyPrefix+tableID.String()).Err()
}

// TableChange is the mirror notification payload.
type TableChange struct {
	TableID   uuid.UUID `json:"tableId"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (r *CacheRepository) PublishTableChange(ctx context.Context, change TableChange) error {
	change.Timestamp = time.Now()
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, mirrorChannel, raw).Err()
}
