package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"gridbase/internal/database"
	"gridbase/internal/models"
)

// startPostgres spins up a disposable database for the repository suite.
// The suite is skipped when Docker is not around.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("gridbase_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.RunMigrations(pool))
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()
	user := &models.User{Email: "test@example.com", PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(pool).Create(user))
	return user
}

func seedTable(t *testing.T, pool *pgxpool.Pool, user *models.User) *models.Table {
	t.Helper()
	table := &models.Table{UserID: user.ID, Name: "Inventory"}
	require.NoError(t, NewTableRepository(pool).Create(table))
	return table
}

func TestUserRepositoryRoundtrip(t *testing.T) {
	pool := startPostgres(t)
	repo := NewUserRepository(pool)

	user := seedUser(t, pool)

	found, err := repo.FindUserByEmail("test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "user", found.Role)

	missing, err := repo.FindUserByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestColumnRepositoryOrderAndConfig(t *testing.T) {
	pool := startPostgres(t)
	repo := NewColumnRepository(pool)

	user := seedUser(t, pool)
	table := seedTable(t, pool, user)

	first := &models.Column{
		TableID:  table.ID,
		Name:     "Name",
		Key:      "name",
		DataType: models.DataTypeText,
		Order:    0,
	}
	require.NoError(t, repo.Create(first))

	second := &models.Column{
		TableID:  table.ID,
		Name:     "Total",
		Key:      "total",
		DataType: models.DataTypeFormula,
		Order:    1,
		FormulaConfig: &models.FormulaConfig{
			Formula: "SUM({Price}, {Tax})",
		},
	}
	require.NoError(t, repo.Create(second))

	// Insert at position 1: Total shifts right.
	middle := &models.Column{
		TableID:  table.ID,
		Name:     "Price",
		Key:      "price",
		DataType: models.DataTypeNumber,
		Order:    1,
	}
	require.NoError(t, repo.CreateAtPosition(middle))

	columns, err := repo.GetByTableID(table.ID)
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"Name", "Price", "Total"}, []string{columns[0].Name, columns[1].Name, columns[2].Name})

	// Config survives the JSONB roundtrip.
	require.NotNil(t, columns[2].FormulaConfig)
	assert.Equal(t, "SUM({Price}, {Tax})", columns[2].FormulaConfig.Formula)

	// Reorder rewrites positions from slice order.
	require.NoError(t, repo.UpdateOrders(table.ID, []uuid.UUID{columns[2].ID, columns[0].ID, columns[1].ID}))
	columns, err = repo.GetByTableID(table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Total", columns[0].Name)
}

func TestRecordRepositoryRoundtrip(t *testing.T) {
	pool := startPostgres(t)
	repo := NewRecordRepository(pool)

	user := seedUser(t, pool)
	table := seedTable(t, pool, user)

	record := &models.Record{
		TableID: table.ID,
		UserID:  user.ID,
		Data:    models.RecordData{"Name": "Widget", "Price": 25.0},
	}
	require.NoError(t, repo.Create(record))

	found, err := repo.GetByID(record.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Widget", found.Data["Name"])
	assert.Equal(t, 25.0, found.Data["Price"])

	found.Data["Price"] = 30.0
	require.NoError(t, repo.Update(found))

	count, err := repo.CountByTableID(table.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// RemoveKey strips the attribute from stored data.
	require.NoError(t, repo.RemoveKey(table.ID, "Price"))
	found, err = repo.GetByID(record.ID)
	require.NoError(t, err)
	_, has := found.Data["Price"]
	assert.False(t, has)

	page, err := repo.GetPage(table.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, repo.Delete(record.ID))
	gone, err := repo.GetByID(record.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
