package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"gridbase/internal/database"
	"gridbase/internal/formula"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
)

// startPostgres spins up a disposable database for the bulk-pass suite.
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

func seedTableWithRecords(t *testing.T, pool *pgxpool.Pool, rows []models.RecordData) (*models.Table, *repositories.RecordRepository) {
	t.Helper()

	user := &models.User{Email: "test@example.com", PasswordHash: "hash"}
	require.NoError(t, repositories.NewUserRepository(pool).Create(user))

	table := &models.Table{UserID: user.ID, Name: "Inventory"}
	require.NoError(t, repositories.NewTableRepository(pool).Create(table))

	recordRepo := repositories.NewRecordRepository(pool)
	for _, row := range rows {
		record := &models.Record{TableID: table.ID, UserID: user.ID, Data: row}
		require.NoError(t, recordRepo.Create(record))
	}
	return table, recordRepo
}

func TestRenameKeyMovesEveryRecord(t *testing.T) {
	pool := startPostgres(t)
	table, recordRepo := seedTableWithRecords(t, pool, []models.RecordData{
		{"Price": 10.0, "Name": "Widget"},
		{"Price": "25", "Name": "Gadget"},
		{"Name": "Keyless"},
	})

	coercion := NewCoercionService(recordRepo)
	result, err := coercion.RenameKey(table.ID, "Price", "Cost")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)

	records, err := recordRepo.GetByTableID(table.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		_, hasOld := record.Data["Price"]
		assert.False(t, hasOld)
		switch record.Data["Name"] {
		case "Widget":
			assert.Equal(t, 10.0, record.Data["Cost"])
		case "Gadget":
			assert.Equal(t, "25", record.Data["Cost"])
		case "Keyless":
			_, hasNew := record.Data["Cost"]
			assert.False(t, hasNew)
		}
	}
}

func TestConvertKeyTypeSkipsAndCounts(t *testing.T) {
	pool := startPostgres(t)
	table, recordRepo := seedTableWithRecords(t, pool, []models.RecordData{
		{"Qty": "12"},
		{"Qty": "abc"},
		{"Qty": ""},
	})

	coercion := NewCoercionService(recordRepo)
	result, err := coercion.ConvertKeyType(table.ID, "Qty", models.DataTypeNumber)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 1, result.Invalid)

	records, err := recordRepo.GetByTableID(table.ID)
	require.NoError(t, err)
	seen := map[any]bool{}
	for _, record := range records {
		seen[record.Data["Qty"]] = true
	}
	// The fitting value converted, the misfit kept its original value, the
	// empty cell was left alone.
	assert.True(t, seen[12.0])
	assert.True(t, seen["abc"])
	assert.True(t, seen[""])
}

func TestColumnUpdateRenameAndTypeChangeCascade(t *testing.T) {
	pool := startPostgres(t)
	table, recordRepo := seedTableWithRecords(t, pool, []models.RecordData{
		{"Amount": "10"},
		{"Amount": "oops"},
	})

	tableRepo := repositories.NewTableRepository(pool)
	columnRepo := repositories.NewColumnRepository(pool)
	engine := formula.NewEngine(nil)
	coercion := NewCoercionService(recordRepo)
	lookup := NewLookupService(tableRepo, columnRepo, recordRepo)
	records := NewRecordService(recordRepo, columnRepo, tableRepo, nil, engine, lookup)
	columns := NewColumnService(columnRepo, tableRepo, nil, coercion, records, engine)

	column := &models.Column{
		TableID:  table.ID,
		Name:     "Amount",
		Key:      "amount",
		DataType: models.DataTypeText,
	}
	require.NoError(t, columnRepo.Create(column))

	newName := "Total"
	newType := models.DataTypeNumber
	result, err := columns.Update(column.ID, &UpdateColumnRequest{Name: &newName, DataType: &newType})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RenamedInData)
	require.NotNil(t, result.Coercion)
	assert.Equal(t, 1, result.Coercion.Converted)
	assert.Equal(t, 1, result.Coercion.Invalid)

	updated, err := columnRepo.GetByID(column.ID)
	require.NoError(t, err)
	assert.Equal(t, "Total", updated.Name)
	assert.Equal(t, models.DataTypeNumber, updated.DataType)

	rows, err := recordRepo.GetByTableID(table.ID)
	require.NoError(t, err)
	seen := map[any]bool{}
	for _, row := range rows {
		_, hasOld := row.Data["Amount"]
		assert.False(t, hasOld)
		seen[row.Data["Total"]] = true
	}
	assert.True(t, seen[10.0])
	assert.True(t, seen["oops"])
}
