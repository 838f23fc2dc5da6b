//go:build integration

package repositories

import (
	"context"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/database/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

var db *pgxpool.Pool

func setupDB(t *testing.T) {
	t.Helper()
	cnf := config.Load()

	require.NoError(t, migrations.Run(cnf.MigrationDSN()))

	pgxConfig, err := pgxpool.ParseConfig(cnf.DSN())
	require.NoError(t, err)

	pgxConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	db, err = pgxpool.NewWithConfig(context.Background(), pgxConfig)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(context.Background(), "TRUNCATE TABLE transactions")
	require.NoError(t, err)
}

func insertTransaction(t *testing.T, gateway models.Gateway, status models.Status, age time.Duration) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		ID:                   uuid.NewString(),
		Gateway:              gateway,
		GatewayTransactionID: uuid.NewString(),
		PaymentMethod:        models.PaymentMethodPix,
		Status:               status,
		Amount:               decimal.RequireFromString("25.50"),
		CreatedAt:            time.Now().Add(-age).UTC().Truncate(time.Microsecond),
	}
	_, err := db.Exec(context.Background(),
		`INSERT INTO transactions (id, gateway, gateway_transaction_id, payment_method, status, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, string(tx.Gateway), tx.GatewayTransactionID, string(tx.PaymentMethod), string(tx.Status), tx.Amount, tx.CreatedAt,
	)
	require.NoError(t, err)
	return tx
}

func TestGetTransaction(t *testing.T) {
	setupDB(t)
	repo := NewTransactionRepositoryImpl(db)
	ctx := context.Background()
	want := insertTransaction(t, models.GatewayBank, models.StatusPending, time.Minute)

	byGateway, err := repo.GetByGatewayTransactionID(ctx, want.GatewayTransactionID)
	require.NoError(t, err)
	require.NotNil(t, byGateway)
	assert.Equal(t, want.ID, byGateway.ID)
	assert.Equal(t, models.StatusPending, byGateway.Status)
	assert.True(t, want.Amount.Equal(byGateway.Amount))
	assert.True(t, want.CreatedAt.Equal(byGateway.CreatedAt))

	byID, err := repo.GetByID(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, want.GatewayTransactionID, byID.GatewayTransactionID)

	missing, err := repo.GetByGatewayTransactionID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListPending(t *testing.T) {
	setupDB(t)
	repo := NewTransactionRepositoryImpl(db)

	oldest := insertTransaction(t, models.GatewayBank, models.StatusPending, 3*time.Hour)
	older := insertTransaction(t, models.GatewayBank, models.StatusPending, 2*time.Hour)
	insertTransaction(t, models.GatewayBank, models.StatusPending, time.Hour)
	insertTransaction(t, models.GatewayBank, models.StatusPending, 10*time.Second)
	insertTransaction(t, models.GatewayBank, models.StatusApproved, 3*time.Hour)
	insertTransaction(t, models.GatewayCheckout, models.StatusPending, 3*time.Hour)

	txs, err := repo.ListPending(context.Background(), models.GatewayBank, time.Now().Add(-time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, oldest.ID, txs[0].ID)
	assert.Equal(t, older.ID, txs[1].ID)
}

func TestUpdateStatusIfCurrent(t *testing.T) {
	setupDB(t)
	repo := NewTransactionRepositoryImpl(db)
	ctx := context.Background()
	tx := insertTransaction(t, models.GatewayBank, models.StatusPending, time.Minute)

	applied, err := repo.UpdateStatusIfCurrent(ctx, tx.ID, models.StatusPending, models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.UpdateStatusIfCurrent(ctx, tx.ID, models.StatusPending, models.StatusRefused)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.True(t, got.UpdatedAt.After(tx.CreatedAt))
}

func TestUpdateStatusIfCurrentConcurrent(t *testing.T) {
	setupDB(t)
	repo := NewTransactionRepositoryImpl(db)
	tx := insertTransaction(t, models.GatewayBank, models.StatusPending, time.Minute)

	proposals := []models.Status{models.StatusApproved, models.StatusRefused, models.StatusRefunded, models.StatusApproved}
	results := make([]bool, len(proposals))

	var wg sync.WaitGroup
	for i, next := range proposals {
		wg.Add(1)
		go func(i int, next models.Status) {
			defer wg.Done()
			applied, err := repo.UpdateStatusIfCurrent(context.Background(), tx.ID, models.StatusPending, next)
			assert.NoError(t, err)
			results[i] = applied
		}(i, next)
	}
	wg.Wait()

	applied := 0
	for _, ok := range results {
		if ok {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
}
