package repositories

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/pkg/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type stubRow struct {
	err error
}

func (r stubRow) Scan(...interface{}) error {
	return r.err
}

var _ postgresql.Client = (*stubClient)(nil)

type stubClient struct {
	execErrs []error
	execs    int
	tag      pgconn.CommandTag
	row      pgx.Row
}

func (c *stubClient) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	c.execs++
	if len(c.execErrs) > 0 {
		err := c.execErrs[0]
		c.execErrs = c.execErrs[1:]
		return pgconn.CommandTag{}, err
	}
	return c.tag, nil
}

func (c *stubClient) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *stubClient) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return c.row
}

func TestUpdateStatusRetriesSerializationFailures(t *testing.T) {
	client := &stubClient{
		execErrs: []error{&pgconn.PgError{Code: "40001"}},
		tag:      pgconn.NewCommandTag("UPDATE 1"),
	}
	repo := NewTransactionRepositoryImpl(client)

	applied, err := repo.UpdateStatusIfCurrent(context.Background(), "1", models.StatusPending, models.StatusApproved)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2, client.execs)
}

func TestUpdateStatusLostRace(t *testing.T) {
	client := &stubClient{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewTransactionRepositoryImpl(client)

	applied, err := repo.UpdateStatusIfCurrent(context.Background(), "1", models.StatusPending, models.StatusApproved)

	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUpdateStatusGivesUp(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	client := &stubClient{execErrs: []error{serialization, serialization, serialization, serialization}}
	repo := NewTransactionRepositoryImpl(client)

	_, err := repo.UpdateStatusIfCurrent(context.Background(), "1", models.StatusPending, models.StatusApproved)

	assert.ErrorIs(t, err, serialization)
	assert.Equal(t, maxSerializationRetries, client.execs)
}

func TestUpdateStatusDoesNotRetryOtherErrors(t *testing.T) {
	client := &stubClient{execErrs: []error{&pgconn.PgError{Code: "23514"}}}
	repo := NewTransactionRepositoryImpl(client)

	_, err := repo.UpdateStatusIfCurrent(context.Background(), "1", models.StatusPending, models.Status("bogus"))

	assert.Error(t, err)
	assert.Equal(t, 1, client.execs)
}

func TestGetByIDMissingRow(t *testing.T) {
	repo := NewTransactionRepositoryImpl(&stubClient{row: stubRow{err: pgx.ErrNoRows}})

	tx, err := repo.GetByID(context.Background(), "1")

	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestGetByIDError(t *testing.T) {
	repo := NewTransactionRepositoryImpl(&stubClient{row: stubRow{err: errors.New("conn closed")}})

	_, err := repo.GetByID(context.Background(), "1")

	assert.EqualError(t, err, "conn closed")
}
