package queries_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrdersBoardQuery_Valid(t *testing.T) {
	query, err := queries.NewGetOrdersBoardQuery(kernel.NewUUID(), 30*time.Minute)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, 30*time.Minute, query.DelayedAfter())
}

func TestNewGetOrdersBoardQuery_Invalid(t *testing.T) {
	t.Run("empty restaurant id", func(t *testing.T) {
		_, err := queries.NewGetOrdersBoardQuery(kernel.UUID{}, 30*time.Minute)
		require.Error(t, err)
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		_, err := queries.NewGetOrdersBoardQuery(kernel.NewUUID(), 0)
		require.Error(t, err)
	})
}

func TestGetOrdersBoardQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrdersBoardQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrdersBoardQueryIsNotConstructed)
}
