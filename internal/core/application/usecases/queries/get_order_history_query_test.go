package queries_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderHistoryQuery_Valid(t *testing.T) {
	filter := queries.HistoryFilter{
		Statuses: []order.Status{order.Completed, order.Cancelled},
		Search:   "Aigerim",
	}

	query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), filter, 0, 25)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, 25, query.Limit())
}

func TestNewGetOrderHistoryQuery_LimitClamping(t *testing.T) {
	t.Run("zero limit falls back to default page size", func(t *testing.T) {
		query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), queries.HistoryFilter{}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, queries.DefaultHistoryPageSize, query.Limit())
	})

	t.Run("oversized limit is capped", func(t *testing.T) {
		query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), queries.HistoryFilter{}, 0, 10_000)
		require.NoError(t, err)
		assert.Equal(t, queries.MaxHistoryPageSize, query.Limit())
	})
}

func TestNewGetOrderHistoryQuery_Invalid(t *testing.T) {
	t.Run("negative offset", func(t *testing.T) {
		_, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), queries.HistoryFilter{}, -1, 10)
		require.Error(t, err)
	})

	t.Run("unknown status in filter", func(t *testing.T) {
		filter := queries.HistoryFilter{Statuses: []order.Status{order.Unknown}}
		_, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), filter, 0, 10)
		require.Error(t, err)
	})
}

func TestGetOrderHistoryQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderHistoryQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderHistoryQueryIsNotConstructed)
}
