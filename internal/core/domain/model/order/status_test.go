package order_test

import (
	"fmt"
	"testing"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	testCases := []struct {
		status   order.Status
		expected string
	}{
		{order.Pending, "pending"},
		{order.Accepted, "accepted"},
		{order.Preparing, "preparing"},
		{order.Ready, "ready"},
		{order.OutForDelivery, "out_for_delivery"},
		{order.Completed, "completed"},
		{order.Cancelled, "cancelled"},
		{order.Unknown, "unknown"},
		{order.Status(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestStatusFromString(t *testing.T) {
	t.Run("round-trips every valid status", func(t *testing.T) {
		for _, s := range order.AllStatuses() {
			parsed, err := order.StatusFromString(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("rejects unknown strings", func(t *testing.T) {
		for _, raw := range []string{"", "unknown", "shipped", "PENDING"} {
			_, err := order.StatusFromString(raw)
			require.Error(t, err, "input %q", raw)
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should validate members of the enum", func(t *testing.T) {
		for _, s := range order.AllStatuses() {
			require.NoError(t, s.Validate())
		}
	})

	t.Run("should reject values outside the enum", func(t *testing.T) {
		for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(8), order.Status(100)} {
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "status")
		}
	})
}

// allowedEdges is the full expected transition matrix. The test walks every
// (from, to) pair so a table change cannot slip through unnoticed.
var allowedEdges = map[order.Status]map[order.Status]bool{
	order.Pending:        {order.Accepted: true, order.Cancelled: true},
	order.Accepted:       {order.Preparing: true, order.Cancelled: true},
	order.Preparing:      {order.Ready: true, order.Cancelled: true},
	order.Ready:          {order.OutForDelivery: true, order.Completed: true, order.Cancelled: true},
	order.OutForDelivery: {order.Completed: true},
	order.Completed:      {},
	order.Cancelled:      {},
}

func TestStatus_TransitionTo_FullMatrix(t *testing.T) {
	for _, from := range order.AllStatuses() {
		for _, to := range order.AllStatuses() {
			from, to := from, to
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				next, err := from.TransitionTo(to)

				if allowedEdges[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, next)
				} else {
					require.Error(t, err)
					require.ErrorIs(t, err, order.ErrInvalidTransition)
					assert.Equal(t, order.Unknown, next)
				}
			})
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	t.Run("completed and cancelled are terminal", func(t *testing.T) {
		assert.True(t, order.Completed.IsTerminal())
		assert.True(t, order.Cancelled.IsTerminal())
	})

	t.Run("active statuses are not terminal", func(t *testing.T) {
		for _, s := range order.ActiveStatuses() {
			assert.False(t, s.IsTerminal(), "status %s", s)
		}
	})

	t.Run("active set plus terminals covers the enum", func(t *testing.T) {
		assert.Len(t, order.AllStatuses(), len(order.ActiveStatuses())+2)
	})
}

func TestVerifyTransitionGraph(t *testing.T) {
	require.NoError(t, order.VerifyTransitionGraph())
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := order.NewInvalidTransitionError(order.Pending, order.Ready)

	assert.Equal(t, "invalid status transition: pending -> ready", err.Error())
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}
