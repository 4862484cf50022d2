package queries_test

import (
	"testing"
	"time"

	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/adapters/out/postgres/storetest"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOrderOwnershipQueryHandler_Handle(t *testing.T) {
	db := storetest.OpenSQLite(t)
	orders := orderrepo.NewGormOrderRepository(db)
	handler := queries.NewCheckOrderOwnershipQueryHandler(db)

	// Long past its payment deadline: the check must not expire it.
	o := storetest.UnpaidOrder(t, 1, detailNow.Add(-time.Hour))
	require.NoError(t, orders.Add(t.Context(), o))

	check := func(userID int64) error {
		query, err := queries.NewCheckOrderOwnershipQuery(o.ID(), userID)
		require.NoError(t, err)
		return handler.Handle(t.Context(), query)
	}

	require.NoError(t, check(1001))
	require.ErrorIs(t, check(2002), errs.ErrObjectNotFound)

	missing, err := queries.NewCheckOrderOwnershipQuery(storetest.OrderID(t, 99), 1001)
	require.NoError(t, err)
	require.ErrorIs(t, handler.Handle(t.Context(), missing), errs.ErrObjectNotFound)

	stored, err := orders.Get(t.Context(), o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.StatusNoPay, stored.Status())
}

func TestNewCheckOrderOwnershipQuery(t *testing.T) {
	_, err := queries.NewCheckOrderOwnershipQuery(storetest.OrderID(t, 1), 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	require.ErrorIs(t, queries.CheckOrderOwnershipQuery{}.Validate(), queries.ErrCheckOrderOwnershipQueryIsNotConstructed)
}
