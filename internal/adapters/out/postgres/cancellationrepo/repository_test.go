package cancellationrepo_test

import (
	"testing"
	"time"

	"orders/internal/adapters/out/postgres/cancellationrepo"
	"orders/internal/adapters/out/postgres/storetest"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func TestGormCancellationRepository(t *testing.T) {
	at := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

	t.Run("records are listed per order in write order", func(t *testing.T) {
		repo := cancellationrepo.NewGormCancellationRepository(storetest.OpenSQLite(t))
		id := storetest.OrderID(t, 1)

		user, err := kernel.NewActor(1001, "Li", kernel.ActorTypeUser)
		require.NoError(t, err)

		first, err := order.NewCancellationRecord(id, user, "plans changed", order.StatusNoPay, at)
		require.NoError(t, err)
		second, err := order.NewCancellationRecord(id, kernel.SystemActor(), order.OverdueCancellationReason, order.StatusNoPay, at.Add(time.Minute))
		require.NoError(t, err)
		other, err := order.NewCancellationRecord(storetest.OrderID(t, 2), user, "other", order.StatusNoPay, at)
		require.NoError(t, err)

		for _, r := range []*order.CancellationRecord{second, other, first} {
			require.NoError(t, repo.Add(t.Context(), r))
		}

		got, err := repo.ListByOrder(t.Context(), id)
		require.NoError(t, err)
		require.Len(t, got, 2)

		require.True(t, first.ID().IsEqual(got[0].ID()))
		require.Equal(t, int64(1001), got[0].Actor().ID())
		require.Equal(t, kernel.ActorTypeUser, got[0].Actor().Type())
		require.Equal(t, "plans changed", got[0].Reason())

		require.True(t, got[1].Actor().IsSystem())
		require.Equal(t, order.OverdueCancellationReason, got[1].Reason())
	})

	t.Run("unknown order has no records", func(t *testing.T) {
		repo := cancellationrepo.NewGormCancellationRepository(storetest.OpenSQLite(t))

		got, err := repo.ListByOrder(t.Context(), storetest.OrderID(t, 9))
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("unconstructed record is rejected", func(t *testing.T) {
		repo := cancellationrepo.NewGormCancellationRepository(storetest.OpenSQLite(t))

		require.ErrorIs(t, repo.Add(t.Context(), &order.CancellationRecord{}), order.ErrCancellationRecordIsNotConstructed)
	})
}
