package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

func testTrade(id, token string, buyTime time.Time) *domain.Trade {
	return &domain.Trade{
		TradeID:       id,
		TokenAddress:  token,
		TokenSymbol:   "MEME",
		TokenName:     "Meme Token",
		TokenDecimals: 6,
		BuyPrice:      0.001,
		BuyAmount:     10000,
		BuyTxHash:     "tx-" + id,
		BuyTime:       buyTime,
		Status:        domain.TradeStatusOpen,
	}
}

func TestTradeStore_Postgres(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("insert and get", func(t *testing.T) {
		require.NoError(t, store.InsertOpen(ctx, testTrade("trade1", "TokenA", base)))

		got, err := store.GetByID(ctx, "trade1")
		require.NoError(t, err)
		assert.Equal(t, "TokenA", got.TokenAddress)
		assert.Equal(t, 6, got.TokenDecimals)
		assert.Equal(t, domain.TradeStatusOpen, got.Status)
		assert.Nil(t, got.SellPrice)
		assert.Nil(t, got.SuggestionID)
	})

	t.Run("duplicate trade id", func(t *testing.T) {
		err := store.InsertOpen(ctx, testTrade("trade1", "TokenOther", base))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("one open per token", func(t *testing.T) {
		err := store.InsertOpen(ctx, testTrade("trade1b", "TokenA", base))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("find open by token", func(t *testing.T) {
		got, err := store.FindOpenByToken(ctx, "TokenA")
		require.NoError(t, err)
		assert.Equal(t, "trade1", got.TradeID)

		_, err = store.FindOpenByToken(ctx, "TokenMissing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("suggestion id idempotency", func(t *testing.T) {
		trade := testTrade("trade2", "TokenB", base)
		trade.SuggestionID = ptr("suggestion-42")
		require.NoError(t, store.InsertOpen(ctx, trade))

		got, err := store.FindBySuggestionID(ctx, "suggestion-42")
		require.NoError(t, err)
		assert.Equal(t, "trade2", got.TradeID)

		dup := testTrade("trade2b", "TokenC", base)
		dup.SuggestionID = ptr("suggestion-42")
		assert.ErrorIs(t, store.InsertOpen(ctx, dup), storage.ErrDuplicateKey)

		_, err = store.FindBySuggestionID(ctx, "suggestion-unknown")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("close populates sell fields", func(t *testing.T) {
		sellTime := base.Add(2 * time.Hour)
		err := store.Close(ctx, "trade1", storage.CloseFields{
			SellPrice:        0.0012,
			SellAmount:       9950,
			SellTxHash:       "selltx1",
			SellTime:         sellTime,
			SellReason:       domain.ExitReasonProfitTarget,
			ProfitLossAmount: 0.002,
			ProfitLossPct:    20,
		})
		require.NoError(t, err)

		got, err := store.GetByID(ctx, "trade1")
		require.NoError(t, err)
		assert.Equal(t, domain.TradeStatusClosed, got.Status)
		require.NotNil(t, got.SellPrice)
		assert.Equal(t, 0.0012, *got.SellPrice)
		require.NotNil(t, got.SellReason)
		assert.Equal(t, domain.ExitReasonProfitTarget, *got.SellReason)
		require.NotNil(t, got.ProfitLossPct)
		assert.Equal(t, float64(20), *got.ProfitLossPct)
	})

	t.Run("close twice", func(t *testing.T) {
		err := store.Close(ctx, "trade1", storage.CloseFields{
			SellTxHash: "selltx1", SellTime: base, SellReason: domain.ExitReasonTimeout,
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("reopen after close", func(t *testing.T) {
		require.NoError(t, store.InsertOpen(ctx, testTrade("trade3", "TokenA", base.Add(3*time.Hour))))
	})

	t.Run("list open ordered by buy time", func(t *testing.T) {
		open, err := store.ListOpen(ctx)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "trade2", open[0].TradeID)
		assert.Equal(t, "trade3", open[1].TradeID)
	})

	t.Run("list closed newest first", func(t *testing.T) {
		closed, err := store.ListClosed(ctx, 10)
		require.NoError(t, err)
		require.Len(t, closed, 1)
		assert.Equal(t, "trade1", closed[0].TradeID)
	})

	t.Run("count buys since", func(t *testing.T) {
		count, err := store.CountBuysSince(ctx, "TokenA", base.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = store.CountBuysSince(ctx, "TokenA", base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
