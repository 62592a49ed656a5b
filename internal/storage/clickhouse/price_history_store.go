package clickhouse

import (
	"context"
	"fmt"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple observations in a single batch.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, observations []*domain.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			trade_id, token_address, timestamp_ms, price, gain_pct
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range observations {
		err = batch.Append(
			o.TradeID, o.TokenAddress, uint64(o.TimestampMs),
			o.Price, o.GainPct,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTrade retrieves all observations for a trade, ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByTrade(ctx context.Context, tradeID string) ([]*domain.PriceObservation, error) {
	query := `
		SELECT trade_id, token_address, timestamp_ms, price, gain_pct
		FROM price_history
		WHERE trade_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("query by trade id: %w", err)
	}
	defer rows.Close()

	var observations []*domain.PriceObservation
	for rows.Next() {
		var o domain.PriceObservation
		var timestampMs uint64

		err := rows.Scan(&o.TradeID, &o.TokenAddress, &timestampMs, &o.Price, &o.GainPct)
		if err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		o.TimestampMs = int64(timestampMs)
		observations = append(observations, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return observations, nil
}
