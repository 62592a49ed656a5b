package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, token_address, token_symbol, token_name, token_decimals,
	buy_price, buy_amount, buy_tx_hash, buy_time,
	sell_price, sell_amount, sell_tx_hash, sell_time, sell_reason,
	profit_loss_amount, profit_loss_pct,
	status, suggestion_id
`

// InsertOpen adds a new OPEN trade. Uniqueness is enforced three ways: on
// trade_id, on token_address while OPEN (partial index), and on
// suggestion_id when present. All three surface as ErrDuplicateKey.
func (s *TradeStore) InsertOpen(ctx context.Context, t *domain.Trade) error {
	query := `
		INSERT INTO trades (
			trade_id, token_address, token_symbol, token_name, token_decimals,
			buy_price, buy_amount, buy_tx_hash, buy_time,
			status, suggestion_id
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11
		)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.TokenAddress, t.TokenSymbol, t.TokenName, t.TokenDecimals,
		t.BuyPrice, t.BuyAmount, t.BuyTxHash, t.BuyTime,
		string(domain.TradeStatusOpen), t.SuggestionID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// Close transitions an OPEN trade to CLOSED. The status predicate makes the
// update a no-op on already-closed trades, which reports as ErrNotFound.
func (s *TradeStore) Close(ctx context.Context, tradeID string, fields storage.CloseFields) error {
	query := `
		UPDATE trades SET
			sell_price = $2, sell_amount = $3, sell_tx_hash = $4,
			sell_time = $5, sell_reason = $6,
			profit_loss_amount = $7, profit_loss_pct = $8,
			status = $9
		WHERE trade_id = $1 AND status = $10
	`

	tag, err := s.pool.Exec(ctx, query,
		tradeID,
		fields.SellPrice, fields.SellAmount, fields.SellTxHash,
		fields.SellTime, fields.SellReason,
		fields.ProfitLossAmount, fields.ProfitLossPct,
		string(domain.TradeStatusClosed), string(domain.TradeStatusOpen),
	)
	if err != nil {
		return fmt.Errorf("close trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// FindOpenByToken retrieves the OPEN trade for a token.
func (s *TradeStore) FindOpenByToken(ctx context.Context, tokenAddress string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE token_address = $1 AND status = $2`

	row := s.pool.QueryRow(ctx, query, tokenAddress, string(domain.TradeStatusOpen))
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find open trade by token: %w", err)
	}
	return t, nil
}

// FindBySuggestionID retrieves the trade created for a suggestion.
func (s *TradeStore) FindBySuggestionID(ctx context.Context, suggestionID string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE suggestion_id = $1`

	row := s.pool.QueryRow(ctx, query, suggestionID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find trade by suggestion id: %w", err)
	}
	return t, nil
}

// ListOpen retrieves all OPEN trades, ordered by buy_time ASC.
func (s *TradeStore) ListOpen(ctx context.Context) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = $1
		ORDER BY buy_time ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(domain.TradeStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("list open trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListClosed retrieves the most recently closed trades, newest first.
func (s *TradeStore) ListClosed(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = $1
		ORDER BY sell_time DESC, trade_id ASC
	`
	args := []interface{}{string(domain.TradeStatusClosed)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list closed trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// CountBuysSince counts trades for a token bought at or after since.
func (s *TradeStore) CountBuysSince(ctx context.Context, tokenAddress string, since time.Time) (int, error) {
	query := `SELECT count(*) FROM trades WHERE token_address = $1 AND buy_time >= $2`

	var count int
	if err := s.pool.QueryRow(ctx, query, tokenAddress, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count buys since: %w", err)
	}
	return count, nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	var status string

	err := row.Scan(
		&t.TradeID, &t.TokenAddress, &t.TokenSymbol, &t.TokenName, &t.TokenDecimals,
		&t.BuyPrice, &t.BuyAmount, &t.BuyTxHash, &t.BuyTime,
		&t.SellPrice, &t.SellAmount, &t.SellTxHash, &t.SellTime, &t.SellReason,
		&t.ProfitLossAmount, &t.ProfitLossPct,
		&status, &t.SuggestionID,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TradeStatus(status)
	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade
		var status string

		err := rows.Scan(
			&t.TradeID, &t.TokenAddress, &t.TokenSymbol, &t.TokenName, &t.TokenDecimals,
			&t.BuyPrice, &t.BuyAmount, &t.BuyTxHash, &t.BuyTime,
			&t.SellPrice, &t.SellAmount, &t.SellTxHash, &t.SellTime, &t.SellReason,
			&t.ProfitLossAmount, &t.ProfitLossPct,
			&status, &t.SuggestionID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		t.Status = domain.TradeStatus(status)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
