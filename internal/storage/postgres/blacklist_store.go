package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// BlacklistStore implements storage.BlacklistStore using PostgreSQL.
type BlacklistStore struct {
	pool *Pool
}

// NewBlacklistStore creates a new BlacklistStore.
func NewBlacklistStore(pool *Pool) *BlacklistStore {
	return &BlacklistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BlacklistStore = (*BlacklistStore)(nil)

// Upsert adds or updates an entry. A re-blacklisted token keeps its original
// blacklisted_at and the worst observed loss; the reason follows the loss.
func (s *BlacklistStore) Upsert(ctx context.Context, e *domain.BlacklistEntry) error {
	query := `
		INSERT INTO blacklist (token_address, token_symbol, reason, loss_pct, blacklisted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_address) DO UPDATE SET
			token_symbol = EXCLUDED.token_symbol,
			reason = CASE WHEN EXCLUDED.loss_pct < blacklist.loss_pct
				THEN EXCLUDED.reason ELSE blacklist.reason END,
			loss_pct = LEAST(blacklist.loss_pct, EXCLUDED.loss_pct)
	`

	_, err := s.pool.Exec(ctx, query,
		e.TokenAddress, e.TokenSymbol, e.Reason, e.LossPct, e.BlacklistedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert blacklist entry: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether a token is blacklisted.
func (s *BlacklistStore) IsBlacklisted(ctx context.Context, tokenAddress string) (bool, error) {
	query := `SELECT count(*) FROM blacklist WHERE token_address = $1`

	var count int
	if err := s.pool.QueryRow(ctx, query, tokenAddress).Scan(&count); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return count > 0, nil
}

// GetByToken retrieves the entry for a token. Returns ErrNotFound if not exists.
func (s *BlacklistStore) GetByToken(ctx context.Context, tokenAddress string) (*domain.BlacklistEntry, error) {
	query := `
		SELECT token_address, token_symbol, reason, loss_pct, blacklisted_at
		FROM blacklist
		WHERE token_address = $1
	`

	row := s.pool.QueryRow(ctx, query, tokenAddress)
	e, err := scanBlacklistEntry(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get blacklist entry: %w", err)
	}
	return e, nil
}

// List retrieves all entries, ordered by blacklisted_at ASC.
func (s *BlacklistStore) List(ctx context.Context) ([]*domain.BlacklistEntry, error) {
	query := `
		SELECT token_address, token_symbol, reason, loss_pct, blacklisted_at
		FROM blacklist
		ORDER BY blacklisted_at ASC, token_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var entries []*domain.BlacklistEntry
	for rows.Next() {
		var e domain.BlacklistEntry
		err := rows.Scan(&e.TokenAddress, &e.TokenSymbol, &e.Reason, &e.LossPct, &e.BlacklistedAt)
		if err != nil {
			return nil, fmt.Errorf("scan blacklist row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist rows: %w", err)
	}

	return entries, nil
}

// scanBlacklistEntry scans a single row into a BlacklistEntry.
func scanBlacklistEntry(row pgx.Row) (*domain.BlacklistEntry, error) {
	var e domain.BlacklistEntry
	err := row.Scan(&e.TokenAddress, &e.TokenSymbol, &e.Reason, &e.LossPct, &e.BlacklistedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
