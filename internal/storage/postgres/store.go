package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolsim/internal/backtest"
	"poolsim/internal/model"
	"poolsim/internal/pool"
)

// Store provides Postgres persistence for pools, swaps and simulation
// results.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pgPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pgPool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool metadata.
func (s *Store) UpsertPools(ctx context.Context, pools []*pool.ConcentratedPool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		tickSpacing := 0
		if p.State() != nil {
			tickSpacing = p.State().TickSpacing
		}
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, token0, token1, fee, tick_spacing, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				fee = EXCLUDED.fee,
				tick_spacing = EXCLUDED.tick_spacing,
				updated_at = now()
		`,
			int64(p.ChainID),
			p.Address.Hex(),
			p.Token0.Address.Hex(),
			p.Token1.Address.Hex(),
			int64(p.Fee),
			tickSpacing,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertSwaps stores a batch of swap records. Replays of the same
// window are idempotent.
func (s *Store) InsertSwaps(ctx context.Context, chainID uint64, poolAddress string, swaps []model.SwapRecord) error {
	if len(swaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, swap := range swaps {
		batch.Queue(`
			INSERT INTO swaps (
				chain_id, pool_address, token_in, token_out, amount_in, amount_out,
				block_number, tx_hash, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (chain_id, pool_address, tx_hash, block_number, amount_in) DO NOTHING
		`,
			int64(chainID),
			poolAddress,
			swap.TokenIn.Address.Hex(),
			swap.TokenOut.Address.Hex(),
			swap.AmountIn.Dec(),
			swap.AmountOut.Dec(),
			int64(swap.Block),
			swap.TxHash.Hex(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range swaps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertPositionResult stores the outcome of a position simulation.
func (s *Store) InsertPositionResult(ctx context.Context, chainID uint64, poolAddress string, res *backtest.PositionResult) error {
	if res == nil {
		return fmt.Errorf("position result is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO position_results (
			chain_id, pool_address, token0, token1,
			deposit_amount0, deposit_amount1,
			earned0, earned1, earned0_usd, earned1_usd,
			buy_volume_usd, sell_volume_usd,
			failed_swaps, out_of_range, in_range, apr, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now())
	`,
		int64(chainID),
		poolAddress,
		res.Token0.Address.Hex(),
		res.Token1.Address.Hex(),
		res.Deposit.Amount0,
		res.Deposit.Amount1,
		res.Earned0,
		res.Earned1,
		res.Earned0USD,
		res.Earned1USD,
		res.BuyVolumeUSD,
		res.SellVolumeUSD,
		int64(res.FailedSwaps),
		res.OutOfRange,
		res.InRange,
		res.APR,
	)
	return err
}

// LastProcessedBlock returns the stored cursor for a named fetch.
func (s *Store) LastProcessedBlock(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("cursor name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM fetch_cursors WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveProcessedBlock upserts the cursor for a named fetch.
func (s *Store) SaveProcessedBlock(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("cursor name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fetch_cursors (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}
