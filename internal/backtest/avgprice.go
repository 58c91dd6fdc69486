package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"poolsim/internal/chain"
	"poolsim/internal/dex"
	"poolsim/internal/pool"
)

// AvgPrice summarizes prices sampled over a block window.
type AvgPrice struct {
	Min    float64
	Median float64
	Max    float64
}

// NewAvgPrice builds the summary from raw samples.
func NewAvgPrice(prices []float64) (AvgPrice, error) {
	if len(prices) == 0 {
		return AvgPrice{}, fmt.Errorf("no price samples")
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return AvgPrice{
		Min:    sorted[0],
		Median: median,
		Max:    sorted[len(sorted)-1],
	}, nil
}

const priceSampleWorkers = 10

// AveragePrice samples the pool price (token0 in terms of token1) every
// step blocks across the window and summarizes the samples.
func AveragePrice(ctx context.Context, client *chain.Client, window chain.BlockTime, step uint64, p *pool.ConcentratedPool) (AvgPrice, error) {
	if step == 0 {
		return AvgPrice{}, fmt.Errorf("step must be greater than zero")
	}

	latest, err := client.LatestBlockNumber(ctx)
	if err != nil {
		return AvgPrice{}, fmt.Errorf("get latest block: %w", err)
	}
	from, err := window.GoBack(p.ChainID, latest)
	if err != nil {
		return AvgPrice{}, err
	}

	var (
		mu      sync.Mutex
		prices  []float64
		lastErr error
	)
	sem := make(chan struct{}, priceSampleWorkers)
	var wg sync.WaitGroup

	for block := from; block < latest; block += step {
		select {
		case <-ctx.Done():
			return AvgPrice{}, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(block uint64) {
			defer wg.Done()
			defer func() { <-sem }()

			state, err := dex.FetchV3State(ctx, client, p.Address, block)
			if err != nil {
				mu.Lock()
				lastErr = fmt.Errorf("fetch state at block %d: %w", block, err)
				mu.Unlock()
				return
			}

			sample := p.Clone()
			sample.UpdateState(state)
			price, err := sample.Price(p.Token0.Address)
			if err != nil {
				mu.Lock()
				lastErr = fmt.Errorf("price at block %d: %w", block, err)
				mu.Unlock()
				return
			}

			mu.Lock()
			prices = append(prices, price)
			mu.Unlock()
		}(block)
	}

	wg.Wait()
	if lastErr != nil {
		return AvgPrice{}, lastErr
	}

	return NewAvgPrice(prices)
}
