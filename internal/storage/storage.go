package storage

import "poolsim/internal/model"

// SwapSink defines a sink for replayable swap records.
type SwapSink interface {
	PutSwapBatch(swaps []model.SwapRecord) error
}
