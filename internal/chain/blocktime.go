package chain

import "fmt"

// Blocks per hour on supported chains.
const (
	blocksPerHourEth = 300
	blocksPerHourBSC = 1200
	blocksPerHourOP  = 1800 // Base and other OP-stack chains
)

// BlockTimeKind selects how a BlockTime window is expressed.
type BlockTimeKind int

const (
	// BlockTimeHours expresses the window in hours.
	BlockTimeHours BlockTimeKind = iota
	// BlockTimeDays expresses the window in days.
	BlockTimeDays
	// BlockTimeBlock pins the window to an absolute block number.
	BlockTimeBlock
)

// BlockTime expresses a lookback window as hours, days or an absolute
// block number.
type BlockTime struct {
	Kind  BlockTimeKind
	Value uint64
}

// Hours builds an hour-based window.
func Hours(n uint64) BlockTime { return BlockTime{Kind: BlockTimeHours, Value: n} }

// Days builds a day-based window.
func Days(n uint64) BlockTime { return BlockTime{Kind: BlockTimeDays, Value: n} }

// AtBlock pins the window to a block number.
func AtBlock(n uint64) BlockTime { return BlockTime{Kind: BlockTimeBlock, Value: n} }

func (bt BlockTime) blocks(chainID uint64) (uint64, error) {
	var perHour uint64
	switch chainID {
	case 1:
		perHour = blocksPerHourEth
	case 56:
		perHour = blocksPerHourBSC
	case 8453:
		perHour = blocksPerHourOP
	default:
		return 0, fmt.Errorf("unsupported chain id %d", chainID)
	}
	switch bt.Kind {
	case BlockTimeHours:
		return bt.Value * perHour, nil
	case BlockTimeDays:
		return bt.Value * perHour * 24, nil
	}
	return 0, nil
}

// GoBack resolves the window to a starting block behind currentBlock.
func (bt BlockTime) GoBack(chainID, currentBlock uint64) (uint64, error) {
	if bt.Kind == BlockTimeBlock {
		return bt.Value, nil
	}
	sub, err := bt.blocks(chainID)
	if err != nil {
		return 0, err
	}
	if sub > currentBlock {
		return 0, fmt.Errorf("starting block is greater than the current block")
	}
	return currentBlock - sub, nil
}

// GoForward resolves the window to an ending block after startBlock.
func (bt BlockTime) GoForward(chainID, startBlock uint64) (uint64, error) {
	if bt.Kind == BlockTimeBlock {
		return startBlock + bt.Value, nil
	}
	add, err := bt.blocks(chainID)
	if err != nil {
		return 0, err
	}
	return startBlock + add, nil
}

// HoursSpanned returns the window length in hours, used for APR scaling.
// An absolute-block window has no intrinsic duration and reports zero.
func (bt BlockTime) HoursSpanned() float64 {
	switch bt.Kind {
	case BlockTimeHours:
		return float64(bt.Value)
	case BlockTimeDays:
		return float64(bt.Value) * 24
	}
	return 0
}
