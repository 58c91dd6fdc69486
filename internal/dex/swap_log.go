package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolsim/internal/model"
)

// SwapTopic0 returns the topic hash of the V3 Swap event.
func SwapTopic0() (common.Hash, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return common.Hash{}, err
	}
	return poolABI.Events["Swap"].ID, nil
}

// ParseSwapLog decodes a raw V3 Swap log into its signed token deltas.
func ParseSwapLog(log types.Log) (*model.SwapLog, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, err
	}
	event := poolABI.Events["Swap"]

	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}
	if log.Topics[0] != event.ID {
		return nil, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack swap: %w", err)
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("amount1: %w", err)
	}

	return &model.SwapLog{
		Address:   log.Address,
		Sender:    indexed.Sender,
		Recipient: indexed.Recipient,
		Amount0:   amount0,
		Amount1:   amount1,
		Block:     log.BlockNumber,
		TxHash:    log.TxHash,
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
