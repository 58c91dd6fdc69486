package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func buildSwapLog(t *testing.T, pool, sender, recipient common.Address, amount0, amount1 *big.Int) types.Log {
	t.Helper()
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := poolABI.Events["Swap"].Inputs.NonIndexed().Pack(
		amount0,
		amount1,
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	return types.Log{
		Address: pool,
		Topics: []common.Hash{
			poolABI.Events["Swap"].ID,
			common.BytesToHash(sender.Bytes()),
			common.BytesToHash(recipient.Bytes()),
		},
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xdef"),
	}
}

func TestParseSwapLog(t *testing.T) {
	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	log := buildSwapLog(t, pool, sender, recipient, big.NewInt(-1000), big.NewInt(2000))

	swap, err := ParseSwapLog(log)
	if err != nil {
		t.Fatalf("ParseSwapLog: %v", err)
	}

	if swap.Address != pool {
		t.Fatalf("address mismatch: %s", swap.Address)
	}
	if swap.Sender != sender || swap.Recipient != recipient {
		t.Fatal("participant mismatch")
	}
	if swap.Amount0.Cmp(big.NewInt(-1000)) != 0 || swap.Amount1.Cmp(big.NewInt(2000)) != 0 {
		t.Fatalf("amounts mismatch: %s / %s", swap.Amount0, swap.Amount1)
	}
	if swap.Block != 12345 {
		t.Fatalf("block mismatch: %d", swap.Block)
	}
}

func TestParseSwapLogRejectsForeignTopic(t *testing.T) {
	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	log := buildSwapLog(t, pool, common.Address{}, common.Address{}, big.NewInt(1), big.NewInt(-1))
	log.Topics[0] = common.HexToHash("0x01")

	if _, err := ParseSwapLog(log); err == nil {
		t.Fatal("expected error for unknown topic0")
	}
}
