package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"poolsim/internal/model"
)

func TestJsonlPutSwapBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "swaps.jsonl")
	sink := NewJsonlStorage(path)

	token0 := model.Token{ChainID: 1, Address: common.HexToAddress("0x1111111111111111111111111111111111111111"), Symbol: "AAA", Decimals: 18}
	token1 := model.Token{ChainID: 1, Address: common.HexToAddress("0x2222222222222222222222222222222222222222"), Symbol: "BBB", Decimals: 6}

	batch := []model.SwapRecord{
		{
			TokenIn:   token0,
			TokenOut:  token1,
			AmountIn:  uint256.NewInt(1000),
			AmountOut: uint256.NewInt(900),
			Block:     100,
			TxHash:    common.HexToHash("0xabc1"),
		},
		{
			TokenIn:   token1,
			TokenOut:  token0,
			AmountIn:  uint256.NewInt(500),
			AmountOut: uint256.NewInt(450),
			Block:     101,
			TxHash:    common.HexToHash("0xabc2"),
		},
	}

	if err := sink.PutSwapBatch(batch); err != nil {
		t.Fatalf("put batch: %v", err)
	}
	if err := sink.PutSwapBatch(nil); err != nil {
		t.Fatalf("empty batch must be a no-op: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.SwapRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.SwapRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(got) != len(batch) {
		t.Fatalf("record count = %d, want %d", len(got), len(batch))
	}
	for i := range batch {
		if !got[i].AmountIn.Eq(batch[i].AmountIn) || !got[i].AmountOut.Eq(batch[i].AmountOut) {
			t.Fatalf("record %d amounts mismatch: %+v != %+v", i, got[i], batch[i])
		}
		if got[i].Block != batch[i].Block || got[i].TxHash != batch[i].TxHash {
			t.Fatalf("record %d identity mismatch: %+v != %+v", i, got[i], batch[i])
		}
	}
}
