package chain

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Genesis struct {
	Time       uint64      `json:"timestamp"` // milliseconds
	ExtraData  []byte      `json:"extraData"`
	Difficulty common.Hash `json:"difficulty"`
}

type genesisJSON struct {
	Time       hexutil.Uint64 `json:"timestamp"`
	ExtraData  hexutil.Bytes  `json:"extraData"`
	Difficulty *common.Hash   `json:"difficulty,omitempty"`
}

// DefaultGenesisConfig default genesis block config
func DefaultGenesisConfig() *Genesis {
	timeSpan, _ := time.ParseInLocation("2006-01-02 15:04:05", "2018-08-30 12:00:00", time.UTC)
	return &Genesis{
		Time:       uint64(timeSpan.Unix()) * 1000,
		ExtraData:  []byte("minichain"),
		Difficulty: common.HexToHash("0x00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	}
}

// ToBlock build the genesis block. It has no parent and no transaction
func (g *Genesis) ToBlock() *types.Block {
	head := &types.Header{
		ParentHash: common.Hash{},
		Nonce:      0,
		Difficulty: g.Difficulty,
		Time:       g.Time,
		TxRoot:     types.DeriveTxsSha(nil),
		Extra:      common.CopyBytes(g.ExtraData),
	}
	return types.NewBlock(head, nil)
}

func (g Genesis) MarshalJSON() ([]byte, error) {
	difficulty := g.Difficulty
	return json.Marshal(&genesisJSON{
		Time:       hexutil.Uint64(g.Time),
		ExtraData:  g.ExtraData,
		Difficulty: &difficulty,
	})
}

func (g *Genesis) UnmarshalJSON(input []byte) error {
	var dec genesisJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	g.Time = uint64(dec.Time)
	g.ExtraData = dec.ExtraData
	if dec.Difficulty != nil {
		g.Difficulty = *dec.Difficulty
	}
	return nil
}

// LoadGenesisFile reads a genesis config from json file
func LoadGenesisFile(path string) (*Genesis, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis file fail: %w", err)
	}
	genesis := new(Genesis)
	if err := json.Unmarshal(content, genesis); err != nil {
		return nil, fmt.Errorf("invalid genesis file: %w", err)
	}
	return genesis, nil
}
