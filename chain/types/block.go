package types

import (
	"fmt"
	"strings"

	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// Hashable is anything with a content derived identity
type Hashable interface {
	Hash() common.Hash
}

type Header struct {
	ParentHash common.Hash `json:"parentHash"`
	Nonce      uint32      `json:"nonce"`
	Difficulty common.Hash `json:"difficulty"`
	Time       uint64      `json:"timestamp"` // milliseconds
	TxRoot     common.Hash `json:"transactionsRoot"`
	Extra      []byte      `json:"extraData"`
}

// Block is immutable once it is created
type Block struct {
	Header *Header
	Txs    []*Transaction
}

func NewBlock(header *Header, txs []*Transaction) *Block {
	return &Block{
		Header: header,
		Txs:    txs,
	}
}

type Blocks []*Block

// Hash 块hash. Every header field is covered, and the transactions are covered through TxRoot
func (h *Header) Hash() common.Hash {
	return RlpHash(h)
}

// Copy 拷贝一份头
func (h *Header) Copy() *Header {
	cpy := *h
	cpy.Extra = common.CopyBytes(h.Extra)
	return &cpy
}

// RlpHash 数据rlp编码后求hash. The value must be rlp encodable, otherwise it is a programming error and panics
func RlpHash(data interface{}) (h common.Hash) {
	hw := sha3.NewLegacyKeccak256()
	if err := rlp.Encode(hw, data); err != nil {
		panic(fmt.Sprintf("rlp encode %T fail: %v", data, err))
	}
	hw.Sum(h[:0])
	return h
}

func (h *Header) String() string {
	set := []string{
		fmt.Sprintf("ParentHash: %s", h.ParentHash.Hex()),
		fmt.Sprintf("Nonce: %d", h.Nonce),
		fmt.Sprintf("Difficulty: %s", h.Difficulty.Hex()),
		fmt.Sprintf("Time: %d", h.Time),
		fmt.Sprintf("TxRoot: %s", h.TxRoot.Hex()),
		fmt.Sprintf("Extra: %s", common.ToHex(h.Extra)),
	}
	return fmt.Sprintf("{%s}", strings.Join(set, ", "))
}

func (b *Block) Hash() common.Hash       { return b.Header.Hash() }
func (b *Block) ParentHash() common.Hash { return b.Header.ParentHash }
func (b *Block) TxRoot() common.Hash     { return b.Header.TxRoot }
func (b *Block) Time() uint64            { return b.Header.Time }
func (b *Block) Nonce() uint32           { return b.Header.Nonce }
func (b *Block) Extra() []byte           { return b.Header.Extra }

// VerifyTxRoot checks whether the transactions match the root in header
func (b *Block) VerifyTxRoot() bool {
	return DeriveTxsSha(b.Txs) == b.Header.TxRoot
}

func (b *Block) String() string {
	set := []string{
		fmt.Sprintf("Header: %v", b.Header),
		fmt.Sprintf("Txs: %v", b.Txs),
	}
	return fmt.Sprintf("{%s}", strings.Join(set, ", "))
}

// EncodeBlock serializes the block to its canonical rlp form
func EncodeBlock(b *Block) ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

// DecodeBlock parses a block from rlp bytes
func DecodeBlock(data []byte) (*Block, error) {
	block := new(Block)
	if err := rlp.DecodeBytes(data, block); err != nil {
		return nil, err
	}
	if block.Header == nil {
		return nil, ErrNoHeader
	}
	return block, nil
}
