package types

import (
	"bytes"
	"testing"

	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
)

func TestHeader_Hash(t *testing.T) {
	block := makeTestBlock(randomHash(), []*Transaction{testTx})
	hash := block.Hash()
	assert.Equal(t, hash, block.Header.Hash())
	// hashing twice gives the same result
	assert.Equal(t, hash, block.Hash())

	// every field affects the hash
	tests := []func(h *Header){
		func(h *Header) { h.ParentHash[0]++ },
		func(h *Header) { h.Nonce++ },
		func(h *Header) { h.Difficulty[31]++ },
		func(h *Header) { h.Time++ },
		func(h *Header) { h.TxRoot[0]++ },
		func(h *Header) { h.Extra = append(h.Extra, 0) },
	}
	for i, modify := range tests {
		cpy := block.Header.Copy()
		modify(cpy)
		assert.NotEqual(t, hash, cpy.Hash(), "case %d", i)
	}
}

func TestHeader_Copy(t *testing.T) {
	header := makeTestBlock(randomHash(), nil).Header
	cpy := header.Copy()
	assert.Equal(t, header, cpy)
	cpy.Extra[0] = 'x'
	assert.NotEqual(t, header.Extra, cpy.Extra)
}

func TestBlock_ContentAffectsHash(t *testing.T) {
	parent := randomHash()
	emptyBlock := makeTestBlock(parent, nil)
	emptyBlock.Header.Nonce = 1
	txBlock := makeTestBlock(parent, []*Transaction{testTx})
	txBlock.Header.Nonce = 1
	assert.NotEqual(t, emptyBlock.Hash(), txBlock.Hash())
	assert.True(t, emptyBlock.VerifyTxRoot())
	assert.True(t, txBlock.VerifyTxRoot())

	// swap content without updating root
	txBlock.Txs = nil
	assert.False(t, txBlock.VerifyTxRoot())
}

func TestBlock_DuplicatedLastTx(t *testing.T) {
	a := NewTransaction(nil, []*TxOut{{Amount: 1}})
	b := NewTransaction(nil, []*TxOut{{Amount: 2}})
	c := NewTransaction(nil, []*TxOut{{Amount: 3}})
	newBlock := func(txs []*Transaction) *Block {
		header := &Header{ParentHash: common.HexToHash("0x01"), Time: 1540000000000, TxRoot: DeriveTxsSha(txs)}
		return NewBlock(header, txs)
	}
	x := newBlock([]*Transaction{a, b, c})
	y := newBlock([]*Transaction{a, b, c, c})

	assert.NotEqual(t, x.TxRoot(), y.TxRoot())
	assert.NotEqual(t, x.Hash(), y.Hash())
	assert.True(t, x.VerifyTxRoot())
	assert.True(t, y.VerifyTxRoot())

	// y's content can not be passed off under x's header
	forged := NewBlock(x.Header, y.Txs)
	assert.False(t, forged.VerifyTxRoot())
}

func TestEncodeDecodeBlock(t *testing.T) {
	signed, err := SignTx(testTx, testSigner)
	assert.NoError(t, err)
	block := makeTestBlock(randomHash(), []*Transaction{signed, testTx})

	data, err := EncodeBlock(block)
	assert.NoError(t, err)
	decoded, err := DecodeBlock(data)
	assert.NoError(t, err)

	// identity survives the round trip
	assert.Equal(t, block.Hash(), decoded.Hash())
	assert.Equal(t, block.ParentHash(), decoded.ParentHash())
	assert.Equal(t, len(block.Txs), len(decoded.Txs))
	assert.Equal(t, signed.Sig, decoded.Txs[0].Sig)
	assert.True(t, decoded.VerifyTxRoot())
	assert.NoError(t, VerifyTx(decoded.Txs[0]))

	// encoding is deterministic
	data2, err := EncodeBlock(decoded)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(data, data2))

	// broken data
	_, err = DecodeBlock(data[:len(data)-1])
	assert.Error(t, err)
	_, err = DecodeBlock(nil)
	assert.Error(t, err)
}

func TestBlockStream(t *testing.T) {
	blocks := Blocks{makeTestBlock(randomHash(), nil), makeTestBlock(randomHash(), []*Transaction{testTx})}
	var buf bytes.Buffer
	for _, b := range blocks {
		assert.NoError(t, rlp.Encode(&buf, b))
	}

	stream := rlp.NewStream(&buf, 0)
	for _, b := range blocks {
		decoded := new(Block)
		assert.NoError(t, stream.Decode(decoded))
		assert.Equal(t, b.Hash(), decoded.Hash())
	}
}

func TestRlpHash_Panic(t *testing.T) {
	assert.Panics(t, func() {
		RlpHash(map[string]int{"a": 1})
	})
	assert.NotEqual(t, common.Hash{}, RlpHash([]interface{}{uint64(1)}))
}

func TestBlock_String(t *testing.T) {
	block := makeTestBlock(common.HexToHash("0x1234"), []*Transaction{testTx})
	s := block.String()
	assert.Contains(t, s, "ParentHash: 0x0000000000000000000000000000000000000000000000000000000000001234")
	assert.Contains(t, s, "Nonce:")
}
