package types

import (
	"math/rand"

	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/crypto"
)

var (
	testPrivHex = "c21b6b2fbf230f665b936194d14da67187732bf9d28768aef1a3cbb26608f8aa"
	testSigner  = mustSigner(testPrivHex)
	testTx      = NewTransaction(
		[]*TxIn{{Address: common.HexToAddress("0x015ef7c6d6a3077b2531e72b08e55516265d451a"), TxHash: common.HexToHash("0x01")}},
		[]*TxOut{{Address: common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), Amount: 100}, {Address: common.HexToAddress("0x02"), Amount: 5}},
	)
)

func mustSigner(hexKey string) crypto.Signer {
	s, err := crypto.HexToSigner(hexKey)
	if err != nil {
		panic(err)
	}
	return s
}

func randomHash() common.Hash {
	var h common.Hash
	rand.Read(h[:])
	return h
}

func makeTestBlock(parent common.Hash, txs []*Transaction) *Block {
	header := &Header{
		ParentHash: parent,
		Nonce:      rand.Uint32(),
		Difficulty: common.HexToHash("0x0000ffff"),
		Time:       1540000000000,
		TxRoot:     DeriveTxsSha(txs),
		Extra:      []byte("test"),
	}
	return NewBlock(header, txs)
}
