package types

import (
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/merkle"
)

// DeriveSha compute the merkle root of the items' hashes
func DeriveSha(list []Hashable) common.Hash {
	leaves := make([]common.Hash, len(list))
	for i, item := range list {
		leaves[i] = item.Hash()
	}
	return merkle.New(leaves).Root()
}

// DeriveTxsSha compute the root hash of transactions merkle trie
func DeriveTxsSha(txs []*Transaction) common.Hash {
	list := make([]Hashable, len(txs))
	for i, tx := range txs {
		list[i] = tx
	}
	return DeriveSha(list)
}
