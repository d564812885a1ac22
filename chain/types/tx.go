package types

import (
	"fmt"
	"strings"

	"github.com/LemoFoundationLtd/lemochain-store/common"
)

// TxIn spends an output of a previous transaction
type TxIn struct {
	Address common.Address `json:"address"`
	TxHash  common.Hash    `json:"txHash"`
}

// TxOut gives value to an address
type TxOut struct {
	Address common.Address `json:"address"`
	Amount  uint64         `json:"amount"`
}

type Transaction struct {
	Inputs  []*TxIn  `json:"inputs"`
	Outputs []*TxOut `json:"outputs"`
	PubKey  []byte   `json:"pubKey"`
	Sig     []byte   `json:"sig"`
}

func NewTransaction(inputs []*TxIn, outputs []*TxOut) *Transaction {
	return &Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// Hash returns the hash of transaction content. The signature is bound to this hash, so it is not covered
func (tx *Transaction) Hash() common.Hash {
	return RlpHash([]interface{}{
		tx.Inputs,
		tx.Outputs,
	})
}

// WithSignature returns a new transaction with the given signature
func (tx *Transaction) WithSignature(pubKey, sig []byte) *Transaction {
	cpy := &Transaction{
		Inputs:  tx.Inputs,
		Outputs: tx.Outputs,
		PubKey:  common.CopyBytes(pubKey),
		Sig:     common.CopyBytes(sig),
	}
	return cpy
}

// Amount returns the total value of outputs
func (tx *Transaction) Amount() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	return total
}

func (tx *Transaction) String() string {
	set := []string{
		fmt.Sprintf("Hash: %s", tx.Hash().Hex()),
		fmt.Sprintf("Inputs: %d", len(tx.Inputs)),
		fmt.Sprintf("Outputs: %d", len(tx.Outputs)),
		fmt.Sprintf("Amount: %d", tx.Amount()),
	}
	if len(tx.Sig) > 0 {
		set = append(set, fmt.Sprintf("Sig: %s", common.ToHex(tx.Sig)))
	}
	return fmt.Sprintf("{%s}", strings.Join(set, ", "))
}
