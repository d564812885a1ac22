package types

import (
	"github.com/LemoFoundationLtd/lemochain-store/common/crypto"
)

// SignTx signs the transaction using the given signer
func SignTx(tx *Transaction, s crypto.Signer) (*Transaction, error) {
	sig, err := s.Sign(tx.Hash())
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(s.PublicKey(), sig), nil
}

// VerifyTx checks the signature of transaction by its own public key
func VerifyTx(tx *Transaction) error {
	if len(tx.Sig) == 0 || len(tx.PubKey) == 0 {
		return ErrNoSig
	}
	if !crypto.Verify(tx.Hash(), tx.PubKey, tx.Sig) {
		return ErrInvalidSig
	}
	return nil
}
