package crypto

import (
	"encoding/hex"
	"errors"

	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/btcsuite/btcd/btcec"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// Signer signs transaction digests. The chain store itself never signs anything, it only needs data to be hashable.
type Signer interface {
	// Sign returns the signature of a 32 bytes digest
	Sign(hash common.Hash) ([]byte, error)
	// PublicKey returns the compressed public key which verifies the signatures
	PublicKey() []byte
}

// KeySigner is a Signer backed by a secp256k1 private key
type KeySigner struct {
	priv *btcec.PrivateKey
}

// GenerateKey creates a signer with a new random key
func GenerateKey() (*KeySigner, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return &KeySigner{priv: priv}, nil
}

// HexToSigner parses a hex encoded 32 bytes private key
func HexToSigner(hexKey string) (*KeySigner, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), b)
	if priv.D.Sign() <= 0 || priv.D.Cmp(btcec.S256().N) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	return &KeySigner{priv: priv}, nil
}

func (s *KeySigner) Sign(hash common.Hash) ([]byte, error) {
	sig, err := s.priv.Sign(hash[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func (s *KeySigner) PublicKey() []byte {
	return s.priv.PubKey().SerializeCompressed()
}

// Address returns the account address of the signer
func (s *KeySigner) Address() common.Address {
	return PubkeyToAddress(s.PublicKey())
}

// Verify checks a DER signature of hash against a serialized public key. Any malformed input is reported as false.
func Verify(hash common.Hash, pubKey, sig []byte) bool {
	pub, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return false
	}
	signature, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return false
	}
	return signature.Verify(hash[:], pub)
}

// PubkeyToAddress derives the address from the last 20 bytes of the uncompressed public key's Keccak256 hash.
// An unparsable key maps to the zero address.
func PubkeyToAddress(pubKey []byte) common.Address {
	pub, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return common.Address{}
	}
	raw := pub.SerializeUncompressed()
	return common.BytesToAddress(Keccak256(raw[1:])[12:])
}
