package leveldb

import (
	"encoding/binary"
	"errors"
)

var ErrInvalidKey = errors.New("invalid database key")

type DatabasePutter interface {
	Put(key []byte, value []byte) error
}

type DatabaseReader interface {
	Get(key []byte) (value []byte, err error)
}

var (
	BlockPrefix = []byte("B") // BlockPrefix + seq (uint64 big endian) -> rlp(block)

	GenesisKey = []byte("LEMO-GENESIS-HASH")
	LastSeqKey = []byte("LEMO-LAST-SEQ")
)

func EncodeNumber(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}

func DecodeNumber(enc []byte) (uint64, error) {
	if len(enc) != 8 {
		return 0, ErrInvalidKey
	}
	return binary.BigEndian.Uint64(enc), nil
}

// BlockKey returns the key of block. Keys are sorted by seq in leveldb
func BlockKey(seq uint64) []byte {
	return append(append([]byte{}, BlockPrefix...), EncodeNumber(seq)...)
}

// SeqFromBlockKey parses seq from a block key
func SeqFromBlockKey(key []byte) (uint64, error) {
	if len(key) != len(BlockPrefix)+8 {
		return 0, ErrInvalidKey
	}
	return DecodeNumber(key[len(BlockPrefix):])
}
