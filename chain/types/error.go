package types

import (
	"errors"
)

var (
	ErrNoHeader   = errors.New("block header is required")
	ErrNoSig      = errors.New("transaction is not signed")
	ErrInvalidSig = errors.New("invalid transaction sig")
)
