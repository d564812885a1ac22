package chain

import "errors"

var (
	ErrOrphanBlock     = errors.New("parent block not exist in local")
	ErrMalformedBlock  = errors.New("malformed block")
	ErrGenesisMismatch = errors.New("genesis block mismatch with local store")
	ErrSaveBlock       = errors.New("save block to db error")
	ErrLoadBlock       = errors.New("load block fail")
)
