package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("ledger: invalid argument")
	ErrInvalidPayload  = fmt.Errorf("%w: payload is nil", ErrInvalidArgument)
	ErrInvalidGenesis  = fmt.Errorf("%w: genesis block is nil", ErrInvalidArgument)
	ErrIndexOutOfRange = errors.New("ledger: index out of range")
	ErrMiningExhausted = errors.New("ledger: mining attempts exhausted")
	ErrIntegrity       = errors.New("ledger: integrity check failed")
)
