package qrc20

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors for token operations.
var (
	ErrTokenNotFound   = errors.New("token not found")
	ErrTokenPaused     = errors.New("token is paused")
	ErrOnlyOwner       = errors.New("caller is not the owner")
	ErrSymbolExists    = errors.New("symbol already registered")
	ErrNameExists      = errors.New("name already registered")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrExecutionFailed = errors.New("execution failed")
)

// InsufficientBalanceError reports a balance that cannot cover an amount.
type InsufficientBalanceError struct {
	Required  *big.Int
	Available *big.Int
}

// Error implements the error interface.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s", e.Required, e.Available)
}

// InsufficientAllowanceError reports an allowance that cannot cover an
// amount.
type InsufficientAllowanceError struct {
	Required  *big.Int
	Available *big.Int
}

// Error implements the error interface.
func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance: required %s, available %s", e.Required, e.Available)
}
