// Package qrc20 implements the QRC-20 token engine and its registry.
// Token and holder addresses are 20 byte EVM style addresses, distinct
// from the 32 byte native account ids.
package qrc20

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token holds the full state of a deployed QRC-20 token. Its methods are
// not safe for concurrent use; the registry serializes access.
type Token struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Owner       common.Address
	Mintable    bool
	Burnable    bool
	MaxSupply   *big.Int // nil means uncapped
	Paused      bool

	address    common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

// newToken constructs a token with empty balances.
func newToken(address common.Address, cfg Config) *Token {
	return &Token{
		Name:        cfg.Name,
		Symbol:      cfg.Symbol,
		Decimals:    cfg.Decimals,
		TotalSupply: big.NewInt(0),
		Owner:       cfg.Owner,
		Mintable:    cfg.Mintable,
		Burnable:    cfg.Burnable,
		MaxSupply:   cfg.MaxSupply,
		address:     address,
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

// BalanceOf returns the balance of the holder.
func (t *Token) BalanceOf(holder common.Address) *big.Int {
	if balance, exists := t.balances[holder]; exists {
		return new(big.Int).Set(balance)
	}

	return big.NewInt(0)
}

// Allowance returns what the spender may still transfer on behalf of the
// holder.
func (t *Token) Allowance(holder common.Address, spender common.Address) *big.Int {
	if allowed, exists := t.allowances[holder][spender]; exists {
		return new(big.Int).Set(allowed)
	}

	return big.NewInt(0)
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from common.Address, to common.Address, amount *big.Int) (Event, error) {
	if t.Paused {
		return Event{}, ErrTokenPaused
	}
	if to == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}

	if err := t.debit(from, amount); err != nil {
		return Event{}, err
	}
	t.creditBalance(to, amount)

	ev := newEvent(EventTransfer, t.address)
	ev.From = from
	ev.To = to
	ev.Amount = new(big.Int).Set(amount)
	return ev, nil
}

// Approve sets the spender allowance for the holder, overwriting any
// previous value.
func (t *Token) Approve(holder common.Address, spender common.Address, amount *big.Int) (Event, error) {
	if t.Paused {
		return Event{}, ErrTokenPaused
	}
	if spender == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}

	if t.allowances[holder] == nil {
		t.allowances[holder] = make(map[common.Address]*big.Int)
	}
	t.allowances[holder][spender] = new(big.Int).Set(amount)

	ev := newEvent(EventApproval, t.address)
	ev.From = holder
	ev.Spender = spender
	ev.Amount = new(big.Int).Set(amount)
	return ev, nil
}

// TransferFrom moves amount from the holder to the recipient on behalf of
// the spender. The allowance is checked before the balance.
func (t *Token) TransferFrom(spender common.Address, from common.Address, to common.Address, amount *big.Int) (Event, error) {
	if t.Paused {
		return Event{}, ErrTokenPaused
	}
	if to == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}

	allowed := t.Allowance(from, spender)
	if allowed.Cmp(amount) < 0 {
		return Event{}, &InsufficientAllowanceError{
			Required:  new(big.Int).Set(amount),
			Available: allowed,
		}
	}

	if err := t.debit(from, amount); err != nil {
		return Event{}, err
	}
	t.creditBalance(to, amount)

	t.allowances[from][spender] = new(big.Int).Sub(allowed, amount)

	ev := newEvent(EventTransfer, t.address)
	ev.From = from
	ev.To = to
	ev.Spender = spender
	ev.Amount = new(big.Int).Set(amount)
	return ev, nil
}

// Mint creates amount new tokens for the recipient. Only the owner of a
// mintable token may mint, and the max supply cannot be exceeded.
func (t *Token) Mint(caller common.Address, to common.Address, amount *big.Int) (Event, error) {
	if t.Paused {
		return Event{}, ErrTokenPaused
	}
	if caller != t.Owner {
		return Event{}, ErrOnlyOwner
	}
	if !t.Mintable {
		return Event{}, ErrExecutionFailed
	}
	if to == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}

	newSupply := new(big.Int).Add(t.TotalSupply, amount)
	if t.MaxSupply != nil && newSupply.Cmp(t.MaxSupply) > 0 {
		return Event{}, ErrExecutionFailed
	}

	t.creditBalance(to, amount)
	t.TotalSupply = newSupply

	ev := newEvent(EventMint, t.address)
	ev.To = to
	ev.Amount = new(big.Int).Set(amount)
	return ev, nil
}

// Burn destroys amount tokens from the named holder's balance on a
// burnable token. The caller does not need to be the holder or the owner,
// which lets the bridge burn deposits it does not hold itself.
func (t *Token) Burn(from common.Address, amount *big.Int) (Event, error) {
	if t.Paused {
		return Event{}, ErrTokenPaused
	}
	if !t.Burnable {
		return Event{}, ErrExecutionFailed
	}

	if err := t.debit(from, amount); err != nil {
		return Event{}, err
	}
	t.TotalSupply = new(big.Int).Sub(t.TotalSupply, amount)

	ev := newEvent(EventBurn, t.address)
	ev.From = from
	ev.Amount = new(big.Int).Set(amount)
	return ev, nil
}

// SetPaused pauses or unpauses the token. Owner only.
func (t *Token) SetPaused(caller common.Address, paused bool) (Event, error) {
	if caller != t.Owner {
		return Event{}, ErrOnlyOwner
	}

	t.Paused = paused

	ev := newEvent(EventPauseStatusChanged, t.address)
	ev.Paused = paused
	return ev, nil
}

// TransferOwnership hands the token to a new owner. Owner only.
func (t *Token) TransferOwnership(caller common.Address, newOwner common.Address) (Event, error) {
	if caller != t.Owner {
		return Event{}, ErrOnlyOwner
	}
	if newOwner == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}

	previous := t.Owner
	t.Owner = newOwner

	ev := newEvent(EventOwnershipTransfer, t.address)
	ev.From = previous
	ev.To = newOwner
	return ev, nil
}

// =============================================================================

// debit removes amount from the holder's balance.
func (t *Token) debit(holder common.Address, amount *big.Int) error {
	balance := t.BalanceOf(holder)
	if balance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{
			Required:  new(big.Int).Set(amount),
			Available: balance,
		}
	}

	t.balances[holder] = balance.Sub(balance, amount)
	return nil
}

// creditBalance adds amount to the holder's balance.
func (t *Token) creditBalance(holder common.Address, amount *big.Int) {
	t.balances[holder] = new(big.Int).Add(t.BalanceOf(holder), amount)
}
