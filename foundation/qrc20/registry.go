package qrc20

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// firstContractID is the id assigned to the first deployed token. Contract
// ids below this are reserved for system contracts.
const firstContractID = 1000

// Config describes a token to deploy.
type Config struct {
	Name          string
	Symbol        string
	Decimals      uint8
	InitialSupply *big.Int
	Owner         common.Address
	Mintable      bool
	Burnable      bool
	MaxSupply     *big.Int
}

// Info is a read-only view of a deployed token.
type Info struct {
	Address     common.Address `json:"address"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    uint8          `json:"decimals"`
	TotalSupply *big.Int       `json:"total_supply"`
	Owner       common.Address `json:"owner"`
	Mintable    bool           `json:"mintable"`
	Burnable    bool           `json:"burnable"`
	MaxSupply   *big.Int       `json:"max_supply,omitempty"`
	Paused      bool           `json:"paused"`
}

// Registry owns all deployed QRC-20 tokens and serializes access to them.
type Registry struct {
	mu       sync.RWMutex
	owner    common.Address
	tokens   map[common.Address]*Token
	bySymbol map[string]common.Address
	byName   map[string]common.Address
	nextID   uint64
	events   []Event
}

// NewRegistry constructs a registry administered by the specified owner.
func NewRegistry(owner common.Address) *Registry {
	return &Registry{
		owner:    owner,
		tokens:   make(map[common.Address]*Token),
		bySymbol: make(map[string]common.Address),
		byName:   make(map[string]common.Address),
		nextID:   firstContractID,
	}
}

// Deploy registers a new token and mints its initial supply to the
// deployer. Symbols and names must be unique across the registry.
func (r *Registry) Deploy(deployer common.Address, cfg Config) (common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deployLocked(deployer, cfg)
}

// deployLocked performs the deployment. r.mu must be held.
func (r *Registry) deployLocked(deployer common.Address, cfg Config) (common.Address, error) {
	if deployer == (common.Address{}) {
		return common.Address{}, ErrInvalidAddress
	}
	if cfg.Name == "" || cfg.Symbol == "" {
		return common.Address{}, fmt.Errorf("%w: name and symbol are required", ErrExecutionFailed)
	}
	if _, exists := r.bySymbol[cfg.Symbol]; exists {
		return common.Address{}, ErrSymbolExists
	}
	if _, exists := r.byName[cfg.Name]; exists {
		return common.Address{}, ErrNameExists
	}

	if cfg.Owner == (common.Address{}) {
		cfg.Owner = deployer
	}

	address := contractAddress(deployer, cfg.Symbol, r.nextID)
	token := newToken(address, cfg)

	if cfg.InitialSupply != nil && cfg.InitialSupply.Sign() > 0 {
		token.balances[deployer] = new(big.Int).Set(cfg.InitialSupply)
		token.TotalSupply = new(big.Int).Set(cfg.InitialSupply)
	}

	r.tokens[address] = token
	r.bySymbol[cfg.Symbol] = address
	r.byName[cfg.Name] = address
	r.nextID++

	ev := newEvent(EventDeploy, address)
	ev.To = deployer
	ev.Symbol = cfg.Symbol
	ev.Amount = token.TotalSupply
	r.events = append(r.events, ev)

	return address, nil
}

// =============================================================================
// Transaction execution

// TxKind identifies a token transaction.
type TxKind string

// Set of token transaction kinds.
const (
	TxTransfer          TxKind = "transfer"
	TxApprove           TxKind = "approve"
	TxTransferFrom      TxKind = "transfer_from"
	TxMint              TxKind = "mint"
	TxBurn              TxKind = "burn"
	TxPause             TxKind = "pause"
	TxUnpause           TxKind = "unpause"
	TxTransferOwnership TxKind = "transfer_ownership"
)

// Transaction is a request to mutate a deployed token.
type Transaction struct {
	Kind     TxKind         `json:"kind"`
	Token    common.Address `json:"token"`
	Caller   common.Address `json:"caller"`
	From     common.Address `json:"from,omitempty"`
	To       common.Address `json:"to,omitempty"`
	Spender  common.Address `json:"spender,omitempty"`
	NewOwner common.Address `json:"new_owner,omitempty"`
	Amount   *big.Int       `json:"amount,omitempty"`
}

// Execute dispatches a token transaction against the registry.
func (r *Registry) Execute(tx Transaction) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.tokens[tx.Token]
	if !exists {
		return Event{}, ErrTokenNotFound
	}

	var ev Event
	var err error

	switch tx.Kind {
	case TxTransfer:
		ev, err = token.Transfer(tx.Caller, tx.To, tx.Amount)
	case TxApprove:
		ev, err = token.Approve(tx.Caller, tx.Spender, tx.Amount)
	case TxTransferFrom:
		ev, err = token.TransferFrom(tx.Caller, tx.From, tx.To, tx.Amount)
	case TxMint:
		ev, err = token.Mint(tx.Caller, tx.To, tx.Amount)
	case TxBurn:
		from := tx.From
		if from == (common.Address{}) {
			from = tx.Caller
		}
		ev, err = token.Burn(from, tx.Amount)
	case TxPause:
		ev, err = token.SetPaused(tx.Caller, true)
	case TxUnpause:
		ev, err = token.SetPaused(tx.Caller, false)
	case TxTransferOwnership:
		ev, err = token.TransferOwnership(tx.Caller, tx.NewOwner)
	default:
		return Event{}, fmt.Errorf("%w: unknown transaction kind %q", ErrExecutionFailed, tx.Kind)
	}

	if err != nil {
		return Event{}, err
	}

	r.events = append(r.events, ev)
	return ev, nil
}

// =============================================================================
// Queries

// TokenInfo returns a read-only view of the token.
func (r *Registry) TokenInfo(address common.Address) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.tokens[address]
	if !exists {
		return Info{}, ErrTokenNotFound
	}

	return info(token), nil
}

// TokenBySymbol resolves a token address by symbol.
func (r *Registry) TokenBySymbol(symbol string) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, exists := r.bySymbol[symbol]
	if !exists {
		return common.Address{}, ErrTokenNotFound
	}

	return address, nil
}

// BalanceOf returns the holder's balance on the token.
func (r *Registry) BalanceOf(tokenAddr common.Address, holder common.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.tokens[tokenAddr]
	if !exists {
		return nil, ErrTokenNotFound
	}

	return token.BalanceOf(holder), nil
}

// Allowance returns the spender's allowance on the token.
func (r *Registry) Allowance(tokenAddr common.Address, holder common.Address, spender common.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.tokens[tokenAddr]
	if !exists {
		return nil, ErrTokenNotFound
	}

	return token.Allowance(holder, spender), nil
}

// List returns a view of every deployed token.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.tokens))
	for _, token := range r.tokens {
		infos = append(infos, info(token))
	}

	return infos
}

// Events returns a copy of the recorded token events.
func (r *Registry) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

// =============================================================================
// Registry administration

// ForcePause pauses a token regardless of its owner. Registry owner only.
func (r *Registry) ForcePause(caller common.Address, tokenAddr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrOnlyOwner
	}

	token, exists := r.tokens[tokenAddr]
	if !exists {
		return ErrTokenNotFound
	}

	token.Paused = true

	ev := newEvent(EventPauseStatusChanged, tokenAddr)
	ev.Paused = true
	r.events = append(r.events, ev)

	return nil
}

// TransferRegistryOwnership hands registry administration to a new owner.
func (r *Registry) TransferRegistryOwnership(caller common.Address, newOwner common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrOnlyOwner
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidAddress
	}

	r.owner = newOwner
	return nil
}

// =============================================================================

// contractAddress derives a deterministic 20 byte address for a new token.
func contractAddress(deployer common.Address, symbol string, id uint64) common.Address {
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)

	hash := crypto.Keccak256(deployer.Bytes(), []byte(symbol), idBytes)
	return common.BytesToAddress(hash[12:])
}

// info builds the read-only view of a token.
func info(token *Token) Info {
	i := Info{
		Address:     token.address,
		Name:        token.Name,
		Symbol:      token.Symbol,
		Decimals:    token.Decimals,
		TotalSupply: new(big.Int).Set(token.TotalSupply),
		Owner:       token.Owner,
		Mintable:    token.Mintable,
		Burnable:    token.Burnable,
		Paused:      token.Paused,
	}
	if token.MaxSupply != nil {
		i.MaxSupply = new(big.Int).Set(token.MaxSupply)
	}

	return i
}
