// Package bridge implements the ERC-20 bridge. Ethereum tokens locked on
// the other side are represented 1:1 by bridged QRC-20 tokens minted here,
// less the bridge fee.
package bridge

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/qoranet/qoranet/foundation/qrc20"
)

// Defaults for a new bridge.
const (
	DefaultFeeBasisPoints   = 50
	DefaultMinConfirmations = 12

	// maxFeeBasisPoints caps what SetConfig will accept (10%).
	maxFeeBasisPoints = 1000

	basisPointDenominator = 10000
)

// Set of bridge errors.
var (
	ErrPaused             = errors.New("bridge is paused")
	ErrNotOwner           = errors.New("caller is not the bridge owner")
	ErrNotOperator        = errors.New("caller is not a bridge operator")
	ErrUnknownToken       = errors.New("token has no bridge mapping")
	ErrAmountTooSmall     = errors.New("amount does not cover the bridge fee")
	ErrInsufficientLocked = errors.New("insufficient locked balance on the bridge")
	ErrRecordNotFound     = errors.New("bridge record not found")
	ErrFeeTooHigh         = errors.New("bridge fee exceeds the maximum")
)

// Status tracks a bridge transfer through its lifecycle.
type Status string

// Set of bridge transfer statuses.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Direction identifies which way a transfer crosses the bridge.
type Direction string

// Set of bridge directions.
const (
	DirectionEthToQora Direction = "eth_to_qora"
	DirectionQoraToEth Direction = "qora_to_eth"
)

// Record captures one transfer across the bridge.
type Record struct {
	ID            uuid.UUID      `json:"id"`
	Direction     Direction      `json:"direction"`
	EthTxHash     common.Hash    `json:"eth_tx_hash"`
	EthToken      common.Address `json:"eth_token"`
	QoraToken     common.Address `json:"qora_token"`
	Account       common.Address `json:"account"`
	Amount        *big.Int       `json:"amount"`
	Fee           *big.Int       `json:"fee"`
	Net           *big.Int       `json:"net"`
	Confirmations uint32         `json:"confirmations"`
	Status        Status         `json:"status"`
	CreatedAt     uint64         `json:"created_at"`
	UpdatedAt     uint64         `json:"updated_at"`
}

// Config holds the tunable bridge parameters.
type Config struct {
	FeeBasisPoints   uint32 `json:"fee_basis_points"`
	MinConfirmations uint32 `json:"min_confirmations"`
}

// Stats summarizes bridge activity.
type Stats struct {
	TotalLocked    *big.Int       `json:"total_locked"`
	TotalMinted    *big.Int       `json:"total_minted"`
	TotalFees      *big.Int       `json:"total_fees"`
	TokenMappings  int            `json:"token_mappings"`
	CountByStatus  map[Status]int `json:"count_by_status"`
	TotalTransfers int            `json:"total_transfers"`
}

// Bridge manages ethereum token mappings, transfer records, and the
// bridged token supply through the registry.
type Bridge struct {
	mu        sync.RWMutex
	owner     common.Address
	address   common.Address
	registry  *qrc20.Registry
	cfg       Config
	paused    bool
	operators map[common.Address]struct{}
	ethToQora map[common.Address]common.Address
	qoraToEth map[common.Address]common.Address
	locked    map[common.Address]*big.Int
	minted    map[common.Address]*big.Int
	totalFees *big.Int
	records   map[uuid.UUID]*Record
}

// New constructs a bridge. The bridge address owns the bridged tokens it
// deploys, which is what lets it mint and keeps everyone else from doing so.
func New(owner common.Address, bridgeAddress common.Address, registry *qrc20.Registry) *Bridge {
	return &Bridge{
		owner:    owner,
		address:  bridgeAddress,
		registry: registry,
		cfg: Config{
			FeeBasisPoints:   DefaultFeeBasisPoints,
			MinConfirmations: DefaultMinConfirmations,
		},
		operators: make(map[common.Address]struct{}),
		ethToQora: make(map[common.Address]common.Address),
		qoraToEth: make(map[common.Address]common.Address),
		locked:    make(map[common.Address]*big.Int),
		minted:    make(map[common.Address]*big.Int),
		totalFees: big.NewInt(0),
		records:   make(map[uuid.UUID]*Record),
	}
}

// LockArgs describes an observed lock on the ethereum side.
type LockArgs struct {
	EthToken      common.Address
	EthTxHash     common.Hash
	TokenName     string
	TokenSymbol   string
	Decimals      uint8
	Recipient     common.Address
	Amount        *big.Int
	Confirmations uint32
}

// LockAndMint records a lock observed on the ethereum side and mints the
// bridged amount, less the fee, to the recipient. The first transfer of a
// token deploys its bridged QRC-20 counterpart.
func (b *Bridge) LockAndMint(args LockArgs) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.paused {
		return Record{}, ErrPaused
	}

	fee, net, err := b.split(args.Amount)
	if err != nil {
		return Record{}, err
	}

	qoraToken, exists := b.ethToQora[args.EthToken]
	if !exists {
		qoraToken, err = b.registry.Deploy(b.address, qrc20.Config{
			Name:     "Bridged " + args.TokenName,
			Symbol:   "b" + args.TokenSymbol,
			Decimals: args.Decimals,
			Owner:    b.address,
			Mintable: true,
			Burnable: true,
		})
		if err != nil {
			return Record{}, fmt.Errorf("deploy bridged token: %w", err)
		}

		b.ethToQora[args.EthToken] = qoraToken
		b.qoraToEth[qoraToken] = args.EthToken
		b.locked[args.EthToken] = big.NewInt(0)
		b.minted[args.EthToken] = big.NewInt(0)
	}

	if _, err := b.registry.Execute(qrc20.Transaction{
		Kind:   qrc20.TxMint,
		Token:  qoraToken,
		Caller: b.address,
		To:     args.Recipient,
		Amount: net,
	}); err != nil {
		return Record{}, fmt.Errorf("mint bridged token: %w", err)
	}

	b.locked[args.EthToken].Add(b.locked[args.EthToken], args.Amount)
	b.minted[args.EthToken].Add(b.minted[args.EthToken], net)
	b.totalFees.Add(b.totalFees, fee)

	status := StatusConfirmed
	if args.Confirmations >= b.cfg.MinConfirmations {
		status = StatusCompleted
	}

	record := b.newRecord(Record{
		Direction:     DirectionEthToQora,
		EthTxHash:     args.EthTxHash,
		EthToken:      args.EthToken,
		QoraToken:     qoraToken,
		Account:       args.Recipient,
		Amount:        new(big.Int).Set(args.Amount),
		Fee:           fee,
		Net:           net,
		Confirmations: args.Confirmations,
		Status:        status,
	})

	return record, nil
}

// BurnAndRelease burns bridged tokens held on this side and records a
// pending release of the underlying ethereum tokens.
func (b *Bridge) BurnAndRelease(qoraToken common.Address, holder common.Address, amount *big.Int, ethRecipient common.Address) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.paused {
		return Record{}, ErrPaused
	}

	ethToken, exists := b.qoraToEth[qoraToken]
	if !exists {
		return Record{}, ErrUnknownToken
	}

	fee, net, err := b.split(amount)
	if err != nil {
		return Record{}, err
	}

	if b.locked[ethToken].Cmp(net) < 0 {
		return Record{}, ErrInsufficientLocked
	}

	if _, err := b.registry.Execute(qrc20.Transaction{
		Kind:   qrc20.TxBurn,
		Token:  qoraToken,
		Caller: holder,
		Amount: amount,
	}); err != nil {
		return Record{}, fmt.Errorf("burn bridged token: %w", err)
	}

	b.locked[ethToken].Sub(b.locked[ethToken], net)

	// The burn destroys the gross amount, so the minted counter comes down
	// by gross, floored at zero.
	minted := b.minted[ethToken]
	if minted.Cmp(amount) < 0 {
		minted.SetInt64(0)
	} else {
		minted.Sub(minted, amount)
	}

	b.totalFees.Add(b.totalFees, fee)

	record := b.newRecord(Record{
		Direction: DirectionQoraToEth,
		EthToken:  ethToken,
		QoraToken: qoraToken,
		Account:   ethRecipient,
		Amount:    new(big.Int).Set(amount),
		Fee:       fee,
		Net:       net,
		Status:    StatusPending,
	})

	return record, nil
}

// =============================================================================
// Administration

// AddOperator authorizes an operator. Owner only.
func (b *Bridge) AddOperator(caller common.Address, operator common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.owner {
		return ErrNotOwner
	}

	b.operators[operator] = struct{}{}
	return nil
}

// RemoveOperator revokes an operator. Owner only.
func (b *Bridge) RemoveOperator(caller common.Address, operator common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.owner {
		return ErrNotOwner
	}

	delete(b.operators, operator)
	return nil
}

// UpdateStatus moves a record through its lifecycle. Operator only.
func (b *Bridge) UpdateStatus(caller common.Address, id uuid.UUID, status Status, confirmations uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.operators[caller]; !exists {
		return ErrNotOperator
	}

	record, exists := b.records[id]
	if !exists {
		return ErrRecordNotFound
	}

	record.Status = status
	record.Confirmations = confirmations
	record.UpdatedAt = uint64(time.Now().UTC().Unix())

	return nil
}

// EmergencyPause halts the bridge and cancels every pending release.
// Owner only.
func (b *Bridge) EmergencyPause(caller common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.owner {
		return ErrNotOwner
	}

	b.paused = true

	now := uint64(time.Now().UTC().Unix())
	for _, record := range b.records {
		if record.Status == StatusPending {
			record.Status = StatusCancelled
			record.UpdatedAt = now
		}
	}

	return nil
}

// Resume lifts an emergency pause. Owner only.
func (b *Bridge) Resume(caller common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.owner {
		return ErrNotOwner
	}

	b.paused = false
	return nil
}

// SetConfig updates the bridge parameters. Owner only. The fee is capped.
func (b *Bridge) SetConfig(caller common.Address, cfg Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.owner {
		return ErrNotOwner
	}
	if cfg.FeeBasisPoints > maxFeeBasisPoints {
		return ErrFeeTooHigh
	}

	b.cfg = cfg
	return nil
}

// =============================================================================
// Queries

// Record returns a copy of the specified transfer record.
func (b *Bridge) Record(id uuid.UUID) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, exists := b.records[id]
	if !exists {
		return Record{}, ErrRecordNotFound
	}

	return *record, nil
}

// QoraToken resolves the bridged counterpart of an ethereum token.
func (b *Bridge) QoraToken(ethToken common.Address) (common.Address, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	qoraToken, exists := b.ethToQora[ethToken]
	if !exists {
		return common.Address{}, ErrUnknownToken
	}

	return qoraToken, nil
}

// LockedBalance returns the gross amount locked for an ethereum token.
func (b *Bridge) LockedBalance(ethToken common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if locked, exists := b.locked[ethToken]; exists {
		return new(big.Int).Set(locked)
	}

	return big.NewInt(0)
}

// Config returns the current bridge parameters.
func (b *Bridge) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cfg
}

// Stats summarizes bridge activity across all tokens and records.
func (b *Bridge) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := Stats{
		TotalLocked:    big.NewInt(0),
		TotalMinted:    big.NewInt(0),
		TotalFees:      new(big.Int).Set(b.totalFees),
		TokenMappings:  len(b.ethToQora),
		CountByStatus:  make(map[Status]int),
		TotalTransfers: len(b.records),
	}

	for _, locked := range b.locked {
		stats.TotalLocked.Add(stats.TotalLocked, locked)
	}
	for _, minted := range b.minted {
		stats.TotalMinted.Add(stats.TotalMinted, minted)
	}
	for _, record := range b.records {
		stats.CountByStatus[record.Status]++
	}

	return stats
}

// =============================================================================

// split computes the fee and the net amount. The net must be positive.
func (b *Bridge) split(amount *big.Int) (fee *big.Int, net *big.Int, err error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, nil, ErrAmountTooSmall
	}

	fee = new(big.Int).Mul(amount, big.NewInt(int64(b.cfg.FeeBasisPoints)))
	fee.Div(fee, big.NewInt(basisPointDenominator))

	net = new(big.Int).Sub(amount, fee)
	if net.Sign() <= 0 {
		return nil, nil, ErrAmountTooSmall
	}

	return fee, net, nil
}

// newRecord stamps and stores a record. b.mu must be held.
func (b *Bridge) newRecord(record Record) Record {
	now := uint64(time.Now().UTC().Unix())
	record.ID = uuid.New()
	record.CreatedAt = now
	record.UpdatedAt = now

	b.records[record.ID] = &record
	return record
}
