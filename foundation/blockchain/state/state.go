// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/blockchain/mempool"
	"github.com/qoranet/qoranet/foundation/blockchain/peer"
	"github.com/qoranet/qoranet/foundation/qrc20"
	"github.com/qoranet/qoranet/foundation/qrc20/bridge"
)

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for the state to run background operations.
type Worker interface {
	Shutdown()
	SignalShareTx(blockTx database.SignedTx)
}

// =============================================================================

// Config represents the configuration required to start the blockchain node.
type Config struct {
	ValidatorID    database.AccountID
	Host           string
	Storage        database.Storage
	Genesis        genesis.Genesis
	SelectStrategy string
	KnownPeers     *peer.PeerSet
	Oracle         *fees.Oracle
	TokenAdmin     common.Address
	BridgeAddress  common.Address
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	validatorID  database.AccountID
	host         string
	evHandler    EventHandler
	minLiquidity uint64
	minApps      uint32
	maxTxPer     int

	allowProducing bool

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	db         *database.Database
	oracle     *fees.Oracle
	registry   *qrc20.Registry
	bridge     *bridge.Bridge

	worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the blockchain.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// Open the mempool with the configured selection strategy.
	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = "priority"
	}
	mpool, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	oracle := cfg.Oracle
	if oracle == nil {
		oracle = fees.NewOracle()
	}

	registry := qrc20.NewRegistry(cfg.TokenAdmin)

	maxTxPer := int(cfg.Genesis.MaxTxPerBlock)
	if maxTxPer == 0 {
		maxTxPer = 1000
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		validatorID:    cfg.ValidatorID,
		host:           cfg.Host,
		evHandler:      ev,
		minLiquidity:   cfg.Genesis.MinLiquidity,
		minApps:        cfg.Genesis.MinApps,
		maxTxPer:       maxTxPer,
		allowProducing: true,
		knownPeers:     cfg.KnownPeers,
		genesis:        cfg.Genesis,
		mempool:        mpool,
		db:             db,
		oracle:         oracle,
		registry:       registry,
		bridge:         bridge.New(cfg.TokenAdmin, cfg.BridgeAddress, registry),
	}

	// Bootstrap the chain with a genesis block when storage is empty.
	if db.LatestBlock().Header.Validator == "" {
		genesisBlock := database.GenesisBlock(cfg.ValidatorID)
		if err := db.ApplyBlock(genesisBlock); err != nil {
			return nil, err
		}
		ev("state: New: chain bootstrapped with genesis block")
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	if s.worker != nil {
		s.worker.Shutdown()
	}

	return nil
}

// SetWorker takes the worker interface that provides access to launched
// goroutine operations.
func (s *State) SetWorker(w Worker) {
	s.worker = w
}

// =============================================================================

// IsProducingAllowed identifies if the node is allowed to produce blocks.
func (s *State) IsProducingAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.allowProducing
}

// TurnProducingOn sets the allowProducing flag on.
func (s *State) TurnProducingOn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowProducing = true
}

// TurnProducingOff sets the allowProducing flag off.
func (s *State) TurnProducingOff() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowProducing = false
}
