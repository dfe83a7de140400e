// Package database handles all the lower level support for maintaining the
// blockchain in storage and maintaining an in-memory view of accounts.
package database

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

// maxCachedAccounts bounds the in-memory account view. When the cache is
// full the least recently updated account is evicted; it remains on disk.
const maxCachedAccounts = 10000

// ValidatorStake tracks what a validator has put into the network. It
// drives producer eligibility.
type ValidatorStake struct {
	AccountID AccountID `json:"account_id"`
	Liquidity uint64    `json:"liquidity"`
	Apps      uint32    `json:"apps"`
}

// Application represents a registered application and its latest reported
// metrics.
type Application struct {
	OwnerID   AccountID    `json:"owner"`
	AppID     string       `json:"app_id"`
	AppType   string       `json:"app_type"`
	Resources AppResources `json:"resources"`
	Metrics   AppMetrics   `json:"metrics"`
}

// Database manages data related to accounts, blocks, and the registered
// validators and applications.
type Database struct {
	mu             sync.RWMutex
	genesis        genesis.Genesis
	storage        Storage
	latestBlock    Block
	accounts       map[AccountID]Account
	validators     map[AccountID]ValidatorStake
	totalLiquidity uint64
	activeApps     uint32
	evHandler      func(v string, args ...any)
}

// New constructs a new database and applies any existing chain state from
// storage. With empty storage the genesis balances are seeded.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	db := Database{
		genesis:    gen,
		storage:    storage,
		accounts:   make(map[AccountID]Account),
		validators: make(map[AccountID]ValidatorStake),
		evHandler:  evHandler,
	}

	height, exists, err := db.readLatestHeight()
	if err != nil {
		return nil, fmt.Errorf("read latest height: %w", err)
	}

	if !exists {
		now := uint64(time.Now().UTC().Unix())
		for accountStr, balance := range gen.Balances {
			accountID, err := ToAccountID(accountStr)
			if err != nil {
				return nil, fmt.Errorf("genesis account %q: %w", accountStr, err)
			}

			account := newAccount(accountID, balance, now)
			if err := db.writeAccount(account); err != nil {
				return nil, fmt.Errorf("seed genesis account: %w", err)
			}
		}

		return &db, nil
	}

	block, err := db.GetBlockByNumber(height)
	if err != nil {
		return nil, fmt.Errorf("read latest block: %w", err)
	}
	db.latestBlock = block

	if err := db.readCounters(); err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}

	if err := db.readValidators(); err != nil {
		return nil, fmt.Errorf("read validators: %w", err)
	}

	return &db, nil
}

// Close releases the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// =============================================================================
// Accounts

// Query retrieves an account from the database, reading through to storage
// on a cache miss.
func (db *Database) Query(accountID AccountID) (Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.queryLocked(accountID)
}

// Remove deletes an account from the database.
func (db *Database) Remove(accountID AccountID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.accounts, accountID)
	return db.storage.Delete(KeyspaceAccounts, string(accountID))
}

// Copy makes a copy of the current cached accounts in the database.
func (db *Database) Copy() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = account
	}
	return accounts
}

// Accounts returns the cached accounts sorted by account id.
func (db *Database) Accounts() []Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make([]Account, 0, len(db.accounts))
	for _, account := range db.accounts {
		accounts = append(accounts, account)
	}

	sort.Sort(byAccount(accounts))
	return accounts
}

// CachedAccounts returns the number of accounts currently cached.
func (db *Database) CachedAccounts() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.accounts)
}

// queryLocked reads the account from cache or storage. db.mu must be held.
func (db *Database) queryLocked(accountID AccountID) (Account, error) {
	if account, exists := db.accounts[accountID]; exists {
		return account, nil
	}

	data, err := db.storage.Get(KeyspaceAccounts, string(accountID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, errors.New("account not found")
		}
		return Account{}, err
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return Account{}, err
	}

	db.cacheLocked(account)
	return account, nil
}

// writeAccount persists the account and refreshes the cache. db.mu must be
// held by callers inside the apply path; New calls it before the database
// is shared.
func (db *Database) writeAccount(account Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	if err := db.storage.Put(KeyspaceAccounts, string(account.AccountID), data); err != nil {
		return err
	}

	db.cacheLocked(account)
	return nil
}

// cacheLocked inserts the account into the cache, evicting the least
// recently updated account when the cache is full.
func (db *Database) cacheLocked(account Account) {
	if _, exists := db.accounts[account.AccountID]; !exists && len(db.accounts) >= maxCachedAccounts {
		var oldestID AccountID
		oldest := uint64(math.MaxUint64)
		for accountID, acct := range db.accounts {
			if acct.LastUpdated < oldest {
				oldest = acct.LastUpdated
				oldestID = accountID
			}
		}
		delete(db.accounts, oldestID)
	}

	db.accounts[account.AccountID] = account
}

// =============================================================================
// Blocks

// LatestBlock returns the latest block known to the database.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// GetBlock retrieves a block from storage by its hash.
func (db *Database) GetBlock(hash string) (Block, error) {
	data, err := db.storage.Get(KeyspaceBlocks, hash)
	if err != nil {
		return Block{}, err
	}

	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return Block{}, err
	}

	return block, nil
}

// GetBlockByNumber retrieves a block from storage by its height.
func (db *Database) GetBlockByNumber(number uint64) (Block, error) {
	hash, err := db.storage.Get(KeyspaceBlocks, fmt.Sprintf("height:%d", number))
	if err != nil {
		return Block{}, err
	}

	return db.GetBlock(string(hash))
}

// ForEach returns an iterator to walk the chain from the genesis block to
// the latest block.
func (db *Database) ForEach() *blockIterator {
	return &blockIterator{
		db:     db,
		latest: db.LatestBlock().Header.Number,
	}
}

// ApplyBlock applies the transactions in the block to the account state,
// persists the block, and advances the latest block. The block is expected
// to have been validated.
func (db *Database) ApplyBlock(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.evHandler("database: ApplyBlock: blk[%d]: txs[%d]", block.Header.Number, len(block.Transactions))

	for _, tx := range block.Transactions {
		if err := db.applyTransaction(block.Header.Validator, tx); err != nil {
			return fmt.Errorf("apply tx %s: %w", tx.HashString(), err)
		}
	}

	if err := db.writeBlock(block); err != nil {
		return fmt.Errorf("write block: %w", err)
	}

	db.latestBlock = block
	return nil
}

// writeBlock persists the block under its hash and height, indexes its
// transactions, and updates the chain metadata. db.mu must be held.
func (db *Database) writeBlock(block Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	hash := block.Hash()
	if err := db.storage.Put(KeyspaceBlocks, hash, data); err != nil {
		return err
	}
	if err := db.storage.Put(KeyspaceBlocks, fmt.Sprintf("height:%d", block.Header.Number), []byte(hash)); err != nil {
		return err
	}

	for _, tx := range block.Transactions {
		txData, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		if err := db.storage.Put(KeyspaceTransactions, tx.HashString(), txData); err != nil {
			return err
		}
	}

	if err := db.storage.Put(KeyspaceMetadata, metaLatestBlockHash, []byte(hash)); err != nil {
		return err
	}

	height := make([]byte, 8)
	binary.LittleEndian.PutUint64(height, block.Header.Number)
	if err := db.storage.Put(KeyspaceMetadata, metaLatestBlockHeight, height); err != nil {
		return err
	}

	return db.writeCounters()
}

// =============================================================================
// Transaction application

// applyTransaction performs the business logic for applying a transaction
// to the account state. db.mu must be held.
func (db *Database) applyTransaction(validator AccountID, tx SignedTx) error {
	now := uint64(time.Now().UTC().Unix())

	from, err := db.queryLocked(tx.FromID)
	if err != nil {
		return fmt.Errorf("from account %s: %w", tx.FromID, err)
	}

	if tx.Nonce != from.Nonce+1 {
		return fmt.Errorf("invalid nonce, got %d, exp %d", tx.Nonce, from.Nonce+1)
	}

	cost := tx.FeeQOR
	if tx.Payload.Kind == KindTransfer {
		cost += tx.Payload.Transfer.Amount
	}
	if from.Balance < cost {
		return fmt.Errorf("%s has an insufficient balance, got %d, need %d", tx.FromID, from.Balance, cost)
	}

	from.Balance -= cost
	from.Nonce = tx.Nonce
	from.LastUpdated = now
	if err := db.writeAccount(from); err != nil {
		return err
	}

	switch tx.Payload.Kind {
	case KindTransfer:
		if err := db.credit(tx.Payload.Transfer.ToID, tx.Payload.Transfer.Amount, now); err != nil {
			return err
		}

	case KindProvideLiquidity:
		var provided uint64
		for _, amount := range tx.Payload.ProvideLiquidity.LPTokens {
			provided += amount
		}
		db.totalLiquidity += provided

		stake := db.validators[tx.FromID]
		stake.AccountID = tx.FromID
		stake.Liquidity += provided
		db.validators[tx.FromID] = stake
		if err := db.writeValidators(); err != nil {
			return err
		}

	case KindRegisterApp:
		app := Application{
			OwnerID:   tx.Payload.RegisterApp.OwnerID,
			AppID:     tx.Payload.RegisterApp.AppID,
			AppType:   tx.Payload.RegisterApp.AppType,
			Resources: tx.Payload.RegisterApp.Resources,
		}
		if err := db.writeApplication(app); err != nil {
			return err
		}
		db.activeApps++

		stake := db.validators[tx.FromID]
		stake.AccountID = tx.FromID
		stake.Apps++
		db.validators[tx.FromID] = stake
		if err := db.writeValidators(); err != nil {
			return err
		}

	case KindReportMetrics:
		report := tx.Payload.ReportMetrics
		app, err := db.application(report.AppOwnerID, report.AppID)
		if err != nil {
			return fmt.Errorf("application %s: %w", report.AppID, err)
		}
		app.Metrics = report.Metrics
		if err := db.writeApplication(app); err != nil {
			return err
		}

	case KindClaimRewards:
		claim := tx.Payload.ClaimRewards
		if err := db.credit(claim.ClaimantID, claim.LPRewards+claim.AppRewards, now); err != nil {
			return err
		}
	}

	// The producing validator collects the fee.
	if err := db.credit(validator, tx.FeeQOR, now); err != nil {
		return err
	}

	return nil
}

// credit adds the amount to the account, creating it on first sight.
func (db *Database) credit(accountID AccountID, amount uint64, now uint64) error {
	account, err := db.queryLocked(accountID)
	if err != nil {
		account = newAccount(accountID, 0, now)
	}

	account.Balance += amount
	account.LastUpdated = now
	return db.writeAccount(account)
}

// =============================================================================
// Validators and applications

// TotalLiquidity returns the liquidity provided across the network.
func (db *Database) TotalLiquidity() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.totalLiquidity
}

// ActiveApps returns the number of registered applications.
func (db *Database) ActiveApps() uint32 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.activeApps
}

// Validators returns the known validator stakes sorted by account id.
func (db *Database) Validators() []ValidatorStake {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stakes := make([]ValidatorStake, 0, len(db.validators))
	for _, stake := range db.validators {
		stakes = append(stakes, stake)
	}

	sort.Slice(stakes, func(i, j int) bool {
		return stakes[i].AccountID < stakes[j].AccountID
	})

	return stakes
}

// Validator returns the stake record for the specified account.
func (db *Database) Validator(accountID AccountID) (ValidatorStake, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stake, exists := db.validators[accountID]
	return stake, exists
}

// QueryApplication returns a registered application.
func (db *Database) QueryApplication(ownerID AccountID, appID string) (Application, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.application(ownerID, appID)
}

func (db *Database) application(ownerID AccountID, appID string) (Application, error) {
	data, err := db.storage.Get(KeyspaceApplications, appKey(ownerID, appID))
	if err != nil {
		return Application{}, err
	}

	var app Application
	if err := json.Unmarshal(data, &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

func (db *Database) writeApplication(app Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return err
	}

	return db.storage.Put(KeyspaceApplications, appKey(app.OwnerID, app.AppID), data)
}

func appKey(ownerID AccountID, appID string) string {
	return fmt.Sprintf("%s:%s", ownerID, appID)
}

// =============================================================================
// Persistence helpers

// readLatestHeight reads the latest chain height from the metadata
// keyspace, reporting whether a chain exists at all.
func (db *Database) readLatestHeight() (uint64, bool, error) {
	data, err := db.storage.Get(KeyspaceMetadata, metaLatestBlockHeight)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	if len(data) != 8 {
		return 0, false, fmt.Errorf("corrupt height metadata, %d bytes", len(data))
	}

	return binary.LittleEndian.Uint64(data), true, nil
}

func (db *Database) readCounters() error {
	if data, err := db.storage.Get(KeyspaceMetadata, metaTotalLiquidity); err == nil && len(data) == 8 {
		db.totalLiquidity = binary.LittleEndian.Uint64(data)
	}

	if data, err := db.storage.Get(KeyspaceMetadata, metaActiveApps); err == nil && len(data) == 4 {
		db.activeApps = binary.LittleEndian.Uint32(data)
	}

	return nil
}

func (db *Database) writeCounters() error {
	liquidity := make([]byte, 8)
	binary.LittleEndian.PutUint64(liquidity, db.totalLiquidity)
	if err := db.storage.Put(KeyspaceMetadata, metaTotalLiquidity, liquidity); err != nil {
		return err
	}

	apps := make([]byte, 4)
	binary.LittleEndian.PutUint32(apps, db.activeApps)
	return db.storage.Put(KeyspaceMetadata, metaActiveApps, apps)
}

func (db *Database) readValidators() error {
	data, err := db.storage.Get(KeyspaceValidators, "all")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &db.validators)
}

func (db *Database) writeValidators() error {
	data, err := json.Marshal(db.validators)
	if err != nil {
		return err
	}

	return db.storage.Put(KeyspaceValidators, "all", data)
}

// =============================================================================

// LatestBlockHash returns the hash of the latest block, or the zero hash
// when the chain is empty.
func (db *Database) LatestBlockHash() string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.latestBlock.Header.Validator == "" && db.latestBlock.Header.TimeStamp == 0 {
		return signature.ZeroHash
	}

	return db.latestBlock.Hash()
}
