package database

import (
	"errors"
)

// The set of keyspaces the database writes into.
const (
	KeyspaceBlocks       = "blocks"
	KeyspaceTransactions = "transactions"
	KeyspaceAccounts     = "accounts"
	KeyspaceValidators   = "validators"
	KeyspaceApplications = "applications"
	KeyspaceMetadata     = "metadata"
)

// Metadata keys maintained by the database.
const (
	metaLatestBlockHash   = "latest_block_hash"
	metaLatestBlockHeight = "latest_block_height"
	metaTotalLiquidity    = "total_liquidity"
	metaActiveApps        = "active_apps"
)

// ErrNotFound is returned by storage implementations when a key does not
// exist in a keyspace.
var ErrNotFound = errors.New("not found")

// Storage interface represents the behavior required to be implemented by
// any package providing persistence for the database.
type Storage interface {
	Put(keyspace string, key string, data []byte) error
	Get(keyspace string, key string) ([]byte, error)
	Delete(keyspace string, key string) error
	Close() error
}
