package state

import (
	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/blockchain/peer"
	"github.com/qoranet/qoranet/foundation/qrc20"
	"github.com/qoranet/qoranet/foundation/qrc20/bridge"
)

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// ValidatorID returns the account id of this node's validator.
func (s *State) ValidatorID() database.AccountID {
	return s.validatorID
}

// Host returns a copy of host information.
func (s *State) Host() string {
	return s.host
}

// MinLiquidity returns the liquidity a validator needs to produce blocks.
func (s *State) MinLiquidity() uint64 {
	return s.minLiquidity
}

// MinApps returns the app count a validator needs to produce blocks.
func (s *State) MinApps() uint32 {
	return s.minApps
}

// LatestBlock returns a copy of the current latest block.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// LatestBlockHash returns the hash of the latest block.
func (s *State) LatestBlockHash() string {
	return s.db.LatestBlockHash()
}

// MempoolLength returns the current length of the mempool.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// Mempool returns a copy of the mempool.
func (s *State) Mempool() []database.SignedTx {
	return s.mempool.Copy()
}

// UpsertMempool adds a new transaction to the mempool.
func (s *State) UpsertMempool(tx database.SignedTx) error {
	_, err := s.mempool.Upsert(tx)
	return err
}

// Accounts returns a copy of the database accounts.
func (s *State) Accounts() []database.Account {
	return s.db.Accounts()
}

// QueryAccount returns a copy of the account from the database.
func (s *State) QueryAccount(accountID database.AccountID) (database.Account, error) {
	return s.db.Query(accountID)
}

// QueryBlocksByNumber returns the set of blocks for the specified range of
// block heights, inclusive.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	latest := s.db.LatestBlock().Header.Number
	if to > latest {
		to = latest
	}

	var blocks []database.Block
	for number := from; number <= to; number++ {
		block, err := s.db.GetBlockByNumber(number)
		if err != nil {
			return blocks
		}
		blocks = append(blocks, block)
	}

	return blocks
}

// QueryBlocksByAccount returns the set of blocks that contain transactions
// signed by, or paying, the specified account. An empty account id returns
// every block.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	var blocks []database.Block

	iter := s.db.ForEach()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			break
		}

		if accountID == "" {
			blocks = append(blocks, block)
			continue
		}

		for _, tx := range block.Transactions {
			if tx.FromID == accountID || touchesAccount(tx, accountID) {
				blocks = append(blocks, block)
				break
			}
		}
	}

	return blocks
}

// Validators returns the known validator stake records.
func (s *State) Validators() []database.ValidatorStake {
	return s.db.Validators()
}

// TotalLiquidity returns the network wide liquidity total.
func (s *State) TotalLiquidity() uint64 {
	return s.db.TotalLiquidity()
}

// ActiveApps returns the number of registered applications.
func (s *State) ActiveApps() uint32 {
	return s.db.ActiveApps()
}

// KnownExternalPeers retrieves a copy of the known peer list without this
// node.
func (s *State) KnownExternalPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// KnownPeers retrieves a copy of the full known peer list which includes
// this node. Used by the producer selection algorithm.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy("")
}

// AddKnownPeer provides the ability to add a new peer to the known peer
// list.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// RemoveKnownPeer provides the ability to remove a peer from the known
// peer list.
func (s *State) RemoveKnownPeer(peer peer.Peer) {
	s.knownPeers.Remove(peer)
}

// Oracle returns the fee oracle.
func (s *State) Oracle() *fees.Oracle {
	return s.oracle
}

// TokenRegistry returns the QRC-20 registry.
func (s *State) TokenRegistry() *qrc20.Registry {
	return s.registry
}

// Bridge returns the ERC-20 bridge.
func (s *State) Bridge() *bridge.Bridge {
	return s.bridge
}

// =============================================================================

// touchesAccount reports whether the transaction pays or concerns the
// specified account beyond being its signer.
func touchesAccount(tx database.SignedTx, accountID database.AccountID) bool {
	switch tx.Payload.Kind {
	case database.KindTransfer:
		return tx.Payload.Transfer.ToID == accountID
	case database.KindReportMetrics:
		return tx.Payload.ReportMetrics.AppOwnerID == accountID
	case database.KindClaimRewards:
		return tx.Payload.ClaimRewards.ClaimantID == accountID
	}

	return false
}
