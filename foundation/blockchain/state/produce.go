package state

import (
	"context"
	"errors"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are no transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// ProduceNewBlock attempts to create a new block with a proper hash.
func (s *State) ProduceNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: ProduceNewBlock: started")
	defer s.evHandler("state: ProduceNewBlock: completed")

	// Pick the best transactions from the mempool.
	txs := s.mempool.PickBest(s.maxTxPer)
	if len(txs) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	if err := ctx.Err(); err != nil {
		return database.Block{}, err
	}

	// Filter out transactions that can no longer clear against the
	// committed state. They are dropped from the pool.
	valid := make([]database.SignedTx, 0, len(txs))
	for _, tx := range txs {
		account, err := s.db.Query(tx.FromID)
		if err != nil || tx.Nonce != account.Nonce+uint64(countBefore(valid, tx.FromID))+1 {
			s.evHandler("state: ProduceNewBlock: WARNING: dropping tx[%s]: stale nonce", tx)
			s.mempool.Remove(tx)
			continue
		}
		valid = append(valid, tx)
	}
	if len(valid) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	// Attempt to create a new block by building the header and the
	// transactions root.
	block, err := database.NewBlock(database.NewBlockArgs{
		Validator:      s.validatorID,
		PrevBlock:      s.db.LatestBlock(),
		Transactions:   valid,
		TotalLiquidity: s.db.TotalLiquidity(),
		ActiveApps:     s.db.ActiveApps(),
	})
	if err != nil {
		return database.Block{}, err
	}

	if err := ctx.Err(); err != nil {
		return database.Block{}, err
	}

	// Validate the block conforms to the consensus rules and update the
	// database with this new block.
	if err := s.validateUpdateDatabase(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it,
// and if valid, adds the block to the local blockchain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash(), len(block.Transactions))
	defer s.evHandler("state: ProcessProposedBlock: completed")

	return s.validateUpdateDatabase(block)
}

// validateUpdateDatabase takes the block and validates the block against
// the consensus rules. If the block passes, the state of the node is
// updated including adding the block to disk.
func (s *State) validateUpdateDatabase(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: validateUpdateDatabase: validate block")

	if err := block.ValidateBlock(s.db.LatestBlock(), s.evHandler); err != nil {
		return err
	}

	s.evHandler("state: validateUpdateDatabase: write to disk and apply accounts")

	if err := s.db.ApplyBlock(block); err != nil {
		return err
	}

	s.evHandler("state: validateUpdateDatabase: remove block txs from mempool")

	for _, tx := range block.Transactions {
		s.evHandler("state: validateUpdateDatabase: tx[%s] removed from mempool", tx)
		s.mempool.Remove(tx)
	}

	return nil
}

// countBefore returns how many already selected transactions belong to the
// signer. It keeps per-signer nonce sequencing intact while filtering.
func countBefore(txs []database.SignedTx, accountID database.AccountID) int {
	var n int
	for _, tx := range txs {
		if tx.FromID == accountID {
			n++
		}
	}
	return n
}
