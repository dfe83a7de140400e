package state

import (
	"fmt"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// UpsertWalletTransaction accepts a transaction from a wallet for inclusion
// into the blockchain.
func (s *State) UpsertWalletTransaction(signedTx database.SignedTx) error {

	// CORE NOTE: It's up to the wallet to make sure the account has a proper
	// balance and nonce. Fees will be taken if this transaction is selected
	// regardless of the outcome of its execution.

	if err := s.validateTransaction(signedTx); err != nil {
		return err
	}

	n, err := s.mempool.Upsert(signedTx)
	if err != nil {
		return err
	}

	s.evHandler("state: UpsertWalletTransaction: mempool[%d]: tx[%s]", n, signedTx)

	s.worker.SignalShareTx(signedTx)
	return nil
}

// UpsertNodeTransaction accepts a transaction shared by another node for
// inclusion into the blockchain.
func (s *State) UpsertNodeTransaction(signedTx database.SignedTx) error {
	if err := s.validateTransaction(signedTx); err != nil {
		return err
	}

	n, err := s.mempool.Upsert(signedTx)
	if err != nil {
		return err
	}

	s.evHandler("state: UpsertNodeTransaction: mempool[%d]: tx[%s]", n, signedTx)
	return nil
}

// validateTransaction performs admission checks: the signature, fee, and
// payload must validate, and the nonce must advance the signer's committed
// nonce.
func (s *State) validateTransaction(signedTx database.SignedTx) error {
	if err := signedTx.Validate(s.oracle); err != nil {
		return err
	}

	account, err := s.db.Query(signedTx.FromID)
	if err == nil && signedTx.Nonce <= account.Nonce {
		return fmt.Errorf("invalid nonce, got %d, committed %d", signedTx.Nonce, account.Nonce)
	}

	return nil
}
