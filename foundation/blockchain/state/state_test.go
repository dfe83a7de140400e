package state_test

import (
	"context"
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/database/memory"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/blockchain/peer"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// nilWorker satisfies the state worker interface for tests that never
// share transactions or produce in the background.
type nilWorker struct{}

func (nilWorker) Shutdown()                          {}
func (nilWorker) SignalShareTx(tx database.SignedTx) {}

func newAccount(t *testing.T) (ed25519.PrivateKey, database.AccountID) {
	t.Helper()

	privateKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
	}

	return privateKey, database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))
}

func newTestState(t *testing.T, validatorID database.AccountID, balances map[string]uint64) *state.State {
	t.Helper()

	gen := genesis.Genesis{
		ChainID:       1,
		BlockTime:     10,
		MinLiquidity:  1000,
		MinApps:       1,
		MaxTxPerBlock: 10,
		Balances:      balances,
	}

	st, err := state.New(state.Config{
		ValidatorID:   validatorID,
		Host:          "test:9080",
		Storage:       memory.New(),
		Genesis:       gen,
		KnownPeers:    peer.NewPeerSet(),
		TokenAdmin:    common.HexToAddress("0x0000000000000000000000000000000000000001"),
		BridgeAddress: common.HexToAddress("0x0000000000000000000000000000000000000002"),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	st.SetWorker(nilWorker{})

	return st
}

func signTransfer(t *testing.T, st *state.State, privateKey ed25519.PrivateKey, from database.AccountID, to database.AccountID, amount uint64, nonce uint64) database.SignedTx {
	t.Helper()

	feeQOR, feeUSD := st.Oracle().CalculateFee(fees.ClassTransfer, fees.PriorityMedium)

	payload := database.Payload{
		Kind: database.KindTransfer,
		Transfer: &database.Transfer{
			FromID: from,
			ToID:   to,
			Amount: amount,
		},
	}

	tx, err := database.NewTx(from, nonce, payload, fees.PriorityMedium, feeQOR, feeUSD)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
	}

	return signedTx
}

func Test_UpsertWalletTransaction(t *testing.T) {
	t.Log("Given the need to accept wallet transactions into the mempool.")
	{
		_, validatorID := newAccount(t)
		fromKey, fromID := newAccount(t)
		_, toID := newAccount(t)

		st := newTestState(t, validatorID, map[string]uint64{
			string(fromID): 1_000_000,
		})

		testID := 0
		t.Logf("\tTest %d:\tWhen submitting a well formed transaction.", testID)
		{
			signedTx := signTransfer(t, st, fromKey, fromID, toID, 100, 1)

			if err := st.UpsertWalletTransaction(signedTx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to submit the transaction.", success, testID)

			if length := st.MempoolLength(); length != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have one transaction in the mempool, got %d.", failed, testID, length)
			}
			t.Logf("\t%s\tTest %d:\tShould have one transaction in the mempool.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen submitting a transaction with a used nonce.", testID)
		{
			signedTx := signTransfer(t, st, fromKey, fromID, toID, 100, 0)

			err := st.UpsertWalletTransaction(signedTx)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a nonce that does not advance.", failed, testID)
			}
			if !strings.Contains(err.Error(), "invalid nonce") {
				t.Fatalf("\t%s\tTest %d:\tShould get a nonce error, got %q.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a nonce that does not advance.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen submitting a transaction with a bad fee.", testID)
		{
			payload := database.Payload{
				Kind: database.KindTransfer,
				Transfer: &database.Transfer{
					FromID: fromID,
					ToID:   toID,
					Amount: 100,
				},
			}
			tx, err := database.NewTx(fromID, 2, payload, fees.PriorityMedium, 1, 0.00000001)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a transaction: %v", failed, testID, err)
			}
			signedTx, err := tx.Sign(fromKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
			}

			err = st.UpsertWalletTransaction(signedTx)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a fee below the minimum.", failed, testID)
			}
			if !strings.Contains(err.Error(), "Fee too low") {
				t.Fatalf("\t%s\tTest %d:\tShould get a fee error, got %q.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a fee below the minimum.", success, testID)
		}
	}
}

func Test_ProduceNewBlock(t *testing.T) {
	t.Log("Given the need to produce blocks from the mempool.")
	{
		_, validatorID := newAccount(t)
		fromKey, fromID := newAccount(t)
		_, toID := newAccount(t)

		st := newTestState(t, validatorID, map[string]uint64{
			string(fromID): 1_000_000,
		})

		testID := 0
		t.Logf("\tTest %d:\tWhen producing a block with pending transactions.", testID)
		{
			tx1 := signTransfer(t, st, fromKey, fromID, toID, 100, 1)
			tx2 := signTransfer(t, st, fromKey, fromID, toID, 200, 2)

			if err := st.UpsertWalletTransaction(tx1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit tx1: %v", failed, testID, err)
			}
			if err := st.UpsertWalletTransaction(tx2); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit tx2: %v", failed, testID, err)
			}

			block, err := st.ProduceNewBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to produce a block.", success, testID)

			if block.Header.Number != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould produce block number 1, got %d.", failed, testID, block.Header.Number)
			}
			t.Logf("\t%s\tTest %d:\tShould produce block number 1.", success, testID)

			if len(block.Transactions) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould include both transactions, got %d.", failed, testID, len(block.Transactions))
			}
			t.Logf("\t%s\tTest %d:\tShould include both transactions.", success, testID)

			if length := st.MempoolLength(); length != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould drain the mempool, got %d.", failed, testID, length)
			}
			t.Logf("\t%s\tTest %d:\tShould drain the mempool.", success, testID)

			from, err := st.QueryAccount(fromID)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the sender: %v", failed, testID, err)
			}
			wantBalance := 1_000_000 - 300 - tx1.FeeQOR - tx2.FeeQOR
			if from.Balance != wantBalance {
				t.Fatalf("\t%s\tTest %d:\tShould debit the sender %d, got %d.", failed, testID, wantBalance, from.Balance)
			}
			t.Logf("\t%s\tTest %d:\tShould debit the sender the amounts and fees.", success, testID)

			to, err := st.QueryAccount(toID)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the receiver: %v", failed, testID, err)
			}
			if to.Balance != 300 {
				t.Fatalf("\t%s\tTest %d:\tShould credit the receiver 300, got %d.", failed, testID, to.Balance)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the receiver.", success, testID)

			validator, err := st.QueryAccount(validatorID)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the validator: %v", failed, testID, err)
			}
			if validator.Balance != tx1.FeeQOR+tx2.FeeQOR {
				t.Fatalf("\t%s\tTest %d:\tShould credit the validator the fees, got %d.", failed, testID, validator.Balance)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the validator the fees.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen producing a block with an empty mempool.", testID)
		{
			if _, err := st.ProduceNewBlock(context.Background()); err != state.ErrNoTransactions {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrNoTransactions, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrNoTransactions.", success, testID)
		}
	}
}

func Test_ProcessProposedBlock(t *testing.T) {
	t.Log("Given the need to validate blocks proposed by peers.")
	{
		_, validatorID := newAccount(t)
		fromKey, fromID := newAccount(t)
		_, toID := newAccount(t)

		st := newTestState(t, validatorID, map[string]uint64{
			string(fromID): 1_000_000,
		})

		testID := 0
		t.Logf("\tTest %d:\tWhen receiving a well formed next block.", testID)
		{
			signedTx := signTransfer(t, st, fromKey, fromID, toID, 100, 1)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validatorID,
				PrevBlock:    st.LatestBlock(),
				Transactions: []database.SignedTx{signedTx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a block: %v", failed, testID, err)
			}

			if err := st.ProcessProposedBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the proposed block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the proposed block.", success, testID)

			if latest := st.LatestBlock(); latest.Header.Number != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould advance the chain to block 1, got %d.", failed, testID, latest.Header.Number)
			}
			t.Logf("\t%s\tTest %d:\tShould advance the chain to block 1.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen receiving a tampered block.", testID)
		{
			signedTx := signTransfer(t, st, fromKey, fromID, toID, 100, 2)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validatorID,
				PrevBlock:    st.LatestBlock(),
				Transactions: []database.SignedTx{signedTx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a block: %v", failed, testID, err)
			}
			block.Header.TotalFees++

			if err := st.ProcessProposedBlock(block); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a block with tampered fees.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a block with tampered fees.", success, testID)
		}
	}
}
