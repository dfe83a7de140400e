package mempool_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/mempool"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

type signer struct {
	privateKey ed25519.PrivateKey
	accountID  database.AccountID
}

func newSigner(t *testing.T) signer {
	t.Helper()

	privateKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}

	return signer{
		privateKey: privateKey,
		accountID:  database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey)),
	}
}

func (s signer) transfer(t *testing.T, to database.AccountID, nonce uint64, priority fees.Priority, feeQOR uint64) database.SignedTx {
	t.Helper()

	payload := database.Payload{
		Kind: database.KindTransfer,
		Transfer: &database.Transfer{
			FromID: s.accountID,
			ToID:   to,
			Amount: 100,
		},
	}

	tx, err := database.NewTx(s.accountID, nonce, payload, priority, feeQOR, fees.DefaultFeeUSD)
	if err != nil {
		t.Fatalf("unable to construct transaction: %v", err)
	}

	signedTx, err := tx.Sign(s.privateKey)
	if err != nil {
		t.Fatalf("unable to sign transaction: %v", err)
	}

	return signedTx
}

func Test_CRUD(t *testing.T) {
	t.Log("Given the need to manage the pending transaction pool.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding and removing transactions.", testID)
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a mempool: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a mempool.", success, testID)

			alice := newSigner(t)
			bob := newSigner(t)

			tx1 := alice.transfer(t, bob.accountID, 1, fees.PriorityLow, 100)
			tx2 := alice.transfer(t, bob.accountID, 2, fees.PriorityLow, 100)

			if _, err := mp.Upsert(tx1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
			}
			if _, err := mp.Upsert(tx2); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a second transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add transactions.", success, testID)

			if _, err := mp.Upsert(tx1); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a duplicate transaction.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a duplicate transaction.", success, testID)
			}

			if mp.Count() != 2 {
				t.Errorf("\t%s\tTest %d:\tShould have 2 transactions: got %d", failed, testID, mp.Count())
			} else {
				t.Logf("\t%s\tTest %d:\tShould have 2 transactions.", success, testID)
			}

			if mp.CountBySigner(alice.accountID) != 2 {
				t.Errorf("\t%s\tTest %d:\tShould index both transactions under the signer.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould index both transactions under the signer.", success, testID)
			}

			mp.Remove(tx1)
			mp.Remove(tx2)

			if mp.Count() != 0 {
				t.Errorf("\t%s\tTest %d:\tShould have an empty pool: got %d", failed, testID, mp.Count())
			} else {
				t.Logf("\t%s\tTest %d:\tShould have an empty pool.", success, testID)
			}

			if mp.CountBySigner(alice.accountID) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould drop the signer index when it empties.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould drop the signer index when it empties.", success, testID)
			}
		}
	}
}

func Test_PickBest(t *testing.T) {
	t.Log("Given the need to select the best transactions for a block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen transactions carry different priorities.", testID)
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a mempool: %v", failed, testID, err)
			}

			alice := newSigner(t)
			bob := newSigner(t)
			carol := newSigner(t)

			low := alice.transfer(t, carol.accountID, 1, fees.PriorityLow, 100)
			urgent := bob.transfer(t, carol.accountID, 1, fees.PriorityUrgent, 500)
			medium := carol.transfer(t, alice.accountID, 1, fees.PriorityMedium, 150)

			for _, tx := range []database.SignedTx{low, urgent, medium} {
				if _, err := mp.Upsert(tx); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
				}
			}

			txs := mp.PickBest(2)
			if len(txs) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould select 2 transactions: got %d", failed, testID, len(txs))
			}
			t.Logf("\t%s\tTest %d:\tShould select 2 transactions.", success, testID)

			if txs[0].Priority != fees.PriorityUrgent || txs[1].Priority != fees.PriorityMedium {
				t.Errorf("\t%s\tTest %d:\tShould order by priority: got %v then %v", failed, testID, txs[0].Priority, txs[1].Priority)
			} else {
				t.Logf("\t%s\tTest %d:\tShould order by priority.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen one signer has multiple pending nonces.", testID)
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a mempool: %v", failed, testID, err)
			}

			alice := newSigner(t)
			bob := newSigner(t)

			// The second nonce bids higher than the first, but nonce order
			// within the account must still hold.
			first := alice.transfer(t, bob.accountID, 1, fees.PriorityLow, 100)
			second := alice.transfer(t, bob.accountID, 2, fees.PriorityUrgent, 500)

			if _, err := mp.Upsert(second); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
			}
			if _, err := mp.Upsert(first); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
			}

			txs := mp.PickBest(0)
			if len(txs) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould select both transactions: got %d", failed, testID, len(txs))
			}

			if txs[0].Nonce != 1 || txs[1].Nonce != 2 {
				t.Errorf("\t%s\tTest %d:\tShould keep nonce order within the account: got %d then %d", failed, testID, txs[0].Nonce, txs[1].Nonce)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep nonce order within the account.", success, testID)
			}
		}
	}
}
