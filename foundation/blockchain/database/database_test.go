package database_test

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/database/memory"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

func newAccount(t *testing.T) (ed25519.PrivateKey, database.AccountID) {
	t.Helper()

	privateKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}

	return privateKey, database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))
}

func signTransfer(t *testing.T, privateKey ed25519.PrivateKey, from database.AccountID, to database.AccountID, amount uint64, nonce uint64, feeQOR uint64) database.SignedTx {
	t.Helper()

	payload := database.Payload{
		Kind: database.KindTransfer,
		Transfer: &database.Transfer{
			FromID: from,
			ToID:   to,
			Amount: amount,
		},
	}

	tx, err := database.NewTx(from, nonce, payload, fees.PriorityLow, feeQOR, fees.DefaultFeeUSD)
	if err != nil {
		t.Fatalf("unable to construct transaction: %v", err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		t.Fatalf("unable to sign transaction: %v", err)
	}

	return signedTx
}

func Test_ApplyBlock(t *testing.T) {
	alicePriv, alice := newAccount(t)
	_, bob := newAccount(t)
	_, validator := newAccount(t)

	gen := genesis.Genesis{
		Balances: map[string]uint64{
			string(alice): 1_000_000,
		},
	}

	t.Log("Given the need to apply a block of transactions to account state.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen transferring funds between two accounts.", testID)
		{
			db, err := database.New(gen, memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open the database: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open the database.", success, testID)

			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 100)

			genesisBlock := database.GenesisBlock(validator)
			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			if err := db.ApplyBlock(genesisBlock); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply the genesis block: %v", failed, testID, err)
			}
			if err := db.ApplyBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply the block.", success, testID)

			aliceAcct, err := db.Query(alice)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the sender: %v", failed, testID, err)
			}
			if aliceAcct.Balance != 1_000_000-500-100 {
				t.Errorf("\t%s\tTest %d:\tShould debit amount plus fee: got %d", failed, testID, aliceAcct.Balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould debit amount plus fee.", success, testID)
			}
			if aliceAcct.Nonce != 1 {
				t.Errorf("\t%s\tTest %d:\tShould advance the sender nonce: got %d", failed, testID, aliceAcct.Nonce)
			} else {
				t.Logf("\t%s\tTest %d:\tShould advance the sender nonce.", success, testID)
			}

			bobAcct, err := db.Query(bob)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the receiver: %v", failed, testID, err)
			}
			if bobAcct.Balance != 500 {
				t.Errorf("\t%s\tTest %d:\tShould credit the amount: got %d", failed, testID, bobAcct.Balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould credit the amount.", success, testID)
			}

			validatorAcct, err := db.Query(validator)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the validator: %v", failed, testID, err)
			}
			if validatorAcct.Balance != 100 {
				t.Errorf("\t%s\tTest %d:\tShould credit the fee to the validator: got %d", failed, testID, validatorAcct.Balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould credit the fee to the validator.", success, testID)
			}

			if db.LatestBlock().Header.Number != 1 {
				t.Errorf("\t%s\tTest %d:\tShould advance the latest block.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould advance the latest block.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen a transaction carries the wrong nonce.", testID)
		{
			db, err := database.New(gen, memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open the database: %v", failed, testID, err)
			}

			tx := signTransfer(t, alicePriv, alice, bob, 500, 5, 100)

			genesisBlock := database.GenesisBlock(validator)
			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			if err := db.ApplyBlock(genesisBlock); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply the genesis block: %v", failed, testID, err)
			}

			err = db.ApplyBlock(block)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

			if !strings.Contains(err.Error(), "invalid nonce") {
				t.Errorf("\t%s\tTest %d:\tShould report an invalid nonce: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report an invalid nonce.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the sender cannot cover amount plus fee.", testID)
		{
			db, err := database.New(gen, memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open the database: %v", failed, testID, err)
			}

			tx := signTransfer(t, alicePriv, alice, bob, 1_000_000, 1, 100)

			genesisBlock := database.GenesisBlock(validator)
			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			if err := db.ApplyBlock(genesisBlock); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply the genesis block: %v", failed, testID, err)
			}

			err = db.ApplyBlock(block)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

			if !strings.Contains(err.Error(), "insufficient balance") {
				t.Errorf("\t%s\tTest %d:\tShould report an insufficient balance: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report an insufficient balance.", success, testID)
			}
		}
	}
}

func Test_ValidateBlock(t *testing.T) {
	alicePriv, alice := newAccount(t)
	_, bob := newAccount(t)
	_, validator := newAccount(t)

	noop := func(v string, args ...any) {}

	t.Log("Given the need to validate a proposed block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the block is the valid next block.", testID)
		{
			genesisBlock := database.GenesisBlock(validator)
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 100)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			if err := block.ValidateBlock(genesisBlock, noop); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate the block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the transactions root is tampered with.", testID)
		{
			genesisBlock := database.GenesisBlock(validator)
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 100)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			block.Header.TransRoot = signature.ZeroHash
			if err := block.ValidateBlock(genesisBlock, noop); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject the tampered block.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject the tampered block.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the total fees are tampered with.", testID)
		{
			genesisBlock := database.GenesisBlock(validator)
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 100)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			block.Header.TotalFees++
			if err := block.ValidateBlock(genesisBlock, noop); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject the tampered block.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject the tampered block.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the block number is not the next in the chain.", testID)
		{
			genesisBlock := database.GenesisBlock(validator)
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 100)

			block, err := database.NewBlock(database.NewBlockArgs{
				Validator:    validator,
				PrevBlock:    genesisBlock,
				Transactions: []database.SignedTx{tx},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
			}

			block.Header.Number++
			err = block.ValidateBlock(genesisBlock, noop)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the skipped block number.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the skipped block number.", success, testID)

			if !strings.Contains(err.Error(), "not the next number") {
				t.Errorf("\t%s\tTest %d:\tShould report the wrong block number: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report the wrong block number.", success, testID)
			}
		}
	}
}

func Test_SignedTxValidate(t *testing.T) {
	alicePriv, alice := newAccount(t)
	_, bob := newAccount(t)

	oracle := fees.NewOracle()

	t.Log("Given the need to validate signed transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the transaction is well formed.", testID)
		{
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 150_000)
			if err := tx.Validate(oracle); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate the transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the payload is mutated after signing.", testID)
		{
			tx := signTransfer(t, alicePriv, alice, bob, 500, 1, 150_000)
			tx.Payload.Transfer.Amount = 50_000
			if err := tx.Validate(oracle); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject the mutated transaction.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject the mutated transaction.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the transfer amount is zero.", testID)
		{
			payload := database.Payload{
				Kind: database.KindTransfer,
				Transfer: &database.Transfer{
					FromID: alice,
					ToID:   bob,
					Amount: 0,
				},
			}

			tx, err := database.NewTx(alice, 1, payload, fees.PriorityLow, 150_000, fees.DefaultFeeUSD)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the transaction: %v", failed, testID, err)
			}

			signedTx, err := tx.Sign(alicePriv)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
			}

			if err := signedTx.Validate(oracle); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject a zero amount transfer.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a zero amount transfer.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the declared USD fee is generous but no units are paid.", testID)
		{
			payload := database.Payload{
				Kind: database.KindTransfer,
				Transfer: &database.Transfer{
					FromID: alice,
					ToID:   bob,
					Amount: 500,
				},
			}

			tx, err := database.NewTx(alice, 1, payload, fees.PriorityLow, 0, fees.MaxFeeUSD)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the transaction: %v", failed, testID, err)
			}

			signedTx, err := tx.Sign(alicePriv)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
			}

			err = signedTx.Validate(oracle)
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the unpaid fee.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the unpaid fee.", success, testID)

			if !strings.Contains(err.Error(), "Fee too low") {
				t.Errorf("\t%s\tTest %d:\tShould report the fee as too low: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould report the fee as too low.", success, testID)
			}
		}
	}
}
