package qrc20_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/qoranet/qoranet/foundation/qrc20"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	holder   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	spender  = common.HexToAddress("0x00000000000000000000000000000000000000dd")
)

func deployToken(t *testing.T, r *qrc20.Registry, supply int64, mintable bool, burnable bool, maxSupply *big.Int) common.Address {
	t.Helper()

	address, err := r.Deploy(deployer, qrc20.Config{
		Name:          "Qora Test Token",
		Symbol:        "QTT",
		Decimals:      9,
		InitialSupply: big.NewInt(supply),
		Mintable:      mintable,
		Burnable:      burnable,
		MaxSupply:     maxSupply,
	})
	if err != nil {
		t.Fatalf("unable to deploy token: %v", err)
	}

	return address
}

func Test_DeployAndTransfer(t *testing.T) {
	t.Log("Given the need to deploy tokens and move balances.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen deploying a token with an initial supply.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, false, nil)
			t.Logf("\t%s\tTest %d:\tShould be able to deploy the token.", success, testID)

			balance, err := r.BalanceOf(address, deployer)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the balance: %v", failed, testID, err)
			}
			if balance.Cmp(big.NewInt(1_000)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould mint the full supply to the deployer: got %s", failed, testID, balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould mint the full supply to the deployer.", success, testID)
			}

			if _, err := r.Deploy(deployer, qrc20.Config{Name: "Other", Symbol: "QTT", InitialSupply: big.NewInt(1)}); !errors.Is(err, qrc20.ErrSymbolExists) {
				t.Errorf("\t%s\tTest %d:\tShould reject a duplicate symbol: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject a duplicate symbol.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen transferring between holders.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, false, nil)

			_, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransfer,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(400),
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to transfer: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to transfer.", success, testID)

			balance, _ := r.BalanceOf(address, holder)
			if balance.Cmp(big.NewInt(400)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould credit the recipient: got %s", failed, testID, balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould credit the recipient.", success, testID)
			}

			_, err = r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransfer,
				Token:  address,
				Caller: holder,
				To:     deployer,
				Amount: big.NewInt(500),
			})

			var balErr *qrc20.InsufficientBalanceError
			if !errors.As(err, &balErr) {
				t.Errorf("\t%s\tTest %d:\tShould reject an overdraw with a typed error: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject an overdraw with a typed error.", success, testID)
			}

			info, err := r.TokenInfo(address)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the token: %v", failed, testID, err)
			}
			if info.TotalSupply.Cmp(big.NewInt(1_000)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould keep the total supply constant: got %s", failed, testID, info.TotalSupply)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep the total supply constant.", success, testID)
			}
		}
	}
}

func Test_Allowances(t *testing.T) {
	t.Log("Given the need to delegate spending through allowances.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen approving and spending an allowance.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, false, nil)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:    qrc20.TxApprove,
				Token:   address,
				Caller:  deployer,
				Spender: spender,
				Amount:  big.NewInt(300),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to approve: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to approve.", success, testID)

			// A second approval overwrites, it does not accumulate.
			if _, err := r.Execute(qrc20.Transaction{
				Kind:    qrc20.TxApprove,
				Token:   address,
				Caller:  deployer,
				Spender: spender,
				Amount:  big.NewInt(200),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to re-approve: %v", failed, testID, err)
			}

			allowed, _ := r.Allowance(address, deployer, spender)
			if allowed.Cmp(big.NewInt(200)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould overwrite the allowance: got %s", failed, testID, allowed)
			} else {
				t.Logf("\t%s\tTest %d:\tShould overwrite the allowance.", success, testID)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransferFrom,
				Token:  address,
				Caller: spender,
				From:   deployer,
				To:     holder,
				Amount: big.NewInt(150),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to transfer from: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to transfer from.", success, testID)

			allowed, _ = r.Allowance(address, deployer, spender)
			if allowed.Cmp(big.NewInt(50)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould decrement the allowance: got %s", failed, testID, allowed)
			} else {
				t.Logf("\t%s\tTest %d:\tShould decrement the allowance.", success, testID)
			}

			_, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransferFrom,
				Token:  address,
				Caller: spender,
				From:   deployer,
				To:     holder,
				Amount: big.NewInt(100),
			})

			var allowErr *qrc20.InsufficientAllowanceError
			if !errors.As(err, &allowErr) {
				t.Errorf("\t%s\tTest %d:\tShould reject spending beyond the allowance: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject spending beyond the allowance.", success, testID)
			}
		}
	}
}

func Test_MintBurnPause(t *testing.T) {
	t.Log("Given the need to manage the token lifecycle.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen minting against a capped supply.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, true, false, big.NewInt(1_500))

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxMint,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(500),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mint up to the cap: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mint up to the cap.", success, testID)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxMint,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(1),
			}); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject minting past the cap.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject minting past the cap.", success, testID)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxMint,
				Token:  address,
				Caller: holder,
				To:     holder,
				Amount: big.NewInt(1),
			}); !errors.Is(err, qrc20.ErrOnlyOwner) {
				t.Errorf("\t%s\tTest %d:\tShould only let the owner mint: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould only let the owner mint.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen burning from a holder on a burnable token.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, true, nil)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransfer,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(300),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to fund the holder: %v", failed, testID, err)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxBurn,
				Token:  address,
				Caller: holder,
				Amount: big.NewInt(100),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould let a holder burn their balance: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould let a holder burn their balance.", success, testID)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxBurn,
				Token:  address,
				Caller: spender,
				From:   holder,
				Amount: big.NewInt(100),
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould let another caller burn from the holder: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould let another caller burn from the holder.", success, testID)

			balance, _ := r.BalanceOf(address, holder)
			if balance.Cmp(big.NewInt(100)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould debit the named holder: got %s", failed, testID, balance)
			} else {
				t.Logf("\t%s\tTest %d:\tShould debit the named holder.", success, testID)
			}

			info, _ := r.TokenInfo(address)
			if info.TotalSupply.Cmp(big.NewInt(800)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould reduce the total supply: got %s", failed, testID, info.TotalSupply)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reduce the total supply.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen burning on a token that is not burnable.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, false, nil)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxBurn,
				Token:  address,
				Caller: deployer,
				Amount: big.NewInt(100),
			}); !errors.Is(err, qrc20.ErrExecutionFailed) {
				t.Errorf("\t%s\tTest %d:\tShould reject the burn: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould reject the burn.", success, testID)
			}

			info, _ := r.TokenInfo(address)
			if info.TotalSupply.Cmp(big.NewInt(1_000)) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould keep the total supply: got %s", failed, testID, info.TotalSupply)
			} else {
				t.Logf("\t%s\tTest %d:\tShould keep the total supply.", success, testID)
			}
		}

		testID++
		t.Logf("\tTest %d:\tWhen the token is paused.", testID)
		{
			r := qrc20.NewRegistry(admin)
			address := deployToken(t, r, 1_000, false, false, nil)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxPause,
				Token:  address,
				Caller: deployer,
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould let the owner pause: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould let the owner pause.", success, testID)

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransfer,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(1),
			}); !errors.Is(err, qrc20.ErrTokenPaused) {
				t.Errorf("\t%s\tTest %d:\tShould block transfers while paused: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould block transfers while paused.", success, testID)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:    qrc20.TxApprove,
				Token:   address,
				Caller:  deployer,
				Spender: spender,
				Amount:  big.NewInt(1),
			}); !errors.Is(err, qrc20.ErrTokenPaused) {
				t.Errorf("\t%s\tTest %d:\tShould block approvals while paused: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould block approvals while paused.", success, testID)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxUnpause,
				Token:  address,
				Caller: deployer,
			}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould let the owner unpause: %v", failed, testID, err)
			}

			if _, err := r.Execute(qrc20.Transaction{
				Kind:   qrc20.TxTransfer,
				Token:  address,
				Caller: deployer,
				To:     holder,
				Amount: big.NewInt(1),
			}); err != nil {
				t.Errorf("\t%s\tTest %d:\tShould allow transfers after unpausing: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould allow transfers after unpausing.", success, testID)
			}
		}
	}
}
