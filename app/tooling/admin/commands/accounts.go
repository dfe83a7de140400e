// Package commands holds the admin tool commands.
package commands

import (
	"fmt"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// Accounts prints the current set of accounts. An optional account id
// limits the output to that account.
func Accounts(args []string, db *database.Database) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	fmt.Printf("LatestBlockHash: %s\n\n", db.LatestBlockHash())

	for _, account := range db.Accounts() {
		if onlyAct != "" && onlyAct != string(account.AccountID) {
			continue
		}
		fmt.Printf("Account: %s  Balance: %d  Nonce: %d\n", account.AccountID, account.Balance, account.Nonce)
	}

	return nil
}
