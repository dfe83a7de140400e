package commands

import (
	"fmt"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// Validators prints the validator stake records and the network counters.
func Validators(args []string, db *database.Database) error {
	fmt.Printf("TotalLiquidity: %d  ActiveApps: %d\n\n", db.TotalLiquidity(), db.ActiveApps())

	for _, validator := range db.Validators() {
		fmt.Printf("Validator: %s  Liquidity: %d  Apps: %d\n", validator.AccountID, validator.Liquidity, validator.Apps)
	}

	return nil
}
