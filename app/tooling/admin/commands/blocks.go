package commands

import (
	"fmt"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// Blocks prints every block in the chain with its transactions.
func Blocks(args []string, db *database.Database) error {
	iter := db.ForEach()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return err
		}

		fmt.Printf("Block: %d  Hash: %s  Validator: %s  Txs: %d  Fees: %d\n",
			block.Header.Number, block.Hash(), block.Header.Validator, len(block.Transactions), block.Header.TotalFees)

		for _, tx := range block.Transactions {
			fmt.Printf("  %s  fee[%d]  %s\n", tx, tx.FeeQOR, tx.Priority)
		}
	}

	return nil
}
