// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"strings"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyPriority = "priority"
	StrategyNonce    = "nonce"
)

// Map of strategies with functions.
var strategies = map[string]Func{
	StrategyPriority: prioritySelect,
	StrategyNonce:    nonceSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// account and selects howMany of them in an order based on the functions
// strategy. All selector functions MUST respect nonce ordering within an
// account.
type Func func(transactions map[database.AccountID][]database.SignedTx, howMany int) []database.SignedTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strings.ToLower(strategy)]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}

	return fn, nil
}
