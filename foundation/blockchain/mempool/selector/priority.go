package selector

import (
	"sort"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// byNonce provides sorting support by the transaction nonce value.
type byNonce []database.SignedTx

// Len returns the number of transactions in the list.
func (bn byNonce) Len() int {
	return len(bn)
}

// Less helps to sort the list by nonce in ascending order to keep the
// transactions in the right order of processing.
func (bn byNonce) Less(i, j int) bool {
	return bn[i].Nonce < bn[j].Nonce
}

// Swap moves transactions in the order of the nonce value.
func (bn byNonce) Swap(i, j int) {
	bn[i], bn[j] = bn[j], bn[i]
}

// =============================================================================

// prioritySelect selects transactions by priority first and fee second,
// never breaking the nonce order within an account. Only the front
// transaction of each account competes at any point in time.
var prioritySelect = func(transactions map[database.AccountID][]database.SignedTx, howMany int) []database.SignedTx {

	// Sort each account's transactions by nonce so the front of each
	// queue is always the next spendable transaction.
	queues := make(map[database.AccountID][]database.SignedTx, len(transactions))
	for accountID, txs := range transactions {
		cp := make([]database.SignedTx, len(txs))
		copy(cp, txs)
		sort.Sort(byNonce(cp))
		queues[accountID] = cp
	}

	// Keep the account order deterministic when bids tie.
	accounts := make([]database.AccountID, 0, len(queues))
	for accountID := range queues {
		accounts = append(accounts, accountID)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })

	var selected []database.SignedTx
	for len(selected) < howMany {
		var bestID database.AccountID
		found := false

		for _, accountID := range accounts {
			queue := queues[accountID]
			if len(queue) == 0 {
				continue
			}

			if !found || better(queue[0], queues[bestID][0]) {
				bestID = accountID
				found = true
			}
		}

		if !found {
			break
		}

		selected = append(selected, queues[bestID][0])
		queues[bestID] = queues[bestID][1:]
	}

	return selected
}

// better reports whether transaction a outbids transaction b.
func better(a database.SignedTx, b database.SignedTx) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}

	return a.FeeQOR > b.FeeQOR
}
