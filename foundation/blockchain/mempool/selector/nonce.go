package selector

import (
	"sort"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// nonceSelect walks the accounts round robin, always taking each account's
// next transaction in nonce order, until howMany have been selected.
var nonceSelect = func(transactions map[database.AccountID][]database.SignedTx, howMany int) []database.SignedTx {
	queues := make(map[database.AccountID][]database.SignedTx, len(transactions))
	accounts := make([]database.AccountID, 0, len(transactions))

	for accountID, txs := range transactions {
		cp := make([]database.SignedTx, len(txs))
		copy(cp, txs)
		sort.Sort(byNonce(cp))
		queues[accountID] = cp
		accounts = append(accounts, accountID)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })

	var selected []database.SignedTx
	for len(selected) < howMany {
		took := false

		for _, accountID := range accounts {
			if len(selected) >= howMany {
				break
			}

			queue := queues[accountID]
			if len(queue) == 0 {
				continue
			}

			selected = append(selected, queue[0])
			queues[accountID] = queue[1:]
			took = true
		}

		if !took {
			break
		}
	}

	return selected
}
