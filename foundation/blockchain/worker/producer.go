package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sort"
	"time"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
)

// CORE NOTE: Block production is managed by this function which runs on its
// own goroutine. The node runs a loop on the configured block time. At the
// beginning of each cycle the selection algorithm is executed against the
// validator stakes, which determines if this node produces the next block.
// If this node is not selected, it waits for the next cycle.

// producerOperations handles block production.
func (w *Worker) producerOperations() {
	w.evHandler("worker: producerOperations: G started")
	defer w.evHandler("worker: producerOperations: G completed")

	ticker := time.NewTicker(w.blockTime)
	resetTicker(ticker, w.blockTime, w.blockTime)

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				w.runProducerOperation()
			}
		case <-w.shut:
			w.evHandler("worker: producerOperations: received shut signal")
			return
		}

		// Reset the ticker for the next cycle.
		resetTicker(ticker, w.blockTime, 0)
	}
}

// runProducerOperation takes the best transactions from the mempool and
// writes a new block to the database when this node is selected.
func (w *Worker) runProducerOperation() {
	w.evHandler("worker: runProducerOperation: started")
	defer w.evHandler("worker: runProducerOperation: completed")

	// Run the selection algorithm.
	selected := w.selection()
	w.evHandler("worker: runProducerOperation: SELECTED: %s", selected)

	// If we are not selected, return and wait for the new block.
	if selected != w.state.ValidatorID() {
		return
	}

	// Validate we are allowed to produce and we are not in a resync.
	if !w.state.IsProducingAllowed() {
		w.evHandler("worker: runProducerOperation: PRODUCING: turned off")
		return
	}

	// Make sure there are transactions in the mempool.
	length := w.state.MempoolLength()
	if length == 0 {
		w.evHandler("worker: runProducerOperation: PRODUCING: no transactions to include: Txs[%d]", length)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.blockTime)
	defer cancel()

	t := time.Now()
	block, err := w.state.ProduceNewBlock(ctx)
	duration := time.Since(t)

	w.evHandler("worker: runProducerOperation: PRODUCING: duration[%v]", duration)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runProducerOperation: PRODUCING: WARNING: no transactions in mempool")
		case ctx.Err() != nil:
			w.evHandler("worker: runProducerOperation: PRODUCING: CANCEL: timed out")
		default:
			w.evHandler("worker: runProducerOperation: PRODUCING: ERROR: %s", err)
		}
		return
	}

	// The block is produced. Propose the new block to the network.
	// Log the error, but that's it.
	if err := w.state.NetSendBlockToPeers(block); err != nil {
		w.evHandler("worker: runProducerOperation: PRODUCING: proposeBlockToPeers: WARNING %s", err)
	}
}

// selection selects the validator to produce the next block. Validators
// that meet the liquidity and app minimums are weighted by what they have
// staked; the latest block hash provides the deterministic seed. With no
// eligible validators this node produces, which covers bootstrap.
func (w *Worker) selection() database.AccountID {
	stakes := w.state.Validators()

	type candidate struct {
		accountID database.AccountID
		weight    uint64
	}

	var candidates []candidate
	var totalWeight uint64

	for _, stake := range stakes {
		if stake.Liquidity < w.state.MinLiquidity() || stake.Apps < w.state.MinApps() {
			continue
		}

		// Weight by staked liquidity plus a bump per hosted app.
		weight := stake.Liquidity + uint64(stake.Apps)
		candidates = append(candidates, candidate{stake.AccountID, weight})
		totalWeight += weight
	}

	if len(candidates) == 0 {
		return w.state.ValidatorID()
	}

	// Candidates arrive sorted by account id from the database. Keep that
	// order so every node walks the same list.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].accountID < candidates[j].accountID
	})

	// Based on the latest block, pick a point inside the total weight.
	h := fnv.New32a()
	h.Write([]byte(w.state.LatestBlockHash()))
	point := uint64(h.Sum32()) % totalWeight

	for _, c := range candidates {
		if point < c.weight {
			return c.accountID
		}
		point -= c.weight
	}

	return candidates[len(candidates)-1].accountID
}
