// Package worker implements all the background operations the node needs:
// block production, fee oracle refresh, status reporting, and transaction
// sharing.
package worker

import (
	"sync"
	"time"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
)

// maxTxShareRequests represents the max number of pending tx network share
// requests that can be outstanding before share requests are dropped.
const maxTxShareRequests = 100

// Worker manages the background workers needed to run the node.
type Worker struct {
	state       *state.State
	wg          sync.WaitGroup
	shut        chan struct{}
	txSharing   chan database.SignedTx
	evHandler   state.EventHandler
	blockTime   time.Duration
	oracleEvery time.Duration
	statusEvery time.Duration
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	blockTime := time.Duration(st.Genesis().BlockTime) * time.Second
	if blockTime == 0 {
		blockTime = 10 * time.Second
	}

	w := Worker{
		state:       st,
		shut:        make(chan struct{}),
		txSharing:   make(chan database.SignedTx, maxTxShareRequests),
		evHandler:   evHandler,
		blockTime:   blockTime,
		oracleEvery: 60 * time.Second,
		statusEvery: 30 * time.Second,
	}

	// Register this worker with the state package.
	st.SetWorker(&w)

	// Sync up this node with the rest of the network before accepting work.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.producerOperations,
		w.oracleOperations,
		w.statusOperations,
		w.shareTxOperations,
	}

	// Set waitgroup to match the number of G's we need for the set of
	// operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalShareTx signals a share transaction operation between nodes.
func (w *Worker) SignalShareTx(tx database.SignedTx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transaction not shared")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// resetTicker makes sure the next tick happens on the described cadence.
func resetTicker(ticker *time.Ticker, cycle time.Duration, waitOnSecond time.Duration) {
	nextTick := time.Now().Add(cycle).Round(waitOnSecond)
	diff := time.Until(nextTick)
	ticker.Reset(diff)
}
