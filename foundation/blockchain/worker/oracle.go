package worker

import (
	"context"
	"time"
)

// oracleOperations keeps the fee oracle price fresh.
func (w *Worker) oracleOperations() {
	w.evHandler("worker: oracleOperations: G started")
	defer w.evHandler("worker: oracleOperations: G completed")

	ticker := time.NewTicker(w.oracleEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				w.runOracleOperation()
			}
		case <-w.shut:
			w.evHandler("worker: oracleOperations: received shut signal")
			return
		}
	}
}

// runOracleOperation refreshes the price from the configured sources.
func (w *Worker) runOracleOperation() {
	w.evHandler("worker: runOracleOperation: started")
	defer w.evHandler("worker: runOracleOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.state.Oracle().UpdatePrice(ctx); err != nil {
		w.evHandler("worker: runOracleOperation: WARNING: %s", err)
		return
	}

	w.evHandler("worker: runOracleOperation: price[%f]", w.state.Oracle().Price())
}
