package worker

import (
	"time"
)

// statusOperations periodically reports the node's view of the chain.
func (w *Worker) statusOperations() {
	w.evHandler("worker: statusOperations: G started")
	defer w.evHandler("worker: statusOperations: G completed")

	ticker := time.NewTicker(w.statusEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				latest := w.state.LatestBlock()
				w.evHandler("worker: status: height[%d] mempool[%d] peers[%d] liquidity[%d] apps[%d]",
					latest.Header.Number,
					w.state.MempoolLength(),
					len(w.state.KnownExternalPeers()),
					w.state.TotalLiquidity(),
					w.state.ActiveApps(),
				)
			}
		case <-w.shut:
			w.evHandler("worker: statusOperations: received shut signal")
			return
		}
	}
}
