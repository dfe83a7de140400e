// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/qoranet/qoranet/business/web/errs"
	"github.com/qoranet/qoranet/foundation/blockchain/network"
	"github.com/qoranet/qoranet/foundation/blockchain/peer"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
	"github.com/qoranet/qoranet/foundation/nameservice"
	"github.com/qoranet/qoranet/foundation/web"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latestBlock := h.State.LatestBlock()

	status := peer.PeerStatus{
		Validator:         string(h.State.ValidatorID()),
		LatestBlockHash:   h.State.LatestBlockHash(),
		LatestBlockNumber: latestBlock.Header.Number,
		MempoolCount:      h.State.MempoolLength(),
		KnownPeers:        h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// BlocksByNumber returns the blocks for the specified to/from range. Either
// value may be the literal "latest".
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.LatestBlock().Header.Number

	from, err := blockNumber(web.Param(r, "from"), latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := blockNumber(web.Param(r, "to"), latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.QueryBlocksByNumber(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Message accepts a node to node message envelope and dispatches it based
// on the message kind.
func (h Handlers) Message(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read payload: %w", err)
	}

	msg, err := network.Decode(data)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	switch msg.Kind {
	case network.KindNewTransaction, network.KindTxResponse:
		h.Log.Infow("add node tran", "traceid", v.TraceID, "tx", *msg.Transaction)
		if err := h.State.UpsertNodeTransaction(*msg.Transaction); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

	case network.KindNewBlock, network.KindBlockResponse:
		h.Log.Infow("proposed block", "traceid", v.TraceID, "number", msg.Block.Header.Number)
		if err := h.State.ProcessProposedBlock(*msg.Block); err != nil {
			return errs.NewTrusted(errors.New("block not accepted"), http.StatusNotAcceptable)
		}

	case network.KindPeerDiscovery:
		h.State.AddKnownPeer(peer.New(fmt.Sprintf("%s:%d", msg.PeerDiscovery.Address, msg.PeerDiscovery.Port)))

	case network.KindValidatorAnnouncement:
		h.Log.Infow("validator announcement", "traceid", v.TraceID, "validator", msg.ValidatorAnnouncement.Validator,
			"stake", msg.ValidatorAnnouncement.Stake, "apps", msg.ValidatorAnnouncement.AppsCount)

	case network.KindAppMetrics:
		h.Log.Infow("app metrics", "traceid", v.TraceID, "owner", msg.AppMetrics.AppOwner, "app", msg.AppMetrics.AppID)

	case network.KindPing:
		pong := network.Message{
			Kind: network.KindPong,
			Heartbeat: &network.Heartbeat{
				Timestamp: msg.Heartbeat.Timestamp,
				PeerID:    h.State.Host(),
			},
		}
		return web.Respond(ctx, w, pong, http.StatusOK)

	case network.KindPong:

	default:
		return errs.NewTrusted(fmt.Errorf("unsupported message kind %q", msg.Kind), http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.Mempool()
	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Peers returns the current peer list, excluding this node.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.KnownExternalPeers(), http.StatusOK)
}

// blockNumber resolves a from/to url parameter against the latest height.
func blockNumber(value string, latest uint64) (uint64, error) {
	if value == "latest" || value == "" {
		return latest, nil
	}

	return strconv.ParseUint(value, 10, 64)
}
