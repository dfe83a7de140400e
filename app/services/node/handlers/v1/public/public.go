// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qoranet/qoranet/business/web/errs"
	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
	"github.com/qoranet/qoranet/foundation/events"
	"github.com/qoranet/qoranet/foundation/nameservice"
	"github.com/qoranet/qoranet/foundation/qrc20"
	"github.com/qoranet/qoranet/foundation/qrc20/bridge"
	"github.com/qoranet/qoranet/foundation/web"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a new user transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx database.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", signedTx, "kind", signedTx.Payload.Kind, "priority", signedTx.Priority)
	if err := h.State.UpsertWalletTransaction(signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "transaction added to mempool",
		Hash:   signedTx.HashString(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.Genesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions, optionally filtered
// by signing account.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	mempool := h.State.Mempool()

	trans := []tx{}
	for _, tran := range mempool {
		if acct != "" && acct != string(tran.FromID) {
			continue
		}

		trans = append(trans, tx{
			From:     tran.FromID,
			FromName: h.NS.Lookup(tran.FromID),
			Kind:     tran.Payload.Kind,
			Nonce:    tran.Nonce,
			FeeQOR:   tran.FeeQOR,
			FeeUSD:   tran.FeeUSD,
			Priority: tran.Priority.String(),
			Sig:      tran.Signature.String(),
		})
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Accounts returns the current balance and nonce for all accounts or the
// one specified.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accounts []database.Account

	switch acct := web.Param(r, "account"); acct {
	case "":
		accounts = h.State.Accounts()

	default:
		accountID, err := database.ToAccountID(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		account, err := h.State.QueryAccount(accountID)
		if err != nil {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		accounts = append(accounts, account)
	}

	acts := make([]info, 0, len(accounts))
	for _, account := range accounts {
		acts = append(acts, info{
			Account: account.AccountID,
			Name:    h.NS.Lookup(account.AccountID),
			Balance: account.Balance,
			Nonce:   account.Nonce,
		})
	}

	ai := actInfo{
		LatestBlock: h.State.LatestBlockHash(),
		Uncommitted: h.State.MempoolLength(),
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Validators returns the validator stake records the node knows about.
func (h Handlers) Validators(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		TotalLiquidity uint64                    `json:"total_liquidity"`
		ActiveApps     uint32                    `json:"active_apps"`
		Validators     []database.ValidatorStake `json:"validators"`
	}{
		TotalLiquidity: h.State.TotalLiquidity(),
		ActiveApps:     h.State.ActiveApps(),
		Validators:     h.State.Validators(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAccount returns the blocks that carry transactions involving the
// specified account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByAccount(accountID)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for j, blk := range dbBlocks {
		trans := make([]tx, len(blk.Transactions))
		for i, tran := range blk.Transactions {
			trans[i] = tx{
				From:     tran.FromID,
				FromName: h.NS.Lookup(tran.FromID),
				Kind:     tran.Payload.Kind,
				Nonce:    tran.Nonce,
				FeeQOR:   tran.FeeQOR,
				FeeUSD:   tran.FeeUSD,
				Priority: tran.Priority.String(),
				Sig:      tran.Signature.String(),
			}
		}

		blocks[j] = block{
			PrevBlockHash:  blk.Header.PrevBlockHash,
			Validator:      blk.Header.Validator,
			ValidatorName:  h.NS.Lookup(blk.Header.Validator),
			Number:         blk.Header.Number,
			TimeStamp:      blk.Header.TimeStamp,
			TransRoot:      blk.Header.TransRoot,
			TotalLiquidity: blk.Header.TotalLiquidity,
			ActiveApps:     blk.Header.ActiveApps,
			TotalFees:      blk.Header.TotalFees,
			Transactions:   trans,
		}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// FeePrice returns the current QOR/USD price the node validates fees with.
func (h Handlers) FeePrice(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	oracle := h.State.Oracle()

	resp := struct {
		Price      float64   `json:"price"`
		LastUpdate time.Time `json:"last_update"`
	}{
		Price:      oracle.Price(),
		LastUpdate: oracle.LastUpdate(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// FeeEstimates returns the fee for each priority level for the specified
// transaction kind.
func (h Handlers) FeeEstimates(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	kind := web.Param(r, "kind")

	class, err := feeClass(kind)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Kind      string          `json:"kind"`
		Price     float64         `json:"price"`
		Estimates []fees.Estimate `json:"estimates"`
	}{
		Kind:      kind,
		Price:     h.State.Oracle().Price(),
		Estimates: h.State.Oracle().Estimates(class),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Tokens returns the set of deployed QRC-20 tokens.
func (h Handlers) Tokens(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.TokenRegistry().List(), http.StatusOK)
}

// TokenInfo returns the details for the specified token.
func (h Handlers) TokenInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")
	if !common.IsHexAddress(address) {
		return errs.NewTrusted(errors.New("invalid token address"), http.StatusBadRequest)
	}

	tokenInfo, err := h.State.TokenRegistry().TokenInfo(common.HexToAddress(address))
	if err != nil {
		if errors.Is(err, qrc20.ErrTokenNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, tokenInfo, http.StatusOK)
}

// TokenBalance returns the balance a holder has in the specified token.
func (h Handlers) TokenBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")
	holder := web.Param(r, "holder")
	if !common.IsHexAddress(address) || !common.IsHexAddress(holder) {
		return errs.NewTrusted(errors.New("invalid address"), http.StatusBadRequest)
	}

	balance, err := h.State.TokenRegistry().BalanceOf(common.HexToAddress(address), common.HexToAddress(holder))
	if err != nil {
		if errors.Is(err, qrc20.ErrTokenNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	resp := struct {
		Address string `json:"address"`
		Holder  string `json:"holder"`
		Balance string `json:"balance"`
	}{
		Address: address,
		Holder:  holder,
		Balance: balance.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BridgeStats returns the bridge configuration and transfer totals.
func (h Handlers) BridgeStats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	brdg := h.State.Bridge()

	resp := struct {
		FeeBasisPoints   uint32       `json:"fee_basis_points"`
		MinConfirmations uint32       `json:"min_confirmations"`
		Stats            bridge.Stats `json:"stats"`
	}{
		FeeBasisPoints:   brdg.Config().FeeBasisPoints,
		MinConfirmations: brdg.Config().MinConfirmations,
		Stats:            brdg.Stats(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// feeClass maps the url kind parameter to a fee class.
func feeClass(kind string) (fees.Class, error) {
	switch kind {
	case string(database.KindTransfer):
		return fees.ClassTransfer, nil
	case string(database.KindProvideLiquidity):
		return fees.ClassProvideLiquidity, nil
	case string(database.KindRegisterApp):
		return fees.ClassRegisterApp, nil
	case string(database.KindReportMetrics):
		return fees.ClassReportMetrics, nil
	case string(database.KindClaimRewards):
		return fees.ClassClaimRewards, nil
	case "contract_simple":
		return fees.ClassContractSimple, nil
	case "contract_medium":
		return fees.ClassContractMedium, nil
	case "contract_complex":
		return fees.ClassContractComplex, nil
	}

	return 0, fmt.Errorf("unknown transaction kind %q", kind)
}
