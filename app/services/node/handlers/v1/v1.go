// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/qoranet/qoranet/app/services/node/handlers/v1/private"
	"github.com/qoranet/qoranet/app/services/node/handlers/v1/public"
	"github.com/qoranet/qoranet/foundation/blockchain/state"
	"github.com/qoranet/qoranet/foundation/events"
	"github.com/qoranet/qoranet/foundation/nameservice"
	"github.com/qoranet/qoranet/foundation/web"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/validators/list", pbl.Validators)
	app.Handle(http.MethodGet, version, "/blocks/list/:account", pbl.BlocksByAccount)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list/:account", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
	app.Handle(http.MethodGet, version, "/fees/price", pbl.FeePrice)
	app.Handle(http.MethodGet, version, "/fees/estimates/:kind", pbl.FeeEstimates)
	app.Handle(http.MethodGet, version, "/tokens/list", pbl.Tokens)
	app.Handle(http.MethodGet, version, "/tokens/info/:address", pbl.TokenInfo)
	app.Handle(http.MethodGet, version, "/tokens/balance/:address/:holder", pbl.TokenBalance)
	app.Handle(http.MethodGet, version, "/bridge/stats", pbl.BridgeStats)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksByNumber)
	app.Handle(http.MethodPost, version, "/node/message", prv.Message)
	app.Handle(http.MethodGet, version, "/node/tx/list", prv.Mempool)
	app.Handle(http.MethodGet, version, "/node/peers/list", prv.Peers)
}
