package qrc20

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies a token event.
type EventKind string

// Set of token event kinds.
const (
	EventDeploy             EventKind = "deploy"
	EventTransfer           EventKind = "transfer"
	EventApproval           EventKind = "approval"
	EventMint               EventKind = "mint"
	EventBurn               EventKind = "burn"
	EventPauseStatusChanged EventKind = "pause_status_changed"
	EventOwnershipTransfer  EventKind = "ownership_transferred"
)

// Event records a state change on a token. Fields beyond Kind and Token
// are set as the kind requires.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Token     common.Address `json:"token"`
	From      common.Address `json:"from,omitempty"`
	To        common.Address `json:"to,omitempty"`
	Spender   common.Address `json:"spender,omitempty"`
	Amount    *big.Int       `json:"amount,omitempty"`
	Paused    bool           `json:"paused,omitempty"`
	Symbol    string         `json:"symbol,omitempty"`
	TimeStamp uint64         `json:"timestamp"`
}

// newEvent stamps the event with the current time.
func newEvent(kind EventKind, token common.Address) Event {
	return Event{
		Kind:      kind,
		Token:     token,
		TimeStamp: uint64(time.Now().UTC().Unix()),
	}
}
