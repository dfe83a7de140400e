// Package network defines the messages nodes exchange and their wire
// encoding. Messages travel as a JSON envelope tagged with the message
// kind.
package network

import (
	"encoding/json"
	"fmt"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// MessageKind identifies a message on the wire.
type MessageKind string

// Set of message kinds.
const (
	KindNewTransaction        MessageKind = "new_transaction"
	KindNewBlock              MessageKind = "new_block"
	KindBlockRequest          MessageKind = "block_request"
	KindBlockResponse         MessageKind = "block_response"
	KindTxRequest             MessageKind = "tx_request"
	KindTxResponse            MessageKind = "tx_response"
	KindPeerDiscovery         MessageKind = "peer_discovery"
	KindValidatorAnnouncement MessageKind = "validator_announcement"
	KindAppMetrics            MessageKind = "app_metrics"
	KindPing                  MessageKind = "ping"
	KindPong                  MessageKind = "pong"
)

// PeerDiscovery announces a peer's presence and where to reach it.
type PeerDiscovery struct {
	PeerID  string `json:"peer_id"`
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

// ValidatorAnnouncement advertises a validator's stake in the network.
type ValidatorAnnouncement struct {
	Validator database.AccountID `json:"validator"`
	Stake     uint64             `json:"stake"`
	AppsCount uint32             `json:"apps_count"`
}

// AppMetricsReport carries an application metrics report between nodes.
type AppMetricsReport struct {
	Validator database.AccountID  `json:"validator"`
	AppOwner  database.AccountID  `json:"app_owner"`
	AppID     string              `json:"app_id"`
	Metrics   database.AppMetrics `json:"metrics"`
}

// Heartbeat is the body of a ping or pong.
type Heartbeat struct {
	Timestamp uint64 `json:"timestamp"`
	PeerID    string `json:"peer_id"`
}

// BlockRequest asks a peer for a block by height.
type BlockRequest struct {
	Number uint64 `json:"number"`
}

// TxRequest asks a peer for a transaction by hash.
type TxRequest struct {
	Hash string `json:"hash"`
}

// Message is the envelope every node-to-node message travels in. Exactly
// the body named by Kind is set.
type Message struct {
	Kind                  MessageKind            `json:"kind"`
	Transaction           *database.SignedTx     `json:"transaction,omitempty"`
	Block                 *database.Block        `json:"block,omitempty"`
	BlockRequest          *BlockRequest          `json:"block_request,omitempty"`
	TxRequest             *TxRequest             `json:"tx_request,omitempty"`
	PeerDiscovery         *PeerDiscovery         `json:"peer_discovery,omitempty"`
	ValidatorAnnouncement *ValidatorAnnouncement `json:"validator_announcement,omitempty"`
	AppMetrics            *AppMetricsReport      `json:"app_metrics,omitempty"`
	Heartbeat             *Heartbeat             `json:"heartbeat,omitempty"`
}

// Encode marshals the message for the wire.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	return data, nil
}

// Decode unmarshals a message off the wire and checks the envelope names a
// known kind with its body present.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}

	switch msg.Kind {
	case KindNewTransaction, KindTxResponse:
		if msg.Transaction == nil {
			return Message{}, fmt.Errorf("message %q missing transaction", msg.Kind)
		}
	case KindNewBlock, KindBlockResponse:
		if msg.Block == nil {
			return Message{}, fmt.Errorf("message %q missing block", msg.Kind)
		}
	case KindBlockRequest:
		if msg.BlockRequest == nil {
			return Message{}, fmt.Errorf("message %q missing request", msg.Kind)
		}
	case KindTxRequest:
		if msg.TxRequest == nil {
			return Message{}, fmt.Errorf("message %q missing request", msg.Kind)
		}
	case KindPeerDiscovery:
		if msg.PeerDiscovery == nil {
			return Message{}, fmt.Errorf("message %q missing discovery", msg.Kind)
		}
	case KindValidatorAnnouncement:
		if msg.ValidatorAnnouncement == nil {
			return Message{}, fmt.Errorf("message %q missing announcement", msg.Kind)
		}
	case KindAppMetrics:
		if msg.AppMetrics == nil {
			return Message{}, fmt.Errorf("message %q missing metrics", msg.Kind)
		}
	case KindPing, KindPong:
		if msg.Heartbeat == nil {
			return Message{}, fmt.Errorf("message %q missing heartbeat", msg.Kind)
		}
	default:
		return Message{}, fmt.Errorf("unknown message kind %q", msg.Kind)
	}

	return msg, nil
}
