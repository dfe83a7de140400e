package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/network"
	"github.com/qoranet/qoranet/foundation/blockchain/peer"
)

// The node endpoints used for peer to peer communication.
const (
	statusURL  = "http://%s/v1/node/status"
	blocksURL  = "http://%s/v1/node/block/list/%d/%s"
	messageURL = "http://%s/v1/node/message"
)

// netClient bounds how long any peer call may take.
var netClient = http.Client{Timeout: 10 * time.Second}

// NetRequestPeerStatus looks for new nodes on the blockchain by asking
// known nodes for their peer list. New nodes are added to the list.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	url := fmt.Sprintf(statusURL, pr.Host)

	var ps peer.PeerStatus
	if err := get(url, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blknum[%d]: peer-list[%s]", pr, ps.LatestBlockNumber, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerBlocks queries the specified node asking for blocks this
// node does not have, then processes them one by one.
func (s *State) NetRequestPeerBlocks(pr peer.Peer) error {
	s.evHandler("state: NetRequestPeerBlocks: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerBlocks: completed: %s", pr)

	from := s.LatestBlock().Header.Number + 1
	url := fmt.Sprintf(blocksURL, pr.Host, from, "latest")

	var blocks []database.Block
	if err := get(url, &blocks); err != nil {
		return err
	}

	for _, block := range blocks {
		if err := s.ProcessProposedBlock(block); err != nil {
			return err
		}
	}

	return nil
}

// NetSendBlockToPeers takes the new block and sends it to all known peers.
func (s *State) NetSendBlockToPeers(block database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	msg := network.Message{
		Kind:  network.KindNewBlock,
		Block: &block,
	}

	for _, pr := range s.KnownExternalPeers() {
		s.evHandler("state: NetSendBlockToPeers: send: %s", pr)

		if err := post(fmt.Sprintf(messageURL, pr.Host), msg); err != nil {
			return fmt.Errorf("%s: %w", pr.Host, err)
		}
	}

	return nil
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(tx database.SignedTx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	msg := network.Message{
		Kind:        network.KindNewTransaction,
		Transaction: &tx,
	}

	for _, pr := range s.KnownExternalPeers() {
		s.evHandler("state: NetSendTxToPeers: send: %s", pr)

		if err := post(fmt.Sprintf(messageURL, pr.Host), msg); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s: %s", pr.Host, err)
		}
	}
}

// =============================================================================

// get makes an HTTP GET call and decodes the JSON response.
func get(url string, result any) error {
	resp, err := netClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// post encodes the message envelope and makes an HTTP POST call.
func post(url string, msg network.Message) error {
	data, err := network.Encode(msg)
	if err != nil {
		return err
	}

	resp, err := netClient.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	return nil
}
