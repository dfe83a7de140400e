package cmd

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

var (
	url      string
	nonce    uint64
	to       string
	amount   uint64
	priority string
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a transfer transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the transaction.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the transfer.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&priority, "priority", "r", "medium", "Priority: low, medium, high, urgent.")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := signature.LoadKey(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	prio, err := fees.ParsePriority(priority)
	if err != nil {
		log.Fatal(err)
	}

	toID, err := database.ToAccountID(to)
	if err != nil {
		log.Fatal(err)
	}

	fromID := database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))

	feeQOR, feeUSD, err := estimateFee(string(database.KindTransfer), prio)
	if err != nil {
		log.Fatal(err)
	}

	payload := database.Payload{
		Kind: database.KindTransfer,
		Transfer: &database.Transfer{
			FromID: fromID,
			ToID:   toID,
			Amount: amount,
		},
	}

	tx, err := database.NewTx(fromID, nonce, payload, prio, feeQOR, feeUSD)
	if err != nil {
		log.Fatal(err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Status, result.Hash)
}

// estimateFee asks the node what the specified kind and priority costs.
func estimateFee(kind string, prio fees.Priority) (feeQOR uint64, feeUSD float64, err error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/fees/estimates/%s", url, kind))
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	var estimates struct {
		Estimates []fees.Estimate `json:"estimates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&estimates); err != nil {
		return 0, 0, err
	}

	for _, est := range estimates.Estimates {
		if est.Priority == prio {
			return est.FeeQOR, est.FeeUSD, nil
		}
	}

	return 0, 0, fmt.Errorf("no estimate for priority %q", prio)
}
