package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/qoranet/qoranet/foundation/blockchain/fees"
)

var feeKind string

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Print the fee estimates for a transaction kind",
	Run:   feesRun,
}

func init() {
	rootCmd.AddCommand(feesCmd)
	feesCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	feesCmd.Flags().StringVarP(&feeKind, "kind", "k", "transfer", "Transaction kind to estimate.")
}

func feesRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/fees/estimates/%s", url, feeKind))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var estimates struct {
		Kind      string          `json:"kind"`
		Price     float64         `json:"price"`
		Estimates []fees.Estimate `json:"estimates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&estimates); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Kind: %s  QOR/USD: %.4f\n", estimates.Kind, estimates.Price)
	for _, est := range estimates.Estimates {
		fmt.Printf("  %-8s $%.6f  %d units\n", est.Priority, est.FeeUSD, est.FeeQOR)
	}
}
