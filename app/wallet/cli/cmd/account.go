package cmd

import (
	"crypto/ed25519"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account id for the specified wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := signature.LoadKey(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))
	fmt.Println(accountID)
}
