// This program performs administrative tasks against a node's chain data.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/qoranet/qoranet/app/tooling/admin/commands"
	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/database/disk"
	"github.com/qoranet/qoranet/foundation/blockchain/genesis"
	"github.com/qoranet/qoranet/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	gen, err := genesis.Load("zblock/genesis.json")
	if err != nil {
		return err
	}

	strg, err := disk.New("zblock/data")
	if err != nil {
		return err
	}
	defer strg.Close()

	db, err := database.New(gen, strg, nil)
	if err != nil {
		return err
	}

	return processCommands(os.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, db *database.Database) error {
	if len(args) < 2 {
		return errors.New("expecting a command: accounts, blocks, validators")
	}

	switch args[1] {
	case "accounts":
		if err := commands.Accounts(args, db); err != nil {
			return fmt.Errorf("getting accounts: %w", err)
		}
	case "blocks":
		if err := commands.Blocks(args, db); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}
	case "validators":
		if err := commands.Validators(args, db); err != nil {
			return fmt.Errorf("getting validators: %w", err)
		}
	}

	return nil
}
