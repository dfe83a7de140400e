// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the ed25519 key files found there.
package nameservice

import (
	"crypto/ed25519"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

// NameService maintains a mapping between account ids and the name of the
// key file the account came from.
type NameService struct {
	accounts map[database.AccountID]string
}

// New constructs a name service from the key files in the specified
// directory.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.AccountID]string),
	}

	fn := func(fileName string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if filepath.Ext(fileName) != ".key" {
			return nil
		}

		privateKey, err := signature.LoadKey(fileName)
		if err != nil {
			return err
		}

		accountID := database.PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))
		ns.accounts[accountID] = strings.TrimSuffix(filepath.Base(fileName), ".key")

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, err
	}

	return &ns, nil
}

// Lookup returns the name for the specified account. If the account is not
// found, the account id is returned as the name.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	name, exists := ns.accounts[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	cpy := make(map[database.AccountID]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
