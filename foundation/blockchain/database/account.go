package database

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"
)

// AccountLength is the length in bytes of an account id, which is an
// ed25519 public key.
const AccountLength = ed25519.PublicKeySize

// Account represents information stored in the database for an individual
// account.
type Account struct {
	AccountID   AccountID `json:"account_id"`
	Balance     uint64    `json:"balance"`
	Nonce       uint64    `json:"nonce"`
	CreatedAt   uint64    `json:"created_at"`
	LastUpdated uint64    `json:"last_updated"`
}

// newAccount constructs a new account value for use.
func newAccount(accountID AccountID, balance uint64, now uint64) Account {
	return Account{
		AccountID:   accountID,
		Balance:     balance,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// =============================================================================

// AccountID represents an account id that is used to sign transactions and is
// associated with transactions on the blockchain. It is the hex encoding of
// the account's ed25519 public key.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hexID string) (AccountID, error) {
	a := AccountID(hexID)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ed25519.PublicKey) AccountID {
	return AccountID("0x" + hex.EncodeToString(pk))
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	s := string(a)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}

	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return false
	}

	return len(data) == AccountLength
}

// PublicKey returns the ed25519 public key the account id encodes.
func (a AccountID) PublicKey() (ed25519.PublicKey, error) {
	if !a.IsAccountID() {
		return nil, errors.New("invalid account format")
	}

	data, err := hex.DecodeString(string(a)[2:])
	if err != nil {
		return nil, err
	}

	return ed25519.PublicKey(data), nil
}

// Bytes returns the raw 32 bytes of the account id.
func (a AccountID) Bytes() ([]byte, error) {
	pk, err := a.PublicKey()
	if err != nil {
		return nil, err
	}

	return pk, nil
}

// =============================================================================

// byAccount provides sorting support by the account id value.
type byAccount []Account

// Len returns the number of accounts in the list.
func (ba byAccount) Len() int {
	return len(ba)
}

// Less helps to sort the list by account id in ascending order to keep the
// accounts in the right order of processing.
func (ba byAccount) Less(i, j int) bool {
	return ba[i].AccountID < ba[j].AccountID
}

// Swap moves accounts in the order of the account id value.
func (ba byAccount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}
