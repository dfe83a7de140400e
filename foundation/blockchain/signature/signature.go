// Package signature provides helper functions for handling the ed25519
// signing of transactions and the hashing of values.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// SignatureLength is the length in bytes of an ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign uses the specified private key to sign the message.
func Sign(message []byte, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}

	return ed25519.Sign(privateKey, message), nil
}

// Verify reports whether the signature over the message is valid for the
// specified public key.
func Verify(message []byte, sig []byte, publicKey ed25519.PublicKey) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(publicKey, message, sig)
}

// GenerateKey creates a new random ed25519 private key.
func GenerateKey() (ed25519.PrivateKey, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return privateKey, nil
}

// SaveKey writes the private key seed to the specified file in hex.
func SaveKey(privateKey ed25519.PrivateKey, path string) error {
	seed := hex.EncodeToString(privateKey.Seed())
	if err := os.WriteFile(path, []byte(seed), 0600); err != nil {
		return fmt.Errorf("save key: %w", err)
	}

	return nil
}

// LoadKey reads a hex encoded private key seed from the specified file.
func LoadKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}

	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("invalid key seed size")
	}

	return ed25519.NewKeyFromSeed(seed), nil
}
