// Package merkle provides the merkle root support needed to compute the
// transactions root stored in each block header.
package merkle

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

// Hashable represents a value that can produce a hash of itself for use as
// a leaf in the tree.
type Hashable interface {
	Hash() ([]byte, error)
}

// RootHash computes the merkle root for the set of values. An empty set
// produces the zero hash. Each level pairs adjacent hashes; an odd node is
// hashed with itself.
func RootHash[T Hashable](values []T) (string, error) {
	if len(values) == 0 {
		return signature.ZeroHash, nil
	}

	layer := make([][]byte, len(values))
	for i, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return "", err
		}
		layer[i] = hash
	}

	for len(layer) > 1 {
		next := make([][]byte, 0, (len(layer)+1)/2)

		for i := 0; i < len(layer); i += 2 {
			left := layer[i]

			right := left
			if i+1 < len(layer) {
				right = layer[i+1]
			}

			hash := sha256.Sum256(append(append([]byte{}, left...), right...))
			next = append(next, hash[:])
		}

		layer = next
	}

	return hexutil.Encode(layer[0]), nil
}
