// Package disk implements the database.Storage interface over a directory
// tree, one directory per keyspace and one JSON-friendly file per key.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and writing
// chain data to disk.
type Disk struct {
	dbPath string
	mu     sync.RWMutex
}

// New constructs a Disk value for use, creating the base directory.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("create db path: %w", err)
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since files are opened and
// closed per call.
func (d *Disk) Close() error {
	return nil
}

// Put writes the data under the specified keyspace and key.
func (d *Disk) Put(keyspace string, key string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Join(d.dbPath, keyspace)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, fileName(key)), data, 0600); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}

	return nil
}

// Get reads the data stored under the specified keyspace and key.
func (d *Disk) Get(keyspace string, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(d.dbPath, keyspace, fileName(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("read key %q: %w", key, err)
	}

	return data, nil
}

// Delete removes the data stored under the specified keyspace and key.
func (d *Disk) Delete(keyspace string, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := os.Remove(filepath.Join(d.dbPath, keyspace, fileName(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete key %q: %w", key, err)
	}

	return nil
}

// fileName makes a key safe to use as a file name. Keys are hashes, hex
// account ids, or short metadata names, so only the separator characters
// need mapping.
func fileName(key string) string {
	key = strings.ReplaceAll(key, ":", "_")
	return strings.ReplaceAll(key, "/", "_")
}
