// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the identities that hold keys on this machine.
package nameservice

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExt is the extension of the private key files.
const keyExt = ".ecdsa"

// Identity is a named address.
type Identity struct {
	Name    string           `json:"name"`
	Address database.Address `json:"address"`
}

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	mu        sync.RWMutex
	root      string
	addresses map[database.Address]string
}

// New constructs a name service with the keys found in the root folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		root:      root,
		addresses: make(map[database.Address]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != keyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		address := database.PublicKeyToAddress(privateKey.PublicKey)
		ns.addresses[address] = strings.TrimSuffix(path.Base(fileName), keyExt)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Create generates a new key, stores it in the root folder under the
// specified name and registers the address.
func (ns *NameService) Create(name string) (database.Address, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid identity name %q", name)
	}

	fileName := filepath.Join(ns.root, name+keyExt)
	if _, err := os.Stat(fileName); err == nil {
		return "", fmt.Errorf("identity %q already exists", name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(ns.root, 0700); err != nil {
		return "", err
	}

	if err := crypto.SaveECDSA(fileName, privateKey); err != nil {
		return "", fmt.Errorf("save key: %w", err)
	}

	address := database.PublicKeyToAddress(privateKey.PublicKey)

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.addresses[address] = name

	return address, nil
}

// PrivateKey loads the private key stored under the specified name.
func (ns *NameService) PrivateKey(name string) (*ecdsa.PrivateKey, error) {
	return crypto.LoadECDSA(filepath.Join(ns.root, name+keyExt))
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address database.Address) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.addresses[address]
	if !exists {
		return string(address)
	}
	return name
}

// Address returns the address registered under the specified name.
func (ns *NameService) Address(name string) (database.Address, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	for address, n := range ns.addresses {
		if n == name {
			return address, true
		}
	}
	return "", false
}

// Identities returns the known identities ordered by name.
func (ns *NameService) Identities() []Identity {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	list := make([]Identity, 0, len(ns.addresses))
	for address, name := range ns.addresses {
		list = append(list, Identity{Name: name, Address: address})
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list
}
