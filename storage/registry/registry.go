package registry

import (
	"sort"
	"sync"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/samber/lo"
)

// ReaderOpener opens a storage reader from provider specific params
type ReaderOpener func(params map[string]any) (storage.Reader, error)

var (
	mu                sync.RWMutex
	registeredOpeners = map[string]ReaderOpener{}
)

// Register registers a ReaderOpener by provider name
func Register(name string, opener ReaderOpener) {
	mu.Lock()
	defer mu.Unlock()
	registeredOpeners[name] = opener
}

// Open opens a registered storage reader
func Open(name string, params map[string]any) (storage.Reader, error) {
	mu.RLock()
	opener, ok := registeredOpeners[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.NotFound, "storage provider %s is not registered", name)
	}
	return opener(params)
}

// Providers returns the names of the registered providers
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := lo.Keys(registeredOpeners)
	sort.Strings(names)
	return names
}
