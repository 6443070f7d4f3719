// Package store opens the credential store selected by configuration.
//
// Adapters register themselves from init(); main imports the ones it ships:
//
//	import _ "github.com/dropDatabas3/rolbazli/internal/store/adapters/pg"
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
)

// Adapter opens a repository.Store for one driver.
type Adapter interface {
	// Name is the storage.driver value selecting this adapter.
	Name() string
	Open(ctx context.Context, cfg Config) (repository.Store, error)
}

// Config is what an adapter needs to open its store.
type Config struct {
	Driver string
	DSN    string

	MaxConns int
	MinConns int

	// Hash tunes argon2id for newly stored passwords.
	Hash password.Params
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter makes a driver available to Open. It panics on duplicates.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("store: adapter %q already registered", name))
	}
	adapters[name] = a
}

// Adapters lists the registered driver names, sorted.
func Adapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects using the adapter named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (repository.Store, error) {
	name := normalizeDriver(cfg.Driver)

	registryMu.RLock()
	a, ok := adapters[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: driver %q not registered (have %s)", cfg.Driver, strings.Join(Adapters(), ", "))
	}
	if cfg.Hash == (password.Params{}) {
		cfg.Hash = password.Default
	}
	return a.Open(ctx, cfg)
}

func normalizeDriver(d string) string {
	switch d = strings.ToLower(strings.TrimSpace(d)); d {
	case "pg", "postgresql":
		return "postgres"
	case "mem", "inmemory":
		return "memory"
	}
	return d
}
