package registry

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// AccessGate authorizes permissioned operations against explicit
// (principal, capability) grants. Checks fail closed: no grant, no access.
type AccessGate struct {
	mu     sync.RWMutex
	grants map[common.Address]map[registrystorage.Capability]struct{}
}

func NewAccessGate() *AccessGate {
	return &AccessGate{
		grants: make(map[common.Address]map[registrystorage.Capability]struct{}),
	}
}

// Authorize returns ErrPermissionDenied unless the principal holds the
// capability.
func (g *AccessGate) Authorize(principal common.Address, capability registrystorage.Capability) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.grants[principal][capability]; !ok {
		return errors.Wrapf(ErrPermissionDenied, "%s lacks %s", principal.Hex(), capability)
	}
	return nil
}

func (g *AccessGate) Grant(principal common.Address, capability registrystorage.Capability) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.grants[principal] == nil {
		g.grants[principal] = make(map[registrystorage.Capability]struct{})
	}
	g.grants[principal][capability] = struct{}{}
}

func (g *AccessGate) Revoke(principal common.Address, capability registrystorage.Capability) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.grants[principal], capability)
	if len(g.grants[principal]) == 0 {
		delete(g.grants, principal)
	}
}

// Capabilities returns the principal's grants in stable order.
func (g *AccessGate) Capabilities(principal common.Address) []registrystorage.Capability {
	g.mu.RLock()
	defer g.mu.RUnlock()

	capabilities := make([]registrystorage.Capability, 0, len(g.grants[principal]))
	for capability := range g.grants[principal] {
		capabilities = append(capabilities, capability)
	}
	sort.Slice(capabilities, func(i, j int) bool { return capabilities[i] < capabilities[j] })
	return capabilities
}

