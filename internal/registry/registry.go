// Package registry holds wallet identities registered with the auth server.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

// Registry stores one identity per address.
type Registry interface {
	// Register assigns a user id and stores the identity.
	// A second registration of the same address fails with model.ErrConflict.
	Register(ctx context.Context, publicKey, address string, role model.Role) (*model.Identity, error)
	Lookup(ctx context.Context, address string) (*model.Identity, error)
}

// MemoryRegistry is an in-process Registry
type MemoryRegistry struct {
	mu        sync.RWMutex
	byAddress map[string]*model.Identity
	now       func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{byAddress: make(map[string]*model.Identity), now: time.Now}
}

func (r *MemoryRegistry) Register(_ context.Context, publicKey, address string, role model.Role) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byAddress[address]; ok {
		return nil, errors.Wrapf(model.ErrConflict, "address %s is already registered", address)
	}

	id := &model.Identity{
		UserID:    uuid.NewString(),
		PublicKey: publicKey,
		Address:   address,
		Role:      role,
		CreatedAt: r.now().UTC(),
	}
	r.byAddress[address] = id

	out := *id
	return &out, nil
}

func (r *MemoryRegistry) Lookup(_ context.Context, address string) (*model.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAddress[address]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "address %s", address)
	}
	out := *id
	return &out, nil
}
