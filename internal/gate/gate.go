// Package gate implements the single-trusted-caller policy guarding
// registry mutations. Each gated registry holds its own Gate; only the
// administrator may rotate the trusted caller.
package gate

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/spacefns/spaceport/internal/domain"
)

type Gate struct {
	mu     sync.RWMutex
	admin  string
	caller string
}

// New creates a gate with no trusted caller. Until SetCaller is invoked
// every Authorize call fails.
func New(admin string) *Gate {
	return &Gate{admin: admin}
}

// Authorize checks that the context requester is the trusted caller.
// Read paths never consult the gate.
func (g *Gate) Authorize(ctx context.Context) error {
	requester, ok := domain.GetRequester(ctx)
	if !ok {
		return errors.Wrap(domain.ErrUnauthorized, "no requester in context")
	}

	g.mu.RLock()
	caller := g.caller
	g.mu.RUnlock()

	if caller == "" || requester != caller {
		return errors.Wrap(domain.ErrUnauthorized, "requester is not the trusted caller")
	}
	return nil
}

// AuthorizeAdmin checks that the context requester is the administrator.
func (g *Gate) AuthorizeAdmin(ctx context.Context) error {
	requester, ok := domain.GetRequester(ctx)
	if !ok {
		return errors.Wrap(domain.ErrUnauthorized, "no requester in context")
	}

	g.mu.RLock()
	admin := g.admin
	g.mu.RUnlock()

	if admin == "" || requester != admin {
		return errors.Wrap(domain.ErrUnauthorized, "requester is not the administrator")
	}
	return nil
}

// SetCaller rotates the trusted caller. Administrator only, overwrites
// unconditionally.
func (g *Gate) SetCaller(ctx context.Context, next string) error {
	if err := g.AuthorizeAdmin(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.caller = next
	g.mu.Unlock()
	return nil
}

// Caller returns the currently trusted caller, empty if unset.
func (g *Gate) Caller() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.caller
}
