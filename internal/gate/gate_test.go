package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/spacefns/spaceport/internal/domain"
)

func TestGateRejectsUntilCallerSet(t *testing.T) {
	g := New("spc1admin")

	ctx := domain.WithRequester(context.Background(), "spc1caller")
	if err := g.Authorize(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized before SetCaller, got %v", err)
	}

	adminCtx := domain.WithRequester(context.Background(), "spc1admin")
	if err := g.SetCaller(adminCtx, "spc1caller"); err != nil {
		t.Fatalf("SetCaller failed: %v", err)
	}

	if err := g.Authorize(ctx); err != nil {
		t.Fatalf("expected trusted caller to pass, got %v", err)
	}
	if g.Caller() != "spc1caller" {
		t.Fatalf("expected caller spc1caller got %s", g.Caller())
	}
}

func TestGateRejectsOtherRequesters(t *testing.T) {
	g := New("spc1admin")
	adminCtx := domain.WithRequester(context.Background(), "spc1admin")
	if err := g.SetCaller(adminCtx, "spc1caller"); err != nil {
		t.Fatalf("SetCaller failed: %v", err)
	}

	strangerCtx := domain.WithRequester(context.Background(), "spc1stranger")
	if err := g.Authorize(strangerCtx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for stranger, got %v", err)
	}

	if err := g.Authorize(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous context, got %v", err)
	}
}

func TestGateSetCallerIsAdminOnly(t *testing.T) {
	g := New("spc1admin")

	strangerCtx := domain.WithRequester(context.Background(), "spc1stranger")
	if err := g.SetCaller(strangerCtx, "spc1stranger"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non admin SetCaller, got %v", err)
	}
	if g.Caller() != "" {
		t.Fatalf("caller must remain unset after rejected SetCaller")
	}

	adminCtx := domain.WithRequester(context.Background(), "spc1admin")
	if err := g.SetCaller(adminCtx, "spc1first"); err != nil {
		t.Fatalf("SetCaller failed: %v", err)
	}
	if err := g.SetCaller(adminCtx, "spc1second"); err != nil {
		t.Fatalf("SetCaller overwrite failed: %v", err)
	}
	if g.Caller() != "spc1second" {
		t.Fatalf("expected rotation to spc1second, got %s", g.Caller())
	}
}
