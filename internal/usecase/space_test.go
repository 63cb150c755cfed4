package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spacefns/spaceport/internal/domain"
)

func TestSubSpaceRentLifecycle(t *testing.T) {
	f := newFixture(t)

	aliceID := f.mustCreateAccount(t, aliceAddr, "foo")
	bobID := f.mustCreateAccount(t, bobAddr, "bar")

	subID, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "subdomain", 0)
	if err != nil {
		t.Fatalf("create sub space failed: %v", err)
	}

	primary, full, err := f.spaces.Names(context.Background(), subID)
	if err != nil {
		t.Fatalf("names lookup failed: %v", err)
	}
	if primary != "foo" || full != "subdomain.foo" {
		t.Fatalf("unexpected names %q %q", primary, full)
	}

	if err := f.accounts.ApproveRent(as(aliceAddr), subID, bobID); err != nil {
		t.Fatalf("approve rent failed: %v", err)
	}
	if err := f.accounts.RentSpace(as(bobAddr), subID, bobID); err != nil {
		t.Fatalf("rent failed: %v", err)
	}

	userID, _ := f.spaces.UserOf(context.Background(), subID)
	if userID != bobID {
		t.Fatalf("expected user %d got %d", bobID, userID)
	}
	records, _ := f.accounts.GetAccounts(context.Background(), []uint64{bobID, aliceID})
	if !domain.HasID(records[0].RentedSpaceIDs, subID) {
		t.Fatalf("renter index missing space: %+v", records[0])
	}
	if !domain.HasID(records[1].CreatedSpaceIDs, subID) {
		t.Fatalf("creator index lost space: %+v", records[1])
	}

	if err := f.accounts.ReturnSpace(as(bobAddr), subID); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	userID, _ = f.spaces.UserOf(context.Background(), subID)
	if userID != aliceID {
		t.Fatalf("expected user back to creator %d got %d", aliceID, userID)
	}
	records, _ = f.accounts.GetAccounts(context.Background(), []uint64{bobID})
	if len(records[0].RentedSpaceIDs) != 0 {
		t.Fatalf("renter index not cleared: %+v", records[0])
	}
}

func TestRentRequiresApproval(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	bobID := f.mustCreateAccount(t, bobAddr, "bar")
	carolID := f.mustCreateAccount(t, carolAddr, "baz")

	subID, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "sub", 0)
	if err != nil {
		t.Fatalf("create sub space failed: %v", err)
	}

	if err := f.accounts.RentSpace(as(bobAddr), subID, bobID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected rent without approval to fail, got %v", err)
	}

	// Only the current rights holder may approve.
	if err := f.accounts.ApproveRent(as(bobAddr), subID, bobID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected foreign approve to fail, got %v", err)
	}

	// An approval is bound to its spender and to the requester.
	if err := f.accounts.ApproveRent(as(aliceAddr), subID, bobID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := f.accounts.RentSpace(as(carolAddr), subID, bobID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected rent for someone else to fail, got %v", err)
	}
	if err := f.accounts.RentSpace(as(carolAddr), subID, carolID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected rent by unapproved account to fail, got %v", err)
	}
}

func TestApprovalConsumedOnRent(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	bobID := f.mustCreateAccount(t, bobAddr, "bar")

	subID, _ := f.accounts.CreateSubSpace(as(aliceAddr), 1, "sub", 0)
	if err := f.accounts.ApproveRent(as(aliceAddr), subID, bobID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := f.accounts.RentSpace(as(bobAddr), subID, bobID); err != nil {
		t.Fatalf("rent failed: %v", err)
	}
	if err := f.accounts.ReturnSpace(as(bobAddr), subID); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	// The grant was spent on the first rent.
	if err := f.accounts.RentSpace(as(bobAddr), subID, bobID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected spent approval to be gone, got %v", err)
	}
}

func TestSubSpaceLimitIsEnforcedAndMutable(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	if err := f.accounts.SetSubSpaceLimit(f.admin, 2); err != nil {
		t.Fatalf("set limit failed: %v", err)
	}

	for _, name := range []string{"one", "two"} {
		if _, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, name, 0); err != nil {
			t.Fatalf("create sub %s failed: %v", name, err)
		}
	}
	if _, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "three", 0); !errors.Is(err, domain.ErrSpaceLimitReached) {
		t.Fatalf("expected ErrSpaceLimitReached got %v", err)
	}

	if err := f.accounts.SetSubSpaceLimit(f.admin, 3); err != nil {
		t.Fatalf("raise limit failed: %v", err)
	}
	if _, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "three", 0); err != nil {
		t.Fatalf("create sub after raise failed: %v", err)
	}

	settings, _ := f.accounts.RegistrySettings(context.Background())
	if settings.SubSpaceLimit != 3 {
		t.Fatalf("expected limit 3 got %d", settings.SubSpaceLimit)
	}

	children, err := f.spaces.ChildrenOf(context.Background(), 1)
	if err != nil {
		t.Fatalf("children lookup failed: %v", err)
	}
	// The rejected creation allocated nothing, so the ids are dense.
	if len(children) != 3 || children[0] != 2 || children[2] != 4 {
		t.Fatalf("unexpected children %v", children)
	}
}

func TestChildNamesUniquePerParent(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	f.mustCreateAccount(t, bobAddr, "bar")

	if _, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "app", 0); err != nil {
		t.Fatalf("create sub failed: %v", err)
	}
	if _, err := f.accounts.CreateSubSpace(as(aliceAddr), 1, "app", 0); !errors.Is(err, domain.ErrSpaceAlreadyExists) {
		t.Fatalf("expected duplicate child name to fail, got %v", err)
	}

	// Same name under another parent is a different namespace.
	if _, err := f.accounts.CreateSubSpace(as(bobAddr), 2, "app", 0); err != nil {
		t.Fatalf("create sub under other parent failed: %v", err)
	}
}

func TestCreateSubSpaceRequiresParentRights(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	f.mustCreateAccount(t, bobAddr, "bar")

	if _, err := f.accounts.CreateSubSpace(as(bobAddr), 1, "sub", 0); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected foreign sub creation to fail, got %v", err)
	}

	// Children cannot nest under children.
	subID, _ := f.accounts.CreateSubSpace(as(aliceAddr), 1, "sub", 0)
	if _, err := f.accounts.CreateSubSpace(as(aliceAddr), subID, "deep", 0); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected nested sub creation to fail, got %v", err)
	}
}

func TestUpdateSpaceNameAndExpiry(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")
	f.mustCreateAccount(t, bobAddr, "bar")

	if err := f.accounts.UpdateSpaceName(as(aliceAddr), 1, "fuu"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	space, _ := f.spaces.Get(context.Background(), 1)
	if space.Name != "fuu" {
		t.Fatalf("expected renamed space, got %+v", space)
	}

	if err := f.accounts.UpdateSpaceName(as(aliceAddr), 1, "bar"); !errors.Is(err, domain.ErrSpaceAlreadyExists) {
		t.Fatalf("expected rename onto taken name to fail, got %v", err)
	}
	if err := f.accounts.UpdateSpaceName(as(bobAddr), 1, "mine"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected foreign rename to fail, got %v", err)
	}

	if err := f.accounts.UpdateSpaceExpiry(as(aliceAddr), 1, 86400); err != nil {
		t.Fatalf("update expiry failed: %v", err)
	}
	space, _ = f.spaces.Get(context.Background(), 1)
	if space.ExpireSeconds != 86400 {
		t.Fatalf("expected expiry 86400 got %d", space.ExpireSeconds)
	}
	if err := f.accounts.UpdateSpaceExpiry(as(bobAddr), 1, 1); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected foreign expiry update to fail, got %v", err)
	}
}

func TestSpaceReadsDegradeToZero(t *testing.T) {
	f := newFixture(t)

	f.mustCreateAccount(t, aliceAddr, "foo")

	space, err := f.spaces.Get(context.Background(), 99)
	if err != nil || space.ID != 0 {
		t.Fatalf("expected zero space for unknown id, got %+v err %v", space, err)
	}
	userID, err := f.spaces.UserOf(context.Background(), 99)
	if err != nil || userID != 0 {
		t.Fatalf("expected zero user for unknown id, got %d err %v", userID, err)
	}
	primary, full, err := f.spaces.Names(context.Background(), 99)
	if err != nil || primary != "" || full != "" {
		t.Fatalf("expected empty names for unknown id, got %q %q err %v", primary, full, err)
	}

	spaces, err := f.spaces.GetByIDs(context.Background(), []uint64{99, 1})
	if err != nil {
		t.Fatalf("batch get failed: %v", err)
	}
	if spaces[0].ID != 0 || spaces[1].Name != "foo" {
		t.Fatalf("unexpected batch result %+v", spaces)
	}

	children, err := f.spaces.ChildrenOf(context.Background(), 99)
	if err != nil || len(children) != 0 {
		t.Fatalf("expected no children for unknown parent, got %v err %v", children, err)
	}
}
