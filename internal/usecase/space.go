package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/gate"
)

// SpaceUsecase owns the namespace tree of leasable space domains.
// Mutations pass the gate; reads are open and degrade to zero values
// for unknown ids.
type SpaceUsecase struct {
	store Store
	gate  *gate.Gate
}

func NewSpaceUsecase(store Store, gate *gate.Gate) *SpaceUsecase {
	return &SpaceUsecase{store: store, gate: gate}
}

func (uc *SpaceUsecase) CreatePrimary(ctx context.Context, creatorID uint64, name string, leaseSeconds uint64) (uint64, error) {
	if err := uc.gate.Authorize(ctx); err != nil {
		return 0, err
	}
	if err := domain.ValidateSpaceName(name); err != nil {
		return 0, err
	}

	var id uint64
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		_, err := uc.store.Spaces().GetByName(ctx, 0, name)
		if err == nil {
			return errors.Wrap(domain.ErrSpaceAlreadyExists, name)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		id, err = uc.store.IDs().Next(ctx, domain.KindSpace)
		if err != nil {
			return err
		}
		return uc.store.Spaces().Create(ctx, domain.Space{
			ID:            id,
			CreatorID:     creatorID,
			UserID:        creatorID,
			ParentID:      0,
			ExpireSeconds: leaseSeconds,
			Name:          name,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (uc *SpaceUsecase) CreateChild(ctx context.Context, parentID uint64, creatorID uint64, name string, leaseSeconds uint64) (uint64, error) {
	if err := uc.gate.Authorize(ctx); err != nil {
		return 0, err
	}
	if err := domain.ValidateSpaceName(name); err != nil {
		return 0, err
	}

	var id uint64
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		parent, err := uc.store.Spaces().Get(ctx, parentID)
		if err != nil {
			return err
		}
		if !parent.IsPrimary() {
			return errors.Wrap(domain.ErrUnauthorized, "parent is not a primary space")
		}
		if parent.UserID != creatorID {
			return errors.Wrap(domain.ErrUnauthorized, "creator does not hold the parent space")
		}

		limit, err := uc.store.Settings().GetUint(ctx, domain.SettingSubSpaceLimit)
		if err != nil {
			return err
		}
		count, err := uc.store.Spaces().CountChildren(ctx, parentID, creatorID)
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return errors.Wrapf(domain.ErrSpaceLimitReached, "limit %d", limit)
		}

		_, err = uc.store.Spaces().GetByName(ctx, parentID, name)
		if err == nil {
			return errors.Wrap(domain.ErrSpaceAlreadyExists, name)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		id, err = uc.store.IDs().Next(ctx, domain.KindSpace)
		if err != nil {
			return err
		}
		return uc.store.Spaces().Create(ctx, domain.Space{
			ID:            id,
			CreatorID:     creatorID,
			UserID:        creatorID,
			ParentID:      parentID,
			ExpireSeconds: leaseSeconds,
			Name:          name,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Rent transfers user rights to newUserID. Approval checks happen in
// the orchestrator before this is called.
func (uc *SpaceUsecase) Rent(ctx context.Context, spaceID uint64, newUserID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		space.UserID = newUserID
		return uc.store.Spaces().Update(ctx, space)
	})
}

// Return resets user rights back to the creator.
func (uc *SpaceUsecase) Return(ctx context.Context, spaceID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		space.UserID = space.CreatorID
		return uc.store.Spaces().Update(ctx, space)
	})
}

func (uc *SpaceUsecase) UpdateName(ctx context.Context, spaceID uint64, callerID uint64, name string) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	if err := domain.ValidateSpaceName(name); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		if space.CreatorID != callerID {
			return errors.Wrap(domain.ErrUnauthorized, "caller is not the space creator")
		}

		existing, err := uc.store.Spaces().GetByName(ctx, space.ParentID, name)
		if err == nil && existing.ID != space.ID {
			return errors.Wrap(domain.ErrSpaceAlreadyExists, name)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		space.Name = name
		return uc.store.Spaces().Update(ctx, space)
	})
}

func (uc *SpaceUsecase) UpdateExpiry(ctx context.Context, spaceID uint64, callerID uint64, expireSeconds uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		if space.CreatorID != callerID {
			return errors.Wrap(domain.ErrUnauthorized, "caller is not the space creator")
		}
		space.ExpireSeconds = expireSeconds
		return uc.store.Spaces().Update(ctx, space)
	})
}

// Get returns the space record, zero-valued when the id is unknown.
func (uc *SpaceUsecase) Get(ctx context.Context, id uint64) (domain.Space, error) {
	space, err := uc.store.Spaces().Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Space{}, nil
		}
		return domain.Space{}, err
	}
	return space, nil
}

func (uc *SpaceUsecase) CreatorOf(ctx context.Context, id uint64) (uint64, error) {
	space, err := uc.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return space.CreatorID, nil
}

func (uc *SpaceUsecase) UserOf(ctx context.Context, id uint64) (uint64, error) {
	space, err := uc.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return space.UserID, nil
}

// GetByIDs returns one slot per requested id, zero-valued for unknown
// ids, in request order.
func (uc *SpaceUsecase) GetByIDs(ctx context.Context, ids []uint64) ([]domain.Space, error) {
	found, err := uc.store.Spaces().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Space, len(ids))
	for i, id := range ids {
		if space, ok := found[id]; ok {
			out[i] = space
		}
	}
	return out, nil
}

// ChildrenOf lists every child space id under the parent in creation
// order, empty for unknown parents and for parent 0.
func (uc *SpaceUsecase) ChildrenOf(ctx context.Context, parentID uint64) ([]uint64, error) {
	return uc.store.Spaces().ListChildren(ctx, parentID)
}

// Names resolves the display names for a space: the primary name, and
// for child spaces the composed "child.parent" form.
func (uc *SpaceUsecase) Names(ctx context.Context, id uint64) (string, string, error) {
	space, err := uc.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if space.ID == 0 {
		return "", "", nil
	}
	if space.IsPrimary() {
		return space.Name, "", nil
	}

	parent, err := uc.Get(ctx, space.ParentID)
	if err != nil {
		return "", "", err
	}
	return parent.Name, domain.ComposeSpaceName(space.Name, parent.Name), nil
}
