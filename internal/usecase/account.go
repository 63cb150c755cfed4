package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/gate"
)

// AccountUsecase is the orchestrator. External requesters only ever
// talk to this layer; it resolves the requester's account, validates,
// then calls into the gated space and moment registries under its own
// service identity and mirrors every change into the per-account
// indexes.
type AccountUsecase struct {
	store      Store
	spaces     *SpaceUsecase
	moments    *MomentUsecase
	treasury   *TreasuryUsecase
	spaceGate  *gate.Gate
	momentGate *gate.Gate
	signal     SignalPublisher
	service    string
	admin      string
}

func NewAccountUsecase(
	store Store,
	spaces *SpaceUsecase,
	moments *MomentUsecase,
	treasury *TreasuryUsecase,
	spaceGate *gate.Gate,
	momentGate *gate.Gate,
	signal SignalPublisher,
	service string,
	admin string,
) *AccountUsecase {
	return &AccountUsecase{
		store:      store,
		spaces:     spaces,
		moments:    moments,
		treasury:   treasury,
		spaceGate:  spaceGate,
		momentGate: momentGate,
		signal:     signal,
		service:    service,
		admin:      admin,
	}
}

// asService swaps the requester for the registry's own identity before
// calling into a gated registry.
func (uc *AccountUsecase) asService(ctx context.Context) context.Context {
	return domain.WithRequester(ctx, uc.service)
}

func (uc *AccountUsecase) requesterAccount(ctx context.Context) (domain.Account, error) {
	requester, ok := domain.GetRequester(ctx)
	if !ok {
		return domain.Account{}, errors.Wrap(domain.ErrUnauthorized, "no requester in context")
	}
	return uc.store.Accounts().GetByOwner(ctx, requester)
}

func (uc *AccountUsecase) authorizeAdmin(ctx context.Context) error {
	requester, ok := domain.GetRequester(ctx)
	if !ok || uc.admin == "" || requester != uc.admin {
		return errors.Wrap(domain.ErrUnauthorized, "requester is not the administrator")
	}
	return nil
}

func (uc *AccountUsecase) publish(ctx context.Context, kind string, action string, id uint64, actor string) {
	if uc.signal == nil {
		return
	}
	event := spaceport.Event{
		Kind:   kind,
		Action: action,
		ID:     id,
		Actor:  actor,
		At:     time.Now().Unix(),
	}
	if err := uc.signal.Publish(ctx, kind, event); err != nil {
		slog.Error("failed to publish event",
			slog.String("module", "account"),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}

// CreateAccount registers the requester and creates their primary
// space domain with the same name, all or nothing.
func (uc *AccountUsecase) CreateAccount(ctx context.Context, name string, avatarURI string) (uint64, error) {
	requester, ok := domain.GetRequester(ctx)
	if !ok {
		return 0, errors.Wrap(domain.ErrUnauthorized, "no requester in context")
	}

	var id uint64
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		_, err := uc.store.Accounts().GetByOwner(ctx, requester)
		if err == nil {
			return errors.Wrap(domain.ErrAccountAlreadyExists, requester)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		id, err = uc.store.IDs().Next(ctx, domain.KindAccount)
		if err != nil {
			return err
		}

		// The primary space is tracked through its creator field, not
		// the created index, so a fresh account can still cancel.
		if _, err := uc.spaces.CreatePrimary(uc.asService(ctx), id, name, 0); err != nil {
			return err
		}

		return uc.store.Accounts().Create(ctx, domain.Account{
			ID:        id,
			Owner:     requester,
			AvatarURI: avatarURI,
		})
	})
	if err != nil {
		return 0, err
	}

	uc.publish(ctx, domain.KindAccount, spaceport.EventActionCreated, id, requester)
	return id, nil
}

// CancelAccount retires the requester's account. Every owned index
// must be empty; nothing cascades.
func (uc *AccountUsecase) CancelAccount(ctx context.Context) error {
	var account domain.Account
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		var err error
		account, err = uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if account.HasResources() {
			return errors.Wrap(domain.ErrAccountHasActiveResources, "cancel requires empty indexes")
		}

		account.Owner = ""
		account.AvatarURI = ""
		account.PostIDs = nil
		account.CommentIDs = nil
		account.LikedPostIDs = nil
		account.CreatedSpaceIDs = nil
		account.RentedSpaceIDs = nil
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	requester, _ := domain.GetRequester(ctx)
	uc.publish(ctx, domain.KindAccount, spaceport.EventActionRemoved, account.ID, requester)
	return nil
}

func (uc *AccountUsecase) UpdateAvatar(ctx context.Context, avatarURI string) error {
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		account.AvatarURI = avatarURI
		return uc.store.Accounts().Update(ctx, account)
	})
}

func (uc *AccountUsecase) CreateSubSpace(ctx context.Context, parentID uint64, name string, leaseSeconds uint64) (uint64, error) {
	var id uint64
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		actor = account.Owner

		id, err = uc.spaces.CreateChild(uc.asService(ctx), parentID, account.ID, name, leaseSeconds)
		if err != nil {
			return err
		}

		account.CreatedSpaceIDs = append(account.CreatedSpaceIDs, id)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return 0, err
	}

	uc.publish(ctx, domain.KindSpace, spaceport.EventActionCreated, id, actor)
	return id, nil
}

// ApproveRent grants a one-time rent approval for a space to another
// account. Only the current rights holder may grant, one spender at a
// time, overwriting any earlier grant.
func (uc *AccountUsecase) ApproveRent(ctx context.Context, spaceID uint64, renterID uint64) error {
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}

		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		if space.UserID != account.ID {
			return errors.Wrap(domain.ErrUnauthorized, "only the current space user may approve")
		}

		renter, err := uc.store.Accounts().Get(ctx, renterID)
		if err != nil {
			return err
		}
		if !renter.Active() {
			return domain.NotFoundError{Resource: "account"}
		}

		return uc.store.Approvals().Set(ctx, spaceID, renterID)
	})
}

// RentSpace transfers user rights of a space to the requester. The
// requester must be the approved spender; the approval is consumed.
func (uc *AccountUsecase) RentSpace(ctx context.Context, spaceID uint64, renterID uint64) error {
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if account.ID != renterID {
			return errors.Wrap(domain.ErrUnauthorized, "renter must be the requester")
		}
		actor = account.Owner

		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}

		spender, err := uc.store.Approvals().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		if spender == 0 || spender != account.ID {
			return errors.Wrap(domain.ErrUnauthorized, "no rent approval for requester")
		}

		if err := uc.spaces.Rent(uc.asService(ctx), spaceID, account.ID); err != nil {
			return err
		}
		if err := uc.store.Approvals().Clear(ctx, spaceID); err != nil {
			return err
		}

		// A prior renter loses the space from their rented index. The
		// creator holds through the space record itself.
		if space.UserID != 0 && space.UserID != space.CreatorID {
			prior, err := uc.store.Accounts().Get(ctx, space.UserID)
			if err == nil {
				prior.RentedSpaceIDs = domain.RemoveID(prior.RentedSpaceIDs, spaceID)
				if err := uc.store.Accounts().Update(ctx, prior); err != nil {
					return err
				}
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		account.RentedSpaceIDs = append(account.RentedSpaceIDs, spaceID)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.KindSpace, spaceport.EventActionRented, spaceID, actor)
	return nil
}

// ReturnSpace hands user rights of a rented space back to its creator.
func (uc *AccountUsecase) ReturnSpace(ctx context.Context, spaceID uint64) error {
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		actor = account.Owner

		space, err := uc.store.Spaces().Get(ctx, spaceID)
		if err != nil {
			return err
		}
		if space.UserID != account.ID {
			return errors.Wrap(domain.ErrUnauthorized, "requester does not hold the space")
		}

		if err := uc.spaces.Return(uc.asService(ctx), spaceID); err != nil {
			return err
		}

		account.RentedSpaceIDs = domain.RemoveID(account.RentedSpaceIDs, spaceID)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.KindSpace, spaceport.EventActionReturned, spaceID, actor)
	return nil
}

func (uc *AccountUsecase) UpdateSpaceName(ctx context.Context, spaceID uint64, name string) error {
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		return uc.spaces.UpdateName(uc.asService(ctx), spaceID, account.ID, name)
	})
}

func (uc *AccountUsecase) UpdateSpaceExpiry(ctx context.Context, spaceID uint64, expireSeconds uint64) error {
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		return uc.spaces.UpdateExpiry(uc.asService(ctx), spaceID, account.ID, expireSeconds)
	})
}

// CreateMoment publishes a post. The attached value must equal the
// configured mint fee exactly and is credited to the beneficiary in
// the same transaction.
func (uc *AccountUsecase) CreateMoment(ctx context.Context, metadataURI string, value uint64) (uint64, error) {
	var id uint64
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		actor = account.Owner

		mintFee, err := uc.store.Settings().GetUint(ctx, domain.SettingMintFee)
		if err != nil {
			return err
		}
		if value != mintFee {
			return errors.Wrapf(domain.ErrInsufficientFee, "expected %d got %d", mintFee, value)
		}

		beneficiary, err := uc.store.Settings().GetString(ctx, domain.SettingBeneficiary)
		if err != nil {
			return err
		}
		if beneficiary != "" {
			if err := uc.treasury.Credit(ctx, beneficiary, account.Owner, value, "mint fee"); err != nil {
				return err
			}
		}

		id, err = uc.moments.CreatePost(uc.asService(ctx), account.ID, metadataURI)
		if err != nil {
			return err
		}

		account.PostIDs = append(account.PostIDs, id)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return 0, err
	}

	uc.publish(ctx, domain.KindMoment, spaceport.EventActionCreated, id, actor)
	return id, nil
}

// RemoveMoment tombstones a post. Ownership is enforced through the
// requester's own index, which also blocks a second removal.
func (uc *AccountUsecase) RemoveMoment(ctx context.Context, postID uint64) error {
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if !domain.HasID(account.PostIDs, postID) {
			return errors.Wrap(domain.ErrUnauthorized, "post not owned by requester")
		}
		actor = account.Owner

		if err := uc.moments.RemovePost(uc.asService(ctx), postID); err != nil {
			return err
		}

		account.PostIDs = domain.RemoveID(account.PostIDs, postID)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.KindMoment, spaceport.EventActionRemoved, postID, actor)
	return nil
}

// LikeMoment records a like. Liking a post twice is a no-op; the
// content graph never sees the duplicate.
func (uc *AccountUsecase) LikeMoment(ctx context.Context, postID uint64) error {
	var actor string
	var changed bool
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if domain.HasID(account.LikedPostIDs, postID) {
			return nil
		}
		actor = account.Owner

		if err := uc.moments.Like(uc.asService(ctx), postID, account.ID); err != nil {
			return err
		}

		account.LikedPostIDs = append(account.LikedPostIDs, postID)
		changed = true
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	if changed {
		uc.publish(ctx, domain.KindLike, spaceport.EventActionCreated, postID, actor)
	}
	return nil
}

func (uc *AccountUsecase) CancelLikeMoment(ctx context.Context, postID uint64) error {
	var actor string
	var changed bool
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if !domain.HasID(account.LikedPostIDs, postID) {
			return nil
		}
		actor = account.Owner

		if err := uc.moments.Unlike(uc.asService(ctx), postID, account.ID); err != nil {
			return err
		}

		account.LikedPostIDs = domain.RemoveID(account.LikedPostIDs, postID)
		changed = true
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	if changed {
		uc.publish(ctx, domain.KindLike, spaceport.EventActionRemoved, postID, actor)
	}
	return nil
}

func (uc *AccountUsecase) CreateComment(ctx context.Context, postID uint64, text string) (uint64, error) {
	var id uint64
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		actor = account.Owner

		id, err = uc.moments.CreateComment(uc.asService(ctx), account.ID, postID, text)
		if err != nil {
			return err
		}

		account.CommentIDs = append(account.CommentIDs, id)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return 0, err
	}

	uc.publish(ctx, domain.KindComment, spaceport.EventActionCreated, id, actor)
	return id, nil
}

func (uc *AccountUsecase) RemoveComment(ctx context.Context, commentID uint64) error {
	var actor string
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		account, err := uc.requesterAccount(ctx)
		if err != nil {
			return err
		}
		if !domain.HasID(account.CommentIDs, commentID) {
			return errors.Wrap(domain.ErrUnauthorized, "comment not owned by requester")
		}
		actor = account.Owner

		if err := uc.moments.RemoveComment(uc.asService(ctx), commentID); err != nil {
			return err
		}

		account.CommentIDs = domain.RemoveID(account.CommentIDs, commentID)
		return uc.store.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.KindComment, spaceport.EventActionRemoved, commentID, actor)
	return nil
}

// AccountOf resolves the requester's own account.
func (uc *AccountUsecase) AccountOf(ctx context.Context) (domain.Account, error) {
	return uc.requesterAccount(ctx)
}

// GetAccountIDs maps addresses to account ids, zero for unknown or
// retired principals, in request order.
func (uc *AccountUsecase) GetAccountIDs(ctx context.Context, addresses []string) ([]uint64, error) {
	found, err := uc.store.Accounts().GetIDsByOwners(ctx, addresses)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(addresses))
	for i, address := range addresses {
		out[i] = found[address]
	}
	return out, nil
}

// OwnerOf resolves an account id to its owning address, empty for
// unknown or retired ids.
func (uc *AccountUsecase) OwnerOf(ctx context.Context, id uint64) (string, error) {
	account, err := uc.store.Accounts().Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return account.Owner, nil
}

// GetAccounts returns one record per requested id, zero-valued for
// unknown ids, in request order.
func (uc *AccountUsecase) GetAccounts(ctx context.Context, ids []uint64) ([]domain.Account, error) {
	found, err := uc.store.Accounts().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, len(ids))
	for i, id := range ids {
		if account, ok := found[id]; ok {
			out[i] = account
		}
	}
	return out, nil
}

func (uc *AccountUsecase) RegistrySettings(ctx context.Context) (domain.RegistrySettings, error) {
	mintFee, err := uc.store.Settings().GetUint(ctx, domain.SettingMintFee)
	if err != nil {
		return domain.RegistrySettings{}, err
	}
	beneficiary, err := uc.store.Settings().GetString(ctx, domain.SettingBeneficiary)
	if err != nil {
		return domain.RegistrySettings{}, err
	}
	limit, err := uc.store.Settings().GetUint(ctx, domain.SettingSubSpaceLimit)
	if err != nil {
		return domain.RegistrySettings{}, err
	}
	return domain.RegistrySettings{
		MintFee:       mintFee,
		Beneficiary:   beneficiary,
		SubSpaceLimit: limit,
	}, nil
}

func (uc *AccountUsecase) SetMintFee(ctx context.Context, fee uint64) error {
	if err := uc.authorizeAdmin(ctx); err != nil {
		return err
	}
	return uc.store.Settings().SetUint(ctx, domain.SettingMintFee, fee)
}

func (uc *AccountUsecase) SetBeneficiary(ctx context.Context, address string) error {
	if err := uc.authorizeAdmin(ctx); err != nil {
		return err
	}
	return uc.store.Settings().SetString(ctx, domain.SettingBeneficiary, address)
}

func (uc *AccountUsecase) SetSubSpaceLimit(ctx context.Context, limit uint64) error {
	if err := uc.authorizeAdmin(ctx); err != nil {
		return err
	}
	return uc.store.Settings().SetUint(ctx, domain.SettingSubSpaceLimit, limit)
}

// SetSpaceCaller rotates the trusted caller of the space registry.
func (uc *AccountUsecase) SetSpaceCaller(ctx context.Context, next string) error {
	return uc.spaceGate.SetCaller(ctx, next)
}

// SetMomentCaller rotates the trusted caller of the moment registry.
func (uc *AccountUsecase) SetMomentCaller(ctx context.Context, next string) error {
	return uc.momentGate.SetCaller(ctx, next)
}
