package usecase

import (
	"context"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
)

// AccountRepository defines persistence/lookup for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	Update(ctx context.Context, account domain.Account) error
	Get(ctx context.Context, id uint64) (domain.Account, error)
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Account, error)
	GetIDsByOwners(ctx context.Context, owners []string) (map[string]uint64, error)
}

// SpaceRepository defines persistence/lookup for space domains.
type SpaceRepository interface {
	Create(ctx context.Context, space domain.Space) error
	Update(ctx context.Context, space domain.Space) error
	Get(ctx context.Context, id uint64) (domain.Space, error)
	// GetByName resolves a name within one namespace scope. parentID 0
	// is the primary scope.
	GetByName(ctx context.Context, parentID uint64, name string) (domain.Space, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Space, error)
	CountChildren(ctx context.Context, parentID uint64, creatorID uint64) (int64, error)
	// ListChildren returns every child id under the parent in creation
	// order. parentID 0 has no children by definition.
	ListChildren(ctx context.Context, parentID uint64) ([]uint64, error)
}

// MomentRepository defines persistence/lookup for posts, comments and
// the like relation.
type MomentRepository interface {
	CreatePost(ctx context.Context, post domain.Post) error
	UpdatePost(ctx context.Context, post domain.Post) error
	GetPost(ctx context.Context, id uint64) (domain.Post, error)
	GetPosts(ctx context.Context, ids []uint64) (map[uint64]domain.Post, error)
	// ListRecentPosts pages non-deleted posts newest first, bounded by
	// the until timestamp (unix seconds, inclusive).
	ListRecentPosts(ctx context.Context, until int64, limit int) ([]domain.Post, error)

	CreateComment(ctx context.Context, comment domain.Comment) error
	UpdateComment(ctx context.Context, comment domain.Comment) error
	GetComment(ctx context.Context, id uint64) (domain.Comment, error)
	GetComments(ctx context.Context, ids []uint64) (map[uint64]domain.Comment, error)

	SetLike(ctx context.Context, postID uint64, likerID uint64) error
	UnsetLike(ctx context.Context, postID uint64, likerID uint64) error
	// GetLikers returns liker account ids per post in like order.
	GetLikers(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error)
}

// ApprovalRepository holds rent approvals, one spender per space at a time.
type ApprovalRepository interface {
	Set(ctx context.Context, spaceID uint64, spenderID uint64) error
	Get(ctx context.Context, spaceID uint64) (uint64, error)
	Clear(ctx context.Context, spaceID uint64) error
}

// SettingRepository holds registry scalar configuration. Reads return
// zero values for unset keys.
type SettingRepository interface {
	GetUint(ctx context.Context, key string) (uint64, error)
	SetUint(ctx context.Context, key string, value uint64) error
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key string, value string) error
}

// LedgerRepository records value transfers accepted by the registry.
type LedgerRepository interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
	BalanceOf(ctx context.Context, address string) (uint64, error)
	ListByAddress(ctx context.Context, address string, limit int) ([]domain.LedgerEntry, error)
}

// IDRepository hands out entity ids, strictly increasing per kind,
// starting at 1, never reused.
type IDRepository interface {
	Next(ctx context.Context, kind string) (uint64, error)
}

// Store aggregates the registry repositories behind one atomic boundary.
// Atomic runs fn so that either every write inside commits or none do.
// Nested Atomic calls join the enclosing one.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
	Accounts() AccountRepository
	Spaces() SpaceRepository
	Moments() MomentRepository
	Approvals() ApprovalRepository
	Settings() SettingRepository
	Ledger() LedgerRepository
	IDs() IDRepository
}

// SignalPublisher broadcasts registry events to subscribers.
type SignalPublisher interface {
	Publish(ctx context.Context, channel string, event spaceport.Event) error
}
