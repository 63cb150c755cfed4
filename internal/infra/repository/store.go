package repository

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/spacefns/spaceport/internal/usecase"
)

type gormTxKey struct{}

// GormStore backs the registry with postgres. Atomic opens one
// transaction and threads it through the context so every repository
// call inside joins it; nested Atomic calls reuse the open
// transaction. An optional memcached client puts a lookup cache in
// front of the space repository.
type GormStore struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewGormStore(db *gorm.DB, mc *memcache.Client) *GormStore {
	return &GormStore{db: db, mc: mc}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func inGormTx(ctx context.Context) bool {
	_, ok := ctx.Value(gormTxKey{}).(*gorm.DB)
	return ok
}

func (s *GormStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if inGormTx(ctx) {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

func (s *GormStore) Accounts() usecase.AccountRepository { return &GormAccountRepository{store: s} }

func (s *GormStore) Spaces() usecase.SpaceRepository {
	inner := &GormSpaceRepository{store: s}
	if s.mc != nil {
		return &CachedSpaceRepository{inner: inner, mc: s.mc}
	}
	return inner
}

func (s *GormStore) Moments() usecase.MomentRepository     { return &GormMomentRepository{store: s} }
func (s *GormStore) Approvals() usecase.ApprovalRepository { return &GormApprovalRepository{store: s} }
func (s *GormStore) Settings() usecase.SettingRepository   { return &GormSettingRepository{store: s} }
func (s *GormStore) Ledger() usecase.LedgerRepository      { return &GormLedgerRepository{store: s} }
func (s *GormStore) IDs() usecase.IDRepository             { return &GormIDRepository{store: s} }
