package usecase

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/spacefns/spaceport/internal/domain"
)

// TreasuryUsecase records value accepted on paid mutations and answers
// balance queries. It is only written to from inside orchestrator
// transactions; it has no mutation surface of its own.
type TreasuryUsecase struct {
	store Store
	admin string
}

func NewTreasuryUsecase(store Store, admin string) *TreasuryUsecase {
	return &TreasuryUsecase{store: store, admin: admin}
}

// Credit appends a ledger entry for address, naming the paying
// principal. Must run inside the caller's Atomic so a failed operation
// never leaves a credit behind.
func (uc *TreasuryUsecase) Credit(ctx context.Context, address string, from string, amount uint64, memo string) error {
	if amount == 0 {
		return nil
	}
	return uc.store.Ledger().Append(ctx, domain.LedgerEntry{
		Address: address,
		From:    from,
		Amount:  amount,
		Memo:    memo,
		At:      time.Now().Unix(),
	})
}

func (uc *TreasuryUsecase) BalanceOf(ctx context.Context, address string) (uint64, error) {
	return uc.store.Ledger().BalanceOf(ctx, address)
}

// History lists the newest ledger entries for address. Administrator
// only; balances are public, payment trails are not.
func (uc *TreasuryUsecase) History(ctx context.Context, address string, limit int) ([]domain.LedgerEntry, error) {
	requester, ok := domain.GetRequester(ctx)
	if !ok || uc.admin == "" || requester != uc.admin {
		return nil, errors.Wrap(domain.ErrUnauthorized, "requester is not the administrator")
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return uc.store.Ledger().ListByAddress(ctx, address, limit)
}
