package repository

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/infra/database/models"
)

type GormAccountRepository struct {
	store *GormStore
}

func toInt64Array(ids []uint64) pq.Int64Array {
	if ids == nil {
		return nil
	}
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func toUint64Slice(arr pq.Int64Array) []uint64 {
	if len(arr) == 0 {
		return nil
	}
	out := make([]uint64, len(arr))
	for i, v := range arr {
		out[i] = uint64(v)
	}
	return out
}

func accountToModel(account domain.Account) models.Account {
	return models.Account{
		ID:              account.ID,
		Owner:           account.Owner,
		AvatarURI:       account.AvatarURI,
		PostIDs:         toInt64Array(account.PostIDs),
		CommentIDs:      toInt64Array(account.CommentIDs),
		LikedPostIDs:    toInt64Array(account.LikedPostIDs),
		CreatedSpaceIDs: toInt64Array(account.CreatedSpaceIDs),
		RentedSpaceIDs:  toInt64Array(account.RentedSpaceIDs),
	}
}

func accountToDomain(record models.Account) domain.Account {
	return domain.Account{
		ID:              record.ID,
		Owner:           record.Owner,
		AvatarURI:       record.AvatarURI,
		PostIDs:         toUint64Slice(record.PostIDs),
		CommentIDs:      toUint64Slice(record.CommentIDs),
		LikedPostIDs:    toUint64Slice(record.LikedPostIDs),
		CreatedSpaceIDs: toUint64Slice(record.CreatedSpaceIDs),
		RentedSpaceIDs:  toUint64Slice(record.RentedSpaceIDs),
	}
}

func (r *GormAccountRepository) Create(ctx context.Context, account domain.Account) error {
	record := accountToModel(account)
	err := r.store.conn(ctx).Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(domain.ErrAccountAlreadyExists, account.Owner)
	}
	return err
}

func (r *GormAccountRepository) Update(ctx context.Context, account domain.Account) error {
	record := accountToModel(account)
	result := r.store.conn(ctx).Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"owner":             record.Owner,
			"avatar_uri":        record.AvatarURI,
			"post_ids":          record.PostIDs,
			"comment_ids":       record.CommentIDs,
			"liked_post_ids":    record.LikedPostIDs,
			"created_space_ids": record.CreatedSpaceIDs,
			"rented_space_ids":  record.RentedSpaceIDs,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "account"}
	}
	return nil
}

func (r *GormAccountRepository) Get(ctx context.Context, id uint64) (domain.Account, error) {
	var record models.Account
	err := r.store.conn(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	if err != nil {
		return domain.Account{}, err
	}
	return accountToDomain(record), nil
}

func (r *GormAccountRepository) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	if owner == "" {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	var record models.Account
	err := r.store.conn(ctx).
		Where("owner = ?", owner).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	if err != nil {
		return domain.Account{}, err
	}
	return accountToDomain(record), nil
}

func (r *GormAccountRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Account, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Account{}, nil
	}
	var records []models.Account
	err := r.store.conn(ctx).
		Where("id IN ?", ids).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]domain.Account, len(records))
	for _, record := range records {
		out[record.ID] = accountToDomain(record)
	}
	return out, nil
}

func (r *GormAccountRepository) GetIDsByOwners(ctx context.Context, owners []string) (map[string]uint64, error) {
	if len(owners) == 0 {
		return map[string]uint64{}, nil
	}
	var rows []struct {
		ID    uint64
		Owner string
	}
	err := r.store.conn(ctx).Model(&models.Account{}).
		Select("id", "owner").
		Where("owner IN ? AND owner <> ''", owners).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(rows))
	for _, row := range rows {
		out[row.Owner] = row.ID
	}
	return out, nil
}
