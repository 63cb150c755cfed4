package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/infra/database/models"
)

type GormSpaceRepository struct {
	store *GormStore
}

func spaceToModel(space domain.Space) models.Space {
	return models.Space{
		ID:            space.ID,
		CreatorID:     space.CreatorID,
		UserID:        space.UserID,
		ParentID:      space.ParentID,
		ExpireSeconds: space.ExpireSeconds,
		Name:          space.Name,
	}
}

func spaceToDomain(record models.Space) domain.Space {
	return domain.Space{
		ID:            record.ID,
		CreatorID:     record.CreatorID,
		UserID:        record.UserID,
		ParentID:      record.ParentID,
		ExpireSeconds: record.ExpireSeconds,
		Name:          record.Name,
	}
}

func (r *GormSpaceRepository) Create(ctx context.Context, space domain.Space) error {
	record := spaceToModel(space)
	err := r.store.conn(ctx).Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The (parent_id, name) unique index catches races the
		// usecase-level lookup cannot see.
		return errors.Wrap(domain.ErrSpaceAlreadyExists, space.Name)
	}
	return err
}

func (r *GormSpaceRepository) Update(ctx context.Context, space domain.Space) error {
	result := r.store.conn(ctx).Model(&models.Space{}).
		Where("id = ?", space.ID).
		Updates(map[string]any{
			"user_id":        space.UserID,
			"expire_seconds": space.ExpireSeconds,
			"name":           space.Name,
		})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return errors.Wrap(domain.ErrSpaceAlreadyExists, space.Name)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "space"}
	}
	return nil
}

func (r *GormSpaceRepository) Get(ctx context.Context, id uint64) (domain.Space, error) {
	var record models.Space
	err := r.store.conn(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Space{}, domain.NotFoundError{Resource: "space"}
	}
	if err != nil {
		return domain.Space{}, err
	}
	return spaceToDomain(record), nil
}

func (r *GormSpaceRepository) GetByName(ctx context.Context, parentID uint64, name string) (domain.Space, error) {
	var record models.Space
	err := r.store.conn(ctx).
		Where("parent_id = ? AND name = ?", parentID, name).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Space{}, domain.NotFoundError{Resource: "space"}
	}
	if err != nil {
		return domain.Space{}, err
	}
	return spaceToDomain(record), nil
}

func (r *GormSpaceRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Space, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Space{}, nil
	}
	var records []models.Space
	err := r.store.conn(ctx).
		Where("id IN ?", ids).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]domain.Space, len(records))
	for _, record := range records {
		out[record.ID] = spaceToDomain(record)
	}
	return out, nil
}

func (r *GormSpaceRepository) CountChildren(ctx context.Context, parentID uint64, creatorID uint64) (int64, error) {
	var count int64
	err := r.store.conn(ctx).Model(&models.Space{}).
		Where("parent_id = ? AND creator_id = ?", parentID, creatorID).
		Count(&count).Error
	return count, err
}

func (r *GormSpaceRepository) ListChildren(ctx context.Context, parentID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.store.conn(ctx).Model(&models.Space{}).
		Where("parent_id = ? AND parent_id <> 0", parentID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
