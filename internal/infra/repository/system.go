package repository

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/infra/database/models"
)

type GormApprovalRepository struct {
	store *GormStore
}

func (r *GormApprovalRepository) Set(ctx context.Context, spaceID uint64, spenderID uint64) error {
	return r.store.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "space_id"}},
		DoUpdates: clause.Assignments(map[string]any{"spender_id": spenderID}),
	}).Create(&models.Approval{
		SpaceID:   spaceID,
		SpenderID: spenderID,
	}).Error
}

func (r *GormApprovalRepository) Get(ctx context.Context, spaceID uint64) (uint64, error) {
	var record models.Approval
	err := r.store.conn(ctx).
		Where("space_id = ?", spaceID).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.SpenderID, nil
}

func (r *GormApprovalRepository) Clear(ctx context.Context, spaceID uint64) error {
	return r.store.conn(ctx).
		Where("space_id = ?", spaceID).
		Delete(&models.Approval{}).Error
}

type GormSettingRepository struct {
	store *GormStore
}

func (r *GormSettingRepository) get(ctx context.Context, key string) (string, error) {
	var record models.Setting
	err := r.store.conn(ctx).
		Where("key = ?", key).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

func (r *GormSettingRepository) set(ctx context.Context, key string, value string) error {
	return r.store.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{"value": value}),
	}).Create(&models.Setting{
		Key:   key,
		Value: value,
	}).Error
}

func (r *GormSettingRepository) GetUint(ctx context.Context, key string) (uint64, error) {
	value, err := r.get(ctx, key)
	if err != nil || value == "" {
		return 0, err
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "setting %s is not numeric", key)
	}
	return parsed, nil
}

func (r *GormSettingRepository) SetUint(ctx context.Context, key string, value uint64) error {
	return r.set(ctx, key, strconv.FormatUint(value, 10))
}

func (r *GormSettingRepository) GetString(ctx context.Context, key string) (string, error) {
	return r.get(ctx, key)
}

func (r *GormSettingRepository) SetString(ctx context.Context, key string, value string) error {
	return r.set(ctx, key, value)
}

type GormLedgerRepository struct {
	store *GormStore
}

func (r *GormLedgerRepository) Append(ctx context.Context, entry domain.LedgerEntry) error {
	record := models.LedgerEntry{
		Address: entry.Address,
		From:    entry.From,
		Amount:  entry.Amount,
		Memo:    entry.Memo,
		At:      entry.At,
	}
	return r.store.conn(ctx).Create(&record).Error
}

func (r *GormLedgerRepository) BalanceOf(ctx context.Context, address string) (uint64, error) {
	var balance uint64
	err := r.store.conn(ctx).Model(&models.LedgerEntry{}).
		Where("address = ?", address).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	return balance, err
}

func (r *GormLedgerRepository) ListByAddress(ctx context.Context, address string, limit int) ([]domain.LedgerEntry, error) {
	var records []models.LedgerEntry
	err := r.store.conn(ctx).
		Where("address = ?", address).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerEntry, len(records))
	for i, record := range records {
		out[i] = domain.LedgerEntry{
			ID:      record.ID,
			Address: record.Address,
			From:    record.From,
			Amount:  record.Amount,
			Memo:    record.Memo,
			At:      record.At,
		}
	}
	return out, nil
}

type GormIDRepository struct {
	store *GormStore
}

// Next locks the counter row so concurrent transactions serialize per
// kind.
func (r *GormIDRepository) Next(ctx context.Context, kind string) (uint64, error) {
	conn := r.store.conn(ctx)

	var seq models.Sequence
	err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ?", kind).
		Take(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		seq = models.Sequence{Kind: kind}
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return 0, err
		}
		err = conn.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ?", kind).
			Take(&seq).Error
		if err != nil {
			return 0, err
		}
	}

	seq.Value++
	err = conn.Model(&models.Sequence{}).
		Where("kind = ?", kind).
		Update("value", seq.Value).Error
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}
