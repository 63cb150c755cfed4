package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/infra/database/models"
)

type GormMomentRepository struct {
	store *GormStore
}

func postToDomain(record models.Post) domain.Post {
	return domain.Post{
		ID:          record.ID,
		CreatorID:   record.CreatorID,
		Timestamp:   record.Timestamp,
		Deleted:     record.Deleted,
		MetadataURI: record.MetadataURI,
	}
}

func commentToDomain(record models.Comment) domain.Comment {
	return domain.Comment{
		ID:        record.ID,
		CreatorID: record.CreatorID,
		Timestamp: record.Timestamp,
		PostID:    record.PostID,
		Deleted:   record.Deleted,
		Text:      record.Text,
	}
}

func (r *GormMomentRepository) CreatePost(ctx context.Context, post domain.Post) error {
	record := models.Post{
		ID:          post.ID,
		CreatorID:   post.CreatorID,
		Timestamp:   post.Timestamp,
		Deleted:     post.Deleted,
		MetadataURI: post.MetadataURI,
	}
	return r.store.conn(ctx).Create(&record).Error
}

func (r *GormMomentRepository) UpdatePost(ctx context.Context, post domain.Post) error {
	result := r.store.conn(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"deleted":      post.Deleted,
			"metadata_uri": post.MetadataURI,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "post"}
	}
	return nil
}

func (r *GormMomentRepository) GetPost(ctx context.Context, id uint64) (domain.Post, error) {
	var record models.Post
	err := r.store.conn(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Post{}, domain.NotFoundError{Resource: "post"}
	}
	if err != nil {
		return domain.Post{}, err
	}
	return postToDomain(record), nil
}

func (r *GormMomentRepository) GetPosts(ctx context.Context, ids []uint64) (map[uint64]domain.Post, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Post{}, nil
	}
	var records []models.Post
	err := r.store.conn(ctx).
		Where("id IN ?", ids).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]domain.Post, len(records))
	for _, record := range records {
		out[record.ID] = postToDomain(record)
	}
	return out, nil
}

func (r *GormMomentRepository) ListRecentPosts(ctx context.Context, until int64, limit int) ([]domain.Post, error) {
	var records []models.Post
	err := r.store.conn(ctx).
		Where("deleted = false AND timestamp <= ?", until).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, len(records))
	for i, record := range records {
		out[i] = postToDomain(record)
	}
	return out, nil
}

func (r *GormMomentRepository) CreateComment(ctx context.Context, comment domain.Comment) error {
	record := models.Comment{
		ID:        comment.ID,
		CreatorID: comment.CreatorID,
		Timestamp: comment.Timestamp,
		PostID:    comment.PostID,
		Deleted:   comment.Deleted,
		Text:      comment.Text,
	}
	return r.store.conn(ctx).Create(&record).Error
}

func (r *GormMomentRepository) UpdateComment(ctx context.Context, comment domain.Comment) error {
	result := r.store.conn(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{
			"deleted": comment.Deleted,
			"text":    comment.Text,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "comment"}
	}
	return nil
}

func (r *GormMomentRepository) GetComment(ctx context.Context, id uint64) (domain.Comment, error) {
	var record models.Comment
	err := r.store.conn(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment"}
	}
	if err != nil {
		return domain.Comment{}, err
	}
	return commentToDomain(record), nil
}

func (r *GormMomentRepository) GetComments(ctx context.Context, ids []uint64) (map[uint64]domain.Comment, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Comment{}, nil
	}
	var records []models.Comment
	err := r.store.conn(ctx).
		Where("id IN ?", ids).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]domain.Comment, len(records))
	for _, record := range records {
		out[record.ID] = commentToDomain(record)
	}
	return out, nil
}

func (r *GormMomentRepository) SetLike(ctx context.Context, postID uint64, likerID uint64) error {
	return r.store.conn(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.Like{
		PostID:  postID,
		LikerID: likerID,
	}).Error
}

func (r *GormMomentRepository) UnsetLike(ctx context.Context, postID uint64, likerID uint64) error {
	return r.store.conn(ctx).
		Where("post_id = ? AND liker_id = ?", postID, likerID).
		Delete(&models.Like{}).Error
}

func (r *GormMomentRepository) GetLikers(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error) {
	if len(postIDs) == 0 {
		return map[uint64][]uint64{}, nil
	}
	var records []models.Like
	err := r.store.conn(ctx).
		Where("post_id IN ?", postIDs).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]uint64)
	for _, record := range records {
		out[record.PostID] = append(out[record.PostID], record.LikerID)
	}
	return out, nil
}
