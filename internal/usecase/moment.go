package usecase

import (
	"context"
	"time"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/gate"
)

// MomentUsecase owns the content graph: append-only posts and comments
// with tombstone removal, and the like relation. Whether a caller may
// remove or double-like is the orchestrator's concern; this layer
// applies mutations as told once the gate passes.
type MomentUsecase struct {
	store Store
	gate  *gate.Gate
}

func NewMomentUsecase(store Store, gate *gate.Gate) *MomentUsecase {
	return &MomentUsecase{store: store, gate: gate}
}

func (uc *MomentUsecase) CreatePost(ctx context.Context, creatorID uint64, metadataURI string) (uint64, error) {
	if err := uc.gate.Authorize(ctx); err != nil {
		return 0, err
	}

	var id uint64
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		var err error
		id, err = uc.store.IDs().Next(ctx, domain.KindPost)
		if err != nil {
			return err
		}
		return uc.store.Moments().CreatePost(ctx, domain.Post{
			ID:          id,
			CreatorID:   creatorID,
			Timestamp:   time.Now().Unix(),
			MetadataURI: metadataURI,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (uc *MomentUsecase) RemovePost(ctx context.Context, postID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		post, err := uc.store.Moments().GetPost(ctx, postID)
		if err != nil {
			return err
		}
		post.Deleted = true
		return uc.store.Moments().UpdatePost(ctx, post)
	})
}

// CreateComment anchors a comment to a post id. The post is not
// required to exist; comments keep their own lifecycle.
func (uc *MomentUsecase) CreateComment(ctx context.Context, creatorID uint64, postID uint64, text string) (uint64, error) {
	if err := uc.gate.Authorize(ctx); err != nil {
		return 0, err
	}

	var id uint64
	err := uc.store.Atomic(ctx, func(ctx context.Context) error {
		var err error
		id, err = uc.store.IDs().Next(ctx, domain.KindComment)
		if err != nil {
			return err
		}
		return uc.store.Moments().CreateComment(ctx, domain.Comment{
			ID:        id,
			CreatorID: creatorID,
			Timestamp: time.Now().Unix(),
			PostID:    postID,
			Text:      text,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (uc *MomentUsecase) RemoveComment(ctx context.Context, commentID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		comment, err := uc.store.Moments().GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		comment.Deleted = true
		return uc.store.Moments().UpdateComment(ctx, comment)
	})
}

func (uc *MomentUsecase) Like(ctx context.Context, postID uint64, likerID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		return uc.store.Moments().SetLike(ctx, postID, likerID)
	})
}

func (uc *MomentUsecase) Unlike(ctx context.Context, postID uint64, likerID uint64) error {
	if err := uc.gate.Authorize(ctx); err != nil {
		return err
	}
	return uc.store.Atomic(ctx, func(ctx context.Context) error {
		return uc.store.Moments().UnsetLike(ctx, postID, likerID)
	})
}

// GetPosts returns one slot per requested id, zero-valued for ids that
// were never allocated, in request order.
func (uc *MomentUsecase) GetPosts(ctx context.Context, ids []uint64) ([]domain.Post, error) {
	found, err := uc.store.Moments().GetPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, len(ids))
	for i, id := range ids {
		if post, ok := found[id]; ok {
			out[i] = post
		}
	}
	return out, nil
}

func (uc *MomentUsecase) GetComments(ctx context.Context, ids []uint64) ([]domain.Comment, error) {
	found, err := uc.store.Moments().GetComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, len(ids))
	for i, id := range ids {
		if comment, ok := found[id]; ok {
			out[i] = comment
		}
	}
	return out, nil
}

// GetLikes reports the like relation per post. Liker carries the
// earliest liker id (0 when nobody likes the post), Likers the full
// set in like order.
func (uc *MomentUsecase) GetLikes(ctx context.Context, postIDs []uint64) ([]domain.LikeSummary, error) {
	found, err := uc.store.Moments().GetLikers(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LikeSummary, len(postIDs))
	for i, postID := range postIDs {
		likers := found[postID]
		summary := domain.LikeSummary{PostID: postID, Likers: likers, Count: uint64(len(likers))}
		if len(likers) > 0 {
			summary.Liker = likers[0]
		}
		out[i] = summary
	}
	return out, nil
}

// Recent pages the newest posts up to and including until, tombstoned
// ones excluded. A zero until means now.
func (uc *MomentUsecase) Recent(ctx context.Context, until time.Time, limit int) ([]domain.Post, error) {
	if until.IsZero() {
		until = time.Now()
	}
	if limit <= 0 {
		limit = 16
	}
	if limit > 64 {
		limit = 64
	}
	return uc.store.Moments().ListRecentPosts(ctx, until.Unix(), limit)
}
