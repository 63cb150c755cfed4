package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"

	"github.com/spacefns/spaceport/internal/domain"
)

const spaceCacheTTL = 60 // seconds

// CachedSpaceRepository puts memcached in front of single-space
// lookups. Entries are only written outside transactions, so
// uncommitted state never reaches the cache; mutations drop the
// affected keys and the TTL bounds staleness from other nodes.
type CachedSpaceRepository struct {
	inner *GormSpaceRepository
	mc    *memcache.Client
}

func spaceIDKey(id uint64) string {
	return fmt.Sprintf("sp:space:%d", id)
}

// spaceNameKey hashes the scoped name so arbitrary user input always
// yields a valid memcached key.
func spaceNameKey(parentID uint64, name string) string {
	digest := xxh3.HashString(fmt.Sprintf("%d:%s", parentID, name))
	return fmt.Sprintf("sp:spacename:%016x", digest)
}

func (r *CachedSpaceRepository) Get(ctx context.Context, id uint64) (domain.Space, error) {
	if inGormTx(ctx) {
		return r.inner.Get(ctx, id)
	}

	if item, err := r.mc.Get(spaceIDKey(id)); err == nil {
		var space domain.Space
		if err := json.Unmarshal(item.Value, &space); err == nil {
			return space, nil
		}
	}

	space, err := r.inner.Get(ctx, id)
	if err != nil {
		return domain.Space{}, err
	}
	if payload, err := json.Marshal(space); err == nil {
		r.mc.Set(&memcache.Item{Key: spaceIDKey(id), Value: payload, Expiration: spaceCacheTTL})
	}
	return space, nil
}

func (r *CachedSpaceRepository) GetByName(ctx context.Context, parentID uint64, name string) (domain.Space, error) {
	if inGormTx(ctx) {
		return r.inner.GetByName(ctx, parentID, name)
	}

	if item, err := r.mc.Get(spaceNameKey(parentID, name)); err == nil {
		var space domain.Space
		if err := json.Unmarshal(item.Value, &space); err == nil {
			return space, nil
		}
	}

	space, err := r.inner.GetByName(ctx, parentID, name)
	if err != nil {
		return domain.Space{}, err
	}
	if payload, err := json.Marshal(space); err == nil {
		r.mc.Set(&memcache.Item{Key: spaceNameKey(parentID, name), Value: payload, Expiration: spaceCacheTTL})
	}
	return space, nil
}

func (r *CachedSpaceRepository) Create(ctx context.Context, space domain.Space) error {
	if err := r.inner.Create(ctx, space); err != nil {
		return err
	}
	r.invalidate(space)
	return nil
}

func (r *CachedSpaceRepository) Update(ctx context.Context, space domain.Space) error {
	// A rename leaves the old name key behind; drop it along with the
	// current keys.
	if prev, err := r.inner.Get(ctx, space.ID); err == nil && prev.Name != space.Name {
		r.mc.Delete(spaceNameKey(prev.ParentID, prev.Name))
	}

	if err := r.inner.Update(ctx, space); err != nil {
		return err
	}
	r.invalidate(space)
	return nil
}

func (r *CachedSpaceRepository) invalidate(space domain.Space) {
	r.mc.Delete(spaceIDKey(space.ID))
	r.mc.Delete(spaceNameKey(space.ParentID, space.Name))
}

func (r *CachedSpaceRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Space, error) {
	return r.inner.GetByIDs(ctx, ids)
}

func (r *CachedSpaceRepository) CountChildren(ctx context.Context, parentID uint64, creatorID uint64) (int64, error) {
	return r.inner.CountChildren(ctx, parentID, creatorID)
}

func (r *CachedSpaceRepository) ListChildren(ctx context.Context, parentID uint64) ([]uint64, error) {
	return r.inner.ListChildren(ctx, parentID)
}
