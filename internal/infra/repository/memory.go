package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/usecase"
)

type memoryTxKey struct{}

// MemoryStore keeps the whole registry in process. Atomic takes one
// coarse lock and snapshots state up front, so a failed function
// restores everything it touched. Nested Atomic calls join the outer
// one.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	accounts   map[uint64]domain.Account
	ownerIndex map[string]uint64
	spaces     map[uint64]domain.Space
	posts      map[uint64]domain.Post
	comments   map[uint64]domain.Comment
	likes      map[uint64][]uint64
	approvals  map[uint64]uint64
	uintVals   map[string]uint64
	stringVals map[string]string
	ledger     []domain.LedgerEntry
	sequences  map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:   make(map[uint64]domain.Account),
		ownerIndex: make(map[string]uint64),
		spaces:     make(map[uint64]domain.Space),
		posts:      make(map[uint64]domain.Post),
		comments:   make(map[uint64]domain.Comment),
		likes:      make(map[uint64][]uint64),
		approvals:  make(map[uint64]uint64),
		uintVals:   make(map[string]uint64),
		stringVals: make(map[string]string),
		sequences:  make(map[string]uint64),
	}
}

func cloneIDs(ids []uint64) []uint64 {
	if ids == nil {
		return nil
	}
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

func cloneAccount(account domain.Account) domain.Account {
	account.PostIDs = cloneIDs(account.PostIDs)
	account.CommentIDs = cloneIDs(account.CommentIDs)
	account.LikedPostIDs = cloneIDs(account.LikedPostIDs)
	account.CreatedSpaceIDs = cloneIDs(account.CreatedSpaceIDs)
	account.RentedSpaceIDs = cloneIDs(account.RentedSpaceIDs)
	return account
}

func (st *memoryState) clone() *memoryState {
	next := newMemoryState()
	for id, account := range st.accounts {
		next.accounts[id] = cloneAccount(account)
	}
	for owner, id := range st.ownerIndex {
		next.ownerIndex[owner] = id
	}
	for id, space := range st.spaces {
		next.spaces[id] = space
	}
	for id, post := range st.posts {
		next.posts[id] = post
	}
	for id, comment := range st.comments {
		next.comments[id] = comment
	}
	for postID, likers := range st.likes {
		next.likes[postID] = cloneIDs(likers)
	}
	for spaceID, spender := range st.approvals {
		next.approvals[spaceID] = spender
	}
	for key, value := range st.uintVals {
		next.uintVals[key] = value
	}
	for key, value := range st.stringVals {
		next.stringVals[key] = value
	}
	next.ledger = make([]domain.LedgerEntry, len(st.ledger))
	copy(next.ledger, st.ledger)
	for kind, value := range st.sequences {
		next.sequences[kind] = value
	}
	return next
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	err := fn(context.WithValue(ctx, memoryTxKey{}, true))
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// enter locks the store unless the context already runs inside Atomic.
func (s *MemoryStore) enter(ctx context.Context) func() {
	if ctx.Value(memoryTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Accounts() usecase.AccountRepository   { return &memoryAccountRepository{s} }
func (s *MemoryStore) Spaces() usecase.SpaceRepository       { return &memorySpaceRepository{s} }
func (s *MemoryStore) Moments() usecase.MomentRepository     { return &memoryMomentRepository{s} }
func (s *MemoryStore) Approvals() usecase.ApprovalRepository { return &memoryApprovalRepository{s} }
func (s *MemoryStore) Settings() usecase.SettingRepository   { return &memorySettingRepository{s} }
func (s *MemoryStore) Ledger() usecase.LedgerRepository      { return &memoryLedgerRepository{s} }
func (s *MemoryStore) IDs() usecase.IDRepository             { return &memoryIDRepository{s} }

type memoryAccountRepository struct {
	store *MemoryStore
}

func (r *memoryAccountRepository) Create(ctx context.Context, account domain.Account) error {
	defer r.store.enter(ctx)()
	st := r.store.state
	st.accounts[account.ID] = cloneAccount(account)
	if account.Owner != "" {
		st.ownerIndex[account.Owner] = account.ID
	}
	return nil
}

func (r *memoryAccountRepository) Update(ctx context.Context, account domain.Account) error {
	defer r.store.enter(ctx)()
	st := r.store.state
	prev, ok := st.accounts[account.ID]
	if !ok {
		return domain.NotFoundError{Resource: "account"}
	}
	if prev.Owner != "" && prev.Owner != account.Owner {
		delete(st.ownerIndex, prev.Owner)
	}
	if account.Owner != "" {
		st.ownerIndex[account.Owner] = account.ID
	}
	st.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *memoryAccountRepository) Get(ctx context.Context, id uint64) (domain.Account, error) {
	defer r.store.enter(ctx)()
	account, ok := r.store.state.accounts[id]
	if !ok {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	return cloneAccount(account), nil
}

func (r *memoryAccountRepository) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	defer r.store.enter(ctx)()
	st := r.store.state
	id, ok := st.ownerIndex[owner]
	if !ok {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	return cloneAccount(st.accounts[id]), nil
}

func (r *memoryAccountRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Account, error) {
	defer r.store.enter(ctx)()
	out := make(map[uint64]domain.Account, len(ids))
	for _, id := range ids {
		if account, ok := r.store.state.accounts[id]; ok {
			out[id] = cloneAccount(account)
		}
	}
	return out, nil
}

func (r *memoryAccountRepository) GetIDsByOwners(ctx context.Context, owners []string) (map[string]uint64, error) {
	defer r.store.enter(ctx)()
	out := make(map[string]uint64, len(owners))
	for _, owner := range owners {
		if id, ok := r.store.state.ownerIndex[owner]; ok {
			out[owner] = id
		}
	}
	return out, nil
}

type memorySpaceRepository struct {
	store *MemoryStore
}

func (r *memorySpaceRepository) Create(ctx context.Context, space domain.Space) error {
	defer r.store.enter(ctx)()
	r.store.state.spaces[space.ID] = space
	return nil
}

func (r *memorySpaceRepository) Update(ctx context.Context, space domain.Space) error {
	defer r.store.enter(ctx)()
	if _, ok := r.store.state.spaces[space.ID]; !ok {
		return domain.NotFoundError{Resource: "space"}
	}
	r.store.state.spaces[space.ID] = space
	return nil
}

func (r *memorySpaceRepository) Get(ctx context.Context, id uint64) (domain.Space, error) {
	defer r.store.enter(ctx)()
	space, ok := r.store.state.spaces[id]
	if !ok {
		return domain.Space{}, domain.NotFoundError{Resource: "space"}
	}
	return space, nil
}

func (r *memorySpaceRepository) GetByName(ctx context.Context, parentID uint64, name string) (domain.Space, error) {
	defer r.store.enter(ctx)()
	for _, space := range r.store.state.spaces {
		if space.ParentID == parentID && space.Name == name {
			return space, nil
		}
	}
	return domain.Space{}, domain.NotFoundError{Resource: "space"}
}

func (r *memorySpaceRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Space, error) {
	defer r.store.enter(ctx)()
	out := make(map[uint64]domain.Space, len(ids))
	for _, id := range ids {
		if space, ok := r.store.state.spaces[id]; ok {
			out[id] = space
		}
	}
	return out, nil
}

func (r *memorySpaceRepository) CountChildren(ctx context.Context, parentID uint64, creatorID uint64) (int64, error) {
	defer r.store.enter(ctx)()
	var count int64
	for _, space := range r.store.state.spaces {
		if space.ParentID == parentID && space.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func (r *memorySpaceRepository) ListChildren(ctx context.Context, parentID uint64) ([]uint64, error) {
	defer r.store.enter(ctx)()
	var ids []uint64
	if parentID == 0 {
		return ids, nil
	}
	for _, space := range r.store.state.spaces {
		if space.ParentID == parentID {
			ids = append(ids, space.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memoryMomentRepository struct {
	store *MemoryStore
}

func (r *memoryMomentRepository) CreatePost(ctx context.Context, post domain.Post) error {
	defer r.store.enter(ctx)()
	r.store.state.posts[post.ID] = post
	return nil
}

func (r *memoryMomentRepository) UpdatePost(ctx context.Context, post domain.Post) error {
	defer r.store.enter(ctx)()
	if _, ok := r.store.state.posts[post.ID]; !ok {
		return domain.NotFoundError{Resource: "post"}
	}
	r.store.state.posts[post.ID] = post
	return nil
}

func (r *memoryMomentRepository) GetPost(ctx context.Context, id uint64) (domain.Post, error) {
	defer r.store.enter(ctx)()
	post, ok := r.store.state.posts[id]
	if !ok {
		return domain.Post{}, domain.NotFoundError{Resource: "post"}
	}
	return post, nil
}

func (r *memoryMomentRepository) GetPosts(ctx context.Context, ids []uint64) (map[uint64]domain.Post, error) {
	defer r.store.enter(ctx)()
	out := make(map[uint64]domain.Post, len(ids))
	for _, id := range ids {
		if post, ok := r.store.state.posts[id]; ok {
			out[id] = post
		}
	}
	return out, nil
}

func (r *memoryMomentRepository) ListRecentPosts(ctx context.Context, until int64, limit int) ([]domain.Post, error) {
	defer r.store.enter(ctx)()
	out := make([]domain.Post, 0, limit)
	for _, post := range r.store.state.posts {
		if !post.Deleted && post.Timestamp <= until {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryMomentRepository) CreateComment(ctx context.Context, comment domain.Comment) error {
	defer r.store.enter(ctx)()
	r.store.state.comments[comment.ID] = comment
	return nil
}

func (r *memoryMomentRepository) UpdateComment(ctx context.Context, comment domain.Comment) error {
	defer r.store.enter(ctx)()
	if _, ok := r.store.state.comments[comment.ID]; !ok {
		return domain.NotFoundError{Resource: "comment"}
	}
	r.store.state.comments[comment.ID] = comment
	return nil
}

func (r *memoryMomentRepository) GetComment(ctx context.Context, id uint64) (domain.Comment, error) {
	defer r.store.enter(ctx)()
	comment, ok := r.store.state.comments[id]
	if !ok {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment"}
	}
	return comment, nil
}

func (r *memoryMomentRepository) GetComments(ctx context.Context, ids []uint64) (map[uint64]domain.Comment, error) {
	defer r.store.enter(ctx)()
	out := make(map[uint64]domain.Comment, len(ids))
	for _, id := range ids {
		if comment, ok := r.store.state.comments[id]; ok {
			out[id] = comment
		}
	}
	return out, nil
}

func (r *memoryMomentRepository) SetLike(ctx context.Context, postID uint64, likerID uint64) error {
	defer r.store.enter(ctx)()
	st := r.store.state
	for _, liker := range st.likes[postID] {
		if liker == likerID {
			return nil
		}
	}
	st.likes[postID] = append(st.likes[postID], likerID)
	return nil
}

func (r *memoryMomentRepository) UnsetLike(ctx context.Context, postID uint64, likerID uint64) error {
	defer r.store.enter(ctx)()
	st := r.store.state
	likers := st.likes[postID]
	for i, liker := range likers {
		if liker == likerID {
			st.likes[postID] = append(likers[:i:i], likers[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryMomentRepository) GetLikers(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error) {
	defer r.store.enter(ctx)()
	out := make(map[uint64][]uint64, len(postIDs))
	for _, postID := range postIDs {
		if likers, ok := r.store.state.likes[postID]; ok && len(likers) > 0 {
			out[postID] = cloneIDs(likers)
		}
	}
	return out, nil
}

type memoryApprovalRepository struct {
	store *MemoryStore
}

func (r *memoryApprovalRepository) Set(ctx context.Context, spaceID uint64, spenderID uint64) error {
	defer r.store.enter(ctx)()
	r.store.state.approvals[spaceID] = spenderID
	return nil
}

func (r *memoryApprovalRepository) Get(ctx context.Context, spaceID uint64) (uint64, error) {
	defer r.store.enter(ctx)()
	return r.store.state.approvals[spaceID], nil
}

func (r *memoryApprovalRepository) Clear(ctx context.Context, spaceID uint64) error {
	defer r.store.enter(ctx)()
	delete(r.store.state.approvals, spaceID)
	return nil
}

type memorySettingRepository struct {
	store *MemoryStore
}

func (r *memorySettingRepository) GetUint(ctx context.Context, key string) (uint64, error) {
	defer r.store.enter(ctx)()
	return r.store.state.uintVals[key], nil
}

func (r *memorySettingRepository) SetUint(ctx context.Context, key string, value uint64) error {
	defer r.store.enter(ctx)()
	r.store.state.uintVals[key] = value
	return nil
}

func (r *memorySettingRepository) GetString(ctx context.Context, key string) (string, error) {
	defer r.store.enter(ctx)()
	return r.store.state.stringVals[key], nil
}

func (r *memorySettingRepository) SetString(ctx context.Context, key string, value string) error {
	defer r.store.enter(ctx)()
	r.store.state.stringVals[key] = value
	return nil
}

type memoryLedgerRepository struct {
	store *MemoryStore
}

func (r *memoryLedgerRepository) Append(ctx context.Context, entry domain.LedgerEntry) error {
	defer r.store.enter(ctx)()
	st := r.store.state
	entry.ID = uint64(len(st.ledger) + 1)
	st.ledger = append(st.ledger, entry)
	return nil
}

func (r *memoryLedgerRepository) BalanceOf(ctx context.Context, address string) (uint64, error) {
	defer r.store.enter(ctx)()
	var balance uint64
	for _, entry := range r.store.state.ledger {
		if entry.Address == address {
			balance += entry.Amount
		}
	}
	return balance, nil
}

func (r *memoryLedgerRepository) ListByAddress(ctx context.Context, address string, limit int) ([]domain.LedgerEntry, error) {
	defer r.store.enter(ctx)()
	st := r.store.state
	out := make([]domain.LedgerEntry, 0, limit)
	for i := len(st.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if st.ledger[i].Address == address {
			out = append(out, st.ledger[i])
		}
	}
	return out, nil
}

type memoryIDRepository struct {
	store *MemoryStore
}

func (r *memoryIDRepository) Next(ctx context.Context, kind string) (uint64, error) {
	defer r.store.enter(ctx)()
	r.store.state.sequences[kind]++
	return r.store.state.sequences[kind], nil
}
