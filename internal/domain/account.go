package domain

// Account is a registered identity: one per owning principal, id 0 reserved
// as "no account". The five index lists mirror, in creation order, what the
// identity currently owns across the space and moment registries.
type Account struct {
	ID              uint64   `json:"id"`
	Owner           string   `json:"owner"`
	AvatarURI       string   `json:"avatarURI,omitempty"`
	PostIDs         []uint64 `json:"postIDs"`
	CommentIDs      []uint64 `json:"commentIDs"`
	LikedPostIDs    []uint64 `json:"likedPostIDs"`
	CreatedSpaceIDs []uint64 `json:"createdSpaceIDs"`
	RentedSpaceIDs  []uint64 `json:"rentedSpaceIDs"`
}

// Active reports whether the account is live. A cancelled account keeps its
// row (ids are never reused) but loses its owner binding.
func (a Account) Active() bool {
	return a.ID != 0 && a.Owner != ""
}

// HasResources reports whether any owned-index list is non-empty. Cancellation
// requires all of them to be empty.
func (a Account) HasResources() bool {
	return len(a.PostIDs) > 0 ||
		len(a.CommentIDs) > 0 ||
		len(a.LikedPostIDs) > 0 ||
		len(a.CreatedSpaceIDs) > 0 ||
		len(a.RentedSpaceIDs) > 0
}

// HasID reports whether id is present in ids.
func HasID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without the first occurrence of id, preserving the
// order of the remaining entries.
func RemoveID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
