package domain

// Post is one entry in the append-only moment log. Removal only flips
// Deleted; the slot is never reclaimed, so ids keep their position forever.
type Post struct {
	ID          uint64 `json:"id"`
	CreatorID   uint64 `json:"creatorID"`
	Timestamp   int64  `json:"timestamp"`
	Deleted     bool   `json:"deleted"`
	MetadataURI string `json:"metadataURI,omitempty"`
}

// Comment anchors to a post id under the same append/tombstone discipline.
// The anchor is not existence-checked: a comment may reference a tombstoned
// or out-of-range post.
type Comment struct {
	ID        uint64 `json:"id"`
	CreatorID uint64 `json:"creatorID"`
	Timestamp int64  `json:"timestamp"`
	PostID    uint64 `json:"postID"`
	Deleted   bool   `json:"deleted"`
	Text      string `json:"text,omitempty"`
}

// LikeSummary is the per-post view of the like relation. Liker carries the
// earliest liker id (0 when none) for callers of the single-value form;
// Likers is the full set in like order.
type LikeSummary struct {
	PostID uint64   `json:"postID"`
	Liker  uint64   `json:"liker"`
	Count  uint64   `json:"count"`
	Likers []uint64 `json:"likers"`
}
