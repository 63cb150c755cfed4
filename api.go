package spaceport

// Wire types shared by the REST surface and the client SDK. Registry
// identifiers are uint64 with 0 meaning "absent"; addresses are bech32
// strings.

type CreateAccountRequest struct {
	Name      string `json:"name"`
	AvatarURI string `json:"avatarURI,omitempty"`
}

type UpdateAvatarRequest struct {
	AvatarURI string `json:"avatarURI"`
}

type CreateSubSpaceRequest struct {
	ParentID     uint64 `json:"parentID"`
	Name         string `json:"name"`
	LeaseSeconds uint64 `json:"leaseSeconds"`
}

type UpdateSpaceNameRequest struct {
	Name string `json:"name"`
}

type UpdateSpaceExpiryRequest struct {
	LeaseSeconds uint64 `json:"leaseSeconds"`
}

type ApproveRentRequest struct {
	RenterID uint64 `json:"renterID"`
}

type RentSpaceRequest struct {
	RenterID uint64 `json:"renterID"`
}

type CreateMomentRequest struct {
	MetadataURI string `json:"metadataURI"`
	// Value is the payment attached to the call, in fee units. It must equal
	// the node's mint fee exactly.
	Value uint64 `json:"value"`
}

type CreateCommentRequest struct {
	PostID uint64 `json:"postID"`
	Text   string `json:"text"`
}

type SetMintFeeRequest struct {
	MintFee uint64 `json:"mintFee"`
}

type SetBeneficiaryRequest struct {
	Beneficiary string `json:"beneficiary"`
}

type SetSubSpaceLimitRequest struct {
	Limit uint64 `json:"limit"`
}

type SetCallerRequest struct {
	Caller string `json:"caller"`
}

// CreatedResponse carries the identifier allocated by a successful creation.
type CreatedResponse struct {
	ID uint64 `json:"id"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type AccountView struct {
	ID              uint64   `json:"id"`
	Address         string   `json:"address,omitempty"`
	AvatarURI       string   `json:"avatarURI,omitempty"`
	PostIDs         []uint64 `json:"postIDs"`
	CommentIDs      []uint64 `json:"commentIDs"`
	LikedPostIDs    []uint64 `json:"likedPostIDs"`
	CreatedSpaceIDs []uint64 `json:"createdSpaceIDs"`
	RentedSpaceIDs  []uint64 `json:"rentedSpaceIDs"`
}

type SpaceView struct {
	ID            uint64 `json:"id"`
	CreatorID     uint64 `json:"creatorID"`
	UserID        uint64 `json:"userID"`
	ParentID      uint64 `json:"parentID"`
	ExpireSeconds uint64 `json:"expireSeconds"`
	Name          string `json:"name"`
	FullName      string `json:"fullName,omitempty"`
}

// SpaceNames is the composed name pair for one space id: the primary name and,
// for child spaces, the rendered "<child>.<parent>" form.
type SpaceNames struct {
	PrimaryName   string `json:"primaryName"`
	FullChildName string `json:"fullChildName,omitempty"`
}

type PostView struct {
	ID          uint64 `json:"id"`
	CreatorID   uint64 `json:"creatorID"`
	Timestamp   int64  `json:"timestamp"`
	Deleted     bool   `json:"deleted"`
	MetadataURI string `json:"metadataURI,omitempty"`
}

type CommentView struct {
	ID        uint64 `json:"id"`
	CreatorID uint64 `json:"creatorID"`
	Timestamp int64  `json:"timestamp"`
	PostID    uint64 `json:"postID"`
	Deleted   bool   `json:"deleted"`
	Text      string `json:"text,omitempty"`
}

// LikeView summarises the like relation for one post. Liker is the earliest
// liker id (0 when nobody likes the post) kept for callers that expect the
// single-value form; Likers is the full set.
type LikeView struct {
	PostID uint64   `json:"postID"`
	Liker  uint64   `json:"liker"`
	Count  uint64   `json:"count"`
	Likers []uint64 `json:"likers"`
}

type BalanceView struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// LedgerEntryView is one recorded credit: value moved from the paying
// principal to address.
type LedgerEntryView struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
	From    string `json:"from,omitempty"`
	Amount  uint64 `json:"amount"`
	Memo    string `json:"memo,omitempty"`
	At      int64  `json:"at"`
}

type RegistrySettingsView struct {
	MintFee       uint64 `json:"mintFee"`
	Beneficiary   string `json:"beneficiary"`
	SubSpaceLimit uint64 `json:"subSpaceLimit"`
}
