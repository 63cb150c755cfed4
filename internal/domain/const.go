package domain

import "context"

const (
	RequesterIdCtxKey = "sp-requesterId"
)

const (
	RequesterIdHeader = "sp-requester-address"
)

// Sequence kinds understood by the id allocator. Counters of different
// kinds advance independently.
const (
	KindAccount = "account"
	KindSpace   = "space"
	KindPost    = "post"
	KindComment = "comment"
)

// Event kinds double as signal channel names.
const (
	KindMoment = "moment"
	KindLike   = "like"
)

// Registry setting keys.
const (
	SettingMintFee       = "mint_fee"
	SettingBeneficiary   = "beneficiary"
	SettingSubSpaceLimit = "sub_space_limit"
)

// WithRequester stamps the authenticated principal onto the context.
func WithRequester(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, RequesterIdCtxKey, address)
}

// GetRequester returns the authenticated principal, if any.
func GetRequester(ctx context.Context) (string, bool) {
	requester, ok := ctx.Value(RequesterIdCtxKey).(string)
	if !ok || requester == "" {
		return "", false
	}
	return requester, true
}
