package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/jwt"
)

const (
	defaultTimeout = 3 * time.Second
	tokenLifetime  = 10 * time.Minute
)

// Client talks to one spaceport node. When constructed with a private key it
// signs a short-lived token per session and identifies as the derived
// principal; without a key it can only reach the public read surface.
type Client struct {
	client     *http.Client
	cache      *cache.Cache
	userAgent  string
	scheme     string
	fqdn       string
	address    string
	privatekey string
}

func New(fqdn string, privatekey string) (*Client, error) {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	fmt.Println("Initialize Client for node:", fqdn)
	c := &Client{
		client:     &httpClient,
		cache:      cache.New(10*time.Minute, 15*time.Minute),
		userAgent:  "spaceport-client",
		scheme:     "https",
		fqdn:       fqdn,
		privatekey: privatekey,
	}
	httpClient.Transport = c

	if privatekey != "" {
		address, err := spaceport.PrivKeyToAddr(privatekey, spaceport.AddressPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to derive address: %v", err)
		}
		c.address = address
	}

	return c, nil
}

// Address returns the principal the client identifies as, empty when
// anonymous.
func (c *Client) Address() string {
	return c.address
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) token() (string, error) {
	if c.privatekey == "" {
		return "", nil
	}

	if cached, found := c.cache.Get("token"); found {
		return cached.(string), nil
	}

	token, err := jwt.Create(jwt.Claims{
		Issuer:         c.address,
		Subject:        "spaceport",
		Audience:       c.fqdn,
		ExpirationTime: strconv.FormatInt(time.Now().Add(tokenLifetime).Unix(), 10),
	}, c.privatekey)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %v", err)
	}

	c.cache.Set("token", token, tokenLifetime-30*time.Second)
	return token, nil
}

func (c *Client) httpRequest(ctx context.Context, method, path string, body any, response any) error {

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	url := c.scheme + "://" + c.fqdn + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("sp-requester-address", c.address)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, failure.Error)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil

}

func idsQuery(ids []uint64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ",")
}

// WellKnown fetches and caches the node descriptor.
func (c *Client) WellKnown(ctx context.Context) (spaceport.WellKnownSpaceport, error) {
	cacheKey := "wellknown:" + c.fqdn
	if x, found := c.cache.Get(cacheKey); found {
		return x.(spaceport.WellKnownSpaceport), nil
	}

	var wk spaceport.WellKnownSpaceport
	err := c.httpRequest(ctx, http.MethodGet, "/.well-known/spaceport", nil, &wk)
	if err != nil {
		return spaceport.WellKnownSpaceport{}, fmt.Errorf("failed to get well-known spaceport: %v", err)
	}

	c.cache.Set(cacheKey, wk, cache.DefaultExpiration)
	return wk, nil
}

func (c *Client) Register(ctx context.Context, name string, avatarURI string) (uint64, error) {
	var created spaceport.CreatedResponse
	err := c.httpRequest(ctx, http.MethodPost, "/api/v1/account",
		spaceport.CreateAccountRequest{Name: name, AvatarURI: avatarURI}, &created)
	return created.ID, err
}

func (c *Client) Account(ctx context.Context) (spaceport.AccountView, error) {
	var view spaceport.AccountView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/account", nil, &view)
	return view, err
}

func (c *Client) CancelAccount(ctx context.Context) error {
	return c.httpRequest(ctx, http.MethodDelete, "/api/v1/account", nil, nil)
}

func (c *Client) UpdateAvatar(ctx context.Context, avatarURI string) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/account/avatar",
		spaceport.UpdateAvatarRequest{AvatarURI: avatarURI}, nil)
}

func (c *Client) Accounts(ctx context.Context, ids []uint64) ([]spaceport.AccountView, error) {
	var views []spaceport.AccountView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/accounts?ids="+idsQuery(ids), nil, &views)
	return views, err
}

func (c *Client) AccountIDs(ctx context.Context, addresses []string) (map[string]uint64, error) {
	var ids map[string]uint64
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/account-ids?addresses="+strings.Join(addresses, ","), nil, &ids)
	return ids, err
}

func (c *Client) CreateSubSpace(ctx context.Context, parentID uint64, name string, leaseSeconds uint64) (uint64, error) {
	var created spaceport.CreatedResponse
	err := c.httpRequest(ctx, http.MethodPost, "/api/v1/space",
		spaceport.CreateSubSpaceRequest{ParentID: parentID, Name: name, LeaseSeconds: leaseSeconds}, &created)
	return created.ID, err
}

func (c *Client) Space(ctx context.Context, id uint64) (spaceport.SpaceView, error) {
	var view spaceport.SpaceView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/space/"+strconv.FormatUint(id, 10), nil, &view)
	return view, err
}

func (c *Client) Spaces(ctx context.Context, ids []uint64) ([]spaceport.SpaceView, error) {
	var views []spaceport.SpaceView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/spaces?ids="+idsQuery(ids), nil, &views)
	return views, err
}

func (c *Client) SpaceNames(ctx context.Context, id uint64) (spaceport.SpaceNames, error) {
	var names spaceport.SpaceNames
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/space/"+strconv.FormatUint(id, 10)+"/names", nil, &names)
	return names, err
}

func (c *Client) UpdateSpaceName(ctx context.Context, id uint64, name string) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/space/"+strconv.FormatUint(id, 10)+"/name",
		spaceport.UpdateSpaceNameRequest{Name: name}, nil)
}

func (c *Client) UpdateSpaceExpiry(ctx context.Context, id uint64, leaseSeconds uint64) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/space/"+strconv.FormatUint(id, 10)+"/expiry",
		spaceport.UpdateSpaceExpiryRequest{LeaseSeconds: leaseSeconds}, nil)
}

func (c *Client) ApproveRent(ctx context.Context, spaceID uint64, renterID uint64) error {
	return c.httpRequest(ctx, http.MethodPost, "/api/v1/space/"+strconv.FormatUint(spaceID, 10)+"/approve",
		spaceport.ApproveRentRequest{RenterID: renterID}, nil)
}

func (c *Client) RentSpace(ctx context.Context, spaceID uint64, renterID uint64) error {
	return c.httpRequest(ctx, http.MethodPost, "/api/v1/space/"+strconv.FormatUint(spaceID, 10)+"/rent",
		spaceport.RentSpaceRequest{RenterID: renterID}, nil)
}

func (c *Client) ReturnSpace(ctx context.Context, spaceID uint64) error {
	return c.httpRequest(ctx, http.MethodPost, "/api/v1/space/"+strconv.FormatUint(spaceID, 10)+"/return", nil, nil)
}

func (c *Client) CreateMoment(ctx context.Context, metadataURI string, value uint64) (uint64, error) {
	var created spaceport.CreatedResponse
	err := c.httpRequest(ctx, http.MethodPost, "/api/v1/moment",
		spaceport.CreateMomentRequest{MetadataURI: metadataURI, Value: value}, &created)
	return created.ID, err
}

func (c *Client) RemoveMoment(ctx context.Context, id uint64) error {
	return c.httpRequest(ctx, http.MethodDelete, "/api/v1/moment/"+strconv.FormatUint(id, 10), nil, nil)
}

func (c *Client) LikeMoment(ctx context.Context, id uint64) error {
	return c.httpRequest(ctx, http.MethodPost, "/api/v1/moment/"+strconv.FormatUint(id, 10)+"/like", nil, nil)
}

func (c *Client) UnlikeMoment(ctx context.Context, id uint64) error {
	return c.httpRequest(ctx, http.MethodDelete, "/api/v1/moment/"+strconv.FormatUint(id, 10)+"/like", nil, nil)
}

func (c *Client) Moments(ctx context.Context, ids []uint64) ([]spaceport.PostView, error) {
	var views []spaceport.PostView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/moments?ids="+idsQuery(ids), nil, &views)
	return views, err
}

// RecentMoments pages the newest posts. A zero until means now.
func (c *Client) RecentMoments(ctx context.Context, until time.Time, limit int) ([]spaceport.PostView, error) {
	query := url.Values{}
	if !until.IsZero() {
		query.Set("until", strconv.FormatInt(until.Unix(), 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/moments/recent"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var views []spaceport.PostView
	err := c.httpRequest(ctx, http.MethodGet, path, nil, &views)
	return views, err
}

func (c *Client) CreateComment(ctx context.Context, postID uint64, text string) (uint64, error) {
	var created spaceport.CreatedResponse
	err := c.httpRequest(ctx, http.MethodPost, "/api/v1/comment",
		spaceport.CreateCommentRequest{PostID: postID, Text: text}, &created)
	return created.ID, err
}

func (c *Client) RemoveComment(ctx context.Context, id uint64) error {
	return c.httpRequest(ctx, http.MethodDelete, "/api/v1/comment/"+strconv.FormatUint(id, 10), nil, nil)
}

func (c *Client) Comments(ctx context.Context, ids []uint64) ([]spaceport.CommentView, error) {
	var views []spaceport.CommentView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/comments?ids="+idsQuery(ids), nil, &views)
	return views, err
}

func (c *Client) Likes(ctx context.Context, postIDs []uint64) ([]spaceport.LikeView, error) {
	var views []spaceport.LikeView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/likes?ids="+idsQuery(postIDs), nil, &views)
	return views, err
}

func (c *Client) Balance(ctx context.Context, address string) (spaceport.BalanceView, error) {
	var view spaceport.BalanceView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/balance/"+address, nil, &view)
	return view, err
}

// Ledger lists the newest credits recorded for address. Administrator only.
func (c *Client) Ledger(ctx context.Context, address string, limit int) ([]spaceport.LedgerEntryView, error) {
	path := "/api/v1/ledger/" + address
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var views []spaceport.LedgerEntryView
	err := c.httpRequest(ctx, http.MethodGet, path, nil, &views)
	return views, err
}

func (c *Client) Settings(ctx context.Context) (spaceport.RegistrySettingsView, error) {
	var view spaceport.RegistrySettingsView
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/settings", nil, &view)
	return view, err
}

func (c *Client) SetMintFee(ctx context.Context, fee uint64) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/settings/mint-fee",
		spaceport.SetMintFeeRequest{MintFee: fee}, nil)
}

func (c *Client) SetBeneficiary(ctx context.Context, address string) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/settings/beneficiary",
		spaceport.SetBeneficiaryRequest{Beneficiary: address}, nil)
}

func (c *Client) SetSubSpaceLimit(ctx context.Context, limit uint64) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/settings/sub-space-limit",
		spaceport.SetSubSpaceLimitRequest{Limit: limit}, nil)
}

func (c *Client) SetSpaceCaller(ctx context.Context, caller string) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/gates/space",
		spaceport.SetCallerRequest{Caller: caller}, nil)
}

func (c *Client) SetMomentCaller(ctx context.Context, caller string) error {
	return c.httpRequest(ctx, http.MethodPut, "/api/v1/gates/moment",
		spaceport.SetCallerRequest{Caller: caller}, nil)
}
