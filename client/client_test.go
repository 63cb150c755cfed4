package client

import (
	"context"
	"encoding/hex"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/labstack/echo/v4"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/gate"
	"github.com/spacefns/spaceport/internal/infra/repository"
	"github.com/spacefns/spaceport/internal/present/rest"
	"github.com/spacefns/spaceport/internal/present/rest/middleware"
	"github.com/spacefns/spaceport/internal/service"
	"github.com/spacefns/spaceport/internal/usecase"
)

func generateKeyHex(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return hex.EncodeToString(crypto.FromECDSA(key))
}

func newTestClient(t *testing.T, host string, privatekey string) *Client {
	t.Helper()
	c, err := New(host, privatekey)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.scheme = "http"
	return c
}

// newTestNode boots a full in-process node and returns its host together
// with a client already holding the admin identity.
func newTestNode(t *testing.T) (string, *Client) {
	t.Helper()

	adminPriv := generateKeyHex(t)
	adminAddr, err := spaceport.PrivKeyToAddr(adminPriv, spaceport.AddressPrefix)
	if err != nil {
		t.Fatalf("derive admin address: %v", err)
	}
	servicePriv := generateKeyHex(t)
	serviceAddr, err := spaceport.PrivKeyToAddr(servicePriv, spaceport.AddressPrefix)
	if err != nil {
		t.Fatalf("derive service address: %v", err)
	}

	store := repository.NewMemoryStore()
	spaceGate := gate.New(adminAddr)
	momentGate := gate.New(adminAddr)
	spaces := usecase.NewSpaceUsecase(store, spaceGate)
	moments := usecase.NewMomentUsecase(store, momentGate)
	treasury := usecase.NewTreasuryUsecase(store, adminAddr)
	account := usecase.NewAccountUsecase(
		store, spaces, moments, treasury,
		spaceGate, momentGate, nil, serviceAddr, adminAddr,
	)

	e := echo.New()
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	host := strings.TrimPrefix(server.URL, "http://")

	dcfg := domain.Config{FQDN: host, Admin: adminAddr, ServiceAddr: serviceAddr}
	auth := service.NewAuthService(dcfg)
	authMiddleware := middleware.NewAuthMiddleware(auth, dcfg)
	e.Use(authMiddleware.IdentifyIdentity)

	h := rest.NewHandler(dcfg, account, spaces, moments, treasury, nil)
	h.RegisterRoutes(e)

	admin := newTestClient(t, host, adminPriv)
	ctx := context.Background()
	if err := admin.SetSpaceCaller(ctx, serviceAddr); err != nil {
		t.Fatalf("bootstrap space gate: %v", err)
	}
	if err := admin.SetMomentCaller(ctx, serviceAddr); err != nil {
		t.Fatalf("bootstrap moment gate: %v", err)
	}

	return host, admin
}

func TestClientAccountRoundTrip(t *testing.T) {
	host, _ := newTestNode(t)
	ctx := context.Background()

	user := newTestClient(t, host, generateKeyHex(t))

	id, err := user.Register(ctx, "voyager", "ipfs://avatar")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected account id 1, got %d", id)
	}

	account, err := user.Account(ctx)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.Address != user.Address() || account.AvatarURI != "ipfs://avatar" {
		t.Fatalf("unexpected account %+v", account)
	}

	space, err := user.Space(ctx, 1)
	if err != nil {
		t.Fatalf("space: %v", err)
	}
	if space.Name != "voyager" || space.CreatorID != id {
		t.Fatalf("unexpected primary space %+v", space)
	}

	ids, err := user.AccountIDs(ctx, []string{user.Address(), "spc1nobody"})
	if err != nil {
		t.Fatalf("account ids: %v", err)
	}
	if ids[user.Address()] != id || ids["spc1nobody"] != 0 {
		t.Fatalf("unexpected id map %v", ids)
	}

	wk, err := user.WellKnown(ctx)
	if err != nil {
		t.Fatalf("well-known: %v", err)
	}
	if wk.FQDN != host {
		t.Fatalf("unexpected fqdn %q", wk.FQDN)
	}
	again, err := user.WellKnown(ctx)
	if err != nil {
		t.Fatalf("cached well-known: %v", err)
	}
	if again.FQDN != wk.FQDN {
		t.Fatalf("cache returned a different descriptor: %+v", again)
	}
}

func TestClientSubSpaceFlow(t *testing.T) {
	host, admin := newTestNode(t)
	ctx := context.Background()

	if err := admin.SetSubSpaceLimit(ctx, 5); err != nil {
		t.Fatalf("set sub space limit: %v", err)
	}

	alice := newTestClient(t, host, generateKeyHex(t))
	bob := newTestClient(t, host, generateKeyHex(t))

	aliceID, err := alice.Register(ctx, "foo", "")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bobID, err := bob.Register(ctx, "bar", "")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	// Space ids advance independently of account ids; on a fresh node the
	// first registration takes space id 1.
	primary, err := alice.Space(ctx, 1)
	if err != nil {
		t.Fatalf("primary space: %v", err)
	}
	if primary.Name != "foo" || primary.ParentID != 0 {
		t.Fatalf("unexpected primary space %+v", primary)
	}

	subID, err := alice.CreateSubSpace(ctx, primary.ID, "sub", 86400)
	if err != nil {
		t.Fatalf("create sub space: %v", err)
	}

	if err := alice.ApproveRent(ctx, subID, bobID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := bob.RentSpace(ctx, subID, bobID); err != nil {
		t.Fatalf("rent: %v", err)
	}

	names, err := bob.SpaceNames(ctx, subID)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if names.PrimaryName != "foo" || names.FullChildName != "sub.foo" {
		t.Fatalf("unexpected names %+v", names)
	}

	if err := bob.ReturnSpace(ctx, subID); err != nil {
		t.Fatalf("return: %v", err)
	}
	space, err := bob.Space(ctx, subID)
	if err != nil {
		t.Fatalf("space: %v", err)
	}
	if space.UserID != aliceID {
		t.Fatalf("expected space back with creator, got %+v", space)
	}
}

func TestClientMomentFlow(t *testing.T) {
	host, admin := newTestNode(t)
	ctx := context.Background()

	beneficiaryPriv := generateKeyHex(t)
	beneficiary, err := spaceport.PrivKeyToAddr(beneficiaryPriv, spaceport.AddressPrefix)
	if err != nil {
		t.Fatalf("derive beneficiary address: %v", err)
	}
	if err := admin.SetMintFee(ctx, 7); err != nil {
		t.Fatalf("set mint fee: %v", err)
	}
	if err := admin.SetBeneficiary(ctx, beneficiary); err != nil {
		t.Fatalf("set beneficiary: %v", err)
	}

	user := newTestClient(t, host, generateKeyHex(t))
	if _, err := user.Register(ctx, "poster", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := user.CreateMoment(ctx, "ipfs://m1", 6); err == nil {
		t.Fatalf("expected short fee to be rejected")
	}
	postID, err := user.CreateMoment(ctx, "ipfs://m1", 7)
	if err != nil {
		t.Fatalf("create moment: %v", err)
	}

	balance, err := user.Balance(ctx, beneficiary)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Balance != 7 {
		t.Fatalf("expected beneficiary balance 7, got %d", balance.Balance)
	}

	// Only the admin client may read the trail behind the balance.
	if _, err := user.Ledger(ctx, beneficiary, 10); err == nil {
		t.Fatalf("expected non-admin ledger read to fail")
	}
	entries, err := admin.Ledger(ctx, beneficiary, 10)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 7 || entries[0].From != user.Address() {
		t.Fatalf("unexpected ledger entries %+v", entries)
	}

	if err := user.LikeMoment(ctx, postID); err != nil {
		t.Fatalf("like: %v", err)
	}
	likes, err := user.Likes(ctx, []uint64{postID})
	if err != nil {
		t.Fatalf("likes: %v", err)
	}
	if len(likes) != 1 || likes[0].Count != 1 {
		t.Fatalf("unexpected likes %+v", likes)
	}

	commentID, err := user.CreateComment(ctx, postID, "first")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	comments, err := user.Comments(ctx, []uint64{commentID})
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if comments[0].Text != "first" || comments[0].PostID != postID {
		t.Fatalf("unexpected comment %+v", comments[0])
	}

	recent, err := user.RecentMoments(ctx, time.Time{}, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != postID {
		t.Fatalf("unexpected recent feed %+v", recent)
	}

	if err := user.RemoveMoment(ctx, postID); err != nil {
		t.Fatalf("remove moment: %v", err)
	}
	posts, err := user.Moments(ctx, []uint64{postID})
	if err != nil {
		t.Fatalf("moments: %v", err)
	}
	if !posts[0].Deleted {
		t.Fatalf("expected tombstoned post, got %+v", posts[0])
	}
}

func TestClientAnonymousIsReadOnly(t *testing.T) {
	host, _ := newTestNode(t)
	ctx := context.Background()

	anon := newTestClient(t, host, "")

	if _, err := anon.Register(ctx, "ghost", ""); err == nil {
		t.Fatalf("expected anonymous registration to fail")
	}

	if _, err := anon.Settings(ctx); err != nil {
		t.Fatalf("anonymous settings read: %v", err)
	}
}

func TestClientTokenReuse(t *testing.T) {
	c := newTestClient(t, "registry.example.com", generateKeyHex(t))

	first, err := c.token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	second, err := c.token()
	if err != nil {
		t.Fatalf("token again: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("expected the cached token to be reused")
	}
}
