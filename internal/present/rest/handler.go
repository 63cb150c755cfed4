package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/present/rest/presenter"
	"github.com/spacefns/spaceport/internal/service"
	"github.com/spacefns/spaceport/internal/usecase"
	"github.com/spacefns/spaceport/internal/utils"
)

type Handler struct {
	config   domain.Config
	account  *usecase.AccountUsecase
	space    *usecase.SpaceUsecase
	moment   *usecase.MomentUsecase
	treasury *usecase.TreasuryUsecase
	signal   *service.SignalService
}

func NewHandler(
	config domain.Config,
	account *usecase.AccountUsecase,
	space *usecase.SpaceUsecase,
	moment *usecase.MomentUsecase,
	treasury *usecase.TreasuryUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:   config,
		account:  account,
		space:    space,
		moment:   moment,
		treasury: treasury,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/spaceport", h.handleWellKnown)

	e.POST("/api/v1/account", h.handleCreateAccount)
	e.GET("/api/v1/account", h.handleAccountOf)
	e.DELETE("/api/v1/account", h.handleCancelAccount)
	e.PUT("/api/v1/account/avatar", h.handleUpdateAvatar)
	e.GET("/api/v1/accounts", h.handleGetAccounts)
	e.GET("/api/v1/account-ids", h.handleGetAccountIDs)

	e.POST("/api/v1/space", h.handleCreateSubSpace)
	e.GET("/api/v1/space/:id", h.handleGetSpace)
	e.GET("/api/v1/space/:id/names", h.handleSpaceNames)
	e.PUT("/api/v1/space/:id/name", h.handleUpdateSpaceName)
	e.PUT("/api/v1/space/:id/expiry", h.handleUpdateSpaceExpiry)
	e.POST("/api/v1/space/:id/approve", h.handleApproveRent)
	e.POST("/api/v1/space/:id/rent", h.handleRentSpace)
	e.POST("/api/v1/space/:id/return", h.handleReturnSpace)
	e.GET("/api/v1/spaces", h.handleGetSpaces)

	e.POST("/api/v1/moment", h.handleCreateMoment)
	e.DELETE("/api/v1/moment/:id", h.handleRemoveMoment)
	e.POST("/api/v1/moment/:id/like", h.handleLikeMoment)
	e.DELETE("/api/v1/moment/:id/like", h.handleUnlikeMoment)
	e.GET("/api/v1/moments", h.handleGetMoments)
	e.GET("/api/v1/moments/recent", h.handleRecentMoments)

	e.POST("/api/v1/comment", h.handleCreateComment)
	e.DELETE("/api/v1/comment/:id", h.handleRemoveComment)
	e.GET("/api/v1/comments", h.handleGetComments)

	e.GET("/api/v1/likes", h.handleGetLikes)

	e.GET("/api/v1/balance/:address", h.handleBalance)
	e.GET("/api/v1/ledger/:address", h.handleLedger)

	e.GET("/api/v1/settings", h.handleSettings)
	e.PUT("/api/v1/settings/mint-fee", h.handleSetMintFee)
	e.PUT("/api/v1/settings/beneficiary", h.handleSetBeneficiary)
	e.PUT("/api/v1/settings/sub-space-limit", h.handleSetSubSpaceLimit)
	e.PUT("/api/v1/gates/space", h.handleSetSpaceCaller)
	e.PUT("/api/v1/gates/moment", h.handleSetMomentCaller)

	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	wellknown := spaceport.WellKnownSpaceport{
		Version: "1.0",
		FQDN:    h.config.FQDN,
		Address: h.config.ServiceAddr,
		Endpoints: map[string]spaceport.Endpoint{
			"net.spacefns.account": {
				Template: "/api/v1/account",
				Method:   "POST",
			},
			"net.spacefns.accounts": {
				Template: "/api/v1/accounts",
				Method:   "GET",
				Query:    &[]string{"ids"},
			},
			"net.spacefns.account-ids": {
				Template: "/api/v1/account-ids",
				Method:   "GET",
				Query:    &[]string{"addresses"},
			},
			"net.spacefns.space": {
				Template: "/api/v1/space/{id}",
				Method:   "GET",
			},
			"net.spacefns.space.names": {
				Template: "/api/v1/space/{id}/names",
				Method:   "GET",
			},
			"net.spacefns.spaces": {
				Template: "/api/v1/spaces",
				Method:   "GET",
				Query:    &[]string{"ids"},
			},
			"net.spacefns.moments": {
				Template: "/api/v1/moments",
				Method:   "GET",
				Query:    &[]string{"ids"},
			},
			"net.spacefns.moments.recent": {
				Template: "/api/v1/moments/recent",
				Method:   "GET",
				Query:    &[]string{"until", "limit"},
			},
			"net.spacefns.comments": {
				Template: "/api/v1/comments",
				Method:   "GET",
				Query:    &[]string{"ids"},
			},
			"net.spacefns.likes": {
				Template: "/api/v1/likes",
				Method:   "GET",
				Query:    &[]string{"ids"},
			},
			"net.spacefns.settings": {
				Template: "/api/v1/settings",
				Method:   "GET",
			},
			"net.spacefns.realtime": {
				Template: "/realtime",
				Method:   "GET",
			},
		},
	}
	return presenter.OK(c, wellknown)
}

func accountView(a domain.Account) spaceport.AccountView {
	return spaceport.AccountView{
		ID:              a.ID,
		Address:         a.Owner,
		AvatarURI:       a.AvatarURI,
		PostIDs:         a.PostIDs,
		CommentIDs:      a.CommentIDs,
		LikedPostIDs:    a.LikedPostIDs,
		CreatedSpaceIDs: a.CreatedSpaceIDs,
		RentedSpaceIDs:  a.RentedSpaceIDs,
	}
}

func spaceView(s domain.Space) spaceport.SpaceView {
	return spaceport.SpaceView{
		ID:            s.ID,
		CreatorID:     s.CreatorID,
		UserID:        s.UserID,
		ParentID:      s.ParentID,
		ExpireSeconds: s.ExpireSeconds,
		Name:          s.Name,
	}
}

func postView(p domain.Post) spaceport.PostView {
	return spaceport.PostView{
		ID:          p.ID,
		CreatorID:   p.CreatorID,
		Timestamp:   p.Timestamp,
		Deleted:     p.Deleted,
		MetadataURI: p.MetadataURI,
	}
}

func commentView(m domain.Comment) spaceport.CommentView {
	return spaceport.CommentView{
		ID:        m.ID,
		CreatorID: m.CreatorID,
		Timestamp: m.Timestamp,
		PostID:    m.PostID,
		Deleted:   m.Deleted,
		Text:      m.Text,
	}
}

func likeView(s domain.LikeSummary) spaceport.LikeView {
	return spaceport.LikeView{
		PostID: s.PostID,
		Liker:  s.Liker,
		Count:  s.Count,
		Likers: s.Likers,
	}
}

func ledgerEntryView(e domain.LedgerEntry) spaceport.LedgerEntryView {
	return spaceport.LedgerEntryView{
		ID:      e.ID,
		Address: e.Address,
		From:    e.From,
		Amount:  e.Amount,
		Memo:    e.Memo,
		At:      e.At,
	}
}

func parseIDList(raw string) ([]uint64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) handleCreateAccount(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.CreateAccountRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	id, err := h.account.CreateAccount(ctx, req.Name, req.AvatarURI)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.CreatedResponse{ID: id})
}

func (h *Handler) handleAccountOf(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := h.account.AccountOf(ctx)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, accountView(account))
}

func (h *Handler) handleCancelAccount(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.account.CancelAccount(ctx)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleUpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.UpdateAvatarRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.UpdateAvatar(ctx, req.AvatarURI)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleGetAccounts(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid ids parameter")
	}

	accounts, err := h.account.GetAccounts(ctx, ids)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView(a))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleGetAccountIDs(c echo.Context) error {
	ctx := c.Request().Context()

	raw := c.QueryParam("addresses")
	if raw == "" {
		return presenter.BadRequestMessage(c, "addresses parameter is required")
	}
	addresses := strings.Split(raw, ",")

	ids, err := h.account.GetAccountIDs(ctx, addresses)
	if err != nil {
		return presenter.Domain(c, err)
	}
	// Keyed by address, in request order, so callers never have to
	// line the result up with the query themselves.
	return presenter.OK(c, utils.Zip(addresses, ids))
}

func (h *Handler) handleCreateSubSpace(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.CreateSubSpaceRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	id, err := h.account.CreateSubSpace(ctx, req.ParentID, req.Name, req.LeaseSeconds)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.CreatedResponse{ID: id})
}

func (h *Handler) handleGetSpace(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	space, err := h.space.Get(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	if space.ID == 0 {
		return presenter.NotFound(c, "space not found")
	}

	view := spaceView(space)
	if !space.IsPrimary() {
		_, fullName, err := h.space.Names(ctx, id)
		if err != nil {
			return presenter.Domain(c, err)
		}
		view.FullName = fullName
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleSpaceNames(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	primary, fullChild, err := h.space.Names(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.SpaceNames{
		PrimaryName:   primary,
		FullChildName: fullChild,
	})
}

func (h *Handler) handleUpdateSpaceName(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	var req spaceport.UpdateSpaceNameRequest
	err = c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.UpdateSpaceName(ctx, id, req.Name)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleUpdateSpaceExpiry(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	var req spaceport.UpdateSpaceExpiryRequest
	err = c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.UpdateSpaceExpiry(ctx, id, req.LeaseSeconds)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleApproveRent(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	var req spaceport.ApproveRentRequest
	err = c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.ApproveRent(ctx, id, req.RenterID)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleRentSpace(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	var req spaceport.RentSpaceRequest
	err = c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.RentSpace(ctx, id, req.RenterID)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleReturnSpace(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid space id")
	}

	err = h.account.ReturnSpace(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleGetSpaces(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid ids parameter")
	}

	spaces, err := h.space.GetByIDs(ctx, ids)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.SpaceView, 0, len(spaces))
	for _, s := range spaces {
		views = append(views, spaceView(s))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleCreateMoment(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.CreateMomentRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	id, err := h.account.CreateMoment(ctx, req.MetadataURI, req.Value)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.CreatedResponse{ID: id})
}

func (h *Handler) handleRemoveMoment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid moment id")
	}

	err = h.account.RemoveMoment(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleLikeMoment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid moment id")
	}

	err = h.account.LikeMoment(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleUnlikeMoment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid moment id")
	}

	err = h.account.CancelLikeMoment(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleGetMoments(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid ids parameter")
	}

	posts, err := h.moment.GetPosts(ctx, ids)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView(p))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleRecentMoments(c echo.Context) error {
	ctx := c.Request().Context()

	untilStr := c.QueryParam("until")
	var until time.Time
	if untilStr != "" {
		untilInt, err := strconv.ParseInt(untilStr, 10, 64)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid until parameter")
		}
		until = time.Unix(untilInt, 0)
	}

	limit := 0
	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}

	posts, err := h.moment.Recent(ctx, until, limit)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView(p))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleCreateComment(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.CreateCommentRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	id, err := h.account.CreateComment(ctx, req.PostID, req.Text)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.CreatedResponse{ID: id})
}

func (h *Handler) handleRemoveComment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid comment id")
	}

	err = h.account.RemoveComment(ctx, id)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleGetComments(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid ids parameter")
	}

	comments, err := h.moment.GetComments(ctx, ids)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.CommentView, 0, len(comments))
	for _, m := range comments {
		views = append(views, commentView(m))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleGetLikes(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid ids parameter")
	}

	likes, err := h.moment.GetLikes(ctx, ids)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.LikeView, 0, len(likes))
	for _, l := range likes {
		views = append(views, likeView(l))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleBalance(c echo.Context) error {
	ctx := c.Request().Context()

	address := c.Param("address")
	if !spaceport.IsAddress(address) {
		return presenter.BadRequestMessage(c, "invalid address")
	}

	balance, err := h.treasury.BalanceOf(ctx, address)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.BalanceView{Address: address, Balance: balance})
}

func (h *Handler) handleLedger(c echo.Context) error {
	ctx := c.Request().Context()

	address := c.Param("address")
	if !spaceport.IsAddress(address) {
		return presenter.BadRequestMessage(c, "invalid address")
	}

	limit := 0
	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}

	entries, err := h.treasury.History(ctx, address, limit)
	if err != nil {
		return presenter.Domain(c, err)
	}

	views := make([]spaceport.LedgerEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, ledgerEntryView(entry))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleSettings(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.account.RegistrySettings(ctx)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.RegistrySettingsView{
		MintFee:       settings.MintFee,
		Beneficiary:   settings.Beneficiary,
		SubSpaceLimit: settings.SubSpaceLimit,
	})
}

func (h *Handler) handleSetMintFee(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.SetMintFeeRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.SetMintFee(ctx, req.MintFee)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleSetBeneficiary(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.SetBeneficiaryRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !spaceport.IsAddress(req.Beneficiary) {
		return presenter.BadRequestMessage(c, "invalid beneficiary address")
	}

	err = h.account.SetBeneficiary(ctx, req.Beneficiary)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleSetSubSpaceLimit(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.SetSubSpaceLimitRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.account.SetSubSpaceLimit(ctx, req.Limit)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleSetSpaceCaller(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.SetCallerRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !spaceport.IsAddress(req.Caller) {
		return presenter.BadRequestMessage(c, "invalid caller address")
	}

	err = h.account.SetSpaceCaller(ctx, req.Caller)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

func (h *Handler) handleSetMomentCaller(c echo.Context) error {
	ctx := c.Request().Context()

	var req spaceport.SetCallerRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !spaceport.IsAddress(req.Caller) {
		return presenter.BadRequestMessage(c, "invalid caller address")
	}

	err = h.account.SetMomentCaller(ctx, req.Caller)
	if err != nil {
		return presenter.Domain(c, err)
	}
	return presenter.OK(c, spaceport.StatusResponse{Status: "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	output := make(chan spaceport.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Channels:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Channels),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
