package main

import (
	"bytes"
	"encoding/json"
	"github.com/labstack/echo/v4"
	"io"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"strconv"
)

func (svc *rewardsSvc) routes(e *echo.Echo) {
	e.GET("/me", svc.getMeHandler)
	e.GET("/balance/my", svc.getBalance)
	e.GET("/rank/my", svc.getRank)
	e.GET("/totals/my", svc.getTotals)

	e.GET("/withdrawals/my", svc.getWithdrawals)
	e.POST("/withdrawals", svc.createWithdrawal)
	e.GET("/withdrawals/pending", svc.getPending)
	e.POST("/withdrawals/:id/approve", svc.approve)
	e.POST("/withdrawals/:id/deny", svc.deny)

	e.POST("/awards", svc.createAward)
	e.GET("/criteria", svc.getCriteria)
	e.GET("/ranking/monthly", svc.getRanking)

	e.GET("/profiles", svc.getProfiles)
	e.POST("/profiles", svc.saveProfile)
}

var awarders = []schema.Role{schema.RoleAdmin, schema.RoleEscudo}
var admins = []schema.Role{schema.RoleAdmin}

// getMeHandler renders profile of current user with role flags
func (svc *rewardsSvc) getMeHandler(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	me, err := svc.getMe(userID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, me)
}

// getBalance renders current balance of user
func (svc *rewardsSvc) getBalance(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	balance, err := svc.getMyBalance(userID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, balance)
}

func (svc *rewardsSvc) getRank(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	rank, err := svc.getMyRank(userID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, rank)
}

func (svc *rewardsSvc) getTotals(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	totals, err := svc.getMyTotals(userID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, totals)
}

// getWithdrawals renders withdrawals of user, newest first
func (svc *rewardsSvc) getWithdrawals(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	ws, err := svc.getMyWithdrawals(userID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (svc *rewardsSvc) createWithdrawal(c echo.Context) error {
	userID, err := svc.checkAuth(c)
	if err != nil {
		return svc.fail(c, err)
	}
	var req WithdrawalRequest
	if err := common.ReadJSON(c, &req); err != nil {
		return svc.fail(c, errBadRequest)
	}
	w, err := svc.requestWithdrawal(userID, req)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (svc *rewardsSvc) getPending(c echo.Context) error {
	if _, err := svc.checkAuth(c, admins...); err != nil {
		return svc.fail(c, err)
	}
	ws, err := svc.getPendingWithdrawals()
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

// approve accepts optional {"coupon": "..."}, coupon is generated when missing
func (svc *rewardsSvc) approve(c echo.Context) error {
	adminID, err := svc.checkAuth(c, admins...)
	if err != nil {
		return svc.fail(c, err)
	}
	var req ApproveRequest
	if err := readOptionalJSON(c, &req); err != nil {
		return svc.fail(c, errBadRequest)
	}
	w, err := svc.approveWithdrawal(c.Param("id"), adminID, req.Coupon)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (svc *rewardsSvc) deny(c echo.Context) error {
	adminID, err := svc.checkAuth(c, admins...)
	if err != nil {
		return svc.fail(c, err)
	}
	w, err := svc.denyWithdrawal(c.Param("id"), adminID)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (svc *rewardsSvc) createAward(c echo.Context) error {
	awarderID, err := svc.checkAuth(c, awarders...)
	if err != nil {
		return svc.fail(c, err)
	}
	var req AwardRequest
	if err := common.ReadJSON(c, &req); err != nil {
		return svc.fail(c, errBadRequest)
	}
	b, err := svc.awardPoints(awarderID, req)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (svc *rewardsSvc) getCriteria(c echo.Context) error {
	return c.JSON(http.StatusOK, common.FromKeysAndValues(
		"criterios", schema.Criteria,
		"min_pontos", schema.MinAwardPoints,
		"max_pontos", schema.MaxAwardPoints,
		"koins_por_ponto", schema.KoinsPerPoint,
	))
}

// getRanking is public
func (svc *rewardsSvc) getRanking(c echo.Context) error {
	rows, err := svc.getRankingMensal()
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// getProfiles renders roster, ?q= filters it, ?awardable=true leaves out current user
func (svc *rewardsSvc) getProfiles(c echo.Context) error {
	userID, err := svc.checkAuth(c, awarders...)
	if err != nil {
		return svc.fail(c, err)
	}
	exclude := ""
	if awardable, _ := strconv.ParseBool(c.QueryParam("awardable")); awardable {
		exclude = userID
	}
	entries, err := svc.getRoster(c.QueryParam("q"), exclude)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (svc *rewardsSvc) saveProfile(c echo.Context) error {
	if _, err := svc.checkAuth(c, admins...); err != nil {
		return svc.fail(c, err)
	}
	var req ProfileRequest
	if err := common.ReadJSON(c, &req); err != nil {
		return svc.fail(c, errBadRequest)
	}
	p, err := svc.upsertProfile(req)
	if err != nil {
		return svc.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// readOptionalJSON is ReadJSON which accepts empty body
func readOptionalJSON(c echo.Context, v interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
