package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"io"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// pending requests reserve koins as approved ones do
var reservingStatuses = []string{string(schema.WithdrawalPending), string(schema.WithdrawalApproved)}

// checkAuth checks authorization header with Auth service and, when roles are given,
// ensures user has one of them. Returns public identifier of user.
func (svc *rewardsSvc) checkAuth(c echo.Context, availableFor ...schema.Role) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errNotAuthenticated
	}
	sub, err := svc.verifyAuth(c.Request().Context(), authHeader)
	if err != nil {
		svc.logger.Infof("Auth failed: %s", err)
		return "", errNotAuthenticated
	}
	if len(availableFor) == 0 {
		return sub, nil
	}
	return sub, svc.checkUserRole(sub, availableFor)
}

// verifyAuth sends request to Auth service to check token, returns public identifier of authenticated user
func (svc *rewardsSvc) verifyAuth(ctx context.Context, authz string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/verify", svc.authServer), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", authz)
	resp, err := svc.authHttpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentication failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var ver AuthVerification
	if err := json.Unmarshal(body, &ver); err != nil || ver.PublicId == "" {
		return "", errors.New("bad answer from auth service")
	}
	return ver.PublicId, nil
}

// checkUserRole checks if user with given public identifier has one of the roles
func (svc *rewardsSvc) checkUserRole(publicId string, availableFor []schema.Role) error {
	role, err := svc.roleOf(publicId)
	if errors.Is(err, errProfileNotFound) {
		return errForbidden
	}
	if err != nil {
		return err
	}
	for _, r := range availableFor {
		if role == r {
			return nil
		}
	}
	return errForbidden
}

// roleOf returns role from profile, roles are cached until profile changes
func (svc *rewardsSvc) roleOf(userID string) (schema.Role, error) {
	if role, ok := svc.roles.Get(userID); ok {
		return role.(schema.Role), nil
	}
	p, err := svc.profileOf(svc.db, userID)
	if err != nil {
		return "", err
	}
	svc.roles.SetDefault(userID, p.Role)
	return p.Role, nil
}

func (svc *rewardsSvc) profileOf(db *gorm.DB, userID string) (*Profile, error) {
	var p Profile
	err := db.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// lockProfile serializes balance changes of one user
func (svc *rewardsSvc) lockProfile(tx *gorm.DB, userID string) (*Profile, error) {
	return svc.profileOf(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (svc *rewardsSvc) profileMap(db *gorm.DB, userIDs []string) (map[string]*Profile, error) {
	m := make(map[string]*Profile, len(userIDs))
	if len(userIDs) == 0 {
		return m, nil
	}
	var profiles []Profile
	if err := db.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		m[profiles[i].UserID] = &profiles[i]
	}
	return m, nil
}

type userSums struct {
	UserID string
	Pontos int
	Koins  int
}

type userReserved struct {
	UserID string
	Amount int
}

// earnedBy sums points and koins of all bonifications of user
func earnedBy(db *gorm.DB, userID string) (userSums, error) {
	s := userSums{UserID: userID}
	err := db.Model(&Bonification{}).
		Select("COALESCE(SUM(pontos), 0), COALESCE(SUM(koins), 0)").
		Where("user_id = ?", userID).
		Row().Scan(&s.Pontos, &s.Koins)
	return s, err
}

// reservedBy sums koins of pending and approved withdrawals, except one
func reservedBy(db *gorm.DB, userID, exceptID string) (int, error) {
	var reserved int
	q := db.Model(&Withdrawal{}).
		Select("COALESCE(SUM(amount_koins), 0)").
		Where("user_id = ? AND status IN ?", userID, reservingStatuses)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Row().Scan(&reserved)
	return reserved, err
}

func balanceOf(db *gorm.DB, userID string) (Balance, error) {
	earned, err := earnedBy(db, userID)
	if err != nil {
		return Balance{}, err
	}
	reserved, err := reservedBy(db, userID, "")
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		UserID:       userID,
		KoinsBalance: earned.Koins - reserved,
		PontosTotal:  earned.Pontos,
	}, nil
}

// getMyBalance returns balance of user with profile
func (svc *rewardsSvc) getMyBalance(userID string) (Balance, error) {
	if _, err := svc.profileOf(svc.db, userID); err != nil {
		return Balance{}, err
	}
	return balanceOf(svc.db, userID)
}

func (svc *rewardsSvc) getMyTotals(userID string) (Totals, error) {
	if _, err := svc.profileOf(svc.db, userID); err != nil {
		return Totals{}, err
	}
	earned, err := earnedBy(svc.db, userID)
	if err != nil {
		return Totals{}, err
	}
	return Totals{UserID: userID, PontosTotal: earned.Pontos, KoinsTotal: earned.Koins}, nil
}

func (svc *rewardsSvc) getMyRank(userID string) (Rank, error) {
	totals, err := svc.getMyTotals(userID)
	if err != nil {
		return Rank{}, err
	}
	patente, threshold := schema.PatenteFor(totals.PontosTotal)
	return Rank{UserID: userID, PatenteLabel: patente.Label, PatenteThreshold: threshold}, nil
}

func (svc *rewardsSvc) getMyWithdrawals(userID string) ([]Withdrawal, error) {
	ws := make([]Withdrawal, 0)
	err := svc.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&ws).Error
	return ws, err
}

// monthBounds returns first instants of current and next month in service location
func (svc *rewardsSvc) monthBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(svc.location)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, svc.location)
	return start, start.AddDate(0, 1, 0)
}

// getRankingMensal sums bonifications of current month per user, best first
func (svc *rewardsSvc) getRankingMensal() ([]RankingRow, error) {
	start, end := svc.monthBounds(svc.now())

	var sums []userSums
	err := svc.db.Model(&Bonification{}).
		Select("user_id, SUM(pontos) AS pontos, SUM(koins) AS koins").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Group("user_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sums))
	for _, s := range sums {
		ids = append(ids, s.UserID)
	}
	profiles, err := svc.profileMap(svc.db, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]RankingRow, 0, len(sums))
	for _, s := range sums {
		row := RankingRow{UserID: s.UserID, PontosMes: s.Pontos, KoinsMes: s.Koins}
		if p, ok := profiles[s.UserID]; ok {
			row.Profile = p.ref()
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PontosMes != rows[j].PontosMes {
			return rows[i].PontosMes > rows[j].PontosMes
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}

// awardPoints creates bonification for another user, koins are 5 per point
func (svc *rewardsSvc) awardPoints(awarderID string, req AwardRequest) (*Bonification, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Criterio = strings.TrimSpace(req.Criterio)
	switch {
	case req.UserID == "":
		return nil, errMissingTarget
	case req.UserID == awarderID:
		return nil, errSelfAward
	case req.Criterio == "":
		return nil, errMissingCriterio
	case req.Pontos < schema.MinAwardPoints || req.Pontos > schema.MaxAwardPoints:
		return nil, errInvalidPoints
	}

	b := Bonification{
		UserID:    req.UserID,
		AwardedBy: awarderID,
		Criterio:  req.Criterio,
		Pontos:    req.Pontos,
		Koins:     req.Pontos * schema.KoinsPerPoint,
		Motivo:    trimmedOrNil(req.Motivo),
	}
	var target *Profile
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		p, err := svc.profileOf(tx, req.UserID)
		if err != nil {
			return err
		}
		target = p
		return tx.Create(&b).Error
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Infof("Awarded %d points to %s by %s for %s", b.Pontos, b.UserID, awarderID, b.Criterio)
	svc.metrics.pointsAwarded.Add(float64(b.Pontos))
	svc.metrics.koinsAwarded.Add(float64(b.Koins))
	svc.notifyBonification(b, target.FirstName)
	return &b, nil
}

// requestWithdrawal creates pending withdrawal, amount must not exceed available balance
func (svc *rewardsSvc) requestWithdrawal(userID string, req WithdrawalRequest) (*Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, errInvalidAmount
	}

	w := Withdrawal{
		UserID:      userID,
		AmountKoins: req.Amount,
		Status:      schema.WithdrawalPending,
		Note:        trimmedOrNil(req.Note),
	}
	var owner *Profile
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		p, err := svc.lockProfile(tx, userID)
		if err != nil {
			return err
		}
		owner = p
		balance, err := balanceOf(tx, userID)
		if err != nil {
			return err
		}
		if req.Amount > balance.KoinsBalance {
			return errInsufficientBalance
		}
		return tx.Create(&w).Error
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Infof("Withdrawal %s of %d koins requested by %s", w.ID, w.AmountKoins, userID)
	svc.metrics.withdrawals.WithLabelValues(string(w.Status)).Inc()
	svc.notifyWithdrawal(schema.EventWithdrawalRequested, w, owner.FirstName)
	return &w, nil
}

// getPendingWithdrawals returns pending withdrawals, oldest first, with profiles of requesters
func (svc *rewardsSvc) getPendingWithdrawals() ([]Withdrawal, error) {
	ws := make([]Withdrawal, 0)
	err := svc.db.Where("status = ?", schema.WithdrawalPending).Order("created_at ASC").Find(&ws).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ws))
	for _, w := range ws {
		ids = append(ids, w.UserID)
	}
	profiles, err := svc.profileMap(svc.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range ws {
		if p, ok := profiles[ws[i].UserID]; ok {
			ws[i].Profile = p.ref()
		}
	}
	return ws, nil
}

// approveWithdrawal assigns coupon to pending withdrawal, generated one when coupon is empty
func (svc *rewardsSvc) approveWithdrawal(id, adminID, coupon string) (*Withdrawal, error) {
	coupon = strings.TrimSpace(coupon)
	if coupon == "" {
		coupon = common.GenerateCouponCode()
	}

	var w *Withdrawal
	var firstName string
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = svc.lockPendingWithdrawal(tx, id)
		if err != nil {
			return err
		}
		owner, err := svc.lockProfile(tx, w.UserID)
		if err != nil {
			return err
		}
		firstName = owner.FirstName

		earned, err := earnedBy(tx, w.UserID)
		if err != nil {
			return err
		}
		reserved, err := reservedBy(tx, w.UserID, w.ID)
		if err != nil {
			return err
		}
		if w.AmountKoins > earned.Koins-reserved {
			return errInsufficientBalance
		}

		var taken int64
		if err := tx.Model(&Withdrawal{}).Where("coupon = ?", coupon).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errCouponTaken
		}

		return svc.decide(tx, w, adminID, schema.WithdrawalApproved, &coupon)
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Infof("Withdrawal %s approved by %s", w.ID, adminID)
	svc.metrics.withdrawals.WithLabelValues(string(w.Status)).Inc()
	svc.notifyWithdrawal(schema.EventWithdrawalApproved, *w, firstName)
	return w, nil
}

// denyWithdrawal releases koins reserved by pending withdrawal
func (svc *rewardsSvc) denyWithdrawal(id, adminID string) (*Withdrawal, error) {
	var w *Withdrawal
	var firstName string
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = svc.lockPendingWithdrawal(tx, id)
		if err != nil {
			return err
		}
		if p, err := svc.profileOf(tx, w.UserID); err == nil {
			firstName = p.FirstName
		}
		return svc.decide(tx, w, adminID, schema.WithdrawalDenied, nil)
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Infof("Withdrawal %s denied by %s", w.ID, adminID)
	svc.metrics.withdrawals.WithLabelValues(string(w.Status)).Inc()
	svc.notifyWithdrawal(schema.EventWithdrawalDenied, *w, firstName)
	return w, nil
}

func (svc *rewardsSvc) lockPendingWithdrawal(tx *gorm.DB, id string) (*Withdrawal, error) {
	var w Withdrawal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.Status != schema.WithdrawalPending {
		return nil, errWithdrawalDecided
	}
	return &w, nil
}

// decide moves withdrawal out of pending, only one decision can succeed
func (svc *rewardsSvc) decide(tx *gorm.DB, w *Withdrawal, adminID string, status schema.WithdrawalStatus, coupon *string) error {
	decidedAt := svc.now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"decided_by": adminID,
		"decided_at": decidedAt,
	}
	if coupon != nil {
		updates["coupon"] = *coupon
	}
	result := tx.Model(&Withdrawal{}).
		Where("id = ? AND status = ?", w.ID, schema.WithdrawalPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return errWithdrawalDecided
	}

	w.Status = status
	w.DecidedBy = &adminID
	w.DecidedAt = &decidedAt
	if coupon != nil {
		w.Coupon = coupon
	}
	return nil
}

// getMe returns profile and role flags of user, profile is nil when not provisioned yet
func (svc *rewardsSvc) getMe(userID string) (Me, error) {
	me := Me{UserID: userID}
	p, err := svc.profileOf(svc.db, userID)
	if errors.Is(err, errProfileNotFound) {
		return me, nil
	}
	if err != nil {
		return me, err
	}
	me.Profile = p
	me.IsAdmin = p.Role == schema.RoleAdmin
	me.IsEscudo = p.Role == schema.RoleEscudo
	return me, nil
}

// getRoster returns profiles ordered by name with totals and balances.
// Query matches case-insensitively over name, setor and role.
func (svc *rewardsSvc) getRoster(query, excludeUserID string) ([]RosterEntry, error) {
	var profiles []Profile
	if err := svc.db.Order("first_name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	var earned []userSums
	err := svc.db.Model(&Bonification{}).
		Select("user_id, SUM(pontos) AS pontos, SUM(koins) AS koins").
		Group("user_id").
		Scan(&earned).Error
	if err != nil {
		return nil, err
	}
	earnedMap := make(map[string]userSums, len(earned))
	for _, s := range earned {
		earnedMap[s.UserID] = s
	}

	var reserved []userReserved
	err = svc.db.Model(&Withdrawal{}).
		Select("user_id, SUM(amount_koins) AS amount").
		Where("status IN ?", reservingStatuses).
		Group("user_id").
		Scan(&reserved).Error
	if err != nil {
		return nil, err
	}
	reservedMap := make(map[string]int, len(reserved))
	for _, r := range reserved {
		reservedMap[r.UserID] = r.Amount
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	entries := make([]RosterEntry, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == excludeUserID {
			continue
		}
		haystack := strings.ToLower(fmt.Sprintf("%s %s %s", p.FirstName, p.Setor, p.Role))
		if needle != "" && !strings.Contains(haystack, needle) {
			continue
		}
		s := earnedMap[p.UserID]
		patente, _ := schema.PatenteFor(s.Pontos)
		entries = append(entries, RosterEntry{
			Profile:      p,
			PontosTotal:  s.Pontos,
			KoinsTotal:   s.Koins,
			KoinsBalance: s.Koins - reservedMap[p.UserID],
			PatenteLabel: patente.Label,
		})
	}
	return entries, nil
}

// upsertProfile creates or updates profile by user_id
func (svc *rewardsSvc) upsertProfile(req ProfileRequest) (*Profile, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Setor = strings.TrimSpace(req.Setor)
	if req.UserID == "" || req.FirstName == "" {
		return nil, errInvalidProfile
	}
	if req.Role == "" {
		req.Role = schema.RoleColaborador
	}
	if !req.Role.Valid() {
		return nil, errInvalidRole
	}

	p := Profile{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		Setor:     req.Setor,
		Role:      req.Role,
	}
	err := svc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "setor", "role", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, err
	}
	svc.roles.Delete(req.UserID)
	svc.logger.Infof("Upserted profile %s with role %s", req.UserID, req.Role)
	return svc.profileOf(svc.db, req.UserID)
}

// provisionProfile creates profile for new Auth user, existing profile is kept
func (svc *rewardsSvc) provisionProfile(u schema.UserEvent) error {
	if u.PublicId == "" {
		return errors.New("user event without uid")
	}
	role, err := svc.provisionedRole(u)
	if err != nil {
		return err
	}
	p := Profile{
		UserID:    u.PublicId,
		FirstName: firstNameFromEmail(u.Email),
		Role:      role,
	}
	result := svc.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
	if result.Error != nil {
		return result.Error
	}
	svc.roles.Delete(u.PublicId)
	if result.RowsAffected == 1 {
		svc.logger.Infof("Created profile for user %s as %s", u.PublicId, role)
	}
	return nil
}

// provisionedRole grants admin to listed e-mails only while there is no admin yet,
// later admins are promoted through upsertProfile
func (svc *rewardsSvc) provisionedRole(u schema.UserEvent) (schema.Role, error) {
	if !svc.adminEmails[strings.ToLower(u.Email)] {
		return schema.RoleColaborador, nil
	}
	var admins int64
	if err := svc.db.Model(&Profile{}).Where("role = ?", schema.RoleAdmin).Count(&admins).Error; err != nil {
		return "", err
	}
	if admins > 0 {
		svc.logger.Warnf("User %s is listed as admin but admin exists, provisioned as %s", u.PublicId, schema.RoleColaborador)
		return schema.RoleColaborador, nil
	}
	return schema.RoleAdmin, nil
}

// firstNameFromEmail turns "ana.souza@x.com" into "Ana"
func firstNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(name) == 0 {
		return local
	}
	first := strings.ToLower(name[0])
	r, size := utf8.DecodeRuneInString(first)
	return string(unicode.ToUpper(r)) + first[size:]
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
