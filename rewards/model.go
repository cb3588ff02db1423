package main

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"kondecoracao/schema"
	"time"
)

type AuthVerification struct {
	PublicId string `json:"sub"`
}

// Profile is provisioned from Auth users, source of roles
type Profile struct {
	ID        uint        `gorm:"primarykey" json:"-"`
	UserID    string      `gorm:"size:36;uniqueIndex" json:"user_id"`
	FirstName string      `gorm:"size:120" json:"first_name"`
	Setor     string      `gorm:"size:120" json:"setor"`
	Role      schema.Role `gorm:"size:20;default:colaborador" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"-"`
}

// ProfileRef is the part of profile joined to lists
type ProfileRef struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	Setor     string `json:"setor"`
}

func (p *Profile) ref() *ProfileRef {
	return &ProfileRef{UserID: p.UserID, FirstName: p.FirstName, Setor: p.Setor}
}

// Bonification is an award of points, koins are derived from points
type Bonification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	AwardedBy string    `gorm:"size:36" json:"awarded_by"`
	Criterio  string    `gorm:"size:255" json:"criterio"`
	Pontos    int       `json:"pontos"`
	Koins     int       `json:"koins"`
	Motivo    *string   `json:"motivo"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Bonification) TableName() string {
	return "bonificacoes"
}

func (b *Bonification) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Bonification) event(firstName string) schema.BonificationEvent {
	return schema.BonificationEvent{
		ID:        b.ID,
		UserID:    b.UserID,
		FirstName: firstName,
		AwardedBy: b.AwardedBy,
		Criterio:  b.Criterio,
		Pontos:    b.Pontos,
		Koins:     b.Koins,
		Motivo:    b.Motivo,
		CreatedAt: b.CreatedAt,
	}
}

// Withdrawal is a request to convert koins into coupon, approved and denied are terminal
type Withdrawal struct {
	ID          string                  `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                  `gorm:"size:36;index" json:"user_id"`
	AmountKoins int                     `json:"amount_koins"`
	Status      schema.WithdrawalStatus `gorm:"size:20;index" json:"status"`
	Coupon      *string                 `gorm:"size:64;uniqueIndex" json:"coupon"`
	Note        *string                 `json:"note"`
	DecidedBy   *string                 `gorm:"size:36" json:"decided_by,omitempty"`
	CreatedAt   time.Time               `gorm:"index" json:"created_at"`
	DecidedAt   *time.Time              `json:"decided_at,omitempty"`
	Profile     *ProfileRef             `gorm:"-" json:"profile,omitempty"`
}

func (w *Withdrawal) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (w *Withdrawal) event(firstName string) schema.WithdrawalEvent {
	return schema.WithdrawalEvent{
		ID:          w.ID,
		UserID:      w.UserID,
		FirstName:   firstName,
		AmountKoins: w.AmountKoins,
		Status:      string(w.Status),
		Coupon:      w.Coupon,
		Note:        w.Note,
		CreatedAt:   w.CreatedAt,
	}
}

type Balance struct {
	UserID       string `json:"user_id"`
	KoinsBalance int    `json:"koins_balance"`
	PontosTotal  int    `json:"pontos_total"`
}

type Totals struct {
	UserID      string `json:"user_id"`
	PontosTotal int    `json:"pontos_total"`
	KoinsTotal  int    `json:"koins_total"`
}

type Rank struct {
	UserID           string `json:"user_id"`
	PatenteLabel     string `json:"patente_label"`
	PatenteThreshold int    `json:"patente_threshold"`
}

type RankingRow struct {
	UserID    string      `json:"user_id"`
	PontosMes int         `json:"pontos_mes"`
	KoinsMes  int         `json:"koins_mes"`
	Profile   *ProfileRef `json:"profile"`
}

// RosterEntry is profile with its totals and balance
type RosterEntry struct {
	Profile
	PontosTotal  int    `json:"pontos_total"`
	KoinsTotal   int    `json:"koins_total"`
	KoinsBalance int    `json:"koins_balance"`
	PatenteLabel string `json:"patente_label"`
}

type Me struct {
	UserID   string   `json:"user_id"`
	Profile  *Profile `json:"profile"`
	IsAdmin  bool     `json:"is_admin"`
	IsEscudo bool     `json:"is_escudo"`
}

type AwardRequest struct {
	UserID   string  `json:"user_id"`
	Criterio string  `json:"criterio"`
	Pontos   int     `json:"pontos"`
	Motivo   *string `json:"motivo"`
}

type WithdrawalRequest struct {
	Amount int     `json:"amount"`
	Note   *string `json:"note"`
}

type ApproveRequest struct {
	Coupon string `json:"coupon"`
}

type ProfileRequest struct {
	UserID    string      `json:"user_id"`
	FirstName string      `json:"first_name"`
	Setor     string      `json:"setor"`
	Role      schema.Role `json:"role"`
}
