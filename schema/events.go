package schema

import (
	_ "embed"
	"github.com/hamba/avro/v2"
	"time"
)

//go:embed avro/user.avsc
var user string

//go:embed avro/bonification.avsc
var bonification string

//go:embed avro/withdrawal.avsc
var withdrawal string

var (
	UserSchema         = avro.MustParse(user)
	BonificationSchema = avro.MustParse(bonification)
	WithdrawalSchema   = avro.MustParse(withdrawal)
)

// UserEvent is published by Auth on registration
type UserEvent struct {
	PublicId string `avro:"uid" json:"uid"`
	Email    string `avro:"email" json:"email"`
}

// BonificationEvent is published by Rewards when points are awarded.
// JSON names follow columns of bonificacoes table.
type BonificationEvent struct {
	ID        string    `avro:"id" json:"id"`
	UserID    string    `avro:"userId" json:"user_id"`
	FirstName string    `avro:"firstName" json:"first_name,omitempty"`
	AwardedBy string    `avro:"awardedBy" json:"awarded_by,omitempty"`
	Criterio  string    `avro:"criterio" json:"criterio"`
	Pontos    int       `avro:"pontos" json:"pontos"`
	Koins     int       `avro:"koins" json:"koins"`
	Motivo    *string   `avro:"motivo" json:"motivo"`
	CreatedAt time.Time `avro:"createdAt" json:"created_at"`
}

// WithdrawalEvent is published by Rewards on every change of withdrawal.
// JSON names follow columns of withdrawals table.
type WithdrawalEvent struct {
	ID          string    `avro:"id" json:"id"`
	UserID      string    `avro:"userId" json:"user_id"`
	FirstName   string    `avro:"firstName" json:"first_name,omitempty"`
	AmountKoins int       `avro:"amountKoins" json:"amount_koins"`
	Status      string    `avro:"status" json:"status"`
	Coupon      *string   `avro:"coupon" json:"coupon"`
	Note        *string   `avro:"note" json:"note"`
	CreatedAt   time.Time `avro:"createdAt" json:"created_at"`
}

func (e *UserEvent) Marshal() ([]byte, error) {
	return avro.Marshal(UserSchema, e)
}

func (e *UserEvent) Unmarshal(b []byte) error {
	return avro.Unmarshal(UserSchema, b, e)
}

func (e *BonificationEvent) Marshal() ([]byte, error) {
	return avro.Marshal(BonificationSchema, e)
}

func (e *BonificationEvent) Unmarshal(b []byte) error {
	return avro.Unmarshal(BonificationSchema, b, e)
}

func (e *WithdrawalEvent) Marshal() ([]byte, error) {
	return avro.Marshal(WithdrawalSchema, e)
}

func (e *WithdrawalEvent) Unmarshal(b []byte) error {
	return avro.Unmarshal(WithdrawalSchema, b, e)
}
