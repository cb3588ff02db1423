package main

import (
	"fmt"
	"kondecoracao/schema"
	"strconv"
)

// renderDBEvent returns message on inserted bonification, requested or approved withdrawal.
// Other changes have no message.
func renderDBEvent(ev DBEvent) string {
	rec := ev.Record
	if rec == nil {
		return ""
	}
	switch {
	case ev.Table == "bonificacoes" && ev.Type == "INSERT":
		return bonificationMessage(field(rec, "pontos"), field(rec, "koins"), "user "+field(rec, "user_id"), field(rec, "criterio"))
	case ev.Table == "withdrawals" && ev.Type == "INSERT":
		return requestedMessage(field(rec, "amount_koins"), "user "+field(rec, "user_id"))
	case ev.Table == "withdrawals" && ev.Type == "UPDATE" &&
		field(rec, "status") == string(schema.WithdrawalApproved) &&
		field(ev.OldRecord, "status") != string(schema.WithdrawalApproved):
		return approvedMessage(field(rec, "amount_koins"), "user "+field(rec, "user_id"), field(rec, "coupon"))
	}
	return ""
}

func renderBonification(e schema.BonificationEvent) string {
	return bonificationMessage(strconv.Itoa(e.Pontos), strconv.Itoa(e.Koins), who(e.FirstName, e.UserID), e.Criterio)
}

func renderWithdrawal(eventType string, e schema.WithdrawalEvent) string {
	amount := strconv.Itoa(e.AmountKoins)
	switch eventType {
	case schema.EventWithdrawalRequested:
		return requestedMessage(amount, who(e.FirstName, e.UserID))
	case schema.EventWithdrawalApproved:
		coupon := ""
		if e.Coupon != nil {
			coupon = *e.Coupon
		}
		return approvedMessage(amount, who(e.FirstName, e.UserID), coupon)
	case schema.EventWithdrawalDenied:
		return fmt.Sprintf("❌ Resgate negado: %s Koins pelo %s.", amount, who(e.FirstName, e.UserID))
	}
	return ""
}

func bonificationMessage(pontos, koins, user, criterio string) string {
	return fmt.Sprintf("✅ Bonificação: +%s pts (+%s Koins) para %s. Critério: %s.", pontos, koins, user, criterio)
}

func requestedMessage(amount, user string) string {
	return fmt.Sprintf("🧾 Novo pedido de resgate: %s Koins pelo %s.", amount, user)
}

func approvedMessage(amount, user, coupon string) string {
	return fmt.Sprintf("🎟️ Resgate aprovado: %s Koins pelo %s. Cupom: %s", amount, user, coupon)
}

func who(firstName, userID string) string {
	if firstName == "" {
		return "user " + userID
	}
	return fmt.Sprintf("%s (user %s)", firstName, userID)
}

// field formats JSON value of record, numbers without fraction
func field(rec map[string]interface{}, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
