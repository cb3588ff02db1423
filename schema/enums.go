package schema

// Role of profile, source is Rewards.Profile
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleEscudo      Role = "escudo"
	RoleColaborador Role = "colaborador"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEscudo, RoleColaborador:
		return true
	}
	return false
}

// WithdrawalStatus of Rewards.Withdrawal, approved and denied are terminal
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalDenied   WithdrawalStatus = "denied"
)

// Topics and event names
const (
	TopicUserLifecycle         = "user.lifecycle"
	TopicBonificationLifecycle = "bonification.lifecycle"
	TopicWithdrawalLifecycle   = "withdrawal.lifecycle"

	EventUserCreated         = "User.Created"
	EventBonificationCreated = "Bonification.Created"
	EventWithdrawalRequested = "Withdrawal.Requested"
	EventWithdrawalApproved  = "Withdrawal.Approved"
	EventWithdrawalDenied    = "Withdrawal.Denied"

	EventVersion = "v1"
)
