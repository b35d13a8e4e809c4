package types

// PaymentStatus is the two-letter order state code used by the payments API.
type PaymentStatus string

const (
	StatusNotReady       PaymentStatus = "NR"
	StatusPending        PaymentStatus = "PE"
	StatusActive         PaymentStatus = "AC"
	StatusInactive       PaymentStatus = "IA"
	StatusCompleted      PaymentStatus = "CO"
	StatusCancelled      PaymentStatus = "CA"
	StatusExpired        PaymentStatus = "EX"
	StatusOrderCompleted PaymentStatus = "OC"
	StatusRefunded       PaymentStatus = "RF"
	StatusFailed         PaymentStatus = "FA"
	StatusDeclined       PaymentStatus = "DE"
	StatusConfirmed      PaymentStatus = "CM"
)

// IsTerminal reports whether the status admits no further transition.
// Once a session reaches one of these codes the snapshot store rejects
// every subsequent merge.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired,
		StatusOrderCompleted, StatusRefunded, StatusFailed, StatusDeclined:
		return true
	}
	return false
}

// IsCompleted reports whether the payer's side of the order is done.
// The upstream API treats AC as completed from the payer's perspective.
func (s PaymentStatus) IsCompleted() bool {
	return s == StatusCompleted || s == StatusActive
}

// IsExpired reports whether the order can no longer be paid.
func (s PaymentStatus) IsExpired() bool {
	return s == StatusExpired || s == StatusOrderCompleted
}

// Known reports whether s is one of the defined status codes.
func (s PaymentStatus) Known() bool {
	switch s {
	case StatusNotReady, StatusPending, StatusActive, StatusInactive,
		StatusCompleted, StatusCancelled, StatusExpired, StatusOrderCompleted,
		StatusRefunded, StatusFailed, StatusDeclined, StatusConfirmed:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}
