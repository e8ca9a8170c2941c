/**
 * @description
 * This file defines the derived trip-balance types. Balances are never
 * persisted; they are recomputed on every request from the trip's active
 * splits and reflect each member's net paid-minus-owed position.
 */

package domain

// BalanceStatus classifies a member's net position within a trip.
type BalanceStatus string

const (
	BalanceStatusCreditor BalanceStatus = "creditor"
	BalanceStatusDebtor   BalanceStatus = "debtor"
	BalanceStatusSettled  BalanceStatus = "settled"
)

// UserBalanceRow is the raw per-user aggregate produced by the split
// repository: active splits joined to the trip's expenses, amounts summed
// conditionally on status (pending contributes to owed, paid to paid).
type UserBalanceRow struct {
	UserID     string  `json:"user_id"`
	AmountOwed float64 `json:"amount_owed"`
	AmountPaid float64 `json:"amount_paid"`
}

// UserBalance is one member's derived net position.
type UserBalance struct {
	UserID     string        `json:"user_id"`
	AmountOwed float64       `json:"amount_owed"`
	AmountPaid float64       `json:"amount_paid"`
	NetBalance float64       `json:"net_balance"`
	Status     BalanceStatus `json:"status"`
}

// TripBalanceSummary is the trip-level rollup of member balances.
//
// IsBalanced must hold by construction, since debts and credits are drawn
// from the same split set; it is reported explicitly as a sanity check.
type TripBalanceSummary struct {
	TripID       string        `json:"trip_id"`
	Balances     []UserBalance `json:"balances"`
	TotalDebts   float64       `json:"total_debts"`
	TotalCredits float64       `json:"total_credits"`
	IsBalanced   bool          `json:"is_balanced"`
}
