// Package week implements the weekly accounting ledger: transaction
// attribution, week closing transitions, history and the weekly
// spending limit. Weeks are contiguous, non-overlapping periods; a
// manual close shifts the boundary to the close day, so they are not
// necessarily calendar-aligned.
package week

import (
	"errors"
	"fmt"
	"time"
)

// Persistence keys. Every piece of ledger state lives under one of
// these in the kv store.
const (
	KeyTransactions     = "transactions"
	KeyClosedWeeks      = "closed_weeks"
	KeyWeekDates        = "week_dates"
	KeyCurrentWeekID    = "current_week_id"
	KeyCurrentWeekStart = "current_week_start"
	KeyNextCloseDate    = "next_close_date"
	KeySchedule         = "schedule"
	KeyWeeklyLimit      = "weekly_limit"
)

var (
	// ErrClosedWeek rejects writes while the current week is closed and
	// no new week has been established yet.
	ErrClosedWeek = errors.New("current week is closed")

	// ErrAlreadyClosed signals a manual close of an already-closed week.
	ErrAlreadyClosed = errors.New("week is already closed")

	// ErrInconsistentWrite means a persisted write did not take effect
	// on re-read. Attribution depends on closed-set membership, so the
	// operation fails instead of continuing on stale state.
	ErrInconsistentWrite = errors.New("persisted write did not take effect")

	// ErrTransactionNotFound is returned when deleting an unknown id.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ValidationError reports rejected input. It is always recoverable and
// surfaced verbatim to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Transaction is a single expense entry. Immutable once created; the
// id is the only key used for deletion.
type Transaction struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	WeekID      string    `json:"week_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Schedule governs when automatic closing may fire and which weekday
// newly scheduled close dates must fall on.
type Schedule struct {
	Enabled bool         `json:"enabled"`
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
}

// DefaultSchedule is used until the user configures one: closes are
// scheduled for Sundays but automatic closing stays off.
func DefaultSchedule() Schedule {
	return Schedule{Enabled: false, Weekday: time.Sunday, Hour: 0}
}

// CurrentWeek is the derived view of the period presently accepting
// transactions.
type CurrentWeek struct {
	WeekID     string    `json:"week_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalCents int64     `json:"total_cents"`
	Count      int       `json:"count"`
	Closed     bool      `json:"closed"`
}

// Summary is one history entry for an open or closed week.
type Summary struct {
	WeekID     string    `json:"week_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalCents int64     `json:"total_cents"`
	Count      int       `json:"count"`
	Closed     bool      `json:"closed"`
}
