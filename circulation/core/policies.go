package core

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// DuePolicy sets the loan period for a newly created Issue.
type DuePolicy struct {
	Name    string
	DueDays int
}

// DueDate returns issuedAt plus the loan period.
func (p DuePolicy) DueDate(issuedAt time.Time) time.Time {
	return issuedAt.AddDate(0, 0, p.DueDays)
}

// The two loan periods differ on purpose: approvals lend for a week, direct issues for two.
var (
	RequestApprovalPolicy = DuePolicy{Name: "requestApproval", DueDays: 7}
	DirectIssuePolicy     = DuePolicy{Name: "directIssue", DueDays: 14}
)

// FinePolicy turns days overdue into an amount.
type FinePolicy interface {
	Amount(daysOverdue int) float64
	Name() string
}

// UncappedFine charges RatePerDay for every overdue day.
type UncappedFine struct {
	RatePerDay float64
}

func (p UncappedFine) Amount(daysOverdue int) float64 {
	if daysOverdue <= 0 {
		return 0
	}

	return float64(daysOverdue) * p.RatePerDay
}

func (p UncappedFine) Name() string { return FinePolicyUncapped }

// CappedFine charges RatePerDay per overdue day but never more than MaxPerBook for one issue.
type CappedFine struct {
	RatePerDay float64
	MaxPerBook float64
}

func (p CappedFine) Amount(daysOverdue int) float64 {
	if daysOverdue <= 0 {
		return 0
	}

	return math.Min(float64(daysOverdue)*p.RatePerDay, p.MaxPerBook)
}

func (p CappedFine) Name() string { return FinePolicyCapped }

const (
	FinePolicyUncapped = "uncapped"
	FinePolicyCapped   = "capped"

	DefaultRatePerDay = 1.0
	DefaultMaxPerBook = 50.0
)

// ErrUnknownFinePolicy is returned by ParseFinePolicy.
var ErrUnknownFinePolicy = errors.New("unknown fine policy")

// DefaultFinePolicy is what the return path uses unless configured otherwise.
func DefaultFinePolicy() FinePolicy {
	return UncappedFine{RatePerDay: DefaultRatePerDay}
}

// ParseFinePolicy builds a policy by name ("capped" or "uncapped").
func ParseFinePolicy(name string, ratePerDay, maxPerBook float64) (FinePolicy, error) {
	if ratePerDay < 0 || maxPerBook < 0 {
		return nil, fmt.Errorf("fine rate and cap must not be negative")
	}

	switch name {
	case FinePolicyUncapped, "":
		return UncappedFine{RatePerDay: ratePerDay}, nil
	case FinePolicyCapped:
		return CappedFine{RatePerDay: ratePerDay, MaxPerBook: maxPerBook}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFinePolicy, name)
	}
}

// DaysOverdueAt is the return-time count: whole days past due, any started day counts, never negative.
func DaysOverdueAt(dueDate, now time.Time) int {
	late := now.Sub(dueDate)
	if late <= 0 {
		return 0
	}

	return int(math.Ceil(float64(late) / float64(day)))
}

// CalendarDaysOverdue counts the days between the midnights of dueDate and now in UTC, never negative.
func CalendarDaysOverdue(dueDate, now time.Time) int {
	days := int(midnight(now).Sub(midnight(dueDate)) / day)

	return max(0, days)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateFine replays the frozen fine of a returned issue and estimates it for an active one.
func CalculateFine(issue Issue, now time.Time, policy FinePolicy) float64 {
	if issue.Status == IssueReturned {
		return issue.Fine
	}

	return policy.Amount(CalendarDaysOverdue(issue.DueDate, now))
}

// IsOverdue reports whether an active issue is past its due date at now.
func IsOverdue(issue Issue, now time.Time) bool {
	return issue.IsActive() && now.After(issue.DueDate)
}

// CheckoutRules apply only to self-service (QR) checkouts.
type CheckoutRules struct {
	BorrowLimit   int
	FineThreshold float64
}

const (
	DefaultBorrowLimit   = 5
	DefaultFineThreshold = 0.0
)

// DefaultCheckoutRules allows five active loans and no outstanding fines.
func DefaultCheckoutRules() CheckoutRules {
	return CheckoutRules{BorrowLimit: DefaultBorrowLimit, FineThreshold: DefaultFineThreshold}
}
