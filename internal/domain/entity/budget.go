// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod represents how often a budget resets.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// DefaultBudgetName is the name of the budget seeded for a new ledger.
const DefaultBudgetName = "This Month's Budget"

// Budget represents a spending limit for a group over a date window.
type Budget struct {
	ID             uuid.UUID
	Name           string
	Amount         decimal.Decimal
	Period         BudgetPeriod
	StartDate      time.Time
	EndDate        time.Time
	CategoryID     *uuid.UUID
	AlertThreshold int
	IsActive       bool
	OwnerUserID    uuid.UUID
	GroupID        uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewMonthlyBudget creates an active monthly budget covering the calendar
// month that contains now.
func NewMonthlyBudget(name string, amount decimal.Decimal, alertThreshold int, ownerUserID, groupID uuid.UUID, now time.Time) *Budget {
	start, end := MonthWindow(now)
	created := time.Now().UTC()
	return &Budget{
		ID:             uuid.New(),
		Name:           name,
		Amount:         amount,
		Period:         BudgetPeriodMonthly,
		StartDate:      start,
		EndDate:        end,
		AlertThreshold: alertThreshold,
		IsActive:       true,
		OwnerUserID:    ownerUserID,
		GroupID:        groupID,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// MonthWindow returns the first and last calendar day of the month containing
// t, as dates (midnight UTC) in t's own calendar.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	year, month, _ := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
