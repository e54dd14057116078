// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fields checks the regulator's mandatory-field checklist against
// a case file. Purely structural: no text matching, no defaults. A field
// that is absent is missing — financial fields are never silently skipped.
package fields

import (
	"strings"
	"time"

	"oficio/internal/casefile"
)

// Report is the checklist outcome. MissingFields preserves checklist
// order for stable audit output.
type Report struct {
	PassesValidation bool
	MissingFields    []string
}

// presence reports whether one mandated field carries a value.
type presence func(*casefile.MandatedFields) bool

func str(get func(*casefile.MandatedFields) string) presence {
	return func(m *casefile.MandatedFields) bool {
		return strings.TrimSpace(get(m)) != ""
	}
}

func date(get func(*casefile.MandatedFields) *time.Time) presence {
	return func(m *casefile.MandatedFields) bool {
		t := get(m)
		return t != nil && !t.IsZero()
	}
}

func amount(get func(*casefile.MandatedFields) *float64) presence {
	return func(m *casefile.MandatedFields) bool {
		return get(m) != nil
	}
}

// registry maps every checklist name to its presence rule. Checklist names
// are the regulator's field identifiers, which also appear in config.
var registry = map[string]presence{
	"institution_code": str(func(m *casefile.MandatedFields) string { return m.InstitutionCode }),
	"institution_name": str(func(m *casefile.MandatedFields) string { return m.InstitutionName }),
	"branch_code":      str(func(m *casefile.MandatedFields) string { return m.BranchCode }),
	"branch_name":      str(func(m *casefile.MandatedFields) string { return m.BranchName }),
	"account_number":   str(func(m *casefile.MandatedFields) string { return m.AccountNumber }),
	"account_type":     str(func(m *casefile.MandatedFields) string { return m.AccountType }),
	"product_type":     str(func(m *casefile.MandatedFields) string { return m.ProductType }),
	"contract_number":  str(func(m *casefile.MandatedFields) string { return m.ContractNumber }),
	"customer_id":      str(func(m *casefile.MandatedFields) string { return m.CustomerID }),
	"customer_name":    str(func(m *casefile.MandatedFields) string { return m.CustomerName }),
	"customer_rfc":     str(func(m *casefile.MandatedFields) string { return m.CustomerRFC }),
	"customer_curp":    str(func(m *casefile.MandatedFields) string { return m.CustomerCURP }),
	"customer_address": str(func(m *casefile.MandatedFields) string { return m.CustomerAddress }),
	"account_status":   str(func(m *casefile.MandatedFields) string { return m.AccountStatus }),

	"request_date":         date(func(m *casefile.MandatedFields) *time.Time { return m.RequestDate }),
	"reception_date":       date(func(m *casefile.MandatedFields) *time.Time { return m.ReceptionDate }),
	"deadline_date":        date(func(m *casefile.MandatedFields) *time.Time { return m.DeadlineDate }),
	"response_date":        date(func(m *casefile.MandatedFields) *time.Time { return m.ResponseDate }),
	"priority":             str(func(m *casefile.MandatedFields) string { return m.Priority }),
	"request_origin":       str(func(m *casefile.MandatedFields) string { return m.RequestOrigin }),
	"case_number":          str(func(m *casefile.MandatedFields) string { return m.CaseNumber }),
	"request_number":       str(func(m *casefile.MandatedFields) string { return m.RequestNumber }),
	"folio_number":         str(func(m *casefile.MandatedFields) string { return m.FolioNumber }),
	"authority_reference":  str(func(m *casefile.MandatedFields) string { return m.AuthorityReference }),
	"notification_channel": str(func(m *casefile.MandatedFields) string { return m.NotificationChannel }),
	"area_code":            str(func(m *casefile.MandatedFields) string { return m.AreaCode }),

	"opening_date":        date(func(m *casefile.MandatedFields) *time.Time { return m.OpeningDate }),
	"closing_date":        date(func(m *casefile.MandatedFields) *time.Time { return m.ClosingDate }),
	"current_balance":     amount(func(m *casefile.MandatedFields) *float64 { return m.CurrentBalance }),
	"available_balance":   amount(func(m *casefile.MandatedFields) *float64 { return m.AvailableBalance }),
	"frozen_amount":       amount(func(m *casefile.MandatedFields) *float64 { return m.FrozenAmount }),
	"requested_amount":    amount(func(m *casefile.MandatedFields) *float64 { return m.RequestedAmount }),
	"currency":            str(func(m *casefile.MandatedFields) string { return m.Currency }),
	"average_balance":     amount(func(m *casefile.MandatedFields) *float64 { return m.AverageBalance }),
	"credit_limit":        amount(func(m *casefile.MandatedFields) *float64 { return m.CreditLimit }),
	"last_movement_date":  date(func(m *casefile.MandatedFields) *time.Time { return m.LastMovementDate }),
	"interest_rate":       amount(func(m *casefile.MandatedFields) *float64 { return m.InterestRate }),
	"monthly_deposits":    amount(func(m *casefile.MandatedFields) *float64 { return m.MonthlyDeposits }),
	"monthly_withdrawals": amount(func(m *casefile.MandatedFields) *float64 { return m.MonthlyWithdrawals }),
	"checkbook_number":    str(func(m *casefile.MandatedFields) string { return m.CheckbookNumber }),
	"debit_card_number":   str(func(m *casefile.MandatedFields) string { return m.DebitCardNumber }),
	"clabe_number":        str(func(m *casefile.MandatedFields) string { return m.ClabeNumber }),
}

// KnownFields returns every field name the validator can check.
func KnownFields() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Validator checks a configured checklist against mandated fields.
type Validator struct {
	checklist []string
}

// NewValidator builds a Validator for the given checklist. The checklist
// comes from config; it must never be hard-coded per jurisdiction.
func NewValidator(checklist []string) *Validator {
	return &Validator{checklist: checklist}
}

// Checklist returns the configured field names in order.
func (v *Validator) Checklist() []string {
	out := make([]string, len(v.checklist))
	copy(out, v.checklist)
	return out
}

// Validate walks the checklist in order and reports every missing field.
// A checklist name with no registered rule is reported missing rather
// than skipped: an unknown requirement can never pass silently.
func (v *Validator) Validate(m *casefile.MandatedFields) Report {
	var missing []string
	for _, name := range v.checklist {
		rule, ok := registry[name]
		if !ok || !rule(m) {
			missing = append(missing, name)
		}
	}
	return Report{
		PassesValidation: len(missing) == 0,
		MissingFields:    missing,
	}
}
