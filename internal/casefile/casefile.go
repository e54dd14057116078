// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package casefile

import "time"

// CaseFile is the structured record of a single authority request letter
// ("oficio") after text extraction. It is never deleted; a corrected or
// amended letter produces a new version carrying SupersedesID.
type CaseFile struct {
	ID            string `json:"id"`
	CaseNumber    string `json:"case_number"`
	RequestNumber string `json:"request_number"`
	AreaDesc      string `json:"area_desc"`

	AuthorityName string `json:"authority_name"`
	LegalCitation string `json:"legal_citation"`

	// HasLetterhead and HasSignature are evidence markers set by the
	// upstream extraction service, not re-derived here.
	HasLetterhead bool `json:"has_letterhead"`
	HasSignature  bool `json:"has_signature"`

	// NotificationChannel is the raw channel text from the letter
	// (e.g. "portal SIARA", "notificación personal").
	NotificationChannel string `json:"notification_channel"`

	Body    string  `json:"body"`
	Parties []Party `json:"parties,omitempty"`

	Mandated MandatedFields `json:"mandated"`

	SupersedesID string    `json:"supersedes_id,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Party identifies one person or entity named in the request.
type Party struct {
	RFC       string `json:"rfc,omitempty"`
	CURP      string `json:"curp,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastNameP string `json:"last_name_p,omitempty"`
	LastNameM string `json:"last_name_m,omitempty"`
	LegalName string `json:"legal_name,omitempty"`
	IsEntity  bool   `json:"is_entity"`
}

// CombinedText returns the text surface the classifier and extractor
// operate on: area description, case number and body in that order.
func (c *CaseFile) CombinedText() string {
	return c.AreaDesc + "\n" + c.CaseNumber + "\n" + c.Body
}

// MandatedFields is the regulator-defined checklist record attached to a
// case file. Absence is meaningful: empty string or nil pointer means the
// field was not supplied, and the mandatory-field validator reports it as
// missing rather than skipping it.
type MandatedFields struct {
	// Identification
	InstitutionCode string `json:"institution_code,omitempty"`
	InstitutionName string `json:"institution_name,omitempty"`
	BranchCode      string `json:"branch_code,omitempty"`
	BranchName      string `json:"branch_name,omitempty"`
	AccountNumber   string `json:"account_number,omitempty"`
	AccountType     string `json:"account_type,omitempty"`
	ProductType     string `json:"product_type,omitempty"`
	ContractNumber  string `json:"contract_number,omitempty"`
	CustomerID      string `json:"customer_id,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerRFC     string `json:"customer_rfc,omitempty"`
	CustomerCURP    string `json:"customer_curp,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	AccountStatus   string `json:"account_status,omitempty"`

	// Request tracking
	RequestDate         *time.Time `json:"request_date,omitempty"`
	ReceptionDate       *time.Time `json:"reception_date,omitempty"`
	DeadlineDate        *time.Time `json:"deadline_date,omitempty"`
	ResponseDate        *time.Time `json:"response_date,omitempty"`
	Priority            string     `json:"priority,omitempty"`
	RequestOrigin       string     `json:"request_origin,omitempty"`
	CaseNumber          string     `json:"case_number,omitempty"`
	RequestNumber       string     `json:"request_number,omitempty"`
	FolioNumber         string     `json:"folio_number,omitempty"`
	AuthorityReference  string     `json:"authority_reference,omitempty"`
	NotificationChannel string     `json:"notification_channel,omitempty"`
	AreaCode            string     `json:"area_code,omitempty"`

	// Financial
	OpeningDate        *time.Time `json:"opening_date,omitempty"`
	ClosingDate        *time.Time `json:"closing_date,omitempty"`
	CurrentBalance     *float64   `json:"current_balance,omitempty"`
	AvailableBalance   *float64   `json:"available_balance,omitempty"`
	FrozenAmount       *float64   `json:"frozen_amount,omitempty"`
	RequestedAmount    *float64   `json:"requested_amount,omitempty"`
	Currency           string     `json:"currency,omitempty"`
	AverageBalance     *float64   `json:"average_balance,omitempty"`
	CreditLimit        *float64   `json:"credit_limit,omitempty"`
	LastMovementDate   *time.Time `json:"last_movement_date,omitempty"`
	InterestRate       *float64   `json:"interest_rate,omitempty"`
	MonthlyDeposits    *float64   `json:"monthly_deposits,omitempty"`
	MonthlyWithdrawals *float64   `json:"monthly_withdrawals,omitempty"`
	CheckbookNumber    string     `json:"checkbook_number,omitempty"`
	DebitCardNumber    string     `json:"debit_card_number,omitempty"`
	ClabeNumber        string     `json:"clabe_number,omitempty"`
}

// ExtractedMetadata is the handoff record from the external OCR/extraction
// service. The library never sees document bytes, only this.
type ExtractedMetadata struct {
	RawText string

	// Per-field candidate strings keyed by field name, as proposed by
	// the extraction service.
	Candidates map[string]string

	// Extraction confidence in [0,1] as reported upstream.
	Confidence float64

	SourceURL  string
	SourcePath string
}
