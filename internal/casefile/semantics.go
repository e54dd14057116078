// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package casefile

import "time"

// SemanticAnalysis carries the typed requirements extracted from a case
// file body. A letter may populate several records at once: demanding a
// freeze and requesting statements in the same oficio is common. A nil
// record means the corresponding demand was not present in the text.
type SemanticAnalysis struct {
	Freeze        *FreezeRequirement        `json:"freeze,omitempty"`
	Release       *ReleaseRequirement       `json:"release,omitempty"`
	Documentation *DocumentationRequirement `json:"documentation,omitempty"`
	Transfer      *TransferRequirement      `json:"transfer,omitempty"`
	Information   *InformationRequirement   `json:"information,omitempty"`
}

// Empty reports whether no requirement was extracted at all.
func (s SemanticAnalysis) Empty() bool {
	return s.Freeze == nil && s.Release == nil && s.Documentation == nil &&
		s.Transfer == nil && s.Information == nil
}

// FreezeRequirement is an asset-seizure demand. IsPartial and IsTotal are
// mutually exclusive; both false means the letter did not qualify the
// freeze either way.
type FreezeRequirement struct {
	IsRequired bool     `json:"is_required"`
	Accounts   []string `json:"accounts,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	IsPartial  bool     `json:"is_partial"`
	IsTotal    bool     `json:"is_total"`
}

// ReleaseRequirement is an asset-unblock demand, shaped like a freeze.
type ReleaseRequirement struct {
	IsRequired bool     `json:"is_required"`
	Accounts   []string `json:"accounts,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	IsPartial  bool     `json:"is_partial"`
	IsTotal    bool     `json:"is_total"`
}

// DocumentType is one entry of the fixed documentation vocabulary.
type DocumentType string

const (
	DocBankStatement  DocumentType = "bank-statement"
	DocContract       DocumentType = "contract"
	DocIdentification DocumentType = "identification"
	DocProofOfAddress DocumentType = "proof-of-address"
)

// DateRange is a closed interval extracted from "del X al Y" phrasing.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DocumentationRequirement is a demand for supporting documents.
type DocumentationRequirement struct {
	IsRequired            bool           `json:"is_required"`
	Documents             []DocumentType `json:"documents,omitempty"`
	Account               string         `json:"account,omitempty"`
	Period                *DateRange     `json:"period,omitempty"`
	CertificationRequired bool           `json:"certification_required"`
}

// TransferRequirement is a demand to move or deliver funds. It backs both
// the Transfer and FundsDelivery categories: the regulator's record shape
// is identical, only the catalog code differs.
type TransferRequirement struct {
	IsRequired         bool     `json:"is_required"`
	DestinationAccount string   `json:"destination_account,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	Currency           string   `json:"currency,omitempty"`
}

// InformationRequirement is the default general-information demand.
type InformationRequirement struct {
	IsRequired bool `json:"is_required"`
}

// MatchResult is the outcome of a sliding-window fuzzy match: the best
// window found, its offset into the searched text, and its similarity
// score in [0,1]. Derived and ephemeral, never persisted.
type MatchResult struct {
	Text       string
	Start      int
	Length     int
	Similarity float64
}
