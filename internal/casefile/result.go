// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package casefile

// Category is the compliance-action category assigned to a case file.
// Codes follow the regulator's catalog and are stable across versions.
type Category int

const (
	CategoryInformation   Category = 100
	CategoryFreeze        Category = 101
	CategoryRelease       Category = 102
	CategoryTransfer      Category = 103
	CategoryFundsDelivery Category = 104
)

// String returns the catalog name for the category.
func (c Category) String() string {
	switch c {
	case CategoryInformation:
		return "INFORMATION"
	case CategoryFreeze:
		return "FREEZE"
	case CategoryRelease:
		return "RELEASE"
	case CategoryTransfer:
		return "TRANSFER"
	case CategoryFundsDelivery:
		return "FUNDS_DELIVERY"
	default:
		return "UNKNOWN"
	}
}

// Status is the processing state of a case file. Pending is the only
// non-terminal state.
type Status int

const (
	StatusPending Status = iota
	StatusRejected
	StatusNeedsReview
	StatusClassified
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRejected:
		return "REJECTED"
	case StatusNeedsReview:
		return "NEEDS_REVIEW"
	case StatusClassified:
		return "CLASSIFIED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status ends processing for this version
// of the case file.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// RejectionReason names the admissibility failure that made a case file
// legally inadmissible. A rejected case carries exactly one reason: the
// admissibility checks are ordered and fail fast.
type RejectionReason string

const (
	ReasonMissingLetterhead    RejectionReason = "missing-letterhead"
	ReasonMissingSignature     RejectionReason = "missing-signature"
	ReasonMissingLegalCitation RejectionReason = "missing-legal-citation"
	ReasonUnknownChannel       RejectionReason = "unknown-channel"
	ReasonUnknownAuthority     RejectionReason = "unrecognized-authority"
	ReasonLacksSpecificity     RejectionReason = "lacks-specificity"
	ReasonExceedsJurisdiction  RejectionReason = "exceeds-jurisdiction"
)

// Channel is the notification channel a letter arrived through.
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelElectronic
	ChannelPhysical
)

func (ch Channel) String() string {
	switch ch {
	case ChannelElectronic:
		return "ELECTRONIC"
	case ChannelPhysical:
		return "PHYSICAL"
	default:
		return "UNKNOWN"
	}
}

// SpecialCase flags letters that reference a prior case rather than (or in
// addition to) opening a new demand. Detection is additive: a reminder is
// still classified on its own text.
type SpecialCase struct {
	IsReminder   bool `json:"is_reminder"`
	IsAddendum   bool `json:"is_addendum"`
	IsCorrection bool `json:"is_correction"`

	// PriorCaseRef is the referenced prior request identifier when one
	// could be extracted, empty otherwise.
	PriorCaseRef string `json:"prior_case_ref,omitempty"`
}

// Any reports whether any special-case flag is set.
func (s SpecialCase) Any() bool {
	return s.IsReminder || s.IsAddendum || s.IsCorrection
}

// ClassificationResult is the assembled decision for one case file.
type ClassificationResult struct {
	CaseID   string
	Category Category
	Status   Status

	// Confidence in [0,1] for the category decision.
	Confidence float64

	// RejectionReasons is empty when the case is admissible. With the
	// fail-fast admissibility checks it holds at most one reason today;
	// the slice shape is part of the audit record contract.
	RejectionReasons []RejectionReason

	Channel Channel

	// MatchedAuthority is the recognized-set entry the issuing authority
	// resolved to, empty on rejection.
	MatchedAuthority string

	RequiredFields []string
	MissingFields  []string
	FieldsComplete bool

	Special SpecialCase
}
