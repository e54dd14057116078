// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package admissibility decides whether a case file is legally admissible.
// Three ordered, fail-fast checks: authenticity evidence, notification
// channel, issuing authority. The first failed requirement produces one
// specific rejection reason; later checks never run.
package admissibility

import (
	"context"
	"strings"

	"oficio/internal/casefile"
	"oficio/internal/config"
	"oficio/internal/textmatch"
)

// Result is the outcome of the admissibility checks.
type Result struct {
	Admissible bool

	// Reason is set only when Admissible is false and the failure is
	// terminal.
	Reason casefile.RejectionReason

	// Ambiguous marks an authority match that fell inside the manual
	// review band: not accepted, not rejected, needs a human.
	Ambiguous bool

	Channel casefile.Channel

	// Authority is the recognized-set entry the issuing authority
	// resolved to; empty unless the third check passed.
	Authority string

	// AuthorityScore is the similarity score of the authority match
	// (1.0 for exact containment).
	AuthorityScore float64
}

// Validator runs the three ordered admissibility checks.
type Validator struct {
	cfg         config.AdmissibilityConfig
	reviewFloor float64
	matcher     *textmatch.Matcher
}

// NewValidator builds a Validator. reviewFloor is the lower bound of the
// manual-review band for authority matches; scores in
// [reviewFloor, AuthorityThreshold) come back Ambiguous.
func NewValidator(cfg config.AdmissibilityConfig, reviewFloor float64, matcher *textmatch.Matcher) *Validator {
	return &Validator{cfg: cfg, reviewFloor: reviewFloor, matcher: matcher}
}

// Validate runs authenticity, channel and authority checks in order and
// stops at the first failure. The context is consulted between checks;
// a cancelled run returns the context error and no Result.
func (v *Validator) Validate(ctx context.Context, cf *casefile.CaseFile) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if reason, ok := v.checkAuthenticity(cf); !ok {
		return Result{Reason: reason}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	channel, ok := v.checkChannel(cf.NotificationChannel)
	if !ok {
		return Result{Reason: casefile.ReasonUnknownChannel}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	authority, score, status := v.checkAuthority(cf.AuthorityName)
	switch status {
	case authorityAmbiguous:
		return Result{Ambiguous: true, Channel: channel, Authority: authority, AuthorityScore: score}, nil
	case authorityUnknown:
		if strings.TrimSpace(cf.AuthorityName) == "" {
			return Result{Reason: casefile.ReasonUnknownAuthority, Channel: channel}, nil
		}
		return Result{Reason: casefile.ReasonExceedsJurisdiction, Channel: channel}, nil
	}

	return Result{
		Admissible:     true,
		Channel:        channel,
		Authority:      authority,
		AuthorityScore: score,
	}, nil
}

// checkAuthenticity verifies letterhead, signature evidence and a
// non-empty legal citation, in that order. A letter whose citation is
// present but whose body carries no request text at all lacks the
// specificity to be actionable.
func (v *Validator) checkAuthenticity(cf *casefile.CaseFile) (casefile.RejectionReason, bool) {
	if !cf.HasLetterhead {
		return casefile.ReasonMissingLetterhead, false
	}
	if !cf.HasSignature {
		return casefile.ReasonMissingSignature, false
	}
	if strings.TrimSpace(cf.LegalCitation) == "" {
		return casefile.ReasonMissingLegalCitation, false
	}
	if strings.TrimSpace(cf.Body) == "" {
		return casefile.ReasonLacksSpecificity, false
	}
	return "", true
}

// checkChannel recognizes the notification channel by keyword, then by
// fuzzy match. An unrecognized channel is a failure, never a silent
// default.
func (v *Validator) checkChannel(raw string) (casefile.Channel, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return casefile.ChannelUnknown, false
	}

	if _, ok := v.matcher.ContainsAny(v.cfg.ElectronicChannelKeywords, text); ok {
		return casefile.ChannelElectronic, true
	}
	if _, ok := v.matcher.ContainsAny(v.cfg.PhysicalChannelKeywords, text); ok {
		return casefile.ChannelPhysical, true
	}

	// OCR noise tolerance: fuzzy pass over both keyword sets.
	for _, kw := range v.cfg.ElectronicChannelKeywords {
		if m := v.matcher.FindBestMatch(kw, text, v.cfg.ChannelThreshold); m != nil {
			return casefile.ChannelElectronic, true
		}
	}
	for _, kw := range v.cfg.PhysicalChannelKeywords {
		if m := v.matcher.FindBestMatch(kw, text, v.cfg.ChannelThreshold); m != nil {
			return casefile.ChannelPhysical, true
		}
	}

	return casefile.ChannelUnknown, false
}

type authorityStatus int

const (
	authorityMatched authorityStatus = iota
	authorityAmbiguous
	authorityUnknown
)

// checkAuthority resolves the issuing authority against the closed
// recognized set: exact containment first, then similarity at the
// configured threshold. Scores in the review band are ambiguous.
func (v *Validator) checkAuthority(name string) (string, float64, authorityStatus) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", 0, authorityUnknown
	}

	for _, known := range v.cfg.Authorities {
		if v.matcher.Contains(known, trimmed) || v.matcher.Contains(trimmed, known) {
			return known, 1.0, authorityMatched
		}
	}

	bestScore := 0.0
	bestAuthority := ""
	for _, known := range v.cfg.Authorities {
		if score := v.matcher.Similarity(trimmed, known); score > bestScore {
			bestScore = score
			bestAuthority = known
		}
	}

	if bestScore >= v.cfg.AuthorityThreshold {
		return bestAuthority, bestScore, authorityMatched
	}
	if bestScore >= v.reviewFloor {
		return bestAuthority, bestScore, authorityAmbiguous
	}
	return "", bestScore, authorityUnknown
}
