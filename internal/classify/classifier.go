// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package classify assigns the compliance-action category of a case file.
// Categories are evaluated in a fixed precedence order with first match
// winning: release > freeze > documentation > transfer > funds delivery >
// general information. Real letters routinely contain vocabulary from
// several categories ("desbloqueo de las cuentas previamente embargadas");
// the precedence encodes that the higher-ranked action is always the
// intended one.
package classify

import (
	"fmt"
	"regexp"

	"oficio/internal/casefile"
	"oficio/internal/config"
	"oficio/internal/textmatch"
)

// Decision is the category classification of one case file.
type Decision struct {
	Category casefile.Category

	// Confidence is 1.0 for an exact keyword hit or the similarity
	// score of the best fuzzy hit. The default category carries 1.0:
	// "no category keyword present" is itself a deterministic finding.
	Confidence float64

	// Keyword is the vocabulary entry that decided the category, empty
	// for the default.
	Keyword string
}

// Classifier applies the precedence table over the combined case text.
type Classifier struct {
	cfg       config.ClassificationConfig
	threshold float64
	matcher   *textmatch.Matcher

	freezeCaseRe *regexp.Regexp
	priorRe      *regexp.Regexp
}

// NewClassifier compiles the configured patterns and returns a Classifier.
func NewClassifier(cfg config.ClassificationConfig, threshold float64, matcher *textmatch.Matcher) (*Classifier, error) {
	c := &Classifier{cfg: cfg, threshold: threshold, matcher: matcher}

	if cfg.FreezeCasePattern != "" {
		re, err := regexp.Compile(cfg.FreezeCasePattern)
		if err != nil {
			return nil, fmt.Errorf("compile freeze_case_pattern: %w", err)
		}
		c.freezeCaseRe = re
	}
	if cfg.PriorCasePattern != "" {
		re, err := regexp.Compile(cfg.PriorCasePattern)
		if err != nil {
			return nil, fmt.Errorf("compile prior_case_pattern: %w", err)
		}
		c.priorRe = re
	}
	return c, nil
}

// Classify evaluates the precedence table top-down over the combined text
// (area description + case number + body) and returns the first category
// whose vocabulary matches.
func (c *Classifier) Classify(cf *casefile.CaseFile) Decision {
	text := cf.CombinedText()

	if kw, score, ok := c.matchVocab(c.cfg.ReleaseKeywords, text); ok {
		return Decision{Category: casefile.CategoryRelease, Confidence: score, Keyword: kw}
	}
	if kw, score, ok := c.matchVocab(c.cfg.FreezeKeywords, text); ok {
		return Decision{Category: casefile.CategoryFreeze, Confidence: score, Keyword: kw}
	}
	// Some authorities mark seizures structurally in the case number
	// rather than in prose.
	if c.freezeCaseRe != nil && c.freezeCaseRe.MatchString(cf.CaseNumber) {
		return Decision{Category: casefile.CategoryFreeze, Confidence: 1.0, Keyword: cf.CaseNumber}
	}
	if kw, score, ok := c.matchVocab(c.cfg.DocumentationKeywords, text); ok {
		return Decision{Category: casefile.CategoryInformation, Confidence: score, Keyword: kw}
	}
	if kw, score, ok := c.matchVocab(c.cfg.TransferKeywords, text); ok {
		return Decision{Category: casefile.CategoryTransfer, Confidence: score, Keyword: kw}
	}
	if kw, score, ok := c.matchVocab(c.cfg.FundsDeliveryKeywords, text); ok {
		return Decision{Category: casefile.CategoryFundsDelivery, Confidence: score, Keyword: kw}
	}

	return Decision{Category: casefile.CategoryInformation, Confidence: 1.0}
}

// matchVocab tries exact containment across the vocabulary first, then the
// fuzzy sliding-window match, keeping the best-scoring keyword.
func (c *Classifier) matchVocab(keywords []string, text string) (string, float64, bool) {
	if kw, ok := c.matcher.ContainsAny(keywords, text); ok {
		return kw, 1.0, true
	}

	bestScore := 0.0
	bestKeyword := ""
	for _, kw := range keywords {
		m := c.matcher.FindBestMatch(kw, text, c.threshold)
		if m != nil && m.Similarity > bestScore {
			bestScore = m.Similarity
			bestKeyword = kw
		}
	}
	if bestKeyword == "" {
		return "", 0, false
	}
	return bestKeyword, bestScore, true
}

// DetectSpecialCases flags reminder/addendum/correction letters. Detection
// is independent of the category decision and additive: a reminder still
// classifies on its own text. The referenced prior request id is extracted
// when the configured pattern finds one.
func (c *Classifier) DetectSpecialCases(text string) casefile.SpecialCase {
	var sc casefile.SpecialCase

	if _, _, ok := c.matchVocab(c.cfg.ReminderKeywords, text); ok {
		sc.IsReminder = true
	}
	if _, _, ok := c.matchVocab(c.cfg.AddendumKeywords, text); ok {
		sc.IsAddendum = true
	}
	if _, _, ok := c.matchVocab(c.cfg.CorrectionKeywords, text); ok {
		sc.IsCorrection = true
	}

	if sc.Any() && c.priorRe != nil {
		if m := c.priorRe.FindStringSubmatch(text); len(m) > 1 {
			sc.PriorCaseRef = m[1]
		}
	}
	return sc
}
