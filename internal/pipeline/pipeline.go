// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline sequences the decision stages for one case file:
// admissibility, category classification, mandatory-field checklist and
// semantic requirement extraction. Later stages never run for a rejected
// case, and a cancelled context discards partial results.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"oficio/internal/admissibility"
	"oficio/internal/casefile"
	"oficio/internal/classify"
	"oficio/internal/config"
	"oficio/internal/fields"
	"oficio/internal/logging"
	"oficio/internal/semantics"
	"oficio/internal/textmatch"
)

// Outcome is the full decision for one case file: the audit-record
// classification plus the extracted semantic requirements. Semantics is
// populated only for classified cases.
type Outcome struct {
	Result    casefile.ClassificationResult
	Semantics casefile.SemanticAnalysis
}

// ReviewItem is a case routed to manual review because the issuing
// authority matched inside the review band instead of cleanly.
type ReviewItem struct {
	CaseID        string
	AuthorityName string
	BestMatch     string
	Score         float64
}

// ReviewQueue receives cases that need a human decision. Implementations
// must be safe for concurrent use.
type ReviewQueue interface {
	Submit(ctx context.Context, item ReviewItem) error
}

// fieldChecker is the checklist stage seam.
type fieldChecker interface {
	Validate(m *casefile.MandatedFields) fields.Report
	Checklist() []string
}

// Pipeline runs the ordered decision stages.
type Pipeline struct {
	admissibility *admissibility.Validator
	classifier    *classify.Classifier
	fields        fieldChecker
	extractor     *semantics.Extractor
	review        ReviewQueue
	log           *slog.Logger
}

// New wires a Pipeline from configuration. review may be nil, in which
// case ambiguous authority matches are still marked NeedsReview but not
// forwarded anywhere.
func New(cfg *config.Config, review ReviewQueue) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	matcher := textmatch.NewMatcher().WithWindowTolerance(cfg.Matching.WindowTolerance)
	classifier, err := classify.NewClassifier(cfg.Classification, cfg.Matching.DefaultThreshold, matcher)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		admissibility: admissibility.NewValidator(cfg.Admissibility, cfg.Matching.ReviewFloor, matcher),
		classifier:    classifier,
		fields:        fields.NewValidator(cfg.Fields.Mandatory),
		extractor:     semantics.NewExtractor(cfg.Semantics, cfg.Classification, cfg.Matching.DefaultThreshold, matcher),
		review:        review,
		log:           logging.New("pipeline"),
	}, nil
}

// Process runs the stages in order for one case file. The returned error
// is non-nil only for context cancellation or a review-queue failure;
// inadmissible letters are a Rejected outcome, not an error.
func (p *Pipeline) Process(ctx context.Context, cf *casefile.CaseFile) (*Outcome, error) {
	adm, err := p.admissibility.Validate(ctx, cf)
	if err != nil {
		return nil, err
	}
	if adm.Ambiguous {
		return p.routeToReview(ctx, cf, adm)
	}
	if !adm.Admissible {
		p.log.Info("case rejected",
			"case_id", cf.ID, "reason", string(adm.Reason))
		return &Outcome{Result: casefile.ClassificationResult{
			CaseID:           cf.ID,
			Status:           casefile.StatusRejected,
			RejectionReasons: []casefile.RejectionReason{adm.Reason},
			Channel:          adm.Channel,
		}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision := p.classifier.Classify(cf)
	special := p.classifier.DetectSpecialCases(cf.CombinedText())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := p.fields.Validate(&cf.Mandated)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sem := p.extractor.Extract(cf, decision.Category)

	// Checklist gaps are a warning, not a failure: the case still gets
	// its category and requirements, but lands in review instead of
	// terminal Classified.
	status := casefile.StatusClassified
	if !report.PassesValidation {
		status = casefile.StatusNeedsReview
	}

	p.log.Info("case classified",
		"case_id", cf.ID,
		"category", decision.Category.String(),
		"confidence", decision.Confidence,
		"status", status.String(),
		"fields_complete", report.PassesValidation)

	return &Outcome{
		Result: casefile.ClassificationResult{
			CaseID:           cf.ID,
			Category:         decision.Category,
			Status:           status,
			Confidence:       decision.Confidence,
			Channel:          adm.Channel,
			MatchedAuthority: adm.Authority,
			RequiredFields:   p.fields.Checklist(),
			MissingFields:    report.MissingFields,
			FieldsComplete:   report.PassesValidation,
			Special:          special,
		},
		Semantics: sem,
	}, nil
}

func (p *Pipeline) routeToReview(ctx context.Context, cf *casefile.CaseFile, adm admissibility.Result) (*Outcome, error) {
	if p.review != nil {
		item := ReviewItem{
			CaseID:        cf.ID,
			AuthorityName: cf.AuthorityName,
			BestMatch:     adm.Authority,
			Score:         adm.AuthorityScore,
		}
		if err := p.review.Submit(ctx, item); err != nil {
			return nil, fmt.Errorf("submit to review queue: %w", err)
		}
	}
	p.log.Info("case routed to manual review",
		"case_id", cf.ID, "authority", cf.AuthorityName, "score", adm.AuthorityScore)
	return &Outcome{Result: casefile.ClassificationResult{
		CaseID:  cf.ID,
		Status:  casefile.StatusNeedsReview,
		Channel: adm.Channel,
	}}, nil
}
