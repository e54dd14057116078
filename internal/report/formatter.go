// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders pipeline outcomes for humans and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"oficio/internal/casefile"
	"oficio/internal/pipeline"
)

// Options controls rendering.
type Options struct {
	NoColor bool
	Verbose bool
}

// TextFormatter renders a human-readable decision summary.
type TextFormatter struct {
	colors map[string]*color.Color
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *TextFormatter) statusColor(s casefile.Status) *color.Color {
	switch s {
	case casefile.StatusClassified:
		return f.colors["green"]
	case casefile.StatusNeedsReview:
		return f.colors["yellow"]
	case casefile.StatusRejected:
		return f.colors["red"]
	default:
		return f.colors["white"]
	}
}

// Format renders one outcome.
func (f *TextFormatter) Format(out *pipeline.Outcome, opts Options) string {
	if opts.NoColor {
		color.NoColor = true
	}

	var b strings.Builder
	r := out.Result

	fmt.Fprintf(&b, "Case %s: %s\n", r.CaseID, f.statusColor(r.Status).Sprint(r.Status.String()))

	switch r.Status {
	case casefile.StatusRejected:
		for _, reason := range r.RejectionReasons {
			fmt.Fprintf(&b, "  reason: %s\n", f.colors["red"].Sprint(string(reason)))
		}
	case casefile.StatusNeedsReview:
		// A review case with no category stopped at the authority
		// check; one with a category has checklist gaps.
		if r.Category == 0 {
			fmt.Fprintf(&b, "  authority match requires manual confirmation\n")
			break
		}
		f.appendClassification(&b, out, opts)
	case casefile.StatusClassified:
		f.appendClassification(&b, out, opts)
	}

	return b.String()
}

func (f *TextFormatter) appendClassification(b *strings.Builder, out *pipeline.Outcome, opts Options) {
	r := out.Result
	fmt.Fprintf(b, "  category:   %s (%.0f%%)\n",
		f.colors["cyan"].Sprint(r.Category.String()), r.Confidence*100)
	fmt.Fprintf(b, "  authority:  %s\n", r.MatchedAuthority)
	fmt.Fprintf(b, "  channel:    %s\n", r.Channel.String())
	if r.FieldsComplete {
		fmt.Fprintf(b, "  checklist:  %s\n", f.colors["green"].Sprint("complete"))
	} else {
		fmt.Fprintf(b, "  checklist:  %s (%d missing)\n",
			f.colors["yellow"].Sprint("incomplete"), len(r.MissingFields))
		if opts.Verbose {
			for _, field := range r.MissingFields {
				fmt.Fprintf(b, "    missing: %s\n", field)
			}
		}
	}
	f.appendSpecial(b, r.Special)
	f.appendSemantics(b, out.Semantics)
}

func (f *TextFormatter) appendSpecial(b *strings.Builder, s casefile.SpecialCase) {
	if !s.Any() {
		return
	}
	var flags []string
	if s.IsReminder {
		flags = append(flags, "reminder")
	}
	if s.IsAddendum {
		flags = append(flags, "addendum")
	}
	if s.IsCorrection {
		flags = append(flags, "correction")
	}
	fmt.Fprintf(b, "  special:    %s", strings.Join(flags, ", "))
	if s.PriorCaseRef != "" {
		fmt.Fprintf(b, " (prior case %s)", s.PriorCaseRef)
	}
	b.WriteString("\n")
}

func (f *TextFormatter) appendSemantics(b *strings.Builder, sem casefile.SemanticAnalysis) {
	if sem.Freeze != nil && sem.Freeze.IsRequired {
		fmt.Fprintf(b, "  freeze:     %s\n", describeFunds(sem.Freeze.Accounts, sem.Freeze.Amount, sem.Freeze.Currency, sem.Freeze.IsPartial))
	}
	if sem.Release != nil && sem.Release.IsRequired {
		fmt.Fprintf(b, "  release:    %s\n", describeFunds(sem.Release.Accounts, sem.Release.Amount, sem.Release.Currency, sem.Release.IsPartial))
	}
	if sem.Transfer != nil && sem.Transfer.IsRequired {
		fmt.Fprintf(b, "  transfer:   to %s\n", sem.Transfer.DestinationAccount)
	}
	if sem.Documentation != nil && sem.Documentation.IsRequired {
		types := make([]string, len(sem.Documentation.Documents))
		for i, dt := range sem.Documentation.Documents {
			types[i] = string(dt)
		}
		fmt.Fprintf(b, "  documents:  %s\n", strings.Join(types, ", "))
	}
}

func describeFunds(accounts []string, amount *float64, currency string, partial bool) string {
	var parts []string
	if len(accounts) > 0 {
		parts = append(parts, fmt.Sprintf("accounts %s", strings.Join(accounts, ", ")))
	}
	if amount != nil {
		parts = append(parts, fmt.Sprintf("%.2f %s", *amount, currency))
	}
	if partial {
		parts = append(parts, "partial")
	}
	if len(parts) == 0 {
		return "all identified funds"
	}
	return strings.Join(parts, "; ")
}

// jsonOutcome is the machine-readable wire shape. Enums are serialized
// as their catalog names, not integers, so downstream consumers survive
// code renumbering.
type jsonOutcome struct {
	CaseID           string                     `json:"case_id"`
	Status           string                     `json:"status"`
	Category         string                     `json:"category,omitempty"`
	Confidence       float64                    `json:"confidence"`
	Channel          string                     `json:"channel"`
	MatchedAuthority string                     `json:"matched_authority,omitempty"`
	RejectionReasons []casefile.RejectionReason `json:"rejection_reasons,omitempty"`
	RequiredFields   []string                   `json:"required_fields,omitempty"`
	MissingFields    []string                   `json:"missing_fields,omitempty"`
	FieldsComplete   bool                       `json:"fields_complete"`
	Special          *casefile.SpecialCase      `json:"special,omitempty"`
	Semantics        *casefile.SemanticAnalysis `json:"semantics,omitempty"`
}

// FormatJSON renders one outcome as indented JSON.
func FormatJSON(out *pipeline.Outcome) (string, error) {
	r := out.Result
	wire := jsonOutcome{
		CaseID:           r.CaseID,
		Status:           r.Status.String(),
		Confidence:       r.Confidence,
		Channel:          r.Channel.String(),
		MatchedAuthority: r.MatchedAuthority,
		RejectionReasons: r.RejectionReasons,
		RequiredFields:   r.RequiredFields,
		MissingFields:    r.MissingFields,
		FieldsComplete:   r.FieldsComplete,
	}
	if r.Category != 0 {
		wire.Category = r.Category.String()
	}
	if r.Special.Any() {
		special := r.Special
		wire.Special = &special
	}
	if !out.Semantics.Empty() {
		sem := out.Semantics
		wire.Semantics = &sem
	}

	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}
	return string(data), nil
}
