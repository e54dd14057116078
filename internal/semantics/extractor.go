// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package semantics turns a classified case file into typed requirement
// records: which accounts, how much, in what currency, over which period.
// A letter may populate several records at once. Extraction never hard
// fails: a trigger keyword with unparsable sub-fields still produces a
// record with IsRequired set, because partial information is worth more
// to the manual-review queue than none.
package semantics

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"oficio/internal/casefile"
	"oficio/internal/config"
	"oficio/internal/textmatch"
)

// datePattern accepts the three date shapes seen in authority letters:
// "14 de marzo de 2026", "14/03/2026" and "2026-03-14".
const datePattern = `(?:\d{1,2}\s+de\s+[a-záéíóúA-ZÁÉÍÓÚ]+\s+de\s+\d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})`

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

// Extractor builds requirement records from case text.
type Extractor struct {
	cfg       config.SemanticsConfig
	vocab     config.ClassificationConfig
	threshold float64
	matcher   *textmatch.Matcher

	accountRe   *regexp.Regexp
	destRe      *regexp.Regexp
	amountRe    *regexp.Regexp
	currencyRe  *regexp.Regexp
	dateRangeRe *regexp.Regexp
	spanishRe   *regexp.Regexp
}

// NewExtractor builds an Extractor. The classification vocabularies serve
// as trigger keywords: a requirement record is built whenever its
// category's vocabulary appears, independent of the final category.
func NewExtractor(cfg config.SemanticsConfig, vocab config.ClassificationConfig, threshold float64, matcher *textmatch.Matcher) *Extractor {
	minDigits := cfg.MinAccountDigits
	if minDigits < 1 {
		minDigits = 10
	}
	return &Extractor{
		cfg:       cfg,
		vocab:     vocab,
		threshold: threshold,
		matcher:   matcher,

		accountRe:   regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, minDigits)),
		destRe:      regexp.MustCompile(fmt.Sprintf(`(?i)(?:a la cuenta|cuenta destino|cuenta concentradora|clabe)\D{0,30}?(\d{%d,})`, minDigits)),
		amountRe:    regexp.MustCompile(`(?i)(?:\$|monto de\s*\$?|cantidad de\s*\$?|importe de\s*\$?|hasta por\s*\$?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
		currencyRe:  regexp.MustCompile(`\b([A-Z]{3})\b`),
		dateRangeRe: regexp.MustCompile(`(?i)(?:del|desde el|from)\s+(` + datePattern + `)\s+(?:al|hasta el|to)\s+(` + datePattern + `)`),
		spanishRe:   regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóúA-ZÁÉÍÓÚ]+)\s+de\s+(\d{4})`),
	}
}

// Extract builds every requirement record whose trigger vocabulary is
// present, plus the default general-information record when the category
// is Information or nothing else was extracted.
func (e *Extractor) Extract(cf *casefile.CaseFile, category casefile.Category) casefile.SemanticAnalysis {
	text := cf.CombinedText()
	var out casefile.SemanticAnalysis

	if e.triggered(e.vocab.FreezeKeywords, text) || category == casefile.CategoryFreeze {
		out.Freeze = e.extractFreeze(text)
	}
	if e.triggered(e.vocab.ReleaseKeywords, text) || category == casefile.CategoryRelease {
		r := e.extractFreeze(text)
		out.Release = &casefile.ReleaseRequirement{
			IsRequired: true,
			Accounts:   r.Accounts,
			Amount:     r.Amount,
			Currency:   r.Currency,
			IsPartial:  r.IsPartial,
			IsTotal:    r.IsTotal,
		}
	}
	if e.triggered(e.vocab.DocumentationKeywords, text) {
		out.Documentation = e.extractDocumentation(text)
	}
	if e.triggered(e.vocab.TransferKeywords, text) || e.triggered(e.vocab.FundsDeliveryKeywords, text) ||
		category == casefile.CategoryTransfer || category == casefile.CategoryFundsDelivery {
		out.Transfer = e.extractTransfer(text)
	}
	if category == casefile.CategoryInformation || out.Empty() {
		out.Information = &casefile.InformationRequirement{IsRequired: true}
	}

	return out
}

// triggered reports whether any vocabulary entry appears in the text,
// exactly or fuzzily at the configured threshold.
func (e *Extractor) triggered(keywords []string, text string) bool {
	if _, ok := e.matcher.ContainsAny(keywords, text); ok {
		return true
	}
	for _, kw := range keywords {
		if m := e.matcher.FindBestMatch(kw, text, e.threshold); m != nil {
			return true
		}
	}
	return false
}

func (e *Extractor) extractFreeze(text string) *casefile.FreezeRequirement {
	req := &casefile.FreezeRequirement{IsRequired: true}
	req.Accounts = e.Accounts(text)
	req.Amount, req.Currency = e.AmountCurrency(text)
	req.IsPartial, req.IsTotal = e.partialTotal(text)
	return req
}

func (e *Extractor) extractDocumentation(text string) *casefile.DocumentationRequirement {
	req := &casefile.DocumentationRequirement{IsRequired: true}
	req.Documents = e.documentTypes(text)
	if accounts := e.Accounts(text); len(accounts) > 0 {
		req.Account = accounts[0]
	}
	req.Period = e.DateRange(text)
	if _, ok := e.matcher.ContainsAny(e.cfg.CertificationKeywords, text); ok {
		req.CertificationRequired = true
	}
	return req
}

func (e *Extractor) extractTransfer(text string) *casefile.TransferRequirement {
	req := &casefile.TransferRequirement{IsRequired: true}
	if m := e.destRe.FindStringSubmatch(text); len(m) > 1 {
		req.DestinationAccount = m[1]
	} else if accounts := e.Accounts(text); len(accounts) > 0 {
		req.DestinationAccount = accounts[0]
	}
	req.Amount, req.Currency = e.AmountCurrency(text)
	return req
}

// Accounts returns every digit run of at least the configured length, in
// order of appearance, deduplicated. Letters list accounts separated by
// commas or "y"; the digit-run scan handles every separator style.
func (e *Extractor) Accounts(text string) []string {
	raw := e.accountRe.FindAllString(text, -1)
	seen := map[string]bool{}
	var out []string
	for _, acc := range raw {
		if !seen[acc] {
			seen[acc] = true
			out = append(out, acc)
		}
	}
	return out
}

// AmountCurrency extracts the first monetary amount and its currency.
// Amounts are only recognized with a money marker ($ or "monto de"-style
// phrasing) so account numbers never parse as amounts. The currency
// defaults to the configured domestic code when the letter names none.
func (e *Extractor) AmountCurrency(text string) (*float64, string) {
	m := e.amountRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, ""
	}
	raw := text[m[2]:m[3]]
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil, ""
	}

	currency := e.cfg.DomesticCurrency
	// Look for an ISO code in the text right after the amount.
	tail := text[m[3]:]
	if len(tail) > 24 {
		tail = tail[:24]
	}
	if code := e.currencyRe.FindStringSubmatch(tail); len(code) > 1 {
		currency = code[1]
	} else if word := e.currencyWord(text); word != "" {
		currency = word
	}
	return &value, currency
}

func (e *Extractor) currencyWord(text string) string {
	lower := strings.ToLower(text)
	// Deterministic scan order over the configured word map.
	words := make([]string, 0, len(e.cfg.CurrencyWords))
	for w := range e.cfg.CurrencyWords {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return e.cfg.CurrencyWords[w]
		}
	}
	return ""
}

// partialTotal derives the mutually exclusive partial/total flags from
// qualifying words. When a letter carries both ("hasta por" and "total"),
// partial wins: the explicit cap is the binding instruction. Absent both,
// neither flag is set.
func (e *Extractor) partialTotal(text string) (partial, total bool) {
	cutoff := e.cfg.PartialCutoff
	hasPartial := e.qualifier(e.cfg.PartialKeywords, text, cutoff)
	hasTotal := e.qualifier(e.cfg.TotalKeywords, text, cutoff)
	if hasPartial {
		return true, false
	}
	if hasTotal {
		return false, true
	}
	return false, false
}

func (e *Extractor) qualifier(keywords []string, text string, cutoff float64) bool {
	if _, ok := e.matcher.ContainsAny(keywords, text); ok {
		return true
	}
	for _, kw := range keywords {
		if m := e.matcher.FindBestMatch(kw, text, cutoff); m != nil {
			return true
		}
	}
	return false
}

// documentTypes maps letter phrasing to the fixed document-type catalog,
// deduplicated, in vocabulary order.
func (e *Extractor) documentTypes(text string) []casefile.DocumentType {
	lower := strings.ToLower(text)

	phrases := make([]string, 0, len(e.cfg.DocumentVocabulary))
	for p := range e.cfg.DocumentVocabulary {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)

	seen := map[casefile.DocumentType]bool{}
	var out []casefile.DocumentType
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			dt := casefile.DocumentType(e.cfg.DocumentVocabulary[p])
			if !seen[dt] {
				seen[dt] = true
				out = append(out, dt)
			}
		}
	}
	return out
}

// DateRange extracts a "del X al Y" / "from X to Y" period. Returns nil
// when no well-formed pair is present or either date fails to parse.
func (e *Extractor) DateRange(text string) *casefile.DateRange {
	m := e.dateRangeRe.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil
	}
	from, okFrom := e.parseDate(m[1])
	to, okTo := e.parseDate(m[2])
	if !okFrom || !okTo {
		return nil
	}
	return &casefile.DateRange{From: from, To: to}
}

func (e *Extractor) parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := e.spanishRe.FindStringSubmatch(s); len(m) == 4 {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if !ok || day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}

	for _, layout := range []string{"02/01/2006", "2/1/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
