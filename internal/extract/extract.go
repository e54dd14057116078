// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract pulls letter text and scanner metadata out of source
// documents. Oficios arrive as PDFs from the authority portals or as
// scanned images from the physical mail room; this package turns both
// into the plain-text handoff the decision stages work on.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"oficio/internal/casefile"
)

// maxPages bounds per-document work. Authority letters run a handful of
// pages; anything past the cap is an attachment dump we do not need for
// classification.
const maxPages = 50

// Document is the text extracted from one source file.
type Document struct {
	Path      string
	Text      string
	PageCount int
	WordCount int
}

// Extractor reads PDFs and scanned images from disk.
type Extractor struct {
	pdfConfig *model.Configuration
}

// NewExtractor returns an Extractor with the default PDF configuration.
func NewExtractor() *Extractor {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return &Extractor{pdfConfig: cfg}
}

// FromPDF validates the file structure and extracts its text page by
// page. Individual broken pages are skipped; the document fails only
// when no page yields text.
func (e *Extractor) FromPDF(path string) (*Document, error) {
	if err := api.ValidateFile(path, e.pdfConfig); err != nil {
		return nil, fmt.Errorf("validate pdf %s: %w", path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	doc := &Document{Path: path, PageCount: r.NumPage()}
	pages := doc.PageCount
	if pages > maxPages {
		pages = maxPages
	}

	var buf bytes.Buffer
	extracted := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
		extracted++
	}
	if extracted == 0 {
		return nil, fmt.Errorf("pdf %s: no extractable text on any page", path)
	}

	doc.Text = normalizeText(buf.String())
	doc.WordCount = len(strings.Fields(doc.Text))
	return doc, nil
}

// Metadata reads scanner/camera metadata from a scanned letter image and
// packages it as the extraction handoff record. The raw text stays empty;
// OCR happens upstream.
func (e *Extractor) Metadata(path string) (*casefile.ExtractedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", path, err)
	}

	walker := &tagWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("walk metadata %s: %w", path, err)
	}

	return &casefile.ExtractedMetadata{
		Candidates: scanCandidates(walker.tags),
		SourcePath: path,
	}, nil
}

type tagWalker struct {
	tags map[string]string
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag != nil {
		w.tags[string(name)] = strings.Trim(tag.String(), `"`)
	}
	return nil
}

// candidateTags maps metadata tag names to the handoff candidate keys
// the mail-room workflow cares about.
var candidateTags = map[string]string{
	"DateTime":         "scan_date",
	"DateTimeOriginal": "scan_date_original",
	"Make":             "scanner_make",
	"Model":            "scanner_model",
	"Software":         "scanner_software",
	"ImageDescription": "scan_description",
}

func scanCandidates(tags map[string]string) map[string]string {
	out := make(map[string]string)
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key, ok := candidateTags[name]
		if !ok {
			continue
		}
		if v := strings.TrimSpace(tags[name]); v != "" {
			out[key] = v
		}
	}
	return out
}

// normalizeText trims per-line whitespace and drops empty lines so the
// keyword matchers see compact text.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\t", " ")
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
