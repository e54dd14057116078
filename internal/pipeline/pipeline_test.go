// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oficio/internal/casefile"
	"oficio/internal/config"
	"oficio/internal/fields"
)

// memQueue collects review items for assertions.
type memQueue struct {
	mu    sync.Mutex
	items []ReviewItem
	err   error
}

func (q *memQueue) Submit(_ context.Context, item ReviewItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.items = append(q.items, item)
	return nil
}

// spyChecker counts checklist invocations and can cancel the context
// mid-run to exercise the stage boundaries.
type spyChecker struct {
	calls   int
	cancel  context.CancelFunc
	wrapped fieldChecker
}

func (s *spyChecker) Validate(m *casefile.MandatedFields) fields.Report {
	s.calls++
	if s.cancel != nil {
		s.cancel()
	}
	return s.wrapped.Validate(m)
}

func (s *spyChecker) Checklist() []string { return s.wrapped.Checklist() }

func newTestPipeline(t *testing.T, review ReviewQueue) *Pipeline {
	t.Helper()
	p, err := New(config.DefaultConfig(), review)
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }

// completeMandated fills every checklist field.
func completeMandated() casefile.MandatedFields {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return casefile.MandatedFields{
		InstitutionCode: "040012",
		InstitutionName: "Banco de Prueba",
		BranchCode:      "0123",
		BranchName:      "Sucursal Centro",
		AccountNumber:   "1234567890",
		AccountType:     "cheques",
		ProductType:     "cuenta de depósito",
		ContractNumber:  "CT-99812",
		CustomerID:      "CL-4481",
		CustomerName:    "María Pérez López",
		CustomerRFC:     "PELM800101AB1",
		CustomerCURP:    "PELM800101MDFRPR03",
		CustomerAddress: "Av. Reforma 1, CDMX",
		AccountStatus:   "activa",

		RequestDate:         ptr(now),
		ReceptionDate:       ptr(now),
		DeadlineDate:        ptr(now.AddDate(0, 0, 10)),
		ResponseDate:        ptr(now.AddDate(0, 0, 5)),
		Priority:            "alta",
		RequestOrigin:       "SIARA",
		CaseNumber:          "214-3/2026-0042",
		RequestNumber:       "RQ-5512",
		FolioNumber:         "F-009123",
		AuthorityReference:  "CNBV/VGF/2026",
		NotificationChannel: "portal",
		AreaCode:            "VGF",

		OpeningDate:        ptr(now.AddDate(-4, 0, 0)),
		ClosingDate:        ptr(now),
		CurrentBalance:     ptr(125000.50),
		AvailableBalance:   ptr(120000.00),
		FrozenAmount:       ptr(0.0),
		RequestedAmount:    ptr(500000.00),
		Currency:           "MXN",
		AverageBalance:     ptr(100000.00),
		CreditLimit:        ptr(0.0),
		LastMovementDate:   ptr(now),
		InterestRate:       ptr(0.045),
		MonthlyDeposits:    ptr(30000.00),
		MonthlyWithdrawals: ptr(28000.00),
		CheckbookNumber:    "CHK-1221",
		DebitCardNumber:    "5204000011112222",
		ClabeNumber:        "012180001234567895",
	}
}

func admissibleCase() *casefile.CaseFile {
	return &casefile.CaseFile{
		ID:                  "case-1",
		CaseNumber:          "214-3/2026-0042",
		AuthorityName:       "Comisión Nacional Bancaria y de Valores",
		LegalCitation:       "artículo 142 de la Ley de Instituciones de Crédito",
		HasLetterhead:       true,
		HasSignature:        true,
		NotificationChannel: "Portal SIARA",
		Body: "Se ordena el bloqueo total de las cuentas 1234567890 y 0987654321 " +
			"por un monto de $500,000.00 MXN.",
		Mandated: completeMandated(),
	}
}

func TestProcess_ClassifiedFreeze(t *testing.T) {
	p := newTestPipeline(t, nil)

	out, err := p.Process(context.Background(), admissibleCase())
	require.NoError(t, err)

	assert.Equal(t, casefile.StatusClassified, out.Result.Status)
	assert.Equal(t, casefile.CategoryFreeze, out.Result.Category)
	assert.Equal(t, 1.0, out.Result.Confidence)
	assert.Equal(t, casefile.ChannelElectronic, out.Result.Channel)
	assert.Equal(t, "Comisión Nacional Bancaria y de Valores", out.Result.MatchedAuthority)
	assert.Empty(t, out.Result.RejectionReasons)

	assert.True(t, out.Result.FieldsComplete)
	assert.Empty(t, out.Result.MissingFields)
	assert.Len(t, out.Result.RequiredFields, len(config.DefaultChecklist()))

	require.NotNil(t, out.Semantics.Freeze)
	assert.True(t, out.Semantics.Freeze.IsRequired)
	assert.Equal(t, []string{"1234567890", "0987654321"}, out.Semantics.Freeze.Accounts)
	require.NotNil(t, out.Semantics.Freeze.Amount)
	assert.Equal(t, 500000.00, *out.Semantics.Freeze.Amount)
	assert.Equal(t, "MXN", out.Semantics.Freeze.Currency)
	assert.True(t, out.Semantics.Freeze.IsTotal)
	assert.False(t, out.Semantics.Freeze.IsPartial)
}

// "hasta por" caps the freeze at an amount, so it is a partial qualifier
// even when the letter also says "total"; the partial reading must
// survive the full pipeline, not just the extractor.
func TestProcess_CappedFreezeIsPartial(t *testing.T) {
	p := newTestPipeline(t, nil)
	cf := admissibleCase()
	cf.Body = "Se ordena el aseguramiento de la cuenta 1234567890 " +
		"hasta por $500,000.00 de manera total."

	out, err := p.Process(context.Background(), cf)
	require.NoError(t, err)

	assert.Equal(t, casefile.CategoryFreeze, out.Result.Category)
	require.NotNil(t, out.Semantics.Freeze)
	assert.True(t, out.Semantics.Freeze.IsPartial)
	assert.False(t, out.Semantics.Freeze.IsTotal)
}

// Checklist gaps downgrade the outcome to review; classification and
// extraction still run so the reviewer sees the full picture.
func TestProcess_IncompleteFieldsNeedsReview(t *testing.T) {
	p := newTestPipeline(t, nil)
	cf := admissibleCase()
	cf.Mandated = casefile.MandatedFields{}

	out, err := p.Process(context.Background(), cf)
	require.NoError(t, err)

	assert.Equal(t, casefile.StatusNeedsReview, out.Result.Status)
	assert.Equal(t, casefile.CategoryFreeze, out.Result.Category)
	assert.False(t, out.Result.FieldsComplete)
	assert.Len(t, out.Result.MissingFields, len(config.DefaultChecklist()))
	require.NotNil(t, out.Semantics.Freeze)
}

func TestProcess_RejectedSkipsLaterStages(t *testing.T) {
	p := newTestPipeline(t, nil)
	spy := &spyChecker{wrapped: p.fields}
	p.fields = spy

	cf := admissibleCase()
	cf.HasSignature = false

	out, err := p.Process(context.Background(), cf)
	require.NoError(t, err)

	assert.Equal(t, casefile.StatusRejected, out.Result.Status)
	assert.Equal(t,
		[]casefile.RejectionReason{casefile.ReasonMissingSignature},
		out.Result.RejectionReasons)
	assert.Zero(t, spy.calls, "checklist must not run for a rejected case")
	assert.Empty(t, out.Result.RequiredFields)
	assert.True(t, out.Semantics.Empty())
}

func TestProcess_AmbiguousAuthorityRoutesToReview(t *testing.T) {
	queue := &memQueue{}
	cfg := config.DefaultConfig()
	cfg.Admissibility.Authorities = []string{"Unidad de Inteligencia Financiera"}
	cfg.Admissibility.AuthorityThreshold = 0.95
	cfg.Matching.ReviewFloor = 0.60
	p, err := New(cfg, queue)
	require.NoError(t, err)

	cf := admissibleCase()
	cf.AuthorityName = "Unidad de Intelligencia Finansiera Nacional"

	out, err := p.Process(context.Background(), cf)
	require.NoError(t, err)

	assert.Equal(t, casefile.StatusNeedsReview, out.Result.Status)
	assert.Empty(t, out.Result.RejectionReasons)
	require.Len(t, queue.items, 1)
	assert.Equal(t, "case-1", queue.items[0].CaseID)
	assert.Equal(t, "Unidad de Inteligencia Financiera", queue.items[0].BestMatch)
	assert.Greater(t, queue.items[0].Score, 0.0)
	assert.Less(t, queue.items[0].Score, 0.95)
}

func TestProcess_AmbiguousWithoutQueue(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Admissibility.Authorities = []string{"Unidad de Inteligencia Financiera"}
	cfg.Admissibility.AuthorityThreshold = 0.95
	cfg.Matching.ReviewFloor = 0.60
	p, err := New(cfg, nil)
	require.NoError(t, err)

	cf := admissibleCase()
	cf.AuthorityName = "Unidad de Intelligencia Finansiera Nacional"

	out, err := p.Process(context.Background(), cf)
	require.NoError(t, err)
	assert.Equal(t, casefile.StatusNeedsReview, out.Result.Status)
}

func TestProcess_ReviewQueueErrorPropagates(t *testing.T) {
	queue := &memQueue{err: errors.New("queue unavailable")}
	cfg := config.DefaultConfig()
	cfg.Admissibility.Authorities = []string{"Unidad de Inteligencia Financiera"}
	cfg.Admissibility.AuthorityThreshold = 0.95
	cfg.Matching.ReviewFloor = 0.60
	p, err := New(cfg, queue)
	require.NoError(t, err)

	cf := admissibleCase()
	cf.AuthorityName = "Unidad de Intelligencia Finansiera Nacional"

	out, err := p.Process(context.Background(), cf)
	assert.Nil(t, out)
	assert.ErrorContains(t, err, "queue unavailable")
}

func TestProcess_CancelledBeforeStart(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := p.Process(ctx, admissibleCase())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_CancelledMidRunDiscardsPartialResults(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	spy := &spyChecker{wrapped: p.fields, cancel: cancel}
	p.fields = spy

	out, err := p.Process(ctx, admissibleCase())
	assert.Nil(t, out, "a cancelled run must not surface partial results")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, spy.calls)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Matching.DefaultThreshold = 1.5
	_, err := New(cfg, nil)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Classification.FreezeCasePattern = "(unclosed"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
