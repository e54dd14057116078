// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the externally supplied tuning surface of the triage library:
// similarity thresholds, the recognized-authority set, keyword vocabularies
// and the mandatory-field checklist. Nothing in here is code — a new
// legitimate authority or a revised checklist is a config update.
type Config struct {
	Matching       MatchingConfig       `yaml:"matching"`
	Admissibility  AdmissibilityConfig  `yaml:"admissibility"`
	Classification ClassificationConfig `yaml:"classification"`
	Semantics      SemanticsConfig      `yaml:"semantics"`
	Fields         FieldsConfig         `yaml:"fields"`
	Journal        JournalConfig        `yaml:"journal"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// MatchingConfig tunes the fuzzy matcher and the review routing band.
type MatchingConfig struct {
	// WindowTolerance is the relative window-length band for the
	// sliding-window search.
	WindowTolerance float64 `yaml:"window_tolerance"`

	// DefaultThreshold is the accept threshold for keyword fuzzy matches.
	DefaultThreshold float64 `yaml:"default_threshold"`

	// ReviewFloor is the lower bound of the manual-review band: scores in
	// [ReviewFloor, DefaultThreshold) are routed to human review instead
	// of being forced into a likely-wrong decision.
	ReviewFloor float64 `yaml:"review_floor"`
}

// AdmissibilityConfig drives the three ordered admissibility checks.
type AdmissibilityConfig struct {
	// Authorities is the closed recognized-authority set. Exact
	// containment is tried first, then fuzzy match at AuthorityThreshold.
	Authorities        []string `yaml:"authorities"`
	AuthorityThreshold float64  `yaml:"authority_threshold"`

	ElectronicChannelKeywords []string `yaml:"electronic_channel_keywords"`
	PhysicalChannelKeywords   []string `yaml:"physical_channel_keywords"`
	ChannelThreshold          float64  `yaml:"channel_threshold"`
}

// ClassificationConfig holds the precedence-ordered keyword vocabularies.
// The precedence itself (release > freeze > documentation > transfer >
// funds delivery > information) is fixed; only the vocabulary is tunable.
type ClassificationConfig struct {
	ReleaseKeywords       []string `yaml:"release_keywords"`
	FreezeKeywords        []string `yaml:"freeze_keywords"`
	DocumentationKeywords []string `yaml:"documentation_keywords"`
	TransferKeywords      []string `yaml:"transfer_keywords"`
	FundsDeliveryKeywords []string `yaml:"funds_delivery_keywords"`

	// FreezeCasePattern is a regexp matched against the case number; a
	// hit is an additional freeze marker used by some authorities.
	FreezeCasePattern string `yaml:"freeze_case_pattern"`

	ReminderKeywords   []string `yaml:"reminder_keywords"`
	AddendumKeywords   []string `yaml:"addendum_keywords"`
	CorrectionKeywords []string `yaml:"correction_keywords"`

	// PriorCasePattern extracts the referenced prior request id from
	// reminder/addendum/correction letters. Capture group 1 is the id.
	PriorCasePattern string `yaml:"prior_case_pattern"`
}

// SemanticsConfig tunes the requirement extractor.
type SemanticsConfig struct {
	// DomesticCurrency is assumed when an amount carries no currency.
	DomesticCurrency string `yaml:"domestic_currency"`

	// MinAccountDigits is the minimum digit-run length treated as an
	// account number.
	MinAccountDigits int `yaml:"min_account_digits"`

	// PartialCutoff is the similarity score above which a partial/total
	// qualifier fuzzy match is trusted. Kept configurable on purpose.
	PartialCutoff float64 `yaml:"partial_cutoff"`

	PartialKeywords []string `yaml:"partial_keywords"`
	TotalKeywords   []string `yaml:"total_keywords"`

	// DocumentVocabulary maps letter phrasing to the fixed document-type
	// catalog (bank-statement, contract, identification, proof-of-address).
	DocumentVocabulary map[string]string `yaml:"document_vocabulary"`

	CertificationKeywords []string `yaml:"certification_keywords"`

	// CurrencyWords maps spelled-out currency references to ISO codes.
	CurrencyWords map[string]string `yaml:"currency_words"`
}

// FieldsConfig carries the regulator's mandatory-field checklist.
type FieldsConfig struct {
	Mandatory []string `yaml:"mandatory"`
}

// JournalConfig locates the ingestion ledger.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the shipped configuration for the Mexican
// financial-sector jurisdiction. Deployments override via Load.
func DefaultConfig() *Config {
	return &Config{
		Matching: MatchingConfig{
			WindowTolerance:  0.30,
			DefaultThreshold: 0.80,
			ReviewFloor:      0.70,
		},
		Admissibility: AdmissibilityConfig{
			Authorities: []string{
				"Comisión Nacional Bancaria y de Valores",
				"Servicio de Administración Tributaria",
				"Fiscalía General de la República",
				"Unidad de Inteligencia Financiera",
				"Instituto Mexicano del Seguro Social",
				"Instituto del Fondo Nacional de la Vivienda para los Trabajadores",
				"Poder Judicial de la Federación",
			},
			AuthorityThreshold: 0.85,
			ElectronicChannelKeywords: []string{
				"siara", "portal", "medios electrónicos", "vía electrónica",
				"correo electrónico", "sistema de atención",
			},
			PhysicalChannelKeywords: []string{
				"notificación personal", "oficialía de partes", "mensajería",
				"entrega física", "físico", "ventanilla",
			},
			ChannelThreshold: 0.85,
		},
		Classification: ClassificationConfig{
			ReleaseKeywords: []string{
				"desbloqueo", "desbloquear", "liberar", "liberación",
				"levantamiento del aseguramiento", "levantar el embargo",
			},
			FreezeKeywords: []string{
				"aseguramiento", "asegurar", "bloqueo", "bloquear", "embargo",
				"inmovilización", "inmovilizar", "congelamiento",
			},
			DocumentationKeywords: []string{
				"documentación", "estados de cuenta", "estado de cuenta",
				"contratos", "contrato", "expediente", "documentos",
			},
			TransferKeywords: []string{
				"transferencia", "transferir", "traspaso",
			},
			FundsDeliveryKeywords: []string{
				"entrega de fondos", "poner a disposición", "billete de depósito",
				"entregar los recursos", "depositar",
			},
			FreezeCasePattern: `(?i)\b(?:ASEG|EMB|UIF)[-/][0-9]{2,}`,
			ReminderKeywords: []string{
				"recordatorio", "se reitera", "reiteración", "en reiteración",
			},
			AddendumKeywords: []string{
				"alcance al oficio", "en alcance", "ampliación al oficio", "anexo al oficio",
			},
			CorrectionKeywords: []string{
				"fe de erratas", "se corrige", "corrección al oficio",
			},
			PriorCasePattern: `(?i)oficio\s+(?:no\.?|núm\.?|número)?\s*([A-Z0-9]+(?:[-/][A-Z0-9]+)+)`,
		},
		Semantics: SemanticsConfig{
			DomesticCurrency: "MXN",
			MinAccountDigits: 10,
			PartialCutoff:    0.80,
			PartialKeywords:  []string{"parcial", "hasta por", "up to"},
			TotalKeywords:    []string{"total", "totalidad", "en su totalidad"},
			DocumentVocabulary: map[string]string{
				"estado de cuenta":         "bank-statement",
				"estados de cuenta":        "bank-statement",
				"contrato":                 "contract",
				"contratos":                "contract",
				"identificación":           "identification",
				"identificación oficial":   "identification",
				"comprobante de domicilio": "proof-of-address",
			},
			CertificationKeywords: []string{
				"copia certificada", "certificada", "certificación",
			},
			CurrencyWords: map[string]string{
				"pesos":           "MXN",
				"moneda nacional": "MXN",
				"dólares":         "USD",
				"dolares":         "USD",
				"usd":             "USD",
				"euros":           "EUR",
			},
		},
		Fields: FieldsConfig{
			Mandatory: DefaultChecklist(),
		},
		Journal: JournalConfig{
			Path: ".oficio/journal.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultChecklist returns the 42-field regulator checklist in its
// canonical order.
func DefaultChecklist() []string {
	return []string{
		"institution_code", "institution_name", "branch_code", "branch_name",
		"account_number", "account_type", "product_type", "contract_number",
		"customer_id", "customer_name", "customer_rfc", "customer_curp",
		"customer_address", "account_status",

		"request_date", "reception_date", "deadline_date", "response_date",
		"priority", "request_origin", "case_number", "request_number",
		"folio_number", "authority_reference", "notification_channel", "area_code",

		"opening_date", "closing_date", "current_balance", "available_balance",
		"frozen_amount", "requested_amount", "currency", "average_balance",
		"credit_limit", "last_movement_date", "interest_rate", "monthly_deposits",
		"monthly_withdrawals", "checkbook_number", "debit_card_number", "clabe_number",
	}
}

// Load reads a YAML file and merges it over the shipped defaults. An
// empty or missing path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks threshold ranges and required sets.
func (c *Config) Validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
		return nil
	}

	if err := inUnit("matching.default_threshold", c.Matching.DefaultThreshold); err != nil {
		return err
	}
	if err := inUnit("matching.review_floor", c.Matching.ReviewFloor); err != nil {
		return err
	}
	if c.Matching.ReviewFloor > c.Matching.DefaultThreshold {
		return fmt.Errorf("matching.review_floor %v exceeds default_threshold %v",
			c.Matching.ReviewFloor, c.Matching.DefaultThreshold)
	}
	if c.Matching.WindowTolerance <= 0 || c.Matching.WindowTolerance >= 1 {
		return fmt.Errorf("matching.window_tolerance must be in (0,1), got %v", c.Matching.WindowTolerance)
	}
	if err := inUnit("admissibility.authority_threshold", c.Admissibility.AuthorityThreshold); err != nil {
		return err
	}
	if err := inUnit("admissibility.channel_threshold", c.Admissibility.ChannelThreshold); err != nil {
		return err
	}
	if err := inUnit("semantics.partial_cutoff", c.Semantics.PartialCutoff); err != nil {
		return err
	}
	if len(c.Admissibility.Authorities) == 0 {
		return fmt.Errorf("admissibility.authorities must not be empty")
	}
	if len(c.Fields.Mandatory) == 0 {
		return fmt.Errorf("fields.mandatory must not be empty")
	}
	if c.Semantics.MinAccountDigits < 1 {
		return fmt.Errorf("semantics.min_account_digits must be positive, got %d", c.Semantics.MinAccountDigits)
	}
	return nil
}
