package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role identifies the logical dataset a fetched CSV provides.
type Role string

const (
	// RoleSummary carries received/delivered/balance totals. Required.
	RoleSummary Role = "summary"
	// RoleStudentLedger carries per-student dues, payments and spend.
	RoleStudentLedger Role = "student_ledger"
	// RoleCollectionLog lists collections received from students.
	RoleCollectionLog Role = "collection_log"
	// RolePaymentLog lists payments made by the treasury.
	RolePaymentLog Role = "payment_log"
)

// ErrMissingRequiredDataset is returned when no fetched document matches a required role.
var ErrMissingRequiredDataset = errors.New("required dataset not found")

// RoleKeywords binds a role to the substrings that identify it.
type RoleKeywords struct {
	Role     Role
	Keywords []string
	Required bool
}

// KeywordTable is evaluated in order; a document takes the first role it matches.
type KeywordTable []RoleKeywords

// DefaultKeywordTable returns the built-in filename keywords.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		{Role: RoleSummary, Keywords: []string{"brawny-letters"}, Required: true},
		{Role: RoleStudentLedger, Keywords: []string{"vague-stage"}},
		{Role: RoleCollectionLog, Keywords: []string{"telling-match"}},
		{Role: RolePaymentLog, Keywords: []string{"pagos"}},
	}
}

type keywordFile struct {
	Summary       []string `yaml:"summary"`
	StudentLedger []string `yaml:"student_ledger"`
	CollectionLog []string `yaml:"collection_log"`
	PaymentLog    []string `yaml:"payment_log"`
}

// LoadKeywordTable reads keyword overrides from a YAML file. Roles left empty in
// the file keep their default keywords.
func LoadKeywordTable(path string) (KeywordTable, error) {
	table := DefaultKeywordTable()
	if strings.TrimSpace(path) == "" {
		return table, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read keyword file: %w", err)
	}
	return ParseKeywordTable(raw)
}

// ParseKeywordTable decodes YAML keyword overrides on top of the defaults.
func ParseKeywordTable(raw []byte) (KeywordTable, error) {
	var file keywordFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("dataset: parse keyword file: %w", err)
	}
	overrides := map[Role][]string{
		RoleSummary:       file.Summary,
		RoleStudentLedger: file.StudentLedger,
		RoleCollectionLog: file.CollectionLog,
		RolePaymentLog:    file.PaymentLog,
	}
	table := DefaultKeywordTable()
	for i := range table {
		keywords := normaliseKeywords(overrides[table[i].Role])
		if len(keywords) > 0 {
			table[i].Keywords = keywords
		}
	}
	return table, nil
}

func normaliseKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
