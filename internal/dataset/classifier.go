package dataset

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/tesoreria/internal/fetch"
)

// Assignment is the document chosen for a role.
type Assignment struct {
	Role     Role
	Keyword  string
	Document fetch.SourceDocument
}

// Ignored is a document that matched a role already taken by an earlier URL.
type Ignored struct {
	Role Role
	URL  string
	Kept string
}

// Classification is the outcome of matching fetched documents to roles.
type Classification struct {
	Assigned map[Role]Assignment
	Ignored  []Ignored
	Failures []*fetch.FetchError
	// Unmatched lists fetched URLs that matched no keyword.
	Unmatched []string
}

// Document returns the document assigned to role, if any.
func (c Classification) Document(role Role) (fetch.SourceDocument, bool) {
	a, ok := c.Assigned[role]
	return a.Document, ok
}

// Classifier matches fetched documents to dataset roles by URL keyword.
type Classifier struct {
	table  KeywordTable
	logger *slog.Logger
}

// NewClassifier builds a classifier. An empty table falls back to the defaults.
func NewClassifier(table KeywordTable, logger *slog.Logger) *Classifier {
	if len(table) == 0 {
		table = DefaultKeywordTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{table: table, logger: logger}
}

// Classify walks documents in input order. Each document takes the first role
// in the keyword table whose keyword appears in its URL (case-insensitive); the
// first document per role wins. A missing required role yields
// ErrMissingRequiredDataset together with the partial classification.
func (c *Classifier) Classify(docs []fetch.SourceDocument) (Classification, error) {
	out := Classification{Assigned: make(map[Role]Assignment, len(c.table))}
	for _, doc := range docs {
		if !doc.OK() {
			out.Failures = append(out.Failures, doc.Err)
			continue
		}
		haystack := strings.ToLower(doc.URL)
		role, keyword, ok := c.match(haystack)
		if !ok {
			out.Unmatched = append(out.Unmatched, doc.URL)
			continue
		}
		if kept, taken := out.Assigned[role]; taken {
			c.logger.Warn("duplicate dataset ignored",
				slog.String("role", string(role)),
				slog.String("url", doc.URL),
				slog.String("kept", kept.Document.URL))
			out.Ignored = append(out.Ignored, Ignored{Role: role, URL: doc.URL, Kept: kept.Document.URL})
			continue
		}
		out.Assigned[role] = Assignment{Role: role, Keyword: keyword, Document: doc}
	}

	for _, entry := range c.table {
		if !entry.Required {
			continue
		}
		if _, ok := out.Assigned[entry.Role]; !ok {
			return out, fmt.Errorf("%w: no fetched url contains %q (%s)", ErrMissingRequiredDataset, strings.Join(entry.Keywords, "|"), entry.Role)
		}
	}
	return out, nil
}

func (c *Classifier) match(haystack string) (Role, string, bool) {
	for _, entry := range c.table {
		for _, keyword := range entry.Keywords {
			if keyword != "" && strings.Contains(haystack, strings.ToLower(keyword)) {
				return entry.Role, keyword, true
			}
		}
	}
	return "", "", false
}
