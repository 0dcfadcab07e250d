package ontology

import "context"

// ParsedRule is a structured business rule descriptor produced by the
// formula-parsing collaborator for one measure.
type ParsedRule struct {
	Name           string
	Entity         string // empty when the parser cannot attribute an entity
	Condition      string
	Action         string
	Classification string
	Description    string
	Priority       int
}

// ParseResult is what the formula parser returns for one measure: zero or
// more rule descriptors plus the deduplicated "Table.Column" dependency
// tokens referenced by the formula.
type ParseResult struct {
	Rules        []ParsedRule
	Dependencies []string
}

// FormulaParser turns a DAX formula into structured business rules. It is
// an external collaborator injected into the generator so tests can
// substitute a double. Implementations must not fail on malformed formula
// text: an unparseable formula yields an empty rule list and a nil error.
type FormulaParser interface {
	Parse(ctx context.Context, measureName, formula string) (*ParseResult, error)
}

// NopParser is a FormulaParser that never produces rules. It is the
// fallback when no parser collaborator is configured.
type NopParser struct{}

var _ FormulaParser = NopParser{}

func (NopParser) Parse(ctx context.Context, measureName, formula string) (*ParseResult, error) {
	return &ParseResult{}, nil
}
