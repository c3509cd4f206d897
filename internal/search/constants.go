package search

// FailureCode identifies highlight failures in the diagnostics log
const FailureCode = "3d15e6ed"

// Boolean keywords pass through normalization verbatim. They are counted
// when scanning (unless disabled) and never highlighted.
const (
	KeywordAnd = "AND"
	KeywordOr  = "OR"
	KeywordNot = "NOT"
)

// termSeparators are the characters a query token is split on. Each one
// produces an independent split of the whole token.
var termSeparators = []string{".", "(", "-", "<", ">"}
