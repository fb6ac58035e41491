// Package query analyzes user queries before retrieval: language
// detection, domain entity extraction, synonym expansion and filter
// inference. The synonym map and entity patterns are built once at package
// init and are read-only afterwards, so concurrent analysis needs no
// synchronization.
package query

import (
	"github.com/tislab/nabsearch/internal/search"
)

// Language is the detected query language.
type Language string

const (
	// LanguageJapanese: at least 70% of non-whitespace characters are CJK.
	LanguageJapanese Language = "JAPANESE"
	// LanguageEnglish: fewer than 10% of non-whitespace characters are CJK.
	LanguageEnglish Language = "ENGLISH"
	// LanguageMixed: everything in between (both bounds inclusive on the
	// MIXED side at 0.10, on the JAPANESE side at 0.70).
	LanguageMixed Language = "MIXED"
)

// AnalyzedQuery is the analyzer's output, produced fresh per call.
type AnalyzedQuery struct {
	// OriginalQuery is the input, untouched.
	OriginalQuery string
	// ExpandedQuery is the original plus appended unique synonyms, or the
	// original unchanged when no synonym matched.
	ExpandedQuery string
	// Language is the detected query language.
	Language Language
	// Entities are extracted domain tokens, de-duplicated in first
	// occurrence order.
	Entities []string
	// SuggestedFilters are filters inferred from the query, or the
	// no-constraint sentinel.
	SuggestedFilters search.SearchFilters
}
