package query

import (
	"strings"
	"unicode"

	nberrors "github.com/tislab/nabsearch/internal/errors"
	"github.com/tislab/nabsearch/internal/search"
)

// Language detection thresholds over the ratio of CJK characters among
// non-whitespace characters.
const (
	japaneseRatioThreshold = 0.70
	englishRatioThreshold  = 0.10
)

// appTypeKeywords maps query keywords to the app_type filter value they
// imply. Scanned in order; the first keyword found as a substring of the
// lowercased query wins, so compound types come before their prefixes.
var appTypeKeywords = []struct {
	keyword string
	appType string
}{
	{"jakarta-batch", "jakarta-batch"},
	{"http-messaging", "http-messaging"},
	{"jax-rs", "rest"},
	{"jaxrs", "rest"},
	{"restful", "rest"},
	{"rest", "rest"},
	{"web", "web"},
	{"batch", "batch"},
	{"バッチ", "batch"},
	{"messaging", "messaging"},
	{"メッセージング", "messaging"},
}

// Analyzer performs query analysis. Stateless apart from the read-only
// synonym map; safe for concurrent use.
type Analyzer struct {
	synonyms *SynonymMap
}

// NewAnalyzer creates an analyzer with the default synonym map.
func NewAnalyzer() *Analyzer {
	return &Analyzer{synonyms: NewSynonymMap()}
}

// NewAnalyzerWithSynonyms creates an analyzer over a custom synonym map.
func NewAnalyzerWithSynonyms(synonyms *SynonymMap) *Analyzer {
	if synonyms == nil {
		synonyms = NewSynonymMap()
	}
	return &Analyzer{synonyms: synonyms}
}

// Analyze runs the full analysis over one query: language detection,
// entity extraction, synonym expansion and filter inference. A blank
// query is invalid input.
func (a *Analyzer) Analyze(query string) (AnalyzedQuery, error) {
	if strings.TrimSpace(query) == "" {
		return AnalyzedQuery{}, nberrors.BlankQuery()
	}

	entities := extractEntities(query)

	return AnalyzedQuery{
		OriginalQuery:    query,
		ExpandedQuery:    a.expandQuery(query),
		Language:         detectLanguage(query),
		Entities:         entities,
		SuggestedFilters: suggestFilters(query, entities),
	}, nil
}

// detectLanguage classifies the query by its CJK character ratio:
// at least 70% CJK is JAPANESE, under 10% is ENGLISH, anything between
// (10% inclusive to 70% exclusive) is MIXED. A query with no
// non-whitespace characters cannot reach here; callers reject blanks.
func detectLanguage(query string) Language {
	var total, cjk int
	for _, r := range query {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isJapanese(r) {
			cjk++
		}
	}
	if total == 0 {
		return LanguageEnglish
	}

	ratio := float64(cjk) / float64(total)
	switch {
	case ratio >= japaneseRatioThreshold:
		return LanguageJapanese
	case ratio < englishRatioThreshold:
		return LanguageEnglish
	default:
		return LanguageMixed
	}
}

// isJapanese reports whether the rune is in the hiragana, katakana, CJK
// unified ideograph (including extension A) or halfwidth katakana blocks.
func isJapanese(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK extension A
		return true
	case r >= 0xFF66 && r <= 0xFF9D: // halfwidth katakana
		return true
	}
	return false
}

// expandQuery appends synonyms for every whitespace token and for the whole
// trimmed query, space-separated in first-occurrence order. Terms already
// present in the query and duplicate synonyms are skipped. With no synonym
// hits the query is returned unchanged.
func (a *Analyzer) expandQuery(query string) string {
	terms := strings.Fields(query)
	trimmed := strings.TrimSpace(query)
	if len(terms) != 1 || terms[0] != trimmed {
		terms = append(terms, trimmed)
	}

	present := make(map[string]bool, len(terms))
	for _, t := range strings.Fields(query) {
		present[strings.ToLower(t)] = true
	}

	var additions []string
	for _, term := range terms {
		for _, syn := range a.synonyms.Lookup(term) {
			lower := strings.ToLower(syn)
			if present[lower] {
				continue
			}
			present[lower] = true
			additions = append(additions, syn)
		}
	}

	if len(additions) == 0 {
		return query
	}
	return query + " " + strings.Join(additions, " ")
}

// suggestFilters infers filters from the query: the first extracted module
// entity sets the module filter, and the first app-type keyword found in
// the lowercased query sets the app_type filter.
func suggestFilters(query string, entities []string) search.SearchFilters {
	filters := search.NoFilters

	for _, e := range entities {
		if isModuleToken(e) {
			filters.Module = e
			break
		}
	}

	lower := strings.ToLower(query)
	for _, kw := range appTypeKeywords {
		if strings.Contains(lower, kw.keyword) {
			filters.AppType = kw.appType
			break
		}
	}

	return filters
}
