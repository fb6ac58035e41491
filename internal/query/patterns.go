package query

import (
	"regexp"
)

// Compiled entity extraction patterns. Compiled at package init; read-only
// afterwards.
var (
	// fqcnPattern matches fully-qualified class names rooted in the
	// framework's packages: nablarch.xxx.yyy.ZzzClass, optionally with
	// nested classes (Outer$Inner).
	fqcnPattern = regexp.MustCompile(
		`(?:nablarch|jp\.co\.tis)(?:\.[a-z][a-z0-9]*)+\.[A-Z][a-zA-Z0-9]*(?:\$[A-Z][a-zA-Z0-9]*)*`)

	// handlerPattern matches PascalCase identifiers with the Handler
	// suffix: HttpCharacterEncodingHandler, GlobalErrorHandler, ...
	handlerPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*Handler\b`)

	// modulePattern matches hyphenated module names sharing the framework
	// root prefix: nablarch-fw-web, nablarch-core-validation, ...
	modulePattern = regexp.MustCompile(`\bnablarch(?:-[a-z][a-z0-9]*)+\b`)

	// configFilePattern matches configuration file tokens: hyphenated
	// lowercase names ending in -configuration or the .xml extension.
	configFilePattern = regexp.MustCompile(
		`\b[a-z][a-z0-9]*(?:-[a-z][a-z0-9]*)*(?:-configuration|\.xml)\b`)
)

// entityPatterns lists the extractors in application order.
var entityPatterns = []*regexp.Regexp{
	fqcnPattern,
	handlerPattern,
	modulePattern,
	configFilePattern,
}

// extractEntities applies every pattern to the query and collects matches
// into an order-preserving de-duplicated list.
func extractEntities(query string) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, p := range entityPatterns {
		for _, m := range p.FindAllString(query, -1) {
			if !seen[m] {
				seen[m] = true
				entities = append(entities, m)
			}
		}
	}
	return entities
}

// isModuleToken reports whether the whole token is a module name.
func isModuleToken(token string) bool {
	loc := modulePattern.FindStringIndex(token)
	return loc != nil && loc[0] == 0 && loc[1] == len(token)
}
