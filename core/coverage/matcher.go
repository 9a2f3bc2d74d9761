package coverage

import (
	"regexp"

	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// Declarations is what a Matcher finds in one source file.
type Declarations struct {
	Methods  []string // Candidate method names, in source order, possibly repeated
	TypeName string   // First declared type in the file, "" when none
}

// Matcher finds method-like declarations in source text. Implementations are
// approximate: they may both miss declarations and report false ones.
type Matcher interface {
	Match(src []byte) Declarations
}

// RegexMatcher is a Matcher driven by two regular expressions. The first
// capture group of each names the method or the type.
type RegexMatcher struct {
	method   *regexp.Regexp
	typeDecl *regexp.Regexp
}

var _ Matcher = &RegexMatcher{} // Compile-time check

// NewRegexMatcher compiles a method and a type pattern into a matcher.
func NewRegexMatcher(methodPattern, typePattern string) (*RegexMatcher, error) {
	method, err := regexp.Compile(methodPattern)
	if err != nil {
		return nil, err
	}
	typeDecl, err := regexp.Compile(typePattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{method: method, typeDecl: typeDecl}, nil
}

// Match implements the Matcher interface.
func (m *RegexMatcher) Match(src []byte) Declarations {
	var decl Declarations
	for _, match := range m.method.FindAllSubmatch(src, -1) {
		decl.Methods = append(decl.Methods, string(match[1]))
	}
	if match := m.typeDecl.FindSubmatch(src); match != nil {
		decl.TypeName = string(match[1])
	}
	return decl
}

// Public declaration patterns per language.
const (
	csharpMethodPattern = `public\s+(?:async\s+)?(?:virtual\s+|override\s+|static\s+|sealed\s+)?(?:[\w<>.\[\]?]+\s+)+(\w+)\s*(?:<[^>]+>)?\s*\(`
	csharpTypePattern   = `class\s+(\w+)`
	javaMethodPattern   = `public\s+(?:(?:static|final|abstract|synchronized|default)\s+)*(?:<[^>]+>\s+)?(?:[\w<>.\[\]?,]+\s+)+(\w+)\s*\(`
	javaTypePattern     = `(?:class|interface|enum|record)\s+(\w+)`
)

// CSharpRegexMatcher returns the regex matcher for C# sources.
func CSharpRegexMatcher() *RegexMatcher {
	m, _ := NewRegexMatcher(csharpMethodPattern, csharpTypePattern)
	return m
}

// JavaRegexMatcher returns the regex matcher for Java sources.
func JavaRegexMatcher() *RegexMatcher {
	m, _ := NewRegexMatcher(javaMethodPattern, javaTypePattern)
	return m
}

// RegexMatchers returns the regex matcher for every supported extension.
func RegexMatchers() map[string]Matcher {
	return map[string]Matcher{
		".cs":   CSharpRegexMatcher(),
		".java": JavaRegexMatcher(),
	}
}

// MatchersFor returns matchers of the requested kind. Tree-sitter matchers
// fall back to regex ones when the parser is unavailable in this build.
func MatchersFor(kind schema.MatcherKind) map[string]Matcher {
	if kind == schema.TreeSitterMatcher {
		matchers, err := TreeSitterMatchers()
		if err == nil {
			return matchers
		}
		log.Warn().Err(err).Msg("Falling back to regex matchers")
	}
	return RegexMatchers()
}
